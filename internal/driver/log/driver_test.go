package log

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type sqliteTestSuite struct {
	suite.Suite
	db  *sql.DB
	buf *bytes.Buffer
}

func TestSQLiteTestSuite(t *testing.T) {
	suite.Run(t, new(sqliteTestSuite))
}

func (s *sqliteTestSuite) SetupTest() {
	l, buf := newBufferLogger()
	// sqlite3 没有实现 driver.DriverContext
	c, err := NewConnector(&sqlite3.SQLiteDriver{}, ":memory:", WithLogger(l))
	s.Require().NoError(err)
	s.db = sql.OpenDB(c)
	s.db.SetMaxOpenConns(1)
	s.buf = buf
	_, err = s.db.Exec("CREATE TABLE `customer`(`id` INTEGER PRIMARY KEY, `name` TEXT NOT NULL);")
	s.Require().NoError(err)
}

func (s *sqliteTestSuite) TearDownTest() {
	s.NoError(s.db.Close())
}

func (s *sqliteTestSuite) TestExecAndQuery() {
	t := s.T()
	ctx := context.Background()
	res, err := s.db.ExecContext(ctx, "INSERT INTO `customer`(`id`,`name`) VALUES(?,?);", 1, "Tom")
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rows, err := s.db.QueryContext(ctx, "SELECT `name` FROM `customer` WHERE `id`=?;", 1)
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"Tom"}, names)

	logs := s.buf.String()
	assert.Contains(t, logs, "执行语句")
	assert.Contains(t, logs, "INSERT INTO `customer`")
	assert.Contains(t, logs, "查询")
	assert.Contains(t, logs, "关闭结果集")
}

func (s *sqliteTestSuite) TestPrepareAndTx() {
	t := s.T()
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO `customer`(`name`) VALUES(?);")
	require.NoError(t, err)
	for _, name := range []string{"a", "b"} {
		_, err = stmt.ExecContext(ctx, name)
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Rollback())

	var cnt int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `customer`;").Scan(&cnt))
	assert.Equal(t, 0, cnt)

	tx, err = s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, "INSERT INTO `customer`(`name`) VALUES(?);", "c")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `customer`;").Scan(&cnt))
	assert.Equal(t, 1, cnt)

	logs := s.buf.String()
	assert.Contains(t, logs, "预编译")
	assert.Contains(t, logs, "执行预编译语句")
	assert.Contains(t, logs, "事务回滚成功")
	assert.Contains(t, logs, "事务提交成功")
}

func (s *sqliteTestSuite) TestError() {
	t := s.T()
	_, err := s.db.Exec("INSERT INTO `unknown`(`id`) VALUES(?);", 1)
	assert.Error(t, err)
	assert.Contains(t, s.buf.String(), "level=ERROR")
}

func TestConnector_SQLMock(t *testing.T) {
	mockDB, mock, err := sqlmock.NewWithDSN("driver_log_test")
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	l, buf := newBufferLogger()
	c, err := NewConnector(mockDB.Driver(), "driver_log_test", WithLogger(l))
	require.NoError(t, err)
	db := sql.OpenDB(c)

	mockErr := errors.New("mock exec error")
	mock.ExpectExec("UPDATE `customer` SET `name`=\\? WHERE `id`=\\?").
		WithArgs("Tom", 1).
		WillReturnError(mockErr)
	mock.ExpectQuery("SELECT `id` FROM `customer`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	_, err = db.Exec("UPDATE `customer` SET `name`=? WHERE `id`=?;", "Tom", 1)
	assert.ErrorIs(t, err, mockErr)

	var ids []int64
	rows, err := db.Query("SELECT `id` FROM `customer`;")
	require.NoError(t, err)
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())

	logs := buf.String()
	assert.Contains(t, logs, "执行语句失败")
	assert.Contains(t, logs, "mock exec error")
	assert.Contains(t, logs, "rows=2")
}

func TestConnector_Fallback(t *testing.T) {
	l, buf := newBufferLogger()
	store := &minimalStore{}
	c, err := NewConnector(&minimalDriver{store: store}, "minimal", WithLogger(l))
	require.NoError(t, err)
	db := sql.OpenDB(c)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))

	// 连接没有实现 ExecerContext, database/sql 会先预编译再执行
	_, err = db.ExecContext(ctx, "INSERT", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT"}, store.prepared)
	assert.Equal(t, []driver.Value{"a"}, store.execArgs)

	rows, err := db.QueryContext(ctx, "SELECT")
	require.NoError(t, err)
	cols, err := rows.ColumnTypes()
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "", cols[0].DatabaseTypeName())
	assert.True(t, rows.Next())
	var v string
	require.NoError(t, rows.Scan(&v))
	assert.Equal(t, "v", v)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	_, err = db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	assert.ErrorIs(t, err, errIsolationNotSupported)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	_, err = db.ExecContext(ctx, "INSERT", sql.Named("name", "a"))
	assert.Error(t, err)

	assert.Contains(t, buf.String(), "执行预编译语句")
}

// minimalDriver 只实现了 database/sql/driver 里面必须的接口
type minimalDriver struct {
	store *minimalStore
}

type minimalStore struct {
	prepared []string
	execArgs []driver.Value
}

func (d *minimalDriver) Open(name string) (driver.Conn, error) {
	return &minimalConn{store: d.store}, nil
}

type minimalConn struct {
	store *minimalStore
}

func (c *minimalConn) Prepare(query string) (driver.Stmt, error) {
	c.store.prepared = append(c.store.prepared, query)
	return &minimalStmt{store: c.store}, nil
}

func (c *minimalConn) Close() error {
	return nil
}

func (c *minimalConn) Begin() (driver.Tx, error) {
	return &minimalTx{}, nil
}

type minimalTx struct{}

func (t *minimalTx) Commit() error {
	return nil
}

func (t *minimalTx) Rollback() error {
	return nil
}

type minimalStmt struct {
	store *minimalStore
}

func (s *minimalStmt) Close() error {
	return nil
}

func (s *minimalStmt) NumInput() int {
	return -1
}

func (s *minimalStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.store.execArgs = args
	return driver.RowsAffected(1), nil
}

func (s *minimalStmt) Query(args []driver.Value) (driver.Rows, error) {
	return &minimalRows{}, nil
}

type minimalRows struct {
	done bool
}

func (r *minimalRows) Columns() []string {
	return []string{"c"}
}

func (r *minimalRows) Close() error {
	return nil
}

func (r *minimalRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = "v"
	return nil
}
