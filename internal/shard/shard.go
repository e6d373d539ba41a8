package shard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ecodeclub/ekit/slice"
	"github.com/meoying/shardorm/internal/errs"
	"github.com/meoying/shardorm/internal/model"
	"github.com/meoying/shardorm/internal/query"
	"go.uber.org/multierr"
)

var (
	errNoColumns       = errors.New("没有任何非空的列")
	errNoRowsAffected  = errors.New("影响行数为 0")
	errNoGeneratedKey  = errors.New("数据库没有返回主键")
	errMultipleColumns = errors.New("期望返回一列")
)

// Shard 一个物理分片. 只会在自己的 *sql.DB 上执行语句, 不会重试
type Shard struct {
	id     int
	name   string
	db     *sql.DB
	logger *slog.Logger
}

type Option func(s *Shard)

func WithLogger(l *slog.Logger) Option {
	return func(s *Shard) {
		s.logger = l
	}
}

func WithName(name string) Option {
	return func(s *Shard) {
		s.name = name
	}
}

func New(id int, db *sql.DB, opts ...Option) *Shard {
	s := &Shard{
		id:     id,
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.Int("shard", id))
	return s
}

func (s *Shard) ID() int {
	return s.id
}

func (s *Shard) Name() string {
	return s.name
}

// Insert 插入所有非空的列, 返回主键.
// 实体本身带有主键就使用它, 否则使用数据库生成的主键并回写到实体上
func (s *Shard) Insert(ctx context.Context, d *model.Descriptor, entity any) (int64, error) {
	cols, vals, err := d.NonNullColumns(entity)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, errs.NewPersistenceError("", nil, errNoColumns)
	}
	sqlStr := query.Insert(d.TableName, cols)
	s.logger.DebugContext(ctx, "插入", "table", d.TableName, "columns", cols)
	res, err := s.db.ExecContext(ctx, sqlStr, vals...)
	if err != nil {
		return 0, errs.NewPersistenceError(sqlStr, vals, err)
	}
	withPK := slice.Contains(cols, d.PrimaryKey.Column)
	id, err := s.keyOf(d, entity, res, withPK)
	if err != nil {
		return 0, errs.NewPersistenceError(sqlStr, vals, err)
	}
	if !withPK {
		if err = d.SetPrimaryKey(entity, id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// InsertBatch 在一个事务里面预编译一次, 然后逐行执行.
// 只插入在所有实体里面都非空的列. 返回的 keys[i] 对应 entities[i].
// 任何一行失败都会回滚整个批次
func (s *Shard) InsertBatch(ctx context.Context, d *model.Descriptor, entities []any) (keys []int64, err error) {
	if len(entities) == 0 {
		return nil, nil
	}
	cols, err := batchColumns(d, entities)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errs.NewPersistenceError("", nil, errNoColumns)
	}
	sqlStr := query.Insert(d.TableName, cols)
	withPK := slice.Contains(cols, d.PrimaryKey.Column)
	s.logger.DebugContext(ctx, "批量插入", "table", d.TableName, "columns", cols, "rows", len(entities))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.NewPersistenceError(sqlStr, nil, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return nil, errs.NewPersistenceError(sqlStr, nil, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	keys = make([]int64, len(entities))
	for i, e := range entities {
		var vals []any
		vals, err = d.Values(e, cols)
		if err != nil {
			return nil, err
		}
		var res sql.Result
		res, err = stmt.ExecContext(ctx, vals...)
		if err != nil {
			return nil, errs.NewPersistenceError(sqlStr, vals, err)
		}
		keys[i], err = s.keyOf(d, e, res, withPK)
		if err != nil {
			return nil, errs.NewPersistenceError(sqlStr, vals, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errs.NewPersistenceError(sqlStr, nil, err)
	}
	if !withPK {
		// 提交之后才回写主键, 回滚的批次不会留下不存在的主键
		for i, e := range entities {
			if err = d.SetPrimaryKey(e, keys[i]); err != nil {
				return nil, err
			}
		}
	}
	return keys, nil
}

func (s *Shard) keyOf(d *model.Descriptor, entity any, res sql.Result, withPK bool) (int64, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, errNoRowsAffected
	}
	if withPK {
		id, _, err := d.PrimaryKeyValue(entity)
		return id, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errNoGeneratedKey
	}
	return id, nil
}

// batchColumns 所有实体都非空的列, 顺序和字段定义的顺序一致
func batchColumns(d *model.Descriptor, entities []any) ([]string, error) {
	counts := make(map[string]int, len(d.Fields))
	for _, e := range entities {
		cols, _, err := d.NonNullColumns(e)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			counts[c]++
		}
	}
	return slice.FilterMap(d.Columns(), func(idx int, src string) (string, bool) {
		return src, counts[src] == len(entities)
	}), nil
}

// Exec 执行没有结果集的语句, 例如 DDL
func (s *Shard) Exec(ctx context.Context, q query.Query) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, errs.NewPersistenceError(q.SQL, q.Args, err)
	}
	return res, nil
}

// Query 读取全部的行, 返回之前结果集已经关闭
func (s *Shard) Query(ctx context.Context, q query.Query) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, errs.NewPersistenceError(q.SQL, q.Args, err)
	}
	res, err := readRows(rows)
	if err != nil {
		return nil, errs.NewPersistenceError(q.SQL, q.Args, err)
	}
	return res, nil
}

func readRows(rows *sql.Rows) (res []model.Row, err error) {
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res = make([]model.Row, 0, 8)
	for rows.Next() {
		vals := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(model.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// QueryOne 结果集必须恰好只有一行
func (s *Shard) QueryOne(ctx context.Context, q query.Query) (model.Row, error) {
	rows, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, errs.NewUnexpectedRowsError(q.SQL, q.Args, len(rows))
	}
	return rows[0], nil
}

// SelectSingle 查询单个值, 例如聚合函数. NULL 会把 dest 设置为零值
func (s *Shard) SelectSingle(ctx context.Context, q query.Query, dest any) error {
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return errs.NewPersistenceError(q.SQL, q.Args, err)
	}
	res, err := readRows(rows)
	if err != nil {
		return errs.NewPersistenceError(q.SQL, q.Args, err)
	}
	if len(res) != 1 {
		return errs.NewUnexpectedRowsError(q.SQL, q.Args, len(res))
	}
	if len(res[0]) != 1 {
		return errs.NewPersistenceError(q.SQL, q.Args, errMultipleColumns)
	}
	for col, val := range res[0] {
		if err = model.AssignValue(dest, val); err != nil {
			return errs.NewMappingError(col, "dest", typeName(val), typeName(dest), err)
		}
	}
	return nil
}

// FindAll SELECT * 并且按照主键升序, 方便多个分片的结果归并
func (s *Shard) FindAll(ctx context.Context, d *model.Descriptor, cond query.Condition, loader model.Loader) ([]any, error) {
	q := query.Select(d, cond, true)
	rows, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return model.NewMapper(loader).MapAll(ctx, d, rows)
}

// FindOne 结果集不是一行的时候返回 errs.ErrPersistence
func (s *Shard) FindOne(ctx context.Context, d *model.Descriptor, cond query.Condition, loader model.Loader) (any, error) {
	q := query.Select(d, cond, false)
	row, err := s.QueryOne(ctx, q)
	if err != nil {
		return nil, err
	}
	return model.NewMapper(loader).Map(ctx, d, row)
}

func (s *Shard) Close() error {
	return s.db.Close()
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
