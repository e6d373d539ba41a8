package datasource

import (
	"database/sql"
	"database/sql/driver"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-sqlite3"
	"github.com/meoying/shardorm/config"
	logdriver "github.com/meoying/shardorm/internal/driver/log"
)

type options struct {
	logger  *slog.Logger
	drivers map[string]driver.Driver
}

type Option func(o *options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDriver 注册额外的驱动, 或者覆盖内置的驱动
func WithDriver(name string, d driver.Driver) Option {
	return func(o *options) {
		o.drivers[name] = d
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default(),
		drivers: map[string]driver.Driver{
			config.DriverMySQL:   &mysql.MySQLDriver{},
			config.DriverSQLite3: &sqlite3.SQLiteDriver{},
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open 打开一个分片对应的 *sql.DB, 所有的语句都会经过 driver/log 输出日志
func Open(cfg config.Shard, opts ...Option) (*sql.DB, error) {
	return open(cfg, newOptions(opts))
}

func open(cfg config.Shard, o *options) (*sql.DB, error) {
	d, ok := o.drivers[cfg.Driver]
	if !ok {
		return nil, NewUnknownDriverError(cfg.Driver)
	}
	if cfg.Driver == config.DriverMySQL {
		if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
			return nil, NewInvalidDSNError(cfg.DSN, err)
		}
	}
	l := o.logger.With(slog.String("shard", cfg.Name))
	c, err := logdriver.NewConnector(d, cfg.DSN, logdriver.WithLogger(l))
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(c)
	if cfg.Driver == config.DriverSQLite3 {
		// sqlite3 同一时刻只允许一个写者, 而且 :memory: 数据库每个连接都是独立的
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	return db, nil
}

// OpenAll 按照配置顺序打开所有的分片, 任何一个失败都会关闭已经打开的
func OpenAll(shards []config.Shard, opts ...Option) ([]*sql.DB, error) {
	o := newOptions(opts)
	dbs := make([]*sql.DB, 0, len(shards))
	for _, s := range shards {
		db, err := open(s, o)
		if err != nil {
			var result *multierror.Error
			result = multierror.Append(result, err)
			for _, opened := range dbs {
				if cerr := opened.Close(); cerr != nil {
					result = multierror.Append(result, cerr)
				}
			}
			return nil, result.ErrorOrNil()
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}
