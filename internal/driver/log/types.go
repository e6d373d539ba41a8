package log

import (
	"context"
	"database/sql/driver"
	"log/slog"
)

// Logger *slog.Logger 的子集
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

var _ Logger = &slog.Logger{}

type ConnectorOptions struct {
	l Logger
}

type Option func(*ConnectorOptions)

func WithLogger(l Logger) Option {
	return func(opts *ConnectorOptions) {
		opts.l = l
	}
}

// NewConnector 包装 d, 通过返回的 Connector 执行的所有操作都会输出日志.
// 用法: sql.OpenDB(connector)
func NewConnector(d driver.Driver, dsn string, opts ...Option) (driver.Connector, error) {
	options := &ConnectorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.l == nil {
		options.l = slog.Default()
	}
	return newDriver(d, options.l).OpenConnector(dsn)
}

// namedValueToValue 用于底层驱动没有实现带 context 的方法时降级
func namedValueToValue(named []driver.NamedValue) ([]driver.Value, error) {
	args := make([]driver.Value, len(named))
	for i, nv := range named {
		if nv.Name != "" {
			return nil, errNamedArgsNotSupported
		}
		args[i] = nv.Value
	}
	return args, nil
}
