package log

import (
	"context"
	"database/sql/driver"
)

var (
	_ driver.Conn               = &connWrapper{}
	_ driver.ConnPrepareContext = &connWrapper{}
	_ driver.ConnBeginTx        = &connWrapper{}
	_ driver.ExecerContext      = &connWrapper{}
	_ driver.QueryerContext     = &connWrapper{}
	_ driver.Pinger             = &connWrapper{}
	_ driver.SessionResetter    = &connWrapper{}
	_ driver.Validator          = &connWrapper{}
	_ driver.NamedValueChecker  = &connWrapper{}
)

// connWrapper 底层连接没有实现的可选接口, 要么返回 driver.ErrSkip 让 database/sql 走默认流程,
// 要么返回默认值
type connWrapper struct {
	conn   driver.Conn
	logger Logger
}

func (c *connWrapper) Ping(ctx context.Context) error {
	p, ok := c.conn.(driver.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		c.logger.ErrorContext(ctx, "Ping 失败", "error", err)
		return err
	}
	return nil
}

func (c *connWrapper) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ec, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	res, err := ec.ExecContext(ctx, query, args)
	if err != nil {
		if err != driver.ErrSkip {
			c.logger.ErrorContext(ctx, "执行语句失败", "sql", query, "args", namedArgs(args), "error", err)
		}
		return nil, err
	}
	c.logger.DebugContext(ctx, "执行语句", "sql", query, "args", namedArgs(args))
	return &resultWrapper{result: res, logger: c.logger}, nil
}

func (c *connWrapper) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qc, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	rows, err := qc.QueryContext(ctx, query, args)
	if err != nil {
		if err != driver.ErrSkip {
			c.logger.ErrorContext(ctx, "查询失败", "sql", query, "args", namedArgs(args), "error", err)
		}
		return nil, err
	}
	c.logger.DebugContext(ctx, "查询", "sql", query, "args", namedArgs(args))
	return &rowsWrapper{rows: rows, logger: c.logger}, nil
}

func (c *connWrapper) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if pc, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = pc.PrepareContext(ctx, query)
	} else if err = ctx.Err(); err == nil {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "预编译失败", "sql", query, "error", err)
		return nil, err
	}
	c.logger.DebugContext(ctx, "预编译", "sql", query)
	return &stmtWrapper{stmt: stmt, conn: c, query: query, logger: c.logger}, nil
}

func (c *connWrapper) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	var (
		tx  driver.Tx
		err error
	)
	if bt, ok := c.conn.(driver.ConnBeginTx); ok {
		tx, err = bt.BeginTx(ctx, opts)
	} else if opts.Isolation != 0 || opts.ReadOnly {
		err = errIsolationNotSupported
	} else if err = ctx.Err(); err == nil {
		//nolint
		tx, err = c.conn.Begin()
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "开启事务失败", "error", err)
		return nil, err
	}
	c.logger.DebugContext(ctx, "开启事务")
	return &txWrapper{tx: tx, logger: c.logger}, nil
}

func (c *connWrapper) ResetSession(ctx context.Context) error {
	sr, ok := c.conn.(driver.SessionResetter)
	if !ok {
		return nil
	}
	return sr.ResetSession(ctx)
}

func (c *connWrapper) IsValid() bool {
	v, ok := c.conn.(driver.Validator)
	if !ok {
		return true
	}
	return v.IsValid()
}

func (c *connWrapper) CheckNamedValue(value *driver.NamedValue) error {
	nvc, ok := c.conn.(driver.NamedValueChecker)
	if !ok {
		return driver.ErrSkip
	}
	return nvc.CheckNamedValue(value)
}

func (c *connWrapper) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *connWrapper) Close() error {
	err := c.conn.Close()
	if err != nil {
		c.logger.Error("关闭连接失败", "error", err)
		return err
	}
	c.logger.Debug("关闭连接")
	return nil
}

// Begin starts and returns a new transaction.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *connWrapper) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func namedArgs(args []driver.NamedValue) []any {
	res := make([]any, len(args))
	for i, a := range args {
		res[i] = a.Value
	}
	return res
}
