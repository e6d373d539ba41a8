package log

import (
	"context"
	"database/sql/driver"
)

var (
	_ driver.Stmt              = &stmtWrapper{}
	_ driver.StmtExecContext   = &stmtWrapper{}
	_ driver.StmtQueryContext  = &stmtWrapper{}
	_ driver.NamedValueChecker = &stmtWrapper{}
)

type stmtWrapper struct {
	stmt   driver.Stmt
	conn   *connWrapper
	query  string
	logger Logger
}

func (s *stmtWrapper) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	var (
		result driver.Result
		err    error
	)
	if sec, ok := s.stmt.(driver.StmtExecContext); ok {
		result, err = sec.ExecContext(ctx, args)
	} else {
		var values []driver.Value
		values, err = namedValueToValue(args)
		if err == nil {
			if err = ctx.Err(); err == nil {
				//nolint
				result, err = s.stmt.Exec(values)
			}
		}
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "执行预编译语句失败", "sql", s.query, "args", namedArgs(args), "error", err)
		return nil, err
	}
	s.logger.DebugContext(ctx, "执行预编译语句", "sql", s.query, "args", namedArgs(args))
	return &resultWrapper{result: result, logger: s.logger}, nil
}

func (s *stmtWrapper) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	var (
		rows driver.Rows
		err  error
	)
	if sqc, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = sqc.QueryContext(ctx, args)
	} else {
		var values []driver.Value
		values, err = namedValueToValue(args)
		if err == nil {
			if err = ctx.Err(); err == nil {
				//nolint
				rows, err = s.stmt.Query(values)
			}
		}
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "预编译查询失败", "sql", s.query, "args", namedArgs(args), "error", err)
		return nil, err
	}
	s.logger.DebugContext(ctx, "预编译查询", "sql", s.query, "args", namedArgs(args))
	return &rowsWrapper{rows: rows, logger: s.logger}, nil
}

// CheckNamedValue 先交给语句, 再交给连接, 都不支持的话使用默认的转换
func (s *stmtWrapper) CheckNamedValue(value *driver.NamedValue) error {
	if nvc, ok := s.stmt.(driver.NamedValueChecker); ok {
		return nvc.CheckNamedValue(value)
	}
	if s.conn != nil {
		return s.conn.CheckNamedValue(value)
	}
	return driver.ErrSkip
}

// Exec
// Deprecated
func (s *stmtWrapper) Exec(args []driver.Value) (driver.Result, error) {
	//nolint
	result, err := s.stmt.Exec(args)
	if err != nil {
		s.logger.Error("执行预编译语句失败", "sql", s.query, "args", args, "error", err)
		return nil, err
	}
	s.logger.Debug("执行预编译语句", "sql", s.query, "args", args)
	return &resultWrapper{result: result, logger: s.logger}, nil
}

// Query
// Deprecated
func (s *stmtWrapper) Query(args []driver.Value) (driver.Rows, error) {
	//nolint
	rows, err := s.stmt.Query(args)
	if err != nil {
		s.logger.Error("预编译查询失败", "sql", s.query, "args", args, "error", err)
		return nil, err
	}
	s.logger.Debug("预编译查询", "sql", s.query, "args", args)
	return &rowsWrapper{rows: rows, logger: s.logger}, nil
}

func (s *stmtWrapper) NumInput() int {
	return s.stmt.NumInput()
}

func (s *stmtWrapper) Close() error {
	err := s.stmt.Close()
	if err != nil {
		s.logger.Error("关闭预编译语句失败", "sql", s.query, "error", err)
		return err
	}
	s.logger.Debug("关闭预编译语句", "sql", s.query)
	return nil
}
