package log

import (
	"database/sql/driver"
	"errors"
	"io"
	"reflect"
)

var (
	_ driver.Rows                           = &rowsWrapper{}
	_ driver.RowsNextResultSet              = &rowsWrapper{}
	_ driver.RowsColumnTypeScanType         = &rowsWrapper{}
	_ driver.RowsColumnTypeDatabaseTypeName = &rowsWrapper{}
	_ driver.RowsColumnTypeNullable         = &rowsWrapper{}
	_ driver.RowsColumnTypePrecisionScale   = &rowsWrapper{}
)

var scanTypeAny = reflect.TypeOf((*any)(nil)).Elem()

type rowsWrapper struct {
	rows   driver.Rows
	logger Logger
	count  int
}

func (r *rowsWrapper) HasNextResultSet() bool {
	rs, ok := r.rows.(driver.RowsNextResultSet)
	if !ok {
		return false
	}
	return rs.HasNextResultSet()
}

func (r *rowsWrapper) NextResultSet() error {
	rs, ok := r.rows.(driver.RowsNextResultSet)
	if !ok {
		return io.EOF
	}
	err := rs.NextResultSet()
	if err != nil && !errors.Is(err, io.EOF) {
		r.logger.Error("获取下一个结果集失败", "error", err)
	}
	return err
}

func (r *rowsWrapper) ColumnTypeScanType(index int) reflect.Type {
	st, ok := r.rows.(driver.RowsColumnTypeScanType)
	if !ok {
		return scanTypeAny
	}
	return st.ColumnTypeScanType(index)
}

func (r *rowsWrapper) ColumnTypeDatabaseTypeName(index int) string {
	tn, ok := r.rows.(driver.RowsColumnTypeDatabaseTypeName)
	if !ok {
		return ""
	}
	return tn.ColumnTypeDatabaseTypeName(index)
}

func (r *rowsWrapper) ColumnTypeNullable(index int) (nullable, ok bool) {
	cn, ok := r.rows.(driver.RowsColumnTypeNullable)
	if !ok {
		return false, false
	}
	return cn.ColumnTypeNullable(index)
}

func (r *rowsWrapper) ColumnTypePrecisionScale(index int) (precision, scale int64, ok bool) {
	ps, ok := r.rows.(driver.RowsColumnTypePrecisionScale)
	if !ok {
		return 0, 0, false
	}
	return ps.ColumnTypePrecisionScale(index)
}

func (r *rowsWrapper) Columns() []string {
	return r.rows.Columns()
}

func (r *rowsWrapper) Close() error {
	err := r.rows.Close()
	if err != nil {
		r.logger.Error("关闭结果集失败", "error", err)
		return err
	}
	r.logger.Debug("关闭结果集", "rows", r.count)
	return nil
}

func (r *rowsWrapper) Next(dest []driver.Value) error {
	err := r.rows.Next(dest)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.logger.Error("读取下一行失败", "error", err)
		}
		return err
	}
	r.count++
	return nil
}
