package log

import (
	"database/sql/driver"
)

var _ driver.Result = &resultWrapper{}

type resultWrapper struct {
	result driver.Result
	logger Logger
}

func (r *resultWrapper) LastInsertId() (int64, error) {
	id, err := r.result.LastInsertId()
	if err != nil {
		r.logger.Error("获取 LastInsertId 失败", "error", err)
		return 0, err
	}
	r.logger.Debug("LastInsertId", "id", id)
	return id, nil
}

func (r *resultWrapper) RowsAffected() (int64, error) {
	rows, err := r.result.RowsAffected()
	if err != nil {
		r.logger.Error("获取 RowsAffected 失败", "error", err)
		return 0, err
	}
	r.logger.Debug("RowsAffected", "rows", rows)
	return rows, nil
}
