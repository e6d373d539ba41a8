package log

import (
	"database/sql/driver"
)

var _ driver.Tx = &txWrapper{}

type txWrapper struct {
	tx     driver.Tx
	logger Logger
}

func (t *txWrapper) Commit() error {
	err := t.tx.Commit()
	if err != nil {
		t.logger.Error("提交事务失败", "error", err)
		return err
	}
	t.logger.Debug("事务提交成功")
	return nil
}

func (t *txWrapper) Rollback() error {
	err := t.tx.Rollback()
	if err != nil {
		t.logger.Error("回滚事务失败", "error", err)
		return err
	}
	t.logger.Debug("事务回滚成功")
	return nil
}
