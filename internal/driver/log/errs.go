package log

import (
	"errors"
)

var (
	errNamedArgsNotSupported = errors.New("driver/log: 底层驱动不支持命名参数")
	errIsolationNotSupported = errors.New("driver/log: 底层驱动不支持设置事务隔离级别或者只读事务")
)
