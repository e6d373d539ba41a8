package shardorm

import (
	"github.com/meoying/shardorm/internal/errs"
	"github.com/meoying/shardorm/internal/model"
)

// 错误分类, 使用 errors.Is 判断
var (
	ErrConfiguration      = errs.ErrConfiguration
	ErrRouting            = errs.ErrRouting
	ErrPersistence        = errs.ErrPersistence
	ErrPrerequisite       = errs.ErrPrerequisite
	ErrMapping            = errs.ErrMapping
	ErrValidation         = errs.ErrValidation
	ErrMissingShardingKey = errs.ErrMissingShardingKey
	ErrNoRows             = errs.ErrNoRows
	ErrTooManyRows        = errs.ErrTooManyRows
)

type (
	PersistenceError = errs.PersistenceError
	MappingError     = errs.MappingError
)

// Row 原生查询的一行, key 是列名
type Row = model.Row

// ScanValue 把 Row 中的值转换后写入 dest, 规则和实体映射相同. src 为 NULL 时写入零值
func ScanValue(dest any, src any) error {
	return model.AssignValue(dest, src)
}
