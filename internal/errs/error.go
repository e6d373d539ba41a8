package errs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// 以下为错误分类, 调用方通过 errors.Is 判断类别。
// 所有错误都不会在本层重试
var (
	// ErrConfiguration 实体元数据无法解析, 例如缺少主键或者分片键
	ErrConfiguration = errors.New("shardorm: 实体配置错误")
	// ErrRouting 计算出来的分片没有对应的 Shard
	ErrRouting = errors.New("shardorm: 路由失败")
	// ErrPersistence 底层存储失败, 或者行数不符合预期
	ErrPersistence = errors.New("shardorm: 持久化失败")
	// ErrPrerequisite 查询要求分片键条件, 但是从未设置
	ErrPrerequisite = errors.New("shardorm: 缺少前置条件")
	// ErrMapping 行数据转换为实体失败
	ErrMapping = errors.New("shardorm: 结果集映射失败")
	// ErrValidation 实体没有通过校验
	ErrValidation = errors.New("shardorm: 实体校验失败")
)

var (
	ErrMissingShardingKey = fmt.Errorf("%w: sharding key 未设置", ErrRouting)
	ErrNoRows             = fmt.Errorf("%w: 没有数据", ErrPersistence)
	ErrTooManyRows        = fmt.Errorf("%w: 期望一行数据, 但是返回了多行", ErrPersistence)
	ErrNoShards           = fmt.Errorf("%w: 没有配置任何分片", ErrConfiguration)
)

func NewNoPrimaryKeyError(typ string) error {
	return fmt.Errorf("%w: %s 没有主键字段", ErrConfiguration, typ)
}

func NewMultiplePrimaryKeyError(typ string, fields []string) error {
	return fmt.Errorf("%w: %s 只能有一个主键, 实际 [%s]", ErrConfiguration, typ, strings.Join(fields, ","))
}

func NewInvalidPrimaryKeyTypeError(typ, field, kind string) error {
	return fmt.Errorf("%w: %s.%s 主键必须是整数类型, 实际 %s", ErrConfiguration, typ, field, kind)
}

func NewNoShardKeyError(typ string) error {
	return fmt.Errorf("%w: %s 没有分片键字段, 分片键是必须的", ErrConfiguration, typ)
}

func NewMultipleShardKeyError(typ string, fields []string) error {
	return fmt.Errorf("%w: %s 只能有一个分片键, 实际 [%s]", ErrConfiguration, typ, strings.Join(fields, ","))
}

func NewCyclicReferenceError(path []string) error {
	return fmt.Errorf("%w: 分片键解析出现循环引用 %s", ErrConfiguration, strings.Join(path, " -> "))
}

func NewInvalidTagError(typ, field, tag string) error {
	return fmt.Errorf("%w: %s.%s 非法的标签 %q", ErrConfiguration, typ, field, tag)
}

func NewUnsupportedEntityError(typ string) error {
	return fmt.Errorf("%w: %s 不是实体, 只支持结构体指针", ErrConfiguration, typ)
}

func NewDuplicateShardError(id int) error {
	return fmt.Errorf("%w: 分片 %d 重复", ErrConfiguration, id)
}

func NewInvalidShardIDError(id int) error {
	return fmt.Errorf("%w: 分片 id 必须大于 0, 实际 %d", ErrConfiguration, id)
}

func NewShardNotFoundError(id int) error {
	return fmt.Errorf("%w: 未发现分片 %d", ErrRouting, id)
}

func NewMissingShardKeyPredicateError(table string) error {
	return fmt.Errorf("%w: 查询 %s 需要分片键等值条件", ErrPrerequisite, table)
}

func NewValidationError(typ string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrValidation, typ, err)
}

// PersistenceError 携带出错的语句以及底层原因
type PersistenceError struct {
	SQL  string
	Args []any
	Err  error
}

func NewPersistenceError(sql string, args []any, err error) error {
	return &PersistenceError{SQL: sql, Args: args, Err: err}
}

func NewUnexpectedRowsError(sql string, args []any, cnt int) error {
	if cnt == 0 {
		return NewPersistenceError(sql, args, ErrNoRows)
	}
	return NewPersistenceError(sql, args, fmt.Errorf("%w: %d 行", ErrTooManyRows, cnt))
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: 语句 %q 参数 %v: %v", ErrPersistence.Error(), e.SQL, e.Args, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// MappingError 描述某一列无法赋值给实体字段
type MappingError struct {
	Column string
	Field  string
	Src    string
	Dst    string
	Err    error
}

func NewMappingError(column, field, src, dst string, err error) error {
	return &MappingError{Column: column, Field: field, Src: src, Dst: dst, Err: err}
}

func (e *MappingError) Error() string {
	msg := fmt.Sprintf("%s: 列 %s 的 %s 类型值无法转换为字段 %s 的 %s 类型",
		ErrMapping.Error(), e.Column, e.Src, e.Field, e.Dst)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMapping}
	}
	return []error{ErrMapping, e.Err}
}
