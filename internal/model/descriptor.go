// Copyright 2021 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"fmt"
	"reflect"
	"time"

	"github.com/meoying/shardorm/internal/errs"
)

var timeType = reflect.TypeOf(time.Time{})

// Field 字段的元数据
type Field struct {
	// 结构体字段名
	Name string
	// 列名
	Column string
	// 字段类型, 保持原样, 可能是指针
	Type  reflect.Type
	Index []int

	IsPrimaryKey bool
	// IsShardKey 是否显式标记为分片键
	IsShardKey bool
	// Ref 不为 nil 说明该字段引用了另外一个实体, 列中存放的是被引用实体的主键
	Ref *Descriptor
}

// IsReference 字段是否引用了另一个实体
func (f *Field) IsReference() bool {
	return f.Ref != nil
}

// Descriptor 实体的元数据, 在注册的时候解析一次, 之后不会再修改
type Descriptor struct {
	// Type 结构体类型, 不是指针
	Type      reflect.Type
	TableName string
	// Fields 按照结构体定义的顺序排列
	Fields     []*Field
	PrimaryKey *Field
	// ShardKey 顶层的分片键字段, 如果它是引用字段, 那么真正的分片键在被引用实体上
	ShardKey *Field

	columns map[string]*Field
}

func (d *Descriptor) String() string {
	return d.Type.String()
}

// New 创建一个新的实体, 返回的是指针
func (d *Descriptor) New() any {
	return reflect.New(d.Type).Interface()
}

// ShardKeyColumn 顶层分片键对应的列名
func (d *Descriptor) ShardKeyColumn() string {
	return d.ShardKey.Column
}

// IsShardKeyColumn col 上的值能否直接用于路由.
// 引用字段的列存放的是被引用实体的主键, 只有被引用实体用主键作为分片键的时候,
// 列上的值才和写入时路由使用的值相同
func (d *Descriptor) IsShardKeyColumn(col string) bool {
	if d.ShardKey.Column != col {
		return false
	}
	if !d.ShardKey.IsReference() {
		return true
	}
	ref := d.ShardKey.Ref
	return ref.ShardKey == ref.PrimaryKey
}

func (d *Descriptor) FieldByColumn(col string) (*Field, bool) {
	f, ok := d.columns[col]
	return f, ok
}

// Columns 所有列名, 按照字段顺序
func (d *Descriptor) Columns() []string {
	res := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		res = append(res, f.Column)
	}
	return res
}

// ShardKeyValue 返回用于路由的值, 沿着引用一直找到最终的分片键字段
func (d *Descriptor) ShardKeyValue(entity any) (any, error) {
	val, err := d.structValue(entity)
	if err != nil {
		return nil, err
	}
	return d.shardKeyValue(val)
}

func (d *Descriptor) shardKeyValue(val reflect.Value) (any, error) {
	fd := val.FieldByIndex(d.ShardKey.Index)
	if d.ShardKey.IsReference() {
		if fd.IsNil() {
			return nil, fmt.Errorf("%w: %s.%s", errs.ErrMissingShardingKey, d, d.ShardKey.Name)
		}
		return d.ShardKey.Ref.shardKeyValue(fd.Elem())
	}
	if isNull(fd) {
		return nil, fmt.Errorf("%w: %s.%s", errs.ErrMissingShardingKey, d, d.ShardKey.Name)
	}
	return indirect(fd).Interface(), nil
}

// FillShardKey 分片键为空时使用 next 生成一个.
// 只处理直接的整数分片键, 已经有值的不会被覆盖, 引用类型的分片键需要调用方自己设置
func (d *Descriptor) FillShardKey(entity any, next func() int64) (bool, error) {
	if d.ShardKey.IsReference() {
		return false, nil
	}
	val, err := d.structValue(entity)
	if err != nil {
		return false, err
	}
	fd := val.FieldByIndex(d.ShardKey.Index)
	if !isInteger(d.ShardKey.Type) || !isUnsetKey(fd) {
		return false, nil
	}
	setInteger(fd, next())
	return true, nil
}

// PrimaryKeyValue 返回主键, 第二个返回值表示主键是否已经设置
func (d *Descriptor) PrimaryKeyValue(entity any) (int64, bool, error) {
	val, err := d.structValue(entity)
	if err != nil {
		return 0, false, err
	}
	id, ok := d.primaryKeyOf(val)
	return id, ok, nil
}

func (d *Descriptor) primaryKeyOf(val reflect.Value) (int64, bool) {
	fd := val.FieldByIndex(d.PrimaryKey.Index)
	if isUnsetKey(fd) {
		return 0, false
	}
	return integerOf(indirect(fd)), true
}

func (d *Descriptor) SetPrimaryKey(entity any, id int64) error {
	val, err := d.structValue(entity)
	if err != nil {
		return err
	}
	setInteger(val.FieldByIndex(d.PrimaryKey.Index), id)
	return nil
}

// NonNullColumns 所有非空的列以及对应的值.
// 引用字段取被引用实体的主键, 未设置的主键视为空
func (d *Descriptor) NonNullColumns(entity any) ([]string, []any, error) {
	val, err := d.structValue(entity)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]string, 0, len(d.Fields))
	vals := make([]any, 0, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := d.columnValue(val, f)
		if !ok {
			continue
		}
		cols = append(cols, f.Column)
		vals = append(vals, v)
	}
	return cols, vals, nil
}

// Values 按照 cols 的顺序返回值, 空值返回 nil
func (d *Descriptor) Values(entity any, cols []string) ([]any, error) {
	val, err := d.structValue(entity)
	if err != nil {
		return nil, err
	}
	res := make([]any, 0, len(cols))
	for _, c := range cols {
		f, ok := d.columns[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s 没有列 %s", errs.ErrConfiguration, d, c)
		}
		v, _ := d.columnValue(val, f)
		res = append(res, v)
	}
	return res, nil
}

func (d *Descriptor) columnValue(val reflect.Value, f *Field) (any, bool) {
	fd := val.FieldByIndex(f.Index)
	if f.IsReference() {
		if fd.IsNil() {
			return nil, false
		}
		id, ok := f.Ref.primaryKeyOf(fd.Elem())
		if !ok {
			return nil, false
		}
		return id, true
	}
	if isNull(fd) || (f.IsPrimaryKey && isUnsetKey(fd)) {
		return nil, false
	}
	return indirect(fd).Interface(), true
}

func (d *Descriptor) structValue(entity any) (reflect.Value, error) {
	val := reflect.ValueOf(entity)
	if val.Kind() != reflect.Pointer || val.IsNil() || val.Elem().Type() != d.Type {
		return reflect.Value{}, fmt.Errorf("%w: 期望 *%s, 实际 %T", errs.ErrConfiguration, d, entity)
	}
	return val.Elem(), nil
}

func isNull(fd reflect.Value) bool {
	switch fd.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return fd.IsNil()
	default:
		return false
	}
}

// isUnsetKey 键字段的空值: nil 指针或者非指针整数的零值
func isUnsetKey(fd reflect.Value) bool {
	return isNull(fd) || fd.IsZero()
}

func indirect(fd reflect.Value) reflect.Value {
	for fd.Kind() == reflect.Pointer {
		fd = fd.Elem()
	}
	return fd
}

func isInteger(typ reflect.Type) bool {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func integerOf(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

// setInteger fd 必须是整数或者整数指针
func setInteger(fd reflect.Value, id int64) {
	if fd.Kind() == reflect.Pointer {
		ptr := reflect.New(fd.Type().Elem())
		setInteger(ptr.Elem(), id)
		fd.Set(ptr)
		return
	}
	switch fd.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fd.SetUint(uint64(id))
	default:
		fd.SetInt(id)
	}
}
