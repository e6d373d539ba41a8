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
	"context"
	"fmt"
	"reflect"

	"github.com/meoying/shardorm/internal/errs"
)

// Row 一行数据, key 是列名, value 是驱动返回的原始值
type Row = map[string]any

// Loader 按照主键加载被引用的实体
type Loader interface {
	LoadByID(ctx context.Context, d *Descriptor, id int64) (any, error)
}

// Mapper 把结果集转换为实体.
// 同一个 Mapper 会缓存加载过的引用实体, 所以它的生命周期应该和一次查询相同
type Mapper struct {
	loader Loader
	refs   map[refKey]reflect.Value
}

type refKey struct {
	typ reflect.Type
	id  int64
}

// NewMapper loader 为 nil 时引用字段只会填充主键
func NewMapper(loader Loader) *Mapper {
	return &Mapper{
		loader: loader,
		refs:   make(map[refKey]reflect.Value, 8),
	}
}

// Map 返回 *T, T 是 d 描述的结构体. 结果集里面多出来的列会被忽略
func (m *Mapper) Map(ctx context.Context, d *Descriptor, row Row) (any, error) {
	ptr := reflect.New(d.Type)
	val := ptr.Elem()
	for col, src := range row {
		f, ok := d.FieldByColumn(col)
		if !ok {
			continue
		}
		fd := val.FieldByIndex(f.Index)
		if f.IsReference() {
			if err := m.mapReference(ctx, d, f, fd, col, src); err != nil {
				return nil, err
			}
			continue
		}
		if err := assign(fd, src); err != nil {
			return nil, newMappingError(d, f, col, src, err)
		}
	}
	return ptr.Interface(), nil
}

func (m *Mapper) MapAll(ctx context.Context, d *Descriptor, rows []Row) ([]any, error) {
	res := make([]any, 0, len(rows))
	for _, row := range rows {
		e, err := m.Map(ctx, d, row)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (m *Mapper) mapReference(ctx context.Context, d *Descriptor, f *Field, fd reflect.Value, col string, src any) error {
	if src == nil {
		fd.Set(reflect.Zero(fd.Type()))
		return nil
	}
	var id int64
	idVal := reflect.ValueOf(&id).Elem()
	if err := assign(idVal, src); err != nil {
		return newMappingError(d, f, col, src, err)
	}
	key := refKey{typ: f.Ref.Type, id: id}
	if ref, ok := m.refs[key]; ok {
		fd.Set(ref)
		return nil
	}
	var ref reflect.Value
	if m.loader == nil {
		ref = reflect.New(f.Ref.Type)
		setInteger(ref.Elem().FieldByIndex(f.Ref.PrimaryKey.Index), id)
	} else {
		e, err := m.loader.LoadByID(ctx, f.Ref, id)
		if err != nil {
			return fmt.Errorf("加载 %s.%s=%d 失败: %w", f.Ref.TableName, f.Ref.PrimaryKey.Column, id, err)
		}
		ref = reflect.ValueOf(e)
	}
	m.refs[key] = ref
	fd.Set(ref)
	return nil
}

func newMappingError(d *Descriptor, f *Field, col string, src any, err error) error {
	return errs.NewMappingError(col, d.String()+"."+f.Name, fmt.Sprintf("%T", src), f.Type.String(), err)
}
