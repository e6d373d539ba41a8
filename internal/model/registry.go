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
	"strings"
	"sync"

	"github.com/ecodeclub/ekit/syncx"
	"github.com/meoying/shardorm/internal/errs"
)

const (
	tagName       = "shard"
	tagColumn     = "column"
	tagPrimaryKey = "primary_key"
	tagShardKey   = "shard_key"
)

// TableNamer 实体可以实现该接口自定义表名
type TableNamer interface {
	TableName() string
}

type Option func(d *Descriptor) error

// WithTableName 指定表名, 优先级最高
func WithTableName(name string) Option {
	return func(d *Descriptor) error {
		if name == "" {
			return fmt.Errorf("%w: %s 表名不能为空", errs.ErrConfiguration, d)
		}
		d.TableName = name
		return nil
	}
}

// Registry 元数据注册中心, 每个类型只解析一次
type Registry struct {
	descriptors syncx.Map[reflect.Type, *Descriptor]
	// 注册过程中会递归解析引用类型, 同一时刻只允许一个注册过程
	mu sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Get 查找元数据, 没有的话会注册
func (r *Registry) Get(entity any) (*Descriptor, error) {
	typ := reflect.TypeOf(entity)
	if d, ok := r.descriptors.Load(typ); ok {
		return d, nil
	}
	return r.Register(entity)
}

// Of 按照类型查找, 接受结构体或者结构体指针类型
func (r *Registry) Of(typ reflect.Type) (*Descriptor, error) {
	if typ == nil {
		return nil, errs.NewUnsupportedEntityError("nil")
	}
	if typ.Kind() == reflect.Struct {
		typ = reflect.PointerTo(typ)
	}
	if d, ok := r.descriptors.Load(typ); ok {
		return d, nil
	}
	return r.register(typ)
}

// Register 注册实体. 已经注册过的类型直接返回, options 只在第一次注册时生效
func (r *Registry) Register(entity any, opts ...Option) (*Descriptor, error) {
	return r.register(reflect.TypeOf(entity), opts...)
}

func (r *Registry) register(typ reflect.Type, opts ...Option) (*Descriptor, error) {
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.NewUnsupportedEntityError(fmt.Sprint(typ))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.descriptors.Load(typ); ok {
		return d, nil
	}
	p := &parser{registry: r, building: map[reflect.Type]*Descriptor{}}
	d, err := p.parse(typ.Elem(), opts...)
	if err != nil {
		return nil, err
	}
	for _, desc := range p.building {
		if err = resolveShardKey(desc, nil); err != nil {
			return nil, err
		}
		desc.columns = make(map[string]*Field, len(desc.Fields))
		for _, f := range desc.Fields {
			if _, dup := desc.columns[f.Column]; dup {
				return nil, fmt.Errorf("%w: %s 列 %s 重复", errs.ErrConfiguration, desc, f.Column)
			}
			desc.columns[f.Column] = f
		}
	}
	for t, desc := range p.building {
		r.descriptors.Store(reflect.PointerTo(t), desc)
	}
	return d, nil
}

type parser struct {
	registry *Registry
	// 本次注册过程中新解析的类型, 用于处理互相引用
	building map[reflect.Type]*Descriptor
}

func (p *parser) lookup(typ reflect.Type) (*Descriptor, bool) {
	if d, ok := p.building[typ]; ok {
		return d, true
	}
	return p.registry.descriptors.Load(reflect.PointerTo(typ))
}

func (p *parser) parse(typ reflect.Type, opts ...Option) (*Descriptor, error) {
	d := &Descriptor{
		Type:      typ,
		TableName: tableNameOf(typ.Name()),
	}
	if tn, ok := reflect.New(typ).Interface().(TableNamer); ok {
		d.TableName = tn.TableName()
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	p.building[typ] = d

	var pks, sks []string
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, ok := sf.Tag.Lookup(tagName)
		if ok && tag == "-" {
			continue
		}
		f := &Field{
			Name:  sf.Name,
			Type:  sf.Type,
			Index: sf.Index,
		}
		var column string
		if tag != "" {
			var err error
			column, err = parseTag(f, tag)
			if err != nil {
				return nil, errs.NewInvalidTagError(d.String(), sf.Name, tag)
			}
		}
		if isReferenceType(sf.Type) {
			ref, found := p.lookup(sf.Type.Elem())
			if !found {
				var err error
				ref, err = p.parse(sf.Type.Elem())
				if err != nil {
					return nil, err
				}
			}
			f.Ref = ref
			// 引用字段的列名固定为 <字段名>_id
			column = underscoreName(sf.Name) + "_id"
		}
		if column == "" {
			column = underscoreName(sf.Name)
		}
		f.Column = column
		if f.IsPrimaryKey {
			if f.IsReference() || !isInteger(f.Type) {
				return nil, errs.NewInvalidPrimaryKeyTypeError(d.String(), f.Name, f.Type.String())
			}
			pks = append(pks, f.Name)
			d.PrimaryKey = f
		}
		if f.IsShardKey {
			sks = append(sks, f.Name)
			d.ShardKey = f
		}
		d.Fields = append(d.Fields, f)
	}
	switch {
	case len(pks) == 0:
		return nil, errs.NewNoPrimaryKeyError(d.String())
	case len(pks) > 1:
		return nil, errs.NewMultiplePrimaryKeyError(d.String(), pks)
	case len(sks) > 1:
		return nil, errs.NewMultipleShardKeyError(d.String(), sks)
	}
	if d.ShardKey == nil {
		// 没有显式标记分片键, 使用第一个引用字段
		for _, f := range d.Fields {
			if f.IsReference() {
				d.ShardKey = f
				break
			}
		}
	}
	if d.ShardKey == nil {
		return nil, errs.NewNoShardKeyError(d.String())
	}
	return d, nil
}

// resolveShardKey 沿着引用检查分片键最终落在一个普通字段上
func resolveShardKey(d *Descriptor, path []string) error {
	name := d.String()
	for _, p := range path {
		if p == name {
			return errs.NewCyclicReferenceError(append(path, name))
		}
	}
	if d.ShardKey == nil {
		return errs.NewNoShardKeyError(name)
	}
	if !d.ShardKey.IsReference() {
		return nil
	}
	return resolveShardKey(d.ShardKey.Ref, append(path, name))
}

func parseTag(f *Field, tag string) (string, error) {
	var column string
	for _, seg := range strings.Split(tag, ",") {
		seg = strings.TrimSpace(seg)
		key, val, hasVal := strings.Cut(seg, "=")
		switch key {
		case "":
		case tagColumn:
			if !hasVal || val == "" {
				return "", errs.ErrConfiguration
			}
			column = val
		case tagPrimaryKey:
			f.IsPrimaryKey = true
		case tagShardKey:
			f.IsShardKey = true
		default:
			return "", errs.ErrConfiguration
		}
	}
	return column, nil
}

func isReferenceType(typ reflect.Type) bool {
	return typ.Kind() == reflect.Pointer &&
		typ.Elem().Kind() == reflect.Struct &&
		typ.Elem() != timeType
}
