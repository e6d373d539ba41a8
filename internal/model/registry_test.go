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
	"reflect"
	"testing"
	"time"

	"github.com/meoying/shardorm/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Customer struct {
	ID   *int64 `shard:"primary_key,shard_key"`
	Name string
}

func (Customer) TableName() string {
	return "customer"
}

type Payment struct {
	ID       *int64 `shard:"primary_key"`
	Amount   *int64
	Sender   *Customer `shard:"shard_key"`
	Receiver *Customer
}

type OrderItem struct {
	ItemID    int64  `shard:"primary_key"`
	UserID    uint32 `shard:"column=uid,shard_key"`
	Remark    *string
	CreatedAt time.Time
	Ignored   string `shard:"-"`
	internal  int
}

type Category struct {
	ID     int64 `shard:"primary_key"`
	Parent *Category
}

type Transfer struct {
	ID      int64 `shard:"primary_key"`
	Payment *Payment
}

type RegionUser struct {
	ID     *int64 `shard:"primary_key"`
	Region string `shard:"shard_key"`
}

type RegionOrder struct {
	ID    *int64 `shard:"primary_key"`
	Owner *RegionUser
}

type NoPrimaryKey struct {
	UserID int64 `shard:"shard_key"`
}

type TwoPrimaryKeys struct {
	ID     int64 `shard:"primary_key,shard_key"`
	Second int64 `shard:"primary_key"`
}

type StringPrimaryKey struct {
	ID string `shard:"primary_key,shard_key"`
}

type NoShardKey struct {
	ID   int64 `shard:"primary_key"`
	Name string
}

type TwoShardKeys struct {
	ID  int64 `shard:"primary_key,shard_key"`
	UID int64 `shard:"shard_key"`
}

type BadTag struct {
	ID int64 `shard:"primary_key,shard_key,auto_increment"`
}

type DuplicateColumn struct {
	ID   int64 `shard:"primary_key,shard_key"`
	Name string
	Nick string `shard:"column=name"`
}

func TestRegistry_Register(t *testing.T) {
	testCases := []struct {
		name    string
		entity  any
		opts    []Option
		wantErr error

		wantTable    string
		wantColumns  []string
		wantPK       string
		wantShardKey string
	}{
		{
			name:         "TableName 方法",
			entity:       &Customer{},
			wantTable:    "customer",
			wantColumns:  []string{"id", "name"},
			wantPK:       "id",
			wantShardKey: "id",
		},
		{
			name:         "引用字段",
			entity:       &Payment{},
			wantTable:    "payments",
			wantColumns:  []string{"id", "amount", "sender_id", "receiver_id"},
			wantPK:       "id",
			wantShardKey: "sender_id",
		},
		{
			name:         "自定义列名以及忽略字段",
			entity:       &OrderItem{},
			wantTable:    "order_items",
			wantColumns:  []string{"item_id", "uid", "remark", "created_at"},
			wantPK:       "item_id",
			wantShardKey: "uid",
		},
		{
			name:         "WithTableName",
			entity:       &Transfer{},
			opts:         []Option{WithTableName("transfer_tab")},
			wantTable:    "transfer_tab",
			wantColumns:  []string{"id", "payment_id"},
			wantPK:       "id",
			wantShardKey: "payment_id",
		},
		{
			name:    "非指针",
			entity:  Customer{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "空表名",
			entity:  &NoShardKey{},
			opts:    []Option{WithTableName("")},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "没有主键",
			entity:  &NoPrimaryKey{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "多个主键",
			entity:  &TwoPrimaryKeys{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "主键不是整数",
			entity:  &StringPrimaryKey{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "没有分片键",
			entity:  &NoShardKey{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "多个分片键",
			entity:  &TwoShardKeys{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "循环引用",
			entity:  &Category{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "非法标签",
			entity:  &BadTag{},
			wantErr: errs.ErrConfiguration,
		},
		{
			name:    "列名重复",
			entity:  &DuplicateColumn{},
			wantErr: errs.ErrConfiguration,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			d, err := r.Register(tc.entity, tc.opts...)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantTable, d.TableName)
			assert.Equal(t, tc.wantColumns, d.Columns())
			assert.Equal(t, tc.wantPK, d.PrimaryKey.Column)
			assert.Equal(t, tc.wantShardKey, d.ShardKeyColumn())
			assert.True(t, d.IsShardKeyColumn(tc.wantShardKey))
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	d1, err := r.Get(&Payment{})
	require.NoError(t, err)
	d2, err := r.Get(&Payment{})
	require.NoError(t, err)
	assert.Same(t, d1, d2)

	// 引用类型在注册 Payment 的时候一起注册了
	cd, err := r.Of(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	sender, ok := d1.FieldByColumn("sender_id")
	require.True(t, ok)
	assert.Same(t, cd, sender.Ref)
	receiver, ok := d1.FieldByColumn("receiver_id")
	require.True(t, ok)
	assert.Same(t, cd, receiver.Ref)
	assert.False(t, receiver.IsShardKey)

	_, ok = d1.FieldByColumn("sender")
	assert.False(t, ok)
}

func TestDescriptor_IsShardKeyColumn(t *testing.T) {
	testCases := []struct {
		name   string
		entity any
		column string
		want   bool
	}{
		{name: "直接分片键", entity: &Customer{}, column: "id", want: true},
		{name: "非分片键", entity: &Customer{}, column: "name"},
		{name: "非指针类型的分片键", entity: &OrderItem{}, column: "uid", want: true},
		{name: "引用实体以主键分片", entity: &Payment{}, column: "sender_id", want: true},
		{name: "引用但不是分片键", entity: &Payment{}, column: "receiver_id"},
		// 写入按照 region 路由, owner_id 上的值不能用于路由
		{name: "引用实体不以主键分片", entity: &RegionOrder{}, column: "owner_id"},
		{name: "两层引用", entity: &Transfer{}, column: "payment_id"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewRegistry().Get(tc.entity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.IsShardKeyColumn(tc.column))
		})
	}
}

func TestDescriptor_ShardKeyValue(t *testing.T) {
	r := NewRegistry()
	testCases := []struct {
		name    string
		entity  any
		wantVal any
		wantErr error
	}{
		{
			name:    "直接分片键",
			entity:  &Customer{ID: ptr[int64](12)},
			wantVal: int64(12),
		},
		{
			name:    "直接分片键为空",
			entity:  &Customer{},
			wantErr: errs.ErrMissingShardingKey,
		},
		{
			name:    "通过引用",
			entity:  &Payment{Sender: &Customer{ID: ptr[int64](7)}},
			wantVal: int64(7),
		},
		{
			name:    "引用为空",
			entity:  &Payment{},
			wantErr: errs.ErrMissingShardingKey,
		},
		{
			name:    "引用实体的分片键为空",
			entity:  &Payment{Sender: &Customer{Name: "Tom"}},
			wantErr: errs.ErrMissingShardingKey,
		},
		{
			name:    "两层引用",
			entity:  &Transfer{Payment: &Payment{Sender: &Customer{ID: ptr[int64](3)}}},
			wantVal: int64(3),
		},
		{
			name:    "非指针类型的分片键",
			entity:  &OrderItem{UserID: 9},
			wantVal: uint32(9),
		},
		{
			name:    "引用实体不以主键分片",
			entity:  &RegionOrder{Owner: &RegionUser{ID: ptr[int64](7), Region: "eu"}},
			wantVal: "eu",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := r.Get(tc.entity)
			require.NoError(t, err)
			val, err := d.ShardKeyValue(tc.entity)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, val)
		})
	}
}

func TestDescriptor_FillShardKey(t *testing.T) {
	r := NewRegistry()
	next := func() int64 { return 100 }

	c := &Customer{Name: "Tom"}
	d, err := r.Get(c)
	require.NoError(t, err)
	filled, err := d.FillShardKey(c, next)
	require.NoError(t, err)
	assert.True(t, filled)
	assert.Equal(t, int64(100), *c.ID)

	// 已经有值的不会覆盖
	c = &Customer{ID: ptr[int64](5)}
	filled, err = d.FillShardKey(c, next)
	require.NoError(t, err)
	assert.False(t, filled)
	assert.Equal(t, int64(5), *c.ID)

	// 引用类型的分片键不处理
	p := &Payment{}
	pd, err := r.Get(p)
	require.NoError(t, err)
	filled, err = pd.FillShardKey(p, next)
	require.NoError(t, err)
	assert.False(t, filled)
	assert.Nil(t, p.Sender)

	_, err = d.FillShardKey(p, next)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestDescriptor_NonNullColumns(t *testing.T) {
	r := NewRegistry()
	testCases := []struct {
		name     string
		entity   any
		wantCols []string
		wantVals []any
	}{
		{
			name:     "主键为空",
			entity:   &Customer{Name: "Tom"},
			wantCols: []string{"name"},
			wantVals: []any{"Tom"},
		},
		{
			name:     "引用取主键",
			entity:   &Payment{Amount: ptr[int64](10), Sender: &Customer{ID: ptr[int64](1)}, Receiver: &Customer{ID: ptr[int64](2)}},
			wantCols: []string{"amount", "sender_id", "receiver_id"},
			wantVals: []any{int64(10), int64(1), int64(2)},
		},
		{
			name:     "引用实体没有主键",
			entity:   &Payment{ID: ptr[int64](3), Sender: &Customer{ID: ptr[int64](1)}, Receiver: &Customer{}},
			wantCols: []string{"id", "sender_id"},
			wantVals: []any{int64(3), int64(1)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := r.Get(tc.entity)
			require.NoError(t, err)
			cols, vals, err := d.NonNullColumns(tc.entity)
			require.NoError(t, err)
			assert.Equal(t, tc.wantCols, cols)
			assert.Equal(t, tc.wantVals, vals)
		})
	}
}

func TestDescriptor_PrimaryKey(t *testing.T) {
	r := NewRegistry()
	item := &OrderItem{}
	d, err := r.Get(item)
	require.NoError(t, err)
	_, ok, err := d.PrimaryKeyValue(item)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.SetPrimaryKey(item, 42))
	id, ok, err := d.PrimaryKeyValue(item)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), item.ItemID)

	vals, err := d.Values(item, []string{"uid", "item_id", "remark"})
	require.NoError(t, err)
	assert.Equal(t, []any{uint32(0), int64(42), nil}, vals)

	_, err = d.Values(item, []string{"unknown"})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestUnderscoreName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "单个单词", input: "Name", want: "name"},
		{name: "缩写", input: "ID", want: "id"},
		{name: "缩写结尾", input: "SenderID", want: "sender_id"},
		{name: "缩写开头", input: "HTTPServer", want: "http_server"},
		{name: "驼峰", input: "OrderItem", want: "order_item"},
		{name: "数字", input: "Address2Line", want: "address2_line"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, underscoreName(tc.input))
		})
	}
}

func TestTableNameOf(t *testing.T) {
	assert.Equal(t, "order_items", tableNameOf("OrderItem"))
	assert.Equal(t, "categories", tableNameOf("Category"))
	assert.Equal(t, "boxes", tableNameOf("Box"))
	assert.Equal(t, "keys", tableNameOf("Key"))
	assert.Equal(t, "addresses", tableNameOf("Address"))
}

func ptr[T any](v T) *T {
	return &v
}
