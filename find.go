package shardorm

import (
	"context"
	"fmt"

	"github.com/ecodeclub/ekit/slice"
	"github.com/meoying/shardorm/internal/errs"
	"github.com/meoying/shardorm/internal/model"
	"github.com/meoying/shardorm/internal/query"
)

// Selector 查询 T. 所有方法都返回新的 Selector, 原来的不受影响
type Selector[T any] struct {
	db   *DB
	d    *model.Descriptor
	cond query.Condition
	err  error
}

func Find[T any](db *DB) Selector[T] {
	d, err := descriptorOf[T](db)
	return Selector[T]{db: db, d: d, cond: query.Where(d), err: err}
}

// Where 清空之前的条件
func (s Selector[T]) Where() Selector[T] {
	s.cond = query.Where(s.d)
	return s
}

// Eq 追加 column = val, 如果 column 是分片键, val 同时用于路由
func (s Selector[T]) Eq(column string, val any) Selector[T] {
	if s.err != nil {
		return s
	}
	if _, ok := s.d.FieldByColumn(column); !ok {
		s.err = fmt.Errorf("%w: %s 没有列 %s", errs.ErrConfiguration, s.d, column)
		return s
	}
	s.cond = s.cond.Eq(column, val)
	return s
}

// WithShardKey 显式指定路由使用的分片键, 不影响查询条件
func (s Selector[T]) WithShardKey(val any) Selector[T] {
	s.cond = s.cond.WithShardKey(val)
	return s
}

// All 查询所有分片, 按照主键升序
func (s Selector[T]) All(ctx context.Context) ([]*T, error) {
	if s.err != nil {
		return nil, s.err
	}
	res, err := s.db.router.FindAll(ctx, s.d, s.cond)
	if err != nil {
		return nil, err
	}
	return toEntities[T](res), nil
}

// List 有分片键条件的时候只查询对应的分片, 否则和 All 一样
func (s Selector[T]) List(ctx context.Context) ([]*T, error) {
	if s.err != nil {
		return nil, s.err
	}
	res, err := s.db.router.FindList(ctx, s.d, s.cond)
	if err != nil {
		return nil, err
	}
	return toEntities[T](res), nil
}

// One 必须有分片键条件, 否则返回 ErrPrerequisite.
// 没有数据返回 ErrNoRows, 多于一行返回 ErrPersistence
func (s Selector[T]) One(ctx context.Context) (*T, error) {
	if s.err != nil {
		return nil, s.err
	}
	res, err := s.db.router.FindOne(ctx, s.d, s.cond)
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}

func toEntities[T any](res []any) []*T {
	return slice.Map(res, func(idx int, src any) *T {
		return src.(*T)
	})
}

// Aggregator 在单个分片上计算 SUM(column)
type Aggregator[T any] struct {
	db     *DB
	d      *model.Descriptor
	column string
	cond   query.Condition
	err    error
}

func Sum[T any](db *DB, column string) Aggregator[T] {
	d, err := descriptorOf[T](db)
	if err == nil {
		if _, ok := d.FieldByColumn(column); !ok {
			err = fmt.Errorf("%w: %s 没有列 %s", errs.ErrConfiguration, d, column)
		}
	}
	return Aggregator[T]{db: db, d: d, column: column, cond: query.Where(d), err: err}
}

func (a Aggregator[T]) Where() Aggregator[T] {
	a.cond = query.Where(a.d)
	return a
}

func (a Aggregator[T]) Eq(column string, val any) Aggregator[T] {
	if a.err != nil {
		return a
	}
	if _, ok := a.d.FieldByColumn(column); !ok {
		a.err = fmt.Errorf("%w: %s 没有列 %s", errs.ErrConfiguration, a.d, column)
		return a
	}
	a.cond = a.cond.Eq(column, val)
	return a
}

func (a Aggregator[T]) WithShardKey(val any) Aggregator[T] {
	a.cond = a.cond.WithShardKey(val)
	return a
}

// Exec 结果写入 dest, 没有匹配的行时写入零值
func (a Aggregator[T]) Exec(ctx context.Context, dest any) error {
	if a.err != nil {
		return a.err
	}
	return a.db.router.SelectSingle(ctx, query.Sum(a.d, a.column, a.cond), a.cond, dest)
}
