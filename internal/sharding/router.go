package sharding

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/meoying/shardorm/internal/errs"
	"github.com/meoying/shardorm/internal/merger"
	"github.com/meoying/shardorm/internal/model"
	"github.com/meoying/shardorm/internal/query"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var _ model.Loader = (*Router)(nil)

// Router 按照分片键把操作路由到 Shard 上, 没有分片键的查询会广播到所有分片
type Router struct {
	shards   map[int]Shard
	ids      []int
	registry *model.Registry
	logger   *slog.Logger
}

type RouterOption func(r *Router)

func WithRegistry(registry *model.Registry) RouterOption {
	return func(r *Router) {
		r.registry = registry
	}
}

func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// NewRouter 分片 id 应该是 1..N, N 为分片数量.
// 不连续的 id 可以通过校验, 但是落到空缺 id 上的数据会返回 errs.ErrRouting
func NewRouter(shards []Shard, opts ...RouterOption) (*Router, error) {
	if len(shards) == 0 {
		return nil, errs.ErrNoShards
	}
	r := &Router{
		shards:   make(map[int]Shard, len(shards)),
		ids:      make([]int, 0, len(shards)),
		registry: model.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, s := range shards {
		id := s.ID()
		if id <= 0 {
			return nil, errs.NewInvalidShardIDError(id)
		}
		if _, ok := r.shards[id]; ok {
			return nil, errs.NewDuplicateShardError(id)
		}
		r.shards[id] = s
		r.ids = append(r.ids, id)
	}
	slices.Sort(r.ids)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// N 分片数量
func (r *Router) N() int {
	return len(r.ids)
}

// Shards 按照 id 升序
func (r *Router) Shards() []Shard {
	res := make([]Shard, 0, len(r.ids))
	for _, id := range r.ids {
		res = append(res, r.shards[id])
	}
	return res
}

func (r *Router) Registry() *model.Registry {
	return r.registry
}

func (r *Router) ShardIDFor(value any) (int, error) {
	h, err := Hash(value)
	if err != nil {
		return 0, err
	}
	return ShardID(h, len(r.ids)), nil
}

func (r *Router) ShardFor(value any) (Shard, error) {
	id, err := r.ShardIDFor(value)
	if err != nil {
		return nil, err
	}
	s, ok := r.shards[id]
	if !ok {
		return nil, errs.NewShardNotFoundError(id)
	}
	return s, nil
}

// ShardIDForEntity 分片键会沿着引用一直解析到普通字段
func (r *Router) ShardIDForEntity(entity any) (int, error) {
	d, err := r.registry.Get(entity)
	if err != nil {
		return 0, err
	}
	v, err := d.ShardKeyValue(entity)
	if err != nil {
		return 0, err
	}
	return r.ShardIDFor(v)
}

func (r *Router) shardForEntity(entity any) (*model.Descriptor, Shard, error) {
	d, err := r.registry.Get(entity)
	if err != nil {
		return nil, nil, err
	}
	v, err := d.ShardKeyValue(entity)
	if err != nil {
		return nil, nil, err
	}
	s, err := r.ShardFor(v)
	if err != nil {
		return nil, nil, err
	}
	return d, s, nil
}

// Save 写入单个实体, 返回主键
func (r *Router) Save(ctx context.Context, entity any) (int64, error) {
	d, s, err := r.shardForEntity(entity)
	if err != nil {
		return 0, err
	}
	r.logger.DebugContext(ctx, "路由写入", slog.String("table", d.TableName), slog.Int("shard", s.ID()))
	return s.Insert(ctx, d, entity)
}

type batchKey struct {
	shard int
	d     *model.Descriptor
}

type batch struct {
	shard    Shard
	d        *model.Descriptor
	indexes  []int
	entities []any
}

// SaveAllInBatch 按照 (分片, 实体类型) 分组, 每组一次批量写入, 各组并发执行.
// 返回的 keys[i] 对应 entities[i]. 路由阶段出错时不会写入任何数据;
// 写入阶段某些组失败时, 其余组的写入不会回滚, 失败组对应的 key 为 0
func (r *Router) SaveAllInBatch(ctx context.Context, entities []any) ([]int64, error) {
	if len(entities) == 0 {
		return []int64{}, nil
	}
	groups := make(map[batchKey]*batch, len(r.ids))
	order := make([]*batch, 0, len(r.ids))
	for i, entity := range entities {
		d, s, err := r.shardForEntity(entity)
		if err != nil {
			return nil, err
		}
		key := batchKey{shard: s.ID(), d: d}
		b, ok := groups[key]
		if !ok {
			b = &batch{shard: s, d: d}
			groups[key] = b
			order = append(order, b)
		}
		b.indexes = append(b.indexes, i)
		b.entities = append(b.entities, entity)
	}

	keys := make([]int64, len(entities))
	errList := make([]error, len(order))
	var wg sync.WaitGroup
	for idx, b := range order {
		wg.Add(1)
		go func(idx int, b *batch) {
			defer wg.Done()
			r.logger.DebugContext(ctx, "路由批量写入",
				slog.String("table", b.d.TableName),
				slog.Int("shard", b.shard.ID()),
				slog.Int("count", len(b.entities)))
			ks, er := b.shard.InsertBatch(ctx, b.d, b.entities)
			if er != nil {
				errList[idx] = fmt.Errorf("分片 %d 写入 %s 失败: %w", b.shard.ID(), b.d.TableName, er)
				return
			}
			if len(ks) != len(b.indexes) {
				errList[idx] = fmt.Errorf("%w: 分片 %d 返回了 %d 个主键, 期望 %d 个",
					errs.ErrPersistence, b.shard.ID(), len(ks), len(b.indexes))
				return
			}
			// 不同的组写入的下标不重叠
			for j, i := range b.indexes {
				keys[i] = ks[j]
			}
		}(idx, b)
	}
	wg.Wait()
	return keys, multierr.Combine(errList...)
}

// FindAll 广播到所有分片, 结果按照主键升序合并
func (r *Router) FindAll(ctx context.Context, d *model.Descriptor, cond query.Condition) ([]any, error) {
	lists := make([][]any, len(r.ids))
	var eg errgroup.Group
	for i, id := range r.ids {
		i, s := i, r.shards[id]
		eg.Go(func() error {
			res, err := s.FindAll(ctx, d, cond, r)
			if err != nil {
				return fmt.Errorf("分片 %d 查询 %s 失败: %w", s.ID(), d.TableName, err)
			}
			lists[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return merger.Merge(lists, func(e any) int64 {
		id, _, _ := d.PrimaryKeyValue(e)
		return id
	}, merger.OrderASC), nil
}

// FindList 有分片键条件的时候只查询一个分片, 否则广播
func (r *Router) FindList(ctx context.Context, d *model.Descriptor, cond query.Condition) ([]any, error) {
	sk, ok := cond.ShardKey()
	if !ok {
		return r.FindAll(ctx, d, cond)
	}
	s, err := r.ShardFor(sk)
	if err != nil {
		return nil, err
	}
	return s.FindAll(ctx, d, cond, r)
}

// FindOne 必须带有分片键条件, 结果必须恰好一行
func (r *Router) FindOne(ctx context.Context, d *model.Descriptor, cond query.Condition) (any, error) {
	s, err := r.boundShard(d, cond)
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "路由查询", slog.String("table", d.TableName), slog.Int("shard", s.ID()))
	return s.FindOne(ctx, d, cond, r)
}

// SelectSingle 在分片键条件对应的分片上执行 q, 把唯一的值写入 dest
func (r *Router) SelectSingle(ctx context.Context, q query.Query, cond query.Condition, dest any) error {
	s, err := r.boundShard(cond.Descriptor(), cond)
	if err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "路由查询", slog.String("sql", q.SQL), slog.Int("shard", s.ID()))
	return s.SelectSingle(ctx, q, dest)
}

func (r *Router) boundShard(d *model.Descriptor, cond query.Condition) (Shard, error) {
	sk, ok := cond.ShardKey()
	if !ok {
		return nil, errs.NewMissingShardKeyPredicateError(d.TableName)
	}
	return r.ShardFor(sk)
}

// Query 在所有分片上执行原生查询, 结果按照分片 id 的顺序拼接
func (r *Router) Query(ctx context.Context, q query.Query) ([]model.Row, error) {
	lists := make([][]model.Row, len(r.ids))
	var eg errgroup.Group
	for i, id := range r.ids {
		i, s := i, r.shards[id]
		eg.Go(func() error {
			rows, err := s.Query(ctx, q)
			if err != nil {
				return fmt.Errorf("分片 %d: %w", s.ID(), err)
			}
			lists[i] = rows
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	res := make([]model.Row, 0, len(lists))
	for _, rows := range lists {
		res = append(res, rows...)
	}
	return res, nil
}

// ExecAll 在每个分片上执行相同的语句, 一般用于建表
func (r *Router) ExecAll(ctx context.Context, q query.Query) error {
	var wg sync.WaitGroup
	errList := make([]error, len(r.ids))
	for i, id := range r.ids {
		wg.Add(1)
		go func(i int, s Shard) {
			defer wg.Done()
			if _, err := s.Exec(ctx, q); err != nil {
				errList[i] = fmt.Errorf("分片 %d: %w", s.ID(), err)
			}
		}(i, r.shards[id])
	}
	wg.Wait()
	return multierr.Combine(errList...)
}

// LoadByID 加载被引用的实体.
// 主键就是分片键时直接路由, 否则广播查询, 要求所有分片加起来恰好一行
func (r *Router) LoadByID(ctx context.Context, d *model.Descriptor, id int64) (any, error) {
	cond := query.Where(d).Eq(d.PrimaryKey.Column, id)
	if d.IsShardKeyColumn(d.PrimaryKey.Column) {
		return r.FindOne(ctx, d, cond)
	}
	res, err := r.FindAll(ctx, d, cond)
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		q := query.Select(d, cond, false)
		return nil, errs.NewUnexpectedRowsError(q.SQL, q.Args, len(res))
	}
	return res[0], nil
}

func (r *Router) Close() error {
	var err error
	for _, id := range r.ids {
		if er := r.shards[id].Close(); er != nil {
			err = multierror.Append(err, fmt.Errorf("关闭分片 %d 失败: %w", id, er))
		}
	}
	return err
}
