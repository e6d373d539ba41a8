package shardorm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/meoying/shardorm/config"
	"github.com/meoying/shardorm/internal/datasource"
	"github.com/meoying/shardorm/internal/errs"
	"github.com/meoying/shardorm/internal/keygen"
	"github.com/meoying/shardorm/internal/model"
	"github.com/meoying/shardorm/internal/query"
	"github.com/meoying/shardorm/internal/shard"
	"github.com/meoying/shardorm/internal/sharding"
	"github.com/meoying/shardorm/internal/validation"
)

// DB 分片数据库的入口, 并发安全.
// 一个 DB 持有一个主键生成器, 分片键为空的实体在写入前由它填充
type DB struct {
	registry  *model.Registry
	router    *sharding.Router
	keys      *keygen.Generator
	validator *validation.Validator
	logger    *slog.Logger

	keyStart int64
}

type Option func(db *DB)

func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithKeyStart 生成的第一个分片键是 start + 1
func WithKeyStart(start int64) Option {
	return func(db *DB) {
		db.keyStart = start
	}
}

// Open 按照配置打开所有分片, 配置中的第 i 个分片的 id 是 i + 1
func Open(cfg config.Config, opts ...Option) (*DB, error) {
	cfg.Shards = append([]config.Shard(nil), cfg.Shards...)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}
	db := newDB(opts)
	dbs, err := datasource.OpenAll(cfg.Shards, datasource.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	shards := make([]sharding.Shard, 0, len(dbs))
	for i, sqlDB := range dbs {
		shards = append(shards, shard.New(i+1, sqlDB,
			shard.WithName(cfg.Shards[i].Name),
			shard.WithLogger(db.logger)))
	}
	return db.init(shards)
}

// OpenDB 使用已经打开的 *sql.DB, dbs[i] 的分片 id 是 i + 1.
// 关闭返回的 DB 会关闭所有的 dbs
func OpenDB(dbs []*sql.DB, opts ...Option) (*DB, error) {
	db := newDB(opts)
	shards := make([]sharding.Shard, 0, len(dbs))
	for i, sqlDB := range dbs {
		shards = append(shards, shard.New(i+1, sqlDB, shard.WithLogger(db.logger)))
	}
	return db.init(shards)
}

func newDB(opts []Option) *DB {
	db := &DB{
		registry:  model.NewRegistry(),
		validator: validation.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.keys = keygen.New(keygen.WithStart(db.keyStart))
	return db
}

func (db *DB) init(shards []sharding.Shard) (*DB, error) {
	r, err := sharding.NewRouter(shards,
		sharding.WithRegistry(db.registry),
		sharding.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	db.router = r
	db.logger.Info("分片数据库已就绪", slog.Int("shards", r.N()))
	return db, nil
}

type RegisterOption = model.Option

// WithTableName 注册实体时指定表名
func WithTableName(name string) RegisterOption {
	return model.WithTableName(name)
}

// Register 提前注册实体, 可以尽早发现元数据的错误.
// 没有注册过的实体会在第一次使用的时候注册
func (db *DB) Register(entity any, opts ...RegisterOption) error {
	_, err := db.registry.Register(entity, opts...)
	return err
}

// Query 在所有分片上执行原生查询, 结果按照分片 id 的顺序拼接
func (db *DB) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	return db.router.Query(ctx, query.Raw(stmt, args...))
}

// ExecAll 在所有分片上执行同一个语句, 例如建表
func (db *DB) ExecAll(ctx context.Context, stmt string, args ...any) error {
	return db.router.ExecAll(ctx, query.Raw(stmt, args...))
}

// AdvanceKeys 之后生成的分片键都大于 v
func (db *DB) AdvanceKeys(v int64) {
	db.keys.AdvanceTo(v)
}

func (db *DB) Router() *sharding.Router {
	return db.router
}

func (db *DB) Close() error {
	return db.router.Close()
}

func descriptorOf[T any](db *DB) (*model.Descriptor, error) {
	return db.registry.Of(reflect.TypeOf((*T)(nil)))
}

// prepare 填充分片键并且校验
func (db *DB) prepare(ctx context.Context, entity any) error {
	d, err := db.registry.Get(entity)
	if err != nil {
		return err
	}
	filled, err := d.FillShardKey(entity, db.keys.Next)
	if err != nil {
		return err
	}
	if filled {
		db.logger.DebugContext(ctx, "生成分片键", slog.String("table", d.TableName))
	}
	return db.validator.Validate(ctx, entity)
}

// Save 写入实体并且返回主键.
// 分片键是整数并且为空的时候会先由 DB 的主键生成器填充
func Save[T any](ctx context.Context, db *DB, entity *T) (int64, error) {
	if entity == nil {
		return 0, errs.NewUnsupportedEntityError(fmt.Sprintf("%T", entity))
	}
	if err := db.prepare(ctx, entity); err != nil {
		return 0, err
	}
	return db.router.Save(ctx, entity)
}

// SaveAllInBatch 批量写入, 返回的 keys[i] 对应 entities[i].
// 同一个分片的实体在一个事务里写入, 不同分片之间没有事务, 部分失败时已经提交的分片不会回滚
func SaveAllInBatch[T any](ctx context.Context, db *DB, entities []*T) ([]int64, error) {
	list := make([]any, 0, len(entities))
	for i, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("第 %d 个实体: %w", i, errs.NewUnsupportedEntityError(fmt.Sprintf("%T", e)))
		}
		if err := db.prepare(ctx, e); err != nil {
			return nil, fmt.Errorf("第 %d 个实体: %w", i, err)
		}
		list = append(list, e)
	}
	return db.router.SaveAllInBatch(ctx, list)
}
