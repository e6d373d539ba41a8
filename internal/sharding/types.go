package sharding

import (
	"context"
	"database/sql"

	"github.com/meoying/shardorm/internal/model"
	"github.com/meoying/shardorm/internal/query"
)

//go:generate mockgen -source=./types.go -destination=./mocks/shard.mock.go -package=mocks Shard

// Shard 路由的目标. 实现需要保证只操作自己的存储, 见 internal/shard
type Shard interface {
	ID() int
	Insert(ctx context.Context, d *model.Descriptor, entity any) (int64, error)
	// InsertBatch 返回的 keys[i] 对应 entities[i]
	InsertBatch(ctx context.Context, d *model.Descriptor, entities []any) ([]int64, error)
	Exec(ctx context.Context, q query.Query) (sql.Result, error)
	Query(ctx context.Context, q query.Query) ([]model.Row, error)
	SelectSingle(ctx context.Context, q query.Query, dest any) error
	// FindAll 返回的结果按照主键升序
	FindAll(ctx context.Context, d *model.Descriptor, cond query.Condition, loader model.Loader) ([]any, error)
	FindOne(ctx context.Context, d *model.Descriptor, cond query.Condition, loader model.Loader) (any, error)
	Close() error
}
