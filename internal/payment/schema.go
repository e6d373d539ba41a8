package payment

import (
	"context"
	"fmt"

	"github.com/meoying/shardorm"
	"github.com/meoying/shardorm/config"
	"github.com/meoying/shardorm/internal/query"
)

var schemas = map[string][]string{
	config.DriverMySQL: {
		"CREATE TABLE IF NOT EXISTS `customer`(" +
			"`id` BIGINT NOT NULL PRIMARY KEY, " +
			"`name` VARCHAR(100) NOT NULL);",
		"CREATE TABLE IF NOT EXISTS `payment`(" +
			"`id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"`amount` BIGINT, " +
			"`sender_id` BIGINT NOT NULL, " +
			"`receiver_id` BIGINT, " +
			"KEY `idx_sender_id`(`sender_id`));",
	},
	config.DriverSQLite3: {
		"CREATE TABLE IF NOT EXISTS `customer`(" +
			"`id` INTEGER NOT NULL PRIMARY KEY, " +
			"`name` VARCHAR(100) NOT NULL);",
		"CREATE TABLE IF NOT EXISTS `payment`(" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"`amount` INTEGER, " +
			"`sender_id` INTEGER NOT NULL, " +
			"`receiver_id` INTEGER);",
		"CREATE INDEX IF NOT EXISTS `idx_sender_id` ON `payment`(`sender_id`);",
	},
}

// CreateSchema 在每个分片上建表, drivers[i] 是第 i + 1 个分片的驱动
func CreateSchema(ctx context.Context, db *shardorm.DB, drivers []string) error {
	shards := db.Router().Shards()
	if len(drivers) != len(shards) {
		return fmt.Errorf("%w: %d 个分片, 但是给出了 %d 个驱动", shardorm.ErrConfiguration, len(shards), len(drivers))
	}
	for i, s := range shards {
		stmts, ok := schemas[drivers[i]]
		if !ok {
			return fmt.Errorf("%w: 分片 %d 使用了不支持的驱动 %s", shardorm.ErrConfiguration, s.ID(), drivers[i])
		}
		for _, stmt := range stmts {
			if _, err := s.Exec(ctx, query.Raw(stmt)); err != nil {
				return fmt.Errorf("分片 %d 建表失败: %w", s.ID(), err)
			}
		}
	}
	return nil
}
