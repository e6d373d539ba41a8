package datasource

import (
	"fmt"

	"github.com/meoying/shardorm/internal/errs"
)

func NewInvalidDSNError(dsn string, err error) error {
	return fmt.Errorf("%w: 不正确的 DSN %s: %w", errs.ErrConfiguration, dsn, err)
}

func NewUnknownDriverError(name string) error {
	return fmt.Errorf("%w: 未知的驱动 %s", errs.ErrConfiguration, name)
}
