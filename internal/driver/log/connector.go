package log

import (
	"context"
	"database/sql/driver"
)

var _ driver.Connector = &connectorWrapper{}

type connectorWrapper struct {
	connector driver.Connector
	driver    driver.Driver
	logger    Logger
}

func (c *connectorWrapper) Connect(ctx context.Context) (driver.Conn, error) {
	con, err := c.connector.Connect(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "建立连接失败", "error", err)
		return nil, err
	}
	c.logger.DebugContext(ctx, "建立连接")
	return &connWrapper{conn: con, logger: c.logger}, nil
}

// Driver 返回包装之后的 driver, 通过它打开的连接同样会输出日志
func (c *connectorWrapper) Driver() driver.Driver {
	return c.driver
}
