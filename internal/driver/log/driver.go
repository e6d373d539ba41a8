package log

import (
	"context"
	"database/sql/driver"
)

var (
	_ driver.Driver        = &driverWrapper{}
	_ driver.DriverContext = &driverWrapper{}
)

type driverWrapper struct {
	driver driver.Driver
	logger Logger
}

func newDriver(d driver.Driver, l Logger) *driverWrapper {
	return &driverWrapper{
		driver: d,
		logger: l,
	}
}

func (d *driverWrapper) Open(name string) (driver.Conn, error) {
	con, err := d.driver.Open(name)
	if err != nil {
		d.logger.Error("打开连接失败", "error", err)
		return nil, err
	}
	d.logger.Debug("打开连接")
	return &connWrapper{conn: con, logger: d.logger}, nil
}

// OpenConnector 底层驱动没有实现 driver.DriverContext 的时候, 例如 sqlite3,
// 每次 Connect 都使用 dsn 调用 Open
func (d *driverWrapper) OpenConnector(name string) (driver.Connector, error) {
	dc, ok := d.driver.(driver.DriverContext)
	if !ok {
		d.logger.Debug("OpenConnector", "driverContext", false)
		return &connectorWrapper{
			connector: &dsnConnector{dsn: name, driver: d.driver},
			driver:    d,
			logger:    d.logger,
		}, nil
	}
	connector, err := dc.OpenConnector(name)
	if err != nil {
		d.logger.Error("OpenConnector 失败", "error", err)
		return nil, err
	}
	d.logger.Debug("OpenConnector", "driverContext", true)
	return &connectorWrapper{connector: connector, driver: d, logger: d.logger}, nil
}

type dsnConnector struct {
	dsn    string
	driver driver.Driver
}

func (c *dsnConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.driver.Open(c.dsn)
}

func (c *dsnConnector) Driver() driver.Driver {
	return c.driver
}
