package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL   = "mysql"
	DriverSQLite3 = "sqlite3"
)

var (
	ErrNoShards      = errors.New("config: 至少需要配置一个分片")
	ErrEmptyDSN      = errors.New("config: dsn 不能为空")
	ErrUnknownDriver = errors.New("config: 未知的驱动")
	ErrUnknownLevel  = errors.New("config: 未知的日志级别")
	ErrUnknownFormat = errors.New("config: 未知的日志格式")
)

// Shard 一个物理分片. 配置中的顺序决定了分片 id, 第一个是 1
type Shard struct {
	Name   string `yaml:"name" mapstructure:"name"`
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

type Log struct {
	// Level debug, info, warn, error
	Level string `yaml:"level" mapstructure:"level"`
	// Format text 或者 json
	Format string `yaml:"format" mapstructure:"format"`
}

type HTTP struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type Config struct {
	Shards []Shard `yaml:"shards" mapstructure:"shards"`
	Log    Log     `yaml:"log" mapstructure:"log"`
	HTTP   HTTP    `yaml:"http" mapstructure:"http"`
}

// ParseFile 读取 YAML 配置文件, 不依赖 viper 的调用方使用它.
// 返回的配置已经填充了默认值并且通过了校验
func ParseFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

// ParseContent parses the YAML configuration from file content
func ParseContent(content string) (*Config, error) {
	return parseConfig([]byte(content))
}

func parseConfig(data []byte) (*Config, error) {
	return Decode(func(cfg any) error {
		return yaml.Unmarshal(data, cfg)
	})
}

// Decode 使用 unmarshal 解析配置, 然后填充默认值并校验.
// yaml.v3 和 viper 读取的配置都经过这里
func Decode(unmarshal func(cfg any) error) (*Config, error) {
	var cfg Config
	if err := unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults 填充没有配置的字段
func (c *Config) SetDefaults() {
	for i := range c.Shards {
		if c.Shards[i].Name == "" {
			c.Shards[i].Name = fmt.Sprintf("shard-%d", i+1)
		}
		c.Shards[i].Driver = strings.ToLower(strings.TrimSpace(c.Shards[i].Driver))
		if c.Shards[i].Driver == "" {
			c.Shards[i].Driver = DriverMySQL
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
}

func (c *Config) Validate() error {
	if len(c.Shards) == 0 {
		return ErrNoShards
	}
	for i, s := range c.Shards {
		if s.DSN == "" {
			return fmt.Errorf("%w: 第 %d 个分片 %s", ErrEmptyDSN, i+1, s.Name)
		}
		switch s.Driver {
		case DriverMySQL, DriverSQLite3:
		default:
			return fmt.Errorf("%w: 第 %d 个分片 %s 使用了 %q", ErrUnknownDriver, i+1, s.Name, s.Driver)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLevel, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Log.Format)
	}
	return nil
}
