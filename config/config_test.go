package config_test

import (
	"errors"
	"testing"

	"github.com/meoying/shardorm/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		content string

		expected *config.Config
		wantErr  error
	}{
		{
			name:    "空文件",
			content: ``,
			wantErr: config.ErrNoShards,
		},
		{
			name: "默认值",
			content: `
shards:
  - dsn: "root:root@tcp(127.0.0.1:13306)/payment_0"
  - driver: SQLite3
    dsn: ":memory:"`,
			expected: &config.Config{
				Shards: []config.Shard{
					{Name: "shard-1", Driver: "mysql", DSN: "root:root@tcp(127.0.0.1:13306)/payment_0"},
					{Name: "shard-2", Driver: "sqlite3", DSN: ":memory:"},
				},
				Log:  config.Log{Level: "info", Format: "text"},
				HTTP: config.HTTP{Addr: ":8080"},
			},
		},
		{
			name: "dsn 为空",
			content: `
shards:
  - name: a
    driver: mysql`,
			wantErr: config.ErrEmptyDSN,
		},
		{
			name: "未知驱动",
			content: `
shards:
  - driver: postgres
    dsn: "postgres://localhost"`,
			wantErr: config.ErrUnknownDriver,
		},
		{
			name: "未知日志级别",
			content: `
shards:
  - dsn: ":memory:"
    driver: sqlite3
log:
  level: verbose`,
			wantErr: config.ErrUnknownLevel,
		},
		{
			name: "未知日志格式",
			content: `
shards:
  - dsn: ":memory:"
    driver: sqlite3
log:
  format: xml`,
			wantErr: config.ErrUnknownFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.ParseContent(tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestParseContent_InvalidYAML(t *testing.T) {
	_, err := config.ParseContent("shards: [")
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	cfg, err := config.ParseFile("testdata/config.yaml")
	require.NoError(t, err)
	require.Len(t, cfg.Shards, 3)
	assert.Equal(t, config.Shard{Name: "shard-3", Driver: "sqlite3", DSN: "file:payment_2?mode=memory"}, cfg.Shards[2])
	assert.Equal(t, config.Log{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, ":18080", cfg.HTTP.Addr)

	_, err = config.ParseFile("testdata/not_exist.yaml")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	errDecode := errors.New("decode")
	testCases := []struct {
		name      string
		unmarshal func(cfg any) error

		wantShards []config.Shard
		wantErr    error
	}{
		{
			name: "解析失败",
			unmarshal: func(cfg any) error {
				return errDecode
			},
			wantErr: errDecode,
		},
		{
			name: "填充默认值",
			unmarshal: func(cfg any) error {
				cfg.(*config.Config).Shards = []config.Shard{{Driver: " MySQL ", DSN: "root:root@tcp(127.0.0.1:13306)/payment_0"}}
				return nil
			},
			wantShards: []config.Shard{{Name: "shard-1", Driver: "mysql", DSN: "root:root@tcp(127.0.0.1:13306)/payment_0"}},
		},
		{
			name: "校验失败",
			unmarshal: func(cfg any) error {
				return nil
			},
			wantErr: config.ErrNoShards,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Decode(tc.unmarshal)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantShards, cfg.Shards)
			assert.Equal(t, ":8080", cfg.HTTP.Addr)
		})
	}
}
