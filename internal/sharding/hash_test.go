package sharding

import (
	"math"
	"testing"

	"github.com/meoying/shardorm/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	var nilPtr *int64
	testCases := []struct {
		name    string
		value   any
		want    uint64
		wantErr error
	}{
		{name: "正整数", value: int64(7), want: 7},
		{name: "负数取绝对值", value: -7, want: 7},
		{name: "最小的 int64", value: int64(math.MinInt64), want: 1 << 63},
		{name: "无符号整数", value: uint8(200), want: 200},
		{name: "指针", value: ptr[int32](9), want: 9},
		{name: "bool", value: true, want: 1},
		{name: "字符串", value: "abc", want: fnv64a([]byte("abc"))},
		{name: "字节切片和字符串一致", value: []byte("abc"), want: fnv64a([]byte("abc"))},
		{name: "其他类型", value: 1.5, want: fnv64a([]byte("1.5"))},
		{name: "nil", value: nil, wantErr: errs.ErrMissingShardingKey},
		{name: "nil 指针", value: nilPtr, wantErr: errs.ErrMissingShardingKey},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Hash(tc.value)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.want, h)
		})
	}
}

func TestShardID(t *testing.T) {
	testCases := []struct {
		name string
		h    uint64
		n    int
		want int
	}{
		{name: "余数为 0 映射到最后一个分片", h: 3, n: 3, want: 3},
		{name: "零值", h: 0, n: 3, want: 3},
		{name: "普通余数", h: 4, n: 3, want: 1},
		{name: "单个分片", h: 12345, n: 1, want: 1},
		{name: "没有分片", h: 1, n: 0, want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShardID(tc.h, tc.n))
		})
	}
}

// 同一个值多次计算落在同一个分片
func TestShardID_Stable(t *testing.T) {
	for _, v := range []any{int64(1), "tom", uint(99), -42} {
		h1, err := Hash(v)
		assert.NoError(t, err)
		h2, err := Hash(v)
		assert.NoError(t, err)
		assert.Equal(t, ShardID(h1, 5), ShardID(h2, 5))
	}
}

func ptr[T any](v T) *T {
	return &v
}
