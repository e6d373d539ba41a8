package sharding

import (
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/meoying/shardorm/internal/errs"
)

// Hash 分片键的规范哈希值.
// 有符号整数取绝对值, 无符号整数取自身, bool 为 0 或者 1,
// string 和 []byte 使用 FNV-1a, 其余类型对 fmt.Sprint 的结果做 FNV-1a.
// 指针会被解引用, nil 返回 errs.ErrMissingShardingKey
func Hash(value any) (uint64, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, errs.ErrMissingShardingKey
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return 0, errs.ErrMissingShardingKey
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < 0 {
			// math.MinInt64 取反之后仍然是它自己, 转成 uint64 正好是 1<<63
			return uint64(-i), nil
		}
		return uint64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return fnv64a([]byte(v.String())), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return fnv64a(v.Bytes()), nil
		}
	}
	return fnv64a([]byte(fmt.Sprint(v.Interface()))), nil
}

func fnv64a(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

// ShardID 把哈希值映射到 1..n, 余数 0 对应第 n 个分片
func ShardID(h uint64, n int) int {
	if n <= 0 {
		return 0
	}
	id := int(h % uint64(n))
	if id == 0 {
		return n
	}
	return id
}
