package query

import (
	"strings"

	"github.com/meoying/shardorm/internal/model"
)

// Condition 不可变的查询条件.
// 每次 Eq 都会返回一个新的 Condition, 原来的不受影响, 所以可以安全地复用前缀
type Condition struct {
	d          *model.Descriptor
	predicates []string
	args       []any

	shardKey any
	bound    bool
}

// Where 空条件, 匹配所有的行
func Where(d *model.Descriptor) Condition {
	return Condition{d: d}
}

// Eq 追加 `column`=? 条件, 多个条件之间是 AND 关系.
// 如果 column 上的值可以直接用于路由, 那么记录下来
func (c Condition) Eq(column string, val any) Condition {
	res := Condition{
		d:          c.d,
		predicates: make([]string, 0, len(c.predicates)+1),
		args:       make([]any, 0, len(c.args)+1),
		shardKey:   c.shardKey,
		bound:      c.bound,
	}
	res.predicates = append(append(res.predicates, c.predicates...), quote(column)+"=?")
	res.args = append(append(res.args, c.args...), val)
	if c.d != nil && c.d.IsShardKeyColumn(column) {
		res.shardKey = val
		res.bound = true
	}
	return res
}

// WithShardKey 显式指定路由使用的值, 条件本身不变
func (c Condition) WithShardKey(val any) Condition {
	c.shardKey = val
	c.bound = true
	return c
}

// ShardKey 第二个返回值表示是否设置过分片键
func (c Condition) ShardKey() (any, bool) {
	return c.shardKey, c.bound
}

func (c Condition) Descriptor() *model.Descriptor {
	return c.d
}

// Build 返回 WHERE 子句以及参数, 没有条件的时候返回空字符串
func (c Condition) Build() (string, []any) {
	if len(c.predicates) == 0 {
		return "", nil
	}
	args := make([]any, len(c.args))
	copy(args, c.args)
	return " WHERE " + strings.Join(c.predicates, " AND "), args
}

func quote(name string) string {
	return "`" + name + "`"
}
