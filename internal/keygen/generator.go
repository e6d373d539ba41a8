package keygen

import (
	"sync/atomic"
)

// Generator 单实例内单调递增的主键生成器.
// 不同的实例之间可能产生相同的值, 它不是全局唯一 ID
type Generator struct {
	start int64
	cur   atomic.Int64
}

type Option func(g *Generator)

// WithStart 第一个生成的值是 start + 1
func WithStart(start int64) Option {
	return func(g *Generator) {
		g.start = start
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.start < 0 {
		g.start = 0
	}
	g.cur.Store(g.start)
	return g
}

// Next 并发安全, 返回值严格递增并且大于 0
func (g *Generator) Next() int64 {
	return g.cur.Add(1)
}

// Reset 回到初始状态, 只在测试里使用
func (g *Generator) Reset() {
	g.cur.Store(g.start)
}

// AdvanceTo 保证之后生成的值都大于 v, 已经超过 v 的时候什么也不做.
// 进程重启之后可以用存储中已有的最大值调用它
func (g *Generator) AdvanceTo(v int64) {
	for {
		cur := g.cur.Load()
		if cur >= v || g.cur.CompareAndSwap(cur, v) {
			return
		}
	}
}
