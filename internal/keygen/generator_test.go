package keygen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Next(t *testing.T) {
	testCases := []struct {
		name  string
		opts  []Option
		wantN []int64
	}{
		{
			name:  "默认从 1 开始",
			wantN: []int64{1, 2, 3},
		},
		{
			name:  "WithStart",
			opts:  []Option{WithStart(100)},
			wantN: []int64{101, 102},
		},
		{
			name:  "负数起点",
			opts:  []Option{WithStart(-5)},
			wantN: []int64{1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(tc.opts...)
			res := make([]int64, 0, len(tc.wantN))
			for range tc.wantN {
				res = append(res, g.Next())
			}
			assert.Equal(t, tc.wantN, res)
			g.Reset()
			assert.Equal(t, tc.wantN[0], g.Next())
		})
	}
}

func TestGenerator_Concurrent(t *testing.T) {
	g := New()
	const goroutines, per = 8, 500
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*per)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, per)
			var last int64
			for j := 0; j < per; j++ {
				v := g.Next()
				// 同一个 goroutine 看到的值严格递增
				assert.Greater(t, v, last)
				last = v
				local = append(local, v)
			}
			mu.Lock()
			for _, v := range local {
				seen[v] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, goroutines*per)
	assert.Equal(t, int64(goroutines*per+1), g.Next())
}

func TestGenerator_AdvanceTo(t *testing.T) {
	g := New()
	assert.Equal(t, int64(1), g.Next())
	g.AdvanceTo(10)
	assert.Equal(t, int64(11), g.Next())
	// 不会回退
	g.AdvanceTo(5)
	assert.Equal(t, int64(12), g.Next())
}
