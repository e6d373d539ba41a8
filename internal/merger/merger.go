// Copyright 2021 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merger

import (
	"container/heap"
)

// Merge 将多个分片返回的有序列表归并为一个有序列表.
// 每个列表内部必须已经按照 key 以 order 的顺序排好, 通常由 ORDER BY 保证.
// key 相同的时候, 下标小的列表里的元素排在前面
func Merge[T any, K Ordered](lists [][]T, key func(T) K, order Order) []T {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	res := make([]T, 0, total)
	h := &Heap[T, K]{order: order}
	for i, l := range lists {
		if len(l) == 0 {
			continue
		}
		h.nodes = append(h.nodes, &Node[T, K]{ListIndex: i, Key: key(l[0]), Value: l[0]})
	}
	heap.Init(h)
	pos := make([]int, len(lists))
	for h.Len() > 0 {
		n := heap.Pop(h).(*Node[T, K])
		res = append(res, n.Value)
		pos[n.ListIndex]++
		l := lists[n.ListIndex]
		if pos[n.ListIndex] < len(l) {
			next := l[pos[n.ListIndex]]
			heap.Push(h, &Node[T, K]{ListIndex: n.ListIndex, Key: key(next), Value: next})
		}
	}
	return res
}

type Heap[T any, K Ordered] struct {
	nodes []*Node[T, K]
	order Order
}

type Node[T any, K Ordered] struct {
	// ListIndex 元素来自哪个列表
	ListIndex int
	Key       K
	Value     T
}

func (h *Heap[T, K]) Len() int {
	return len(h.nodes)
}

func (h *Heap[T, K]) Less(i, j int) bool {
	cp := Compare[K](h.nodes[i].Key, h.nodes[j].Key, h.order)
	if cp == 0 {
		return h.nodes[i].ListIndex < h.nodes[j].ListIndex
	}
	return cp < 0
}

func (h *Heap[T, K]) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
}

func (h *Heap[T, K]) Push(x any) {
	h.nodes = append(h.nodes, x.(*Node[T, K]))
}

func (h *Heap[T, K]) Pop() any {
	v := h.nodes[len(h.nodes)-1]
	h.nodes = h.nodes[:len(h.nodes)-1]
	return v
}
