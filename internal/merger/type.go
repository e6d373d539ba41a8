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

type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

type Order bool

const (
	// OrderASC 升序排序
	OrderASC Order = true
	// OrderDESC 降序排序
	OrderDESC Order = false
)

// Compare 升序时， -1 表示 i < j, 1 表示i > j ,0 表示两者相同
// 降序时，-1 表示 i > j, 1 表示 i < j ,0 表示两者相同
func Compare[T Ordered](i, j T, order Order) int {
	if i < j && order == OrderASC || i > j && order == OrderDESC {
		return -1
	} else if i > j && order == OrderASC || i < j && order == OrderDESC {
		return 1
	} else {
		return 0
	}
}
