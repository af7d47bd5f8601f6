// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

// Init is a global aggregate initializer: a scalar leaf or a nested list,
// rendered by text.go as Koopa's "{...}" aggregate syntax.
type Init interface{ init() }

// IntInit is one scalar leaf of an aggregate initializer.
type IntInit struct{ Val int32 }

// ListInit is one brace level of a nested aggregate initializer.
type ListInit struct{ Items []Init }

func (IntInit) init()  {}
func (ListInit) init() {}

// flattenDims computes, for each position in a flat row-major traversal of
// shape dims, the product of the dimensions at and to the right of that
// position — i.e. flattenDims(dims)[i] is how many scalars the whole
// sub-array dims[i:] covers (one index step at level i covers
// flattenDims(dims)[i+1]). flattenDims(dims)[len(dims)] == 1.
func flattenDims(dims []int) []int {
	spans := make([]int, len(dims)+1)
	spans[len(dims)] = 1
	for i := len(dims) - 1; i >= 0; i-- {
		spans[i] = spans[i+1] * dims[i]
	}
	return spans
}

// buildNested reconstructs the nested-brace Init tree a flat, fully
// specified value list implies for the given shape (spec §4.4's global
// aggregate literal), by recursive grouping rather than per-index
// boundary counting: the innermost dimension becomes a flat list of
// scalars; each dimension above it wraps groups of the dimension below
// into nested lists.
func buildNested(flat []int32, dims []int) Init {
	if len(dims) == 0 {
		return IntInit{Val: flat[0]}
	}
	spans := flattenDims(dims)
	return buildLevel(flat, dims, spans, 0, 0)
}

// buildLevel builds the Init for dims[level:] starting at flat offset off.
func buildLevel(flat []int32, dims []int, spans []int, level, off int) Init {
	if level == len(dims)-1 {
		items := make([]Init, dims[level])
		for i := 0; i < dims[level]; i++ {
			items[i] = IntInit{Val: flat[off+i]}
		}
		return ListInit{Items: items}
	}
	items := make([]Init, dims[level])
	childSpan := spans[level+1]
	for i := 0; i < dims[level]; i++ {
		items[i] = buildLevel(flat, dims, spans, level+1, off+i*childSpan)
	}
	return ListInit{Items: items}
}
