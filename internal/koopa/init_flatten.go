// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

import (
	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/diag"
)

// FlattenInit lowers a (possibly partially braced) nested initializer
// into a flat, fully specified slot list of length prod(dims), honoring
// the C-style brace-alignment rule from spec §4.4: a nested brace pair
// fills exactly the largest suffix of the remaining dimension vector
// whose product divides the current offset; scalars are placed in
// row-major order; missing trailing entries are left nil (meaning zero).
func FlattenInit(init ast.Initializer, dims []int) []ast.Expr {
	total := 1
	for _, d := range dims {
		total *= d
	}
	out := make([]ast.Expr, total)
	list, ok := init.(*ast.InitList)
	if !ok {
		diag.Bug("array initializer must be a brace-enclosed list")
	}
	spans := flattenDims(dims)
	fillLevel(list.Items, 0, dims, spans, 0, out)
	return out
}

// fillLevel fills out[base : base+spans[level]] from items, which are
// understood to jointly describe the sub-array dims[level:].
func fillLevel(items []ast.Initializer, level int, dims []int, spans []int, base int, out []ast.Expr) {
	pos := base
	end := base + spans[level]
	for _, it := range items {
		if pos >= end {
			break
		}
		switch n := it.(type) {
		case *ast.InitExpr:
			out[pos] = n.Expr
			pos++
		case *ast.InitList:
			local := pos - base
			target := len(dims) // fallback: a brace around a bare scalar
			for dd := level + 1; dd <= len(dims); dd++ {
				if local%spans[dd] == 0 {
					target = dd
					break
				}
			}
			fillLevel(n.Items, target, dims, spans, pos, out)
			pos += spans[target]
		}
	}
}
