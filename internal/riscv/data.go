// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riscv

import "github.com/c-x-b/PKUCompiler/internal/koopa"

func typeElemCount(t koopa.Type) int {
	if at, ok := t.(koopa.ArrayType); ok {
		return at.Len * typeElemCount(at.Elem)
	}
	return 1
}

func emitGlobal(w *asmWriter, g *koopa.Value) {
	name := stripAt(g.Name)
	w.emit(".globl %s", name)
	w.label(name)
	emitInitValue(w, g.Init, g.AllocType)
}

func emitInitValue(w *asmWriter, init koopa.Init, t koopa.Type) {
	if init == nil {
		w.emit("\t.zero %d", 4*typeElemCount(t))
		return
	}
	switch n := init.(type) {
	case koopa.IntInit:
		w.emit("\t.word %d", n.Val)
	case koopa.ListInit:
		elem := t.(koopa.ArrayType).Elem
		for _, it := range n.Items {
			emitInitValue(w, it, elem)
		}
	}
}
