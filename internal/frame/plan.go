// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame computes per-function stack layout (spec §4.7) and the
// value-to-offset slot table the RISC-V backend spills into (spec §4.8).
package frame

import (
	"github.com/c-x-b/PKUCompiler/internal/koopa"
)

// Layout is one function's stack frame geometry, low-to-high from sp:
// the outgoing-call argument area, then local slots, then (optionally)
// the saved return address at the very top.
type Layout struct {
	Total          int // rounded up to a multiple of 16 (P4)
	ParamAreaSize  int
	LocalAreaStart int
	LocalAreaSize  int
	HasRA          bool
	RAOffset       int // valid iff HasRA
}

// Plan walks fn once, in instruction order, assigning a 4-byte slot to
// every local-producing value (loads, binaries, GEP results, non-void
// calls, and every alloc — scalar/pointer allocs take 4 bytes, array
// allocs take 4·∏dims), discovering whether the function ever calls
// another function, and sizing the outgoing-argument area from the
// widest call (spec §4.7). Integer literals never get a slot: the
// backend always materializes them inline (spec §4.8).
func Plan(fn *koopa.Function) (Layout, *SlotTable) {
	st := &SlotTable{offsets: map[*koopa.Value]int{}}
	localSize := 0
	hasCall := false
	maxOverflow := 0

	assign := func(v *koopa.Value, size int) {
		if _, ok := st.offsets[v]; ok {
			return
		}
		st.offsets[v] = localSize
		localSize += size
	}

	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			switch inst.Kind {
			case koopa.KAlloc:
				assign(inst, allocSize(inst))
			case koopa.KLoad, koopa.KBinary, koopa.KGetElemPtr, koopa.KGetPtr:
				assign(inst, 4)
			case koopa.KCall:
				hasCall = true
				if !inst.VoidCall {
					assign(inst, 4)
				}
				if n := len(inst.Args) - 8; n > maxOverflow {
					maxOverflow = n
				}
			}
		}
	}

	paramArea := 4 * maxOverflow
	for v, off := range st.offsets {
		st.offsets[v] = off + paramArea
	}

	pre := paramArea + localSize
	if hasCall {
		pre += 4
	}
	total := roundUp16(pre)

	layout := Layout{
		Total:          total,
		ParamAreaSize:  paramArea,
		LocalAreaStart: paramArea,
		LocalAreaSize:  localSize,
		HasRA:          hasCall,
	}
	if hasCall {
		layout.RAOffset = total - 4
	}
	return layout, st
}

func allocSize(v *koopa.Value) int {
	if at, ok := v.AllocType.(koopa.ArrayType); ok {
		return 4 * arrayElemCount(at)
	}
	return 4
}

func arrayElemCount(t koopa.ArrayType) int {
	n := t.Len
	if inner, ok := t.Elem.(koopa.ArrayType); ok {
		n *= arrayElemCount(inner)
	}
	return n
}

func roundUp16(n int) int { return (n + 15) &^ 15 }
