// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame_test

import (
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/frame"
	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
)

func planFunc(t *testing.T, src, name string) (frame.Layout, *frame.SlotTable, *koopa.Function) {
	t.Helper()
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	prog := koopa.Emit(unit)
	for _, fn := range prog.Funcs {
		if fn.Name == name {
			layout, slots := frame.Plan(fn)
			return layout, slots, fn
		}
	}
	t.Fatalf("function %q not found", name)
	return frame.Layout{}, nil, nil
}

func TestPlanLeafNoLocals(t *testing.T) {
	layout, _, _ := planFunc(t, "int f() { return 0; }", "f")
	if layout.HasRA {
		t.Fatalf("leaf function should not reserve a return-address slot")
	}
	if layout.Total%16 != 0 {
		t.Fatalf("frame size must be 16-byte aligned, got %d", layout.Total)
	}
}

func TestPlanCallerReservesRA(t *testing.T) {
	layout, _, _ := planFunc(t, `
		int g() { return 1; }
		int f() { return g(); }
	`, "f")
	if !layout.HasRA {
		t.Fatalf("a function that calls another must reserve ra")
	}
	if layout.RAOffset != layout.Total-4 {
		t.Fatalf("ra must sit at total-4, got %d (total %d)", layout.RAOffset, layout.Total)
	}
}

func TestPlanOverflowArgArea(t *testing.T) {
	layout, _, _ := planFunc(t, `
		int g(int a, int b, int c, int d, int e, int f, int g, int h, int i, int j) { return a; }
		int f() { return g(1,2,3,4,5,6,7,8,9,10); }
	`, "f")
	// 2 args beyond the 8 register slots -> 8 bytes of outgoing-arg area.
	if layout.ParamAreaSize != 8 {
		t.Fatalf("expected 8 bytes of overflow arg area, got %d", layout.ParamAreaSize)
	}
}

func TestPlanArrayAllocSize(t *testing.T) {
	layout, slots, fn := planFunc(t, "int f() { int a[2][3]; return a[0][0]; }", "f")
	if layout.LocalAreaSize < 24 {
		t.Fatalf("a 2x3 int array needs at least 24 bytes, local area is %d", layout.LocalAreaSize)
	}
	var found bool
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			if inst.Kind == koopa.KAlloc {
				if at, ok := inst.AllocType.(koopa.ArrayType); ok {
					found = true
					if !slots.Has(inst) {
						t.Fatalf("array alloc should have an assigned slot")
					}
					_ = at
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected an array alloc instruction")
	}
}
