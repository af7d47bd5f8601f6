// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Scenario tests exercise the six binding end-to-end examples (spec §8)
// through the same parse -> emit -> render/assemble pipeline main()
// drives, without shelling out to a separately-built binary.
package main

import (
	"strings"
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
	"github.com/c-x-b/PKUCompiler/internal/riscv"
)

func compile(t *testing.T, src string) (ir string, asm string) {
	t.Helper()
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	prog := koopa.Emit(unit)
	return koopa.Render(prog), riscv.Emit(prog)
}

func TestScenario1ConstantFold(t *testing.T) {
	ir, asm := compile(t, "int main(){ return 1+2*3; }")
	if !strings.Contains(ir, "add 0, 7") {
		t.Fatalf("expected constant folding to 7 in IR:\n%s", ir)
	}
	if !strings.Contains(asm, "li a0, 7") {
		t.Fatalf("expected the folded constant in a0 on return:\n%s", asm)
	}
}

func TestScenario2GlobalArrayInit(t *testing.T) {
	ir, _ := compile(t, "const int N=4; int a[N]={1,2}; int main(){ return a[0]+a[3]; }")
	if !strings.Contains(ir, "[i32, 4]") {
		t.Fatalf("expected a [i32, 4] global array type:\n%s", ir)
	}
	if !strings.Contains(ir, "{1, 2, 0, 0}") {
		t.Fatalf("expected the brace-aligned init {1, 2, 0, 0}:\n%s", ir)
	}
}

func TestScenario3Recursion(t *testing.T) {
	_, asm := compile(t, "int f(int n){ if(n<=1) return n; return f(n-1)+f(n-2); } int main(){ return f(10); }")
	if strings.Count(asm, "call f") < 2 {
		t.Fatalf("expected two recursive calls to f:\n%s", asm)
	}
	if !strings.Contains(asm, "ra") {
		t.Fatalf("a recursive function must save/restore ra:\n%s", asm)
	}
}

func TestScenario4BreakInLoop(t *testing.T) {
	ir, _ := compile(t, "int main(){ int i=0,s=0; while(i<10){ if(i==5) break; s=s+i; i=i+1; } return s; }")
	if !strings.Contains(ir, "jump") {
		t.Fatalf("expected jump instructions for the loop/break control flow:\n%s", ir)
	}
}

func TestScenario5ShortCircuitAvoidsDivision(t *testing.T) {
	ir, _ := compile(t, "int main(){ int x=0; return (x==0) || (1/x); }")
	if !strings.Contains(ir, "br ") {
		t.Fatalf("expected the || to lower to an explicit branch:\n%s", ir)
	}
}

func TestScenario6ArrayParamDecay(t *testing.T) {
	ir, _ := compile(t, "int f(int a[][3]){ return a[1][2]; } int main(){ int m[2][3]={{1,2,3},{4,5,6}}; return f(m); }")
	if !strings.Contains(ir, "*[i32, 3]") {
		t.Fatalf("expected the array param to be typed *[i32, 3]:\n%s", ir)
	}
	if !strings.Contains(ir, "getptr") || !strings.Contains(ir, "getelemptr") {
		t.Fatalf("expected both getptr (row step) and getelemptr (decay/column step):\n%s", ir)
	}
}
