// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riscv_test

import (
	"strings"
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
	"github.com/c-x-b/PKUCompiler/internal/riscv"
)

func assemble(t *testing.T, src string) string {
	t.Helper()
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	return riscv.Emit(koopa.Emit(unit))
}

func TestEmitSimpleReturn(t *testing.T) {
	out := assemble(t, "int main() { return 7; }")
	for _, want := range []string{".text", ".globl main", "main:", "li a0, 7", "ret"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEmitGlobalData(t *testing.T) {
	// Globals are mangled with their defining scope's table id ("g_0"),
	// same as locals — see internal/koopa/emitter.go's mangled().
	out := assemble(t, "int g = 3; int main() { return g; }")
	for _, want := range []string{".data", ".globl g_0", "g_0:", ".word 3", "la t0, g_0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEmitZeroInitGlobalArray(t *testing.T) {
	out := assemble(t, "int g[4]; int main() { return g[0]; }")
	if !strings.Contains(out, ".zero 16") {
		t.Fatalf("expected a 16-byte zero-fill for a 4-int global array:\n%s", out)
	}
}

func TestEmitCallConvention(t *testing.T) {
	out := assemble(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(1, 2); }
	`)
	for _, want := range []string{"li a0, 1", "li a1, 2", "call add"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEmitBranch(t *testing.T) {
	out := assemble(t, `
		int main() {
			int x = 1;
			if (x) { return 1; }
			return 0;
		}
	`)
	if !strings.Contains(out, "bnez") {
		t.Fatalf("expected a bnez for the if condition:\n%s", out)
	}
}

func TestEmitLargeFrameOverflowsImmediate(t *testing.T) {
	// A function with many locals pushes some slot offsets past the
	// signed 12-bit immediate range, which must fall back to the
	// li/add scratch-register sequence instead of a bare lw/sw/addi.
	var b strings.Builder
	b.WriteString("int f() {\n")
	for i := 0; i < 600; i++ {
		b.WriteString("int v")
		b.WriteString(itoa(i))
		b.WriteString(" = 1;\n")
	}
	b.WriteString("return v0;\n}\n")
	out := assemble(t, b.String())
	if !strings.Contains(out, "li t3,") {
		t.Fatalf("expected an overflow-offset sequence using t3 as scratch:\n%s", out)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
