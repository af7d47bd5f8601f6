// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa_test

import (
	"strings"
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
)

func render(t *testing.T, src string) string {
	t.Helper()
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	return koopa.Render(koopa.Emit(unit))
}

func TestEmitConstFold(t *testing.T) {
	out := render(t, "int main() { const int n = 2 + 3; return n; }")
	if !strings.Contains(out, "ret") {
		t.Fatalf("expected a ret instruction, got:\n%s", out)
	}
	// n folds to a literal 5, materialized inline, never stored to a slot.
	if strings.Contains(out, "@n_") {
		t.Fatalf("const scalar should not get an alloc slot:\n%s", out)
	}
}

func TestEmitIfElseBothReturn(t *testing.T) {
	out := render(t, `
		int main() {
			int x = 1;
			if (x) { return 1; } else { return 0; }
		}
	`)
	if !strings.Contains(out, "br ") {
		t.Fatalf("expected a br instruction:\n%s", out)
	}
	// Both arms return, so no merge block/label is ever opened.
	if strings.Contains(out, "%end") {
		t.Fatalf("unreachable merge label should not be emitted:\n%s", out)
	}
}

func TestEmitWhileBreakContinue(t *testing.T) {
	out := render(t, `
		int main() {
			int i = 0;
			while (i) {
				if (i) { break; }
				continue;
			}
			return 0;
		}
	`)
	if strings.Count(out, "jump") == 0 {
		t.Fatalf("expected jump instructions for loop control flow:\n%s", out)
	}
}

func TestEmitShortCircuitAnd(t *testing.T) {
	out := render(t, `
		int f(int a, int b) { return a && b; }
	`)
	if !strings.Contains(out, "br ") {
		t.Fatalf("&& should lower to a branch, got:\n%s", out)
	}
}

func TestEmitArrayDecay(t *testing.T) {
	out := render(t, `
		int g(int a[]) { return a[0]; }
		int f() { int m[2][3]; return g(m[0]); }
	`)
	if !strings.Contains(out, "getelemptr") {
		t.Fatalf("array indexing should use getelemptr, got:\n%s", out)
	}
}

func TestEmitGlobalArrayInit(t *testing.T) {
	out := render(t, `
		int g[2][2] = {{1, 2}, {3}};
		int main() { return g[1][0]; }
	`)
	if !strings.Contains(out, "global @g") {
		t.Fatalf("expected a global decl, got:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	src := `
		int g = 7;
		int fib(int n) {
			if (n) {
				return fib(n - 1) + fib(n - 2);
			}
			return 1;
		}
		int main() {
			int i = 0;
			int sum = 0;
			while (i) {
				sum = sum + fib(i);
				i = i + 1;
			}
			return sum + g;
		}
	`
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	prog := koopa.Emit(unit)
	want := koopa.Render(prog)

	got, err := koopa.Parse(want)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if again := koopa.Render(got); again != want {
		t.Fatalf("round trip mismatch:\n--- want ---\n%s\n--- got ---\n%s", want, again)
	}
}

func TestLibraryDeclsOnlyWhenUsed(t *testing.T) {
	out := render(t, `int main() { return 0; }`)
	if strings.Contains(out, "decl @") {
		t.Fatalf("no library call, no decl expected:\n%s", out)
	}
	out = render(t, `int main() { putint(getint()); return 0; }`)
	if !strings.Contains(out, "decl @getint") || !strings.Contains(out, "decl @putint") {
		t.Fatalf("expected getint/putint decls:\n%s", out)
	}
	if strings.Contains(out, "decl @getch") {
		t.Fatalf("unused library decl should not be emitted:\n%s", out)
	}
}
