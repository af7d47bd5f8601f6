// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sema_test

import (
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/parse"
	"github.com/c-x-b/PKUCompiler/internal/sema"
)

// firstConstExpr parses `const int x = <expr>;` as a whole compilation
// unit and returns the parsed initializer expression.
func firstConstExpr(t *testing.T, expr string) ast.Expr {
	t.Helper()
	src := "const int x = " + expr + ";"
	unit := parse.New("t.c", []byte(src)).ParseCompUnit()
	decl := unit.Items[0].(*ast.Decl)
	return decl.Defs[0].Init.(*ast.InitExpr).Expr
}

func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want int32
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-5 + 2", -3},
		{"!0", 1},
		{"!5", 0},
		{"1 < 2 && 2 < 3", 1},
		{"1 < 2 || 5 < 3", 1},
		{"7 % 3", 1},
		{"10 / 3", 3},
	}
	st := sema.NewStack()
	for _, c := range cases {
		got := sema.Eval(st, firstConstExpr(t, c.expr))
		if got != c.want {
			t.Errorf("Eval(%q) = %d, want %d", c.expr, got, c.want)
		}
	}
}

func TestScopeShadowing(t *testing.T) {
	st := sema.NewStack()
	st.Insert(ast.Pos{}, "x", &sema.Symbol{Kind: sema.ConstScalar, Value: 1})
	st.Enter()
	st.Insert(ast.Pos{}, "x", &sema.Symbol{Kind: sema.ConstScalar, Value: 2})

	sym, _ := st.Lookup(ast.Pos{}, "x")
	if sym.Value != 2 {
		t.Fatalf("inner scope should shadow: got %d, want 2", sym.Value)
	}

	st.Leave()
	sym, _ = st.Lookup(ast.Pos{}, "x")
	if sym.Value != 1 {
		t.Fatalf("leaving scope should restore outer binding: got %d, want 1", sym.Value)
	}
}
