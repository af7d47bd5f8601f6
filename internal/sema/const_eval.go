// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sema

import (
	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/diag"
)

// Eval folds a scalar constant expression (spec §4.2). It succeeds iff
// every leaf lvalue resolves to a ConstScalar symbol and every operator is
// defined on integers; anything else is a fatal type error, per spec §7's
// no-recovery policy. Arithmetic wraps at 32 bits; division/modulo by
// zero during folding is undefined behavior, not diagnosed (spec §4.2).
func Eval(st *Stack, e ast.Expr) int32 {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value
	case *ast.ParenExpr:
		return Eval(st, n.X)
	case *ast.LValExpr:
		return evalLVal(st, n.LVal)
	case *ast.UnaryExpr:
		v := Eval(st, n.X)
		switch n.Op {
		case "+":
			return v
		case "-":
			return -v
		case "!":
			if v == 0 {
				return 1
			}
			return 0
		}
	case *ast.BinaryExpr:
		return evalBinary(st, n)
	case *ast.CallExpr:
		diag.Fatalf(n.Pos, "call is not a constant expression")
	}
	diag.Fatalf(e.Position(), "expression is not a constant")
	panic("unreachable")
}

func evalLVal(st *Stack, lv *ast.LVal) int32 {
	sym, _ := st.Lookup(lv.Pos, lv.Name)
	if len(lv.Indices) == 0 {
		if sym.Kind != ConstScalar {
			diag.Fatalf(lv.Pos, "%q is not a constant", lv.Name)
		}
		return sym.Value
	}
	// Constant array element reads are out of scope for folding (SysY
	// const arrays are never indexed inside another const's initializer
	// in practice); treat as non-constant rather than special-casing it.
	diag.Fatalf(lv.Pos, "array element is not a constant expression")
	panic("unreachable")
}

// EvalDim evaluates an array dimension expression and requires it be a
// positive constant (spec §4.4, "evaluate each dimension to a positive
// integer"); zero/negative dimensions are a fatal type error.
func EvalDim(st *Stack, e ast.Expr) int {
	v := Eval(st, e)
	if v <= 0 {
		diag.Fatalf(e.Position(), "array dimension must be a positive constant")
	}
	return int(v)
}

func evalBinary(st *Stack, n *ast.BinaryExpr) int32 {
	// && / || fold both sides unconditionally: constant folding requires
	// both operands already be constant, so no short-circuit is observable
	// (spec §4.2).
	l := Eval(st, n.L)
	r := Eval(st, n.R)
	switch n.Op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "%":
		return l % r
	case "<":
		return boolInt(l < r)
	case ">":
		return boolInt(l > r)
	case "<=":
		return boolInt(l <= r)
	case ">=":
		return boolInt(l >= r)
	case "==":
		return boolInt(l == r)
	case "!=":
		return boolInt(l != r)
	case "&&":
		return boolInt(l != 0 && r != 0)
	case "||":
		return boolInt(l != 0 || r != 0)
	}
	diag.Fatalf(n.Pos, "unsupported constant operator %q", n.Op)
	panic("unreachable")
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
