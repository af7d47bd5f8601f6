// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

import (
	"fmt"

	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/sema"
)

// emitExpr lowers an expression and returns the Value holding its result
// directly — the spec §9 mandated replacement for reading a shared
// "last result is temp id-1" ambient counter.
func (e *Emitter) emitExpr(ex ast.Expr) *Value {
	switch n := ex.(type) {
	case *ast.Literal:
		return e.emitIntConst(n.Value)
	case *ast.ParenExpr:
		return e.emitExpr(n.X)
	case *ast.LValExpr:
		return e.emitLValRead(n.LVal)
	case *ast.UnaryExpr:
		return e.emitUnary(n)
	case *ast.BinaryExpr:
		return e.emitBinaryExpr(n)
	case *ast.CallExpr:
		return e.emitCall(n)
	}
	diag.Bug("unhandled expression kind %T", ex)
	panic("unreachable")
}

func (e *Emitter) emitUnary(n *ast.UnaryExpr) *Value {
	switch n.Op {
	case "+":
		return e.emitExpr(n.X)
	case "-":
		x := e.emitExpr(n.X)
		requireValue(x, n.Pos)
		return e.emitBinary("-", e.emitIntConst(0), x)
	case "!":
		x := e.emitExpr(n.X)
		requireValue(x, n.Pos)
		return e.emitBinary("==", e.emitIntConst(0), x)
	}
	diag.Bug("unsupported unary operator %q", n.Op)
	panic("unreachable")
}

func (e *Emitter) emitBinaryExpr(n *ast.BinaryExpr) *Value {
	switch n.Op {
	case "&&":
		return e.emitShortCircuit(true, n)
	case "||":
		return e.emitShortCircuit(false, n)
	}
	l := e.emitExpr(n.L)
	requireValue(l, n.Pos)
	r := e.emitExpr(n.R)
	requireValue(r, n.Pos)
	return e.emitBinary(n.Op, l, r)
}

// emitShortCircuit lowers && / || to an explicit branch plus a
// stack-allocated boolean cell, per spec §4.3: the left operand is always
// evaluated; the right operand is evaluated only when its value can
// change the result, and the cell is read back as the expression's value.
func (e *Emitter) emitShortCircuit(isAnd bool, n *ast.BinaryExpr) *Value {
	id := e.newLabel()
	thenLbl := fmt.Sprintf("sc_then_%d", id)
	endLbl := fmt.Sprintf("sc_end_%d", id)
	cellName := fmt.Sprintf("@__sc_%d", id)

	cell := e.appendInst(&Value{Kind: KAlloc, Typ: PointerType{Elem: IntType{}}, AllocType: IntType{}, Name: cellName})
	var seed int32
	if !isAnd {
		seed = 1
	}
	e.emitStoreImm(cell, seed)

	lhs := e.emitExpr(n.L)
	requireValue(lhs, n.Pos)
	lhsBool := e.emitBinary("!=", lhs, e.emitIntConst(0))
	falseTarget := endLbl
	trueTarget := thenLbl
	if isAnd {
		e.appendInst(&Value{Kind: KBranch, Cond: lhsBool, TrueLbl: trueTarget, FalseLbl: falseTarget})
	} else {
		// || only needs to evaluate the right side when the left was false.
		e.appendInst(&Value{Kind: KBranch, Cond: lhsBool, TrueLbl: falseTarget, FalseLbl: trueTarget})
	}

	e.startBlock(thenLbl)
	rhs := e.emitExpr(n.R)
	requireValue(rhs, n.Pos)
	rhsBool := e.emitBinary("!=", e.emitIntConst(0), rhs)
	e.emitStoreVal(cell, rhsBool)
	e.appendInst(&Value{Kind: KJump, Label: endLbl})

	e.startBlock(endLbl)
	return e.emitLoad(cell)
}

func (e *Emitter) emitCall(n *ast.CallExpr) *Value {
	sym := e.stack.LookupRoot(n.Pos, n.Callee)
	if sym.Kind != sema.Function {
		diag.Fatalf(n.Pos, "%q is not a function", n.Callee)
	}
	args := make([]*Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.emitExpr(a)
	}
	v := &Value{Kind: KCall, Callee: n.Callee, Args: args, VoidCall: !sym.HasRet}
	if sym.HasRet {
		v.Typ = IntType{}
	} else {
		v.Typ = UnitType{}
	}
	return e.appendInst(v)
}

// emitLValRead lowers an lvalue appearing in an expression context (spec
// §4.5): a fully indexed array read loads the scalar; a partially indexed
// one decays to a pointer one rank down via a zero-index getelemptr.
func (e *Emitter) emitLValRead(lv *ast.LVal) *Value {
	sym, tid := e.stack.Lookup(lv.Pos, lv.Name)
	switch sym.Kind {
	case sema.ConstScalar:
		if len(lv.Indices) != 0 {
			diag.Fatalf(lv.Pos, "%q is not an array", lv.Name)
		}
		return e.emitIntConst(sym.Value)
	case sema.VarScalar:
		if len(lv.Indices) != 0 {
			diag.Fatalf(lv.Pos, "%q is not an array", lv.Name)
		}
		return e.emitLoad(e.named[mangled(lv.Name, tid)])
	case sema.Function:
		diag.Fatalf(lv.Pos, "%q is a function, not a variable", lv.Name)
	case sema.PointerParam:
		if len(lv.Indices) == 0 {
			return e.emitLoad(e.named[mangled(lv.Name, tid)])
		}
	}

	ptr, got, full := e.chainForLVal(lv, sym, tid)
	if got == full {
		return e.emitLoad(ptr)
	}
	return e.emitGetElemPtrImm(ptr, 0)
}

// lvalStoreAddr resolves an assignment target to the address to store
// into; it is a fatal error unless the target is a fully indexed scalar.
func (e *Emitter) lvalStoreAddr(lv *ast.LVal) *Value {
	sym, tid := e.stack.Lookup(lv.Pos, lv.Name)
	switch sym.Kind {
	case sema.ConstScalar:
		diag.Fatalf(lv.Pos, "cannot assign to constant %q", lv.Name)
	case sema.Function:
		diag.Fatalf(lv.Pos, "%q is a function, not a variable", lv.Name)
	case sema.VarScalar:
		if len(lv.Indices) != 0 {
			diag.Fatalf(lv.Pos, "%q is not an array", lv.Name)
		}
		return e.named[mangled(lv.Name, tid)]
	}
	ptr, got, full := e.chainForLVal(lv, sym, tid)
	if got != full {
		diag.Fatalf(lv.Pos, "assignment target %q must be fully indexed", lv.Name)
	}
	return ptr
}

// chainForLVal walks lv's index expressions for an Array or PointerParam
// symbol, returning the resulting address, how many indices were
// consumed, and the rank needed to reach a scalar. A PointerParam's first
// index step is getptr (pointer arithmetic preserving the pointee type,
// I7); every step after that, and every step for a plain Array, is
// getelemptr (which strips one array dimension from the pointee type).
func (e *Emitter) chainForLVal(lv *ast.LVal, sym *sema.Symbol, tid int) (ptr *Value, got, full int) {
	base := e.named[mangled(lv.Name, tid)]
	switch sym.Kind {
	case sema.Array:
		cur := base
		for _, idxExpr := range lv.Indices {
			idx := e.emitExpr(idxExpr)
			requireValue(idx, lv.Pos)
			cur = e.emitGetElemPtr(cur, idx)
		}
		return cur, len(lv.Indices), len(sym.Shape)
	case sema.PointerParam:
		loaded := e.emitLoad(base)
		cur := loaded
		for i, idxExpr := range lv.Indices {
			idx := e.emitExpr(idxExpr)
			requireValue(idx, lv.Pos)
			if i == 0 {
				cur = e.emitGetPtr(cur, idx)
			} else {
				cur = e.emitGetElemPtr(cur, idx)
			}
		}
		return cur, len(lv.Indices), len(sym.Shape) + 1
	}
	diag.Bug("chainForLVal called on a non-indexable symbol")
	panic("unreachable")
}
