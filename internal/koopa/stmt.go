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

func paramType(p *ast.Param, st *sema.Stack) Type {
	if !p.Array {
		return IntType{}
	}
	dims := evalDims(st, p.Dims)
	return PointerType{Elem: buildArrayType(dims)}
}

func (e *Emitter) emitFuncDef(f *ast.FuncDef) {
	var ret Type
	if f.Ret == ast.RetInt {
		ret = IntType{}
	}
	e.stack.Insert(f.Pos, f.Name, &sema.Symbol{Kind: sema.Function, HasRet: f.Ret == ast.RetInt})

	e.stack.Enter()
	tid := e.stack.Current().ID()

	fn := &Function{Name: f.Name, Ret: ret}
	paramVals := make([]*Value, len(f.Params))
	paramShapes := make([][]int, len(f.Params))
	for i, p := range f.Params {
		pt := paramType(p, e.stack)
		paramVals[i] = &Value{Kind: KParam, Typ: pt, Name: "@" + p.Name, ParamIndex: i}
		if p.Array {
			paramShapes[i] = evalDims(e.stack, p.Dims)
		}
	}
	fn.Params = paramVals

	e.fn = fn
	e.tempID = 0
	e.startBlock("entry")

	for i, p := range f.Params {
		pv := paramVals[i]
		name := mangled(p.Name, tid)
		allocV := e.appendInst(&Value{Kind: KAlloc, Typ: PointerType{Elem: pv.Typ}, AllocType: pv.Typ, Name: name})
		e.named[name] = allocV
		e.emitStoreVal(allocV, pv)
		if p.Array {
			e.stack.Insert(p.Pos, p.Name, &sema.Symbol{Kind: sema.PointerParam, Shape: paramShapes[i]})
		} else {
			e.stack.Insert(p.Pos, p.Name, &sema.Symbol{Kind: sema.VarScalar, TableID: tid})
		}
	}

	bodyRet := e.emitBlockItems(f.Body.Items)
	if !bodyRet {
		e.emitDefaultRet(f.Ret)
	}

	e.stack.Leave()
	e.prog.Funcs = append(e.prog.Funcs, fn)
}

func (e *Emitter) emitDefaultRet(ret ast.RetKind) {
	if ret == ast.RetInt {
		e.appendInst(&Value{Kind: KRet, HasRetVal: true, RetVal: e.emitIntConst(0)})
	} else {
		e.appendInst(&Value{Kind: KRet})
	}
}

// emitBlockItems processes one compound statement's items in its own
// scope and reports whether control definitely left through a terminator
// (ret/break/continue), in which case any remaining items are dead and
// are never even visited — the cleaner alternative spec §9(c) invites in
// place of allocating a synthetic label just to absorb unreachable code.
func (e *Emitter) emitBlockItems(items []ast.BlockItem) bool {
	e.stack.Enter()
	defer e.stack.Leave()
	return e.emitBlockItemsNoScope(items)
}

func (e *Emitter) emitBlockItemsNoScope(items []ast.BlockItem) bool {
	for _, item := range items {
		switch n := item.(type) {
		case *ast.Decl:
			e.emitLocalDecl(n)
		case ast.Stmt:
			if e.emitStmt(n) {
				return true
			}
		}
	}
	return false
}

// emitStmt lowers one statement and reports whether it definitely
// terminates the enclosing straight-line block.
func (e *Emitter) emitStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		e.emitReturn(n)
		return true
	case *ast.AssignStmt:
		e.emitAssign(n)
		return false
	case *ast.ExprStmt:
		if n.Expr != nil {
			e.emitExpr(n.Expr)
		}
		return false
	case *ast.BlockStmt:
		e.stack.Enter()
		ret := e.emitBlockItemsNoScope(n.Block.Items)
		e.stack.Leave()
		return ret
	case *ast.IfStmt:
		return e.emitIf(n)
	case *ast.WhileStmt:
		e.emitWhile(n)
		return false
	case *ast.BreakStmt:
		if len(e.loopEnd) == 0 {
			diag.Fatalf(n.Pos, "break statement not within a loop")
		}
		e.appendInst(&Value{Kind: KJump, Label: e.loopEnd[len(e.loopEnd)-1]})
		return true
	case *ast.ContinueStmt:
		if len(e.loopCont) == 0 {
			diag.Fatalf(n.Pos, "continue statement not within a loop")
		}
		e.appendInst(&Value{Kind: KJump, Label: e.loopCont[len(e.loopCont)-1]})
		return true
	}
	diag.Bug("unhandled statement kind %T", s)
	panic("unreachable")
}

func (e *Emitter) emitReturn(n *ast.ReturnStmt) {
	if n.Expr == nil {
		e.appendInst(&Value{Kind: KRet})
		return
	}
	v := e.emitExpr(n.Expr)
	requireValue(v, n.Pos)
	e.appendInst(&Value{Kind: KRet, HasRetVal: true, RetVal: v})
}

func (e *Emitter) emitAssign(n *ast.AssignStmt) {
	addr := e.lvalStoreAddr(n.LVal)
	v := e.emitExpr(n.Expr)
	requireValue(v, n.Pos)
	e.emitStoreVal(addr, v)
}

// emitIf lowers if/else per spec §4.6: three fresh labels (then/else/end,
// else/end collapsed to one when there is no else branch), reporting
// "both arms definitely returned" only when an else branch exists and
// both arms terminated.
func (e *Emitter) emitIf(n *ast.IfStmt) bool {
	cond := e.emitExpr(n.Cond)
	requireValue(cond, n.Pos)
	id := e.newLabel()
	thenLbl := fmt.Sprintf("then_%d", id)
	elseLbl := fmt.Sprintf("else_%d", id)
	endLbl := fmt.Sprintf("end_%d", id)

	falseTarget := elseLbl
	if n.Else == nil {
		falseTarget = endLbl
	}
	e.appendInst(&Value{Kind: KBranch, Cond: cond, TrueLbl: thenLbl, FalseLbl: falseTarget})

	e.startBlock(thenLbl)
	thenRet := e.emitStmt(n.Then)
	if !thenRet {
		e.appendInst(&Value{Kind: KJump, Label: endLbl})
	}

	elseRet := false
	if n.Else != nil {
		e.startBlock(elseLbl)
		elseRet = e.emitStmt(n.Else)
		if !elseRet {
			e.appendInst(&Value{Kind: KJump, Label: endLbl})
		}
	}

	if thenRet && n.Else != nil && elseRet {
		// end_N is unreachable; its label is simply never used downstream.
		return true
	}
	e.startBlock(endLbl)
	return false
}

// emitWhile lowers while per spec §4.6: entry (condition check), body,
// end, with the innermost loop's continue/break targets pushed for the
// duration of the body (spec §5's strict push/pop discipline handles
// nested loops automatically). A while never reports "definitely
// returns": the condition can be false on the very first check.
func (e *Emitter) emitWhile(n *ast.WhileStmt) {
	id := e.newLabel()
	entryLbl := fmt.Sprintf("entry_%d", id)
	bodyLbl := fmt.Sprintf("body_%d", id)
	endLbl := fmt.Sprintf("end_%d", id)

	e.appendInst(&Value{Kind: KJump, Label: entryLbl})
	e.startBlock(entryLbl)
	cond := e.emitExpr(n.Cond)
	requireValue(cond, n.Pos)
	e.appendInst(&Value{Kind: KBranch, Cond: cond, TrueLbl: bodyLbl, FalseLbl: endLbl})

	e.startBlock(bodyLbl)
	e.loopEnd = append(e.loopEnd, endLbl)
	e.loopCont = append(e.loopCont, entryLbl)
	bodyRet := e.emitStmt(n.Body)
	e.loopEnd = e.loopEnd[:len(e.loopEnd)-1]
	e.loopCont = e.loopCont[:len(e.loopCont)-1]
	if !bodyRet {
		e.appendInst(&Value{Kind: KJump, Label: entryLbl})
	}

	e.startBlock(endLbl)
}
