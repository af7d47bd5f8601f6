// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

import (
	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/sema"
)

func (e *Emitter) emitGlobalDecl(d *ast.Decl) {
	for _, def := range d.Defs {
		if len(def.Dims) == 0 {
			e.emitGlobalScalar(d.Const, def)
		} else {
			e.emitGlobalArray(d.Const, def)
		}
	}
}

func (e *Emitter) emitGlobalScalar(isConst bool, def *ast.VarDef) {
	if isConst {
		v := sema.Eval(e.stack, def.Init.(*ast.InitExpr).Expr)
		e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.ConstScalar, Value: v})
		return
	}
	tid := e.stack.Current().ID()
	name := mangled(def.Name, tid)
	var init Init
	if def.Init != nil {
		init = IntInit{Val: sema.Eval(e.stack, def.Init.(*ast.InitExpr).Expr)}
	}
	gv := &Value{Kind: KGlobalAlloc, Typ: PointerType{Elem: IntType{}}, AllocType: IntType{}, Name: name, Init: init}
	e.prog.Globals = append(e.prog.Globals, gv)
	e.named[name] = gv
	e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.VarScalar, TableID: tid})
}

func (e *Emitter) emitGlobalArray(isConst bool, def *ast.VarDef) {
	dims := evalDims(e.stack, def.Dims)
	shape := buildArrayType(dims)
	tid := e.stack.Current().ID()
	name := mangled(def.Name, tid)
	gv := &Value{Kind: KGlobalAlloc, Typ: PointerType{Elem: shape}, AllocType: shape, Name: name}
	if def.Init != nil {
		flat := FlattenInit(def.Init, dims)
		ints := make([]int32, len(flat))
		for i, ex := range flat {
			if ex != nil {
				ints[i] = sema.Eval(e.stack, ex)
			}
		}
		gv.Init = buildNested(ints, dims)
	}
	e.prog.Globals = append(e.prog.Globals, gv)
	e.named[name] = gv
	// SysY never reads a const array's elements through the folder (see
	// sema.evalLVal), so const and plain arrays share one symbol kind; only
	// scalar constants get their own Kind for folding.
	e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.Array, Shape: dims})
}

func (e *Emitter) emitLocalDecl(d *ast.Decl) {
	for _, def := range d.Defs {
		if len(def.Dims) == 0 {
			e.emitLocalScalar(d.Const, def)
		} else {
			e.emitLocalArray(d.Const, def)
		}
	}
}

func (e *Emitter) emitLocalScalar(isConst bool, def *ast.VarDef) {
	if isConst {
		v := sema.Eval(e.stack, def.Init.(*ast.InitExpr).Expr)
		e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.ConstScalar, Value: v})
		return
	}
	tid := e.stack.Current().ID()
	name := mangled(def.Name, tid)
	allocV := e.appendInst(&Value{Kind: KAlloc, Typ: PointerType{Elem: IntType{}}, AllocType: IntType{}, Name: name})
	e.named[name] = allocV
	e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.VarScalar, TableID: tid})
	if def.Init != nil {
		v := e.emitExpr(def.Init.(*ast.InitExpr).Expr)
		requireValue(v, def.Pos)
		e.emitStoreVal(allocV, v)
	}
}

func (e *Emitter) emitLocalArray(isConst bool, def *ast.VarDef) {
	dims := evalDims(e.stack, def.Dims)
	shape := buildArrayType(dims)
	tid := e.stack.Current().ID()
	name := mangled(def.Name, tid)
	allocV := e.appendInst(&Value{Kind: KAlloc, Typ: PointerType{Elem: shape}, AllocType: shape, Name: name})
	e.named[name] = allocV
	e.stack.Insert(def.Pos, def.Name, &sema.Symbol{Kind: sema.Array, Shape: dims})
	if def.Init == nil {
		return
	}
	flat := FlattenInit(def.Init, dims)
	for i, ex := range flat {
		ptr := e.gepChainConst(allocV, dims, i)
		if ex == nil {
			e.emitStoreImm(ptr, 0)
			continue
		}
		v := e.emitExpr(ex)
		requireValue(v, def.Pos)
		e.emitStoreVal(ptr, v)
	}
}

// gepChainConst addresses flat position idx of an array with the given
// shape by a chain of constant-index getelemptr steps, used for array
// initializers where every index is known at lowering time.
func (e *Emitter) gepChainConst(base *Value, dims []int, idx int) *Value {
	cur := base
	rem := idx
	for i := range dims {
		span := 1
		for _, d := range dims[i+1:] {
			span *= d
		}
		digit := rem / span
		rem = rem % span
		cur = e.emitGetElemPtrImm(cur, int32(digit))
	}
	return cur
}
