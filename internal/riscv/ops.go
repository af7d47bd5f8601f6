// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riscv

import (
	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/koopa"
)

// emitLoad implements spec §4.8's three load shapes: a local alloc's own
// slot already holds the scalar (one lw); a global needs its address
// materialized first (la then lw); anything else (a getelemptr/getptr
// result, or a loaded pointer param) has a pointer sitting in its slot
// and needs a second lw to read through it.
func (fe *funcEmitter) emitLoad(v *koopa.Value) {
	switch v.Src.Kind {
	case koopa.KAlloc:
		fe.w.loadSP(regResult, fe.slots.Offset(v.Src))
	case koopa.KGlobalAlloc:
		fe.w.emit("\tla %s, %s", regResult, stripAt(v.Src.Name))
		fe.w.emit("\tlw %s, 0(%s)", regResult, regResult)
	default:
		fe.w.loadSP(regResult, fe.slots.Offset(v.Src))
		fe.w.emit("\tlw %s, 0(%s)", regResult, regResult)
	}
	fe.w.storeSP(regResult, fe.slots.Offset(v))
}

// emitStore implements the matching three store shapes: a literal is
// built with li; a formal argument is read from its register/overflow
// slot (this is how a function's prologue copies @pN into @pN's shadow
// alloc); anything else is just reloaded from its own slot. The
// destination is resolved the same way load's source is: local alloc ->
// direct slot, global -> address then store, anything else -> the
// dest's slot holds a pointer, dereference it.
func (fe *funcEmitter) emitStore(v *koopa.Value) {
	switch {
	case v.HasStoreImm:
		fe.w.emit("\tli %s, %d", regResult, v.StoreImm)
	default:
		fe.materialize(regResult, v.StoreSrc)
	}
	switch v.Dst.Kind {
	case koopa.KAlloc:
		fe.w.storeSP(regResult, fe.slots.Offset(v.Dst))
	case koopa.KGlobalAlloc:
		fe.w.emit("\tla %s, %s", regLHS, stripAt(v.Dst.Name))
		fe.w.emit("\tsw %s, 0(%s)", regResult, regLHS)
	default:
		fe.w.loadSP(regLHS, fe.slots.Offset(v.Dst))
		fe.w.emit("\tsw %s, 0(%s)", regResult, regLHS)
	}
}

func (fe *funcEmitter) emitBinary(v *koopa.Value) {
	fe.materialize(regLHS, v.LHS)
	fe.materialize(regRHS, v.RHS)
	switch v.Op {
	case "add":
		fe.w.emit("\tadd %s, %s, %s", regResult, regLHS, regRHS)
	case "sub":
		fe.w.emit("\tsub %s, %s, %s", regResult, regLHS, regRHS)
	case "mul":
		fe.w.emit("\tmul %s, %s, %s", regResult, regLHS, regRHS)
	case "div":
		fe.w.emit("\tdiv %s, %s, %s", regResult, regLHS, regRHS)
	case "mod":
		fe.w.emit("\trem %s, %s, %s", regResult, regLHS, regRHS)
	case "eq":
		fe.w.emit("\txor %s, %s, %s", regResult, regLHS, regRHS)
		fe.w.emit("\tseqz %s, %s", regResult, regResult)
	case "ne":
		fe.w.emit("\txor %s, %s, %s", regResult, regLHS, regRHS)
		fe.w.emit("\tsnez %s, %s", regResult, regResult)
	case "lt":
		fe.w.emit("\tslt %s, %s, %s", regResult, regLHS, regRHS)
	case "gt":
		fe.w.emit("\tsgt %s, %s, %s", regResult, regLHS, regRHS)
	case "le":
		fe.w.emit("\tsgt %s, %s, %s", regResult, regLHS, regRHS)
		fe.w.emit("\tseqz %s, %s", regResult, regResult)
	case "ge":
		fe.w.emit("\tslt %s, %s, %s", regResult, regLHS, regRHS)
		fe.w.emit("\tseqz %s, %s", regResult, regResult)
	case "and":
		fe.w.emit("\tand %s, %s, %s", regResult, regLHS, regRHS)
	case "or":
		fe.w.emit("\tor %s, %s, %s", regResult, regLHS, regRHS)
	default:
		diag.Bug("unhandled binary op %q", v.Op)
	}
	fe.w.storeSP(regResult, fe.slots.Offset(v))
}

// emitGetElemPtr handles both getelemptr and getptr: the result type
// (already fully computed by internal/koopa's emitter) tells us the
// stride directly, so there's no need for a side table shadowing each
// result back to a root array and index the way a type-erased IR would
// require (spec §9's design note takes this option explicitly).
func (fe *funcEmitter) emitGetElemPtr(v *koopa.Value) {
	fe.gepBase(regResult, v.Src)
	if v.HasIndexImm {
		fe.w.emit("\tli %s, %d", regRHS, v.IndexImm)
	} else {
		fe.materialize(regRHS, v.Index)
	}
	stride := 4 * typeElemCount(v.Typ.(koopa.PointerType).Elem)
	fe.w.emit("\tli %s, %d", regLHS, stride)
	fe.w.emit("\tmul %s, %s, %s", regLHS, regLHS, regRHS)
	fe.w.emit("\tadd %s, %s, %s", regResult, regResult, regLHS)
	fe.w.storeSP(regResult, fe.slots.Offset(v))
}

// gepBase computes the address a getelemptr/getptr steps from: a local
// alloc's address (addi sp,...), a global's address (la), or — when src
// is itself a getelemptr/getptr/loaded pointer — the pointer value
// already sitting in src's slot.
func (fe *funcEmitter) gepBase(reg string, src *koopa.Value) {
	switch src.Kind {
	case koopa.KAlloc:
		fe.w.addrSP(reg, fe.slots.Offset(src))
	case koopa.KGlobalAlloc:
		fe.w.emit("\tla %s, %s", reg, stripAt(src.Name))
	default:
		fe.w.loadSP(reg, fe.slots.Offset(src))
	}
}

func (fe *funcEmitter) emitBranch(v *koopa.Value) {
	fe.materialize(regResult, v.Cond)
	fe.w.emit("\tbnez %s, %s", regResult, fe.jumpTarget(v.TrueLbl))
	fe.w.emit("\tj %s", fe.jumpTarget(v.FalseLbl))
}

func (fe *funcEmitter) emitRet(v *koopa.Value) {
	if v.HasRetVal {
		fe.materialize(retReg, v.RetVal)
	}
	fe.epilogue()
}

func (fe *funcEmitter) emitCall(v *koopa.Value) {
	overflow := 0
	for i, arg := range v.Args {
		if i < len(argRegs) {
			fe.materialize(argRegs[i], arg)
			continue
		}
		fe.materialize(regResult, arg)
		fe.w.storeSP(regResult, 4*overflow)
		overflow++
	}
	fe.w.emit("\tcall %s", stripAt(v.Callee))
	if !v.VoidCall {
		fe.w.storeSP(retReg, fe.slots.Offset(v))
	}
}
