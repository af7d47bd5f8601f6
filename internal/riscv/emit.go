// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riscv

import (
	"strings"

	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/frame"
	"github.com/c-x-b/PKUCompiler/internal/koopa"
)

// Emit lowers an entire Koopa program to RV32IM assembly text.
func Emit(prog *koopa.Program) string {
	var w asmWriter
	if len(prog.Globals) > 0 {
		w.emit(".data")
		for _, g := range prog.Globals {
			emitGlobal(&w, g)
		}
		w.lines = append(w.lines, "")
	}
	w.emit(".text")
	for _, fn := range prog.Funcs {
		if fn.Decl {
			continue
		}
		emitFunction(&w, fn)
	}
	return strings.Join(w.lines, "\n") + "\n"
}

func stripAt(name string) string { return strings.TrimPrefix(name, "@") }

// funcEmitter carries the one function's frame geometry through the
// instruction-by-instruction walk; nothing here survives past one
// Function, matching the spec's value-per-stack-slot, no-register-
// allocator discipline (regs.go).
type funcEmitter struct {
	w       *asmWriter
	layout  frame.Layout
	slots   *frame.SlotTable
	curFunc string
}

func emitFunction(w *asmWriter, fn *koopa.Function) {
	layout, slots := frame.Plan(fn)
	name := stripAt(fn.Name)
	w.emit(".globl %s", name)
	w.label(name)
	if layout.Total > 0 {
		w.emit("\taddi sp, sp, -%d", layout.Total)
	}
	if layout.HasRA {
		w.storeSP("ra", layout.RAOffset)
	}
	fe := &funcEmitter{w: w, layout: layout, slots: slots, curFunc: name}
	for _, bb := range fn.Blocks {
		w.label(blockLabel(fn, bb))
		for _, inst := range bb.Insts {
			fe.emitInst(inst)
		}
	}
}

// blockLabel namespaces a Koopa block label by function so two functions
// that both happen to use "%entry" don't collide in the flat RISC-V
// symbol space.
func blockLabel(fn *koopa.Function, bb *koopa.BasicBlock) string {
	return stripAt(fn.Name) + "_" + bb.Label
}

func (fe *funcEmitter) jumpTarget(label string) string { return fe.curFunc + "_" + label }

func (fe *funcEmitter) epilogue() {
	if fe.layout.HasRA {
		fe.w.loadSP("ra", fe.layout.RAOffset)
	}
	if fe.layout.Total > 0 {
		fe.w.emit("\taddi sp, sp, %d", fe.layout.Total)
	}
	fe.w.emit("\tret")
}

// materialize puts v's current value into reg: a literal is built with
// li, a formal parameter is read out of its argument register or the
// caller's overflow area, and anything else is reloaded from its own
// stack slot (spec §4.8's repeated "literal -> li" / "slot -> lw"
// template, centralized here instead of duplicated per instruction kind).
func (fe *funcEmitter) materialize(reg string, v *koopa.Value) {
	switch v.Kind {
	case koopa.KIntConst:
		fe.w.emit("\tli %s, %d", reg, v.IntVal)
	case koopa.KParam:
		fe.loadArg(reg, v.ParamIndex)
	default:
		fe.w.loadSP(reg, fe.slots.Offset(v))
	}
}

// loadArg reads the i-th actual argument of a call in progress (when i
// names one of the current function's own formals, during its prologue
// copy-into-shadow-slot) into reg.
func (fe *funcEmitter) loadArg(reg string, i int) {
	if i < len(argRegs) {
		if reg != argRegs[i] {
			fe.w.emit("\tmv %s, %s", reg, argRegs[i])
		}
		return
	}
	off := fe.layout.Total + 4*(i-len(argRegs))
	fe.w.loadSP(reg, off)
}

func (fe *funcEmitter) emitInst(v *koopa.Value) {
	switch v.Kind {
	case koopa.KIntConst, koopa.KAlloc, koopa.KParam:
		// No code: a literal is materialized inline with li wherever it
		// is used; alloc only reserves a stack slot (frame.Plan already
		// did that); a bare param value is never itself executed, only
		// read by the one store that copies it into its shadow slot.
	case koopa.KLoad:
		fe.emitLoad(v)
	case koopa.KStore:
		fe.emitStore(v)
	case koopa.KBinary:
		fe.emitBinary(v)
	case koopa.KGetElemPtr, koopa.KGetPtr:
		fe.emitGetElemPtr(v)
	case koopa.KBranch:
		fe.emitBranch(v)
	case koopa.KJump:
		fe.w.emit("\tj %s", fe.jumpTarget(v.Label))
	case koopa.KRet:
		fe.emitRet(v)
	case koopa.KCall:
		fe.emitCall(v)
	default:
		diag.Bug("unhandled riscv instruction kind %d", v.Kind)
	}
}
