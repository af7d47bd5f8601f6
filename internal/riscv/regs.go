// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package riscv lowers a koopa.Program to RV32IM assembly text (spec §4.8).
// It sticks to the register budget the spec hands it: t0-t3 as scratch for
// every instruction's operands and results, a0-a7 for the first eight call
// arguments and for a function's single i32 return value, sp and ra for
// frame management. No register allocator: every non-constant value lives
// in its own stack slot (internal/frame) and is reloaded on each use, the
// same one-temp-at-a-time discipline cmd/compile's older SSA-less backends
// (and this spec's own §9 note) assume for a from-scratch codegen pass.
package riscv

// argRegs are the registers the first 8 call arguments and a function's
// single return value travel in.
var argRegs = [8]string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

const retReg = "a0"

// scratch registers used to hold one operand/result at a time. t3 is
// reserved by imm.go's overflow-offset helpers, so general codegen only
// reaches for t0-t2.
const (
	regResult = "t0"
	regLHS    = "t1"
	regRHS    = "t2"
)
