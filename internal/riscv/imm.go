// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riscv

import "fmt"

// directOffsetLimit is the point past which an sp-relative offset no
// longer fits RV32I's signed 12-bit immediate field and must be built in
// a scratch register instead (spec §4.8, and the §9 design note that
// calls for one centralized helper rather than repeating this branch at
// every load/store/address call site).
const directOffsetLimit = 2048

func fitsImm12(off int) bool { return off >= -directOffsetLimit && off < directOffsetLimit }

type asmWriter struct {
	lines []string
}

func (w *asmWriter) emit(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *asmWriter) label(name string) {
	w.lines = append(w.lines, name+":")
}

// loadSP loads the 4 bytes at sp+off into reg.
func (w *asmWriter) loadSP(reg string, off int) {
	if fitsImm12(off) {
		w.emit("\tlw %s, %d(sp)", reg, off)
		return
	}
	w.emit("\tli t3, %d", off)
	w.emit("\tadd t3, sp, t3")
	w.emit("\tlw %s, 0(t3)", reg)
}

// storeSP stores reg to sp+off.
func (w *asmWriter) storeSP(reg string, off int) {
	if fitsImm12(off) {
		w.emit("\tsw %s, %d(sp)", reg, off)
		return
	}
	w.emit("\tli t3, %d", off)
	w.emit("\tadd t3, sp, t3")
	w.emit("\tsw %s, 0(t3)", reg)
}

// addrSP computes sp+off into reg (used to take the address of a local
// alloca, e.g. as a getelemptr/getptr base).
func (w *asmWriter) addrSP(reg string, off int) {
	if fitsImm12(off) {
		w.emit("\taddi %s, sp, %d", reg, off)
		return
	}
	w.emit("\tli t3, %d", off)
	w.emit("\tadd %s, sp, t3", reg)
}
