// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/koopa"
)

// SlotTable maps every IR value needing storage to its sp-relative
// offset within a Layout. Built once per function by Plan; the RISC-V
// backend only ever reads it.
type SlotTable struct {
	offsets map[*koopa.Value]int
}

// Offset returns v's assigned stack offset; it is a compiler bug to ask
// for the offset of a value Plan never assigned one to (an IntConst, a
// param, or a void-kind instruction).
func (t *SlotTable) Offset(v *koopa.Value) int {
	off, ok := t.offsets[v]
	if !ok {
		diag.Bug("no stack slot assigned for value")
	}
	return off
}

// Has reports whether v has an assigned slot.
func (t *SlotTable) Has(v *koopa.Value) bool {
	_, ok := t.offsets[v]
	return ok
}
