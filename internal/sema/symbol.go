// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sema holds the symbol/scope stack (spec §4.1) and the constant
// evaluator (spec §4.2). Both are pure data-and-functions, not tied to any
// particular emission target, so the Koopa emitter is the only consumer.
package sema

// Kind tags the closed set of symbol roles: one enum, pattern-matched by
// callers, instead of an interface with five near-empty implementations.
type Kind int

const (
	ConstScalar Kind = iota
	VarScalar
	Function
	Array
	PointerParam
)

// Symbol is a tagged record; only the fields relevant to Kind are
// meaningful; see spec §3.
type Symbol struct {
	Kind Kind

	// ConstScalar
	Value int32

	// VarScalar: the id of the scope table that owns this name, used to
	// build the mangled IR name "@name_tableID".
	TableID int

	// Function
	HasRet bool

	// Array: full ordered dimension list (outermost first).
	// PointerParam: shape of the *inner* dimensions only; empty for *i32.
	Shape []int
}
