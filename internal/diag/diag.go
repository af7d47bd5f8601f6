// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag formats and raises the compiler's fatal diagnostics.
//
// SysY is a teaching/bootstrap compiler: spec §7 is explicit that every
// static-semantics violation aborts compilation with no recovery attempt.
// This package is the choke point the compiler's name, type, IR-invariant
// and backend-assertion errors pass through, so those fatal paths look the
// same on stderr. A Koopa text parse failure is not routed here:
// koopa.Parse returns it as an error value.
package diag

import (
	"fmt"
	"log"
	"os"
)

// Pos is a source position, filled in by the lexer/parser.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("sysyc: ")
}

// Fatalf reports a positioned error and terminates the process.
//
// Every positioned user-facing error — lexing, parsing, name resolution,
// type misuse — funnels through here. Internal invariant violations,
// including a backend encountering an IR kind it does not implement, go
// through Bug instead.
func Fatalf(pos Pos, format string, args ...any) {
	log.Fatalf("%s: %s", pos, fmt.Sprintf(format, args...))
}

// Bug reports an internal invariant violation (a defensive assertion, not
// a user-facing diagnostic) and terminates the process.
func Bug(format string, args ...any) {
	log.Fatalf("internal error: %s", fmt.Sprintf(format, args...))
}

// Exit terminates the process with code, for non-diagnostic, non-zero
// terminations such as usage errors (cmd/asm's convention is exit code 2).
// cmd/sysyc's usage path calls os.Exit(2) directly.
func Exit(code int) {
	os.Exit(code)
}
