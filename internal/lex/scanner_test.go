// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lex_test

import (
	"testing"

	"github.com/c-x-b/PKUCompiler/internal/lex"
)

func scanAll(src string) []lex.Kind {
	s := lex.NewScanner("t.c", []byte(src))
	var kinds []lex.Kind
	for {
		tok := s.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == lex.EOF {
			return kinds
		}
	}
}

func TestScanKeywordsAndPunct(t *testing.T) {
	got := scanAll("int main() { return 0; }")
	want := []lex.Kind{
		lex.KwInt, lex.Ident, lex.LParen, lex.RParen, lex.LBrace,
		lex.KwReturn, lex.IntLit, lex.Semi, lex.RBrace, lex.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanMultiCharOperators(t *testing.T) {
	got := scanAll("a <= b && c != d")
	want := []lex.Kind{lex.Ident, lex.Le, lex.Ident, lex.AndAnd, lex.Ident, lex.Ne, lex.Ident, lex.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanIntLiteralValue(t *testing.T) {
	s := lex.NewScanner("t.c", []byte("0x1F 017 42"))
	for _, want := range []int32{31, 15, 42} {
		tok := s.Next()
		if tok.Kind != lex.IntLit {
			t.Fatalf("expected IntLit, got %v", tok.Kind)
		}
		if tok.IVal != want {
			t.Fatalf("got %d, want %d", tok.IVal, want)
		}
	}
}
