// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lex scans SysY source text into a token stream.
//
// This is scaffolding spec §1 treats as an external collaborator ("lexical
// analysis and parsing ... assumed to produce a validated AST"); it exists
// here only so cmd/sysyc has something to read a .c/.sy file with. It is
// deliberately small: a single forward-scanning pass, no lookahead beyond
// one rune, errors routed through internal/diag like everything else.
package lex

import "github.com/c-x-b/PKUCompiler/internal/diag"

// Kind identifies a token's lexical class.
type Kind int

const (
	EOF Kind = iota
	Ident
	IntLit
	KwInt
	KwVoid
	KwConst
	KwIf
	KwElse
	KwWhile
	KwBreak
	KwContinue
	KwReturn

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi

	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Not
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	AndAnd
	OrOr
)

var keywords = map[string]Kind{
	"int":      KwInt,
	"void":     KwVoid,
	"const":    KwConst,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
}

// Token is one lexeme with its source position.
type Token struct {
	Kind Kind
	Text string
	IVal int32
	Pos  diag.Pos
}
