// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse is a hand-written recursive-descent parser that builds
// internal/ast nodes directly (no separate concrete syntax tree), matching
// the "ambient scaffolding" role spec §1 assigns to parsing: this package
// is not part of the graded two-stage lowering pipeline, but the CLI needs
// something to turn a .c file into an ast.CompUnit.
package parse

import (
	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/lex"
)

// Parser consumes a token stream one token of lookahead at a time.
type Parser struct {
	s    *lex.Scanner
	tok  lex.Token
}

// New returns a Parser over src, attributing diagnostics to file.
func New(file string, src []byte) *Parser {
	p := &Parser{s: lex.NewScanner(file, src)}
	p.next()
	return p
}

func (p *Parser) next() {
	p.tok = p.s.Next()
}

func (p *Parser) expect(k lex.Kind, what string) lex.Token {
	if p.tok.Kind != k {
		diag.Fatalf(p.tok.Pos, "expected %s", what)
	}
	t := p.tok
	p.next()
	return t
}

func (p *Parser) at(k lex.Kind) bool { return p.tok.Kind == k }

func (p *Parser) accept(k lex.Kind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

// ParseCompUnit parses an entire translation unit.
func (p *Parser) ParseCompUnit() *ast.CompUnit {
	unit := &ast.CompUnit{Pos: p.tok.Pos}
	for !p.at(lex.EOF) {
		unit.Items = append(unit.Items, p.parseGlobalItem())
	}
	return unit
}

// parseGlobalItem looks past `(const)? int|void Ident` to see whether a `(`
// follows (a function definition) or not (a declaration).
func (p *Parser) parseGlobalItem() ast.GlobalItem {
	if p.at(lex.KwConst) {
		return p.parseDecl()
	}
	// `int`/`void` Ident, then either `(` (func def) or `[`/`=`/`,`/`;` (decl).
	retVoid := p.at(lex.KwVoid)
	save := p.tok
	p.next()
	name := p.expect(lex.Ident, "identifier").Text
	if p.at(lex.LParen) {
		return p.finishFuncDef(save.Pos, name, retVoid)
	}
	// Rewind is not supported by this one-token-lookahead scanner, so
	// declarations re-enter through a dedicated path that already knows
	// the base type and first name.
	return p.finishDecl(save.Pos, false, name)
}

func (p *Parser) finishFuncDef(pos diag.Pos, name string, retVoid bool) *ast.FuncDef {
	p.expect(lex.LParen, "(")
	var params []*ast.Param
	for !p.at(lex.RParen) {
		if len(params) > 0 {
			p.expect(lex.Comma, ",")
		}
		params = append(params, p.parseParam())
	}
	p.expect(lex.RParen, ")")
	ret := ast.RetInt
	if retVoid {
		ret = ast.RetVoid
	}
	body := p.parseBlock()
	return &ast.FuncDef{Pos: pos, Name: name, Ret: ret, Params: params, Body: body}
}

func (p *Parser) parseParam() *ast.Param {
	// Params are always `int`: scalar, or array/pointer.
	p.expect(lex.KwInt, "int")
	pos := p.tok.Pos
	name := p.expect(lex.Ident, "identifier").Text
	param := &ast.Param{Pos: pos, Name: name}
	if p.accept(lex.LBracket) {
		param.Array = true
		p.expect(lex.RBracket, "]") // unsized first dimension
		for p.accept(lex.LBracket) {
			param.Dims = append(param.Dims, p.parseExpr())
			p.expect(lex.RBracket, "]")
		}
	}
	return param
}

func (p *Parser) parseDecl() *ast.Decl {
	pos := p.tok.Pos
	isConst := p.accept(lex.KwConst)
	p.expect(lex.KwInt, "int")
	name := p.expect(lex.Ident, "identifier").Text
	return p.finishDecl(pos, isConst, name)
}

// finishDecl parses the dims/init/`,`-separated tail of a declaration
// whose `(const)? int Name` prefix has already been consumed.
func (p *Parser) finishDecl(pos diag.Pos, isConst bool, firstName string) *ast.Decl {
	decl := &ast.Decl{Pos: pos, Const: isConst}
	name := firstName
	for {
		def := &ast.VarDef{Pos: pos, Name: name}
		for p.accept(lex.LBracket) {
			def.Dims = append(def.Dims, p.parseExpr())
			p.expect(lex.RBracket, "]")
		}
		if p.accept(lex.Assign) {
			def.Init = p.parseInitializer()
		}
		decl.Defs = append(decl.Defs, def)
		if !p.accept(lex.Comma) {
			break
		}
		name = p.expect(lex.Ident, "identifier").Text
		pos = p.tok.Pos
	}
	p.expect(lex.Semi, ";")
	return decl
}

func (p *Parser) parseInitializer() ast.Initializer {
	if p.at(lex.LBrace) {
		pos := p.tok.Pos
		p.next()
		list := &ast.InitList{Pos: pos}
		for !p.at(lex.RBrace) {
			if len(list.Items) > 0 {
				p.expect(lex.Comma, ",")
				if p.at(lex.RBrace) { // trailing comma
					break
				}
			}
			list.Items = append(list.Items, p.parseInitializer())
		}
		p.expect(lex.RBrace, "}")
		return list
	}
	pos := p.tok.Pos
	return &ast.InitExpr{Pos: pos, Expr: p.parseExpr()}
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.expect(lex.LBrace, "{").Pos
	b := &ast.Block{Pos: pos}
	for !p.at(lex.RBrace) {
		b.Items = append(b.Items, p.parseBlockItem())
	}
	p.expect(lex.RBrace, "}")
	return b
}

func (p *Parser) parseBlockItem() ast.BlockItem {
	if p.at(lex.KwConst) || p.isLocalDeclStart() {
		return p.parseDecl()
	}
	return p.parseStmt()
}

// isLocalDeclStart reports whether the current `int` token begins a
// declaration rather than... it always does inside a block (SysY has no
// bare `int;` expression), so this simply checks for KwInt.
func (p *Parser) isLocalDeclStart() bool {
	return p.at(lex.KwInt)
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case lex.KwReturn:
		pos := p.tok.Pos
		p.next()
		var e ast.Expr
		if !p.at(lex.Semi) {
			e = p.parseExpr()
		}
		p.expect(lex.Semi, ";")
		return &ast.ReturnStmt{Pos: pos, Expr: e}
	case lex.KwIf:
		pos := p.tok.Pos
		p.next()
		p.expect(lex.LParen, "(")
		cond := p.parseExpr()
		p.expect(lex.RParen, ")")
		then := p.parseStmt()
		var els ast.Stmt
		if p.accept(lex.KwElse) {
			els = p.parseStmt()
		}
		return &ast.IfStmt{Pos: pos, Cond: cond, Then: then, Else: els}
	case lex.KwWhile:
		pos := p.tok.Pos
		p.next()
		p.expect(lex.LParen, "(")
		cond := p.parseExpr()
		p.expect(lex.RParen, ")")
		body := p.parseStmt()
		return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}
	case lex.KwBreak:
		pos := p.tok.Pos
		p.next()
		p.expect(lex.Semi, ";")
		return &ast.BreakStmt{Pos: pos}
	case lex.KwContinue:
		pos := p.tok.Pos
		p.next()
		p.expect(lex.Semi, ";")
		return &ast.ContinueStmt{Pos: pos}
	case lex.LBrace:
		pos := p.tok.Pos
		return &ast.BlockStmt{Pos: pos, Block: p.parseBlock()}
	case lex.Semi:
		pos := p.tok.Pos
		p.next()
		return &ast.ExprStmt{Pos: pos}
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt disambiguates `lval = expr;` from a bare expression
// statement. Because the lval prefix (ident (`[` expr `]`)*) is itself a
// valid expression prefix, parse it as an expression first, then check
// for `=`.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	pos := p.tok.Pos
	e := p.parseExpr()
	if p.accept(lex.Assign) {
		lv, ok := exprToLVal(e)
		if !ok {
			diag.Fatalf(pos, "left side of assignment must be an lvalue")
		}
		rhs := p.parseExpr()
		p.expect(lex.Semi, ";")
		return &ast.AssignStmt{Pos: pos, LVal: lv, Expr: rhs}
	}
	p.expect(lex.Semi, ";")
	return &ast.ExprStmt{Pos: pos, Expr: e}
}

func exprToLVal(e ast.Expr) (*ast.LVal, bool) {
	if le, ok := e.(*ast.LValExpr); ok {
		return le.LVal, true
	}
	return nil, false
}
