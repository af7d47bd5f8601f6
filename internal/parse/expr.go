// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/lex"
)

// Expression parsing is one function per precedence level, loosest to
// tightest, each calling the next tighter level — the standard shape for
// a hand-written recursive-descent expression grammar, matching SysY's
// precedence table in spec §3: || < && < eq/ne < rel < add < mul < unary.
func (p *Parser) parseExpr() ast.Expr { return p.parseLOr() }

func (p *Parser) parseLOr() ast.Expr {
	x := p.parseLAnd()
	for p.at(lex.OrOr) {
		pos := p.tok.Pos
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: "||", L: x, R: p.parseLAnd()}
	}
	return x
}

func (p *Parser) parseLAnd() ast.Expr {
	x := p.parseEq()
	for p.at(lex.AndAnd) {
		pos := p.tok.Pos
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: "&&", L: x, R: p.parseEq()}
	}
	return x
}

func (p *Parser) parseEq() ast.Expr {
	x := p.parseRel()
	for p.at(lex.Eq) || p.at(lex.Ne) {
		op, pos := "==", p.tok.Pos
		if p.tok.Kind == lex.Ne {
			op = "!="
		}
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: op, L: x, R: p.parseRel()}
	}
	return x
}

func (p *Parser) parseRel() ast.Expr {
	x := p.parseAdd()
	for p.at(lex.Lt) || p.at(lex.Gt) || p.at(lex.Le) || p.at(lex.Ge) {
		var op string
		switch p.tok.Kind {
		case lex.Lt:
			op = "<"
		case lex.Gt:
			op = ">"
		case lex.Le:
			op = "<="
		case lex.Ge:
			op = ">="
		}
		pos := p.tok.Pos
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: op, L: x, R: p.parseAdd()}
	}
	return x
}

func (p *Parser) parseAdd() ast.Expr {
	x := p.parseMul()
	for p.at(lex.Plus) || p.at(lex.Minus) {
		op, pos := "+", p.tok.Pos
		if p.tok.Kind == lex.Minus {
			op = "-"
		}
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: op, L: x, R: p.parseMul()}
	}
	return x
}

func (p *Parser) parseMul() ast.Expr {
	x := p.parseUnary()
	for p.at(lex.Star) || p.at(lex.Slash) || p.at(lex.Percent) {
		var op string
		switch p.tok.Kind {
		case lex.Star:
			op = "*"
		case lex.Slash:
			op = "/"
		case lex.Percent:
			op = "%"
		}
		pos := p.tok.Pos
		p.next()
		x = &ast.BinaryExpr{Pos: pos, Op: op, L: x, R: p.parseUnary()}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.tok.Kind {
	case lex.Plus, lex.Minus, lex.Not:
		op, pos := "", p.tok.Pos
		switch p.tok.Kind {
		case lex.Plus:
			op = "+"
		case lex.Minus:
			op = "-"
		case lex.Not:
			op = "!"
		}
		p.next()
		return &ast.UnaryExpr{Pos: pos, Op: op, X: p.parseUnary()}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.tok.Pos
	switch p.tok.Kind {
	case lex.LParen:
		p.next()
		x := p.parseExpr()
		p.expect(lex.RParen, ")")
		return &ast.ParenExpr{Pos: pos, X: x}
	case lex.IntLit:
		v := p.tok.IVal
		p.next()
		return &ast.Literal{Pos: pos, Value: v}
	case lex.Ident:
		name := p.tok.Text
		p.next()
		if p.at(lex.LParen) {
			p.next()
			var args []ast.Expr
			for !p.at(lex.RParen) {
				if len(args) > 0 {
					p.expect(lex.Comma, ",")
				}
				args = append(args, p.parseExpr())
			}
			p.expect(lex.RParen, ")")
			return &ast.CallExpr{Pos: pos, Callee: name, Args: args}
		}
		lv := &ast.LVal{Pos: pos, Name: name}
		for p.accept(lex.LBracket) {
			lv.Indices = append(lv.Indices, p.parseExpr())
			p.expect(lex.RBracket, "]")
		}
		return &ast.LValExpr{Pos: pos, LVal: lv}
	}
	diag.Fatalf(pos, "unexpected token in expression")
	panic("unreachable")
}
