// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented, one-node-per-line debug representation of unit to w.
// It exists for the CLI's -ast mode and for tests that want a readable
// tree without round-tripping through Koopa.
func Dump(w io.Writer, unit *CompUnit) {
	p := &dumper{w: w}
	p.dumpCompUnit(unit)
}

type dumper struct {
	w     io.Writer
	depth int
}

func (p *dumper) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), fmt.Sprintf(format, args...))
}

func (p *dumper) nest(f func()) {
	p.depth++
	f()
	p.depth--
}

func (p *dumper) dumpCompUnit(u *CompUnit) {
	p.line("CompUnit")
	p.nest(func() {
		for _, item := range u.Items {
			switch it := item.(type) {
			case *Decl:
				p.dumpDecl(it)
			case *FuncDef:
				p.dumpFuncDef(it)
			}
		}
	})
}

func (p *dumper) dumpFuncDef(f *FuncDef) {
	ret := "int"
	if f.Ret == RetVoid {
		ret = "void"
	}
	p.line("FuncDef %s %s(...)", ret, f.Name)
	p.nest(func() {
		for _, param := range f.Params {
			if param.Array {
				p.line("Param %s[]%v (array)", param.Name, dimsStr(param.Dims))
			} else {
				p.line("Param %s (scalar)", param.Name)
			}
		}
		p.dumpBlock(f.Body)
	})
}

func dimsStr(dims []Expr) string {
	if len(dims) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d inner dims)", len(dims))
}

func (p *dumper) dumpDecl(d *Decl) {
	kind := "var"
	if d.Const {
		kind = "const"
	}
	p.line("Decl %s", kind)
	p.nest(func() {
		for _, def := range d.Defs {
			p.line("Def %s dims=%d init=%v", def.Name, len(def.Dims), def.Init != nil)
		}
	})
}

func (p *dumper) dumpBlock(b *Block) {
	p.line("Block")
	p.nest(func() {
		for _, item := range b.Items {
			switch it := item.(type) {
			case *Decl:
				p.dumpDecl(it)
			case Stmt:
				p.dumpStmt(it)
			}
		}
	})
}

func (p *dumper) dumpStmt(s Stmt) {
	switch st := s.(type) {
	case *ReturnStmt:
		p.line("Return has_expr=%v", st.Expr != nil)
	case *AssignStmt:
		p.line("Assign %s", st.LVal.Name)
	case *ExprStmt:
		p.line("ExprStmt has_expr=%v", st.Expr != nil)
	case *BlockStmt:
		p.dumpBlock(st.Block)
	case *IfStmt:
		p.line("If")
		p.nest(func() {
			p.dumpStmt(st.Then)
			if st.Else != nil {
				p.dumpStmt(st.Else)
			}
		})
	case *WhileStmt:
		p.line("While")
		p.nest(func() { p.dumpStmt(st.Body) })
	case *BreakStmt:
		p.line("Break")
	case *ContinueStmt:
		p.line("Continue")
	default:
		p.line("<unknown stmt %T>", s)
	}
}
