// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c-x-b/PKUCompiler/internal/diag"
	"github.com/c-x-b/PKUCompiler/internal/sema"
)

// libFunc describes one SysY runtime routine's Koopa signature (spec §6).
type libFunc struct {
	params []Type
	ret    Type // nil for void
}

// libraryOrder fixes the declaration order spec §6 lists them in.
var libraryOrder = []string{
	"getint", "getch", "getarray", "putint", "putch", "putarray", "starttime", "stoptime",
}

var libraryFuncs = map[string]libFunc{
	"getint":    {ret: IntType{}},
	"getch":     {ret: IntType{}},
	"getarray":  {params: []Type{PointerType{Elem: IntType{}}}, ret: IntType{}},
	"putint":    {params: []Type{IntType{}}},
	"putch":     {params: []Type{IntType{}}},
	"putarray":  {params: []Type{IntType{}, PointerType{Elem: IntType{}}}},
	"starttime": {},
	"stoptime":  {},
}

// IsLibraryFunc reports whether name is one of the eight SysY runtime
// routines that never get a Koopa function definition of their own.
func IsLibraryFunc(name string) bool {
	_, ok := libraryFuncs[name]
	return ok
}

// seedLibraryFuncs inserts the eight SysY runtime routines into the global
// scope as sema.Function symbols before any user declaration is walked, so
// a call to e.g. getint resolves through the ordinary LookupRoot path
// instead of falling through to "undeclared function" (spec §6).
func seedLibraryFuncs(st *sema.Stack) {
	for name, sig := range libraryFuncs {
		st.Insert(diag.Pos{}, name, &sema.Symbol{Kind: sema.Function, HasRet: sig.ret != nil})
	}
}

func usedLibraryFuncs(p *Program) map[string]bool {
	used := map[string]bool{}
	for _, fn := range p.Funcs {
		for _, bb := range fn.Blocks {
			for _, inst := range bb.Insts {
				if inst.Kind == KCall {
					if _, ok := libraryFuncs[inst.Callee]; ok {
						used[inst.Callee] = true
					}
				}
			}
		}
	}
	return used
}

// Render produces the Koopa IR text for p, in the surface spec §6 fixes:
// library decls, then globals, then function definitions, each group
// blank-line separated.
func Render(p *Program) string {
	var b strings.Builder
	used := usedLibraryFuncs(p)
	wroteDecl := false
	for _, name := range libraryOrder {
		if !used[name] {
			continue
		}
		sig := libraryFuncs[name]
		params := make([]string, len(sig.params))
		for i, t := range sig.params {
			params[i] = t.String()
		}
		ret := ""
		if sig.ret != nil {
			ret = ": " + sig.ret.String()
		}
		fmt.Fprintf(&b, "decl @%s(%s)%s\n", name, strings.Join(params, ", "), ret)
		wroteDecl = true
	}
	if wroteDecl {
		b.WriteByte('\n')
	}
	for _, g := range p.Globals {
		renderGlobal(&b, g)
	}
	if len(p.Globals) > 0 {
		b.WriteByte('\n')
	}
	for i, fn := range p.Funcs {
		renderFunc(&b, fn)
		if i != len(p.Funcs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderGlobal(b *strings.Builder, g *Value) {
	fmt.Fprintf(b, "global %s = alloc %s, %s\n", g.Name, g.AllocType, renderInit(g.Init))
}

func renderInit(init Init) string {
	if init == nil {
		return "zeroinit"
	}
	switch n := init.(type) {
	case IntInit:
		return strconv.FormatInt(int64(n.Val), 10)
	case ListInit:
		parts := make([]string, len(n.Items))
		for i, it := range n.Items {
			parts[i] = renderInit(it)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	diag.Bug("unhandled init kind %T", init)
	panic("unreachable")
}

func renderFunc(b *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Typ)
	}
	ret := ""
	if fn.Ret != nil {
		ret = ": " + fn.Ret.String()
	}
	fmt.Fprintf(b, "fun @%s(%s)%s {\n", fn.Name, strings.Join(params, ", "), ret)
	for _, bb := range fn.Blocks {
		fmt.Fprintf(b, "%%%s:\n", bb.Label)
		for _, inst := range bb.Insts {
			b.WriteString("  ")
			b.WriteString(renderInst(inst))
			b.WriteByte('\n')
		}
	}
	b.WriteString("}\n")
}

func renderInst(v *Value) string {
	switch v.Kind {
	case KAlloc:
		return fmt.Sprintf("%s = alloc %s", v.Name, v.AllocType)
	case KIntConst:
		return fmt.Sprintf("%s = add 0, %d", v.Ref(), v.IntVal)
	case KLoad:
		return fmt.Sprintf("%s = load %s", v.Ref(), v.Src.Ref())
	case KStore:
		if v.HasStoreImm {
			return fmt.Sprintf("store %d, %s", v.StoreImm, v.Dst.Ref())
		}
		return fmt.Sprintf("store %s, %s", v.StoreSrc.Ref(), v.Dst.Ref())
	case KBinary:
		return fmt.Sprintf("%s = %s %s, %s", v.Ref(), v.Op, v.LHS.Ref(), v.RHS.Ref())
	case KGetElemPtr:
		return fmt.Sprintf("%s = getelemptr %s, %s", v.Ref(), v.Src.Ref(), indexOperand(v))
	case KGetPtr:
		return fmt.Sprintf("%s = getptr %s, %s", v.Ref(), v.Src.Ref(), indexOperand(v))
	case KBranch:
		return fmt.Sprintf("br %s, %%%s, %%%s", v.Cond.Ref(), v.TrueLbl, v.FalseLbl)
	case KJump:
		return fmt.Sprintf("jump %%%s", v.Label)
	case KRet:
		if v.HasRetVal {
			return fmt.Sprintf("ret %s", v.RetVal.Ref())
		}
		return "ret"
	case KCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = a.Ref()
		}
		if v.VoidCall {
			return fmt.Sprintf("call @%s(%s)", v.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s = call @%s(%s)", v.Ref(), v.Callee, strings.Join(args, ", "))
	}
	diag.Bug("unhandled instruction kind %d", v.Kind)
	panic("unreachable")
}

func indexOperand(v *Value) string {
	if v.Index != nil {
		return v.Index.Ref()
	}
	return strconv.FormatInt(int64(v.IndexImm), 10)
}
