// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads Koopa IR text back into a Program. It is deliberately only
// as capable as Render's own output needs it to be (spec §1 treats the
// Koopa text parser as an external library's job; this is the first-party
// stand-in, see the package doc comment) — it is exercised by the round
// trip property (spec §8 P8). The RISC-V backend does not go through
// Parse: cmd/sysyc hands it the *Program that Emit returns.
//
// Library decl lines are recognized and discarded: they are never stored
// on Program, since Render recomputes them deterministically from which
// runtime routines a program actually calls.
func Parse(src string) (*Program, error) {
	toks := tokenize(src)
	p := &rparser{toks: toks, globals: map[string]*Value{}}
	prog := &Program{}
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if pe, ok := r.(parseError); ok {
					err = fmt.Errorf("koopa: %s", string(pe))
					return
				}
				panic(r)
			}
		}()
		for p.peek() != "" {
			switch p.peek() {
			case "decl":
				p.skipDecl()
			case "global":
				prog.Globals = append(prog.Globals, p.parseGlobal())
			case "fun":
				prog.Funcs = append(prog.Funcs, p.parseFunc())
			default:
				p.fail("unexpected token %q at top level", p.peek())
			}
		}
	}()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

type parseError string

type rparser struct {
	toks    []string
	pos     int
	globals map[string]*Value
	locals  map[string]*Value
}

func (p *rparser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *rparser) peekAt(off int) string {
	i := p.pos + off
	if i >= len(p.toks) {
		return ""
	}
	return p.toks[i]
}

func (p *rparser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *rparser) expect(tok string) {
	got := p.next()
	if got != tok {
		p.fail("expected %q, got %q", tok, got)
	}
}

func (p *rparser) fail(format string, args ...any) {
	panic(parseError(fmt.Sprintf(format, args...)))
}

func (p *rparser) expectInt() int {
	tok := p.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		p.fail("expected integer, got %q", tok)
	}
	return n
}

// tokenize splits Koopa text into words and single-character punctuation,
// which is enough to parse the regular grammar Render produces: "(){}[]:,=*"
// are always standalone tokens; everything else runs together (this is
// what lets an identifier keep its leading "@" or "%").
func tokenize(src string) []string {
	const punct = "(){}[]:,=*"
	isBreak := func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r' || strings.IndexByte(punct, c) >= 0
	}
	var toks []string
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		if strings.IndexByte(punct, c) >= 0 {
			toks = append(toks, string(c))
			i++
			continue
		}
		j := i
		for j < n && !isBreak(src[j]) {
			j++
		}
		toks = append(toks, src[i:j])
		i = j
	}
	return toks
}

func (p *rparser) parseType() Type {
	tok := p.next()
	switch tok {
	case "i32":
		return IntType{}
	case "unit":
		return UnitType{}
	case "*":
		return PointerType{Elem: p.parseType()}
	case "[":
		elem := p.parseType()
		p.expect(",")
		ln := p.expectInt()
		p.expect("]")
		return ArrayType{Elem: elem, Len: ln}
	}
	p.fail("expected a type, got %q", tok)
	panic("unreachable")
}

func (p *rparser) skipDecl() {
	p.expect("decl")
	p.next() // @name
	p.expect("(")
	for p.peek() != ")" {
		p.parseType()
		if p.peek() == "," {
			p.next()
		}
	}
	p.expect(")")
	if p.peek() == ":" {
		p.next()
		p.parseType()
	}
}

func (p *rparser) parseGlobal() *Value {
	p.expect("global")
	name := p.next()
	p.expect("=")
	p.expect("alloc")
	ty := p.parseType()
	p.expect(",")
	init := p.parseInit()
	gv := &Value{Kind: KGlobalAlloc, Name: name, AllocType: ty, Typ: PointerType{Elem: ty}, Init: init}
	p.globals[name] = gv
	return gv
}

func (p *rparser) parseInit() Init {
	if p.peek() == "zeroinit" {
		p.next()
		return nil
	}
	if p.peek() == "{" {
		p.next()
		var items []Init
		for p.peek() != "}" {
			items = append(items, p.parseInit())
			if p.peek() == "," {
				p.next()
			}
		}
		p.expect("}")
		return ListInit{Items: items}
	}
	n := p.expectInt()
	return IntInit{Val: int32(n)}
}

func (p *rparser) parseFunc() *Function {
	p.expect("fun")
	name := strings.TrimPrefix(p.next(), "@")
	p.expect("(")
	fn := &Function{Name: name}
	p.locals = map[string]*Value{}
	for p.peek() != ")" {
		pname := p.next()
		p.expect(":")
		pty := p.parseType()
		pv := &Value{Kind: KParam, Name: pname, Typ: pty}
		fn.Params = append(fn.Params, pv)
		p.locals[pname] = pv
		if p.peek() == "," {
			p.next()
		}
	}
	p.expect(")")
	if p.peek() == ":" {
		p.next()
		fn.Ret = p.parseType()
	}
	p.expect("{")
	for p.peek() != "}" {
		label := strings.TrimPrefix(p.next(), "%")
		p.expect(":")
		bb := &BasicBlock{Label: label}
		fn.Blocks = append(fn.Blocks, bb)
		for p.peek() != "}" && !p.atLabel() {
			bb.Insts = append(bb.Insts, p.parseInst())
		}
	}
	p.expect("}")
	return fn
}

// atLabel reports whether the parser is positioned at a block label
// ("%name:"), as opposed to an instruction whose LHS happens to be a
// "%name" SSA temp (which is followed by "=", not ":").
func (p *rparser) atLabel() bool {
	return strings.HasPrefix(p.peek(), "%") && p.peekAt(1) == ":"
}

func (p *rparser) resolve(tok string) *Value {
	if v, ok := p.locals[tok]; ok {
		return v
	}
	if v, ok := p.globals[tok]; ok {
		return v
	}
	p.fail("reference to undefined value %q", tok)
	panic("unreachable")
}

// operand parses a value operand that may be a bare integer literal
// (store's immediate form, a getelemptr constant index) or a
// reference to an earlier value.
func (p *rparser) operand() (ref *Value, imm int32, isImm bool) {
	tok := p.peek()
	if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
		p.next()
		return nil, int32(n), true
	}
	p.next()
	return p.resolve(tok), 0, false
}

func (p *rparser) parseInst() *Value {
	// "@name = alloc T" is the only LHS form starting with "@".
	if strings.HasPrefix(p.peek(), "@") {
		return p.parseAlloc()
	}
	if strings.HasPrefix(p.peek(), "%") && p.peekAt(1) == "=" {
		return p.parseAssign()
	}
	switch p.peek() {
	case "store":
		return p.parseStore()
	case "br":
		return p.parseBranch()
	case "jump":
		return p.parseJump()
	case "ret":
		return p.parseRet()
	case "call":
		return p.parseCall()
	}
	p.fail("unrecognized instruction at %q", p.peek())
	panic("unreachable")
}

func (p *rparser) parseAlloc() *Value {
	name := p.next()
	p.expect("=")
	p.expect("alloc")
	ty := p.parseType()
	v := &Value{Kind: KAlloc, Name: name, AllocType: ty, Typ: PointerType{Elem: ty}}
	p.locals[name] = v
	return v
}

func (p *rparser) parseAssign() *Value {
	lhs := p.next()
	p.expect("=")
	op := p.next()
	switch op {
	case "add":
		o1, i1, isImm1 := p.operand()
		p.expect(",")
		o2, i2, isImm2 := p.operand()
		if isImm1 && i1 == 0 && isImm2 {
			// Our own emitter's literal-materialization idiom (spec §4.3):
			// "%k = add 0, N" always denotes an IntConst, never a real add.
			v := &Value{Kind: KIntConst, Typ: IntType{}, IntVal: i2}
			p.bindTemp(lhs, v)
			return v
		}
		return p.finishBinary(lhs, "add", o1, i1, isImm1, o2, i2, isImm2)
	case "sub", "mul", "div", "mod", "lt", "gt", "le", "ge", "eq", "ne", "and", "or":
		o1, i1, isImm1 := p.operand()
		p.expect(",")
		o2, i2, isImm2 := p.operand()
		return p.finishBinary(lhs, op, o1, i1, isImm1, o2, i2, isImm2)
	case "load":
		src := p.resolveOperandRef()
		v := &Value{Kind: KLoad, Typ: elemTypeOfPointer(src.Typ), Src: src}
		p.bindTemp(lhs, v)
		return v
	case "getelemptr":
		src := p.resolveOperandRef()
		p.expect(",")
		ref, imm, isImm := p.operand()
		v := &Value{Kind: KGetElemPtr, Typ: gepResultType(src.Typ), Src: src}
		if isImm {
			v.HasIndexImm, v.IndexImm = true, imm
		} else {
			v.Index = ref
		}
		p.bindTemp(lhs, v)
		return v
	case "getptr":
		src := p.resolveOperandRef()
		p.expect(",")
		idx := p.resolveOperandRef()
		v := &Value{Kind: KGetPtr, Typ: src.Typ, Src: src, Index: idx}
		p.bindTemp(lhs, v)
		return v
	case "call":
		return p.parseCallAssign(lhs)
	}
	p.fail("unrecognized assignment opcode %q", op)
	panic("unreachable")
}

// resolveOperandRef requires a reference operand (not a literal); every
// load/getelemptr/getptr source in our own emitted text is one.
func (p *rparser) resolveOperandRef() *Value {
	tok := p.next()
	return p.resolve(tok)
}

func (p *rparser) finishBinary(lhs, op string, o1 *Value, i1 int32, isImm1 bool, o2 *Value, i2 int32, isImm2 bool) *Value {
	// Our own emitter never produces a literal LHS/RHS for a genuine binary
	// op (spec §4.3 routes every literal through a materialized IntConst
	// first); resolve each side to that materialized value's slot instead.
	if isImm1 || isImm2 {
		p.fail("binary operator %q with a bare literal operand is not supported by this reader", op)
	}
	v := &Value{Kind: KBinary, Typ: IntType{}, Op: op, LHS: o1, RHS: o2}
	p.bindTemp(lhs, v)
	return v
}

func (p *rparser) bindTemp(name string, v *Value) {
	id, err := strconv.Atoi(strings.TrimPrefix(name, "%"))
	if err != nil {
		p.fail("malformed temp name %q", name)
	}
	v.ID = id
	p.locals[name] = v
}

func (p *rparser) parseStore() *Value {
	p.expect("store")
	ref, imm, isImm := p.operand()
	p.expect(",")
	dst := p.resolveOperandRef()
	v := &Value{Kind: KStore, Dst: dst}
	if isImm {
		v.HasStoreImm, v.StoreImm = true, imm
	} else {
		v.StoreSrc = ref
	}
	return v
}

func (p *rparser) parseBranch() *Value {
	p.expect("br")
	cond := p.resolveOperandRef()
	p.expect(",")
	t := strings.TrimPrefix(p.next(), "%")
	p.expect(",")
	f := strings.TrimPrefix(p.next(), "%")
	return &Value{Kind: KBranch, Cond: cond, TrueLbl: t, FalseLbl: f}
}

func (p *rparser) parseJump() *Value {
	p.expect("jump")
	lbl := strings.TrimPrefix(p.next(), "%")
	return &Value{Kind: KJump, Label: lbl}
}

func (p *rparser) parseRet() *Value {
	p.expect("ret")
	if p.atRetValue() {
		v := p.resolveOperandRef()
		return &Value{Kind: KRet, HasRetVal: true, RetVal: v}
	}
	return &Value{Kind: KRet}
}

// atRetValue reports whether a value token follows "ret" on the same
// instruction, as opposed to the bare "ret" form. The tokenizer keeps one
// instruction per source line in Render's output, but since tokens carry
// no line info here, we rely on the next token being a %/@ reference (the
// only thing that can follow "ret") versus a structural token ("%label:"
// at end of block, or "}" closing the function).
func (p *rparser) atRetValue() bool {
	t := p.peek()
	return strings.HasPrefix(t, "%") && p.peekAt(1) != ":" || strings.HasPrefix(t, "@")
}

func (p *rparser) parseCall() *Value {
	p.expect("call")
	return p.finishCall("", true)
}

func (p *rparser) parseCallAssign(lhs string) *Value {
	return p.finishCall(lhs, false)
}

func (p *rparser) finishCall(lhs string, voidCall bool) *Value {
	callee := strings.TrimPrefix(p.next(), "@")
	p.expect("(")
	var args []*Value
	for p.peek() != ")" {
		args = append(args, p.resolveOperandRef())
		if p.peek() == "," {
			p.next()
		}
	}
	p.expect(")")
	v := &Value{Kind: KCall, Callee: callee, Args: args, VoidCall: voidCall}
	if voidCall {
		v.Typ = UnitType{}
	} else {
		v.Typ = IntType{}
		p.bindTemp(lhs, v)
	}
	return v
}
