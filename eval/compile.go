package eval

import (
	"strconv"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/sexp"
)

type valType byte

const (
	typeI32 valType = 0x7F
	typeI64 valType = 0x7E
	typeF32 valType = 0x7D
	typeF64 valType = 0x7C
)

func valTypeOf(name string) (valType, bool) {
	switch name {
	case "i32":
		return typeI32, true
	case "i64":
		return typeI64, true
	case "f32":
		return typeF32, true
	case "f64":
		return typeF64, true
	}
	return 0, false
}

const (
	sectionType   byte = 1
	sectionFunc   byte = 3
	sectionGlobal byte = 6
	sectionExport byte = 7
	sectionCode   byte = 10

	opGlobalGet byte = 0x23
	opI32Const  byte = 0x41
	opI64Const  byte = 0x42
	opF32Const  byte = 0x43
	opF64Const  byte = 0x44
	opEnd       byte = 0x0B

	funcTypeMarker byte = 0x60
	exportKindFunc byte = 0x00
)

type compiler struct {
	globalIdx   map[string]uint32
	globalCount uint32
}

type compiledGlobal struct {
	typ     valType
	mutable bool
	init    []byte
}

// compileModule emits a wasm binary whose "main" export evaluates expr and
// returns result. The prelude globals are compiled in so the expression
// can global.get them.
func compileModule(result valType, expr *sexp.Node, globals []*sexp.Node) ([]byte, error) {
	c := &compiler{globalIdx: make(map[string]uint32)}

	compiled := make([]compiledGlobal, 0, len(globals))
	for _, g := range globals {
		cg, name, err := c.compileGlobal(g)
		if err != nil {
			return nil, err
		}
		if name != "" {
			c.globalIdx[name] = c.globalCount
		}
		c.globalCount++
		compiled = append(compiled, cg)
	}

	body := &buffer{}
	if err := c.compileExpr(expr, body); err != nil {
		return nil, err
	}
	body.appendByte(opEnd)

	out := &buffer{}
	out.writeBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	sec := &buffer{}
	sec.writeU32(1) // one type: () -> (result)
	sec.appendByte(funcTypeMarker)
	sec.writeU32(0)
	sec.writeU32(1)
	sec.appendByte(byte(result))
	out.writeSection(sectionType, sec)

	sec = &buffer{}
	sec.writeU32(1)
	sec.writeU32(0) // main uses type 0
	out.writeSection(sectionFunc, sec)

	if len(compiled) > 0 {
		sec = &buffer{}
		sec.writeU32(uint32(len(compiled)))
		for _, g := range compiled {
			sec.appendByte(byte(g.typ))
			if g.mutable {
				sec.appendByte(0x01)
			} else {
				sec.appendByte(0x00)
			}
			sec.writeBytes(g.init)
			sec.appendByte(opEnd)
		}
		out.writeSection(sectionGlobal, sec)
	}

	sec = &buffer{}
	sec.writeU32(1)
	sec.writeName("main")
	sec.appendByte(exportKindFunc)
	sec.writeU32(0)
	out.writeSection(sectionExport, sec)

	sec = &buffer{}
	sec.writeU32(1)
	code := &buffer{}
	code.writeU32(0) // no locals
	code.writeBytes(body.bytes)
	sec.writeU32(uint32(len(code.bytes)))
	sec.writeBytes(code.bytes)
	out.writeSection(sectionCode, sec)

	return out.bytes, nil
}

// compileGlobal handles (global $name? <type>|(mut <type>) (<init>)).
func (c *compiler) compileGlobal(form *sexp.Node) (compiledGlobal, string, error) {
	var cg compiledGlobal
	name := ""

	args := form.Args()
	if len(args) > 0 && args[0].IsAtom() && strings.HasPrefix(args[0].Text, "$") {
		name = args[0].Text
		args = args[1:]
	}
	if len(args) < 2 {
		return cg, "", errors.InvalidForm(errors.PhaseEval, "global %s has no initializer", name)
	}

	switch {
	case args[0].IsAtom():
		vt, ok := valTypeOf(args[0].Text)
		if !ok {
			return cg, "", errors.InvalidForm(errors.PhaseEval, "unknown global type %q", args[0].Text)
		}
		cg.typ = vt
	case args[0].HasTag("mut"):
		inner := args[0].Atoms()
		if len(inner) != 1 {
			return cg, "", errors.InvalidForm(errors.PhaseEval, "malformed (mut ...) type")
		}
		vt, ok := valTypeOf(inner[0])
		if !ok {
			return cg, "", errors.InvalidForm(errors.PhaseEval, "unknown global type %q", inner[0])
		}
		cg.typ = vt
		cg.mutable = true
	default:
		return cg, "", errors.InvalidForm(errors.PhaseEval, "global %s has no type", name)
	}

	init := &buffer{}
	if err := c.compileExpr(args[1], init); err != nil {
		return cg, "", err
	}
	cg.init = init.bytes
	return cg, name, nil
}

// compileExpr emits the folded expression tree: operand sub-expressions
// first, then the operator itself.
func (c *compiler) compileExpr(n *sexp.Node, code *buffer) error {
	if !n.IsList() {
		return errors.InvalidForm(errors.PhaseEval, "expected an expression, got atom %q", n.Text)
	}
	tag := n.Tag()

	switch tag {
	case "i32.const", "i64.const", "f32.const", "f64.const":
		return c.compileConst(n, code)
	case "global.get":
		atoms := n.Atoms()
		if len(atoms) != 1 {
			return errors.InvalidForm(errors.PhaseEval, "global.get needs one operand")
		}
		idx, err := c.resolveGlobal(atoms[0])
		if err != nil {
			return err
		}
		code.appendByte(opGlobalGet)
		code.writeU32(idx)
		return nil
	}

	op, ok := opTable[tag]
	if !ok {
		return errors.InvalidForm(errors.PhaseEval, "instruction %q is not constant-foldable", tag)
	}
	for _, operand := range n.Forms() {
		if err := c.compileExpr(operand, code); err != nil {
			return err
		}
	}
	code.appendByte(op)
	return nil
}

func (c *compiler) compileConst(n *sexp.Node, code *buffer) error {
	atoms := n.Atoms()
	if len(atoms) != 1 {
		return errors.InvalidForm(errors.PhaseEval, "%s needs exactly one literal", n.Tag())
	}
	lit := strings.ReplaceAll(atoms[0], "_", "")

	switch n.Tag() {
	case "i32.const":
		v, err := parseInt(lit, 32)
		if err != nil {
			return errors.InvalidLiteral(errors.PhaseEval, atoms[0])
		}
		code.appendByte(opI32Const)
		code.writeI32(int32(v))
	case "i64.const":
		v, err := parseInt(lit, 64)
		if err != nil {
			return errors.InvalidLiteral(errors.PhaseEval, atoms[0])
		}
		code.appendByte(opI64Const)
		code.writeI64(v)
	case "f32.const":
		v, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			return errors.InvalidLiteral(errors.PhaseEval, atoms[0])
		}
		code.appendByte(opF32Const)
		code.writeF32(float32(v))
	case "f64.const":
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return errors.InvalidLiteral(errors.PhaseEval, atoms[0])
		}
		code.appendByte(opF64Const)
		code.writeF64(v)
	}
	return nil
}

// parseInt accepts the wat integer spellings: decimal, hex, optionally
// signed, including unsigned values above the signed maximum.
func parseInt(s string, bits int) (int64, error) {
	if v, err := strconv.ParseInt(s, 0, bits); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, err
	}
	if bits == 32 {
		return int64(int32(uint32(u))), nil
	}
	return int64(u), nil
}

func (c *compiler) resolveGlobal(ref string) (uint32, error) {
	if strings.HasPrefix(ref, "$") {
		idx, ok := c.globalIdx[ref]
		if !ok {
			return 0, errors.InvalidForm(errors.PhaseEval, "global.get references unknown global %s", ref)
		}
		return idx, nil
	}
	idx, err := strconv.ParseUint(ref, 10, 32)
	if err != nil || uint32(idx) >= c.globalCount {
		return 0, errors.InvalidForm(errors.PhaseEval, "global.get references unknown global %s", ref)
	}
	return uint32(idx), nil
}
