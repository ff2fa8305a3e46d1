// Copyright © 2024 The ELPS authors

package codegen

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/luthersystems/zxc/analysis"
	zxir "github.com/luthersystems/zxc/ir"
	zxtypes "github.com/luthersystems/zxc/types"
)

// frame is the state of code generation for one LLVM function.  All
// storage is reserved in the entry block, which branches to the first
// code block once the function is complete.
type frame struct {
	g     *Generator
	fn    *ir.Func
	owner *function
	ret   zxtypes.Type // nil for constructors

	entry *ir.Block
	body  *ir.Block
	block *ir.Block

	locals map[string]*ir.InstAlloca
	this   value.Value
	last   value.Value // value of the most recent Eval statement
	blocks int
}

func (g *Generator) newFrame(fn *ir.Func, ret zxtypes.Type, owner *function) *frame {
	fr := &frame{
		g:      g,
		fn:     fn,
		owner:  owner,
		ret:    ret,
		locals: make(map[string]*ir.InstAlloca),
	}
	fr.entry = fn.NewBlock("entry")
	fr.body = fn.NewBlock("body")
	fr.block = fr.body
	if owner != nil && owner.this != nil && owner.fn != nil {
		fr.this = fn.Params[0]
	}
	return fr
}

func (fr *frame) newBlock(prefix string) *ir.Block {
	fr.blocks++
	return fr.fn.NewBlock(fmt.Sprintf("%s.%d", prefix, fr.blocks))
}

func (fr *frame) class() *class {
	if fr.owner == nil {
		return nil
	}
	return fr.owner.this
}

// finish terminates the current block and links the entry block.  A
// function that falls off its end returns the value of its last expression
// statement when the type fits and the zero value otherwise.
func (fr *frame) finish() {
	if fr.block.Term == nil {
		switch {
		case fr.ret == nil || zxtypes.IsVoid(fr.ret):
			fr.block.NewRet(nil)
		default:
			want := fr.g.llType(fr.ret)
			result := fr.last
			if result == nil || !result.Type().Equal(want) {
				result = zero(want)
			}
			fr.block.NewRet(result)
		}
	}
	fr.entry.NewBr(fr.body)
}

func (fr *frame) genCode(code []zxir.Instr) error {
	for _, instr := range code {
		if err := fr.genInstr(instr); err != nil {
			return err
		}
	}
	return nil
}

func (fr *frame) genInstr(instr zxir.Instr) error {
	var last value.Value
	switch i := instr.(type) {
	case *zxir.Alloca:
		if _, global := fr.g.globals[i.Path]; global {
			break
		}
		a := fr.entry.NewAlloca(fr.g.llType(i.Typ))
		a.SetName(i.Path)
		fr.locals[i.Path] = a
	case *zxir.Store:
		ptr, elem, err := fr.addr(i.Path)
		if err != nil {
			return err
		}
		v, err := fr.genValueAs(i.Value, elem)
		if err != nil {
			return err
		}
		fr.block.NewStore(v, ptr)
	case *zxir.Eval:
		v, err := fr.genValue(i.Value)
		if err != nil {
			return err
		}
		last = v
	case *zxir.Ret:
		if err := fr.genRet(i); err != nil {
			return err
		}
	case *zxir.Block:
		if err := fr.genCode(i.Code); err != nil {
			return err
		}
	case *zxir.If:
		if err := fr.genIf(i); err != nil {
			return err
		}
	case *zxir.Loop:
		if err := fr.genLoop(i); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported instruction %s", instr)
	}
	fr.last = last
	return nil
}

// genRet returns from the function.  Code following a return lands in a
// fresh block with no predecessors.
func (fr *frame) genRet(i *zxir.Ret) error {
	if fr.ret == nil || zxtypes.IsVoid(fr.ret) {
		if i.Value != nil {
			if _, err := fr.genValue(i.Value); err != nil {
				return err
			}
		}
		fr.block.NewRet(nil)
	} else {
		want := fr.g.llType(fr.ret)
		var v value.Value = zero(want)
		if i.Value != nil {
			var err error
			if v, err = fr.genValueAs(i.Value, want); err != nil {
				return err
			}
		}
		fr.block.NewRet(v)
	}
	fr.block = fr.newBlock("dead")
	return nil
}

func (fr *frame) genIf(i *zxir.If) error {
	cond, err := fr.genValue(i.Cond)
	if err != nil {
		return err
	}
	then := fr.newBlock("if.then")
	end := fr.newBlock("if.end")
	els := end
	if len(i.Else) > 0 {
		els = fr.newBlock("if.else")
	}
	fr.block.NewCondBr(cond, then, els)
	fr.block = then
	if err := fr.genCode(i.Then); err != nil {
		return err
	}
	if fr.block.Term == nil {
		fr.block.NewBr(end)
	}
	if len(i.Else) > 0 {
		fr.block = els
		if err := fr.genCode(i.Else); err != nil {
			return err
		}
		if fr.block.Term == nil {
			fr.block.NewBr(end)
		}
	}
	fr.block = end
	return nil
}

func (fr *frame) genLoop(i *zxir.Loop) error {
	head := fr.newBlock("loop.cond")
	body := fr.newBlock("loop.body")
	end := fr.newBlock("loop.end")
	fr.block.NewBr(head)
	fr.block = head
	cond, err := fr.genValue(i.Cond)
	if err != nil {
		return err
	}
	fr.block.NewCondBr(cond, body, end)
	fr.block = body
	if err := fr.genCode(i.Body); err != nil {
		return err
	}
	if err := fr.genCode(i.Post); err != nil {
		return err
	}
	if fr.block.Term == nil {
		fr.block.NewBr(head)
	}
	fr.block = end
	return nil
}

// addr returns a pointer to the storage addressed by path and the type of
// the stored value.
func (fr *frame) addr(path string) (value.Value, types.Type, error) {
	if a, ok := fr.locals[path]; ok {
		return a, a.ElemType, nil
	}
	if f, ok := fr.g.fields[path]; ok && fr.this != nil && fr.class() == f.class {
		ptr := fr.block.NewGetElementPtr(f.class.st, fr.this, constI32(0), constI32(int64(f.index)))
		return ptr, f.class.st.Fields[f.index], nil
	}
	if gl, ok := fr.g.globals[path]; ok {
		return gl, gl.ContentType, nil
	}
	return nil, nil, fmt.Errorf("%s is not accessible from %s: nested functions cannot capture enclosing locals", path, fr.fn.Name())
}

// genValueAs generates v for a context expecting want.  The null literal
// has no type of its own and takes the zero value of want.
func (fr *frame) genValueAs(v zxir.Value, want types.Type) (value.Value, error) {
	if isNull(v.Type()) {
		return zero(want), nil
	}
	return fr.genValue(v)
}

func isNull(t zxtypes.Type) bool {
	_, ok := t.(zxtypes.Null)
	return ok
}

func (fr *frame) genValue(v zxir.Value) (value.Value, error) {
	switch v := v.(type) {
	case *zxir.Const:
		return fr.g.constant(v)
	case *zxir.Load:
		ptr, elem, err := fr.addr(v.Path)
		if err != nil {
			return nil, err
		}
		return fr.block.NewLoad(elem, ptr), nil
	case *zxir.Param:
		idx := v.Index
		if fr.this != nil && fr.owner != nil && fr.owner.fn != nil {
			idx++
		}
		if idx >= len(fr.fn.Params) {
			return nil, fmt.Errorf("%s has no parameter %d", fr.fn.Name(), v.Index)
		}
		return fr.fn.Params[idx], nil
	case *zxir.Call:
		return fr.genCall(v)
	case *zxir.Member:
		base, err := fr.genValue(v.Base)
		if err != nil {
			return nil, err
		}
		c, ok := fr.g.classes[v.Class]
		if !ok || v.Index < 0 || v.Index >= len(c.st.Fields) {
			return nil, fmt.Errorf("unknown field %s.%s", v.Class, v.Field)
		}
		ptr := fr.block.NewGetElementPtr(c.st, base, constI32(0), constI32(int64(v.Index)))
		return fr.block.NewLoad(c.st.Fields[v.Index], ptr), nil
	case *zxir.New:
		c, ok := fr.g.classes[v.Class]
		if !ok {
			return nil, fmt.Errorf("unknown class %s", v.Class)
		}
		return fr.block.NewCall(c.ctor), nil
	case *zxir.BinOp:
		return fr.genBinOp(v)
	case *zxir.UnOp:
		return fr.genUnOp(v)
	}
	return nil, fmt.Errorf("unsupported value %s", v)
}

func (fr *frame) genCall(call *zxir.Call) (value.Value, error) {
	if name, ok := analysis.BuiltinName(call.Path); ok {
		return fr.genBuiltin(name, call.Args)
	}
	f, ok := fr.g.funcs[call.Path]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", call.Path)
	}
	var args []value.Value
	if f.this != nil {
		recv := fr.this
		if call.Recv != nil {
			var err error
			if recv, err = fr.genValue(call.Recv); err != nil {
				return nil, err
			}
		}
		if recv == nil {
			return nil, fmt.Errorf("method %s called without a receiver", call.Path)
		}
		args = append(args, recv)
	}
	for _, arg := range call.Args {
		want := f.fn.Params[len(args)].Type()
		v, err := fr.genValueAs(arg, want)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return fr.block.NewCall(f.fn, args...), nil
}

func (fr *frame) genBuiltin(name string, argv []zxir.Value) (value.Value, error) {
	if len(argv) != 1 {
		return nil, fmt.Errorf("builtin %s takes one argument", name)
	}
	arg, err := fr.genValue(argv[0])
	if err != nil {
		return nil, err
	}
	var format string
	switch name {
	case "print":
		format = "%s\n"
	case "printInt":
		format = "%lld\n"
	case "printFloat":
		format = "%f\n"
	case "printChar":
		format = "%c\n"
	case "printBool":
		format = "%s\n"
		arg = fr.block.NewSelect(arg, fr.g.stringConst("true"), fr.g.stringConst("false"))
	default:
		return nil, fmt.Errorf("unknown builtin %s", name)
	}
	return fr.block.NewCall(fr.g.rt.printf, fr.g.stringConst(format), arg), nil
}

func (g *Generator) constant(c *zxir.Const) (value.Value, error) {
	switch c.Typ.(type) {
	case zxtypes.Integer:
		n, err := strconv.ParseInt(c.Text, 10, 64)
		if err != nil {
			return nil, err
		}
		return constInt(n), nil
	case zxtypes.Float:
		x, err := strconv.ParseFloat(c.Text, 64)
		if err != nil {
			return nil, err
		}
		return constant.NewFloat(types.Double, x), nil
	case zxtypes.Bool:
		return constant.NewBool(c.Text == "true"), nil
	case zxtypes.Char:
		r := []rune(c.Text)
		if len(r) != 1 {
			return nil, fmt.Errorf("invalid character constant %q", c.Text)
		}
		return constI32(int64(r[0])), nil
	case zxtypes.String:
		return g.stringConst(c.Text), nil
	case zxtypes.Null:
		return constant.NewNull(types.I8Ptr), nil
	}
	return nil, fmt.Errorf("unsupported constant %s", c)
}

// stringConst interns s as a NUL-terminated global and returns a pointer
// to its first byte.
func (g *Generator) stringConst(s string) constant.Constant {
	arr := constant.NewCharArrayFromString(s + "\x00")
	gl := g.mod.NewGlobalDef(fmt.Sprintf(".str.%d", g.strings), arr)
	gl.Immutable = true
	g.strings++
	return constant.NewGetElementPtr(arr.Typ, gl, constInt(0), constInt(0))
}

func (fr *frame) genBinOp(v *zxir.BinOp) (value.Value, error) {
	operand := v.X.Type()
	if isNull(operand) {
		operand = v.Y.Type()
	}
	llType := fr.g.llType(operand)
	x, err := fr.genValueAs(v.X, llType)
	if err != nil {
		return nil, err
	}
	y, err := fr.genValueAs(v.Y, llType)
	if err != nil {
		return nil, err
	}
	b := fr.block
	nullCheck := isNull(v.X.Type()) || isNull(v.Y.Type())
	switch operand.(type) {
	case zxtypes.String:
		switch {
		case v.Op == "+":
			return fr.concat(x, y), nil
		case nullCheck:
			return icmp(b, v.Op, x, y)
		}
		cmp := b.NewCall(fr.g.rt.strcmp, x, y)
		return icmp(b, v.Op, cmp, constI32(0))
	case zxtypes.Float:
		switch v.Op {
		case "+":
			return b.NewFAdd(x, y), nil
		case "-":
			return b.NewFSub(x, y), nil
		case "*":
			return b.NewFMul(x, y), nil
		case "/":
			return b.NewFDiv(x, y), nil
		case "%":
			return b.NewFRem(x, y), nil
		}
		return fcmp(b, v.Op, x, y)
	case zxtypes.Integer, zxtypes.Char:
		switch v.Op {
		case "+":
			return b.NewAdd(x, y), nil
		case "-":
			return b.NewSub(x, y), nil
		case "*":
			return b.NewMul(x, y), nil
		case "/":
			return b.NewSDiv(x, y), nil
		case "%":
			return b.NewSRem(x, y), nil
		}
		return icmp(b, v.Op, x, y)
	case zxtypes.Bool:
		switch v.Op {
		case "&&":
			return b.NewAnd(x, y), nil
		case "||":
			return b.NewOr(x, y), nil
		}
		return icmp(b, v.Op, x, y)
	}
	return icmp(b, v.Op, x, y)
}

var ipreds = map[string]enum.IPred{
	"==": enum.IPredEQ,
	"!=": enum.IPredNE,
	"<":  enum.IPredSLT,
	">":  enum.IPredSGT,
	"<=": enum.IPredSLE,
	">=": enum.IPredSGE,
}

var fpreds = map[string]enum.FPred{
	"==": enum.FPredOEQ,
	"!=": enum.FPredONE,
	"<":  enum.FPredOLT,
	">":  enum.FPredOGT,
	"<=": enum.FPredOLE,
	">=": enum.FPredOGE,
}

func icmp(b *ir.Block, op string, x, y value.Value) (value.Value, error) {
	pred, ok := ipreds[op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %s", op)
	}
	return b.NewICmp(pred, x, y), nil
}

func fcmp(b *ir.Block, op string, x, y value.Value) (value.Value, error) {
	pred, ok := fpreds[op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %s", op)
	}
	return b.NewFCmp(pred, x, y), nil
}

// concat allocates a new string holding x followed by y.
func (fr *frame) concat(x, y value.Value) value.Value {
	b, rt := fr.block, fr.g.rt
	n := b.NewAdd(b.NewAdd(b.NewCall(rt.strlen, x), b.NewCall(rt.strlen, y)), constInt(1))
	buf := b.NewCall(rt.malloc, n)
	b.NewCall(rt.strcpy, buf, x)
	b.NewCall(rt.strcat, buf, y)
	return buf
}

func (fr *frame) genUnOp(v *zxir.UnOp) (value.Value, error) {
	x, err := fr.genValue(v.X)
	if err != nil {
		return nil, err
	}
	switch v.Op {
	case "-":
		if _, isFloat := v.Typ.(zxtypes.Float); isFloat {
			return fr.block.NewFNeg(x), nil
		}
		return fr.block.NewSub(constInt(0), x), nil
	case "!":
		return fr.block.NewXor(x, constant.True), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", v.Op)
}
