// Copyright © 2024 The ELPS authors

// Package ir defines the lowered instruction tree handed from semantic
// analysis to code generation.  Storage is addressed by symbol path rather
// than by lexical name, so a consumer never has to resolve names again.
package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/zxc/types"
)

// Instr is a lowered statement.
type Instr interface {
	fmt.Stringer
	isInstr()
}

// Value is a lowered expression.
type Value interface {
	fmt.Stringer
	Type() types.Type
	isValue()
}

// Alloca reserves storage for the local addressed by Path.
type Alloca struct {
	Path string
	Typ  types.Type
}

// Store writes Value to the storage addressed by Path.
type Store struct {
	Path  string
	Value Value
}

// Eval evaluates a value for its effect.  The value of the last Eval in a
// function body is the function's implicit result.
type Eval struct {
	Value Value
}

// Ret returns from the enclosing function.  Value is nil for a bare return.
type Ret struct {
	Value Value
}

// Block is a nested lexical block.  Name is the block's path.
type Block struct {
	Name string
	Code []Instr
}

// If executes Then when Cond is true and Else otherwise.
type If struct {
	Cond Value
	Then []Instr
	Else []Instr
}

// Loop executes Body and then Post while Cond is true.
type Loop struct {
	Cond Value
	Body []Instr
	Post []Instr
}

// Load reads the storage addressed by Path.
type Load struct {
	Path string
	Typ  types.Type
}

// Call invokes the function addressed by Path.  Recv is the receiver of a
// method call and nil otherwise.
type Call struct {
	Path string
	Ret  types.Type
	Args []Value
	Recv Value
}

// Member reads the field at Index of Base, an instance of Class.
type Member struct {
	Base  Value
	Class string
	Field string
	Index int
	Typ   types.Type
}

// New allocates a zeroed instance of the class addressed by Class.
type New struct {
	Class string
	Typ   types.Type
}

// Const is a literal.  Text holds the decoded literal text.
type Const struct {
	Typ  types.Type
	Text string
}

// Param is the function parameter at Index.
type Param struct {
	Index int
	Typ   types.Type
}

// BinOp applies a binary operator.  Typ is the result type.
type BinOp struct {
	Op  string
	X   Value
	Y   Value
	Typ types.Type
}

// UnOp applies a unary operator.
type UnOp struct {
	Op  string
	X   Value
	Typ types.Type
}

func (*Alloca) isInstr() {}
func (*Store) isInstr()  {}
func (*Eval) isInstr()   {}
func (*Ret) isInstr()    {}
func (*Block) isInstr()  {}
func (*If) isInstr()     {}
func (*Loop) isInstr()   {}

func (*Load) isValue()   {}
func (*Call) isValue()   {}
func (*Member) isValue() {}
func (*New) isValue()    {}
func (*Const) isValue()  {}
func (*Param) isValue()  {}
func (*BinOp) isValue()  {}
func (*UnOp) isValue()   {}

func (v *Load) Type() types.Type   { return v.Typ }
func (v *Call) Type() types.Type   { return v.Ret }
func (v *Member) Type() types.Type { return v.Typ }
func (v *New) Type() types.Type    { return v.Typ }
func (v *Const) Type() types.Type  { return v.Typ }
func (v *Param) Type() types.Type  { return v.Typ }
func (v *BinOp) Type() types.Type  { return v.Typ }
func (v *UnOp) Type() types.Type   { return v.Typ }

func (i *Alloca) String() string { return fmt.Sprintf("alloca %s %s", i.Path, i.Typ) }
func (i *Store) String() string  { return fmt.Sprintf("store %s %s", i.Path, i.Value) }
func (i *Eval) String() string   { return fmt.Sprintf("eval %s", i.Value) }
func (i *Ret) String() string {
	if i.Value == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", i.Value)
}
func (i *Block) String() string { return fmt.Sprintf("block %s", i.Name) }
func (i *If) String() string    { return fmt.Sprintf("if %s", i.Cond) }
func (i *Loop) String() string  { return fmt.Sprintf("loop %s", i.Cond) }

func (v *Load) String() string { return fmt.Sprintf("(load %s)", v.Path) }
func (v *Call) String() string {
	var b strings.Builder
	b.WriteString("(call ")
	b.WriteString(v.Path)
	if v.Recv != nil {
		b.WriteString(" recv=")
		b.WriteString(v.Recv.String())
	}
	for _, arg := range v.Args {
		b.WriteString(" ")
		b.WriteString(arg.String())
	}
	b.WriteString(")")
	return b.String()
}
func (v *Member) String() string {
	return fmt.Sprintf("(member %s %s.%s)", v.Base, v.Class, v.Field)
}
func (v *New) String() string { return fmt.Sprintf("(new %s)", v.Class) }
func (v *Const) String() string {
	switch v.Typ.(type) {
	case types.String, types.Char:
		return fmt.Sprintf("%s %s", v.Typ, strconv.Quote(v.Text))
	}
	return fmt.Sprintf("%s %s", v.Typ, v.Text)
}
func (v *Param) String() string { return fmt.Sprintf("(param %d)", v.Index) }
func (v *BinOp) String() string { return fmt.Sprintf("(%s %s %s)", v.Op, v.X, v.Y) }
func (v *UnOp) String() string  { return fmt.Sprintf("(%s %s)", v.Op, v.X) }
