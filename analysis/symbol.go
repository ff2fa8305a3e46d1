// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"
	"strings"

	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

// Symbol is a declared entity.  Path is the fully qualified, dollar-separated
// name of the symbol and is unique within its declaring table.  Uses counts
// the successful name resolutions that ended at the symbol.
type Symbol struct {
	Name string
	Path string
	Span token.Span
	Uses int
	Kind Kind
}

// Kind describes what a symbol declares.  It is one of *Variable, *Function,
// *Class or *Block.
type Kind interface {
	kindName() string
}

// Variable is a typed storage location.  Value is the lowered initializer,
// or the parameter value for function parameters, and may be nil.
type Variable struct {
	Type  types.Type
	Value ir.Value
	// Field is the index of a class member variable among its class's fields
	// and -1 for other variables.
	Field int
}

// Function is a callable.  Params are visible only inside Body.
type Function struct {
	Params     []*Symbol
	ParamScope *Scopes
	Return     types.Type
	ReturnSpan token.Span
	Body       *Symbol // Kind is *Block; nil for builtins
	Children   *Scopes // locals declared directly in Body
	// Entry spills parameters into addressable storage before Body runs.
	Entry []ir.Instr
	// Class is the class declaring the function when it is a method.
	Class   *Symbol
	Builtin bool
}

// Class is a user type.  Members is built once, when the class is declared.
type Class struct {
	Members *Scopes
	Fields  []*Symbol
}

// Block is a lexical block.  Ret and RetSpan describe the last statement in
// the block that produced a value, defaulting to Void at the closing brace.
type Block struct {
	Children *Scopes
	Blocks   []*Symbol
	Ret      types.Type
	RetSpan  token.Span
	Code     []ir.Instr
}

func (*Variable) kindName() string { return "variable" }
func (*Function) kindName() string { return "function" }
func (*Class) kindName() string    { return "class" }
func (*Block) kindName() string    { return "block" }

// KindName returns "variable", "function", "class" or "block".
func (s *Symbol) KindName() string {
	if s.Kind == nil {
		return "unknown"
	}
	return s.Kind.kindName()
}

// Type returns the type a reference to s produces: a variable's type, a
// function's return type, a class's named type or a block's result type.
func (s *Symbol) Type() types.Type {
	switch k := s.Kind.(type) {
	case *Variable:
		return k.Type
	case *Function:
		return k.Return
	case *Class:
		return types.Named{Name: s.Name}
	case *Block:
		return k.Ret
	}
	return nil
}

// Signature renders s the way it would be declared in source.
func (s *Symbol) Signature() string {
	switch k := s.Kind.(type) {
	case *Variable:
		return fmt.Sprintf("var %s: %s", s.Name, k.Type)
	case *Function:
		params := make([]string, len(k.Params))
		for i, p := range k.Params {
			params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type())
		}
		return fmt.Sprintf("fn %s(%s): %s", s.Name, strings.Join(params, ", "), k.Return)
	case *Class:
		return fmt.Sprintf("class %s", s.Name)
	case *Block:
		return fmt.Sprintf("block %s", s.Path)
	}
	return s.Name
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s (%s)", s.KindName(), s.Path, s.Type())
}
