// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

// Error is a failure to check a statement or expression.  The checker turns
// each Error into a diagnostic and moves on to the next statement.
type Error struct {
	Kind    diagnostic.Kind
	Message string
	Span    token.Span
	Related []diagnostic.Label
	Notes   []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// errSkip aborts checking of a construct the parser already reported.
var errSkip = &Error{Kind: diagnostic.SyntaxError, Message: "invalid syntax"}

func errorf(kind diagnostic.Kind, span token.Span, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, v...), Span: span}
}

func mismatch(span token.Span, want, got types.Type) *Error {
	return &Error{
		Kind:    diagnostic.TypeError,
		Message: "mismatched types",
		Span:    span,
		Notes:   []string{fmt.Sprintf("expected `%s`, found `%s`", want, got)},
	}
}

func undefined(span token.Span, name string) *Error {
	return errorf(diagnostic.NameError, span, "NameError: name '%s' is not defined", name)
}

func redeclared(span token.Span, name string, prev *Symbol) *Error {
	err := errorf(diagnostic.NameError, span, "name '%s' is already defined", name)
	err.Notes = append(err.Notes, fmt.Sprintf("previous declaration of '%s' is the %s %s", name, prev.KindName(), prev.Path))
	if !IsBuiltin(prev.Path) {
		err.Related = append(err.Related, diagnostic.Label{Span: prev.Span, Text: "previous declaration"})
	}
	return err
}

// misused reports a symbol of the wrong kind, e.g. "'f' is Function not a
// variable".
func misused(span token.Span, sym *Symbol, want string) *Error {
	return errorf(diagnostic.TypeError, span, "'%s' is %s not a %s", sym.Name, kindTitle(sym), want)
}

func kindTitle(sym *Symbol) string {
	switch sym.Kind.(type) {
	case *Variable:
		return "Variable"
	case *Function:
		return "Function"
	case *Class:
		return "Class"
	case *Block:
		return "Block"
	}
	return "Unknown"
}
