// Copyright © 2024 The ELPS authors

// Package types defines the closed set of zx value types.
//
// Primitive types carry a nullable flag that takes part in equality.  Named
// types refer to a user class by identifier.  There is no implicit
// conversion between types except that the null literal is accepted where a
// nullable type is expected.
package types

// Type is a zx type.  The set of implementations is closed.
type Type interface {
	// String returns the type as written in source, with a trailing ? for
	// nullable types.
	String() string
	// Key returns the bare identifier of the type, used to resolve a Named
	// type back to its class declaration.
	Key() string
	// Nullable reports whether the type admits null.
	Nullable() bool
	isType()
}

type (
	// String is the Str type.
	String struct{ Null bool }
	// Integer is the Int type.
	Integer struct{ Null bool }
	// Char is the Char type.
	Char struct{ Null bool }
	// Float is the Float type.
	Float struct{ Null bool }
	// Bool is the Bool type.
	Bool struct{ Null bool }
	// Named is a user class type.
	Named struct {
		Name string
		Null bool
	}
	// Void is the type of statements and of functions without a result.
	Void struct{}
	// Null is the type of the null literal.
	Null struct{}
)

// Keywords naming the builtin types.
const (
	KeywordString  = "Str"
	KeywordInteger = "Int"
	KeywordChar    = "Char"
	KeywordFloat   = "Float"
	KeywordBool    = "Bool"
	KeywordVoid    = "Void"
)

func (t String) Key() string  { return KeywordString }
func (t Integer) Key() string { return KeywordInteger }
func (t Char) Key() string    { return KeywordChar }
func (t Float) Key() string   { return KeywordFloat }
func (t Bool) Key() string    { return KeywordBool }
func (t Named) Key() string   { return t.Name }
func (Void) Key() string      { return KeywordVoid }
func (Null) Key() string      { return "null" }

func (t String) String() string  { return display(t) }
func (t Integer) String() string { return display(t) }
func (t Char) String() string    { return display(t) }
func (t Float) String() string   { return display(t) }
func (t Bool) String() string    { return display(t) }
func (t Named) String() string   { return display(t) }
func (Void) String() string      { return KeywordVoid }
func (Null) String() string      { return "null" }

func (t String) Nullable() bool  { return t.Null }
func (t Integer) Nullable() bool { return t.Null }
func (t Char) Nullable() bool    { return t.Null }
func (t Float) Nullable() bool   { return t.Null }
func (t Bool) Nullable() bool    { return t.Null }
func (t Named) Nullable() bool   { return t.Null }
func (Void) Nullable() bool      { return false }
func (Null) Nullable() bool      { return true }

func (String) isType()  {}
func (Integer) isType() {}
func (Char) isType()    {}
func (Float) isType()   {}
func (Bool) isType()    {}
func (Named) isType()   {}
func (Void) isType()    {}
func (Null) isType()    {}

func display(t Type) string {
	if t.Nullable() {
		return t.Key() + "?"
	}
	return t.Key()
}

// Equal reports whether a and b are structurally equal.  Nullability is part
// of a primitive type's identity, so Int and Int? are never equal.  Named
// types are equal when their identifiers match.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	switch a := a.(type) {
	case Null:
		// null has no type of its own to compare
		return false
	case Named:
		// classes are identified by name alone
		b, ok := b.(Named)
		return ok && a.Name == b.Name
	}
	return a == b
}

// Accepts reports whether a value of type got may be stored where a value of
// type want is expected.
func Accepts(want, got Type) bool {
	if Equal(want, got) {
		return true
	}
	_, isNull := got.(Null)
	return isNull && want != nil && want.Nullable()
}

// FromKeyword returns the builtin type spelled by keyword.  The second return
// value is false when keyword does not name a builtin type.
func FromKeyword(keyword string, nullable bool) (Type, bool) {
	switch keyword {
	case KeywordString:
		return String{Null: nullable}, true
	case KeywordInteger:
		return Integer{Null: nullable}, true
	case KeywordChar:
		return Char{Null: nullable}, true
	case KeywordFloat:
		return Float{Null: nullable}, true
	case KeywordBool:
		return Bool{Null: nullable}, true
	case KeywordVoid:
		return Void{}, true
	}
	return nil, false
}

// WithNull returns t with its nullable flag set to nullable.  Void and Null
// are returned unchanged.
func WithNull(t Type, nullable bool) Type {
	switch t := t.(type) {
	case String:
		t.Null = nullable
		return t
	case Integer:
		t.Null = nullable
		return t
	case Char:
		t.Null = nullable
		return t
	case Float:
		t.Null = nullable
		return t
	case Bool:
		t.Null = nullable
		return t
	case Named:
		t.Null = nullable
		return t
	}
	return t
}

// IsNumeric reports whether t is a non-nullable Int or Float.
func IsNumeric(t Type) bool {
	return Equal(t, Integer{}) || Equal(t, Float{})
}

// IsVoid reports whether t is Void.
func IsVoid(t Type) bool {
	_, ok := t.(Void)
	return ok
}
