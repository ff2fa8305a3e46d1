// Copyright © 2024 The ELPS authors

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b  Type
		equal bool
	}{
		{Integer{}, Integer{}, true},
		{Integer{}, Integer{Null: true}, false},
		{Integer{Null: true}, Integer{Null: true}, true},
		{Integer{}, Float{}, false},
		{String{}, Char{}, false},
		{Bool{}, Bool{}, true},
		{Void{}, Void{}, true},
		{Void{}, Integer{}, false},
		{Named{Name: "Point"}, Named{Name: "Point"}, true},
		{Named{Name: "Point"}, Named{Name: "Point", Null: true}, true},
		{Named{Name: "Point"}, Named{Name: "Line"}, false},
		{Named{Name: "Int"}, Integer{}, false},
		{Null{}, Null{}, false},
		{nil, Integer{}, false},
	}
	for _, test := range tests {
		assert.Equal(t, test.equal, Equal(test.a, test.b), "%v == %v", test.a, test.b)
		if test.a != nil && test.b != nil {
			assert.Equal(t, test.equal, Equal(test.b, test.a), "%v == %v", test.b, test.a)
		}
	}
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(Integer{Null: true}, Null{}))
	assert.True(t, Accepts(Named{Name: "P", Null: true}, Null{}))
	assert.False(t, Accepts(Integer{}, Null{}))
	assert.False(t, Accepts(Void{}, Null{}))
	assert.False(t, Accepts(Integer{Null: true}, Integer{}))
	assert.True(t, Accepts(String{}, String{}))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Int", Integer{}.String())
	assert.Equal(t, "Int?", Integer{Null: true}.String())
	assert.Equal(t, "Int", Integer{Null: true}.Key())
	assert.Equal(t, "Str", String{}.String())
	assert.Equal(t, "Char", Char{}.String())
	assert.Equal(t, "Float?", Float{Null: true}.String())
	assert.Equal(t, "Void", Void{}.String())
	assert.Equal(t, "Point", Named{Name: "Point"}.String())
	assert.Equal(t, "Point?", Named{Name: "Point", Null: true}.String())
	assert.Equal(t, "Point", Named{Name: "Point", Null: true}.Key())
}

func TestFromKeyword(t *testing.T) {
	for _, kw := range []string{KeywordString, KeywordInteger, KeywordChar, KeywordFloat, KeywordBool} {
		typ, ok := FromKeyword(kw, false)
		if assert.True(t, ok, kw) {
			assert.Equal(t, kw, typ.String())
		}
		typ, ok = FromKeyword(kw, true)
		if assert.True(t, ok, kw) {
			assert.Equal(t, kw+"?", typ.String())
		}
	}
	typ, ok := FromKeyword(KeywordVoid, true)
	assert.True(t, ok)
	assert.Equal(t, Void{}, typ)
	_, ok = FromKeyword("Point", false)
	assert.False(t, ok)
}

func TestWithNull(t *testing.T) {
	assert.Equal(t, Integer{Null: true}, WithNull(Integer{}, true))
	assert.Equal(t, Named{Name: "P"}, WithNull(Named{Name: "P", Null: true}, false))
	assert.Equal(t, Void{}, WithNull(Void{}, true))
	assert.True(t, IsNumeric(Float{}))
	assert.False(t, IsNumeric(Float{Null: true}))
	assert.True(t, IsVoid(Void{}))
}
