// Copyright © 2024 The ELPS authors

package ir

import (
	"bytes"
	"testing"

	"github.com/luthersystems/zxc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFprint(t *testing.T) {
	i := &Load{Path: "$main$i", Typ: types.Integer{}}
	code := []Instr{
		&Alloca{Path: "$main$i", Typ: types.Integer{}},
		&Store{Path: "$main$i", Value: &Const{Typ: types.Integer{}, Text: "0"}},
		&Loop{
			Cond: &BinOp{Op: "<", X: i, Y: &Const{Typ: types.Integer{}, Text: "3"}, Typ: types.Bool{}},
			Body: []Instr{
				&Block{Name: "$main$0", Code: []Instr{
					&Eval{Value: &Call{Path: "$print", Ret: types.Void{}, Args: []Value{&Const{Typ: types.String{}, Text: "hi\n"}}}},
				}},
			},
			Post: []Instr{
				&Store{Path: "$main$i", Value: &BinOp{Op: "+", X: i, Y: &Const{Typ: types.Integer{}, Text: "1"}, Typ: types.Integer{}}},
			},
		},
		&If{
			Cond: &UnOp{Op: "!", X: &Const{Typ: types.Bool{}, Text: "true"}, Typ: types.Bool{}},
			Then: []Instr{&Ret{}},
			Else: []Instr{&Ret{Value: &Member{Base: &New{Class: "$P", Typ: types.Named{Name: "P"}}, Class: "$P", Field: "x", Typ: types.Integer{}}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, code))
	assert.Equal(t, `alloca $main$i Int
store $main$i Int 0
loop (< (load $main$i) Int 3)
  block $main$0
    eval (call $print Str "hi\n")
post
  store $main$i (+ (load $main$i) Int 1)
if (! Bool true)
  ret
else
  ret (member (new $P) $P.x)
`, buf.String())
}

func TestValueTypes(t *testing.T) {
	call := &Call{Path: "$f", Ret: types.Float{}}
	assert.Equal(t, types.Float{}, call.Type())
	assert.Equal(t, types.Integer{Null: true}, (&Param{Index: 0, Typ: types.Integer{Null: true}}).Type())
	assert.Equal(t, "(call $f recv=(load $p))", (&Call{Path: "$f", Recv: &Load{Path: "$p"}}).String())
}
