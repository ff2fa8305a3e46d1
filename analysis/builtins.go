// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"

	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/types"
)

// builtin describes a function every program can call without declaring it.
type builtin struct {
	name   string
	params []builtinParam
	ret    types.Type
}

type builtinParam struct {
	name string
	typ  types.Type
}

// builtinPrefix starts the path of every prelude function.  User paths
// always start with '$', so the two never collide.
const builtinPrefix = "builtin"

var builtins = []builtin{
	{"print", []builtinParam{{"value", types.String{}}}, types.Void{}},
	{"printInt", []builtinParam{{"value", types.Integer{}}}, types.Void{}},
	{"printFloat", []builtinParam{{"value", types.Float{}}}, types.Void{}},
	{"printChar", []builtinParam{{"value", types.Char{}}}, types.Void{}},
	{"printBool", []builtinParam{{"value", types.Bool{}}}, types.Void{}},
}

// Prelude returns a fresh table holding the builtin functions.  The prelude
// sits outside the global table, so user declarations may shadow builtins.
func Prelude() *Scopes {
	prelude := NewScopes()
	for _, b := range builtins {
		path := builtinPrefix + "$" + b.name
		fn := &Function{Return: b.ret, ParamScope: NewScopes(), Builtin: true}
		for i, p := range b.params {
			param := &Symbol{
				Name: p.name,
				Path: path + "$" + p.name,
				Kind: &Variable{Type: p.typ, Value: &ir.Param{Index: i, Typ: p.typ}, Field: -1},
			}
			fn.Params = append(fn.Params, param)
			fn.ParamScope.Declare(param)
		}
		prelude.Declare(&Symbol{Name: b.name, Path: path, Kind: fn})
	}
	return prelude
}

// IsBuiltin reports whether path addresses a prelude function.
func IsBuiltin(path string) bool {
	_, ok := BuiltinName(path)
	return ok
}

// BuiltinName returns the name of the prelude function addressed by path.
func BuiltinName(path string) (string, bool) {
	name, ok := strings.CutPrefix(path, builtinPrefix+"$")
	if !ok {
		return "", false
	}
	for _, b := range builtins {
		if b.name == name {
			return name, true
		}
	}
	return "", false
}
