// Copyright © 2024 The ELPS authors

package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// runtime holds the C library functions generated code calls.
type runtime struct {
	printf *ir.Func
	malloc *ir.Func
	strlen *ir.Func
	strcpy *ir.Func
	strcat *ir.Func
	strcmp *ir.Func
}

func declareRuntime(m *ir.Module) runtime {
	rt := runtime{
		printf: m.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr)),
		malloc: m.NewFunc("malloc", types.I8Ptr, ir.NewParam("size", types.I64)),
		strlen: m.NewFunc("strlen", types.I64, ir.NewParam("s", types.I8Ptr)),
		strcpy: m.NewFunc("strcpy", types.I8Ptr, ir.NewParam("dst", types.I8Ptr), ir.NewParam("src", types.I8Ptr)),
		strcat: m.NewFunc("strcat", types.I8Ptr, ir.NewParam("dst", types.I8Ptr), ir.NewParam("src", types.I8Ptr)),
		strcmp: m.NewFunc("strcmp", types.I32, ir.NewParam("a", types.I8Ptr), ir.NewParam("b", types.I8Ptr)),
	}
	rt.printf.Sig.Variadic = true
	return rt
}

// zero returns the zero value of t.  It is also the representation of null.
func zero(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(t)
}

func constInt(n int64) *constant.Int { return constant.NewInt(types.I64, n) }
func constI32(n int64) *constant.Int { return constant.NewInt(types.I32, n) }
