// Copyright © 2024 The ELPS authors

package codegen

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/parser"
)

func check(t *testing.T, src string) *analysis.Result {
	t.Helper()
	file, err := parser.Parse("test.zx", []byte(src))
	require.NoError(t, err)
	res := analysis.Analyze(file)
	require.False(t, res.Failed(), "%v", res.Diagnostics)
	return res
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func funcNamed(m *ir.Module, name string) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func assertTerminated(t *testing.T, m *ir.Module) {
	t.Helper()
	for _, f := range m.Funcs {
		for _, b := range f.Blocks {
			assert.NotNil(t, b.Term, "block %s of %s", b.Name(), f.Name())
		}
	}
}

const program = `var greeting = "hello"

class Counter {
    var n: Int = 0
    fn next(step: Int): Int {
        return n + step
    }
}

fn fact(n: Int): Int {
    if n < 2 {
        return 1
    } else {
        return n * fact(n - 1)
    }
}

fn main() {
    print(greeting + ", world")
    var c = Counter()
    printInt(c.next(2))
    printInt(fact(5))
    for i in 3 {
        printInt(i)
    }
    var f = 1.5
    while f < 10.0 {
        printFloat(f * 2.0)
    }
    printBool(c.n == 0 && !false)
}
`

func TestGenerateProgram(t *testing.T) {
	res := check(t, program)
	m, err := Generate(res, WithLogger(quietLogger()))
	require.NoError(t, err)
	assertTerminated(t, m)

	for _, name := range []string{"printf", "malloc", "$Counter.new", "$Counter$next", "$fact", "$main", InitName, "main"} {
		assert.NotNil(t, funcNamed(m, name), name)
	}

	fact := funcNamed(m, "$fact")
	require.Len(t, fact.Params, 1)
	assert.True(t, fact.Params[0].Type().Equal(types.I64))
	assert.True(t, fact.Sig.RetType.Equal(types.I64))

	next := funcNamed(m, "$Counter$next")
	require.Len(t, next.Params, 2)
	assert.Equal(t, "this", next.Params[0].Name())

	out := m.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "strcat")
	assert.Contains(t, out, "getelementptr")
	assert.Contains(t, out, "icmp slt")
	assert.Contains(t, out, "fcmp olt")
}

func TestGenerateGlobals(t *testing.T) {
	res := check(t, "var a = 2\nvar b: Int? = null\n{\n    printInt(a)\n}\n")
	m, err := Generate(res, WithLogger(quietLogger()))
	require.NoError(t, err)
	assertTerminated(t, m)
	var names []string
	for _, g := range m.Globals {
		names = append(names, g.Name())
	}
	assert.Contains(t, names, "$a")
	assert.Contains(t, names, "$b")
	init := funcNamed(m, InitName)
	require.NotNil(t, init)
	assert.Contains(t, init.LLString(), "store i64 2")
}

func TestGenerateWithoutMain(t *testing.T) {
	res := check(t, "fn f(): Int { return 1 }\n")
	m, err := Generate(res, WithLogger(quietLogger()), WithoutMain())
	require.NoError(t, err)
	assert.Nil(t, funcNamed(m, "main"))
	assert.NotNil(t, funcNamed(m, "$f"))
}

func TestImplicitResult(t *testing.T) {
	res := check(t, "fn one(): Int {\n    1\n}\n")
	m, err := Generate(res, WithLogger(quietLogger()))
	require.NoError(t, err)
	one := funcNamed(m, "$one")
	require.NotNil(t, one)
	assert.Contains(t, one.LLString(), "ret i64 1")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("capture", func(t *testing.T) {
		src := "fn outer() {\n    var x = 1\n    fn inner(): Int { return x }\n    printInt(inner())\n}\n"
		_, err := Generate(check(t, src), WithLogger(quietLogger()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nested functions cannot capture")
	})
	t.Run("main arguments", func(t *testing.T) {
		_, err := Generate(check(t, "fn main(a: Int) {}\n"), WithLogger(quietLogger()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not take arguments")
	})
	t.Run("failed analysis", func(t *testing.T) {
		file, err := parser.Parse("test.zx", []byte("var x: Nope = 1\n"))
		require.NoError(t, err)
		_, err = Generate(analysis.Analyze(file))
		assert.Error(t, err)
	})
}
