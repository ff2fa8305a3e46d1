// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

func parseAndCheck(t *testing.T, src string) *Result {
	t.Helper()
	file, err := parser.Parse("test.zx", []byte(src))
	require.NoError(t, err)
	return Analyze(file)
}

func bySeverity(res *Result, sev diagnostic.Severity) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func spanText(src string, span token.Span) string {
	return src[span.Start:span.End]
}

func code(instrs []ir.Instr) []string {
	out := make([]string, len(instrs))
	for i, instr := range instrs {
		out[i] = instr.String()
	}
	return out
}

func TestCleanProgram(t *testing.T) {
	src := `class Point {
    var x: Int = 0
    var y: Int = 0
    fn sum(): Int { return x + y }
}

fn fact(n: Int): Int {
    if n < 2 {
        return 1
    } else {
        return n * fact(n - 1)
    }
}

fn main() {
    var p = Point()
    printInt(p.sum())
    printInt(fact(p.x))
    for i in 3 {
        printInt(i)
    }
}
`
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
	assert.Empty(t, bySeverity(res, diagnostic.SeverityWarning))
	assert.False(t, res.Failed())
}

func TestRedeclaration(t *testing.T) {
	src := "var x: Int = 1\nvar x: Int = 2\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NameError, errs[0].Kind)
	assert.Equal(t, "name 'x' is already defined", errs[0].Message)
	assert.Equal(t, 19, errs[0].Span.Start)
	require.Len(t, errs[0].Related, 1)
	assert.Equal(t, 4, errs[0].Related[0].Span.Start)
	assert.Equal(t, "previous declaration", errs[0].Related[0].Text)
	assert.Equal(t, 1, res.Globals.Len())
}

func TestRedeclareParameter(t *testing.T) {
	res := parseAndCheck(t, "fn f(a: Int) {\n    var a = 1\n}\n")
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "name 'a' is already defined", errs[0].Message)

	// a nested block may shadow a parameter
	res = parseAndCheck(t, "fn f(a: Int) {\n    {\n        var a = 1\n        printInt(a)\n    }\n}\n")
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
}

func TestUseCounting(t *testing.T) {
	src := `var x = 1
fn f(): Int { return x }
fn g(): Int { return x + x }
`
	res := parseAndCheck(t, src)
	require.False(t, res.Failed())
	x := res.Globals.LookupLocal("x")
	require.NotNil(t, x)
	assert.Equal(t, 3, x.Uses)
	assert.Len(t, res.ReferencesTo(x), 3)
	assert.Equal(t, 0, res.Globals.LookupLocal("f").Uses)
}

func TestUnusedLocals(t *testing.T) {
	src := "var g = 1\nfn f() {\n    var y = 1\n    var z = 2\n    printInt(z)\n}\n"
	res := parseAndCheck(t, src)
	warns := bySeverity(res, diagnostic.SeverityWarning)
	require.Len(t, warns, 1)
	assert.Equal(t, diagnostic.Warning, warns[0].Kind)
	assert.Equal(t, "field is never read: 'y'", warns[0].Message)
	assert.Equal(t, "y", spanText(src, warns[0].Span))
	assert.False(t, res.Failed())
}

func TestUnusedWarnedAtBlockExit(t *testing.T) {
	src := "fn f() {\n    var unused = 1\n}\nvar bad: Int = \"s\"\n"
	res := parseAndCheck(t, src)
	diags := diagnostic.FilterDebug(res.Diagnostics)
	require.Len(t, diags, 2)
	assert.Equal(t, diagnostic.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "field is never read: 'unused'", diags[0].Message)
	assert.Equal(t, diagnostic.SeverityError, diags[1].Severity)
	assert.Equal(t, "mismatched types", diags[1].Message)

	src = "fn g() {\n    {\n        var a = 1\n    }\n    var b: Int = \"s\"\n    printInt(b)\n}\n"
	res = parseAndCheck(t, src)
	diags = diagnostic.FilterDebug(res.Diagnostics)
	require.Len(t, diags, 2)
	assert.Equal(t, "field is never read: 'a'", diags[0].Message)
	assert.Equal(t, "mismatched types", diags[1].Message)
}

func TestReturnMismatch(t *testing.T) {
	src := "fn f(): Int {\n    return \"s\"\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeError, errs[0].Kind)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, "Int", spanText(src, errs[0].Span))
	assert.Equal(t, []string{"expected `Int`, found `Str`"}, errs[0].Notes)

	// the function is still declared
	f := res.Globals.LookupLocal("f")
	require.NotNil(t, f)
	assert.Equal(t, types.Integer{}, f.Type())
}

func TestImplicitResultWithoutAnnotation(t *testing.T) {
	src := "fn one(): Int { return 1 }\nfn f() {\n    one()\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, "one()", spanText(src, errs[0].Span))
}

func TestNullableReturn(t *testing.T) {
	res := parseAndCheck(t, "fn f(): Int? { return null }\n")
	assert.False(t, res.Failed())
}

func TestArity(t *testing.T) {
	src := "fn add(a: Int, b: Int): Int { return a + b }\nfn main() {\n    printInt(add(1))\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeError, errs[0].Kind)
	assert.Equal(t, "this function takes 2 argument but 1 arguments were supplied", errs[0].Message)
	assert.Equal(t, "(1)", spanText(src, errs[0].Span))
}

func TestArityTooMany(t *testing.T) {
	src := "fn add(a: Int, b: Int): Int { return a + b }\nfn main() {\n    printInt(add(1, 2, 3))\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeError, errs[0].Kind)
	assert.Equal(t, "this function takes 2 argument but 3 arguments were supplied", errs[0].Message)
	assert.Equal(t, "(1, 2, 3)", spanText(src, errs[0].Span))
}

func TestDeclareThenUse(t *testing.T) {
	res := parseAndCheck(t, "fn main() {\n    var n = 1\n    printInt(n)\n}\n")
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
	assert.Empty(t, bySeverity(res, diagnostic.SeverityWarning))

	src := "fn main() {\n    var n = 1\n    print(n)\n}\n"
	res = parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeError, errs[0].Kind)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, []string{"expected `Str`, found `Int`"}, errs[0].Notes)
	assert.Equal(t, "n", spanText(src, errs[0].Span))
}

func TestNullableRejectsPlainValue(t *testing.T) {
	src := "var a: Int? = 1\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, []string{"expected `Int?`, found `Int`"}, errs[0].Notes)
	assert.Equal(t, "1", spanText(src, errs[0].Span))

	src = "fn f(n: Int?) {}\nfn main() {\n    f(2)\n}\n"
	res = parseAndCheck(t, src)
	errs = bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, "2", spanText(src, errs[0].Span))

	res = parseAndCheck(t, "var b: Int? = null\n")
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
}

func TestArgumentType(t *testing.T) {
	src := "fn main() {\n    printInt(\"one\")\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "mismatched types", errs[0].Message)
	assert.Equal(t, `"one"`, spanText(src, errs[0].Span))
}

func TestUndefinedName(t *testing.T) {
	src := "fn main() {\n    printInt(z)\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NameError, errs[0].Kind)
	assert.Equal(t, "NameError: name 'z' is not defined", errs[0].Message)
	assert.Equal(t, "z", spanText(src, errs[0].Span))
}

func TestKindMisuse(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"fn f() {}\nvar x = f\n", "'f' is Function not a variable"},
		{"var x = 1\nvar y = x()\n", "'x' is Variable not a function"},
		{"class P {}\nvar y = P\n", "'P' is Class not a variable"},
	}
	for _, test := range tests {
		res := parseAndCheck(t, test.src)
		errs := bySeverity(res, diagnostic.SeverityError)
		if assert.Len(t, errs, 1, test.src) {
			assert.Equal(t, diagnostic.TypeError, errs[0].Kind, test.src)
			assert.Equal(t, test.msg, errs[0].Message, test.src)
		}
	}
}

func TestTypeAnnotations(t *testing.T) {
	tests := []struct {
		src  string
		msg  string
		span string
	}{
		{"var x = null\n", "type annotations needed", "x"},
		{"var x: Foo = 1\n", "type 'Foo' not found", "Foo"},
		{"var x: Int = 1.5\n", "mismatched types", "1.5"},
		{"var x: Str\nvar y: Int = x\n", "mismatched types", "x"},
		{"fn f() {}\nvar x = f()\n", "expression has no value", "f()"},
	}
	for _, test := range tests {
		res := parseAndCheck(t, test.src)
		errs := bySeverity(res, diagnostic.SeverityError)
		if assert.Len(t, errs, 1, test.src) {
			assert.Equal(t, diagnostic.TypeError, errs[0].Kind, test.src)
			assert.Equal(t, test.msg, errs[0].Message, test.src)
			assert.Equal(t, test.span, spanText(test.src, errs[0].Span), test.src)
		}
	}
}

func TestBadReturnAnnotation(t *testing.T) {
	src := "fn f(): Foo {\n    return 1\n}\nfn g() {\n    f()\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "type 'Foo' not found", errs[0].Message)
	f := res.Globals.LookupLocal("f")
	require.NotNil(t, f)
	assert.Equal(t, types.Void{}, f.Type())
}

func TestTopLevelStatement(t *testing.T) {
	src := "print(\"hi\")\nvar x = 1\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.UnknownError, errs[0].Kind)
	assert.Equal(t, "Unknown statement.", errs[0].Message)
	assert.NotNil(t, res.Globals.LookupLocal("x"))
}

func TestErrorsDoNotStopAnalysis(t *testing.T) {
	src := "fn f() {\n    printInt(a)\n    printInt(b)\n}\nvar c: Bogus = 1\nfn g(): Int { return 1 }\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 3)
	assert.Equal(t, "NameError: name 'a' is not defined", errs[0].Message)
	assert.Equal(t, "NameError: name 'b' is not defined", errs[1].Message)
	assert.Equal(t, "type 'Bogus' not found", errs[2].Message)
	assert.NotNil(t, res.Globals.LookupLocal("g"))
}

func TestConditions(t *testing.T) {
	tests := []string{
		"fn f() {\n    if 1 {\n    }\n}\n",
		"fn f() {\n    while \"x\" {\n    }\n}\n",
		"fn f() {\n    for i in true {\n    }\n}\n",
	}
	for _, src := range tests {
		res := parseAndCheck(t, src)
		errs := bySeverity(res, diagnostic.SeverityError)
		if assert.Len(t, errs, 1, src) {
			assert.Equal(t, "mismatched types", errs[0].Message, src)
		}
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		expr string
		typ  types.Type
		msg  string
	}{
		{"1 + 2 * 3", types.Integer{}, ""},
		{"1.5 / 2.0", types.Float{}, ""},
		{`"a" + "b"`, types.String{}, ""},
		{"1 < 2 && !false", types.Bool{}, ""},
		{"-1", types.Integer{}, ""},
		{"'a' <= 'b'", types.Bool{}, ""},
		{"1 + 1.5", nil, "mismatched types"},
		{`"a" - "b"`, nil, "cannot apply operator '-' to type 'Str'"},
		{"true + false", nil, "cannot apply operator '+' to type 'Bool'"},
		{"1 && true", nil, "mismatched types"},
		{"!1", nil, "mismatched types"},
		{`-"a"`, nil, "cannot apply operator '-' to type 'Str'"},
	}
	for _, test := range tests {
		src := "var v = " + test.expr + "\n"
		res := parseAndCheck(t, src)
		errs := bySeverity(res, diagnostic.SeverityError)
		if test.msg != "" {
			if assert.Len(t, errs, 1, test.expr) {
				assert.Equal(t, test.msg, errs[0].Message, test.expr)
			}
			continue
		}
		if assert.Empty(t, errs, test.expr) {
			assert.Equal(t, test.typ, res.Globals.LookupLocal("v").Type(), test.expr)
		}
	}
}

func TestNullComparison(t *testing.T) {
	src := "var a: Int? = null\nvar b = a == null\nvar c = a == 1\n"
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
}

func TestMemberAccess(t *testing.T) {
	src := `var y = 1
class P {
    var x: Int = 0
    fn get(): Int { return x }
}
fn main() {
    var p = P()
    printInt(p.x)
    printInt(p.get())
    printInt(p.y)
}
`
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NameError, errs[0].Kind)
	assert.Equal(t, "NameError: name 'y' is not defined", errs[0].Message)
	assert.Equal(t, "y", spanText(src, errs[0].Span))

	class := res.Globals.LookupLocal("P")
	require.NotNil(t, class)
	x := class.Kind.(*Class).Members.LookupLocal("x")
	require.NotNil(t, x)
	assert.Equal(t, 2, x.Uses, "the use inside get and p.x")
	assert.Equal(t, 0, x.Kind.(*Variable).Field)

	main := res.Globals.LookupLocal("main").Kind.(*Function)
	assert.Equal(t, []string{
		"alloca $main$p P",
		"store $main$p (new $P)",
		"eval (call builtin$printInt (member (load $main$p) $P.x))",
		"eval (call builtin$printInt (call $P$get recv=(load $main$p)))",
	}, code(main.Body.Kind.(*Block).Code))
}

func TestClassMembersSeeLaterSiblings(t *testing.T) {
	src := `class C {
    var m: Int = twice()
    fn a(): Int { return b() }
    fn b(): Int { return n }
    fn twice(): Int { return 2 }
    var n: Int = 1
}
fn main() {
    var c = C()
    printInt(c.a() + c.m)
}
`
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))

	members := res.Globals.LookupLocal("C").Kind.(*Class).Members
	assert.Equal(t, 1, members.LookupLocal("b").Uses)
	assert.Equal(t, 1, members.LookupLocal("n").Uses)
	assert.Equal(t, 1, members.LookupLocal("twice").Uses)

	n := members.LookupLocal("n").Kind.(*Variable)
	assert.Equal(t, 1, n.Field)
	assert.Equal(t, "Int 1", n.Value.String())
}

func TestClassNotVisibleToOwnMembers(t *testing.T) {
	src := "class C {\n    fn make() {\n        printInt(1)\n        C()\n    }\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "NameError: name 'C' is not defined", errs[0].Message)
}

func TestUnannotatedFieldSeesEarlierMembers(t *testing.T) {
	src := "class C {\n    var n = f()\n    fn f(): Int { return 1 }\n    var m = f()\n}\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "NameError: name 'f' is not defined", errs[0].Message)
	assert.Equal(t, "f", spanText(src, errs[0].Span))
}

func TestMemberAccessDoesNotUseClass(t *testing.T) {
	src := `class P { var x: Int = 1 }
fn main() {
    var p = P()
    var P = 2
    printInt(p.x + P)
    printInt(p.x)
}
`
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
	assert.Empty(t, bySeverity(res, diagnostic.SeverityWarning))
	assert.Equal(t, 1, res.Globals.LookupLocal("P").Uses, "only the constructor call")
}

func TestMemberOfNullableClass(t *testing.T) {
	// a nullable class value is not narrowed before member access
	src := `class P { var x: Int = 1 }
fn main() {
    var p: P? = null
    printInt(p.x)
}
`
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
}

func TestMemberArgumentsResolveLexically(t *testing.T) {
	src := `class Acc {
    var total: Int = 0
    fn add(n: Int): Int { return total + n }
}
fn main() {
    var n = 2
    var a = Acc()
    printInt(a.add(n))
}
`
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
}

func TestMemberOfPrimitive(t *testing.T) {
	src := "var x = 1\nvar y = x.z\n"
	res := parseAndCheck(t, src)
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "type 'Int' has no members", errs[0].Message)
}

func TestConstructorArity(t *testing.T) {
	res := parseAndCheck(t, "class P {}\nvar p = P(1)\n")
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "this function takes 0 argument but 1 arguments were supplied", errs[0].Message)
}

func TestPaths(t *testing.T) {
	src := `var g = 1
fn f(a: Int) {
    var b = a
    {
        var c = b
        printInt(c)
    }
    for i in b {
        printInt(i)
    }
}
class K {
    var m: Int = g
    fn get(): Int { return m }
}
{
    printInt(g)
}
`
	res := parseAndCheck(t, src)
	require.Empty(t, bySeverity(res, diagnostic.SeverityError))
	for _, path := range []string{"$g", "$f", "$f$a", "$f$b", "$f$0", "$f$0$c", "$f$1", "$f$1$i", "$K", "$K$m", "$K$get", "$0"} {
		assert.NotNil(t, res.Lookup(path), path)
	}
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "$0", res.Blocks[0].Path)
	assert.Nil(t, res.Globals.LookupLocal(""))
}

func TestLowering(t *testing.T) {
	src := `var g = 1
fn f(a: Int): Int {
    var b = a + g
    if b > 2 {
        return b
    } else {
        return 0
    }
}
`
	res := parseAndCheck(t, src)
	require.Empty(t, bySeverity(res, diagnostic.SeverityError))
	assert.Equal(t, []string{"alloca $g Int", "store $g Int 1"}, code(res.Init))

	f := res.Globals.LookupLocal("f").Kind.(*Function)
	assert.Equal(t, []string{"alloca $f$a Int", "store $f$a (param 0)"}, code(f.Entry))
	body := f.Body.Kind.(*Block).Code
	require.Len(t, body, 3)
	assert.Equal(t, "store $f$b (+ (load $f$a) (load $g))", body[1].String())
	cond := body[2].(*ir.If)
	assert.Equal(t, "(> (load $f$b) Int 2)", cond.Cond.String())
	assert.Equal(t, []string{"ret (load $f$b)"}, code(cond.Then))
	assert.Equal(t, []string{"ret Int 0"}, code(cond.Else))
}

func TestLoweringStructure(t *testing.T) {
	res := parseAndCheck(t, "var g = 1\nvar h = g + 2\n")
	require.Empty(t, bySeverity(res, diagnostic.SeverityError))
	expected := []ir.Instr{
		&ir.Alloca{Path: "$g", Typ: types.Integer{}},
		&ir.Store{Path: "$g", Value: &ir.Const{Typ: types.Integer{}, Text: "1"}},
		&ir.Alloca{Path: "$h", Typ: types.Integer{}},
		&ir.Store{Path: "$h", Value: &ir.BinOp{
			Op:  "+",
			X:   &ir.Load{Path: "$g", Typ: types.Integer{}},
			Y:   &ir.Const{Typ: types.Integer{}, Text: "2"},
			Typ: types.Integer{},
		}},
	}
	if diff := deep.Equal(expected, res.Init); diff != nil {
		t.Error(diff)
	}
}

func TestForLowering(t *testing.T) {
	res := parseAndCheck(t, "fn f() {\n    for i in 3 {\n        printInt(i)\n    }\n}\n")
	require.Empty(t, bySeverity(res, diagnostic.SeverityError))
	body := res.Globals.LookupLocal("f").Kind.(*Function).Body.Kind.(*Block).Code
	assert.Equal(t, []string{
		"alloca $f$0$i Int",
		"store $f$0$i Int 0",
		"alloca $f$0$i$end Int",
		"store $f$0$i$end Int 3",
		"loop (< (load $f$0$i) (load $f$0$i$end))",
	}, code(body))
	loop := body[4].(*ir.Loop)
	assert.Equal(t, []string{"eval (call builtin$printInt (load $f$0$i))"}, code(loop.Body))
	assert.Equal(t, []string{"store $f$0$i (+ (load $f$0$i) Int 1)"}, code(loop.Post))
}

func TestDebugDump(t *testing.T) {
	res := parseAndCheck(t, "var x = 1\nfn f(a: Int): Int { return a }\n")
	require.NotEmpty(t, res.Diagnostics)
	last := res.Diagnostics[len(res.Diagnostics)-1]
	assert.Equal(t, diagnostic.SeverityDebug, last.Severity)
	assert.Equal(t, diagnostic.Debug, last.Kind)
	assert.Equal(t, "scopes\n"+
		"variable $x: Int uses=0\n"+
		"function $f: Int uses=0\n"+
		"  variable $f$a: Int uses=1\n"+
		"  block $f: Int\n", last.Message)
	assert.Len(t, bySeverity(res, diagnostic.SeverityDebug), 1)
}

func TestShadowBuiltin(t *testing.T) {
	src := "fn print(n: Int) {}\nfn main() {\n    print(1)\n}\n"
	res := parseAndCheck(t, src)
	assert.Empty(t, bySeverity(res, diagnostic.SeverityError))
	main := res.Globals.LookupLocal("main").Kind.(*Function)
	assert.Equal(t, []string{"eval (call $print Int 1)"}, code(main.Body.Kind.(*Block).Code))
	assert.True(t, IsBuiltin("builtin$print"))
	assert.False(t, IsBuiltin("$print"))
}

func TestWithoutPrelude(t *testing.T) {
	file, err := parser.Parse("test.zx", []byte("fn main() {\n    print(\"x\")\n}\n"))
	require.NoError(t, err)
	res := Analyze(file, WithPrelude(nil), WithFilename("other.zx"))
	errs := bySeverity(res, diagnostic.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "other.zx", errs[0].File)
	assert.True(t, strings.HasPrefix(errs[0].Message, "NameError"))
}

func TestDeclarationAndReferenceAt(t *testing.T) {
	src := "var count = 1\nfn f(): Int { return count }\n"
	res := parseAndCheck(t, src)
	decl := res.DeclarationAt(strings.Index(src, "count"))
	require.NotNil(t, decl)
	assert.Equal(t, "$count", decl.Path)

	ref := res.ReferenceAt(strings.LastIndex(src, "count") + 2)
	require.NotNil(t, ref)
	assert.Same(t, decl, ref.Symbol)
	assert.Nil(t, res.ReferenceAt(0))
}

func TestSignature(t *testing.T) {
	res := parseAndCheck(t, "class P {}\nfn f(a: Int, p: P?): Str { return \"\" }\nvar v: Float = 1.0\n")
	require.Empty(t, bySeverity(res, diagnostic.SeverityError))
	assert.Equal(t, "fn f(a: Int, p: P?): Str", res.Globals.LookupLocal("f").Signature())
	assert.Equal(t, "var v: Float", res.Globals.LookupLocal("v").Signature())
	assert.Equal(t, "class P", res.Globals.LookupLocal("P").Signature())
}
