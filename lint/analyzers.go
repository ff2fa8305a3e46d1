// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/astutil"
	"github.com/luthersystems/zxc/parser/token"
)

// AnalyzerConstantCondition warns about if and while statements whose
// condition is a boolean literal.
var AnalyzerConstantCondition = &Analyzer{
	Name: "constant-condition",
	Doc:  "Warn when a condition is the literal true or false.\n\nAn if statement with a literal condition always takes the same branch, and `while false` never runs its body. `while true` is allowed as an explicit infinite loop.",
	Run: func(pass *Pass) error {
		inspect(pass.File, func(node ast.Node) {
			switch n := node.(type) {
			case *ast.If:
				if lit, ok := boolLiteral(n.Cond); ok {
					pass.Reportf(lit.Span, "condition is always %s", lit.Value)
				}
			case *ast.While:
				if lit, ok := boolLiteral(n.Cond); ok && lit.Value == "false" {
					pass.Report(lit.Span, "loop body never executes")
				}
			}
		})
		return nil
	},
}

// AnalyzerEmptyBlock warns about control flow with an empty body.
var AnalyzerEmptyBlock = &Analyzer{
	Name: "empty-block",
	Doc:  "Warn when an if, else, while or for body is empty.",
	Run: func(pass *Pass) error {
		report := func(b *ast.Block, what string) {
			if b != nil && len(b.Stmts) == 0 {
				pass.Reportf(b.Pos(), "empty %s body", what)
			}
		}
		inspect(pass.File, func(node ast.Node) {
			switch n := node.(type) {
			case *ast.If:
				report(n.Then, "if")
				if b, ok := n.Else.(*ast.Block); ok {
					report(b, "else")
				}
			case *ast.While:
				report(n.Body, "while")
			case *ast.For:
				report(n.Body, "for")
			}
		})
		return nil
	},
}

// AnalyzerUnreachableCode warns about statements that follow a return in the
// same block.
var AnalyzerUnreachableCode = &Analyzer{
	Name: "unreachable-code",
	Doc:  "Warn about statements following a return statement.\n\nOnly the first unreachable statement of each block is reported.",
	Run: func(pass *Pass) error {
		inspect(pass.File, func(node ast.Node) {
			b, ok := node.(*ast.Block)
			if !ok {
				return
			}
			for i, stmt := range b.Stmts[:max(len(b.Stmts)-1, 0)] {
				if _, ok := stmt.(*ast.Return); ok {
					pass.Report(b.Stmts[i+1].Pos(), "unreachable code")
					return
				}
			}
		})
		return nil
	},
}

// AnalyzerSelfCompare warns when a variable is compared with itself.
var AnalyzerSelfCompare = &Analyzer{
	Name: "self-compare",
	Doc:  "Warn when both operands of a comparison are the same variable.",
	Run: func(pass *Pass) error {
		inspect(pass.File, func(node ast.Node) {
			bin, ok := node.(*ast.Binary)
			if !ok {
				return
			}
			result, ok := selfCompareResult[bin.Op]
			if !ok {
				return
			}
			x, okx := unparen(bin.X).(*ast.Ident)
			y, oky := unparen(bin.Y).(*ast.Ident)
			if !okx || !oky || x.Next != nil || y.Next != nil || x.Name.Text != y.Name.Text {
				return
			}
			pass.Reportf(bin.OpPos, "comparison of '%s' with itself is always %t", x.Name.Text, result)
		})
		return nil
	},
}

var selfCompareResult = map[token.Type]bool{
	token.EQ:  true,
	token.LE:  true,
	token.GE:  true,
	token.NEQ: false,
	token.LT:  false,
	token.GT:  false,
}

// AnalyzerUnusedFunction warns about top-level functions that are never
// called.  The entry point main is exempt.
var AnalyzerUnusedFunction = &Analyzer{
	Name:     "unused-function",
	Doc:      "Warn when a top-level function other than main is never called.",
	Semantic: true,
	Run: func(pass *Pass) error {
		for _, sym := range pass.Semantics.Globals.Symbols() {
			fn, ok := sym.Kind.(*analysis.Function)
			if !ok || fn.Builtin || sym.Name == "main" || sym.Uses > 0 {
				continue
			}
			pass.Reportf(sym.Span, "function '%s' is never used", sym.Name)
		}
		return nil
	},
}

// AnalyzerShadowedGlobal warns when a parameter or local variable hides a
// global of the same name.
var AnalyzerShadowedGlobal = &Analyzer{
	Name:     "shadowed-global",
	Doc:      "Warn when a parameter or local variable shadows a global declaration.",
	Semantic: true,
	Run: func(pass *Pass) error {
		globals := pass.Semantics.Globals
		pass.Semantics.Walk(func(sym *analysis.Symbol, depth int) bool {
			v, ok := sym.Kind.(*analysis.Variable)
			if !ok || depth == 0 || v.Field >= 0 {
				return true
			}
			if g := globals.LookupLocal(sym.Name); g != nil {
				pass.Report(sym.Span,
					fmt.Sprintf("declaration of '%s' shadows global %s", sym.Name, g.KindName()),
					"the global is declared as: "+g.Signature())
			}
			return true
		})
		return nil
	},
}

// inspect calls fn for every node of file.
func inspect(file *ast.File, fn func(ast.Node)) {
	for _, stmt := range file.Stmts {
		astutil.Inspect(stmt, func(node ast.Node) bool {
			fn(node)
			return true
		})
	}
}

func unparen(x ast.Expr) ast.Expr {
	for {
		p, ok := x.(*ast.Paren)
		if !ok {
			return x
		}
		x = p.X
	}
}

func boolLiteral(x ast.Expr) (*ast.Literal, bool) {
	lit, ok := unparen(x).(*ast.Literal)
	if !ok || lit.Kind != ast.LitBool {
		return nil, false
	}
	return lit, true
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
