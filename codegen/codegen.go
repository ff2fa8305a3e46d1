// Copyright © 2024 The ELPS authors

// Package codegen translates checked zx programs into LLVM IR.
//
// The generator consumes the symbol tree and the lowered instruction tree
// produced by package analysis.  Every function, global and class is
// addressed by its symbol path, so the generator never resolves source
// names itself.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/zxc/analysis"
	zxtypes "github.com/luthersystems/zxc/types"
)

// EntryName is the name of the zx function called by the generated C main.
const EntryName = "main"

// InitName is the name of the generated function that initializes globals
// and runs top-level blocks.
const InitName = "zx.init"

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = log }
}

// WithoutMain suppresses the C main function, for emitting library modules.
func WithoutMain() Option {
	return func(g *Generator) { g.noMain = true }
}

// Generator builds one LLVM module from an analysis result.
type Generator struct {
	res    *analysis.Result
	mod    *ir.Module
	log    logrus.FieldLogger
	noMain bool

	funcs   map[string]*function
	globals map[string]*ir.Global
	classes map[string]*class
	byName  map[string]*class
	fields  map[string]field // member variable path -> owning class field

	rt      runtime
	strings int
}

type function struct {
	sym  *analysis.Symbol
	kind *analysis.Function
	fn   *ir.Func
	this *class // receiver class for methods
}

type class struct {
	sym    *analysis.Symbol
	kind   *analysis.Class
	st     *types.StructType
	ptr    *types.PointerType
	ctor   *ir.Func
	fields []*analysis.Symbol
}

type field struct {
	class *class
	index int
}

// New returns a generator for res.  The result must be free of errors.
func New(res *analysis.Result, opts ...Option) *Generator {
	g := &Generator{
		res:     res,
		mod:     ir.NewModule(),
		log:     logrus.StandardLogger(),
		funcs:   make(map[string]*function),
		globals: make(map[string]*ir.Global),
		classes: make(map[string]*class),
		byName:  make(map[string]*class),
		fields:  make(map[string]field),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate translates res into an LLVM module.
func Generate(res *analysis.Result, opts ...Option) (*ir.Module, error) {
	return New(res, opts...).Generate()
}

// Generate runs the generator.  Declarations are emitted before any body so
// bodies may refer to every function, global and class of the program.
func (g *Generator) Generate() (*ir.Module, error) {
	if g.res.Failed() {
		return nil, fmt.Errorf("cannot generate code for a program with errors")
	}
	if g.res.File != nil {
		g.mod.SourceFilename = g.res.File.Name
	}
	g.rt = declareRuntime(g.mod)
	g.declareClasses()
	g.declareGlobals()
	g.declareFuncs()
	for _, c := range g.sortedClasses() {
		if err := g.genConstructor(c); err != nil {
			return nil, err
		}
	}
	for _, f := range g.sortedFuncs() {
		if err := g.genFunc(f); err != nil {
			return nil, err
		}
	}
	init, err := g.genInit()
	if err != nil {
		return nil, err
	}
	if !g.noMain {
		if err := g.genMain(init); err != nil {
			return nil, err
		}
	}
	return g.mod, nil
}

// walk visits every user symbol in declaration order.
func (g *Generator) walk(fn func(sym *analysis.Symbol)) {
	g.res.Walk(func(sym *analysis.Symbol, _ int) bool {
		fn(sym)
		return true
	})
}

func (g *Generator) declareClasses() {
	var order []*class
	g.walk(func(sym *analysis.Symbol) {
		k, ok := sym.Kind.(*analysis.Class)
		if !ok {
			return
		}
		st := types.NewStruct()
		g.mod.NewTypeDef(sym.Path, st)
		c := &class{sym: sym, kind: k, st: st, ptr: types.NewPointer(st), fields: k.Fields}
		g.classes[sym.Path] = c
		if _, ok := g.byName[sym.Name]; !ok {
			g.byName[sym.Name] = c
		}
		order = append(order, c)
	})
	// field types may refer to any class, so fill them in once all exist
	for _, c := range order {
		for i, f := range c.fields {
			c.st.Fields = append(c.st.Fields, g.llType(f.Type()))
			g.fields[f.Path] = field{class: c, index: i}
		}
		c.ctor = g.mod.NewFunc(c.sym.Path+".new", c.ptr)
		g.log.WithField("class", c.sym.Path).Debugf("declared class with %d fields", len(c.fields))
	}
}

func (g *Generator) declareGlobals() {
	for _, sym := range g.res.Globals.Symbols() {
		v, ok := sym.Kind.(*analysis.Variable)
		if !ok {
			continue
		}
		typ := g.llType(v.Type)
		g.globals[sym.Path] = g.mod.NewGlobalDef(sym.Path, zero(typ))
	}
}

func (g *Generator) declareFuncs() {
	g.walk(func(sym *analysis.Symbol) {
		k, ok := sym.Kind.(*analysis.Function)
		if !ok || k.Builtin {
			return
		}
		f := &function{sym: sym, kind: k}
		var params []*ir.Param
		if k.Class != nil {
			f.this = g.classes[k.Class.Path]
			params = append(params, ir.NewParam("this", f.this.ptr))
		}
		for _, p := range k.Params {
			params = append(params, ir.NewParam(p.Name, g.llType(p.Type())))
		}
		f.fn = g.mod.NewFunc(sym.Path, g.llType(k.Return), params...)
		g.funcs[sym.Path] = f
		g.log.WithField("function", sym.Path).Debug("declared function")
	})
}

func (g *Generator) sortedFuncs() []*function {
	var out []*function
	g.walk(func(sym *analysis.Symbol) {
		if f, ok := g.funcs[sym.Path]; ok && f.sym == sym {
			out = append(out, f)
		}
	})
	return out
}

func (g *Generator) sortedClasses() []*class {
	var out []*class
	g.walk(func(sym *analysis.Symbol) {
		if c, ok := g.classes[sym.Path]; ok && c.sym == sym {
			out = append(out, c)
		}
	})
	return out
}

func (g *Generator) genFunc(f *function) error {
	fr := g.newFrame(f.fn, f.kind.Return, f)
	if err := fr.genCode(f.kind.Entry); err != nil {
		return err
	}
	body := f.kind.Body.Kind.(*analysis.Block)
	if err := fr.genCode(body.Code); err != nil {
		return fmt.Errorf("%s: %w", f.sym.Path, err)
	}
	fr.finish()
	return nil
}

// genConstructor allocates an instance and stores each field initializer.
// Initializers run with the new instance as receiver, so they may read
// fields declared before them.
func (g *Generator) genConstructor(c *class) error {
	fr := g.newFrame(c.ctor, nil, &function{this: c})
	size := fr.block.NewPtrToInt(
		fr.block.NewGetElementPtr(c.st, zero(c.ptr), constInt(1)), types.I64)
	mem := fr.block.NewCall(g.rt.malloc, size)
	obj := fr.block.NewBitCast(mem, c.ptr)
	fr.this = obj
	for i, f := range c.fields {
		ptr := fr.block.NewGetElementPtr(c.st, obj, constI32(0), constI32(int64(i)))
		v := f.Kind.(*analysis.Variable)
		if v.Value == nil {
			fr.block.NewStore(zero(c.st.Fields[i]), ptr)
			continue
		}
		val, err := fr.genValueAs(v.Value, c.st.Fields[i])
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
		fr.block.NewStore(val, ptr)
	}
	fr.block.NewRet(obj)
	fr.finish()
	return nil
}

func (g *Generator) genInit() (*ir.Func, error) {
	init := g.mod.NewFunc(InitName, types.Void)
	fr := g.newFrame(init, zxtypes.Void{}, nil)
	if err := fr.genCode(g.res.Init); err != nil {
		return nil, err
	}
	fr.finish()
	return init, nil
}

// genMain emits the C entry point.  It runs the initializer and then the
// program's main function, when there is one.
func (g *Generator) genMain(init *ir.Func) error {
	main := g.mod.NewFunc("main", types.I32)
	entry := main.NewBlock("entry")
	entry.NewCall(init)
	if f, ok := g.funcs["$"+EntryName]; ok {
		if len(f.kind.Params) != 0 {
			return fmt.Errorf("function %s must not take arguments", EntryName)
		}
		entry.NewCall(f.fn)
	}
	entry.NewRet(constI32(0))
	return nil
}

// llType maps a zx type to its LLVM representation.  Nullable primitives
// share the representation of their base type, with null as the zero
// value.
func (g *Generator) llType(t zxtypes.Type) types.Type {
	switch t := t.(type) {
	case zxtypes.Integer:
		return types.I64
	case zxtypes.Float:
		return types.Double
	case zxtypes.Bool:
		return types.I1
	case zxtypes.Char:
		return types.I32
	case zxtypes.String:
		return types.I8Ptr
	case zxtypes.Named:
		if c, ok := g.byName[t.Name]; ok {
			return c.ptr
		}
		return types.I8Ptr
	case zxtypes.Null:
		return types.I8Ptr
	}
	return types.Void
}
