package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luaghini/pkg/ast"
	"luaghini/pkg/errors"
	"luaghini/pkg/luaast"
)

func TestThreeNamedBindingsShareOneLocal(t *testing.T) {
	lk := siblingLinker(&StaticFacts{ValueUsedNames: valueUsed("A", "B", "C")})
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("./b", "A", "B", "C"), "src/a.ts", st)
	require.NoError(t, err)

	require.Len(t, res.Stmts, 2, "one shared local plus one destructuring line")
	assert.Equal(t, &luaast.Local{
		Names:  []string{"_0"},
		Values: []luaast.Expr{runtimeCall(importFn, &luaast.Field{Object: &luaast.Ident{Name: "script"}, Name: "Parent"}, &luaast.String{Value: "b"})},
	}, res.Stmts[0])

	base := &luaast.Ident{Name: "_0"}
	assert.Equal(t, &luaast.Local{
		Names: []string{"A", "B", "C"},
		Values: []luaast.Expr{
			&luaast.Field{Object: base, Name: "A"},
			&luaast.Field{Object: base, Name: "B"},
			&luaast.Field{Object: base, Name: "C"},
		},
	}, res.Stmts[1])

	assert.Equal(t,
		"local _0 = TS.import(script.Parent, \"b\")\nlocal A, B, C = _0.A, _0.B, _0.C\n",
		luaast.RenderStmts(res.Stmts, 0))
}

func TestSideEffectImportEmitsBareEvaluation(t *testing.T) {
	lk := siblingLinker(nil)
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportDeclaration{
		Span:   pos(),
		Source: strLit("./setup"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	require.Len(t, res.Stmts, 1)
	_, isExprStmt := res.Stmts[0].(*luaast.ExprStmt)
	assert.True(t, isExprStmt, "a side-effect import evaluates the address and binds nothing")
	assert.True(t, res.UsesRuntime)
	assert.Empty(t, res.Aliases)
}

func TestSinglePackageBindingSkipsIntermediateLocal(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@luaghini/pkg": "node_modules/@luaghini/pkg/lib/index.js"},
		Manifest: packageCache(t, "pkg", "lib/index.js"),
		Facts:    &StaticFacts{ValueUsedNames: valueUsed("Foo")},
	})
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("@luaghini/pkg", "Foo"), "src/a.ts", st)
	require.NoError(t, err)

	require.Len(t, res.Stmts, 1)
	assert.Equal(t,
		"local Foo = TS.getModule(script, \"pkg\").Foo\n",
		luaast.RenderStmts(res.Stmts, 0))
}

func TestTypeOnlyBindingsAreElided(t *testing.T) {
	lk := siblingLinker(&StaticFacts{}) // nothing is value-used
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("./b", "SomeType"), "src/a.ts", st)
	require.NoError(t, err)
	assert.Empty(t, res.Stmts, "a type-only import produces no statements at all")
	assert.False(t, res.UsesRuntime)
}

func TestImportTypeDeclarationIsElided(t *testing.T) {
	lk := siblingLinker(nil)
	st := NewState()

	d := importNamed("./b", "A")
	d.IsTypeOnly = true
	res, err := lk.CompileDeclaration(d, "src/a.ts", st)
	require.NoError(t, err)
	assert.Empty(t, res.Stmts)
}

func TestAllowListedFrameworkImportIsAlwaysEmitted(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@luaghini/roact": "node_modules/@luaghini/roact/lib/index.js"},
		Manifest: packageCache(t, "roact", "lib/index.js"),
		Facts:    &StaticFacts{}, // Roact is never used as a value
	})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportDeclaration{
		Span:       pos(),
		Specifiers: []ast.ImportSpecifier{&ast.ImportDefaultSpecifier{Span: pos(), Local: id("Roact")}},
		Source:     strLit("@luaghini/roact"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	require.Len(t, res.Stmts, 1)
	assert.Equal(t,
		"local Roact = TS.getModule(script, \"roact\").default\n",
		luaast.RenderStmts(res.Stmts, 0))
}

func TestCustomAlwaysMaterializePredicate(t *testing.T) {
	lk := New(Options{
		Tree:              fakeTree{"src/a.ts": {"ServerScriptService", "a"}, "src/b.ts": {"ServerScriptService", "b"}},
		Files:             fakeFiles{"./b": "src/b.ts"},
		Facts:             &StaticFacts{},
		AlwaysMaterialize: func(name string) bool { return name == "Special" },
	})
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("./b", "Special"), "src/a.ts", st)
	require.NoError(t, err)
	require.Len(t, res.Stmts, 1)

	res, err = lk.CompileDeclaration(importNamed("./b", "Roact"), "src/a.ts", st)
	require.NoError(t, err)
	assert.Empty(t, res.Stmts, "the stock allow-list is replaced, not extended")
}

func TestMutableOriginBindingIsNeverCached(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/a.ts": {"ServerScriptService", "a"}, "src/b.ts": {"ServerScriptService", "b"}},
		Files: fakeFiles{"./b": "src/b.ts"},
		Facts: &StaticFacts{
			ValueUsedNames: valueUsed("counter", "increment"),
			MutableNames:   map[string]map[string]bool{"src/b.ts": {"counter": true}},
		},
	})
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("./b", "counter", "increment"), "src/a.ts", st)
	require.NoError(t, err)

	// The shared local is bound once; only the immutable binding gets a
	// local of its own.
	require.Len(t, res.Stmts, 2)
	destructure, ok := res.Stmts[1].(*luaast.Local)
	require.True(t, ok)
	assert.Equal(t, []string{"increment"}, destructure.Names)

	// Every later use of the mutable binding re-reads the module table.
	alias, ok := res.Aliases["counter"]
	require.True(t, ok)
	assert.Equal(t, &luaast.Field{Object: &luaast.Ident{Name: "_0"}, Name: "counter"}, alias)
}

func TestSingleMutableBindingStillForcesSharedLocal(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/a.ts": {"ServerScriptService", "a"}, "src/b.ts": {"ServerScriptService", "b"}},
		Files: fakeFiles{"./b": "src/b.ts"},
		Facts: &StaticFacts{
			ValueUsedNames: valueUsed("counter"),
			MutableNames:   map[string]map[string]bool{"src/b.ts": {"counter": true}},
		},
	})
	st := NewState()

	res, err := lk.CompileDeclaration(importNamed("./b", "counter"), "src/a.ts", st)
	require.NoError(t, err)

	require.Len(t, res.Stmts, 1, "only the shared local; no cached copy of the binding")
	assert.Equal(t, "local _0 = TS.import(script.Parent, \"b\")\n", luaast.RenderStmts(res.Stmts, 0))
	assert.Contains(t, res.Aliases, "counter")
}

func TestReservedLocalNameFails(t *testing.T) {
	lk := siblingLinker(nil)
	st := NewState()

	d := &ast.ImportDeclaration{
		Span:       pos(),
		Specifiers: []ast.ImportSpecifier{namedSpec("finish", "end")},
		Source:     strLit("./b"),
	}
	_, err := lk.CompileDeclaration(d, "src/a.ts", st)

	var reserved *errors.ReservedIdentError
	require.ErrorAs(t, err, &reserved)
	assert.Equal(t, "end", reserved.Ident)
	assert.Equal(t, "reserved-identifier", reserved.Kind())
}

func TestSoleExportDefaultBindsModuleValueDirectly(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/a.ts": {"ServerScriptService", "a"}, "src/b.ts": {"ServerScriptService", "b"}},
		Files: fakeFiles{"./b": "src/b.ts"},
		Facts: &StaticFacts{
			ValueUsedNames:    valueUsed("thing"),
			SoleExportModules: map[string]bool{"src/b.ts": true},
		},
	})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportDeclaration{
		Span:       pos(),
		Specifiers: []ast.ImportSpecifier{&ast.ImportDefaultSpecifier{Span: pos(), Local: id("thing")}},
		Source:     strLit("./b"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	assert.Equal(t,
		"local thing = TS.import(script.Parent, \"b\")\n",
		luaast.RenderStmts(res.Stmts, 0),
		"no .default access when the module's whole surface is its default export")
}

func TestMixedDefaultAndNamedShareOneLocal(t *testing.T) {
	lk := siblingLinker(&StaticFacts{ValueUsedNames: valueUsed("D", "A")})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportDeclaration{
		Span: pos(),
		Specifiers: []ast.ImportSpecifier{
			&ast.ImportDefaultSpecifier{Span: pos(), Local: id("D")},
			namedSpec("A", "A"),
		},
		Source: strLit("./b"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	assert.Equal(t,
		"local _0 = TS.import(script.Parent, \"b\")\nlocal D, A = _0.default, _0.A\n",
		luaast.RenderStmts(res.Stmts, 0))
}

func TestNamespaceImportBindsWholeModule(t *testing.T) {
	lk := siblingLinker(&StaticFacts{ValueUsedNames: valueUsed("b")})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportDeclaration{
		Span:       pos(),
		Specifiers: []ast.ImportSpecifier{&ast.ImportNamespaceSpecifier{Span: pos(), Local: id("b")}},
		Source:     strLit("./b"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	assert.Equal(t, "local b = TS.import(script.Parent, \"b\")\n", luaast.RenderStmts(res.Stmts, 0))
}

func TestImportEqualsAliasesModuleValue(t *testing.T) {
	lk := siblingLinker(&StaticFacts{ValueUsedNames: valueUsed("M")})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportEqualsDeclaration{
		Span:   pos(),
		Name:   id("M"),
		Source: strLit("./b"),
	}, "src/a.ts", st)
	require.NoError(t, err)

	assert.Equal(t, "local M = TS.import(script.Parent, \"b\")\n", luaast.RenderStmts(res.Stmts, 0))
	assert.True(t, res.UsesRuntime)
}

func TestImportEqualsTypeOnlyIsElided(t *testing.T) {
	lk := siblingLinker(&StaticFacts{})
	st := NewState()

	res, err := lk.CompileDeclaration(&ast.ImportEqualsDeclaration{
		Span:   pos(),
		Name:   id("M"),
		Source: strLit("./b"),
	}, "src/a.ts", st)
	require.NoError(t, err)
	assert.Empty(t, res.Stmts)
}
