package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luaghini/pkg/errors"
	"luaghini/pkg/luaast"
)

// countAscends walks a rendered navigation expression's ascend chain.
func countAscends(expr luaast.Expr) int {
	call, ok := expr.(*luaast.Call)
	if !ok || len(call.Args) == 0 {
		return -1
	}
	n := 0
	nav := call.Args[0]
	for {
		field, ok := nav.(*luaast.Field)
		if !ok {
			return n
		}
		n++
		nav = field.Object
	}
}

func descendSegments(expr luaast.Expr) int {
	call, ok := expr.(*luaast.Call)
	if !ok {
		return -1
	}
	return len(call.Args) - 1
}

func TestRelativeNavigationIsMinimal(t *testing.T) {
	tree := fakeTree{
		"src/a.ts":            {"ServerScriptService", "lib", "a"},
		"src/sibling.ts":      {"ServerScriptService", "lib", "sibling"},
		"src/lib.ts":          {"ServerScriptService", "lib"},
		"src/root.ts":         {"ServerScriptService"},
		"src/a/child.ts":      {"ServerScriptService", "lib", "a", "child"},
		"src/a/deep/leaf.ts":  {"ServerScriptService", "lib", "a", "deep", "leaf"},
		"src/other/branch.ts": {"ServerScriptService", "other", "branch"},
	}
	files := fakeFiles{
		"./sibling":     "src/sibling.ts",
		"../lib":        "src/lib.ts",
		"../../root":    "src/root.ts",
		"./a/child":     "src/a/child.ts",
		"./a/deep/leaf": "src/a/deep/leaf.ts",
		"../other":      "src/other/branch.ts",
	}
	lk := New(Options{Tree: tree, Files: files})

	cases := []struct {
		name      string
		specifier string
		ascends   int
		descends  int
		rendered  string
	}{
		{"sibling", "./sibling", 1, 1, `TS.import(script.Parent, "sibling")`},
		{"parent module", "../lib", 1, 0, `TS.import(script.Parent)`},
		{"grandparent module", "../../root", 2, 0, `TS.import(script.Parent.Parent)`},
		{"own child", "./a/child", 0, 1, `TS.import(script, "child")`},
		{"deep descendant", "./a/deep/leaf", 0, 2, `TS.import(script, "deep", "leaf")`},
		{"cousin subtree", "../other", 2, 2, `TS.import(script.Parent.Parent, "other", "branch")`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := NewState()
			addr, err := lk.LoadAddress(tc.specifier, "src/a.ts", strLit(tc.specifier), st)
			require.NoError(t, err)

			assert.Equal(t, tc.ascends, countAscends(addr), "ascend count")
			assert.Equal(t, tc.descends, descendSegments(addr), "descend count")
			assert.Equal(t, tc.rendered, luaast.RenderExpr(addr))
			assert.True(t, st.UsesRuntime)
		})
	}
}

func TestRelativeResolutionWithoutTreeFails(t *testing.T) {
	lk := New(Options{Files: fakeFiles{"./b": "src/b.ts"}})

	_, err := lk.LoadAddress("./b", "src/a.ts", strLit("./b"), NewState())
	var configErr *errors.ConfigMissingError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "config-missing", configErr.Kind())
}

func TestRelativeResolutionOutsideTreeFails(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/a.ts": {"ServerScriptService", "a"}},
		Files: fakeFiles{"./b": "elsewhere/b.ts"},
	})

	_, err := lk.LoadAddress("./b", "src/a.ts", strLit("./b"), NewState())
	var configErr *errors.ConfigMissingError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Message(), "elsewhere/b.ts")
}

func TestServiceRootedAddress(t *testing.T) {
	lk := New(Options{
		Tree: fakeTree{
			"src/a.ts":           {"ServerScriptService", "a"},
			"src/shared/util.ts": {"ReplicatedStorage", "shared", "util"},
		},
		Files: fakeFiles{"shared/util": "src/shared/util.ts"},
	})

	addr, err := lk.LoadAddress("shared/util", "src/a.ts", strLit("shared/util"), NewState())
	require.NoError(t, err)
	assert.Equal(t,
		`TS.import(game:GetService("ReplicatedStorage"), "shared", "util")`,
		luaast.RenderExpr(addr))
}

func TestServiceRootedAddressWithSingleSegment(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/shared.ts": {"ReplicatedStorage"}},
		Files: fakeFiles{"shared": "src/shared.ts"},
	})

	addr, err := lk.LoadAddress("shared", "src/a.ts", strLit("shared"), NewState())
	require.NoError(t, err)
	assert.Equal(t, `TS.import(game:GetService("ReplicatedStorage"))`, luaast.RenderExpr(addr))
}

func TestUnrecognizedServiceIsItsOwnError(t *testing.T) {
	lk := New(Options{
		Tree:  fakeTree{"src/shady.ts": {"NotAService", "shady"}},
		Files: fakeFiles{"shady": "src/shady.ts"},
	})

	_, err := lk.LoadAddress("shady", "src/a.ts", strLit("shady"), NewState())
	var serviceErr *errors.InvalidServiceError
	require.ErrorAs(t, err, &serviceErr, "must be the invalid-service error, not a generic one")
	assert.Equal(t, "invalid-service", serviceErr.Kind())
	assert.Equal(t, "NotAService", serviceErr.Service)
}

func TestPackageIndexEntryDropsSegment(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@luaghini/pkg": "node_modules/@luaghini/pkg/lib/index.js"},
		Manifest: packageCache(t, "pkg", "lib/index.js"),
	})

	addr, err := lk.LoadAddress("@luaghini/pkg", "src/a.ts", strLit("@luaghini/pkg"), NewState())
	require.NoError(t, err)
	assert.Equal(t, `TS.getModule(script, "pkg")`, luaast.RenderExpr(addr))
}

func TestPackageNamedEntryKeepsSegment(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@luaghini/pkg": "node_modules/@luaghini/pkg/lib/core.js"},
		Manifest: packageCache(t, "pkg", "lib/core.js"),
	})

	addr, err := lk.LoadAddress("@luaghini/pkg", "src/a.ts", strLit("@luaghini/pkg"), NewState())
	require.NoError(t, err)
	assert.Equal(t, `TS.getModule(script, "pkg").core`, luaast.RenderExpr(addr))
}

func TestPackageEntryWithNonIdentifierNameUsesBrackets(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@luaghini/pkg": "node_modules/@luaghini/pkg/entry-point.js"},
		Manifest: packageCache(t, "pkg", "entry-point.js"),
	})

	addr, err := lk.LoadAddress("@luaghini/pkg", "src/a.ts", strLit("@luaghini/pkg"), NewState())
	require.NoError(t, err)
	assert.Equal(t, `TS.getModule(script, "pkg")["entry-point"]`, luaast.RenderExpr(addr))
}

func TestPackageOutsideScopeFails(t *testing.T) {
	lk := New(Options{
		Files:    fakeFiles{"@other/pkg": "node_modules/@other/pkg/index.js"},
		Manifest: packageCache(t, "pkg", "index.js"),
	})

	_, err := lk.LoadAddress("@other/pkg", "src/a.ts", strLit("@other/pkg"), NewState())
	var scopeErr *errors.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "invalid-scope", scopeErr.Kind())
}

func TestUnresolvedSpecifierCarriesItsText(t *testing.T) {
	lk := New(Options{Files: fakeFiles{}})

	_, err := lk.LoadAddress("./nowhere", "src/a.ts", strLit("./nowhere"), NewState())
	var notFound *errors.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "./nowhere", notFound.Specifier)
	assert.Contains(t, notFound.Message(), "install")
}
