package linker

import (
	"fmt"

	"luaghini/pkg/ast"
	"luaghini/pkg/luaast"
)

// Linker compiles the import/export surface of a compilation unit into
// Lua statements. A Linker is stateless between declarations; everything
// mutable lives in the State threaded through the calls.
type Linker struct {
	opts Options
}

// New creates a linker. Zero-value option fields get the standard layout
// defaults; a nil Facts emits every binding.
func New(opts Options) *Linker {
	if opts.ModulesDir == "" {
		opts.ModulesDir = "node_modules"
	}
	if opts.Scope == "" {
		opts.Scope = "@luaghini"
	}
	if opts.AlwaysMaterialize == nil {
		opts.AlwaysMaterialize = DefaultAlwaysMaterialize
	}
	if opts.Facts == nil {
		opts.Facts = valueFacts{}
	}
	return &Linker{opts: opts}
}

// CompileDeclaration compiles one declaration of the unit at fromPath. The
// result is not folded into the state; the caller decides when (CompileUnit
// folds in source order). Any failure is terminal for the declaration and
// surfaced as-is.
func (l *Linker) CompileDeclaration(decl ast.Decl, fromPath string, st *State) (*Result, error) {
	switch d := decl.(type) {
	case *ast.ImportDeclaration:
		return l.compileImport(d, fromPath, st)
	case *ast.ImportEqualsDeclaration:
		return l.compileImportEquals(d, fromPath, st)
	case *ast.ExportNamedDeclaration:
		return l.compileExportNamed(d, fromPath, st)
	case *ast.ExportAllDeclaration:
		return l.compileExportAll(d, fromPath, st)
	case *ast.ExportAssignment:
		return l.compileExportAssignment(d, fromPath, st)
	default:
		return nil, fmt.Errorf("unsupported declaration type: %T", decl)
	}
}

// CompileUnit compiles a unit's declarations in source order, folding each
// result into the state so later declarations see earlier aliases, and
// renders the emitted statements at the state's indentation level.
func (l *Linker) CompileUnit(decls []ast.Decl, fromPath string, st *State) (string, error) {
	var stmts []luaast.Stmt
	for _, decl := range decls {
		res, err := l.CompileDeclaration(decl, fromPath, st)
		if err != nil {
			return "", err
		}
		st.Fold(res)
		stmts = append(stmts, res.Stmts...)
	}
	return luaast.RenderStmts(stmts, st.Indent), nil
}
