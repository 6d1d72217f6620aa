package linker

import (
	"fmt"

	"luaghini/pkg/ast"
	"luaghini/pkg/luaast"
	"luaghini/pkg/manifest"
)

// RefKind discriminates the resolved identity of an imported module.
type RefKind int

const (
	// RefUnresolved is a specifier with no backing file. Always an error.
	RefUnresolved RefKind = iota
	// RefRelativeFile is a file within the project.
	RefRelativeFile
	// RefScopedPackage is a file under the managed third-party directory.
	RefScopedPackage
)

// ModuleReference is the resolved identity of an imported module. Immutable
// once computed; built fresh per declaration.
type ModuleReference struct {
	Kind      RefKind
	Specifier string // raw specifier text as written
	FilePath  string // resolved backing file, slash-separated

	// Anchored is true when the specifier was written relative to the
	// importing file (`./`, `../`). A project file reached through a bare
	// path instead is only addressable from the runtime tree's root.
	Anchored bool

	// Package form only.
	Scope   string
	Package string
	SubPath string
}

// BindingKind classifies one imported or exported name.
type BindingKind int

const (
	BindingDefault BindingKind = iota
	BindingNamespace
	BindingNamed
	BindingSideEffect
	BindingEqualsAlias
)

// Binding is one name introduced by an import declaration, after
// classification. Transient; constructed and discarded within a single
// declaration's compilation.
type Binding struct {
	Kind          BindingKind
	SourceName    string // name in the source module ("default" for default imports)
	LocalAlias    string // name bound locally
	TypeOnly      bool   // never referenced as a value in this unit
	MutableSource bool   // originating declaration is reassignable
	Node          ast.Node
}

// Result is the explicit outcome of compiling one declaration. The unit
// driver folds it into the State; nothing mutates unit-level flags from
// inside a declaration compiler.
type Result struct {
	Stmts       []luaast.Stmt
	UsesRuntime bool
	IsModule    bool
	Aliases     map[string]luaast.Expr
}

func newResult() *Result {
	return &Result{Aliases: make(map[string]luaast.Expr)}
}

func (r *Result) setAlias(name string, expr luaast.Expr) {
	r.Aliases[name] = expr
}

// ExportTableName is the identifier of a compiled unit's export table.
const ExportTableName = "_exports"

// DefaultExportSlot is the export-table field holding the default export.
const DefaultExportSlot = "default"

// State is the mutable compilation state threaded through every declaration
// of a unit, in source order. Later declarations read aliases registered by
// earlier ones.
type State struct {
	nextLocal    int
	aliases      map[string]luaast.Expr
	exportTables []string

	Indent      int
	IsModule    bool
	UsesRuntime bool
}

// NewState creates the state for one compilation unit.
func NewState() *State {
	return &State{
		aliases:      make(map[string]luaast.Expr),
		exportTables: []string{ExportTableName},
	}
}

// FreshLocal returns the next fresh local name: _0, _1, ...
func (s *State) FreshLocal() string {
	name := fmt.Sprintf("_%d", s.nextLocal)
	s.nextLocal++
	return name
}

// Alias returns the registered access expression for a logical name.
func (s *State) Alias(name string) (luaast.Expr, bool) {
	expr, ok := s.aliases[name]
	return expr, ok
}

// SetAlias registers the access expression later statements should use for
// a logical name.
func (s *State) SetAlias(name string, expr luaast.Expr) {
	s.aliases[name] = expr
}

// ExportTable returns the identifier of the innermost enclosing export
// table, or false when there is no export context at all.
func (s *State) ExportTable() (string, bool) {
	if len(s.exportTables) == 0 {
		return "", false
	}
	return s.exportTables[len(s.exportTables)-1], true
}

// PushExportTable enters a nested namespace's export table.
func (s *State) PushExportTable(name string) {
	s.exportTables = append(s.exportTables, name)
}

// PopExportTable leaves the innermost export table.
func (s *State) PopExportTable() {
	if len(s.exportTables) > 0 {
		s.exportTables = s.exportTables[:len(s.exportTables)-1]
	}
}

// Fold merges one declaration's result into the unit state.
func (s *State) Fold(res *Result) {
	s.UsesRuntime = s.UsesRuntime || res.UsesRuntime
	s.IsModule = s.IsModule || res.IsModule
	for name, expr := range res.Aliases {
		s.aliases[name] = expr
	}
}

// Facts is the precomputed usage classification supplied by the upstream
// type checker: whether a name has a runtime value at all, whether a source
// binding is reassignable, and whether a module's entire surface is a
// single default/equals export.
type Facts interface {
	ValueUsed(name string) bool
	MutableOrigin(modulePath, name string) bool
	SoleExport(modulePath string) bool
}

// StaticFacts is the map-backed Facts implementation used by the driver
// and by tests.
type StaticFacts struct {
	ValueUsedNames    map[string]bool
	MutableNames      map[string]map[string]bool // module path -> reassignable names
	SoleExportModules map[string]bool
}

func (f *StaticFacts) ValueUsed(name string) bool {
	return f.ValueUsedNames[name]
}

func (f *StaticFacts) MutableOrigin(modulePath, name string) bool {
	return f.MutableNames[modulePath][name]
}

func (f *StaticFacts) SoleExport(modulePath string) bool {
	return f.SoleExportModules[modulePath]
}

// valueFacts is the default when no checker facts are supplied: everything
// is value-used, nothing is reassignable or sole-export. Conservative in
// the direction of emitting bindings rather than dropping them.
type valueFacts struct{}

func (valueFacts) ValueUsed(string) bool             { return true }
func (valueFacts) MutableOrigin(string, string) bool { return false }
func (valueFacts) SoleExport(string) bool            { return false }

// TreeMapper gives a compiled file's position in the runtime tree.
// Implemented by project.Tree.
type TreeMapper interface {
	Resolve(fsPath string) []string
}

// FileResolver maps an import specifier to its backing source file.
// Implemented by project.FileResolver.
type FileResolver interface {
	Resolve(specifier string, fromPath string) (string, error)
}

// ExprCompiler compiles arbitrary value expressions; used only for
// export-assignment right-hand sides. Prelude statements carry any
// side-effecting temporaries the expression needs, emitted immediately
// before the assignment.
type ExprCompiler interface {
	CompileExpr(expr ast.Expr, st *State) (luaast.Expr, []luaast.Stmt, error)
}

// Options wires the linker to its collaborators.
type Options struct {
	Tree     TreeMapper
	Files    FileResolver
	Manifest *manifest.Cache
	Facts    Facts
	Exprs    ExprCompiler

	ModulesDir string // managed third-party directory, default "node_modules"
	Scope      string // recognized package scope marker, default "@luaghini"

	// AlwaysMaterialize forces a binding to be emitted even when it looks
	// type-only; downstream codegen depends on its runtime presence.
	AlwaysMaterialize func(name string) bool
}

// DefaultAlwaysMaterialize is the stock always-materialize predicate: the
// single well-known UI-framework import whose presence downstream codegen
// keys on.
func DefaultAlwaysMaterialize(name string) bool {
	return name == "Roact"
}
