package ast

import "luaghini/pkg/errors"

// This package defines the declaration-level syntax nodes the linkage layer
// consumes. The front end owns the full grammar; it hands these nodes over
// already parsed and type-checked, in source order. Nothing here is ever
// constructed from raw text inside this module.

// Node is implemented by every syntax node.
type Node interface {
	Pos() errors.Position
}

// Expr is a value expression. The linkage layer treats expressions as opaque
// except for plain identifier references (needed to elide type-only export
// assignments); everything else is delegated to the expression compiler.
type Expr interface {
	Node
	exprNode()
}

// Decl is a module-level declaration the linker knows how to compile.
type Decl interface {
	Node
	declNode()
}

// --- Expressions ---

// Identifier is a plain name reference.
type Identifier struct {
	Span  errors.Position
	Value string
}

func (i *Identifier) Pos() errors.Position { return i.Span }
func (i *Identifier) exprNode()            {}

// StringLiteral holds an (already unquoted) string literal.
type StringLiteral struct {
	Span  errors.Position
	Value string
}

func (s *StringLiteral) Pos() errors.Position { return s.Span }
func (s *StringLiteral) exprNode()            {}

// --- Import declarations ---

// ImportSpecifier is one binding requested by an import declaration.
type ImportSpecifier interface {
	Node
	importSpecifier()
}

// ImportDefaultSpecifier binds a module's default export:
// import Local from "m"
type ImportDefaultSpecifier struct {
	Span  errors.Position
	Local *Identifier
}

func (s *ImportDefaultSpecifier) Pos() errors.Position { return s.Span }
func (s *ImportDefaultSpecifier) importSpecifier()     {}

// ImportNamespaceSpecifier binds the whole module value:
// import * as Local from "m"
type ImportNamespaceSpecifier struct {
	Span  errors.Position
	Local *Identifier
}

func (s *ImportNamespaceSpecifier) Pos() errors.Position { return s.Span }
func (s *ImportNamespaceSpecifier) importSpecifier()     {}

// ImportNamedSpecifier binds one named export, optionally renamed:
// import { Imported as Local } from "m"
type ImportNamedSpecifier struct {
	Span       errors.Position
	Imported   *Identifier
	Local      *Identifier // same as Imported when no alias was written
	IsTypeOnly bool        // import { type Imported } from "m"
}

func (s *ImportNamedSpecifier) Pos() errors.Position { return s.Span }
func (s *ImportNamedSpecifier) importSpecifier()     {}

// ImportDeclaration covers every `import ... from "m"` form. An empty
// Specifiers slice is a bare side-effect import (`import "m"`).
type ImportDeclaration struct {
	Span       errors.Position
	Specifiers []ImportSpecifier
	Source     *StringLiteral
	IsTypeOnly bool              // import type { ... } from "m"
	Attributes map[string]string // import attributes; carried for parity, no runtime representation
}

func (d *ImportDeclaration) Pos() errors.Position { return d.Span }
func (d *ImportDeclaration) declNode()            {}

// ImportEqualsDeclaration is the legacy alias form:
// import Name = require("m")
type ImportEqualsDeclaration struct {
	Span   errors.Position
	Name   *Identifier
	Source *StringLiteral
}

func (d *ImportEqualsDeclaration) Pos() errors.Position { return d.Span }
func (d *ImportEqualsDeclaration) declNode()            {}

// --- Export declarations ---

// ExportNamedSpecifier is one entry of an export list:
// export { Local as Exported }
type ExportNamedSpecifier struct {
	Span       errors.Position
	Local      *Identifier
	Exported   *Identifier // same as Local when no alias was written
	IsTypeOnly bool
}

func (s *ExportNamedSpecifier) Pos() errors.Position { return s.Span }

// ExportNamedDeclaration is an export list, with or without a source:
// export { a, b }            (Source == nil, exports locals)
// export { a, b } from "m"   (Source != nil, re-export)
type ExportNamedDeclaration struct {
	Span       errors.Position
	Specifiers []*ExportNamedSpecifier
	Source     *StringLiteral
	IsTypeOnly bool // export type { ... }
}

func (d *ExportNamedDeclaration) Pos() errors.Position { return d.Span }
func (d *ExportNamedDeclaration) declNode()            {}

// ExportAllDeclaration re-exports a whole module:
// export * from "m"
type ExportAllDeclaration struct {
	Span   errors.Position
	Source *StringLiteral
}

func (d *ExportAllDeclaration) Pos() errors.Position { return d.Span }
func (d *ExportAllDeclaration) declNode()            {}

// ExportAssignment covers both assignment-style export forms:
// export = expr          (IsExportEquals)
// export default expr
type ExportAssignment struct {
	Span           errors.Position
	Expression     Expr
	IsExportEquals bool
}

func (d *ExportAssignment) Pos() errors.Position { return d.Span }
func (d *ExportAssignment) declNode()            {}
