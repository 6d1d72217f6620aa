package linker

import (
	"luaghini/pkg/ast"
	"luaghini/pkg/errors"
	"luaghini/pkg/luaast"
)

// compileExportAll handles `export * from "m"`. Namespace re-exports are
// always runtime-relevant: every exported field of the referenced module is
// merged into the enclosing export table.
func (l *Linker) compileExportAll(d *ast.ExportAllDeclaration, fromPath string, st *State) (*Result, error) {
	res := newResult()

	table, ok := st.ExportTable()
	if !ok {
		return nil, &errors.ExportContextError{
			Position: d.Pos(),
			Msg:      "export declaration outside any module, namespace, or file context",
		}
	}

	ref, err := l.resolveReference(d.Source.Value, fromPath, d)
	if err != nil {
		return nil, err
	}
	addr, err := l.addressOf(ref, fromPath, d)
	if err != nil {
		return nil, err
	}

	res.Stmts = append(res.Stmts, &luaast.ExprStmt{
		X: runtimeCall(exportNamespaceFn, addr, &luaast.Ident{Name: table}),
	})
	res.UsesRuntime = true
	res.IsModule = true
	return res, nil
}

// compileExportNamed handles export lists, both the re-export form
// (`export { a } from "m"`) and the local form (`export { a }`). Type-only
// names are filtered first; a list that empties out emits nothing.
func (l *Linker) compileExportNamed(d *ast.ExportNamedDeclaration, fromPath string, st *State) (*Result, error) {
	res := newResult()

	var kept []*ast.ExportNamedSpecifier
	for _, s := range d.Specifiers {
		if d.IsTypeOnly || s.IsTypeOnly || !l.opts.Facts.ValueUsed(s.Local.Value) {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return res, nil
	}

	table, ok := st.ExportTable()
	if !ok {
		return nil, &errors.ExportContextError{
			Position: d.Pos(),
			Msg:      "export declaration outside any module, namespace, or file context",
		}
	}
	tableRef := &luaast.Ident{Name: table}
	res.IsModule = true

	if d.Source == nil {
		// Exporting local declarations: each name's value is whatever
		// access expression earlier statements registered for it.
		for _, s := range kept {
			rhs, ok := st.Alias(s.Local.Value)
			if !ok {
				rhs = &luaast.Ident{Name: s.Local.Value}
			}
			res.Stmts = append(res.Stmts, &luaast.Assign{
				Target: exportSlot(tableRef, s.Exported.Value),
				Value:  rhs,
			})
		}
		return res, nil
	}

	ref, err := l.resolveReference(d.Source.Value, fromPath, d)
	if err != nil {
		return nil, err
	}
	addr, err := l.addressOf(ref, fromPath, d)
	if err != nil {
		return nil, err
	}
	res.UsesRuntime = true

	// Two or more names drawn from the same address share one local bound
	// to it; a single name reads the address directly.
	base := addr
	if len(kept) >= 2 {
		shared := st.FreshLocal()
		res.Stmts = append(res.Stmts, &luaast.Local{
			Names:  []string{shared},
			Values: []luaast.Expr{addr},
		})
		base = &luaast.Ident{Name: shared}
	}

	for _, s := range kept {
		res.Stmts = append(res.Stmts, &luaast.Assign{
			Target: exportSlot(tableRef, s.Exported.Value),
			Value:  luaast.Access(base, s.Local.Value),
		})
	}
	return res, nil
}

// exportSlot picks the export-table field for an exported name, sending
// default-named exports to the dedicated default slot.
func exportSlot(table luaast.Expr, exported string) luaast.Expr {
	if exported == "default" {
		return luaast.Access(table, DefaultExportSlot)
	}
	return luaast.Access(table, exported)
}

// compileExportAssignment handles `export = expr` and `export default
// expr`. Either form marks the unit as a module; a plain reference to a
// type-only name is elided entirely.
func (l *Linker) compileExportAssignment(d *ast.ExportAssignment, fromPath string, st *State) (*Result, error) {
	res := newResult()
	res.IsModule = true

	if id, ok := d.Expression.(*ast.Identifier); ok && !l.opts.Facts.ValueUsed(id.Value) {
		return res, nil
	}

	table, ok := st.ExportTable()
	if !ok {
		return nil, &errors.ExportContextError{
			Position: d.Pos(),
			Msg:      "export assignment outside any module, namespace, or file context",
		}
	}

	if l.opts.Exprs == nil {
		return nil, &errors.ExportContextError{
			Position: d.Pos(),
			Msg:      "no expression compiler is configured for export assignments",
		}
	}

	value, prelude, err := l.opts.Exprs.CompileExpr(d.Expression, st)
	if err != nil {
		return nil, err
	}

	var target luaast.Expr
	if d.IsExportEquals {
		// The module's entire surface is this single value.
		target = &luaast.Ident{Name: table}
	} else {
		target = luaast.Access(&luaast.Ident{Name: table}, DefaultExportSlot)
	}

	res.Stmts = append(res.Stmts, prelude...)
	res.Stmts = append(res.Stmts, &luaast.Assign{Target: target, Value: value})
	return res, nil
}
