package linker

import (
	"fmt"

	"luaghini/pkg/ast"
	"luaghini/pkg/errors"
	"luaghini/pkg/luaast"
)

// compileImport handles every `import ... from "m"` form: classify which
// bindings exist at runtime, resolve the module's load address, plan the
// locals, and emit.
func (l *Linker) compileImport(d *ast.ImportDeclaration, fromPath string, st *State) (*Result, error) {
	res := newResult()

	// No bindings at all: a side-effect import. The address is still
	// resolved and evaluated.
	if len(d.Specifiers) == 0 {
		ref, err := l.resolveReference(d.Source.Value, fromPath, d)
		if err != nil {
			return nil, err
		}
		addr, err := l.addressOf(ref, fromPath, d)
		if err != nil {
			return nil, err
		}
		res.Stmts = append(res.Stmts, &luaast.ExprStmt{X: addr})
		res.UsesRuntime = true
		return res, nil
	}

	bindings := l.classifyImportBindings(d)
	if len(bindings) == 0 {
		// Every binding is type-only; the whole declaration vanishes.
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

	for i := range bindings {
		b := &bindings[i]
		if b.Kind == BindingNamed {
			b.MutableSource = l.opts.Facts.MutableOrigin(ref.FilePath, b.SourceName)
		}
		if luaast.IsReserved(b.LocalAlias) {
			return nil, &errors.ReservedIdentError{
				Position: b.Node.Pos(),
				Ident:    b.LocalAlias,
				Msg:      fmt.Sprintf("%q is reserved in Lua and cannot be used as a binding name", b.LocalAlias),
			}
		}
	}

	l.emitBindings(res, bindings, addr, ref, st)
	return res, nil
}

// classifyImportBindings turns a declaration's specifiers into runtime
// bindings, dropping the ones with no runtime representation. A type-only
// binding survives only when the always-materialize predicate claims it.
func (l *Linker) classifyImportBindings(d *ast.ImportDeclaration) []Binding {
	var kept []Binding
	for _, spec := range d.Specifiers {
		var b Binding
		switch s := spec.(type) {
		case *ast.ImportDefaultSpecifier:
			b = Binding{Kind: BindingDefault, SourceName: DefaultExportSlot, LocalAlias: s.Local.Value, Node: s}
		case *ast.ImportNamespaceSpecifier:
			b = Binding{Kind: BindingNamespace, LocalAlias: s.Local.Value, Node: s}
		case *ast.ImportNamedSpecifier:
			b = Binding{Kind: BindingNamed, SourceName: s.Imported.Value, LocalAlias: s.Local.Value, Node: s}
			b.TypeOnly = s.IsTypeOnly
		default:
			continue
		}
		if d.IsTypeOnly || !l.opts.Facts.ValueUsed(b.LocalAlias) {
			b.TypeOnly = true
		}
		if b.TypeOnly && !l.opts.AlwaysMaterialize(b.LocalAlias) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// bindingRHS derives one binding's value from a base expression (either
// the load address itself or the shared local bound to it).
func (l *Linker) bindingRHS(b *Binding, base luaast.Expr, ref *ModuleReference) luaast.Expr {
	switch b.Kind {
	case BindingNamespace, BindingEqualsAlias:
		return base
	case BindingDefault:
		// A module whose entire surface is one default/equals export is
		// its own default value; anything else keeps the default slot.
		if l.opts.Facts.SoleExport(ref.FilePath) {
			return base
		}
		return luaast.Access(base, DefaultExportSlot)
	default:
		return luaast.Access(base, b.SourceName)
	}
}

// emitBindings plans and emits the bindings for one resolved address.
//
// A single immutable binding takes the address directly as its right-hand
// side. Otherwise one shared fresh local is bound to the address once and
// every binding derives from it: immutable bindings as a single
// destructuring-style local line, mutable-origin bindings as registered
// aliases only, so every later use re-reads the live module table instead
// of a stale copy.
func (l *Linker) emitBindings(res *Result, bindings []Binding, addr luaast.Expr, ref *ModuleReference, st *State) {
	needShared := len(bindings) >= 2
	for i := range bindings {
		if bindings[i].MutableSource {
			needShared = true
		}
	}

	if !needShared {
		b := &bindings[0]
		res.Stmts = append(res.Stmts, &luaast.Local{
			Names:  []string{b.LocalAlias},
			Values: []luaast.Expr{l.bindingRHS(b, addr, ref)},
		})
		res.setAlias(b.LocalAlias, &luaast.Ident{Name: b.LocalAlias})
		return
	}

	shared := st.FreshLocal()
	sharedRef := &luaast.Ident{Name: shared}
	res.Stmts = append(res.Stmts, &luaast.Local{
		Names:  []string{shared},
		Values: []luaast.Expr{addr},
	})

	var names []string
	var values []luaast.Expr
	for i := range bindings {
		b := &bindings[i]
		rhs := l.bindingRHS(b, sharedRef, ref)
		if b.MutableSource {
			res.setAlias(b.LocalAlias, rhs)
			continue
		}
		names = append(names, b.LocalAlias)
		values = append(values, rhs)
		res.setAlias(b.LocalAlias, &luaast.Ident{Name: b.LocalAlias})
	}
	if len(names) > 0 {
		res.Stmts = append(res.Stmts, &luaast.Local{Names: names, Values: values})
	}
}

// compileImportEquals handles the legacy alias form, binding the whole
// module value to a single name.
func (l *Linker) compileImportEquals(d *ast.ImportEqualsDeclaration, fromPath string, st *State) (*Result, error) {
	res := newResult()
	name := d.Name.Value

	if !l.opts.Facts.ValueUsed(name) && !l.opts.AlwaysMaterialize(name) {
		return res, nil
	}
	if luaast.IsReserved(name) {
		return nil, &errors.ReservedIdentError{
			Position: d.Name.Pos(),
			Ident:    name,
			Msg:      fmt.Sprintf("%q is reserved in Lua and cannot be used as a binding name", name),
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

	res.Stmts = append(res.Stmts, &luaast.Local{
		Names:  []string{name},
		Values: []luaast.Expr{addr},
	})
	res.setAlias(name, &luaast.Ident{Name: name})
	res.UsesRuntime = true
	return res, nil
}
