package linker

import (
	"fmt"
	"path"
	"strings"

	"luaghini/pkg/ast"
	"luaghini/pkg/errors"
	"luaghini/pkg/luaast"
	"luaghini/pkg/project"
)

// Target-language surface the generated addresses are built from. The
// runtime helper table is emitted into every output program by the
// surrounding driver; addresses produced here assume it exists.
const (
	runtimeTable      = "TS"
	importFn          = "import"
	getModuleFn       = "getModule"
	exportNamespaceFn = "exportNamespace"
	selfToken         = "script"
	parentField       = "Parent"
	gameToken         = "game"
	getServiceMethod  = "GetService"
)

func runtimeCall(fn string, args ...luaast.Expr) *luaast.Call {
	return &luaast.Call{
		Fn:   &luaast.Field{Object: &luaast.Ident{Name: runtimeTable}, Name: fn},
		Args: args,
	}
}

// resolveReference maps a raw specifier to the identity of the module it
// names. Failure to find any backing file is a module-not-found error
// carrying the specifier text.
func (l *Linker) resolveReference(specifier string, fromPath string, node ast.Node) (*ModuleReference, error) {
	anchored := strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")

	if l.opts.Files == nil {
		return nil, &errors.ModuleNotFoundError{
			Position:  node.Pos(),
			Specifier: specifier,
			Msg:       fmt.Sprintf("cannot resolve %q: no file resolver is configured", specifier),
		}
	}

	filePath, err := l.opts.Files.Resolve(specifier, fromPath)
	if err != nil {
		return nil, (&errors.ModuleNotFoundError{
			Position:  node.Pos(),
			Specifier: specifier,
			Msg:       fmt.Sprintf("cannot find module %q; did you forget to install the dependency?", specifier),
		}).CausedBy(err)
	}

	modulesPrefix := l.opts.ModulesDir + "/"
	if !anchored && strings.HasPrefix(filePath, modulesPrefix) {
		return l.packageReference(specifier, filePath, filePath[len(modulesPrefix):], node)
	}

	return &ModuleReference{
		Kind:      RefRelativeFile,
		Specifier: specifier,
		FilePath:  filePath,
		Anchored:  anchored,
	}, nil
}

// packageReference shapes a file under the managed directory into a scoped
// package identity. The first path segment must be the recognized scope
// marker.
func (l *Linker) packageReference(specifier, filePath, rel string, node ast.Node) (*ModuleReference, error) {
	parts := strings.Split(rel, "/")
	if len(parts) < 2 || parts[0] != l.opts.Scope {
		return nil, &errors.InvalidScopeError{
			Position: node.Pos(),
			Msg: fmt.Sprintf("module %q resolves outside the %s package scope",
				specifier, l.opts.Scope),
		}
	}
	return &ModuleReference{
		Kind:      RefScopedPackage,
		Specifier: specifier,
		FilePath:  filePath,
		Scope:     parts[0],
		Package:   parts[1],
		SubPath:   strings.Join(parts[2:], "/"),
	}, nil
}

// addressOf produces the load expression for a resolved reference, picking
// the scheme by reference shape.
func (l *Linker) addressOf(ref *ModuleReference, fromPath string, node ast.Node) (luaast.Expr, error) {
	switch {
	case ref.Kind == RefScopedPackage:
		return l.packageAddress(ref, node)
	case ref.Anchored:
		return l.relativeAddress(ref, fromPath, node)
	default:
		return l.serviceAddress(ref, node)
	}
}

// relativeAddress navigates from the importing file's own runtime node to
// the imported file's node: strip the common leading segments, ascend one
// parent per remaining importer segment, then descend by name.
func (l *Linker) relativeAddress(ref *ModuleReference, fromPath string, node ast.Node) (luaast.Expr, error) {
	to, err := l.treePath(ref.FilePath, node)
	if err != nil {
		return nil, err
	}
	from, err := l.treePath(fromPath, node)
	if err != nil {
		return nil, err
	}

	common := 0
	for common < len(to) && common < len(from) && to[common] == from[common] {
		common++
	}

	var nav luaast.Expr = &luaast.Ident{Name: selfToken}
	for i := common; i < len(from); i++ {
		nav = &luaast.Field{Object: nav, Name: parentField}
	}

	args := []luaast.Expr{nav}
	for _, seg := range to[common:] {
		args = append(args, &luaast.String{Value: seg})
	}
	return runtimeCall(importFn, args...), nil
}

// packageAddress loads a managed package by name. The manifest's entry file
// contributes a trailing accessor unless it is the reserved index module;
// manifest directories are publish-layout detail and never contribute.
func (l *Linker) packageAddress(ref *ModuleReference, node ast.Node) (luaast.Expr, error) {
	if l.opts.Manifest == nil {
		return nil, &errors.ConfigMissingError{
			Position: node.Pos(),
			Msg:      "no package manifest cache is configured",
		}
	}

	pkgRoot := path.Join(l.opts.ModulesDir, ref.Scope, ref.Package)
	entry, err := l.opts.Manifest.EntryPoint(ref.Package, pkgRoot)
	if err != nil {
		return nil, err
	}

	var addr luaast.Expr = runtimeCall(getModuleFn,
		&luaast.Ident{Name: selfToken},
		&luaast.String{Value: ref.Package})

	if base := project.StripModuleExt(path.Base(entry)); base != project.IndexName {
		addr = luaast.Access(addr, base)
	}
	return addr, nil
}

// serviceAddress loads a project file that is only reachable from the
// runtime tree's absolute root. The first segment must name a recognized
// service.
func (l *Linker) serviceAddress(ref *ModuleReference, node ast.Node) (luaast.Expr, error) {
	segments, err := l.treePath(ref.FilePath, node)
	if err != nil {
		return nil, err
	}

	if !project.IsService(segments[0]) {
		return nil, &errors.InvalidServiceError{
			Position: node.Pos(),
			Service:  segments[0],
			Msg:      fmt.Sprintf("%q is not a recognized runtime service", segments[0]),
		}
	}

	root := &luaast.MethodCall{
		Object: &luaast.Ident{Name: gameToken},
		Method: getServiceMethod,
		Args:   []luaast.Expr{&luaast.String{Value: segments[0]}},
	}

	args := []luaast.Expr{root}
	for _, seg := range segments[1:] {
		args = append(args, &luaast.String{Value: seg})
	}
	return runtimeCall(importFn, args...), nil
}

// treePath maps a file to its runtime-tree segments, failing with a
// configuration error when no project tree is available or the file lies
// outside it.
func (l *Linker) treePath(fsPath string, node ast.Node) ([]string, error) {
	if l.opts.Tree == nil {
		return nil, &errors.ConfigMissingError{
			Position: node.Pos(),
			Msg:      "no project tree is configured; cannot map files to the runtime hierarchy",
		}
	}
	segments := l.opts.Tree.Resolve(fsPath)
	if len(segments) == 0 {
		return nil, &errors.ConfigMissingError{
			Position: node.Pos(),
			Msg:      fmt.Sprintf("%s is not part of the project tree", fsPath),
		}
	}
	return segments, nil
}

// LoadAddress resolves a specifier all the way to its load expression. This
// is the address resolver's public surface, used by the declaration
// compilers and by resolution tooling.
func (l *Linker) LoadAddress(specifier string, fromPath string, node ast.Node, st *State) (luaast.Expr, error) {
	ref, err := l.resolveReference(specifier, fromPath, node)
	if err != nil {
		return nil, err
	}
	addr, err := l.addressOf(ref, fromPath, node)
	if err != nil {
		return nil, err
	}
	st.UsesRuntime = true
	return addr, nil
}
