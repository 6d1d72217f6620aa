package project

import (
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Tree is the immutable runtime-tree index built from a Config. It answers
// the one question the linkage layer needs: where does a compiled file live
// in the runtime hierarchy. Safe for concurrent use once built.
type Tree struct {
	anchors    []anchor // sorted longest-path-first
	modulesDir string
	scope      string
	logger     *zap.Logger
}

// anchor ties one configured filesystem directory to its runtime segments.
type anchor struct {
	dir      string   // cleaned, slash-separated directory path
	segments []string // runtime path of the node, root-exclusive
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger attaches a logger; resolution events are logged at debug level.
func WithLogger(logger *zap.Logger) TreeOption {
	return func(t *Tree) { t.logger = logger }
}

// NewTree builds the runtime-tree index from a parsed config.
func NewTree(cfg *Config, opts ...TreeOption) *Tree {
	t := &Tree{
		modulesDir: cfg.ModulesDir,
		scope:      cfg.Scope,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	// The root node is the runtime tree itself, so its own name never
	// appears in a segment path.
	collectAnchors(cfg.Tree, nil, &t.anchors)

	// Longest directory first, so the deepest anchor wins for nested paths.
	sort.Slice(t.anchors, func(i, j int) bool {
		return len(t.anchors[i].dir) > len(t.anchors[j].dir)
	})
	return t
}

func collectAnchors(node *TreeNode, prefix []string, out *[]anchor) {
	if node.Path != "" {
		segments := make([]string, len(prefix))
		copy(segments, prefix)
		*out = append(*out, anchor{dir: path.Clean(node.Path), segments: segments})
	}
	for _, child := range node.Children {
		childPrefix := append(append([]string(nil), prefix...), child.Name)
		collectAnchors(child, childPrefix, out)
	}
}

// ModulesDir returns the managed third-party directory.
func (t *Tree) ModulesDir() string { return t.modulesDir }

// Scope returns the recognized package scope marker.
func (t *Tree) Scope() string { return t.scope }

// Resolve maps a filesystem path to the file's runtime-tree position as a
// sequence of named segments, or nil when the file lies outside every
// configured directory. A file whose extension-stripped basename is the
// reserved index name occupies its directory's node directly.
func (t *Tree) Resolve(fsPath string) []string {
	cleaned := path.Clean(strings.ReplaceAll(fsPath, "\\", "/"))

	for _, a := range t.anchors {
		rel, ok := relativeTo(cleaned, a.dir)
		if !ok {
			continue
		}
		segments := append([]string(nil), a.segments...)
		parts := strings.Split(rel, "/")
		for _, dir := range parts[:len(parts)-1] {
			segments = append(segments, dir)
		}
		if base := StripModuleExt(parts[len(parts)-1]); base != IndexName {
			segments = append(segments, base)
		}
		t.logger.Debug("resolved runtime path",
			zap.String("file", fsPath),
			zap.Strings("segments", segments))
		return segments
	}

	t.logger.Debug("file outside project tree", zap.String("file", fsPath))
	return nil
}

func relativeTo(p, dir string) (string, bool) {
	if p == dir {
		return "", false // a directory itself has no file position
	}
	if !strings.HasPrefix(p, dir+"/") {
		return "", false
	}
	return p[len(dir)+1:], true
}

// IndexName is the reserved basename designating a directory's own module.
const IndexName = "index"

// StripModuleExt removes a module filename's extension, including the
// two-part declaration extension.
func StripModuleExt(name string) string {
	for _, ext := range []string{".d.ts", ".tsx", ".ts", ".js", ".jsx", ".lua"} {
		if strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
