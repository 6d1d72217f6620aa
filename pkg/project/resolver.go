package project

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"
)

// FileResolver maps import specifiers to concrete source files. It is the
// upstream file-resolution collaborator of the linkage layer: relative
// specifiers resolve against the importing file, bare specifiers resolve
// under the managed modules directory, and project-absolute specifiers
// resolve from the project root.
type FileResolver struct {
	fsys       fs.FS
	modulesDir string
	extensions []string
	indexFiles []string
	logger     *zap.Logger
}

// ResolverOption configures a FileResolver.
type ResolverOption func(*FileResolver)

// WithResolverLogger attaches a logger for resolution events.
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *FileResolver) { r.logger = logger }
}

// NewFileResolver creates a resolver over the given file system. Paths are
// slash-separated and relative to the file system root; modulesDir is where
// bare specifiers are looked up.
func NewFileResolver(fsys fs.FS, modulesDir string, opts ...ResolverOption) *FileResolver {
	r := &FileResolver{
		fsys:       fsys,
		modulesDir: modulesDir,
		extensions: []string{".ts", ".tsx", ".d.ts"},
		indexFiles: []string{"index.ts", "index.tsx", "index.d.ts"},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewOSFileResolver creates a resolver rooted at an OS directory.
func NewOSFileResolver(rootDir, modulesDir string, opts ...ResolverOption) *FileResolver {
	return NewFileResolver(os.DirFS(rootDir), modulesDir, opts...)
}

// Resolve maps a specifier, imported from the file at fromPath, to the
// path of the backing source file. The returned path is relative to the
// resolver's file system root.
func (r *FileResolver) Resolve(specifier string, fromPath string) (string, error) {
	target, err := r.targetPath(specifier, fromPath)
	if err != nil {
		return "", err
	}

	resolved, err := r.probe(target)
	if err != nil {
		r.logger.Debug("specifier did not resolve",
			zap.String("specifier", specifier),
			zap.String("from", fromPath),
			zap.Error(err))
		return "", err
	}

	r.logger.Debug("resolved specifier",
		zap.String("specifier", specifier),
		zap.String("file", resolved))
	return resolved, nil
}

func (r *FileResolver) targetPath(specifier string, fromPath string) (string, error) {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		if fromPath == "" {
			return "", fmt.Errorf("relative import %s requires an importing file", specifier)
		}
		return path.Join(path.Dir(fromPath), specifier), nil
	}
	if strings.HasPrefix(specifier, "/") {
		// Project-absolute: resolved from the file system root.
		return strings.TrimPrefix(specifier, "/"), nil
	}
	// Bare specifier: a managed package (or a file inside one).
	return path.Join(r.modulesDir, specifier), nil
}

// probe tries a target path with the usual strategies: the exact file, a
// compiled-name swap, known extensions, then directory index files.
func (r *FileResolver) probe(target string) (string, error) {
	target = path.Clean(target)

	if r.isFile(target) {
		return target, nil
	}

	// Emitted .js references point back at their .ts sources.
	if strings.HasSuffix(target, ".js") {
		for _, ext := range []string{".ts", ".tsx"} {
			swapped := strings.TrimSuffix(target, ".js") + ext
			if r.isFile(swapped) {
				return swapped, nil
			}
		}
	}

	for _, ext := range r.extensions {
		if withExt := target + ext; r.isFile(withExt) {
			return withExt, nil
		}
	}

	for _, indexFile := range r.indexFiles {
		if indexPath := path.Join(target, indexFile); r.isFile(indexPath) {
			return indexPath, nil
		}
	}

	return "", fmt.Errorf("no file for %s", target)
}

func (r *FileResolver) isFile(p string) bool {
	info, err := fs.Stat(r.fsys, p)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
