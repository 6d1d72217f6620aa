package manifest

import (
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Manifest is the subset of a package manifest this layer cares about: the
// package's declared entry file.
type Manifest struct {
	Name string `json:"name"`
	Main string `json:"main"`
}

// ManifestFile is the filename read inside each package root.
const ManifestFile = "package.json"

// DefaultEntry is assumed when a manifest declares no entry file.
const DefaultEntry = "index.js"

// CacheStats counts cache traffic for diagnostics.
type CacheStats struct {
	Hits     int64 // lookups answered from the cache
	Misses   int64 // lookups that required a manifest read
	Failures int64 // manifest reads that failed
}

// Cache memoizes package entry-file lookups. Each distinct package name is
// read at most once per cache, however many import sites reference it. The
// cache is shared across compilation units and safe for concurrent use;
// inserts are idempotent, so a racing double read stores the same value.
type Cache struct {
	fsys    fs.FS
	mutex   sync.RWMutex
	entries map[string]string // package name -> entry file path
	stats   CacheStats
	logger  *zap.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger attaches a logger; manifest reads are logged at debug level.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

// NewCache creates a cache reading manifests from the given file system.
func NewCache(fsys fs.FS, opts ...CacheOption) *Cache {
	c := &Cache{
		fsys:    fsys,
		entries: make(map[string]string),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EntryPoint returns the entry file path declared by the package's
// manifest, relative to pkgRoot. The first lookup for a package name reads
// and decodes its manifest; later lookups are answered from the cache.
// Read and decode failures are fatal to the caller and are not cached.
func (c *Cache) EntryPoint(pkgName string, pkgRoot string) (string, error) {
	c.mutex.RLock()
	entry, ok := c.entries[pkgName]
	c.mutex.RUnlock()
	if ok {
		c.mutex.Lock()
		c.stats.Hits++
		c.mutex.Unlock()
		return entry, nil
	}

	entry, err := c.readManifest(pkgName, pkgRoot)
	if err != nil {
		c.mutex.Lock()
		c.stats.Failures++
		c.mutex.Unlock()
		return "", err
	}

	c.mutex.Lock()
	c.stats.Misses++
	if existing, ok := c.entries[pkgName]; ok {
		// Lost a read race; both reads saw the same manifest.
		entry = existing
	} else {
		c.entries[pkgName] = entry
	}
	c.mutex.Unlock()
	return entry, nil
}

func (c *Cache) readManifest(pkgName string, pkgRoot string) (string, error) {
	manifestPath := path.Join(pkgRoot, ManifestFile)

	data, err := fs.ReadFile(c.fsys, manifestPath)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest for package %s: %w", pkgName, err)
	}

	var m Manifest
	if err := sonic.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to parse manifest for package %s: %w", pkgName, err)
	}

	entry := m.Main
	if entry == "" {
		entry = DefaultEntry
	}

	c.logger.Debug("read package manifest",
		zap.String("package", pkgName),
		zap.String("entry", entry))
	return entry, nil
}

// Size returns the number of cached packages.
func (c *Cache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stats
}
