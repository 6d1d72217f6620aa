package project

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
)

// Config is a parsed project description. The tree section maps named
// runtime-tree nodes onto filesystem directories; everything else is
// project-level settings with defaults suitable for a standard layout.
type Config struct {
	Name       string    // project display name
	ModulesDir string    // managed third-party directory, default "node_modules"
	Scope      string    // recognized package scope marker, default "@luaghini"
	Tree       *TreeNode // root of the runtime-tree description
}

// TreeNode is one named node of the runtime-tree description. A node may
// anchor a filesystem directory (Path), carry a runtime class name, and
// contain further named children.
type TreeNode struct {
	Name      string
	Path      string // filesystem directory this node maps to, "" if none
	ClassName string
	Children  []*TreeNode
}

// rawConfig mirrors the JSON layout of a *.project.json file. Tree nodes
// use "$"-prefixed keys for node properties and plain keys for children,
// so they decode through interface{} and get shaped afterwards.
type rawConfig struct {
	Name       string                 `json:"name"`
	ModulesDir string                 `json:"modulesDir"`
	Scope      string                 `json:"scope"`
	Tree       map[string]interface{} `json:"tree"`
}

// ParseConfig decodes a *.project.json document.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("project config has no name")
	}
	if raw.Tree == nil {
		return nil, fmt.Errorf("project config has no tree")
	}

	root, err := nodeFromMap(raw.Name, raw.Tree)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Name:       raw.Name,
		ModulesDir: raw.ModulesDir,
		Scope:      raw.Scope,
		Tree:       root,
	}
	if cfg.ModulesDir == "" {
		cfg.ModulesDir = "node_modules"
	}
	if cfg.Scope == "" {
		cfg.Scope = "@luaghini"
	}
	return cfg, nil
}

// nodeFromMap shapes one decoded tree object into a TreeNode. Children are
// sorted by name so the built tree is deterministic regardless of map
// iteration order.
func nodeFromMap(name string, m map[string]interface{}) (*TreeNode, error) {
	node := &TreeNode{Name: name}

	childNames := make([]string, 0, len(m))
	for key := range m {
		if len(key) > 0 && key[0] == '$' {
			continue
		}
		childNames = append(childNames, key)
	}
	sort.Strings(childNames)

	for key, value := range m {
		switch key {
		case "$path":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("tree node %q: $path must be a string", name)
			}
			node.Path = s
		case "$className":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("tree node %q: $className must be a string", name)
			}
			node.ClassName = s
		}
	}

	for _, childName := range childNames {
		childMap, ok := m[childName].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tree node %q: child %q must be an object", name, childName)
		}
		child, err := nodeFromMap(childName, childMap)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}
