package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"luaghini/pkg/ast"
	"luaghini/pkg/errors"
	"luaghini/pkg/linker"
	"luaghini/pkg/luaast"
	"luaghini/pkg/manifest"
	"luaghini/pkg/project"
)

const (
	promptMain  = "resolve> "
	historyFile = ".luaghini_resolve_history"
)

func main() {
	projectFlag := flag.String("project", "default.project.json", "Project config file, relative to the root")
	rootFlag := flag.String("root", ".", "Project root directory")
	fromFlag := flag.String("from", "", "File the import is written in, relative to the root")
	verboseFlag := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	logger := zap.NewNop()
	if *verboseFlag {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
			os.Exit(70)
		}
		logger = dev
		defer logger.Sync()
	}

	lk, err := buildLinker(*rootFlag, *projectFlag, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(78) // Exit code 78: configuration error
	}

	// One-shot mode: resolve each argument and exit.
	if flag.NArg() > 0 {
		ok := true
		for _, specifier := range flag.Args() {
			if !resolveOne(lk, specifier, *fromFlag) {
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	runShell(lk, *fromFlag)
}

func buildLinker(root, projectFile string, logger *zap.Logger) (*linker.Linker, error) {
	data, err := os.ReadFile(filepath.Join(root, projectFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read project config: %w", err)
	}
	cfg, err := project.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded project config",
		zap.String("name", cfg.Name),
		zap.String("modulesDir", cfg.ModulesDir),
		zap.String("scope", cfg.Scope))

	fsys := os.DirFS(root)
	return linker.New(linker.Options{
		Tree:       project.NewTree(cfg, project.WithLogger(logger)),
		Files:      project.NewFileResolver(fsys, cfg.ModulesDir, project.WithResolverLogger(logger)),
		Manifest:   manifest.NewCache(fsys, manifest.WithLogger(logger)),
		ModulesDir: cfg.ModulesDir,
		Scope:      cfg.Scope,
	}), nil
}

// resolveOne resolves a single specifier and prints its load address.
func resolveOne(lk *linker.Linker, specifier, from string) bool {
	st := linker.NewState()
	node := &ast.StringLiteral{Value: specifier}

	addr, err := lk.LoadAddress(specifier, from, node, st)
	if err != nil {
		if le, ok := err.(errors.LuaghiniError); ok {
			errors.DisplayErrors([]errors.LuaghiniError{le})
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		return false
	}

	fmt.Println(luaast.RenderExpr(addr))
	return true
}

// runShell starts an interactive resolution shell.
func runShell(lk *linker.Linker, from string) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFile
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("luaghini resolver shell. :from <file> sets the importing file, :quit exits.")
	for {
		input, err := line.Prompt(promptMain)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "input error: %v\n", err)
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			return
		case strings.HasPrefix(input, ":from "):
			from = strings.TrimSpace(strings.TrimPrefix(input, ":from "))
			fmt.Printf("importing from %s\n", from)
		case strings.HasPrefix(input, ":"):
			fmt.Fprintf(os.Stderr, "unknown command %s\n", input)
		default:
			resolveOne(lk, input, from)
		}
	}
}
