package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/config"
	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/state"
	"github.com/leapstack-labs/figvars/internal/workspace"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Loader   *workspace.Loader
	// Store is nil when the payload cache is disabled.
	Store state.Store
}

// NewCommandContext creates a CommandContext with a loader over the
// configured files. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if err := cfg.ValidateFiles(); err != nil {
		return nil, nil, err
	}

	var store state.Store
	if !cfg.NoCache {
		s, err := openStore(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	files, err := workspaceFiles(cfg)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}

	var source workspace.Source = workspace.DirSource{Dir: cfg.PayloadDir}
	if store != nil {
		sources := make(map[string]string, len(files))
		for _, f := range files {
			sources[f.ID] = string(f.Source)
		}
		source = workspace.NewCachedSource(source, store, sources, logger)
	}

	loader := workspace.NewLoader(workspace.Config{
		Files:  files,
		Source: source,
		Logger: logger,
	})

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Loader:   loader,
		Store:    store,
	}, cleanup, nil
}

// NewCommandContextWithoutLoader creates a CommandContext for commands that
// don't read payloads.
func NewCommandContextWithoutLoader(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// loadSnapshot creates a command context and loads the current snapshot.
func loadSnapshot(cmd *cobra.Command) (*CommandContext, *core.Snapshot, func(), error) {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	snap, err := cmdCtx.Loader.Load(ctx)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to load variables: %w", err)
	}
	return cmdCtx, snap, cleanup, nil
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		PayloadDir:   getEnvOrDefault("FIGVARS_PAYLOAD_DIR", config.DefaultPayloadDir),
		CachePath:    getEnvOrDefault("FIGVARS_CACHE_PATH", config.DefaultCacheFile),
		NoCache:      os.Getenv("FIGVARS_NO_CACHE") == "true",
		Verbose:      os.Getenv("FIGVARS_VERBOSE") == "true",
		OutputFormat: os.Getenv("FIGVARS_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openStore(path string) (state.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return store, nil
}

func workspaceFiles(cfg *config.Config) ([]workspace.File, error) {
	files := make([]workspace.File, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		src, ok := core.ParseSource(f.Source)
		if !ok {
			return nil, fmt.Errorf("file %s: unknown source %q", f.ID, f.Source)
		}
		name := f.Name
		if name == "" {
			name = f.ID
		}
		files = append(files, workspace.File{ID: f.ID, Name: name, Source: src})
	}
	return files, nil
}

// findVariable returns every mode row of the variable named by ref: a
// variable id, a name, or "Collection/name". fileID narrows the search when
// set. Later files win when a name exists in several.
func findVariable(snap *core.Snapshot, ref, fileID string) ([]core.Variable, error) {
	if ref == "" {
		return nil, fmt.Errorf("variable reference is empty")
	}

	vars := snap.Variables
	if fileID != "" {
		var ok bool
		if vars, ok = snap.ByFile[fileID]; !ok {
			return nil, fmt.Errorf("file %q is not loaded", fileID)
		}
	}

	var byID, byName, byPath []core.Variable
	for _, v := range vars {
		switch {
		case v.ID == ref:
			byID = append(byID, v)
		case v.Name == ref:
			byName = append(byName, v)
		case v.CollectionName+"/"+v.Name == ref:
			byPath = append(byPath, v)
		}
	}
	for _, found := range [][]core.Variable{byID, byName, byPath} {
		if len(found) > 0 {
			return onlyID(found, found[len(found)-1].ID), nil
		}
	}
	return nil, fmt.Errorf("variable %q not found", ref)
}

func onlyID(vars []core.Variable, id string) []core.Variable {
	out := vars[:0:0]
	for _, v := range vars {
		if v.ID == id {
			out = append(out, v)
		}
	}
	return out
}

// pickMode returns the row for modeID, or the first row when modeID is
// empty. modeID may also be a mode name, matched case-insensitively.
func pickMode(rows []core.Variable, modeID string) (core.Variable, error) {
	if len(rows) == 0 {
		return core.Variable{}, fmt.Errorf("no values")
	}
	if modeID == "" {
		return rows[0], nil
	}
	for _, v := range rows {
		if v.ModeID == modeID || strings.EqualFold(v.ModeName, modeID) {
			return v, nil
		}
	}
	return core.Variable{}, fmt.Errorf("variable %s has no value for mode %q", rows[0].Name, modeID)
}
