package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/figvars/internal/normalize"
	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// File is one configured Figma file.
type File struct {
	ID     string
	Name   string
	Source core.Source
}

// Config configures a Loader.
type Config struct {
	// Files are loaded in order; later files win on (id, mode) collisions.
	Files  []File
	Source Source
	Logger *slog.Logger
}

// loaded is swapped as a unit so the snapshot and the payloads it was
// built from always match.
type loaded struct {
	snapshot *core.Snapshot
	payloads map[string]*figma.Payload
	stats    normalize.Stats
}

// Loader builds snapshots from the configured files.
type Loader struct {
	files  []File
	source Source
	logger *slog.Logger

	mu      sync.Mutex // serializes loads
	current atomic.Pointer[loaded]
	version atomic.Uint64
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{files: cfg.Files, source: cfg.Source, logger: logger}
}

// Files returns the configured files.
func (l *Loader) Files() []File {
	return l.files
}

// Snapshot returns the last successfully loaded snapshot, or nil.
func (l *Loader) Snapshot() *core.Snapshot {
	if cur := l.current.Load(); cur != nil {
		return cur.snapshot
	}
	return nil
}

// Payload returns the raw payload fileID was last loaded from, or nil.
func (l *Loader) Payload(fileID string) *figma.Payload {
	if cur := l.current.Load(); cur != nil {
		return cur.payloads[fileID]
	}
	return nil
}

// Stats returns the normalize counters of the current snapshot.
func (l *Loader) Stats() normalize.Stats {
	if cur := l.current.Load(); cur != nil {
		return cur.stats
	}
	return normalize.Stats{}
}

// Load fetches and normalizes every file in order and publishes the result.
// On any error the previous snapshot stays current.
func (l *Loader) Load(ctx context.Context) (*core.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.files) == 0 {
		return nil, fmt.Errorf("no files configured")
	}

	var expanded map[string]bool
	if prev := l.Snapshot(); prev != nil {
		expanded = normalize.ExpandedState(prev.Tree)
	}

	var merged *normalize.Result
	byFile := make(map[string][]core.Variable, len(l.files))
	payloads := make(map[string]*figma.Payload, len(l.files))
	infos := make([]core.FileInfo, 0, len(l.files))

	for _, f := range l.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := l.source.Fetch(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", f.ID, err)
		}
		payload, err := figma.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.ID, err)
		}

		var sideTable []core.Variable
		if merged != nil {
			sideTable = merged.AllVariables
		}
		result, err := normalize.Normalize(payload, normalize.Options{
			FileID:    f.ID,
			Source:    f.Source,
			SideTable: sideTable,
			Expanded:  expanded,
			Logger:    l.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("normalizing %s: %w", f.ID, err)
		}

		var overwritten []core.Key
		merged, overwritten = normalize.Merge(merged, result)
		if len(overwritten) > 0 {
			l.logger.Debug("merge overwrote variables", "file_id", f.ID, "count", len(overwritten))
		}

		byFile[f.ID] = result.AllVariables
		payloads[f.ID] = payload
		infos = append(infos, core.FileInfo{ID: f.ID, Name: f.Name, Source: f.Source})
	}

	snap := &core.Snapshot{
		Version:     l.version.Add(1),
		Files:       infos,
		ByFile:      byFile,
		Variables:   merged.AllVariables,
		Collections: merged.Collections,
		ModeNames:   merged.ModeNames,
		ModeMapping: merged.ModeMapping,
		Tree:        merged.TreeData,
	}
	l.current.Store(&loaded{snapshot: snap, payloads: payloads, stats: merged.Stats})

	l.logger.Info("loaded snapshot",
		"version", snap.Version,
		"files", len(infos),
		"variables", len(snap.Variables),
		"name_matches", merged.Stats.NameMatches,
		"unresolved", merged.Stats.Unresolved)
	return snap, nil
}

// FileOf returns the configured file with the id.
func (l *Loader) FileOf(id string) (File, bool) {
	for _, f := range l.files {
		if f.ID == id {
			return f, true
		}
	}
	return File{}, false
}
