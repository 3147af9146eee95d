// Package workspace loads the configured Figma files into immutable
// snapshots: it fetches each payload, normalizes and merges them in order,
// and swaps the result in atomically.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/figvars/internal/state"
)

// Source fetches the raw local variables response of a file.
type Source interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// DirSource reads "<Dir>/<fileID>.json".
type DirSource struct {
	Dir string
}

// Path returns the payload path of fileID.
func (d DirSource) Path(fileID string) string {
	return filepath.Join(d.Dir, fileID+".json")
}

// Fetch implements Source.
func (d DirSource) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(fileID))
	if err != nil {
		return nil, fmt.Errorf("reading payload of %s: %w", fileID, err)
	}
	return data, nil
}

// CachedSource stores every successful fetch and serves the last stored
// payload when the underlying source fails.
type CachedSource struct {
	source  Source
	store   state.Store
	sources map[string]string
	logger  *slog.Logger
}

// NewCachedSource wraps source with store. sources maps file ids to the
// source tag recorded alongside each payload.
func NewCachedSource(source Source, store state.Store, sources map[string]string, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedSource{source: source, store: store, sources: sources, logger: logger}
}

// Fetch implements Source.
func (c *CachedSource) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	data, err := c.source.Fetch(ctx, fileID)
	if err == nil {
		if _, saveErr := c.store.SavePayload(fileID, c.sources[fileID], data); saveErr != nil {
			c.logger.Warn("failed to cache payload", "file_id", fileID, "error", saveErr)
		}
		return data, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	cached, cacheErr := c.store.GetPayload(fileID)
	if cacheErr != nil {
		return nil, errors.Join(err, cacheErr)
	}
	if cached == nil {
		return nil, err
	}
	c.logger.Warn("fetch failed, using cached payload",
		"file_id", fileID,
		"snapshot_id", cached.SnapshotID,
		"fetched_at", cached.FetchedAt,
		"error", err)
	return cached.Body, nil
}
