package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/figvars/pkg/core"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Dir is the payload directory.
	Dir      string
	Debounce time.Duration
	// OnReload is called after every reload attempt, with the new snapshot
	// or the error that kept the previous one current.
	OnReload func(*core.Snapshot, error)
}

// Watch reloads whenever a payload file in opts.Dir is written or created,
// until ctx is cancelled. Reloads run one at a time.
func (l *Loader) Watch(ctx context.Context, opts WatchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", opts.Dir, err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	reload := make(chan struct{}, 1)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-egctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
					continue
				}

				l.logger.Debug("payload changed", "file", event.Name)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				l.logger.Error("watcher error", "error", err)
			}
		}
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-reload:
				snap, err := l.Load(egctx)
				if err != nil {
					l.logger.Error("reload failed", "error", err)
				}
				if opts.OnReload != nil {
					opts.OnReload(snap, err)
				}
			}
		}
	})

	return eg.Wait()
}
