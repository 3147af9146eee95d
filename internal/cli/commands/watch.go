package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/resolve"
	"github.com/leapstack-labs/figvars/internal/workspace"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload payloads when they change",
		Long: `Load every configured file, then watch the payload directory and reload
when a payload is written. Each reload prints a summary line; a payload that
fails to parse keeps the previous data loaded.

Stop with Ctrl+C.`,
		Example: `  # Watch with the default debounce
  figvars watch

  # Wait longer for writes to settle
  figvars watch --debounce 500ms`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", workspace.DefaultDebounce, "How long to wait for writes to settle (default from watch_debounce)")
	return cmd
}

func runWatch(cmd *cobra.Command, debounce time.Duration) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cmd.Flags().Changed("debounce") && cmdCtx.Cfg.WatchDebounce > 0 {
		debounce = cmdCtx.Cfg.WatchDebounce
	}

	r := cmdCtx.Renderer
	view := resolve.NewView(snap)
	r.Success(reloadSummary(view, snap))
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", cmdCtx.Cfg.PayloadDir))

	return cmdCtx.Loader.Watch(ctx, workspace.WatchOptions{
		Dir:      cmdCtx.Cfg.PayloadDir,
		Debounce: debounce,
		OnReload: func(s *core.Snapshot, err error) {
			if err != nil {
				r.Error(fmt.Sprintf("reload failed, keeping version %d: %v", view.Version(), err))
				return
			}
			view.Sync(s)
			r.Success(reloadSummary(view, s))
		},
	})
}

func reloadSummary(view *resolve.View, snap *core.Snapshot) string {
	_, edges := view.Stats()
	msg := fmt.Sprintf("v%d: %d values in %d files, %d aliases", snap.Version, len(snap.Variables), len(snap.Files), edges)
	if n := len(view.Cycles()); n > 0 {
		msg += fmt.Sprintf(", %d cycle(s)", n)
	}
	return msg
}
