package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/resolve"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Find circular alias references",
		Long: `Find alias chains that loop back on themselves. Variables in a cycle
never resolve to a value.

Exits with an error when a cycle is found, so it can gate CI.`,
		Example: `  # Check for cycles
  figvars cycles

  # As JSON
  figvars cycles -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCycles(cmd)
		},
	}
}

func runCycles(cmd *cobra.Command) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cycles := resolve.NewView(snap).Cycles()
	names := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		names = append(names, cycleNames(snap, c))
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(output.CyclesOutput{Cycles: names}); err != nil {
			return err
		}
	default:
		if len(names) == 0 {
			r.Success("No circular references")
			return nil
		}
		r.Header(1, fmt.Sprintf("Circular references (%d)", len(names)))
		for _, c := range names {
			r.StatusLine(strings.Join(c, " → "), "error", "")
		}
	}

	if len(names) > 0 {
		return fmt.Errorf("found %d circular reference(s)", len(names))
	}
	return nil
}

// cycleNames maps graph node keys to variable names.
func cycleNames(snap *core.Snapshot, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		fileID, id := resolve.SplitNodeKey(k)
		name := id
		for _, v := range snap.ByFile[fileID] {
			if v.ID == id {
				name = v.Name
				break
			}
		}
		out = append(out, name)
	}
	return out
}
