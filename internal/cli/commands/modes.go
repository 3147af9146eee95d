package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/modes"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// NewModesCommand creates the modes command.
func NewModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "Show modes and which ones the selection picks",
		Long: `Show every mode of every collection, its brand-grade-device-theme
identifier, and whether the current selection picks it.

Identifiers are derived from Theme file mode names such as
"ClassCraft (Dark)", which maps to classcraft-primary-desktop-dark.`,
		Example: `  # Show all modes
  figvars modes

  # Which modes does a selection pick?
  figvars modes --brand ClassCraft --theme Light`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModes(cmd)
		},
	}
}

func runModes(cmd *cobra.Command) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sel := cmdCtx.Cfg.Selection
	res := modes.Select(sel, snap.ModeMapping, modes.KnownModeIDs(snap.Variables))
	infos := modeInfos(snap, res.ModeIDs)

	out := output.ModesOutput{Match: string(res.Match), Modes: infos}
	if !sel.IsZero() {
		out.Selection = sel.Key()
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	default:
		r.Header(1, fmt.Sprintf("Modes (%d)", len(infos)))
		if out.Selection != "" {
			r.Muted(fmt.Sprintf("Selection %s matched %s", out.Selection, output.Title(string(res.Match))))
		}
		rows := make([][]string, 0, len(infos))
		for _, m := range infos {
			picked := ""
			if m.Selected {
				picked = "✓"
			}
			rows = append(rows, []string{m.Collection, m.Name, m.ModeID, m.Identifier, picked})
		}
		r.Table([]string{"Collection", "Mode", "ID", "Identifier", "Selected"}, rows)
		return nil
	}
}

// modeInfos lists the modes of every collection, by collection name.
func modeInfos(snap *core.Snapshot, selected []string) []output.ModeInfo {
	picked := make(map[string]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}

	colls := make([]core.Collection, 0, len(snap.Collections))
	for _, c := range snap.Collections {
		colls = append(colls, c)
	}
	sort.Slice(colls, func(i, j int) bool {
		if colls[i].Name != colls[j].Name {
			return colls[i].Name < colls[j].Name
		}
		return colls[i].ID < colls[j].ID
	})

	var out []output.ModeInfo
	for _, c := range colls {
		for _, m := range c.Modes {
			out = append(out, output.ModeInfo{
				ModeID:     m.ModeID,
				Name:       m.Name,
				Collection: c.Name,
				Identifier: snap.ModeMapping[m.ModeID],
				Selected:   picked[m.ModeID],
			})
		}
	}
	return out
}
