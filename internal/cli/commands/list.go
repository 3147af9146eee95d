package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/modes"
	"github.com/leapstack-labs/figvars/pkg/core"
)

type listOptions struct {
	collection string
	valueType  string
	search     string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List variables for the selected modes",
		Long: `List every variable value of the loaded files, filtered to the modes
picked by the brand, grade, device and theme selection.

When no mode matches the selection exactly, modes of the selected brand are
shown; when the brand matches nothing either, all modes are shown.

Output adapts to environment:
  - Terminal: Styled table with color swatches
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all variables
  figvars list

  # Only the dark theme of one brand
  figvars list --brand ClassCraft --theme Dark

  # Colors in one collection, as JSON
  figvars list --collection Palette --type color -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.collection, "collection", "", "Only variables in this collection")
	cmd.Flags().StringVar(&opts.valueType, "type", "", "Only variables of this type (color, number, string, boolean)")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Only variables whose name contains this text")

	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	vars, res := modes.Filter(snap, cmdCtx.Cfg.Selection)
	vars = filterList(vars, opts)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, vars, res)
	default:
		return listTable(r, snap, vars, res)
	}
}

func filterList(vars []core.Variable, opts *listOptions) []core.Variable {
	want := parseValueType(opts.valueType)
	search := strings.ToLower(opts.search)

	out := vars[:0:0]
	for _, v := range vars {
		if opts.collection != "" && !strings.EqualFold(v.CollectionName, opts.collection) {
			continue
		}
		if want != "" && v.ResolvedType != want {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Name), search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func listTable(r *output.Renderer, snap *core.Snapshot, vars []core.Variable, res modes.Result) error {
	r.Header(1, fmt.Sprintf("Variables (%d values)", len(vars)))
	if res.Match != modes.MatchExact {
		r.Muted(fmt.Sprintf("Mode selection matched %s: %s", res.Match, modeNames(snap, res.ModeIDs)))
	}
	if len(vars) == 0 {
		r.Muted("No variables match.")
		return nil
	}

	rows := make([][]string, 0, len(vars))
	for _, v := range vars {
		rows = append(rows, []string{
			v.Name,
			v.CollectionName,
			v.ModeName,
			string(v.ResolvedType),
			displayValue(r, v),
		})
	}
	r.Table([]string{"Name", "Collection", "Mode", "Type", "Value"}, rows)
	return nil
}

func listJSON(r *output.Renderer, vars []core.Variable, res modes.Result) error {
	out := output.ListOutput{
		Match:     string(res.Match),
		ModeIDs:   res.ModeIDs,
		Total:     len(vars),
		Variables: make([]output.VariableRow, 0, len(vars)),
	}
	for _, v := range vars {
		out.Variables = append(out.Variables, variableRow(v))
	}
	return r.JSON(out)
}

func variableRow(v core.Variable) output.VariableRow {
	row := output.VariableRow{
		ID:         v.ID,
		Name:       v.Name,
		Collection: v.CollectionName,
		ModeID:     v.ModeID,
		ModeName:   v.ModeName,
		Type:       string(v.ResolvedType),
		Value:      v.Display,
		FileID:     v.FileID,
	}
	if v.Reference != nil {
		row.AliasOf = v.Reference.ID
	}
	return row
}

// displayValue renders a value cell: aliases as an arrow to the target,
// colors with a swatch.
func displayValue(r *output.Renderer, v core.Variable) string {
	switch {
	case v.Value.IsAlias():
		return "→ " + v.Display
	case v.Value.IsColor():
		return r.Swatch(v.Value.Color) + " " + v.Display
	default:
		return v.Display
	}
}

func modeNames(snap *core.Snapshot, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := snap.ModeNames[id]; ok {
			names = append(names, n)
			continue
		}
		names = append(names, id)
	}
	return strings.Join(names, ", ")
}

// parseValueType accepts API type names and their common spellings.
func parseValueType(s string) core.ValueType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "color", "colour":
		return core.TypeColor
	case "float", "number":
		return core.TypeFloat
	case "bool", "boolean":
		return core.TypeBoolean
	default:
		return core.TypeString
	}
}
