package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/resolve"
	"github.com/leapstack-labs/figvars/pkg/core"
)

type resolveOptions struct {
	mode string
	file string
}

// resolveOutput is the JSON shape of the resolve command.
type resolveOutput struct {
	resolve.ResolvedVariableReference
	Chain      string   `json:"chain"`
	Dependents []string `json:"dependents,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <variable>",
		Short: "Follow a variable's alias chain to its value",
		Long: `Follow the alias chain of a variable, across collections and files, to
the literal value it stands for.

The variable may be given by id, by name, or as "Collection/name". Missing
targets and circular references are reported with the chain walked so far.`,
		Example: `  # Resolve by name in the first mode
  figvars resolve surface/bg

  # Resolve for a specific mode (id or name)
  figvars resolve surface/bg --mode "ClassCraft (Dark)"

  # Resolve in one file only
  figvars resolve VariableID:2:1 --file theme-file -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Mode id or name to resolve")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "File id the variable lives in")

	return cmd
}

func runResolve(cmd *cobra.Command, ref string, opts *resolveOptions) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := findVariable(snap, ref, opts.file)
	if err != nil {
		return err
	}
	start, err := pickMode(rows, opts.mode)
	if err != nil {
		return err
	}

	view := resolve.NewView(snap)
	res := view.Resolve(start.FileID, start.ID, start.ModeID)
	dependents := view.Dependents(start.FileID, start.ID)

	r := cmdCtx.Renderer
	chain := resolve.FormatReferenceChain(res.ReferenceChain, start.FileID)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(resolveOutput{ResolvedVariableReference: res, Chain: chain, Dependents: dependents}); err != nil {
			return err
		}
	case output.ModeMarkdown:
		resolveMarkdown(r, start, res, chain, dependents)
	default:
		resolveText(r, start, res, chain, dependents)
	}

	if !res.Success {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	return nil
}

func resolveText(r *output.Renderer, start core.Variable, res resolve.ResolvedVariableReference, chain string, dependents []string) {
	styles := r.Styles()

	r.Header(1, start.Name)
	r.Printf("  %s %s  %s %s\n",
		styles.Muted.Render("collection:"), styles.Collection.Render(start.CollectionName),
		styles.Muted.Render("mode:"), styles.Mode.Render(start.ModeName))
	r.Println("")

	for i, step := range res.ReferenceChain {
		label := step.Variable.Name
		if step.File.FileID != start.FileID {
			label = fmt.Sprintf("%s (%s)", label, step.File.FileName)
		}
		r.Printf("  %s%s %s\n", strings.Repeat("  ", i), styles.Arrow.Render("→"), styles.VarPath.Render(label))
	}
	r.Println("")

	if res.Success && res.FinalVariable != nil {
		r.Success("Resolved to " + displayValue(r, *res.FinalVariable))
	} else {
		r.Error(res.ErrorMessage)
	}

	if len(dependents) > 0 {
		r.Println("")
		r.Println(styles.Muted.Render(fmt.Sprintf("Used by %d variable(s): %s", len(dependents), strings.Join(dependentIDs(dependents), ", "))))
	}
}

func resolveMarkdown(r *output.Renderer, start core.Variable, res resolve.ResolvedVariableReference, chain string, dependents []string) {
	r.Println(output.FormatHeader(1, start.Name))
	r.Println("")
	r.Println(output.FormatKeyValue("Collection", start.CollectionName))
	r.Println(output.FormatKeyValue("Mode", start.ModeName))
	r.Println(output.FormatKeyValue("Chain", chain))
	if res.Success && res.FinalVariable != nil {
		r.Println(output.FormatKeyValue("Value", res.FinalVariable.Display))
		r.Println(output.FormatKeyValue("Type", string(res.FinalVariable.ResolvedType)))
	} else {
		r.Println(output.FormatKeyValue("Error", res.ErrorMessage))
	}
	if len(dependents) > 0 {
		r.Println(output.FormatKeyValue("Used By", strings.Join(dependentIDs(dependents), ", ")))
	}
}

// dependentIDs strips the file part of graph node keys.
func dependentIDs(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		_, id := resolve.SplitNodeKey(k)
		out = append(out, id)
	}
	return out
}
