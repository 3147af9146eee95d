package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/pkg/core"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	var collapsed bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the collection and folder tree",
		Long: `Show collections and the folders formed by "/"-separated variable names.

Folders are listed by path, so "color/brand/primary" appears under the
color and color/brand folders of its collection.`,
		Example: `  # Show the full tree
  figvars tree

  # Collections and top-level entries only
  figvars tree --collapsed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(snap.Tree)
			}

			r.Header(1, "Variables")
			for _, root := range snap.Tree {
				renderTree(r, root, 0, collapsed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "Only show collections and their top-level entries")
	return cmd
}

func renderTree(r *output.Renderer, n *core.TreeNode, depth int, collapsed bool) {
	indent := strings.Repeat("  ", depth)
	if r.EffectiveMode() == output.ModeText {
		style := r.Styles().VarPath
		switch {
		case depth == 0:
			style = r.Styles().Collection
		case n.Type == core.NodeFolder:
			style = r.Styles().Bold
		}
		r.Printf("%s%s\n", indent, style.Render(n.Name))
	} else {
		r.Printf("%s- %s\n", indent, n.Name)
	}

	if collapsed && depth >= 1 {
		return
	}
	for _, c := range n.Children {
		renderTree(r, c, depth+1, collapsed)
	}
}
