package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/resolve"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show loaded files and ingestion statistics",
		Long: `Load every configured file and report what was ingested: variables per
file, collections, how alias targets were linked, and the alias graph.

Cached payloads are listed when the cache is enabled.`,
		Example: `  # Show status
  figvars status

  # As JSON
  figvars status -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	view := resolve.NewView(snap)
	nodes, edges := view.Stats()
	stats := cmdCtx.Loader.Stats()

	out := output.StatusOutput{
		Version:     snap.Version,
		Variables:   len(snap.Variables),
		Collections: len(snap.Collections),
		AliasNodes:  nodes,
		AliasEdges:  edges,
		Cycles:      len(view.Cycles()),
		Unresolved:  stats.Unresolved,
		NameMatches: stats.NameMatches,
	}
	for _, f := range snap.Files {
		out.Files = append(out.Files, output.FileSummary{
			ID:        f.ID,
			Name:      f.Name,
			Source:    string(f.Source),
			Variables: len(snap.ByFile[f.ID]),
		})
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Files")
	for _, f := range out.Files {
		r.StatusLine(f.Name, "success", fmt.Sprintf("(%s, %d values)", f.Source, f.Variables))
	}
	r.Println("")

	r.Header(2, "Summary")
	r.Println(output.FormatKeyValue("Values", fmt.Sprintf("%d", out.Variables)))
	r.Println(output.FormatKeyValue("Collections", fmt.Sprintf("%d", out.Collections)))
	r.Println(output.FormatKeyValue("Hidden Collections", fmt.Sprintf("%d", stats.HiddenCollections)))
	r.Println(output.FormatKeyValue("Alias Graph", fmt.Sprintf("%d nodes, %d edges", nodes, edges)))
	r.Println(output.FormatKeyValue("Linked By Name", fmt.Sprintf("%d", out.NameMatches)))
	r.Println(output.FormatKeyValue("Unresolved Aliases", fmt.Sprintf("%d", out.Unresolved)))
	r.Println(output.FormatKeyValue("Cycles", fmt.Sprintf("%d", out.Cycles)))

	if cmdCtx.Store != nil {
		payloads, err := cmdCtx.Store.ListPayloads()
		if err != nil {
			return fmt.Errorf("failed to list cached payloads: %w", err)
		}
		r.Println("")
		r.Header(2, "Cache")
		for _, p := range payloads {
			r.StatusLine(p.FileID, "cached", fmt.Sprintf("fetched %s (%s)", p.FetchedAt.Format(time.RFC3339), shortHash(p.ContentHash)))
		}
	}

	if out.Unresolved > 0 {
		r.Warning(fmt.Sprintf("%d alias(es) could not be linked to a loaded variable", out.Unresolved))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
