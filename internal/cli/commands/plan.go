package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/cli/output"
	"github.com/leapstack-labs/figvars/internal/mutation"
	"github.com/leapstack-labs/figvars/internal/resolve"
	"github.com/leapstack-labs/figvars/pkg/core"
	"github.com/leapstack-labs/figvars/pkg/figma"
)

// filePlan is the planned payload for one file.
type filePlan struct {
	FileID  string             `json:"fileId"`
	Edits   int                `json:"edits"`
	Payload *figma.PostPayload `json:"payload"`
}

// previewRow is a variable whose resolved value an edit changes.
type previewRow struct {
	Name   string `json:"name"`
	ModeID string `json:"modeId"`
	Before string `json:"before"`
	After  string `json:"after"`
}

type planOutput struct {
	Files   []filePlan   `json:"files"`
	Preview []previewRow `json:"preview,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "plan <edits.yaml>",
		Short: "Build the POST variables payload for a set of edits",
		Long: `Read edits from a YAML file and build the payload the Figma
POST /v1/files/:key/variables endpoint expects, one per file.

Variables, alias targets, collections and modes may be named by id or name.
Nothing is sent; the payload is printed or written with --write.

Edits file format:

  edits:
    - variable: brand/primary        # kind defaults to value
      value: "#ff0033"
    - kind: alias
      variable: surface/bg
      mode: ClassCraft (Dark)
      target: grey/900
    - kind: create
      collection: Palette
      name: blue/500
      type: color
      value: "#0066ff"`,
		Example: `  # Show the payload
  figvars plan edits.yaml

  # Write it for another tool to send
  figvars plan edits.yaml --write payload.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "write", "w", "", "Write the JSON plan to this file")
	return cmd
}

func runPlan(cmd *cobra.Command, path, outPath string) error {
	specs, err := mutation.LoadEdits(path)
	if err != nil {
		return err
	}

	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := make(map[string]*mutation.EditSession)
	var order []string
	var bound []boundEdit
	for i, spec := range specs {
		b, err := bindEdit(snap, spec)
		if err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}
		s, ok := sessions[b.FileID]
		if !ok {
			s = mutation.NewEditSession()
			sessions[b.FileID] = s
			order = append(order, b.FileID)
		}
		s.Set(b.Variable, b.Edit)
		bound = append(bound, b)
	}

	out := planOutput{}
	for _, fileID := range order {
		planner := plannerFor(cmdCtx.Loader, snap, cmdCtx.Cfg, fileID, cmdCtx.Logger)
		n := sessions[fileID].Len()
		payload, err := planner.Flush(sessions[fileID])
		if err != nil {
			return err
		}
		out.Files = append(out.Files, filePlan{FileID: fileID, Edits: n, Payload: payload})
		out.Preview = append(out.Preview, previewEdits(snap, planner, bound, fileID)...)
	}

	if outPath != "" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, append(data, '\n'), 0600); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, fmt.Sprintf("Plan (%d edits)", len(bound)))
	for _, f := range out.Files {
		r.StatusLine(f.FileID, "success", fmt.Sprintf("%d edit(s), %d variable change(s), %d mode value(s)",
			f.Edits, len(f.Payload.Variables), len(f.Payload.VariableModeValues)))
	}
	if len(out.Preview) > 0 {
		r.Println("")
		r.Header(2, "Resolved values after edits")
		rows := make([][]string, 0, len(out.Preview))
		for _, p := range out.Preview {
			rows = append(rows, []string{p.Name, snap.ModeNames[p.ModeID], p.Before, p.After})
		}
		r.Table([]string{"Variable", "Mode", "Before", "After"}, rows)
	}
	if outPath != "" {
		r.Println("")
		r.Success("Plan written to " + outPath)
		return nil
	}

	for _, f := range out.Files {
		data, err := json.MarshalIndent(f.Payload, "", "  ")
		if err != nil {
			return err
		}
		r.Println("")
		r.Header(2, f.FileID)
		r.Println(output.FormatCodeBlock("json", string(data)))
	}
	return nil
}

// previewEdits overlays the value and alias edits of fileID on a resolver
// view and reports every variable whose resolved value changes.
func previewEdits(snap *core.Snapshot, planner *mutation.Planner, bound []boundEdit, fileID string) []previewRow {
	view := resolve.NewView(snap)
	before := make(map[string]string)
	affected := make(map[string]bool)

	for _, b := range bound {
		if b.FileID != fileID {
			continue
		}
		edited, ok := planner.Preview(b.Variable, b.Edit)
		if !ok {
			continue
		}
		for _, k := range append(view.Dependents(b.FileID, b.Variable.ID), resolve.NodeKey(b.FileID, b.Variable.ID)) {
			if _, seen := before[k]; !seen {
				before[k] = resolvedDisplay(view, k, modeForKey(snap, k, bound))
			}
		}
		for _, k := range view.Apply(edited) {
			affected[k] = true
		}
	}

	var rows []previewRow
	for k := range affected {
		modeID := modeForKey(snap, k, bound)
		after := resolvedDisplay(view, k, modeID)
		if before[k] == after {
			continue
		}
		f, id := resolve.SplitNodeKey(k)
		rows = append(rows, previewRow{Name: variableName(snap, f, id), ModeID: modeID, Before: before[k], After: after})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ModeID < rows[j].ModeID
	})
	return rows
}

func resolvedDisplay(view *resolve.View, key, modeID string) string {
	fileID, id := resolve.SplitNodeKey(key)
	return resolvedText(view.Resolve(fileID, id, modeID))
}

// modeForKey picks the mode an edit touched for previewing a dependent.
func modeForKey(snap *core.Snapshot, key string, bound []boundEdit) string {
	fileID, id := resolve.SplitNodeKey(key)
	for _, b := range bound {
		if b.FileID == fileID && b.Variable.ID == id {
			return b.Variable.ModeID
		}
	}
	for _, v := range snap.ByFile[fileID] {
		if v.ID == id {
			for _, b := range bound {
				if b.Variable.ModeID == v.ModeID {
					return v.ModeID
				}
			}
		}
	}
	for _, v := range snap.ByFile[fileID] {
		if v.ID == id {
			return v.ModeID
		}
	}
	return ""
}

func variableName(snap *core.Snapshot, fileID, id string) string {
	for _, v := range snap.ByFile[fileID] {
		if v.ID == id {
			return v.Name
		}
	}
	return id
}
