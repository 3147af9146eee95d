package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/figvars/internal/mutation"
	"github.com/leapstack-labs/figvars/internal/resolve"
	"github.com/leapstack-labs/figvars/pkg/core"
)

const editPrompt = "figvars> "

// NewEditCommand creates the interactive edit command.
func NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit variables interactively and build a payload",
		Long: `Start an interactive session for staging variable edits.

Edits are held in memory and shown resolved right away, before anything
is planned. .plan builds the POST payload for every staged edit.`,
		Example: `  figvars edit
  figvars> .mode ClassCraft (Dark)
  figvars> set brand/primary #ff0033
  figvars> alias surface/bg grey/900
  figvars> show surface/bg
  figvars> .plan payload.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd)
		},
	}
}

func runEdit(cmd *cobra.Command) error {
	cmdCtx, snap, cleanup, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	s := newEditREPL(cmdCtx, snap)

	historyFile := ""
	if cmdCtx.Cfg.CachePath != "" && cmdCtx.Cfg.CachePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.CachePath), "edit_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          editPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newVariableCompleter(snap),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "figvars edit (%d variables in %d files)\n", len(snap.Variables), len(snap.Files))
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if s.exec(line) {
			break
		}
	}

	if n := s.pending(); n > 0 {
		_, _ = fmt.Fprintf(s.errOut, "Warning: %d staged edit(s) were not planned\n", n)
	}
	return nil
}

// editREPL holds the state of an edit session: one edit session per file and
// a resolver view with every staged edit applied.
type editREPL struct {
	cmdCtx   *CommandContext
	snap     *core.Snapshot
	view     *resolve.View
	sessions map[string]*mutation.EditSession
	order    []string
	modeID   string
	out      io.Writer
	errOut   io.Writer
}

func newEditREPL(cmdCtx *CommandContext, snap *core.Snapshot) *editREPL {
	return &editREPL{
		cmdCtx:   cmdCtx,
		snap:     snap,
		view:     resolve.NewView(snap),
		sessions: make(map[string]*mutation.EditSession),
		out:      cmdCtx.Renderer.Writer(),
		errOut:   cmdCtx.Renderer.ErrWriter(),
	}
}

// exec runs one input line and reports whether the session should end.
func (s *editREPL) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	args := splitArgs(line)
	command := strings.ToLower(args[0])
	args = args[1:]

	var err error
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printEditHelp(s.out)
	case ".mode":
		err = s.setMode(strings.Join(args, " "))
	case ".pending":
		s.listPending()
	case ".clear":
		for _, sess := range s.sessions {
			sess.Clear()
		}
		s.view = resolve.NewView(s.snap)
		_, _ = fmt.Fprintln(s.out, "Cleared staged edits")
	case ".plan":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		err = s.plan(path)
	case "set":
		err = s.stage(args, 2, func(a []string) mutation.EditSpec {
			return mutation.EditSpec{Kind: mutation.KindValue, Variable: a[0], Value: strings.Join(a[1:], " ")}
		})
	case "alias":
		err = s.stage(args, 2, func(a []string) mutation.EditSpec {
			return mutation.EditSpec{Kind: mutation.KindAlias, Variable: a[0], Target: a[1]}
		})
	case "rename":
		err = s.stage(args, 2, func(a []string) mutation.EditSpec {
			return mutation.EditSpec{Kind: mutation.KindRename, Variable: a[0], Name: a[1]}
		})
	case "type":
		err = s.stage(args, 2, func(a []string) mutation.EditSpec {
			return mutation.EditSpec{Kind: mutation.KindType, Variable: a[0], Type: string(parseValueType(a[1]))}
		})
	case "delete":
		err = s.stage(args, 1, func(a []string) mutation.EditSpec {
			return mutation.EditSpec{Kind: mutation.KindDelete, Variable: a[0]}
		})
	case "show":
		if len(args) != 1 {
			err = errors.New("usage: show <variable>")
			break
		}
		err = s.show(args[0])
	default:
		err = fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *editREPL) setMode(ref string) error {
	if ref == "" {
		if s.modeID == "" {
			_, _ = fmt.Fprintln(s.out, "mode: (default)")
		} else {
			_, _ = fmt.Fprintf(s.out, "mode: %s (%s)\n", s.snap.ModeNames[s.modeID], s.modeID)
		}
		return nil
	}
	if _, ok := s.snap.ModeNames[ref]; ok {
		s.modeID = ref
		return nil
	}
	for id, name := range s.snap.ModeNames {
		if strings.EqualFold(name, ref) {
			s.modeID = id
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", ref)
}

// stage binds the edit built from args, records it in its file's session
// and overlays it on the view.
func (s *editREPL) stage(args []string, minArgs int, build func([]string) mutation.EditSpec) error {
	if len(args) < minArgs {
		return fmt.Errorf("expected at least %d argument(s)", minArgs)
	}
	spec := build(args)
	if spec.Kind != mutation.KindRename && spec.Kind != mutation.KindDelete && spec.Kind != mutation.KindType {
		spec.Mode = s.modeFor(spec.Variable)
	}

	b, err := bindEdit(s.snap, spec)
	if err != nil {
		return err
	}

	sess, ok := s.sessions[b.FileID]
	if !ok {
		sess = mutation.NewEditSession()
		s.sessions[b.FileID] = sess
		s.order = append(s.order, b.FileID)
	}
	sess.Set(b.Variable, b.Edit)

	planner := plannerFor(s.cmdCtx.Loader, s.snap, s.cmdCtx.Cfg, b.FileID, s.cmdCtx.Logger)
	if edited, ok := planner.Preview(b.Variable, b.Edit); ok {
		changed := s.view.Apply(edited)
		res := s.view.Resolve(b.FileID, b.Variable.ID, b.Variable.ModeID)
		_, _ = fmt.Fprintf(s.out, "%s = %s (%d affected)\n", b.Variable.Name, resolvedText(res), len(changed))
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "staged %s of %s\n", b.Edit.Kind, b.Variable.Name)
	return nil
}

// modeFor returns the session mode when the variable has a value in it.
func (s *editREPL) modeFor(ref string) string {
	if s.modeID == "" {
		return ""
	}
	rows, err := findVariable(s.snap, ref, "")
	if err != nil {
		return ""
	}
	for _, r := range rows {
		if r.ModeID == s.modeID {
			return s.modeID
		}
	}
	return ""
}

func (s *editREPL) show(ref string) error {
	rows, err := findVariable(s.snap, ref, "")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if s.modeID != "" && r.ModeID != s.modeID {
			continue
		}
		res := s.view.Resolve(r.FileID, r.ID, r.ModeID)
		chain := resolve.FormatReferenceChain(res.ReferenceChain, r.FileID)
		_, _ = fmt.Fprintf(s.out, "%s [%s] = %s", r.Name, s.snap.ModeNames[r.ModeID], resolvedText(res))
		if chain != "" {
			_, _ = fmt.Fprintf(s.out, "  (%s)", chain)
		}
		_, _ = fmt.Fprintln(s.out)
	}
	return nil
}

func (s *editREPL) pending() int {
	n := 0
	for _, sess := range s.sessions {
		n += sess.Len()
	}
	return n
}

func (s *editREPL) listPending() {
	if s.pending() == 0 {
		_, _ = fmt.Fprintln(s.out, "No staged edits")
		return
	}
	for _, fileID := range s.order {
		for _, p := range s.sessions[fileID].Pending() {
			_, _ = fmt.Fprintf(s.out, "  %-7s %s [%s] %s\n", p.Edit.Kind, p.Variable.Name, s.snap.ModeNames[p.Variable.ModeID], describeEdit(p.Edit))
		}
	}
}

// plan flushes every session. The payloads are written to path as one JSON
// array, or printed when path is empty.
func (s *editREPL) plan(path string) error {
	if s.pending() == 0 {
		return errors.New("no staged edits")
	}

	files := make([]filePlan, 0, len(s.order))
	for _, fileID := range s.order {
		sess := s.sessions[fileID]
		n := sess.Len()
		if n == 0 {
			continue
		}
		planner := plannerFor(s.cmdCtx.Loader, s.snap, s.cmdCtx.Cfg, fileID, s.cmdCtx.Logger)
		payload, err := planner.Flush(sess)
		if err != nil {
			return err
		}
		files = append(files, filePlan{FileID: fileID, Edits: n, Payload: payload})
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return err
	}
	if path != "" {
		if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		_, _ = fmt.Fprintf(s.out, "Plan for %d file(s) written to %s\n", len(files), path)
	} else {
		_, _ = fmt.Fprintln(s.out, string(data))
	}

	// Flushed edits are no longer staged; the view goes back to the loaded state.
	s.view = resolve.NewView(s.snap)
	return nil
}

func resolvedText(res resolve.ResolvedVariableReference) string {
	if !res.Success || res.FinalVariable == nil {
		return "(" + res.ErrorMessage + ")"
	}
	return res.FinalVariable.Display
}

func describeEdit(e mutation.Edit) string {
	switch e.Kind {
	case mutation.KindAlias:
		return "→ " + e.TargetID
	case mutation.KindRename:
		return "→ " + e.Name
	case mutation.KindType:
		return "→ " + string(e.Type)
	case mutation.KindDelete:
		return ""
	default:
		return fmt.Sprint(e.Value)
	}
}

// splitArgs splits a line on spaces, keeping double-quoted runs together.
func splitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		args = []string{""}
	}
	return args
}

func printEditHelp(w io.Writer) {
	help := `
Commands:
  set <variable> <value>      Set the variable's value in the current mode
  alias <variable> <target>   Point the variable at another variable
  rename <variable> <name>    Rename the variable
  type <variable> <type>      Change the variable's type
  delete <variable>           Delete the variable
  show <variable>             Show resolved values, staged edits included
  .mode [name]                Show or set the mode edits apply to
  .pending                    List staged edits
  .plan [path]                Build the payload and clear staged edits
  .clear                      Drop staged edits
  .quit / .exit               Exit

Tips:
  - Quote names with spaces: set "Brand Primary" #ff0033
  - Tab completion works for variable names`
	_, _ = fmt.Fprintln(w, help)
}

// newVariableCompleter completes commands and variable names.
func newVariableCompleter(snap *core.Snapshot) *readline.PrefixCompleter {
	seen := make(map[string]bool)
	var names []string
	for _, v := range snap.Variables {
		if !seen[v.Name] && !strings.Contains(v.Name, " ") {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	sort.Strings(names)

	vars := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, n := range names {
		vars = append(vars, readline.PcItem(n))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("set", vars...),
		readline.PcItem("alias", vars...),
		readline.PcItem("rename", vars...),
		readline.PcItem("type", vars...),
		readline.PcItem("delete", vars...),
		readline.PcItem("show", vars...),
		readline.PcItem(".mode"),
		readline.PcItem(".pending"),
		readline.PcItem(".plan"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	)
}
