package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/figvars/internal/cli"
	"github.com/leapstack-labs/figvars/internal/cli/config"
)

// envVars documents the FIGVARS_ overrides the config loader reads.
var envVars = [][]string{
	{"FIGVARS_PAYLOAD_DIR", "Directory of <file-id>.json payloads"},
	{"FIGVARS_CACHE_PATH", "Payload cache database path"},
	{"FIGVARS_NO_CACHE", "Disable the payload cache"},
	{"FIGVARS_OUTPUT", "Default output format"},
	{"FIGVARS_SELECTION__BRAND", "Brand to select modes for"},
	{"FIGVARS_SELECTION__GRADE", "Grade band to select modes for"},
	{"FIGVARS_SELECTION__DEVICE", "Device to select modes for"},
	{"FIGVARS_SELECTION__THEME", "Theme to select modes for"},
}

// generateCLIDocs writes an index page plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func documented(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for figvars")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(strings.Join(strings.Fields(root.Long), " "))

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/figvars/cmd/figvars@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	flagTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Settings from %s can be overridden with these variables. "+
		"Nested keys use a double underscore. Flags win over the environment.", InlineCode("figvars.yaml")))
	env := make([][]string, 0, len(envVars))
	for _, e := range envVars {
		env = append(env, []string{InlineCode(e[0]), e[1]})
	}
	w.Table([]string{"Variable", "Description"}, env)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including alias cycles reported by " + InlineCode("figvars cycles")},
	})

	w.Paragraph(fmt.Sprintf("Payloads are read from %s and cached in %s unless configured otherwise.",
		InlineCode(config.DefaultPayloadDir+"/<file-id>.json"), InlineCode(config.DefaultCacheFile)))
	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	use := cmd.UseLine()
	if !strings.HasPrefix(use, "figvars") {
		use = "figvars " + use
	}
	w.CodeBlock("bash", use)

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, 0, len(cmd.Aliases))
		for _, a := range cmd.Aliases {
			aliases = append(aliases, InlineCode(a))
		}
		w.BulletList(aliases)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		flagTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		flagTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

func flagTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		if def != "" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, line := range lines {
			if len(line) >= indent {
				lines[i] = line[indent:]
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
