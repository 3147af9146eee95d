package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/figvars/internal/cli/config"
)

// generateConfigDocs generates the figvars.yaml reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "files", "selection"
}

// getConfigSchema mirrors the koanf tags of config.Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "payload_dir", Type: "string", Default: config.DefaultPayloadDir, Description: "Directory of <file-id>.json payloads", Category: "project"},
		{Name: "cache_path", Type: "string", Default: config.DefaultCacheFile, Description: "SQLite payload cache; \":memory:\" keeps it in memory", Category: "project"},
		{Name: "no_cache", Type: "bool", Default: "false", Description: "Read payloads from disk only", Category: "project"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json", Category: "project"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging to stderr", Category: "project"},
		{Name: "watch_debounce", Type: "duration", Default: config.DefaultWatchDebounce.String(), Description: "How long watch waits for payload writes to settle", Category: "project"},

		{Name: "id", Type: "string", Description: "Figma file key; the payload is read from <id>.json", Category: "files"},
		{Name: "name", Type: "string", Description: "Display name, defaults to the id", Category: "files"},
		{Name: "source", Type: "string", Default: "Main", Description: "Main, Theme or AllColors", Category: "files"},

		{Name: "brand", Type: "string", Description: "Brand, e.g. classcraft", Category: "selection"},
		{Name: "grade", Type: "string", Description: "Grade band, e.g. primary", Category: "selection"},
		{Name: "device", Type: "string", Description: "Device, e.g. desktop", Category: "selection"},
		{Name: "theme", Type: "string", Description: "Theme: light or dark", Category: "selection"},
	}
}

func fieldRows(category string) [][]string {
	var rows [][]string
	for _, f := range getConfigSchema() {
		if f.Category != category {
			continue
		}
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		} else {
			defVal = InlineCode(defVal)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, cleanDescription(f.Description)})
	}
	return rows
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()
	headers := []string{"Field", "Type", "Default", "Description"}

	w.Frontmatter("Configuration", "figvars configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("figvars is configured via `figvars.yaml` in your project root. Environment variables with the `FIGVARS_` prefix override the file, and flags override both.")

	w.Header(2, "Project Settings")
	w.Table(headers, fieldRows("project"))

	w.Header(2, "Files")
	w.Paragraph("Each entry under `files` is one Figma file. Later files win when two define a variable with the same name.")
	w.Table(headers, fieldRows("files"))

	w.Header(2, "Mode Selection")
	w.Paragraph("The `selection` block picks the modes shown by `list` and targeted by edits. Every field is optional.")
	w.Table(headers, fieldRows("selection"))

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# figvars.yaml
payload_dir: payloads
cache_path: .figvars/cache.db

files:
  - id: ${FIGMA_MAIN_FILE}
    name: Main
    source: Main
  - id: ${FIGMA_THEME_FILE}
    name: Theme
    source: Theme

selection:
  brand: classcraft
  grade: primary
  device: desktop
  theme: dark`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Use `${VAR_NAME}` in paths and file ids. Nested keys use a double underscore in the environment:")
	w.CodeBlock("bash", `FIGVARS_SELECTION__THEME=light figvars list`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
