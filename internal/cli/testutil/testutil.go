// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	fixtures "github.com/leapstack-labs/figvars/internal/testutil"
)

// TestConfig is the figvars.yaml written by SetupTestProject.
const TestConfig = `payload_dir: payloads
cache_path: .figvars/cache.db
files:
  - id: main-file
    name: Main
    source: Main
  - id: theme-file
    name: Theme
    source: Theme
`

// SetupTestProject creates a temporary project with a figvars.yaml and the
// fixture payloads in payloads/.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	payloadDir := filepath.Join(tmpDir, "payloads")
	if err := os.MkdirAll(payloadDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", payloadDir, err)
	}
	fixtures.WritePayloads(t, payloadDir)

	if err := os.WriteFile(filepath.Join(tmpDir, "figvars.yaml"), []byte(TestConfig), 0644); err != nil {
		t.Fatalf("failed to create figvars.yaml: %v", err)
	}

	return tmpDir
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
