// Package main provides tests for the figvars CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/figvars/internal/cli"
	"github.com/leapstack-labs/figvars/internal/cli/config"
	"github.com/leapstack-labs/figvars/internal/cli/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "figvars") {
		t.Errorf("version output should contain 'figvars', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"status", "list", "tree", "resolve", "modes", "cycles", "plan", "edit", "watch"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestListCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	output, err := runCLI(t, "list", "--project-dir", dir, "--no-cache", "--output", "markdown")
	if err != nil {
		t.Fatalf("list command error = %v", err)
	}
	if !strings.Contains(output, "# Variables") {
		t.Errorf("list output should contain '# Variables', got: %s", output)
	}
}

func TestListCommandSelectionFlags(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	output, err := runCLI(t, "list", "--project-dir", dir, "--no-cache", "-o", "json",
		"--brand", "ClassCraft", "--grade", "primary", "--device", "desktop", "--theme", "light")
	if err != nil {
		t.Fatalf("list command error = %v", err)
	}

	var got struct {
		Match   string   `json:"match"`
		ModeIDs []string `json:"modeIds"`
	}
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, output)
	}
	if got.Match != "exact" || len(got.ModeIDs) != 1 || got.ModeIDs[0] != "2:0" {
		t.Errorf("selection = %+v, want exact match on 2:0", got)
	}
}

func TestCacheFlag(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	if _, err := runCLI(t, "status", "--project-dir", dir, "--cache", cachePath); err != nil {
		t.Fatalf("status command error = %v", err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("cache database should exist at %s: %v", cachePath, err)
	}
}

func TestCyclesCommandFails(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, err := runCLI(t, "cycles", "--project-dir", dir, "--no-cache")
	if err == nil {
		t.Error("cycles should fail on the fixture's loop/a and loop/b")
	}
}

func TestMissingPayloadDir(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, err := runCLI(t, "status", "--project-dir", dir, "--payload-dir", filepath.Join(dir, "nope"))
	if err == nil || !strings.Contains(err.Error(), "payload directory does not exist") {
		t.Errorf("expected missing payload dir error, got %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			output, err := runCLI(t, "completion", shell)
			if err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
			if output == "" {
				t.Errorf("completion %s wrote nothing", shell)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "unknown-command"); err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
