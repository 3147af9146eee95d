package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "figvars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return dir, path
}

const baseConfig = `files:
  - id: main-file
    name: Main
    source: Main
  - id: theme-file
    source: Theme
`

// TestExpandEnvVars tests the expandEnvVars function.
func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, baseConfig)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, DefaultPayloadDir), cfg.PayloadDir)
	assert.Equal(t, filepath.Join(dir, DefaultCacheFile), cfg.CachePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.NoCache)
	assert.True(t, cfg.Selection.IsZero())
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_Files(t *testing.T) {
	ResetConfig()
	t.Setenv("FIGMA_MAIN_FILE", "abc123")
	_, path := writeConfig(t, `files:
  - id: ${FIGMA_MAIN_FILE}
    name: Main
    source: Main
  - id: theme-file
    source: theme
  - id: colors
    source: All Colors
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Files, 3)

	assert.Equal(t, "abc123", cfg.Files[0].ID)
	assert.Equal(t, "Main", cfg.Files[0].Name)
	assert.Equal(t, "theme-file", cfg.Files[1].Name, "name defaults to id")
	assert.Equal(t, map[string]string{
		"abc123":     "Main",
		"theme-file": "theme-file",
		"colors":     "colors",
	}, cfg.FileNames())
}

func TestLoadConfig_Selection(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		ResetConfig()
		_, path := writeConfig(t, baseConfig+`selection:
  brand: ClassCraft
  theme: Dark
`)
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "ClassCraft", cfg.Selection.Brand)
		assert.Equal(t, "Dark", cfg.Selection.Theme)
	})

	t.Run("env overrides file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("FIGVARS_SELECTION__BRAND", "Other")
		_, path := writeConfig(t, baseConfig+`selection:
  brand: ClassCraft
`)
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "Other", cfg.Selection.Brand)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("FIGVARS_SELECTION__BRAND", "Other")
		_, path := writeConfig(t, baseConfig)

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("brand", "", "brand")
		flags.String("theme", "", "theme")
		require.NoError(t, flags.Set("brand", "FromFlag"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "FromFlag", cfg.Selection.Brand)
		assert.Empty(t, cfg.Selection.Theme)
	})
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, baseConfig+"payload_dir: from_file\n")
	t.Setenv("FIGVARS_PAYLOAD_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("payload-dir", "", "payload directory")
	require.NoError(t, flags.Set("payload-dir", "from_flag"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("from_flag")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.PayloadDir, "flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, baseConfig+"payload_dir: from_file\n")
	t.Setenv("FIGVARS_PAYLOAD_DIR", "from_env")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from_env"), cfg.PayloadDir)
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, baseConfig+"payload_dir: from_file\n")
	t.Setenv("FIGVARS_PAYLOAD_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("payload-dir", "", "payload directory")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from_env"), cfg.PayloadDir)
}

func TestLoadConfig_CacheFlag(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, baseConfig)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("cache", "", "cache database")
	flags.Bool("no-cache", false, "disable cache")
	require.NoError(t, flags.Set("cache", ":memory:"))
	require.NoError(t, flags.Set("no-cache", "true"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.CachePath)
	assert.True(t, cfg.NoCache)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, `files:
  - id: a
    source: Main
  - id: a
    source: Nope
`)

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), `duplicate file id "a"`)
	assert.Contains(t, err.Error(), `unknown source "Nope"`)
	assert.Nil(t, GetCurrentConfig())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{"empty", Config{}, ""},
		{"valid", Config{OutputFormat: "json", Files: []FileConfig{{ID: "a", Source: "Main"}, {ID: "b", Source: "Theme"}}}, ""},
		{"bad output", Config{OutputFormat: "yaml"}, "invalid output"},
		{"missing id", Config{Files: []FileConfig{{Source: "Main"}}}, "id is required"},
		{"duplicate", Config{Files: []FileConfig{{ID: "a"}, {ID: "a"}}}, "duplicate file id"},
		{"unknown source", Config{Files: []FileConfig{{ID: "a", Source: "Other"}}}, "unknown source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateFiles(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{PayloadDir: dir}
	require.Error(t, cfg.ValidateFiles(), "no files configured")

	cfg.Files = []FileConfig{{ID: "a", Source: "Main"}}
	assert.NoError(t, cfg.ValidateFiles())

	cfg.PayloadDir = filepath.Join(dir, "missing")
	err := cfg.ValidateFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload directory does not exist")
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), 8))
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, "", resolvePathRelativeTo("", "/root"))
	assert.Equal(t, ":memory:", resolvePathRelativeTo(":memory:", "/root"))
	assert.Equal(t, "/abs/x", resolvePathRelativeTo("/abs/x", "/root"))
	assert.Equal(t, filepath.Join("/root", "rel"), resolvePathRelativeTo("rel", "/root"))
}

func TestLoadConfig_WatchDebounce(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, baseConfig)
	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWatchDebounce, cfg.WatchDebounce)

	ResetConfig()
	_, path = writeConfig(t, baseConfig+"watch_debounce: 250ms\n")
	cfg, err = LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
}

func TestLoadConfig_UnknownKeys(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, baseConfig+"payload_dri: typo\nselection:\n  brand: classcraft\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"payload_dri"}, cfg.UnknownKeys)
	assert.Equal(t, "classcraft", cfg.Selection.Brand)
}
