package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{"figvars.yaml", "figvars.yml"}

// flagOnlyKeys are flag keys with no config field.
var flagOnlyKeys = map[string]bool{"config": true, "project_dir": true}

// flagKeys maps flag names whose config key differs from the snake_case name.
var flagKeys = map[string]string{
	"cache":  "cache_path",
	"brand":  "selection.brand",
	"grade":  "selection.grade",
	"device": "selection.device",
	"theme":  "selection.theme",
}

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile finds the config file to use.
// Priority: explicit path > figvars.yaml > figvars.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func configExistsIn(dir string) bool {
	for _, name := range configNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a figvars config file.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --payload-dir (parent if it holds a config or the dir is named "payloads")
//  3. Search upward from CWD for figvars.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil {
		if dir, _ := flags.GetString("project-dir"); dir != "" && flags.Changed("project-dir") {
			if abs, err := filepath.Abs(dir); err == nil {
				return abs
			}
			return filepath.Clean(dir)
		}

		if dir, _ := flags.GetString("payload-dir"); dir != "" && flags.Changed("payload-dir") {
			if abs, err := filepath.Abs(dir); err == nil {
				parent := filepath.Dir(abs)
				if configExistsIn(parent) || filepath.Base(abs) == DefaultPayloadDir {
					return parent
				}
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// Paths given as flags are relative to CWD, not the project root.
	var flagPayloadDir, flagCachePath string
	if flags != nil {
		if flags.Changed("payload-dir") {
			if v, _ := flags.GetString("payload-dir"); v != "" {
				flagPayloadDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("cache") {
			if v, _ := flags.GetString("cache"); v != "" && v != ":memory:" {
				flagCachePath, _ = filepath.Abs(v)
			} else {
				flagCachePath = v
			}
		}
	}

	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"payload_dir":    DefaultPayloadDir,
		"cache_path":     DefaultCacheFile,
		"no_cache":       false,
		"verbose":        false,
		"output":         DefaultOutput,
		"watch_debounce": DefaultWatchDebounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		for _, name := range configNames {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment (FIGVARS_ prefix)
	// FIGVARS_PAYLOAD_DIR -> payload_dir, FIGVARS_SELECTION__BRAND -> selection.brand
	if err := k.Load(env.Provider("FIGVARS_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FIGVARS_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	var md mapstructure.Metadata
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Metadata:         &md,
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.UnknownKeys = unknownKeys(md.Unused)

	// 6. Resolve paths against the project root
	cfg.ProjectRoot = projectRoot
	if flagPayloadDir != "" {
		cfg.PayloadDir = flagPayloadDir
	} else {
		cfg.PayloadDir = resolvePathRelativeTo(expandEnvVars(cfg.PayloadDir), projectRoot)
	}
	if flagCachePath != "" {
		cfg.CachePath = flagCachePath
	} else {
		cfg.CachePath = resolvePathRelativeTo(expandEnvVars(cfg.CachePath), projectRoot)
	}

	for i := range cfg.Files {
		cfg.Files[i].ID = expandEnvVars(cfg.Files[i].ID)
		cfg.Files[i].Name = expandEnvVars(cfg.Files[i].Name)
		if cfg.Files[i].Name == "" {
			cfg.Files[i].Name = cfg.Files[i].ID
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

func unknownKeys(unused []string) []string {
	var keys []string
	for _, key := range unused {
		if !flagOnlyKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}
