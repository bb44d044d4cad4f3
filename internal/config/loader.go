package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tailscale/hujson"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
	// RootDir is the directory include and exclude patterns are relative to.
	RootDir() string
}

type loader struct {
	rootDir    string
	configFile string
	required   bool
}

// NewLoader creates a new configuration loader for the given root directory.
// A missing tsconfig.json in rootDir is not an error.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: filepath.Join(rootDir, ConfigFileName),
	}
}

// NewFileLoader creates a loader for an explicit project file, as given with
// --project. The file must exist; its directory becomes the root.
func NewFileLoader(path string) Loader {
	return &loader{
		rootDir:    filepath.Dir(path),
		configFile: path,
		required:   true,
	}
}

func (l *loader) RootDir() string {
	return l.rootDir
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCLET_*)
// 2. Project file (tsconfig.json, comments and trailing commas allowed)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	// Enable environment variable overrides
	v.SetEnvPrefix("DOCLET")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DOCLET_COMPILEROPTIONS_TARGET)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"include",
		"exclude",
		"compilerOptions.allowJs",
		"compilerOptions.checkJs",
		"compilerOptions.noEmit",
		"compilerOptions.target",
		"compilerOptions.moduleResolution",
		"doclets.namespaces",
		"doclets.baseDir",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	raw, err := os.ReadFile(l.configFile)
	switch {
	case err == nil:
		// tsconfig files are JSON with comments; viper only reads strict JSON.
		standard, err := hujson.Standardize(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", l.configFile, err)
		}
		if err := v.ReadConfig(bytes.NewReader(standard)); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !l.required:
		// No project file is acceptable - we'll use defaults + env vars
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CompilerOptions = cfg.CompilerOptions.Normalize()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)

	v.SetDefault("compilerOptions.allowJs", defaults.CompilerOptions.AllowJs)
	v.SetDefault("compilerOptions.checkJs", defaults.CompilerOptions.CheckJs)
	v.SetDefault("compilerOptions.noEmit", defaults.CompilerOptions.NoEmit)
	v.SetDefault("compilerOptions.target", defaults.CompilerOptions.Target)

	v.SetDefault("doclets.namespaces", defaults.Doclets.Namespaces)
}
