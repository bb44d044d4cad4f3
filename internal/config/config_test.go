package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no tsconfig.json exists
// - Load() reads tsconfig.json with comments and trailing commas
// - Load() merges the project file with defaults
// - Unknown compiler options are carried through
// - Environment variables override file values
// - NewFileLoader() requires the file to exist and roots at its directory
// - Load() returns error for malformed JSON and for invalid values
// - Validate() rejects empty include, bad globs and unknown targets
// - Validate() reports every problem at once
// - GenerateOptions() and Discovery() resolve paths against the root

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"**/*.ts", "**/*.js"}, cfg.Include)
	assert.Equal(t, []string{"node_modules/**"}, cfg.Exclude)
	assert.True(t, cfg.CompilerOptions.AllowJs)
	assert.True(t, cfg.CompilerOptions.CheckJs)
	assert.True(t, cfg.CompilerOptions.NoEmit)
	assert.Equal(t, "es6", cfg.CompilerOptions.Target)
	assert.False(t, cfg.Doclets.Namespaces)

	require.NoError(t, Validate(cfg))
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Include, cfg.Include)
	assert.Equal(t, Default().Exclude, cfg.Exclude)
	assert.Equal(t, "es6", cfg.CompilerOptions.Target)
	assert.True(t, cfg.CompilerOptions.AllowJs)
}

func TestLoad_ReadsCommentedProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
  // sources only
  "include": ["src/**/*.ts"],
  "compilerOptions": {
    "target": "ES2020", /* upper case is folded */
    "moduleResolution": "node",
    "strict": true,
  },
  "doclets": { "namespaces": true },
}`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Include)
	// exclude falls back to the default
	assert.Equal(t, []string{"node_modules/**"}, cfg.Exclude)
	assert.Equal(t, "es2020", cfg.CompilerOptions.Target)
	assert.Equal(t, "node", cfg.CompilerOptions.ModuleResolution)
	assert.True(t, cfg.CompilerOptions.AllowJs)
	assert.True(t, cfg.Doclets.Namespaces)

	require.NotNil(t, cfg.CompilerOptions.Extra)
	var strict any
	for k, v := range cfg.CompilerOptions.Extra {
		if k == "strict" {
			strict = v
		}
	}
	assert.Equal(t, true, strict)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": {"target": "es5"}}`)

	t.Setenv("DOCLET_COMPILEROPTIONS_TARGET", "esnext")
	t.Setenv("DOCLET_DOCLETS_NAMESPACES", "true")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "esnext", cfg.CompilerOptions.Target)
	assert.True(t, cfg.Doclets.Namespaces)
}

func TestNewFileLoader(t *testing.T) {
	t.Parallel()

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "tsconfig.build.json")).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("roots at the file directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "tsconfig.build.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"include": ["lib/*.js"]}`), 0o644))

		l := NewFileLoader(path)
		cfg, err := l.Load()
		require.NoError(t, err)
		assert.Equal(t, dir, l.RootDir())
		assert.Equal(t, []string{"lib/*.js"}, cfg.Include)
	})
}

func TestLoad_MalformedJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"include": [`)

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": {"target": "es1999"}}`)

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Contains(t, err.Error(), "compilerOptions.target")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty include",
			mutate:  func(c *Config) { c.Include = []string{} },
			wantErr: ErrInvalidField,
			wantMsg: "include is required",
		},
		{
			name:    "bad include glob",
			mutate:  func(c *Config) { c.Include = []string{"src/[.ts"} },
			wantErr: ErrInvalidPattern,
			wantMsg: "src/[.ts",
		},
		{
			name:    "bad exclude glob",
			mutate:  func(c *Config) { c.Exclude = []string{"dist/[x"} },
			wantErr: ErrInvalidPattern,
			wantMsg: "exclude",
		},
		{
			name:    "unknown target lists accepted levels",
			mutate:  func(c *Config) { c.CompilerOptions.Target = "es1999" },
			wantErr: ErrInvalidField,
			wantMsg: "compilerOptions.target must be one of [es3 es5 es6",
		},
		{
			name:    "unknown module resolution",
			mutate:  func(c *Config) { c.CompilerOptions.ModuleResolution = "webpack" },
			wantErr: ErrInvalidField,
			wantMsg: "compilerOptions.moduleResolution",
		},
		{
			name:   "empty target is allowed",
			mutate: func(c *Config) { c.CompilerOptions.Target = "" },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Include = []string{"src/[.ts"}
	cfg.CompilerOptions.Target = "es1999"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Contains(t, err.Error(), "2 errors occurred")
}

func TestGenerateOptionsAndDiscovery(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.ts"), []byte("export const a = 1;\n"), 0o644))

	cfg := Default()
	cfg.Doclets.BaseDir = "src"

	assert.Len(t, cfg.GenerateOptions(root), 2)

	fd, err := cfg.Discovery(root)
	require.NoError(t, err)
	files, err := fd.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "a.ts")}, files)
}
