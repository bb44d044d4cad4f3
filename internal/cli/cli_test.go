package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/doclet-gen/internal/config"
)

// Test Plan for the CLI:
// - executeGenerate discovers project files through tsconfig.json
// - executeGenerate documents explicit files instead of discovered ones
// - executeGenerate fails without input files and writes nothing
// - a missing declaration aborts generation and writes nothing, not even an output file
// - executeGenerate writes to the output file instead of out when one is given
// - executeVerify passes on the repository fixtures
// - executeVerify reports a differing fixture and returns ErrFixturesFailed
// - CLIProgressReporter grows its total for imported files and stays silent when quiet
// - newLogger drops debug records unless verbose

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func decodeDoclets(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var doclets []map[string]any
	require.NoError(t, json.Unmarshal(data, &doclets))
	return doclets
}

func TestExecuteGenerate_DiscoversProjectFiles(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"tsconfig.json": `{
  // only the sources
  "include": ["src/**/*.ts"],
}`,
		"src/a.ts":       "export const answer = 42;\nconst hidden = 1;\n",
		"scripts/b.ts":   "export const skipped = true;\n",
		"node_modules/x": "ignored",
	})

	var out, errOut bytes.Buffer
	err := executeGenerate(&out, &errOut, generateRequest{loader: config.NewLoader(root)})
	require.NoError(t, err)

	doclets := decodeDoclets(t, out.Bytes())
	require.Len(t, doclets, 1)
	assert.Equal(t, "variable", doclets[0]["kind"])
	assert.Equal(t, "answer", doclets[0]["name"])
	meta := doclets[0]["meta"].(map[string]any)
	assert.Equal(t, "src/a.ts", meta["file"])
}

func TestExecuteGenerate_ExplicitFiles(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a.ts": "export function one(): number { return 1; }\n",
		"b.ts": "export function two(): number { return 2; }\n",
	})

	var out, errOut bytes.Buffer
	err := executeGenerate(&out, &errOut, generateRequest{
		loader: config.NewLoader(root),
		files:  []string{filepath.Join(root, "b.ts")},
	})
	require.NoError(t, err)

	doclets := decodeDoclets(t, out.Bytes())
	require.Len(t, doclets, 1)
	assert.Equal(t, "function", doclets[0]["kind"])
	assert.Equal(t, "two", doclets[0]["name"])
	assert.Equal(t, "b.ts#two", doclets[0]["fullName"])
}

func TestExecuteGenerate_NoInputFiles(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{"README.md": "# nothing here\n"})

	var out, errOut bytes.Buffer
	err := executeGenerate(&out, &errOut, generateRequest{loader: config.NewLoader(root)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
	assert.Empty(t, out.String())
}

func TestExecuteGenerate_MissingDeclarationWritesNothing(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a.ts": "import { Gone } from './missing';\nexport const value: Gone = null;\n",
	})

	var out, errOut bytes.Buffer
	err := executeGenerate(&out, &errOut, generateRequest{loader: config.NewLoader(root)})
	require.Error(t, err)
	assert.Empty(t, out.String())

	output := filepath.Join(root, "doclets.json")
	err = executeGenerate(&out, &errOut, generateRequest{loader: config.NewLoader(root), output: output})
	require.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestExecuteGenerate_OutputFile(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a.ts": "export const answer = 42;\n",
	})
	output := filepath.Join(root, "doclets.json")
	require.NoError(t, os.WriteFile(output, []byte("stale"), 0o644))

	var out, errOut bytes.Buffer
	err := executeGenerate(&out, &errOut, generateRequest{loader: config.NewLoader(root), output: output})
	require.NoError(t, err)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	doclets := decodeDoclets(t, data)
	require.Len(t, doclets, 1)
	assert.Equal(t, "answer", doclets[0]["name"])
}

func TestExecuteVerify_RepositoryFixtures(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := executeVerify(&out, filepath.Join("..", "..", "testdata", "fixtures"), false)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "✓ 01")
	assert.Contains(t, out.String(), "All 4 fixtures passed")
}

func TestExecuteVerify_ReportsFailure(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"fixtures/01-input.ts":    "export const answer = 42;\n",
		"fixtures/01-output.json": "[]",
	})

	var out bytes.Buffer
	err := executeVerify(&out, filepath.Join(root, "fixtures"), true)
	require.ErrorIs(t, err, ErrFixturesFailed)
	assert.Contains(t, out.String(), "✗ 01")
	assert.Contains(t, out.String(), "answer")
}

func TestCLIProgressReporter(t *testing.T) {
	t.Parallel()

	t.Run("grows with imported files", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := NewCLIProgressReporter(&buf, false)
		r.OnLoadStart(1)
		r.OnFileLoaded("/src/a.ts")
		r.OnFileLoaded("/src/b.ts")
		assert.Equal(t, 2, r.total)
		r.OnLoadComplete(2, 1500*time.Millisecond)

		assert.True(t, r.finished)
		assert.Contains(t, buf.String(), "Loaded 2 files")
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := NewCLIProgressReporter(&buf, true)
		r.OnLoadStart(3)
		r.OnFileLoaded("/src/a.ts")
		r.OnLoadComplete(1, time.Second)

		assert.Empty(t, buf.String())
	})
}

func TestNewLogger_Verbosity(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	newLogger(&quiet, false).Debug("skipping declaration")
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	newLogger(&loud, true).Debug("skipping declaration")
	assert.Contains(t, loud.String(), "skipping declaration")
}
