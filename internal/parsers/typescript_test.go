package parsers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Test Plan for the TypeScript parser:
// - .ts and .js use the TypeScript grammar, .tsx and .jsx the TSX grammar
// - ParseFile reads from disk and honours a cancelled context
// - CharOffset counts UTF-16 code units, astral characters as two
// - CharOffset agrees with a UTF-16 encoding of the prefix at every rune boundary
// - Declaration and JavaScript files are recognised by extension
// - Tree helpers find children, skip comments and walk in order

func TestParse_SelectsGrammar(t *testing.T) {
	t.Parallel()

	p := NewParser()
	tests := []struct {
		path string
		want string
	}{
		{"a.ts", LanguageTypeScript},
		{"a.js", LanguageTypeScript},
		{"a.d.ts", LanguageTypeScript},
		{"a.tsx", LanguageTSX},
		{"a.JSX", LanguageTSX},
	}
	for _, tt := range tests {
		file, err := p.Parse(tt.path, []byte("export const a = 1;\n"))
		require.NoError(t, err)
		assert.Equal(t, tt.want, file.Language, tt.path)
		assert.Equal(t, "program", file.Root().Kind())
		file.Close()
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(path, []byte("let x: number = 1;\n"), 0o644))

	p := NewParser()
	file, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, path, file.Path)
	assert.Equal(t, "lexical_declaration", FirstNamedChild(file.Root()).Kind())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ParseFile(ctx, path)
	require.ErrorIs(t, err, context.Canceled)

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "missing.ts"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCharOffset(t *testing.T) {
	t.Parallel()

	p := NewParser()
	// é is two bytes and one unit; 😀 is four bytes and two units.
	source := []byte("const s = \"é😀\"; export const after = 1;\n")
	file, err := p.Parse("a.ts", source)
	require.NoError(t, err)
	defer file.Close()

	stmt := NamedChildren(file.Root())[1]
	assert.Equal(t, "export_statement", stmt.Kind())
	assert.Equal(t, int(stmt.StartByte())-1-2, file.CharOffset(stmt.StartByte()))
	assert.Equal(t, len(source)-3, file.CharOffset(uint(len(source)+10)))

	ascii, err := p.Parse("b.ts", []byte("let a = 1;"))
	require.NoError(t, err)
	defer ascii.Close()
	assert.Equal(t, 4, ascii.CharOffset(4))
}

func TestCharOffset_MatchesUTF16(t *testing.T) {
	t.Parallel()

	source := []byte("/** ünïcödé */\nexport const a = \"日本語\";\n// 😀 😀\nexport const b = 'x';\n")
	file, err := NewParser().Parse("c.ts", source)
	require.NoError(t, err)
	defer file.Close()

	for i := range string(source) {
		want := len(utf16.Encode([]rune(string(source[:i]))))
		assert.Equal(t, want, file.CharOffset(uint(i)), "byte offset %d", i)
	}
	assert.Equal(t, len(utf16.Encode([]rune(string(source)))), file.CharOffset(uint(len(source))))
}

func TestFileKinds(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDeclarationFile("types/index.d.ts"))
	assert.True(t, IsDeclarationFile("lib.D.MTS"))
	assert.False(t, IsDeclarationFile("index.ts"))

	assert.True(t, IsJavaScript("a.js"))
	assert.True(t, IsJavaScript("a.cjs"))
	assert.True(t, IsJavaScript("a.jsx"))
	assert.False(t, IsJavaScript("a.ts"))
}

func TestTreeHelpers(t *testing.T) {
	t.Parallel()

	p := NewParser()
	file, err := p.Parse("a.ts", []byte("/** doc */\nexport class A { static x = 1; }\n"))
	require.NoError(t, err)
	defer file.Close()

	root := file.Root()
	children := NamedChildren(root)
	require.Len(t, children, 1, "comments are skipped")
	stmt := children[0]
	assert.True(t, HasChild(stmt, "export"))
	assert.False(t, HasChild(stmt, "default"))
	assert.Nil(t, FindChildByType(stmt, "interface_declaration"))
	assert.Empty(t, FindChildrenByType(nil, "class"))
	assert.Nil(t, FirstNamedChild(nil))

	var kinds []string
	WalkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "class_body" {
			return false
		}
		if n.IsNamed() {
			kinds = append(kinds, n.Kind())
		}
		return true
	})
	assert.Contains(t, kinds, "class_declaration")
	assert.NotContains(t, kinds, "public_field_definition")
	assert.Equal(t, "A", file.Text(FindChildByType(stmt, "class_declaration").ChildByFieldName("name")))
	assert.Equal(t, "", NodeText(nil, file.Source))
}
