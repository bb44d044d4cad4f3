package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar names reported by SourceFile.Language.
const (
	LanguageTypeScript = "typescript"
	LanguageTSX        = "tsx"
)

var javaScriptExtensions = []string{".js", ".jsx", ".mjs", ".cjs"}

// SourceFile is a parsed TypeScript or JavaScript file. It owns the tree-sitter tree,
// so nodes obtained from it stay valid until Close is called.
type SourceFile struct {
	Path     string
	Source   []byte
	Language string

	tree  *sitter.Tree
	ascii bool
	// wide holds the multi-byte runes of a non-ASCII source, built on first use.
	wide []wideRune
}

// wideRune records where a multi-byte rune ends and how many bytes more than
// UTF-16 units the source holds up to that point.
type wideRune struct {
	end   uint
	saved int
}

// Root returns the program node of the file.
func (f *SourceFile) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the source text covered by node.
func (f *SourceFile) Text(node *sitter.Node) string {
	return NodeText(node, f.Source)
}

// IsDeclarationFile reports whether the file is an ambient declaration file (.d.ts).
func (f *SourceFile) IsDeclarationFile() bool {
	return IsDeclarationFile(f.Path)
}

// IsJavaScript reports whether the file is JavaScript. JSDoc types only apply to these.
func (f *SourceFile) IsJavaScript() bool {
	return IsJavaScript(f.Path)
}

// CharOffset converts a byte offset into a UTF-16 code unit offset, the unit
// TypeScript uses for node positions.
func (f *SourceFile) CharOffset(byteOffset uint) int {
	if byteOffset > uint(len(f.Source)) {
		byteOffset = uint(len(f.Source))
	}
	if f.ascii {
		return int(byteOffset)
	}
	if f.wide == nil {
		f.wide = wideRunes(f.Source)
	}

	// Runes ending at or before byteOffset are fully counted.
	n := sort.Search(len(f.wide), func(i int) bool {
		return f.wide[i].end > byteOffset
	})
	if n == 0 {
		return int(byteOffset)
	}
	return int(byteOffset) - f.wide[n-1].saved
}

func wideRunes(src []byte) []wideRune {
	wide := []wideRune{}
	saved := 0
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		i += size
		if size == 1 {
			continue
		}
		units := 1
		if r >= 0x10000 {
			units = 2
		}
		saved += size - units
		wide = append(wide, wideRune{end: uint(i), saved: saved})
	}
	return wide
}

// Close releases the tree-sitter tree.
func (f *SourceFile) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Parser parses TypeScript and JavaScript files. JavaScript goes through the
// TypeScript grammar; .tsx and .jsx use the TSX grammar.
type Parser struct {
	typescript *sitter.Language
	tsx        *sitter.Language
}

// NewParser creates a new TypeScript parser.
func NewParser() *Parser {
	return &Parser{
		typescript: sitter.NewLanguage(typescript.LanguageTypescript()),
		tsx:        sitter.NewLanguage(typescript.LanguageTSX()),
	}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.Parse(filePath, source)
}

// Parse parses source as the file at filePath.
func (p *Parser) Parse(filePath string, source []byte) (*SourceFile, error) {
	lang, name := p.typescript, LanguageTypeScript
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx", ".jsx":
		lang, name = p.tsx, LanguageTSX
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", name, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", name, filePath)
	}

	return &SourceFile{
		Path:     filePath,
		Source:   source,
		Language: name,
		tree:     tree,
		ascii:    isASCII(source),
	}, nil
}

// IsDeclarationFile reports whether path names a .d.ts file.
func IsDeclarationFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".d.ts") || strings.HasSuffix(lower, ".d.mts") || strings.HasSuffix(lower, ".d.cts")
}

// IsJavaScript reports whether path names a JavaScript file.
func IsJavaScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, js := range javaScriptExtensions {
		if ext == js {
			return true
		}
	}
	return false
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
