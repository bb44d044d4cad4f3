package doclet

import (
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/checker"
)

// Locator maps declarations to paths relative to a base directory and to
// character offsets.
type Locator struct {
	baseDir string
}

// NewLocator creates a Locator resolving paths against baseDir.
func NewLocator(baseDir string) *Locator {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &Locator{baseDir: baseDir}
}

// RelativePath returns path relative to the base directory, slash separated.
func (l *Locator) RelativePath(path string) string {
	rel, err := filepath.Rel(l.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// File returns the relative path of the file declaring decl.
func (l *Locator) File(decl *checker.Declaration) string {
	return l.RelativePath(decl.File.Path)
}

// Locate returns the file and the start and end offsets of decl. The start
// includes modifiers such as export and declare but not leading comments.
func (l *Locator) Locate(decl *checker.Declaration) Meta {
	node := decl.Span()
	return Meta{
		File:  l.File(decl),
		Start: decl.File.CharOffset(node.StartByte()),
		End:   decl.File.CharOffset(memberEnd(node)),
	}
}

// memberEnd returns the end of node. Members of class and type bodies own the
// ; or , that terminates them.
func memberEnd(node *sitter.Node) uint {
	end := node.EndByte()
	parent := node.Parent()
	if parent == nil || node.ChildByFieldName("body") != nil {
		return end
	}
	switch parent.Kind() {
	case "class_body", "interface_body", "object_type":
	default:
		return end
	}
	if next := node.NextSibling(); next != nil && !next.IsNamed() {
		if kind := next.Kind(); kind == ";" || kind == "," {
			return next.EndByte()
		}
	}
	return end
}
