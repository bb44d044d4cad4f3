package doclet

import (
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/checker"
	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

// Walker visits the top-level declarations of the root files, keeps the
// visible ones and hands each to the serializer for its kind.
type Walker struct {
	program    *checker.Program
	serializer *serializer
	logger     *slog.Logger
	namespaces bool

	// seen holds symbols already documented. Overloads and merged
	// declarations are documented once.
	seen map[*checker.Symbol]bool
}

// NewWalker creates a Walker over program. When namespaces is set, namespace
// bodies are walked too.
func NewWalker(program *checker.Program, locator *Locator, logger *slog.Logger, namespaces bool) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	facade := NewFacade(program.Checker(), locator)
	return &Walker{
		program:    program,
		serializer: newSerializer(facade, locator, logger),
		logger:     logger,
		namespaces: namespaces,
		seen:       make(map[*checker.Symbol]bool),
	}
}

// Walk documents the root files in order and appends the doclets to agg. It
// stops at the first fatal error.
func (w *Walker) Walk(agg *Aggregator) error {
	for _, path := range w.program.RootFiles() {
		file := w.program.File(path)
		if file == nil {
			continue
		}
		if err := w.walkStatements(file, file.Root(), agg); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkStatements(file *checker.File, parent *sitter.Node, agg *Aggregator) error {
	for _, stmt := range parsers.NamedChildren(parent) {
		if !w.isExported(file, stmt) {
			continue
		}
		if err := w.visit(file, stmt, agg); err != nil {
			return err
		}
	}
	return nil
}

// isExported reports whether a statement is visible outside its file: it is
// exported, or it sits at the top of a declaration file or a script, where
// every declaration is global.
func (w *Walker) isExported(file *checker.File, stmt *sitter.Node) bool {
	if stmt.Kind() == "export_statement" {
		return true
	}
	parent := stmt.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() != "program" {
		// Namespace bodies are only walked in legacy mode, which documents
		// every member.
		return true
	}
	return file.IsDeclarationFile() || !file.IsModule
}

func (w *Walker) visit(file *checker.File, stmt *sitter.Node, agg *Aggregator) error {
	decls := file.DeclarationsAt(stmt)
	if len(decls) == 0 {
		w.logger.Debug("skipping unsupported statement", "kind", stmt.Kind(), "file", file.Path)
		return nil
	}

	for _, decl := range decls {
		if decl.Symbol == nil || w.seen[decl.Symbol] {
			continue
		}
		switch decl.Kind {
		case checker.DeclClass:
			w.seen[decl.Symbol] = true
			if err := w.visitClass(decl.Symbol, agg); err != nil {
				return err
			}
		case checker.DeclFunction:
			w.seen[decl.Symbol] = true
			doclet, err := w.serializer.Method(decl.Symbol)
			if err != nil {
				return err
			}
			if doclet != nil {
				agg.Append(doclet)
			}
		case checker.DeclInterface:
			w.seen[decl.Symbol] = true
			doclets, err := w.serializer.Interface(decl.Symbol)
			if err != nil {
				return err
			}
			agg.Append(doclets...)
		case checker.DeclVariable:
			w.seen[decl.Symbol] = true
			doclet, err := w.serializer.Variable(decl.Symbol)
			if err != nil {
				return err
			}
			agg.Append(doclet)
		case checker.DeclModule:
			if !w.namespaces {
				continue
			}
			if err := w.visitNamespace(file, decl, agg); err != nil {
				return err
			}
		default:
			w.logger.Debug("skipping unsupported declaration", "kind", decl.Kind.String(), "name", decl.Name, "file", file.Path)
		}
	}
	return nil
}

func (w *Walker) visitClass(sym *checker.Symbol, agg *Aggregator) error {
	doclet, err := w.serializer.Class(sym)
	if err != nil {
		return err
	}
	agg.Append(doclet)
	if sym.Members == nil {
		return nil
	}

	for _, member := range sym.Members.Values() {
		first, err := w.serializer.facade.FirstDeclaration(member)
		if err != nil {
			return err
		}
		switch first.Kind {
		case checker.DeclConstructor:
			doclets, err := w.serializer.Constructors(member)
			if err != nil {
				return err
			}
			agg.Append(doclets...)
		case checker.DeclMethod, checker.DeclMethodSignature:
			doclet, err := w.serializer.Method(member)
			if err != nil {
				return err
			}
			if doclet != nil {
				agg.Append(doclet)
			}
		default:
			doclet, err := w.serializer.Property(member)
			if err != nil {
				return err
			}
			agg.Append(doclet)
		}
	}
	return nil
}

// visitNamespace walks the statements of a namespace body. For A.B.C the body
// belongs to the innermost declaration.
func (w *Walker) visitNamespace(file *checker.File, decl *checker.Declaration, agg *Aggregator) error {
	body := decl.Node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	return w.walkStatements(file, body, agg)
}
