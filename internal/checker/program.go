package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/maypok86/otter"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

// ErrNoRootFiles is returned when a program is created without any usable root file.
var ErrNoRootFiles = errors.New("no root files")

const resolutionCacheSize = 4096

// Extensions tried, in order, for a relative specifier without one.
var (
	typeScriptExtensions = []string{".ts", ".tsx", ".d.ts"}
	javaScriptExtensions = []string{".js", ".jsx", ".mjs", ".cjs"}
)

var jsdocImportPattern = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)

// File is a parsed and bound source file.
type File struct {
	*parsers.SourceFile

	// Locals holds every top-level declaration of the file.
	Locals *SymbolTable
	// Exports holds what other modules can import. Script files export nothing.
	Exports *SymbolTable
	// Symbol is the module symbol used for namespace imports.
	Symbol *Symbol
	// IsModule is true when the file has an import or export statement.
	IsModule bool

	decls      map[uintptr][]*Declaration
	nodes      map[uintptr]*Declaration
	specifiers []string
	// reexports lists the specifiers of export * from statements.
	reexports []string
}

// DeclarationsAt returns the declarations bound for a statement or member node,
// in source order. A variable statement yields one declaration per bound name.
func (f *File) DeclarationsAt(node *sitter.Node) []*Declaration {
	if node == nil {
		return nil
	}
	return f.decls[node.Id()]
}

// declarationOf returns the declaration whose Node is node.
func (f *File) declarationOf(node *sitter.Node) *Declaration {
	return f.nodes[node.Id()]
}

func (f *File) recordDeclaration(host *sitter.Node, decl *Declaration) {
	f.decls[host.Id()] = append(f.decls[host.Id()], decl)
	if _, ok := f.nodes[decl.Node.Id()]; !ok {
		f.nodes[decl.Node.Id()] = decl
	}
}

// ProgramOption configures a Program.
type ProgramOption func(*Program)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) ProgramOption {
	return func(p *Program) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress sets the reporter notified while files load.
func WithProgress(progress ProgressReporter) ProgramOption {
	return func(p *Program) {
		if progress != nil {
			p.progress = progress
		}
	}
}

// Program is a set of root files plus every file they reach through relative
// imports, parsed, bound and ready to be checked.
type Program struct {
	options   CompilerOptions
	rootNames []string
	files     map[string]*File
	loadOrder []string

	imports     graph.Graph[string, string]
	resolutions otter.Cache[string, string]
	globals     *SymbolTable

	parser   *parsers.Parser
	logger   *slog.Logger
	progress ProgressReporter
	checker  *Checker
}

// NewProgram loads rootFiles and everything they import.
func NewProgram(rootFiles []string, options CompilerOptions, opts ...ProgramOption) (*Program, error) {
	cache, err := otter.MustBuilder[string, string](resolutionCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution cache: %w", err)
	}

	p := &Program{
		options:     options.Normalize(),
		files:       make(map[string]*File),
		imports:     graph.New(graph.StringHash, graph.Directed()),
		resolutions: cache,
		globals:     NewSymbolTable(),
		parser:      parsers.NewParser(),
		logger:      slog.Default(),
		progress:    &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.load(rootFiles); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Program) load(rootFiles []string) error {
	start := time.Now()
	p.progress.OnLoadStart(len(rootFiles))

	var queue []string
	for _, name := range rootFiles {
		abs, err := filepath.Abs(name)
		if err != nil {
			return fmt.Errorf("failed to resolve root file %s: %w", name, err)
		}
		if parsers.IsJavaScript(abs) && !p.options.AllowJs {
			p.logger.Warn("skipping JavaScript root file, allowJs is not set", "file", name)
			continue
		}
		if _, ok := p.files[abs]; ok {
			continue
		}
		if _, err := p.loadFile(abs); err != nil {
			return fmt.Errorf("failed to load root file %s: %w", name, err)
		}
		p.rootNames = append(p.rootNames, abs)
		queue = append(queue, abs)
	}
	if len(p.rootNames) == 0 {
		return ErrNoRootFiles
	}

	for len(queue) > 0 {
		current := p.files[queue[0]]
		queue = queue[1:]

		for i, spec := range current.specifiers {
			target, ok := p.resolvePath(current.Path, spec)
			if !ok {
				continue
			}
			if _, loaded := p.files[target]; !loaded {
				if _, err := p.loadFile(target); err != nil {
					p.logger.Warn("failed to load imported file", "file", target, "from", current.Path, "error", err)
					continue
				}
				queue = append(queue, target)
			}
			err := p.imports.AddEdge(current.Path, target, graph.EdgeWeight(i))
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Errorf("failed to record import %s -> %s: %w", current.Path, target, err)
			}
		}
	}

	p.bindGlobals()
	p.progress.OnLoadComplete(len(p.files), time.Since(start))
	return nil
}

func (p *Program) loadFile(path string) (*File, error) {
	source, err := p.parser.ParseFile(context.Background(), path)
	if err != nil {
		return nil, err
	}

	file := &File{
		SourceFile: source,
		Locals:     NewSymbolTable(),
		Exports:    NewSymbolTable(),
		decls:      make(map[uintptr][]*Declaration),
		nodes:      make(map[uintptr]*Declaration),
	}
	newBinder(file, p.logger).bind()
	file.specifiers = append(file.specifiers, jsdocImportSpecifiers(file)...)

	if err := p.imports.AddVertex(path); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		source.Close()
		return nil, fmt.Errorf("failed to add %s to import graph: %w", path, err)
	}
	p.files[path] = file
	p.loadOrder = append(p.loadOrder, path)
	p.progress.OnFileLoaded(path)
	return file, nil
}

// jsdocImportSpecifiers finds import('...') types written in comments.
func jsdocImportSpecifiers(file *File) []string {
	var specs []string
	parsers.WalkTree(file.Root(), func(node *sitter.Node) bool {
		if node.Kind() != "comment" {
			return true
		}
		for _, match := range jsdocImportPattern.FindAllStringSubmatch(file.Text(node), -1) {
			specs = append(specs, match[1])
		}
		return false
	})
	return specs
}

// bindGlobals exposes the top-level declarations of script files to every file.
func (p *Program) bindGlobals() {
	for _, path := range p.loadOrder {
		file := p.files[path]
		if file.IsModule {
			continue
		}
		for _, sym := range file.Locals.Values() {
			if sym.Has(SymbolAlias) {
				continue
			}
			p.globals.add(sym)
		}
	}
}

// RootFiles returns the absolute paths of the root files in the order given.
func (p *Program) RootFiles() []string {
	result := make([]string, len(p.rootNames))
	copy(result, p.rootNames)
	return result
}

// IsRootFile reports whether path is one of the root files.
func (p *Program) IsRootFile(path string) bool {
	for _, root := range p.rootNames {
		if root == path {
			return true
		}
	}
	return false
}

// SourceFiles returns every loaded file, imported files before the files that
// import them, starting from the roots in order.
func (p *Program) SourceFiles() []*File {
	adjacency, err := p.imports.AdjacencyMap()
	if err != nil {
		p.logger.Warn("failed to read import graph", "error", err)
		result := make([]*File, 0, len(p.loadOrder))
		for _, path := range p.loadOrder {
			result = append(result, p.files[path])
		}
		return result
	}

	visited := make(map[string]bool, len(p.files))
	var ordered []*File
	var visit func(string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true

		edges := make([]graph.Edge[string], 0, len(adjacency[path]))
		for _, edge := range adjacency[path] {
			edges = append(edges, edge)
		}
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].Properties.Weight < edges[j].Properties.Weight
		})
		for _, edge := range edges {
			visit(edge.Target)
		}
		ordered = append(ordered, p.files[path])
	}
	for _, root := range p.rootNames {
		visit(root)
	}
	return ordered
}

// File returns the loaded file at path, or nil.
func (p *Program) File(path string) *File {
	return p.files[path]
}

// Options returns the normalized compiler options.
func (p *Program) Options() CompilerOptions {
	return p.options
}

// Checker returns the type checker of the program.
func (p *Program) Checker() *Checker {
	if p.checker == nil {
		p.checker = newChecker(p)
	}
	return p.checker
}

// Close releases the syntax trees and the resolution cache.
func (p *Program) Close() {
	for _, file := range p.files {
		file.Close()
	}
	p.resolutions.Close()
}

// isRelativeSpecifier reports whether spec is resolved against the importing file.
func isRelativeSpecifier(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") ||
		strings.HasPrefix(spec, "../") || filepath.IsAbs(spec)
}

// resolveModule returns the file a specifier names. external is true for bare
// specifiers, which are never loaded.
func (p *Program) resolveModule(from *File, spec string) (file *File, external bool) {
	if !isRelativeSpecifier(spec) {
		return nil, true
	}
	path, ok := p.resolvePath(from.Path, spec)
	if !ok {
		return nil, false
	}
	return p.files[path], false
}

// resolvePath maps a relative specifier to an existing file path.
func (p *Program) resolvePath(fromPath, spec string) (string, bool) {
	if !isRelativeSpecifier(spec) {
		return "", false
	}

	key := filepath.Dir(fromPath) + "\x00" + spec
	if cached, ok := p.resolutions.Get(key); ok {
		return cached, cached != ""
	}

	resolved := p.lookupModule(filepath.Dir(fromPath), spec)
	p.resolutions.Set(key, resolved)
	return resolved, resolved != ""
}

func (p *Program) lookupModule(dir, spec string) string {
	base := spec
	if !filepath.IsAbs(base) {
		base = filepath.Join(dir, spec)
	}

	extensions := append([]string{}, typeScriptExtensions...)
	if p.options.AllowJs {
		extensions = append(extensions, javaScriptExtensions...)
	}

	if hasKnownExtension(base, extensions) && isFile(base) {
		return base
	}
	// "./utils.js" may name the TypeScript source of the emitted file.
	if ext := filepath.Ext(base); contains(javaScriptExtensions, ext) {
		stem := strings.TrimSuffix(base, ext)
		for _, candidate := range typeScriptExtensions {
			if isFile(stem + candidate) {
				return stem + candidate
			}
		}
	}
	for _, ext := range extensions {
		if isFile(base + ext) {
			return base + ext
		}
	}
	if p.options.classicResolution() {
		return ""
	}
	for _, ext := range extensions {
		candidate := filepath.Join(base, "index"+ext)
		if isFile(candidate) {
			return candidate
		}
	}
	return ""
}

func hasKnownExtension(path string, extensions []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
