package checker

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SymbolFlags classify a symbol. Values match the TypeScript compiler's flags so
// that dumps stay comparable with its output.
type SymbolFlags uint32

const (
	SymbolFunctionScopedVariable SymbolFlags = 1 << 0
	SymbolBlockScopedVariable    SymbolFlags = 1 << 1
	SymbolProperty               SymbolFlags = 1 << 2
	SymbolEnumMember             SymbolFlags = 1 << 3
	SymbolFunction               SymbolFlags = 1 << 4
	SymbolClass                  SymbolFlags = 1 << 5
	SymbolInterface              SymbolFlags = 1 << 6
	SymbolConstEnum              SymbolFlags = 1 << 7
	SymbolRegularEnum            SymbolFlags = 1 << 8
	SymbolValueModule            SymbolFlags = 1 << 9
	SymbolNamespaceModule        SymbolFlags = 1 << 10
	SymbolTypeLiteral            SymbolFlags = 1 << 11
	SymbolObjectLiteral          SymbolFlags = 1 << 12
	SymbolMethod                 SymbolFlags = 1 << 13
	SymbolConstructor            SymbolFlags = 1 << 14
	SymbolGetAccessor            SymbolFlags = 1 << 15
	SymbolSetAccessor            SymbolFlags = 1 << 16
	SymbolSignature              SymbolFlags = 1 << 17
	SymbolTypeParameter          SymbolFlags = 1 << 18
	SymbolTypeAlias              SymbolFlags = 1 << 19
	SymbolAlias                  SymbolFlags = 1 << 21

	SymbolVariable = SymbolFunctionScopedVariable | SymbolBlockScopedVariable
	SymbolAccessor = SymbolGetAccessor | SymbolSetAccessor
	SymbolEnum     = SymbolRegularEnum | SymbolConstEnum
	SymbolModule   = SymbolValueModule | SymbolNamespaceModule
	SymbolType     = SymbolClass | SymbolInterface | SymbolEnum | SymbolTypeLiteral | SymbolTypeParameter | SymbolTypeAlias
	SymbolValue    = SymbolVariable | SymbolProperty | SymbolFunction | SymbolClass | SymbolEnum | SymbolValueModule | SymbolMethod | SymbolAccessor
)

// Member keys for the unnamed members of classes and interfaces.
const (
	KeyConstructor = "__constructor"
	KeyCall        = "__call"
	KeyNew         = "__new"
	KeyIndex       = "__index"
	KeyTypeLiteral = "__type"
)

// Symbol is a resolved name binding. A symbol may own several declarations
// (overloads, merged interfaces).
type Symbol struct {
	Name             string
	Flags            SymbolFlags
	Declarations     []*Declaration
	ValueDeclaration *Declaration

	// Members holds instance members and type parameters of classes and interfaces.
	Members *SymbolTable
	// Exports holds namespace members and static class members.
	Exports *SymbolTable

	target    *Symbol
	resolving bool
	typ       *Type
	declared  *Type
}

// Has reports whether any of the given flags is set.
func (s *Symbol) Has(flags SymbolFlags) bool {
	return s.Flags&flags != 0
}

func (s *Symbol) String() string {
	return s.Name
}

func (s *Symbol) addDeclaration(decl *Declaration, flags SymbolFlags) {
	s.Flags |= flags
	s.Declarations = append(s.Declarations, decl)
	if flags&SymbolValue != 0 && s.ValueDeclaration == nil {
		s.ValueDeclaration = decl
	}
	decl.Symbol = s
}

// SymbolTable is an insertion-ordered name to symbol map.
type SymbolTable struct {
	order  []*Symbol
	byName map[string]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Get returns the symbol bound to name, or nil.
func (t *SymbolTable) Get(name string) *Symbol {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Values returns the symbols in declaration order.
func (t *SymbolTable) Values() []*Symbol {
	if t == nil {
		return nil
	}
	result := make([]*Symbol, len(t.order))
	copy(result, t.order)
	return result
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

func (t *SymbolTable) add(sym *Symbol) {
	t.set(sym.Name, sym)
}

// set binds sym under name, which may differ from the symbol's own name
// (export aliases, default exports). Existing bindings win.
func (t *SymbolTable) set(name string, sym *Symbol) {
	if _, ok := t.byName[name]; ok {
		return
	}
	t.byName[name] = sym
	t.order = append(t.order, sym)
}

// declare binds decl under name, merging with an existing symbol of the same name.
func (t *SymbolTable) declare(name string, flags SymbolFlags, decl *Declaration) *Symbol {
	sym, ok := t.byName[name]
	if !ok {
		sym = &Symbol{Name: name}
		t.add(sym)
	}
	sym.addDeclaration(decl, flags)
	return sym
}

// DeclKind is the closed set of declaration shapes the binder produces.
type DeclKind int

const (
	DeclUnknown DeclKind = iota
	DeclClass
	DeclInterface
	DeclFunction
	DeclMethod
	DeclMethodSignature
	DeclConstructor
	DeclProperty
	DeclPropertySignature
	DeclAccessor
	DeclCallSignature
	DeclConstructSignature
	DeclIndexSignature
	DeclVariable
	DeclParameter
	DeclTypeParameter
	DeclTypeAlias
	DeclTypedef
	DeclTypeLiteral
	DeclEnum
	DeclModule
	DeclImport
)

var declKindNames = map[DeclKind]string{
	DeclUnknown:            "unknown",
	DeclClass:              "class",
	DeclInterface:          "interface",
	DeclFunction:           "function",
	DeclMethod:             "method",
	DeclMethodSignature:    "method signature",
	DeclConstructor:        "constructor",
	DeclProperty:           "property",
	DeclPropertySignature:  "property signature",
	DeclAccessor:           "accessor",
	DeclCallSignature:      "call signature",
	DeclConstructSignature: "construct signature",
	DeclIndexSignature:     "index signature",
	DeclVariable:           "variable",
	DeclParameter:          "parameter",
	DeclTypeParameter:      "type parameter",
	DeclTypeAlias:          "type alias",
	DeclTypedef:            "typedef",
	DeclTypeLiteral:        "type literal",
	DeclEnum:               "enum",
	DeclModule:             "module",
	DeclImport:             "import",
}

func (k DeclKind) String() string {
	if name, ok := declKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ImportRef describes what an import alias points at.
type ImportRef struct {
	Specifier string
	// Name is the imported export name; "default" for default imports and "*" for
	// namespace imports.
	Name string
}

// Declaration is one syntactic declaration of a symbol.
type Declaration struct {
	Kind DeclKind
	Name string

	// Node is the declaration node itself (class_declaration, method_definition, ...).
	Node *sitter.Node
	// Host is the outermost statement carrying modifiers and the doc comment
	// (export_statement, ambient_declaration, lexical_declaration). Equal to Node
	// for members.
	Host *sitter.Node

	File   *File
	Parent *Declaration
	Symbol *Symbol

	Exported bool
	Ambient  bool
	Static   bool
	Const    bool
	Readonly bool
	HasBody  bool
	Optional bool
	Rest     bool
	// Pattern marks names bound by a destructuring pattern.
	Pattern bool

	Doc            *JSDoc
	TypeParameters []*Symbol
	Import         *ImportRef

	// typedef holds the @typedef or @callback tag followed by the tags that
	// describe it (@property, @param, @returns).
	typedef []JSDocTag
}

// Span returns the node whose range is reported as the declaration's location.
// Variables report the declarator, everything else the whole statement including
// export and declare modifiers.
func (d *Declaration) Span() *sitter.Node {
	switch d.Kind {
	case DeclVariable, DeclParameter:
		return d.Node
	}
	if d.Host != nil {
		return d.Host
	}
	return d.Node
}

// Tags returns the JSDoc tags attached to the declaration.
func (d *Declaration) Tags() []JSDocTag {
	if d.Doc == nil {
		return nil
	}
	return d.Doc.Tags
}
