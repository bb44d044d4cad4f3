package checker

import (
	"log/slog"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// externalModule marks aliases that point into a bare (package) specifier.
var externalModule = &Symbol{Name: "external module"}

// scope is the lookup context of a type or value name: the file it appears in
// and the innermost declaration around it.
type scope struct {
	file *File
	decl *Declaration
}

// Checker answers type questions about the declarations of a Program.
type Checker struct {
	program    *Program
	logger     *slog.Logger
	strictNull bool

	signatures map[uintptr]*Signature
	inferDepth int
}

func newChecker(p *Program) *Checker {
	return &Checker{
		program:    p,
		logger:     p.logger,
		strictNull: p.options.strictNullChecks(),
		signatures: make(map[uintptr]*Signature),
	}
}

// TypeOfSymbol returns the value type of a symbol. Type-only symbols (interfaces,
// aliases, type parameters) report their declared type.
func (c *Checker) TypeOfSymbol(sym *Symbol) *Type {
	if sym == nil {
		return anyType
	}
	if sym.typ != nil {
		return sym.typ
	}
	if sym.resolving {
		return anyType
	}
	sym.resolving = true
	t := c.computeTypeOfSymbol(sym)
	sym.resolving = false
	sym.typ = t
	return t
}

func (c *Checker) computeTypeOfSymbol(sym *Symbol) *Type {
	if sym.Has(SymbolAlias) {
		target := c.ResolveAlias(sym)
		switch {
		case target == externalModule:
			return anyType
		case len(target.Declarations) == 0:
			return referenceTo(target.Name, target)
		}
		return c.TypeOfSymbol(target)
	}
	if len(sym.Declarations) == 0 {
		return anyType
	}

	decl := sym.ValueDeclaration
	if decl == nil {
		decl = sym.Declarations[0]
	}

	switch decl.Kind {
	case DeclClass:
		return &Type{
			Kind:                TypeClassObject,
			Name:                sym.Name,
			Symbol:              sym,
			ConstructSignatures: c.constructSignaturesOfClass(sym),
		}
	case DeclEnum, DeclModule:
		return &Type{Kind: TypeClassObject, Name: sym.Name, Symbol: sym}
	case DeclInterface, DeclTypeAlias, DeclTypedef, DeclTypeParameter:
		return c.DeclaredTypeOfSymbol(sym)
	case DeclFunction, DeclMethod, DeclMethodSignature:
		return functionType(sym, c.callSignaturesOf(sym)...)
	case DeclConstructor:
		return &Type{Kind: TypeObject, Symbol: sym, ConstructSignatures: c.callSignaturesOf(sym)}
	case DeclCallSignature:
		return functionType(sym, c.callSignaturesOf(sym)...)
	case DeclConstructSignature:
		return &Type{Kind: TypeObject, Symbol: sym, ConstructSignatures: c.callSignaturesOf(sym)}
	case DeclProperty, DeclPropertySignature:
		return c.typeOfProperty(decl)
	case DeclAccessor:
		return c.typeOfAccessor(sym)
	case DeclVariable:
		return c.typeOfVariable(decl)
	case DeclParameter:
		return c.typeOfParameter(decl)
	case DeclTypeLiteral:
		return anyType
	}
	return anyType
}

// DeclaredTypeOfSymbol returns the type a symbol denotes when used as a type.
func (c *Checker) DeclaredTypeOfSymbol(sym *Symbol) *Type {
	if sym == nil {
		return anyType
	}
	if sym.declared != nil {
		return sym.declared
	}
	if sym.Has(SymbolAlias) {
		target := c.ResolveAlias(sym)
		switch {
		case target == externalModule:
			return referenceTo(sym.Name, nil)
		case len(target.Declarations) == 0:
			return referenceTo(target.Name, target)
		}
		return c.DeclaredTypeOfSymbol(target)
	}
	if len(sym.Declarations) == 0 {
		return referenceTo(sym.Name, sym)
	}

	// Placeholder for self references while the alias target resolves.
	sym.declared = referenceTo(sym.Name, sym)

	decl := sym.Declarations[0]
	var t *Type
	switch decl.Kind {
	case DeclClass, DeclInterface:
		t = referenceTo(sym.Name, sym, typeParameterReferences(decl.TypeParameters)...)
	case DeclTypeParameter, DeclEnum:
		t = referenceTo(sym.Name, sym)
	case DeclModule:
		t = &Type{Kind: TypeClassObject, Name: sym.Name, Symbol: sym}
	case DeclTypeAlias:
		target := c.typeFromNode(scope{file: decl.File, decl: decl}, decl.Node.ChildByFieldName("value"))
		t = aliasReference(sym, decl, target)
	case DeclTypedef:
		target := c.typeOfTypedef(decl)
		t = aliasReference(sym, decl, target)
	default:
		t = anyType
	}
	sym.declared = t
	return t
}

// aliasReference keeps the alias name for structured targets and prints simple
// targets directly.
func aliasReference(sym *Symbol, decl *Declaration, target *Type) *Type {
	switch target.Kind {
	case TypeObject, TypeUnion, TypeIntersection, TypeTuple:
		ref := referenceTo(sym.Name, sym, typeParameterReferences(decl.TypeParameters)...)
		ref.target = target
		return ref
	}
	return target
}

func typeParameterReferences(params []*Symbol) []*Type {
	var refs []*Type
	for _, tp := range params {
		refs = append(refs, referenceTo(tp.Name, tp))
	}
	return refs
}

// TypeAtLocation returns the type of a declaration's node: the instance type for
// classes and interfaces, the value type otherwise.
func (c *Checker) TypeAtLocation(decl *Declaration) *Type {
	if decl == nil || decl.Symbol == nil {
		return anyType
	}
	switch decl.Kind {
	case DeclClass, DeclInterface, DeclTypeAlias, DeclTypedef, DeclTypeParameter:
		return c.DeclaredTypeOfSymbol(decl.Symbol)
	}
	return c.TypeOfSymbol(decl.Symbol)
}

// TypeToString prints t.
func (c *Checker) TypeToString(t *Type) string {
	return TypeToString(t)
}

// ResolveAlias follows import and export aliases to the symbol they name. Bare
// specifiers resolve to a marker symbol; unresolvable relative imports resolve to
// a symbol without declarations.
func (c *Checker) ResolveAlias(sym *Symbol) *Symbol {
	if sym == nil || !sym.Has(SymbolAlias) {
		return sym
	}
	if sym.target != nil {
		return sym.target
	}
	if sym.resolving {
		return &Symbol{Name: sym.Name}
	}

	sym.resolving = true
	target := c.resolveAliasTarget(sym)
	sym.resolving = false

	if target != externalModule && target.Has(SymbolAlias) {
		target = c.ResolveAlias(target)
	}
	sym.target = target
	return target
}

// IsExternal reports whether sym resolved into a package outside the program.
func (c *Checker) IsExternal(sym *Symbol) bool {
	return c.ResolveAlias(sym) == externalModule
}

func (c *Checker) resolveAliasTarget(sym *Symbol) *Symbol {
	decl := sym.Declarations[0]
	ref := decl.Import
	if ref == nil {
		return &Symbol{Name: sym.Name}
	}

	if ref.Specifier == "" {
		if local := decl.File.Locals.Get(ref.Name); local != nil && local != sym {
			return local
		}
		if global := c.program.globals.Get(ref.Name); global != nil {
			return global
		}
		return &Symbol{Name: ref.Name}
	}

	module, external := c.program.resolveModule(decl.File, ref.Specifier)
	switch {
	case external:
		return externalModule
	case module == nil:
		c.logger.Debug("cannot resolve module", "specifier", ref.Specifier, "file", decl.File.Path)
		return &Symbol{Name: ref.Name}
	case ref.Name == "*":
		return module.Symbol
	}

	if target := c.exportOf(module, ref.Name, nil); target != nil {
		return target
	}
	c.logger.Debug("module has no such export", "name", ref.Name, "specifier", ref.Specifier, "file", decl.File.Path)
	return &Symbol{Name: ref.Name}
}

// exportOf looks a name up in the exports of a file, following export * from.
func (c *Checker) exportOf(file *File, name string, visited map[*File]bool) *Symbol {
	if sym := file.Exports.Get(name); sym != nil {
		return sym
	}
	if !file.IsModule {
		if sym := file.Locals.Get(name); sym != nil {
			return sym
		}
	}

	if visited == nil {
		visited = make(map[*File]bool)
	}
	visited[file] = true
	for _, spec := range file.reexports {
		module, _ := c.program.resolveModule(file, spec)
		if module == nil || visited[module] {
			continue
		}
		if sym := c.exportOf(module, name, visited); sym != nil {
			return sym
		}
	}
	return nil
}

// memberOfNamespace returns an exported member of a module or namespace symbol.
func (c *Checker) memberOfNamespace(sym *Symbol, name string) *Symbol {
	sym = c.ResolveAlias(sym)
	if sym == nil || sym == externalModule {
		return nil
	}
	if len(sym.Declarations) > 0 && sym.Declarations[0].Kind == DeclModule && sym.Declarations[0].Node.Kind() == "program" {
		return c.exportOf(sym.Declarations[0].File, name, nil)
	}
	return sym.Exports.Get(name)
}

// lookupName finds the symbol a name refers to from a scope: type parameters of
// the enclosing declarations, namespace members, file locals, then globals.
func (c *Checker) lookupName(sc scope, name string) *Symbol {
	for decl := sc.decl; decl != nil; decl = decl.Parent {
		for _, tp := range decl.TypeParameters {
			if tp.Name == name {
				return tp
			}
		}
		if decl.Kind == DeclModule && decl.Symbol != nil {
			if sym := decl.Symbol.Members.Get(name); sym != nil {
				return sym
			}
			if sym := decl.Symbol.Exports.Get(name); sym != nil {
				return sym
			}
		}
	}
	if sc.file != nil {
		if sym := sc.file.Locals.Get(name); sym != nil {
			return sym
		}
	}
	return c.program.globals.Get(name)
}

// resolveTypeName resolves a possibly dotted type name with optional type arguments.
func (c *Checker) resolveTypeName(sc scope, names []string, args []*Type) *Type {
	qualified := strings.Join(names, ".")
	if qualified == "Array" && len(args) == 1 {
		return arrayOf(args[0])
	}

	sym := c.lookupName(sc, names[0])
	for _, name := range names[1:] {
		if sym == nil {
			break
		}
		sym = c.memberOfNamespace(sym, name)
	}
	return c.typeReferenceTo(sym, qualified, args)
}

// typeReferenceTo builds the type of a reference to sym written as name.
func (c *Checker) typeReferenceTo(sym *Symbol, name string, args []*Type) *Type {
	if sym == nil {
		return referenceTo(name, nil, args...)
	}
	if sym.Has(SymbolAlias) {
		target := c.ResolveAlias(sym)
		switch {
		case target == externalModule:
			return referenceTo(name, nil, args...)
		case len(target.Declarations) == 0:
			return referenceTo(name, target, args...)
		}
		sym = target
	}

	t := c.DeclaredTypeOfSymbol(sym)
	if len(args) > 0 && t.Kind == TypeReference && t.Symbol == sym {
		ref := referenceTo(t.Name, sym, args...)
		ref.target = t.target
		return ref
	}
	if strings.Contains(name, ".") && t.Kind == TypeReference && t.Symbol == sym {
		ref := referenceTo(name, sym, t.Arguments...)
		ref.target = t.target
		return ref
	}
	return t
}

// resolveJSDocName applies the JSDoc spellings of built-in types before the
// regular type name lookup.
func (c *Checker) resolveJSDocName(sc scope, names []string, args []*Type) *Type {
	if len(names) == 1 {
		switch names[0] {
		case "String":
			return stringType
		case "Number":
			return numberType
		case "Boolean":
			return booleanType
		case "Void":
			return voidType
		case "Undefined":
			return undefinedType
		case "Null":
			return nullType
		case "Object":
			if len(args) == 0 {
				return anyType
			}
		case "array", "Array":
			if len(args) == 0 {
				return arrayOf(anyType)
			}
		case "promise":
			return referenceTo("Promise", nil, args...)
		case "Promise":
			if len(args) == 0 {
				return referenceTo("Promise", nil, anyType)
			}
		case "function":
			return referenceTo("Function", nil)
		}
		if t := IntrinsicType(names[0]); t != nil && len(args) == 0 {
			return t
		}
	}
	return c.resolveTypeName(sc, names, args)
}

// resolveImportType resolves import("specifier").A.B written in a JSDoc type.
func (c *Checker) resolveImportType(sc scope, spec string, names []string, args []*Type) *Type {
	qualified := strings.Join(names, ".")
	module, external := c.program.resolveModule(sc.file, spec)
	switch {
	case external:
		if qualified == "" {
			return &Type{Kind: TypeVerbatim, Name: `typeof import("` + spec + `")`}
		}
		return referenceTo(qualified, nil, args...)
	case module == nil:
		c.logger.Debug("cannot resolve module", "specifier", spec, "file", sc.file.Path)
		if qualified == "" {
			qualified = spec
		}
		return referenceTo(qualified, &Symbol{Name: qualified}, args...)
	case qualified == "":
		return &Type{Kind: TypeVerbatim, Name: `typeof import("` + spec + `")`, Symbol: module.Symbol}
	}

	sym := c.exportOf(module, names[0], nil)
	for _, name := range names[1:] {
		if sym == nil {
			break
		}
		sym = c.memberOfNamespace(sym, name)
	}
	if sym == nil {
		c.logger.Debug("module has no such export", "name", qualified, "specifier", spec, "file", sc.file.Path)
		return referenceTo(qualified, &Symbol{Name: qualified}, args...)
	}
	return c.typeReferenceTo(sym, names[len(names)-1], args)
}

// DocumentationComment returns the doc comment text of a symbol. Parameters and
// parameter properties read their @param tag, type parameters their @template tag.
func (c *Checker) DocumentationComment(sym *Symbol) string {
	if sym == nil {
		return ""
	}
	var parts []string
	seen := make(map[string]bool)
	for _, decl := range sym.Declarations {
		text := c.declarationDocumentation(decl)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

func (c *Checker) declarationDocumentation(decl *Declaration) string {
	switch {
	case decl.Kind == DeclParameter:
		if decl.Parent != nil {
			if tag, ok := decl.Parent.Doc.Param(decl.Name); ok {
				return tag.Comment
			}
		}
		return ""
	case decl.Kind == DeclProperty && isParameterNode(decl.Node):
		if ctor := decl.File.declarationOf(decl.Node.Parent().Parent()); ctor != nil {
			if tag, ok := ctor.Doc.Param(decl.Name); ok {
				return tag.Comment
			}
		}
		return decl.Doc.description()
	case decl.Kind == DeclTypeParameter:
		if tag, ok := decl.Doc.Template(decl.Name); ok {
			return tag.Comment
		}
		return ""
	case decl.Kind == DeclTypedef:
		if len(decl.typedef) > 0 {
			return decl.typedef[0].Comment
		}
		return ""
	}
	return decl.Doc.description()
}

func (d *JSDoc) description() string {
	if d == nil {
		return ""
	}
	return d.Description
}

func isParameterNode(node *sitter.Node) bool {
	kind := node.Kind()
	return kind == "required_parameter" || kind == "optional_parameter"
}

// SignatureDocumentation returns the description of the declaration a signature
// was read from.
func (c *Checker) SignatureDocumentation(sig *Signature) string {
	if sig == nil || sig.Declaration == nil {
		return ""
	}
	return sig.Declaration.Doc.description()
}

// JSDocTags returns the tags of every declaration of a symbol, in order. Type
// parameters only carry their @template tag.
func (c *Checker) JSDocTags(sym *Symbol) []JSDocTag {
	if sym == nil {
		return nil
	}
	var tags []JSDocTag
	seen := make(map[*JSDoc]bool)
	for _, decl := range sym.Declarations {
		if decl.Kind == DeclParameter || decl.Doc == nil || seen[decl.Doc] {
			continue
		}
		seen[decl.Doc] = true
		if decl.Kind == DeclTypeParameter {
			// A type parameter owns only the @template tag naming it.
			if tag, ok := decl.Doc.Template(decl.Name); ok {
				tags = append(tags, tag)
			}
			continue
		}
		tags = append(tags, decl.Doc.Tags...)
	}
	return tags
}
