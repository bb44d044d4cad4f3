package checker

import (
	"log/slog"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

// container is the scope statements are bound into.
type container struct {
	locals  *SymbolTable
	exports *SymbolTable
	parent  *Declaration
}

// binder creates the symbols of one file.
type binder struct {
	file   *File
	logger *slog.Logger
}

func newBinder(file *File, logger *slog.Logger) *binder {
	return &binder{file: file, logger: logger}
}

func (b *binder) bind() {
	root := b.file.Root()
	b.file.IsModule = isExternalModule(root)

	moduleDecl := &Declaration{Kind: DeclModule, Name: b.file.Path, Node: root, Host: root, File: b.file}
	b.file.Symbol = &Symbol{Name: b.file.Path, Exports: b.file.Exports, Members: b.file.Locals}
	b.file.Symbol.addDeclaration(moduleDecl, SymbolValueModule)

	top := container{locals: b.file.Locals, exports: b.file.Exports}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(uint(i))
		if child.Kind() == "comment" {
			b.bindTypedefs(child)
			continue
		}
		b.bindStatement(child, top)
	}
}

func isExternalModule(root *sitter.Node) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		switch root.NamedChild(uint(i)).Kind() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}

// statementInfo collects the modifiers seen while unwrapping a statement.
type statementInfo struct {
	host      *sitter.Node
	exported  bool
	isDefault bool
	ambient   bool
}

func (b *binder) bindStatement(node *sitter.Node, c container) {
	info := statementInfo{host: node}

unwrap:
	for {
		switch node.Kind() {
		case "export_statement":
			info.exported = true
			info.isDefault = parsers.HasChild(node, "default")
			decl := node.ChildByFieldName("declaration")
			if decl == nil {
				b.bindExportStatement(node, c)
				return
			}
			node = decl
		case "ambient_declaration":
			info.ambient = true
			inner := parsers.FirstNamedChild(node)
			if inner == nil {
				return
			}
			node = inner
		case "expression_statement":
			inner := parsers.FirstNamedChild(node)
			if inner == nil || inner.Kind() != "internal_module" {
				return
			}
			node = inner
		default:
			break unwrap
		}
	}
	if b.file.IsDeclarationFile() {
		info.ambient = true
	}

	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		b.bindClass(node, info, c)
	case "interface_declaration":
		b.bindInterface(node, info, c)
	case "function_declaration", "generator_function_declaration", "function_signature":
		b.bindFunction(node, info, c)
	case "lexical_declaration", "variable_declaration":
		b.bindVariables(node, info, c)
	case "type_alias_declaration":
		b.bindTypeAlias(node, info, c)
	case "enum_declaration":
		b.bindEnum(node, info, c)
	case "internal_module", "module":
		b.bindNamespace(node, info, c)
	case "import_statement":
		b.bindImport(node, c)
	}
}

// newDeclaration fills the fields shared by every top-level declaration.
func (b *binder) newDeclaration(kind DeclKind, name string, node *sitter.Node, info statementInfo, c container) *Declaration {
	return &Declaration{
		Kind:     kind,
		Name:     name,
		Node:     node,
		Host:     info.host,
		File:     b.file,
		Parent:   c.parent,
		Exported: info.exported,
		Ambient:  info.ambient,
		Doc:      b.docFor(info.host),
	}
}

// export binds sym in the container's exports when the statement is exported.
func (b *binder) export(sym *Symbol, info statementInfo, c container) {
	if !info.exported || c.exports == nil {
		return
	}
	if info.isDefault {
		c.exports.set("default", sym)
		return
	}
	c.exports.set(sym.Name, sym)
}

func (b *binder) bindClass(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := b.newDeclaration(DeclClass, b.file.Text(nameNode), node, info, c)
	decl.Ambient = decl.Ambient || parsers.HasChild(node, "declare")
	sym := c.locals.declare(decl.Name, SymbolClass, decl)
	if sym.Members == nil {
		sym.Members = NewSymbolTable()
		sym.Exports = NewSymbolTable()
	}
	b.export(sym, info, c)
	b.file.recordDeclaration(info.host, decl)

	decl.TypeParameters = b.bindTypeParameters(node, decl, sym.Members)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, member := range parsers.NamedChildren(body) {
		b.bindClassMember(member, decl, sym)
	}
}

func (b *binder) bindClassMember(node *sitter.Node, class *Declaration, classSym *Symbol) {
	member := &Declaration{
		Node:   node,
		Host:   node,
		File:   b.file,
		Parent: class,
		Static: parsers.HasChild(node, "static"),
		Doc:    b.docFor(node),
	}
	table := classSym.Members
	if member.Static {
		table = classSym.Exports
	}

	switch node.Kind() {
	case "method_definition", "method_signature", "abstract_method_signature":
		member.Name = b.propertyName(node.ChildByFieldName("name"))
		member.HasBody = node.ChildByFieldName("body") != nil
		member.Optional = parsers.HasChild(node, "?")
		member.TypeParameters = b.bindTypeParameters(node, member, nil)

		switch {
		case member.Name == "constructor" && !member.Static:
			member.Kind = DeclConstructor
			table.declare(KeyConstructor, SymbolConstructor, member)
			b.bindParameterProperties(node, member, classSym)
		case parsers.HasChild(node, "get"):
			member.Kind = DeclAccessor
			table.declare(member.Name, SymbolGetAccessor, member)
		case parsers.HasChild(node, "set"):
			member.Kind = DeclAccessor
			table.declare(member.Name, SymbolSetAccessor, member)
		default:
			member.Kind = DeclMethod
			table.declare(member.Name, SymbolMethod, member)
		}
	case "public_field_definition", "field_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = node.ChildByFieldName("property")
		}
		member.Kind = DeclProperty
		member.Name = b.propertyName(nameNode)
		member.Readonly = parsers.HasChild(node, "readonly")
		member.Optional = parsers.HasChild(node, "?")
		member.Ambient = parsers.HasChild(node, "declare")
		table.declare(member.Name, SymbolProperty, member)
	case "index_signature":
		member.Kind = DeclIndexSignature
		member.Name = KeyIndex
		table.declare(KeyIndex, SymbolSignature, member)
	default:
		return
	}
	b.file.recordDeclaration(node, member)
}

// bindParameterProperties turns constructor parameters carrying an accessibility
// or readonly modifier into instance properties.
func (b *binder) bindParameterProperties(ctor *sitter.Node, ctorDecl *Declaration, classSym *Symbol) {
	params := ctor.ChildByFieldName("parameters")
	for _, param := range parsers.NamedChildren(params) {
		if !parsers.HasChild(param, "accessibility_modifier") && !parsers.HasChild(param, "readonly") {
			continue
		}
		pattern := param.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() != "identifier" {
			continue
		}
		prop := &Declaration{
			Kind:     DeclProperty,
			Name:     b.file.Text(pattern),
			Node:     param,
			Host:     param,
			File:     b.file,
			Parent:   ctorDecl.Parent,
			Readonly: parsers.HasChild(param, "readonly"),
			Optional: param.Kind() == "optional_parameter",
			Doc:      b.docFor(param),
		}
		classSym.Members.declare(prop.Name, SymbolProperty, prop)
	}
}

func (b *binder) bindInterface(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := b.newDeclaration(DeclInterface, b.file.Text(nameNode), node, info, c)
	sym := c.locals.declare(decl.Name, SymbolInterface, decl)
	if sym.Members == nil {
		sym.Members = NewSymbolTable()
	}
	b.export(sym, info, c)
	b.file.recordDeclaration(info.host, decl)

	decl.TypeParameters = b.bindTypeParameters(node, decl, sym.Members)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, member := range parsers.NamedChildren(body) {
		b.bindTypeMember(member, decl, sym.Members)
	}
}

// bindTypeMember binds a member of an interface body.
func (b *binder) bindTypeMember(node *sitter.Node, parent *Declaration, table *SymbolTable) {
	member := &Declaration{
		Node:     node,
		Host:     node,
		File:     b.file,
		Parent:   parent,
		Optional: parsers.HasChild(node, "?"),
		Readonly: parsers.HasChild(node, "readonly"),
		Doc:      b.docFor(node),
		Ambient:  true,
	}

	var flags SymbolFlags
	switch node.Kind() {
	case "property_signature":
		member.Kind = DeclPropertySignature
		member.Name = b.propertyName(node.ChildByFieldName("name"))
		flags = SymbolProperty
	case "method_signature":
		member.Kind = DeclMethodSignature
		member.Name = b.propertyName(node.ChildByFieldName("name"))
		member.TypeParameters = b.bindTypeParameters(node, member, nil)
		flags = SymbolMethod
	case "call_signature":
		member.Kind = DeclCallSignature
		member.Name = KeyCall
		member.TypeParameters = b.bindTypeParameters(node, member, nil)
		flags = SymbolSignature
	case "construct_signature":
		member.Kind = DeclConstructSignature
		member.Name = KeyNew
		member.TypeParameters = b.bindTypeParameters(node, member, nil)
		flags = SymbolSignature
	case "index_signature":
		member.Kind = DeclIndexSignature
		member.Name = KeyIndex
		flags = SymbolSignature
	default:
		return
	}
	table.declare(member.Name, flags, member)
	b.file.recordDeclaration(node, member)
}

func (b *binder) bindFunction(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		b.logger.Debug("skipping anonymous function declaration", "file", b.file.Path)
		return
	}
	decl := b.newDeclaration(DeclFunction, b.file.Text(nameNode), node, info, c)
	decl.HasBody = node.ChildByFieldName("body") != nil
	decl.TypeParameters = b.bindTypeParameters(node, decl, nil)
	sym := c.locals.declare(decl.Name, SymbolFunction, decl)
	b.export(sym, info, c)
	b.file.recordDeclaration(info.host, decl)
}

func (b *binder) bindVariables(node *sitter.Node, info statementInfo, c container) {
	flags := SymbolBlockScopedVariable
	isConst := false
	if kind := node.ChildByFieldName("kind"); kind != nil {
		isConst = b.file.Text(kind) == "const"
	} else if node.Kind() == "variable_declaration" {
		flags = SymbolFunctionScopedVariable
	}
	doc := b.docFor(info.host)

	for _, declarator := range parsers.FindChildrenByType(node, "variable_declarator") {
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		if nameNode.Kind() == "identifier" {
			decl := b.newDeclaration(DeclVariable, b.file.Text(nameNode), declarator, info, c)
			decl.Const = isConst
			decl.Doc = doc
			sym := c.locals.declare(decl.Name, flags, decl)
			b.export(sym, info, c)
			b.file.recordDeclaration(info.host, decl)
			continue
		}

		for _, binding := range bindingNames(nameNode) {
			decl := b.newDeclaration(DeclVariable, b.file.Text(binding), binding, info, c)
			decl.Const = isConst
			decl.Pattern = true
			decl.Doc = doc
			sym := c.locals.declare(decl.Name, flags, decl)
			b.export(sym, info, c)
			b.file.recordDeclaration(info.host, decl)
		}
	}
}

// bindingNames returns the identifiers bound by a destructuring pattern, in
// source order.
func bindingNames(pattern *sitter.Node) []*sitter.Node {
	var names []*sitter.Node
	parsers.WalkTree(pattern, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			if parent := node.Parent(); parent != nil && parent.Kind() == "assignment_pattern" {
				if left := parent.ChildByFieldName("left"); left == nil || left.Id() != node.Id() {
					return false
				}
			}
			names = append(names, node)
			return false
		case "pair_pattern":
			if value := node.ChildByFieldName("value"); value != nil {
				names = append(names, bindingNames(value)...)
			}
			return false
		case "object_assignment_pattern":
			if left := node.ChildByFieldName("left"); left != nil {
				names = append(names, bindingNames(left)...)
			}
			return false
		}
		return true
	})
	return names
}

func (b *binder) bindTypeAlias(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	decl := b.newDeclaration(DeclTypeAlias, b.file.Text(nameNode), node, info, c)
	decl.TypeParameters = b.bindTypeParameters(node, decl, nil)
	sym := c.locals.declare(decl.Name, SymbolTypeAlias, decl)
	b.export(sym, info, c)
	b.file.recordDeclaration(info.host, decl)
}

func (b *binder) bindEnum(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	flags := SymbolRegularEnum
	decl := b.newDeclaration(DeclEnum, b.file.Text(nameNode), node, info, c)
	if parsers.HasChild(node, "const") {
		flags = SymbolConstEnum
		decl.Const = true
	}
	sym := c.locals.declare(decl.Name, flags, decl)
	b.export(sym, info, c)
	b.file.recordDeclaration(info.host, decl)
}

// bindNamespace binds namespace A.B { ... }. Each dotted segment becomes a
// module symbol exported from the previous one.
func (b *binder) bindNamespace(node *sitter.Node, info statementInfo, c container) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() == "string" {
		// declare module "x" describes an external module.
		return
	}

	segments := strings.Split(b.file.Text(nameNode), ".")
	var decl *Declaration
	var sym *Symbol
	scope := c
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		decl = b.newDeclaration(DeclModule, segment, node, info, scope)
		if i > 0 {
			decl.Exported = true
		}
		sym = scope.locals.declare(segment, SymbolValueModule|SymbolNamespaceModule, decl)
		if sym.Members == nil {
			sym.Members = NewSymbolTable()
			sym.Exports = NewSymbolTable()
		}
		if i == 0 {
			b.export(sym, info, scope)
		} else {
			scope.exports.set(segment, sym)
		}
		scope = container{locals: sym.Members, exports: sym.Exports, parent: decl}
	}
	b.file.recordDeclaration(info.host, decl)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(uint(i))
		if child.Kind() == "comment" {
			continue
		}
		b.bindStatement(child, scope)
	}
}

func (b *binder) bindImport(node *sitter.Node, c container) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	spec := unquote(b.file.Text(source))
	b.file.specifiers = append(b.file.specifiers, spec)

	clause := parsers.FindChildByType(node, "import_clause")
	if clause == nil {
		if require := parsers.FindChildByType(node, "import_require_clause"); require != nil {
			if id := parsers.FindChildByType(require, "identifier"); id != nil {
				b.bindAlias(id, node, spec, "*", b.file.Text(id), c.locals)
			}
		}
		return
	}

	for _, part := range parsers.NamedChildren(clause) {
		switch part.Kind() {
		case "identifier":
			b.bindAlias(part, node, spec, "default", b.file.Text(part), c.locals)
		case "namespace_import":
			if id := parsers.FindChildByType(part, "identifier"); id != nil {
				b.bindAlias(part, node, spec, "*", b.file.Text(id), c.locals)
			}
		case "named_imports":
			for _, specifier := range parsers.FindChildrenByType(part, "import_specifier") {
				name := specifier.ChildByFieldName("name")
				if name == nil {
					continue
				}
				local := name
				if alias := specifier.ChildByFieldName("alias"); alias != nil {
					local = alias
				}
				b.bindAlias(specifier, node, spec, b.propertyName(name), b.file.Text(local), c.locals)
			}
		}
	}
}

func (b *binder) bindAlias(node, host *sitter.Node, spec, importName, localName string, table *SymbolTable) *Symbol {
	decl := &Declaration{
		Kind:   DeclImport,
		Name:   localName,
		Node:   node,
		Host:   host,
		File:   b.file,
		Import: &ImportRef{Specifier: spec, Name: importName},
	}
	sym := &Symbol{Name: localName}
	sym.addDeclaration(decl, SymbolAlias)
	table.set(localName, sym)
	return sym
}

// bindExportStatement handles export statements without a declaration:
// export clauses, re-exports and default expressions.
func (b *binder) bindExportStatement(node *sitter.Node, c container) {
	if c.exports == nil {
		return
	}
	spec := ""
	if source := node.ChildByFieldName("source"); source != nil {
		spec = unquote(b.file.Text(source))
		b.file.specifiers = append(b.file.specifiers, spec)
	}

	if clause := parsers.FindChildByType(node, "export_clause"); clause != nil {
		for _, specifier := range parsers.FindChildrenByType(clause, "export_specifier") {
			name := specifier.ChildByFieldName("name")
			if name == nil {
				continue
			}
			exported := name
			if alias := specifier.ChildByFieldName("alias"); alias != nil {
				exported = alias
			}
			sym := &Symbol{Name: b.propertyName(exported)}
			sym.addDeclaration(&Declaration{
				Kind:   DeclImport,
				Name:   sym.Name,
				Node:   specifier,
				Host:   node,
				File:   b.file,
				Import: &ImportRef{Specifier: spec, Name: b.propertyName(name)},
			}, SymbolAlias)
			c.exports.set(sym.Name, sym)
		}
		return
	}

	if ns := parsers.FindChildByType(node, "namespace_export"); ns != nil && spec != "" {
		if id := parsers.FirstNamedChild(ns); id != nil {
			b.bindAlias(ns, node, spec, "*", b.propertyName(id), c.exports)
		}
		return
	}

	if spec != "" && parsers.HasChild(node, "*") {
		b.file.reexports = append(b.file.reexports, spec)
		return
	}

	if value := node.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
		sym := &Symbol{Name: "default"}
		sym.addDeclaration(&Declaration{
			Kind:   DeclImport,
			Name:   "default",
			Node:   value,
			Host:   node,
			File:   b.file,
			Import: &ImportRef{Name: b.file.Text(value)},
		}, SymbolAlias)
		c.exports.set("default", sym)
	}
}

// bindTypeParameters binds the type parameters of a declaration, from syntax or
// from @template tags in JavaScript. Class and interface parameters are also
// added to the owner's member table.
func (b *binder) bindTypeParameters(node *sitter.Node, owner *Declaration, members *SymbolTable) []*Symbol {
	var params []*Symbol
	declare := func(decl *Declaration) {
		var sym *Symbol
		if members != nil {
			sym = members.declare(decl.Name, SymbolTypeParameter, decl)
		} else {
			sym = &Symbol{Name: decl.Name}
			sym.addDeclaration(decl, SymbolTypeParameter)
		}
		params = append(params, sym)
	}

	if list := node.ChildByFieldName("type_parameters"); list != nil {
		for _, tp := range parsers.FindChildrenByType(list, "type_parameter") {
			name := tp.ChildByFieldName("name")
			if name == nil {
				continue
			}
			declare(&Declaration{
				Kind:   DeclTypeParameter,
				Name:   b.file.Text(name),
				Node:   tp,
				Host:   tp,
				File:   b.file,
				Parent: owner,
				Doc:    owner.Doc,
			})
		}
	}

	if b.file.IsJavaScript() && owner.Doc != nil {
		for _, tag := range owner.Doc.TagsNamed("template") {
			for _, name := range tag.Names {
				declare(&Declaration{
					Kind:   DeclTypeParameter,
					Name:   name,
					Node:   owner.Doc.Node,
					Host:   owner.Doc.Node,
					File:   b.file,
					Parent: owner,
					Doc:    owner.Doc,
				})
			}
		}
	}
	return params
}

// bindTypedefs declares the @typedef and @callback tags of a top-level
// JavaScript doc comment as type aliases.
func (b *binder) bindTypedefs(comment *sitter.Node) {
	if !b.file.IsJavaScript() {
		return
	}
	text := b.file.Text(comment)
	if !IsJSDocComment(text) {
		return
	}
	doc := ParseJSDoc(text)
	doc.Node = comment

	for i, tag := range doc.Tags {
		if (tag.Name != "typedef" && tag.Name != "callback") || tag.ParamName == "" {
			continue
		}
		end := i + 1
		for end < len(doc.Tags) && doc.Tags[end].Name != "typedef" && doc.Tags[end].Name != "callback" {
			end++
		}
		decl := &Declaration{
			Kind:    DeclTypedef,
			Name:    tag.ParamName,
			Node:    comment,
			Host:    comment,
			File:    b.file,
			Doc:     doc,
			typedef: doc.Tags[i:end],
		}
		sym := b.file.Locals.declare(decl.Name, SymbolTypeAlias, decl)
		if b.file.IsModule {
			b.file.Exports.set(decl.Name, sym)
		}
	}
}

// docFor returns the doc comment nearest to node among the comments directly
// preceding it.
func (b *binder) docFor(node *sitter.Node) *JSDoc {
	for sibling := node.PrevSibling(); sibling != nil; sibling = sibling.PrevSibling() {
		if sibling.Kind() != "comment" {
			return nil
		}
		text := b.file.Text(sibling)
		if IsJSDocComment(text) {
			doc := ParseJSDoc(text)
			doc.Node = sibling
			return doc
		}
	}
	return nil
}

// propertyName returns the name of a property-like node, without quotes.
func (b *binder) propertyName(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	text := b.file.Text(node)
	if node.Kind() == "string" {
		return unquote(text)
	}
	return text
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
