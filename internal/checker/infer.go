package checker

import (
	"strconv"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

const maxInferDepth = 64

var functionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var comparisonOperators = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"instanceof": true, "in": true,
}

// inferExpression computes the type of an initializer expression. Literal types
// are kept; callers widen where the declaration is mutable.
func (c *Checker) inferExpression(sc scope, node *sitter.Node) *Type {
	if node == nil {
		return anyType
	}
	if c.inferDepth >= maxInferDepth {
		return anyType
	}
	c.inferDepth++
	defer func() { c.inferDepth-- }()

	file := sc.file
	text := func(n *sitter.Node) string { return file.Text(n) }

	switch kind := node.Kind(); {
	case kind == "number":
		if normalized, ok := normalizeNumber(text(node)); ok {
			return literalType(normalized)
		}
		return numberType
	case kind == "string":
		return literalType(strconv.Quote(unquote(text(node))))
	case kind == "template_string":
		return stringType
	case kind == "true" || kind == "false":
		return literalType(kind)
	case kind == "null":
		return nullType
	case kind == "undefined":
		return undefinedType
	case kind == "regex":
		return referenceTo("RegExp", nil)
	case kind == "this":
		return c.thisType(file, node)
	case kind == "identifier":
		return c.identifierType(sc, node)
	case kind == "array":
		return c.arrayLiteralType(sc, node)
	case kind == "object":
		return c.objectLiteralType(sc, node)
	case functionKinds[kind]:
		sig := c.functionNodeSignature(sc, node)
		sym := syntheticSymbol(file, node, "__function")
		t := functionType(sym, sig)
		sym.typ = t
		return t
	case kind == "class":
		name := "(Anonymous class)"
		if id := node.ChildByFieldName("name"); id != nil {
			name = text(id)
		}
		return &Type{Kind: TypeClassObject, Name: name, Symbol: syntheticSymbol(file, node, "__class")}
	case kind == "new_expression":
		return c.newExpressionType(sc, node)
	case kind == "call_expression":
		callee := c.inferExpression(sc, node.ChildByFieldName("function"))
		if len(callee.CallSignatures) > 0 {
			return callee.CallSignatures[0].ReturnType()
		}
		return anyType
	case kind == "member_expression":
		object := c.inferExpression(sc, node.ChildByFieldName("object"))
		return c.propertyType(object, text(node.ChildByFieldName("property")))
	case kind == "subscript_expression":
		object := c.inferExpression(sc, node.ChildByFieldName("object"))
		if object.Kind == TypeArray {
			return object.Element
		}
		return anyType
	case kind == "await_expression":
		t := c.inferExpression(sc, parsers.FirstNamedChild(node))
		if t.Kind == TypeReference && t.Name == "Promise" && len(t.Arguments) == 1 {
			return t.Arguments[0]
		}
		return t
	case kind == "parenthesized_expression", kind == "non_null_expression", kind == "satisfies_expression":
		return c.inferExpression(sc, parsers.FirstNamedChild(node))
	case kind == "as_expression", kind == "type_assertion":
		children := parsers.NamedChildren(node)
		if len(children) < 2 {
			return anyType
		}
		expr, typ := children[0], children[1]
		if kind == "type_assertion" {
			expr, typ = children[1], children[0]
		}
		if text(typ) == "const" {
			return c.inferExpression(sc, expr)
		}
		return c.typeFromNode(sc, typ)
	case kind == "ternary_expression":
		return unionOf([]*Type{
			c.inferExpression(sc, node.ChildByFieldName("consequence")),
			c.inferExpression(sc, node.ChildByFieldName("alternative")),
		}, c.strictNull)
	case kind == "binary_expression":
		return c.binaryExpressionType(sc, node)
	case kind == "unary_expression":
		return c.unaryExpressionType(sc, node)
	case kind == "update_expression":
		return numberType
	case kind == "assignment_expression":
		return c.inferExpression(sc, node.ChildByFieldName("right"))
	case kind == "augmented_assignment_expression":
		return widen(c.inferExpression(sc, node.ChildByFieldName("left")))
	case kind == "sequence_expression":
		children := parsers.NamedChildren(node)
		if len(children) == 0 {
			return anyType
		}
		return c.inferExpression(sc, children[len(children)-1])
	}
	return anyType
}

func (c *Checker) binaryExpressionType(sc scope, node *sitter.Node) *Type {
	operator := ""
	if op := node.ChildByFieldName("operator"); op != nil {
		operator = op.Kind()
	}
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")

	switch {
	case comparisonOperators[operator]:
		return booleanType
	case operator == "&&":
		return c.inferExpression(sc, right)
	case operator == "||" || operator == "??":
		return unionOf([]*Type{
			widen(c.inferExpression(sc, left)),
			widen(c.inferExpression(sc, right)),
		}, c.strictNull)
	case operator == "+":
		l := widen(c.inferExpression(sc, left))
		r := widen(c.inferExpression(sc, right))
		switch {
		case l == stringType || r == stringType:
			return stringType
		case l.Kind == TypeAny || r.Kind == TypeAny:
			return anyType
		case l == numberType && r == numberType:
			return numberType
		case l == bigintType && r == bigintType:
			return bigintType
		}
		return anyType
	}

	l := widen(c.inferExpression(sc, left))
	r := widen(c.inferExpression(sc, right))
	if l == bigintType && r == bigintType {
		return bigintType
	}
	return numberType
}

func (c *Checker) unaryExpressionType(sc scope, node *sitter.Node) *Type {
	operator := ""
	if op := node.ChildByFieldName("operator"); op != nil {
		operator = op.Kind()
	}
	argument := node.ChildByFieldName("argument")

	switch operator {
	case "!", "delete":
		return booleanType
	case "typeof":
		return stringType
	case "void":
		return undefinedType
	case "-":
		t := c.inferExpression(sc, argument)
		if t.Kind == TypeLiteral && t.Name != "true" && t.Name != "false" {
			return literalType("-" + t.Name)
		}
		if widen(t) == bigintType {
			return bigintType
		}
		return numberType
	}
	return numberType
}

func (c *Checker) arrayLiteralType(sc scope, node *sitter.Node) *Type {
	var elems []*Type
	for _, child := range parsers.NamedChildren(node) {
		if child.Kind() == "spread_element" {
			spread := c.inferExpression(sc, parsers.FirstNamedChild(child))
			if spread.Kind == TypeArray {
				elems = append(elems, spread.Element)
			} else {
				elems = append(elems, anyType)
			}
			continue
		}
		elems = append(elems, c.widenForDeclaration(c.inferExpression(sc, child)))
	}
	if len(elems) == 0 {
		return arrayOf(anyType)
	}
	return arrayOf(unionOf(elems, c.strictNull))
}

func (c *Checker) objectLiteralType(sc scope, node *sitter.Node) *Type {
	file := sc.file
	sym := syntheticSymbol(file, node, "__object")
	t := &Type{Kind: TypeObject, Symbol: sym}
	sym.typ = t

	for _, member := range parsers.NamedChildren(node) {
		switch member.Kind() {
		case "pair":
			key := member.ChildByFieldName("key")
			t.Properties = append(t.Properties, &PropertyType{
				Name: objectKeyName(file, key),
				Type: c.widenForDeclaration(c.inferExpression(sc, member.ChildByFieldName("value"))),
			})
		case "shorthand_property_identifier":
			t.Properties = append(t.Properties, &PropertyType{
				Name: file.Text(member),
				Type: c.widenForDeclaration(c.identifierType(sc, member)),
			})
		case "method_definition":
			sig := c.functionNodeSignature(sc, member)
			t.Properties = append(t.Properties, &PropertyType{
				Name:   objectKeyName(file, member.ChildByFieldName("name")),
				Type:   functionType(nil, sig),
				method: true,
			})
		}
	}
	return t
}

func objectKeyName(file *File, key *sitter.Node) string {
	if key == nil {
		return ""
	}
	if key.Kind() == "string" {
		name := unquote(file.Text(key))
		for i := 0; i < len(name); i++ {
			if !isIdentPart(name[i]) {
				return strconv.Quote(name)
			}
		}
		return name
	}
	return file.Text(key)
}

func (c *Checker) newExpressionType(sc scope, node *sitter.Node) *Type {
	ctor := node.ChildByFieldName("constructor")
	if ctor == nil {
		return anyType
	}
	if ctor.Kind() != "identifier" {
		t := c.inferExpression(sc, ctor)
		if len(t.ConstructSignatures) > 0 {
			return t.ConstructSignatures[0].ReturnType()
		}
		return anyType
	}

	name := sc.file.Text(ctor)
	sym := c.ResolveAlias(c.lookupName(sc, name))
	switch {
	case sym == nil || sym == externalModule:
		return referenceTo(name, nil)
	case sym.Has(SymbolClass):
		return c.DeclaredTypeOfSymbol(sym)
	}
	t := c.TypeOfSymbol(sym)
	if len(t.ConstructSignatures) > 0 {
		return t.ConstructSignatures[0].ReturnType()
	}
	return anyType
}

// propertyType returns the type of a named member of t.
func (c *Checker) propertyType(t *Type, name string) *Type {
	switch t.Kind {
	case TypeReference:
		if t.Symbol != nil && t.Symbol.Members != nil {
			if member := t.Symbol.Members.Get(name); member != nil && !member.Has(SymbolTypeParameter) {
				return c.TypeOfSymbol(member)
			}
		}
	case TypeClassObject:
		if t.Symbol != nil {
			if member := t.Symbol.Exports.Get(name); member != nil {
				return c.TypeOfSymbol(member)
			}
		}
	case TypeObject:
		for _, prop := range t.Properties {
			if prop.Name == name {
				return prop.Type
			}
		}
	case TypeArray:
		if name == "length" {
			return numberType
		}
	case TypeIntrinsic, TypeLiteral:
		if name == "length" && widen(t) == stringType {
			return numberType
		}
	}
	return anyType
}

// thisType returns the instance type of the class enclosing node.
func (c *Checker) thisType(file *File, node *sitter.Node) *Type {
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case "class_declaration", "abstract_class_declaration":
			if decl := file.declarationOf(n); decl != nil && decl.Symbol != nil {
				return c.DeclaredTypeOfSymbol(decl.Symbol)
			}
			return anyType
		case "function_declaration", "function_expression", "function":
			return anyType
		}
	}
	return anyType
}

// identifierType resolves a value name: parameters and local variables of the
// enclosing functions first, then file locals and globals.
func (c *Checker) identifierType(sc scope, node *sitter.Node) *Type {
	file := sc.file
	name := file.Text(node)
	switch name {
	case "undefined":
		return undefinedType
	case "NaN", "Infinity":
		return numberType
	}

	for n := node.Parent(); n != nil; n = n.Parent() {
		if functionKinds[n.Kind()] {
			sig := c.functionNodeSignature(sc, n)
			for _, param := range sig.Parameters {
				if param.Name == name {
					return c.TypeOfSymbol(param)
				}
			}
		}
		if n.Kind() == "statement_block" {
			if t := c.blockVariableType(sc, n, name); t != nil {
				return t
			}
		}
	}

	sym := c.lookupName(sc, name)
	if sym == nil {
		return anyType
	}
	if sym.Has(SymbolAlias) {
		target := c.ResolveAlias(sym)
		if target == externalModule || len(target.Declarations) == 0 {
			return anyType
		}
		sym = target
	}
	if !sym.Has(SymbolValue) {
		return anyType
	}
	return c.TypeOfSymbol(sym)
}

// blockVariableType finds a variable declared directly in block.
func (c *Checker) blockVariableType(sc scope, block *sitter.Node, name string) *Type {
	for _, stmt := range parsers.NamedChildren(block) {
		if stmt.Kind() != "lexical_declaration" && stmt.Kind() != "variable_declaration" {
			continue
		}
		isConst := false
		if kind := stmt.ChildByFieldName("kind"); kind != nil {
			isConst = sc.file.Text(kind) == "const"
		}
		for _, declarator := range parsers.FindChildrenByType(stmt, "variable_declarator") {
			id := declarator.ChildByFieldName("name")
			if id == nil || id.Kind() != "identifier" || sc.file.Text(id) != name {
				continue
			}
			if annotation := declarator.ChildByFieldName("type"); annotation != nil {
				return c.typeFromNode(sc, annotation)
			}
			value := declarator.ChildByFieldName("value")
			if value == nil {
				return anyType
			}
			t := c.inferExpression(sc, value)
			if isConst {
				return t
			}
			return c.widenForDeclaration(t)
		}
	}
	return nil
}

// functionNodeSignature returns the signature of a function-like node, using its
// bound declaration when there is one.
func (c *Checker) functionNodeSignature(sc scope, node *sitter.Node) *Signature {
	if decl := sc.file.declarationOf(node); decl != nil && decl.Symbol != nil {
		return c.signatureOf(decl)
	}
	if sig, ok := c.signatures[node.Id()]; ok {
		return sig
	}

	decl := &Declaration{
		Kind:   DeclFunction,
		Node:   node,
		Host:   node,
		File:   sc.file,
		Parent: sc.decl,
	}
	if parent := node.Parent(); parent != nil && parent.Kind() == "variable_declarator" {
		if owner := sc.file.declarationOf(parent); owner != nil {
			decl.Doc = owner.Doc
			decl.Parent = owner
		}
	}
	return c.buildSignature(scope{file: sc.file, decl: decl}, node, decl)
}

// inferReturnType infers the return type of a function body from its return
// and yield expressions.
func (c *Checker) inferReturnType(sc scope, node *sitter.Node) *Type {
	body := node.ChildByFieldName("body")
	if body == nil {
		return anyType
	}
	async := parsers.HasChild(node, "async")
	generator := parsers.HasChild(node, "*") ||
		node.Kind() == "generator_function_declaration" || node.Kind() == "generator_function"

	if body.Kind() != "statement_block" {
		t := c.widenForDeclaration(c.inferExpression(sc, body))
		if async {
			return promiseOf(t)
		}
		return t
	}

	var returns, yields []*Type
	parsers.WalkTree(body, func(n *sitter.Node) bool {
		if n.Id() != body.Id() && (functionKinds[n.Kind()] || n.Kind() == "class" || n.Kind() == "class_declaration") {
			return false
		}
		switch n.Kind() {
		case "return_statement":
			if expr := parsers.FirstNamedChild(n); expr != nil {
				returns = append(returns, c.widenForDeclaration(c.inferExpression(sc, expr)))
			}
			return false
		case "yield_expression":
			if expr := parsers.FirstNamedChild(n); expr != nil {
				yields = append(yields, c.widenForDeclaration(c.inferExpression(sc, expr)))
			} else {
				yields = append(yields, undefinedType)
			}
		}
		return true
	})

	result := voidType
	if len(returns) > 0 {
		result = unionOf(returns, c.strictNull)
	}

	if generator {
		yielded := neverType
		if len(yields) > 0 {
			yielded = unionOf(yields, c.strictNull)
		}
		name := "Generator"
		if async {
			name = "AsyncGenerator"
		}
		return referenceTo(name, nil, yielded, result, unknownType)
	}
	if async {
		return promiseOf(result)
	}
	return result
}

func promiseOf(t *Type) *Type {
	if t.Kind == TypeReference && t.Name == "Promise" {
		return t
	}
	return referenceTo("Promise", nil, t)
}
