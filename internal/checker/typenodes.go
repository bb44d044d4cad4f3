package checker

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

// typeFromNode resolves a TypeScript type annotation.
func (c *Checker) typeFromNode(sc scope, node *sitter.Node) *Type {
	if node == nil {
		return anyType
	}
	file := sc.file

	switch node.Kind() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "parenthesized_type":
		return c.typeFromNode(sc, parsers.FirstNamedChild(node))
	case "type_predicate_annotation", "asserts_annotation", "type_predicate", "asserts":
		inner := node
		if node.Kind() == "type_predicate_annotation" || node.Kind() == "asserts_annotation" {
			inner = parsers.FirstNamedChild(node)
		}
		return &Type{Kind: TypeVerbatim, Name: normalizeSpace(file.Text(inner))}
	case "predefined_type":
		if t := IntrinsicType(file.Text(node)); t != nil {
			return t
		}
		return &Type{Kind: TypeVerbatim, Name: file.Text(node)}
	case "type_identifier", "identifier":
		return c.resolveTypeName(sc, []string{file.Text(node)}, nil)
	case "nested_type_identifier":
		return c.resolveTypeName(sc, strings.Split(file.Text(node), "."), nil)
	case "generic_type":
		name := node.ChildByFieldName("name")
		var args []*Type
		if list := node.ChildByFieldName("type_arguments"); list != nil {
			for _, arg := range parsers.NamedChildren(list) {
				args = append(args, c.typeFromNode(sc, arg))
			}
		}
		if name == nil {
			return anyType
		}
		return c.resolveTypeName(sc, strings.Split(file.Text(name), "."), args)
	case "array_type":
		return arrayOf(c.typeFromNode(sc, parsers.FirstNamedChild(node)))
	case "readonly_type":
		return &Type{Kind: TypeVerbatim, Name: "readonly " + TypeToString(c.typeFromNode(sc, parsers.FirstNamedChild(node)))}
	case "union_type":
		var members []*Type
		for _, child := range parsers.NamedChildren(node) {
			members = append(members, c.typeFromNode(sc, child))
		}
		return unionOf(members, c.strictNull)
	case "intersection_type":
		t := &Type{Kind: TypeIntersection}
		for _, child := range parsers.NamedChildren(node) {
			member := c.typeFromNode(sc, child)
			if member.Kind == TypeIntersection {
				t.Types = append(t.Types, member.Types...)
				continue
			}
			t.Types = append(t.Types, member)
		}
		return t
	case "literal_type":
		return c.literalTypeFromNode(file, parsers.FirstNamedChild(node))
	case "tuple_type":
		t := &Type{Kind: TypeTuple}
		for _, child := range parsers.NamedChildren(node) {
			t.Types = append(t.Types, c.typeFromNode(sc, child))
		}
		return t
	case "function_type":
		sig := c.buildSignature(sc, node, nil)
		sym := syntheticSymbol(file, node, KeyTypeLiteral)
		t := functionType(sym, sig)
		sym.typ = t
		return t
	case "constructor_type":
		sig := c.buildSignature(sc, node, nil)
		sym := syntheticSymbol(file, node, KeyTypeLiteral)
		t := &Type{Kind: TypeObject, Symbol: sym, ConstructSignatures: []*Signature{sig}}
		sym.typ = t
		return t
	case "object_type":
		return c.objectTypeFromNode(sc, node)
	case "type_query":
		return c.typeQuery(sc, node)
	case "this_type":
		return &Type{Kind: TypeVerbatim, Name: "this"}
	case "existential_type":
		return anyType
	}
	return &Type{Kind: TypeVerbatim, Name: normalizeSpace(file.Text(node))}
}

func (c *Checker) literalTypeFromNode(file *File, node *sitter.Node) *Type {
	if node == nil {
		return anyType
	}
	text := file.Text(node)
	switch node.Kind() {
	case "null":
		return nullType
	case "undefined":
		return undefinedType
	case "true", "false":
		return literalType(text)
	case "string":
		return literalType(strconv.Quote(unquote(text)))
	case "number":
		if normalized, ok := normalizeNumber(text); ok {
			return literalType(normalized)
		}
	case "unary_expression":
		if arg := node.ChildByFieldName("argument"); arg != nil && arg.Kind() == "number" {
			if normalized, ok := normalizeNumber(file.Text(arg)); ok {
				return literalType("-" + normalized)
			}
		}
	}
	return &Type{Kind: TypeVerbatim, Name: text}
}

// objectTypeFromNode resolves a type literal { ... }.
func (c *Checker) objectTypeFromNode(sc scope, node *sitter.Node) *Type {
	file := sc.file
	sym := syntheticSymbol(file, node, KeyTypeLiteral)
	t := &Type{Kind: TypeObject, Symbol: sym}
	sym.typ = t

	for _, member := range parsers.NamedChildren(node) {
		switch member.Kind() {
		case "property_signature":
			t.Properties = append(t.Properties, &PropertyType{
				Name:     file.Text(member.ChildByFieldName("name")),
				Optional: parsers.HasChild(member, "?"),
				Readonly: parsers.HasChild(member, "readonly"),
				Type:     c.typeFromNode(sc, member.ChildByFieldName("type")),
			})
		case "method_signature":
			sig := c.buildSignature(sc, member, nil)
			t.Properties = append(t.Properties, &PropertyType{
				Name:     file.Text(member.ChildByFieldName("name")),
				Optional: parsers.HasChild(member, "?"),
				Type:     functionType(nil, sig),
				method:   true,
			})
		case "call_signature":
			t.CallSignatures = append(t.CallSignatures, c.buildSignature(sc, member, nil))
		case "construct_signature":
			t.ConstructSignatures = append(t.ConstructSignatures, c.buildSignature(sc, member, nil))
		case "index_signature":
			name, value := indexSignatureParts(file, member)
			t.Properties = append(t.Properties, &PropertyType{
				Name: name,
				Type: c.typeFromNode(sc, value),
			})
		}
	}
	return t
}

// indexSignatureParts splits [key: string]: T into its printed key and value type node.
func indexSignatureParts(file *File, node *sitter.Node) (string, *sitter.Node) {
	var value *sitter.Node
	if annotation := node.ChildByFieldName("type"); annotation != nil {
		value = annotation
	} else if annotation := parsers.FindChildByType(node, "type_annotation"); annotation != nil {
		value = annotation
	}
	text := file.Text(node)
	if end := strings.Index(text, "]"); end >= 0 {
		text = text[:end+1]
	}
	return normalizeSpace(text), value
}

// typeQuery resolves typeof x.
func (c *Checker) typeQuery(sc scope, node *sitter.Node) *Type {
	target := parsers.FirstNamedChild(node)
	if target == nil {
		return anyType
	}
	names := strings.Split(sc.file.Text(target), ".")
	sym := c.lookupName(sc, names[0])
	for _, name := range names[1:] {
		if sym == nil {
			break
		}
		if member := c.memberOfNamespace(sym, name); member != nil {
			sym = member
			continue
		}
		sym = c.ResolveAlias(sym).Exports.Get(name)
	}
	if sym == nil {
		return &Type{Kind: TypeVerbatim, Name: normalizeSpace(sc.file.Text(node))}
	}
	return c.TypeOfSymbol(sym)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
