package checker

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclet-gen/internal/parsers"
)

// signatureKinds are the declarations that contribute a call or construct signature.
var signatureKinds = map[DeclKind]bool{
	DeclFunction:           true,
	DeclMethod:             true,
	DeclMethodSignature:    true,
	DeclConstructor:        true,
	DeclCallSignature:      true,
	DeclConstructSignature: true,
}

// callSignaturesOf returns one signature per declaration of sym. When overloads
// exist the implementation is hidden.
func (c *Checker) callSignaturesOf(sym *Symbol) []*Signature {
	var decls []*Declaration
	overloaded := false
	for _, decl := range sym.Declarations {
		if !signatureKinds[decl.Kind] {
			continue
		}
		if !decl.HasBody {
			overloaded = true
		}
		decls = append(decls, decl)
	}

	var sigs []*Signature
	for _, decl := range decls {
		if overloaded && decl.HasBody && len(decls) > 1 {
			continue
		}
		sigs = append(sigs, c.signatureOf(decl))
	}
	return sigs
}

// constructSignaturesOfClass returns the construct signatures of a class: one per
// constructor overload, or an implicit parameterless one.
func (c *Checker) constructSignaturesOfClass(sym *Symbol) []*Signature {
	if ctor := sym.Members.Get(KeyConstructor); ctor != nil {
		return c.callSignaturesOf(ctor)
	}
	return []*Signature{{returnType: c.DeclaredTypeOfSymbol(sym)}}
}

// signatureOf returns the signature declared by decl.
func (c *Checker) signatureOf(decl *Declaration) *Signature {
	return c.buildSignature(scope{file: decl.File, decl: decl}, decl.Node, decl)
}

// buildSignature reads the parameters and return type of a function-like node.
// decl may be nil for signatures written in type positions.
func (c *Checker) buildSignature(sc scope, node *sitter.Node, decl *Declaration) *Signature {
	if sig, ok := c.signatures[node.Id()]; ok {
		return sig
	}

	sig := &Signature{Declaration: decl}
	c.signatures[node.Id()] = sig
	if decl != nil {
		sig.TypeParameters = decl.TypeParameters
	}
	owner := decl
	if owner == nil {
		owner = sc.decl
	}

	index := 0
	for _, param := range parameterNodes(node) {
		pattern := param.ChildByFieldName("pattern")
		if pattern == nil {
			pattern = param
		}
		name, rest := c.parameterName(sc.file, pattern, index)
		if name == "this" {
			continue
		}
		index++

		pdecl := &Declaration{
			Kind:     DeclParameter,
			Name:     name,
			Node:     param,
			Host:     param,
			File:     sc.file,
			Parent:   owner,
			Optional: param.Kind() == "optional_parameter" || parameterDefault(param) != nil,
			Rest:     rest,
		}
		if sc.file.IsJavaScript() && decl != nil {
			if tag, ok := decl.Doc.Param(name); ok && (tag.Optional || strings.HasSuffix(tag.Type, "=")) {
				pdecl.Optional = true
			}
		}
		psym := &Symbol{Name: name}
		psym.addDeclaration(pdecl, SymbolFunctionScopedVariable)

		sig.Parameters = append(sig.Parameters, psym)
		sig.params = append(sig.params, sigParam{
			name:     name,
			optional: pdecl.Optional && !rest,
			rest:     rest,
			typ:      c.TypeOfSymbol(psym),
		})
	}

	sig.returnType = c.returnTypeOf(sc, node, decl)
	return sig
}

// parameterNodes returns the parameter nodes of a function-like node.
func parameterNodes(node *sitter.Node) []*sitter.Node {
	if params := node.ChildByFieldName("parameters"); params != nil {
		return parsers.NamedChildren(params)
	}
	if single := node.ChildByFieldName("parameter"); single != nil {
		return []*sitter.Node{single}
	}
	return nil
}

// parameterName returns the name of a parameter pattern. Destructured parameters
// are named by position the way the checker does (__0, __1).
func (c *Checker) parameterName(file *File, pattern *sitter.Node, index int) (string, bool) {
	switch pattern.Kind() {
	case "identifier", "this":
		return file.Text(pattern), false
	case "rest_pattern":
		if inner := parsers.FirstNamedChild(pattern); inner != nil && inner.Kind() == "identifier" {
			return file.Text(inner), true
		}
		return "__" + strconv.Itoa(index), true
	case "assignment_pattern":
		if left := pattern.ChildByFieldName("left"); left != nil {
			return c.parameterName(file, left, index)
		}
	}
	return "__" + strconv.Itoa(index), false
}

func parameterDefault(param *sitter.Node) *sitter.Node {
	if value := param.ChildByFieldName("value"); value != nil {
		return value
	}
	if param.Kind() == "assignment_pattern" {
		return param.ChildByFieldName("right")
	}
	return nil
}

func (c *Checker) returnTypeOf(sc scope, node *sitter.Node, decl *Declaration) *Type {
	if decl != nil && decl.Kind == DeclConstructor && decl.Parent != nil {
		return c.DeclaredTypeOfSymbol(decl.Parent.Symbol)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		return c.typeFromNode(sc, rt)
	}
	if sc.file.IsJavaScript() && decl != nil {
		if tag, ok := decl.Doc.Tag("returns", "return"); ok && tag.HasType {
			return c.parseJSDocType(tag.Type, sc)
		}
	}
	if node.ChildByFieldName("body") != nil {
		return c.inferReturnType(sc, node)
	}
	return anyType
}

// jsdocType returns the type of the first tag called name, in JavaScript files only.
func (c *Checker) jsdocType(decl *Declaration, names ...string) *Type {
	if decl == nil || decl.File == nil || !decl.File.IsJavaScript() {
		return nil
	}
	tag, ok := decl.Doc.Tag(names...)
	if !ok || !tag.HasType {
		return nil
	}
	return c.parseJSDocType(tag.Type, scope{file: decl.File, decl: decl})
}

func (c *Checker) typeOfParameter(decl *Declaration) *Type {
	sc := scope{file: decl.File, decl: decl.Parent}
	if annotation := decl.Node.ChildByFieldName("type"); annotation != nil {
		return c.typeFromNode(sc, annotation)
	}
	if decl.File.IsJavaScript() && decl.Parent != nil {
		if tag, ok := decl.Parent.Doc.Param(decl.Name); ok && tag.HasType {
			return c.parseJSDocType(tag.Type, sc)
		}
	}
	if value := parameterDefault(decl.Node); value != nil {
		return c.widenForDeclaration(c.inferExpression(sc, value))
	}
	if decl.Rest {
		return arrayOf(anyType)
	}
	return anyType
}

func (c *Checker) typeOfProperty(decl *Declaration) *Type {
	if isParameterNode(decl.Node) {
		if annotation := decl.Node.ChildByFieldName("type"); annotation != nil {
			return c.typeFromNode(scope{file: decl.File, decl: decl.Parent}, annotation)
		}
		return anyType
	}

	sc := scope{file: decl.File, decl: decl}
	if annotation := decl.Node.ChildByFieldName("type"); annotation != nil {
		return c.typeFromNode(sc, annotation)
	}
	if t := c.jsdocType(decl, "type"); t != nil {
		return t
	}
	if value := decl.Node.ChildByFieldName("value"); value != nil {
		t := c.inferExpression(sc, value)
		if decl.Readonly {
			return t
		}
		return c.widenForDeclaration(t)
	}
	return anyType
}

func (c *Checker) typeOfAccessor(sym *Symbol) *Type {
	for _, decl := range sym.Declarations {
		if decl.Kind == DeclAccessor && parsers.HasChild(decl.Node, "get") {
			if t := c.jsdocType(decl, "type"); t != nil {
				return t
			}
			return c.signatureOf(decl).ReturnType()
		}
	}
	for _, decl := range sym.Declarations {
		if decl.Kind != DeclAccessor {
			continue
		}
		if t := c.jsdocType(decl, "type"); t != nil {
			return t
		}
		if sig := c.signatureOf(decl); len(sig.params) > 0 {
			return sig.params[0].typ
		}
	}
	return anyType
}

func (c *Checker) typeOfVariable(decl *Declaration) *Type {
	if decl.Pattern {
		return anyType
	}
	sc := scope{file: decl.File, decl: decl}
	if annotation := decl.Node.ChildByFieldName("type"); annotation != nil {
		return c.typeFromNode(sc, annotation)
	}
	if t := c.jsdocType(decl, "type"); t != nil {
		return t
	}
	if value := decl.Node.ChildByFieldName("value"); value != nil {
		t := c.inferExpression(sc, value)
		if decl.Const && t != nullType && t != undefinedType {
			return t
		}
		return c.widenForDeclaration(t)
	}
	return anyType
}

// widenForDeclaration widens literals and, without strict null checks, turns
// null and undefined into any.
func (c *Checker) widenForDeclaration(t *Type) *Type {
	if !c.strictNull && (t == nullType || t == undefinedType) {
		return anyType
	}
	return widen(t)
}

// typeOfTypedef builds the type named by a @typedef or @callback comment.
func (c *Checker) typeOfTypedef(decl *Declaration) *Type {
	tags := decl.typedef
	if len(tags) == 0 {
		return anyType
	}
	head := tags[0]
	sc := scope{file: decl.File, decl: decl}

	if head.Name == "callback" {
		sig := &Signature{Declaration: decl, returnType: anyType}
		for _, tag := range tags[1:] {
			switch {
			case isParamTag(tag.Name):
				t := anyType
				if tag.HasType {
					t = c.parseJSDocType(tag.Type, sc)
				}
				sig.params = append(sig.params, sigParam{
					name:     tag.ParamName,
					optional: tag.Optional || strings.HasSuffix(tag.Type, "="),
					rest:     strings.HasPrefix(tag.Type, "..."),
					typ:      t,
				})
			case (tag.Name == "returns" || tag.Name == "return") && tag.HasType:
				sig.returnType = c.parseJSDocType(tag.Type, sc)
			}
		}
		return &Type{Kind: TypeObject, CallSignatures: []*Signature{sig}}
	}

	var props []JSDocTag
	for _, tag := range tags[1:] {
		if (tag.Name == "property" || tag.Name == "prop") && tag.ParamName != "" && !strings.Contains(tag.ParamName, ".") {
			props = append(props, tag)
		}
	}
	if len(props) > 0 && (!head.HasType || head.Type == "Object" || head.Type == "object") {
		obj := &Type{Kind: TypeObject}
		for _, tag := range props {
			t := anyType
			if tag.HasType {
				t = c.parseJSDocType(tag.Type, sc)
			}
			obj.Properties = append(obj.Properties, &PropertyType{
				Name:     tag.ParamName,
				Optional: tag.Optional || strings.HasSuffix(tag.Type, "="),
				Type:     t,
			})
		}
		return obj
	}
	if !head.HasType {
		return anyType
	}
	return c.parseJSDocType(head.Type, sc)
}

// syntheticSymbol creates the symbol of an anonymous type or value written at node.
func syntheticSymbol(file *File, node *sitter.Node, name string) *Symbol {
	sym := &Symbol{Name: name}
	sym.addDeclaration(&Declaration{
		Kind: DeclTypeLiteral,
		Name: name,
		Node: node,
		Host: node,
		File: file,
	}, SymbolTypeLiteral)
	return sym
}
