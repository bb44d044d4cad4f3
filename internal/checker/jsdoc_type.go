package checker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errJSDocTypeSyntax = errors.New("invalid jsdoc type expression")

// jsdocTypeParser turns the text of a {type} expression into a Type. Names are
// resolved through the checker in the given scope.
type jsdocTypeParser struct {
	src   string
	pos   int
	c     *Checker
	scope scope
}

// parseJSDocType parses expr. On a syntax error the expression is returned
// verbatim so that the printed form still matches the source.
func (c *Checker) parseJSDocType(expr string, sc scope) *Type {
	p := &jsdocTypeParser{src: expr, c: c, scope: sc}
	t, err := p.parse()
	if err != nil {
		c.logger.Debug("unparsed jsdoc type", "expr", expr, "file", sc.file.Path, "error", err)
		return &Type{Kind: TypeVerbatim, Name: strings.TrimSpace(expr)}
	}
	return t
}

func (p *jsdocTypeParser) parse() (*Type, error) {
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: unexpected %q at %d", errJSDocTypeSyntax, p.src[p.pos:], p.pos)
	}
	return t, nil
}

func (p *jsdocTypeParser) parseUnion() (*Type, error) {
	p.skipSpace()
	p.accept("|")

	var members []*Type
	for {
		t, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		members = append(members, t)
		if !p.accept("|") {
			break
		}
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return unionOf(members, p.c.strictNull), nil
}

func (p *jsdocTypeParser) parsePostfix() (*Type, error) {
	t, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("[]"):
			t = arrayOf(t)
		case p.accept("="):
			t = unionOf([]*Type{t, undefinedType}, p.c.strictNull)
		case p.peek("!") || p.peek("?"):
			// Postfix nullability markers do not change the printed type without
			// strict null checks.
			nullable := p.peek("?")
			p.pos++
			if nullable {
				t = unionOf([]*Type{t, nullType}, p.c.strictNull)
			}
		default:
			return t, nil
		}
	}
}

func (p *jsdocTypeParser) parsePrefix() (*Type, error) {
	p.skipSpace()
	switch {
	case p.accept("..."):
		t, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return arrayOf(t), nil
	case p.accept("!"):
		return p.parsePrefix()
	case p.peek("?"):
		p.pos++
		p.skipSpace()
		if p.atEnd() || p.peekAny(",)]}>|=") {
			return anyType, nil
		}
		t, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return unionOf([]*Type{t, nullType}, p.c.strictNull), nil
	}
	return p.parsePrimary()
}

func (p *jsdocTypeParser) parsePrimary() (*Type, error) {
	p.skipSpace()
	if p.atEnd() {
		return nil, fmt.Errorf("%w: unexpected end", errJSDocTypeSyntax)
	}

	switch c := p.src[p.pos]; {
	case c == '*':
		p.pos++
		return anyType, nil
	case c == '(':
		p.pos++
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, fmt.Errorf("%w: missing )", errJSDocTypeSyntax)
		}
		return t, nil
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseTuple()
	case c == '"' || c == '\'':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseNamed()
	}
	return nil, fmt.Errorf("%w: unexpected %q", errJSDocTypeSyntax, p.src[p.pos])
}

func (p *jsdocTypeParser) parseNamed() (*Type, error) {
	name := p.ident()
	switch name {
	case "function":
		if p.peekAfterSpace("(") {
			return p.parseFunction()
		}
	case "import":
		if p.peekAfterSpace("(") {
			return p.parseImport()
		}
	case "true", "false":
		return literalType(name), nil
	}

	names := []string{name}
	for p.peek(".") && !p.peek(".<") && !p.peek("...") {
		p.pos++
		part := p.ident()
		if part == "" {
			return nil, fmt.Errorf("%w: empty name after '.'", errJSDocTypeSyntax)
		}
		names = append(names, part)
	}

	args, err := p.parseTypeArguments()
	if err != nil {
		return nil, err
	}
	return p.c.resolveJSDocName(p.scope, names, args), nil
}

func (p *jsdocTypeParser) parseTypeArguments() ([]*Type, error) {
	p.accept(".")
	if !p.accept("<") {
		return nil, nil
	}
	var args []*Type
	for {
		arg, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(">") {
			return args, nil
		}
		if !p.accept(",") {
			return nil, fmt.Errorf("%w: missing > in type arguments", errJSDocTypeSyntax)
		}
	}
}

func (p *jsdocTypeParser) parseImport() (*Type, error) {
	p.accept("(")
	p.skipSpace()
	if p.atEnd() || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
		return nil, fmt.Errorf("%w: import() needs a string", errJSDocTypeSyntax)
	}
	specifier, err := p.quoted()
	if err != nil {
		return nil, err
	}
	if !p.accept(")") {
		return nil, fmt.Errorf("%w: missing ) after import", errJSDocTypeSyntax)
	}

	var names []string
	for p.peek(".") && !p.peek(".<") {
		p.pos++
		names = append(names, p.ident())
	}
	args, err := p.parseTypeArguments()
	if err != nil {
		return nil, err
	}
	return p.c.resolveImportType(p.scope, specifier, names, args), nil
}

func (p *jsdocTypeParser) parseFunction() (*Type, error) {
	p.accept("(")
	sig := &Signature{}
	construct := false
	index := 0
	for first := true; !p.accept(")"); first = false {
		if !first && !p.accept(",") {
			return nil, fmt.Errorf("%w: missing , in function parameters", errJSDocTypeSyntax)
		}
		p.skipSpace()
		if p.accept("new:") || p.accept("this:") {
			isNew := strings.HasSuffix(p.src[:p.pos], "new:")
			t, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			if isNew {
				construct = true
				sig.returnType = t
			}
			continue
		}

		rest := p.peek("...")
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		optional := strings.HasSuffix(strings.TrimSpace(p.src[:p.pos]), "=")
		sig.params = append(sig.params, sigParam{
			name:     "arg" + strconv.Itoa(index),
			optional: optional && !rest,
			rest:     rest,
			typ:      t,
		})
		index++
	}

	if p.accept(":") {
		t, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		sig.returnType = t
	} else if sig.returnType == nil {
		sig.returnType = anyType
	}

	if construct {
		return &Type{Kind: TypeObject, ConstructSignatures: []*Signature{sig}}, nil
	}
	return &Type{Kind: TypeObject, CallSignatures: []*Signature{sig}}, nil
}

func (p *jsdocTypeParser) parseObject() (*Type, error) {
	p.accept("{")
	obj := &Type{Kind: TypeObject}
	for {
		p.skipSpace()
		if p.accept("}") {
			return obj, nil
		}
		if len(obj.Properties) > 0 && !p.accept(",") && !p.accept(";") {
			return nil, fmt.Errorf("%w: missing , in object type", errJSDocTypeSyntax)
		}
		p.skipSpace()
		if p.accept("}") {
			return obj, nil
		}

		var name string
		if !p.atEnd() && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
			quoted, err := p.quoted()
			if err != nil {
				return nil, err
			}
			name = strconv.Quote(quoted)
		} else {
			name = p.ident()
		}
		if name == "" {
			return nil, fmt.Errorf("%w: missing property name", errJSDocTypeSyntax)
		}

		prop := &PropertyType{Name: name, Type: anyType}
		if p.accept("?") {
			prop.Optional = true
		}
		if p.accept(":") {
			t, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			prop.Type = t
		}
		obj.Properties = append(obj.Properties, prop)
	}
}

func (p *jsdocTypeParser) parseTuple() (*Type, error) {
	p.accept("[")
	tuple := &Type{Kind: TypeTuple}
	for !p.accept("]") {
		if len(tuple.Types) > 0 && !p.accept(",") {
			return nil, fmt.Errorf("%w: missing , in tuple", errJSDocTypeSyntax)
		}
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		tuple.Types = append(tuple.Types, t)
	}
	return tuple, nil
}

func (p *jsdocTypeParser) parseString() (*Type, error) {
	s, err := p.quoted()
	if err != nil {
		return nil, err
	}
	return literalType(strconv.Quote(s)), nil
}

func (p *jsdocTypeParser) parseNumber() (*Type, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && (isIdentPart(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	text := p.src[start:p.pos]
	normalized, ok := normalizeNumber(text)
	if !ok {
		return nil, fmt.Errorf("%w: bad number %q", errJSDocTypeSyntax, text)
	}
	return literalType(normalized), nil
}

func (p *jsdocTypeParser) quoted() (string, error) {
	quote := p.src[p.pos]
	end := strings.IndexByte(p.src[p.pos+1:], quote)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string", errJSDocTypeSyntax)
	}
	s := p.src[p.pos+1 : p.pos+1+end]
	p.pos += end + 2
	return s, nil
}

func (p *jsdocTypeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *jsdocTypeParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *jsdocTypeParser) atEnd() bool {
	return p.pos >= len(p.src)
}

func (p *jsdocTypeParser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *jsdocTypeParser) peekAny(chars string) bool {
	return !p.atEnd() && strings.IndexByte(chars, p.src[p.pos]) >= 0
}

func (p *jsdocTypeParser) peekAfterSpace(s string) bool {
	save := p.pos
	p.skipSpace()
	ok := p.peek(s)
	p.pos = save
	return ok
}

func (p *jsdocTypeParser) accept(s string) bool {
	p.skipSpace()
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}

// normalizeNumber prints a numeric literal the way the checker does (0x10 -> 16).
func normalizeNumber(text string) (string, bool) {
	clean := strings.ReplaceAll(text, "_", "")
	if strings.HasSuffix(clean, "n") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(clean, "n"), 0, 64); err != nil {
			return "", false
		}
		return clean, true
	}
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
