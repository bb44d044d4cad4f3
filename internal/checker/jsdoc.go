package checker

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// JSDoc is a parsed /** ... */ comment.
type JSDoc struct {
	// Description is the comment text before the first tag.
	Description string
	Tags        []JSDocTag
	// Node is the comment node the doc was parsed from.
	Node *sitter.Node
}

// JSDocTag is one block tag of a JSDoc comment.
type JSDocTag struct {
	Name string
	// Type is the brace-delimited type expression, without braces.
	Type    string
	HasType bool
	// ParamName is the documented name for @param, @property, @typedef, @callback
	// and the first name of @template.
	ParamName string
	// Names lists every type parameter named by a @template tag.
	Names    []string
	Optional bool
	// Comment is the free text following the type and name.
	Comment string
	// Text is what the host checker reports as the tag's text.
	Text string
}

// TagsNamed returns the tags called name in source order.
func (d *JSDoc) TagsNamed(name string) []JSDocTag {
	if d == nil {
		return nil
	}
	var tags []JSDocTag
	for _, tag := range d.Tags {
		if tag.Name == name {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Tag returns the first tag called one of names.
func (d *JSDoc) Tag(names ...string) (JSDocTag, bool) {
	if d == nil {
		return JSDocTag{}, false
	}
	for _, tag := range d.Tags {
		for _, name := range names {
			if tag.Name == name {
				return tag, true
			}
		}
	}
	return JSDocTag{}, false
}

// Param returns the @param tag documenting the named parameter.
func (d *JSDoc) Param(name string) (JSDocTag, bool) {
	if d == nil {
		return JSDocTag{}, false
	}
	for _, tag := range d.Tags {
		if isParamTag(tag.Name) && tag.ParamName == name {
			return tag, true
		}
	}
	return JSDocTag{}, false
}

// Template returns the @template tag declaring the named type parameter.
func (d *JSDoc) Template(name string) (JSDocTag, bool) {
	if d == nil {
		return JSDocTag{}, false
	}
	for _, tag := range d.Tags {
		if tag.Name != "template" {
			continue
		}
		for _, n := range tag.Names {
			if n == name {
				return tag, true
			}
		}
	}
	return JSDocTag{}, false
}

// IsJSDocComment reports whether a comment is a doc comment (/** but not /**/).
func IsJSDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/**/")
}

// ParseJSDoc parses the raw text of a doc comment.
func ParseJSDoc(text string) *JSDoc {
	body := strings.TrimPrefix(text, "/**")
	body = strings.TrimSuffix(body, "*/")

	var (
		description []string
		tagLines    [][]string
	)
	for _, line := range strings.Split(body, "\n") {
		line = stripCommentMargin(line)
		trimmed := strings.TrimLeft(line, " \t")
		if startsTag(trimmed) {
			tagLines = append(tagLines, []string{trimmed})
			continue
		}
		if len(tagLines) == 0 {
			description = append(description, line)
			continue
		}
		last := len(tagLines) - 1
		tagLines[last] = append(tagLines[last], line)
	}

	doc := &JSDoc{
		Description: strings.TrimSpace(strings.Join(description, "\n")),
	}
	for _, lines := range tagLines {
		doc.Tags = append(doc.Tags, parseTag(strings.TrimSpace(strings.Join(lines, "\n"))))
	}
	return doc
}

// stripCommentMargin removes the leading "*" decoration of a comment line.
func stripCommentMargin(line string) string {
	line = strings.TrimRight(line, " \t\r")
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "*") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "*")
	return strings.TrimPrefix(trimmed, " ")
}

func startsTag(line string) bool {
	return len(line) > 1 && line[0] == '@' && isIdentStart(line[1])
}

func parseTag(text string) JSDocTag {
	text = strings.TrimPrefix(text, "@")
	end := 0
	for end < len(text) && isIdentPart(text[end]) {
		end++
	}
	tag := JSDocTag{Name: text[:end]}
	rest := strings.TrimSpace(text[end:])

	if strings.HasPrefix(rest, "{") {
		if typ, remainder, ok := splitBraces(rest); ok {
			tag.Type = strings.TrimSpace(typ)
			tag.HasType = true
			rest = strings.TrimSpace(remainder)
		}
	}

	switch {
	case isParamTag(tag.Name) || tag.Name == "property" || tag.Name == "prop":
		name, remainder, optional := splitParamName(rest)
		tag.ParamName = name
		tag.Optional = optional
		tag.Comment = remainder
		tag.Text = strings.TrimSpace(name + " " + remainder)
	case tag.Name == "typedef" || tag.Name == "callback":
		name, remainder := splitWord(rest)
		tag.ParamName = name
		tag.Comment = remainder
		tag.Text = rest
	case tag.Name == "template":
		tag.Names, tag.Comment = splitTemplateNames(rest)
		if len(tag.Names) > 0 {
			tag.ParamName = tag.Names[0]
		}
		tag.Text = rest
	default:
		tag.Comment = rest
		tag.Text = rest
	}
	return tag
}

func isParamTag(name string) bool {
	return name == "param" || name == "arg" || name == "argument"
}

// splitBraces splits "{type} rest" honouring nested braces.
func splitBraces(s string) (inner, rest string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", s, false
}

// splitParamName handles "name rest", "[name] rest" and "[name=default] rest".
func splitParamName(s string) (name, rest string, optional bool) {
	if strings.HasPrefix(s, "[") {
		if end := strings.Index(s, "]"); end > 0 {
			inner := s[1:end]
			if eq := strings.Index(inner, "="); eq >= 0 {
				inner = inner[:eq]
			}
			return strings.TrimSpace(inner), strings.TrimSpace(s[end+1:]), true
		}
	}
	name, rest = splitWord(s)
	return name, rest, false
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func splitTemplateNames(s string) ([]string, string) {
	var names []string
	rest := strings.TrimSpace(s)
	for {
		end := 0
		for end < len(rest) && isIdentPart(rest[end]) {
			end++
		}
		if end == 0 {
			break
		}
		names = append(names, rest[:end])
		rest = strings.TrimSpace(rest[end:])
		if !strings.HasPrefix(rest, ",") {
			break
		}
		rest = strings.TrimSpace(rest[1:])
	}
	return names, rest
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
