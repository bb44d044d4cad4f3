package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for JSDoc parsing:
// - Description stops at the first block tag
// - @param reads the type, the name and the comment; [name=default] is optional
// - @template lists every name and keeps the trailing comment
// - Nested braces stay inside the type expression
// - Lookups by tag, parameter and template name; nil docs are safe
// - Only /** comments count as doc comments

func TestParseJSDoc_ParamsAndReturns(t *testing.T) {
	t.Parallel()

	doc := ParseJSDoc(`/**
 * Adds two numbers.
 *
 * Works with negatives too.
 * @param {number} a first operand
 * @param {number} [b=2] second operand
 * @returns {number}
 */`)

	assert.Equal(t, "Adds two numbers.\n\nWorks with negatives too.", doc.Description)
	require.Len(t, doc.Tags, 3)

	a := doc.Tags[0]
	assert.Equal(t, "param", a.Name)
	assert.True(t, a.HasType)
	assert.Equal(t, "number", a.Type)
	assert.Equal(t, "a", a.ParamName)
	assert.Equal(t, "first operand", a.Comment)
	assert.False(t, a.Optional)

	b, ok := doc.Param("b")
	require.True(t, ok)
	assert.True(t, b.Optional)
	assert.Equal(t, "second operand", b.Comment)
	assert.Equal(t, "b second operand", b.Text)

	ret, ok := doc.Tag("return", "returns")
	require.True(t, ok)
	assert.Equal(t, "number", ret.Type)
	assert.Empty(t, ret.Comment)
}

func TestParseJSDoc_Template(t *testing.T) {
	t.Parallel()

	doc := ParseJSDoc("/** @template K, V Key and value */")
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, []string{"K", "V"}, doc.Tags[0].Names)
	assert.Equal(t, "K", doc.Tags[0].ParamName)
	assert.Equal(t, "Key and value", doc.Tags[0].Comment)

	tag, ok := doc.Template("V")
	require.True(t, ok)
	assert.Equal(t, "template", tag.Name)

	_, ok = doc.Template("T")
	assert.False(t, ok)
}

func TestParseJSDoc_NestedBraces(t *testing.T) {
	t.Parallel()

	doc := ParseJSDoc("/** @type {{ x: number, y: { z: string } }} */")
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "{ x: number, y: { z: string } }", doc.Tags[0].Type)
}

func TestParseJSDoc_TagsWithoutType(t *testing.T) {
	t.Parallel()

	doc := ParseJSDoc("/**\n * Internal helper.\n * @private\n * @implements IShape\n */")
	assert.Equal(t, "Internal helper.", doc.Description)
	require.Len(t, doc.Tags, 2)
	assert.Equal(t, "private", doc.Tags[0].Name)
	assert.False(t, doc.Tags[1].HasType)
	assert.Equal(t, "IShape", doc.Tags[1].Text)
	assert.Len(t, doc.TagsNamed("private"), 1)
}

func TestJSDoc_NilSafe(t *testing.T) {
	t.Parallel()

	var doc *JSDoc
	assert.Nil(t, doc.TagsNamed("param"))
	_, ok := doc.Tag("returns")
	assert.False(t, ok)
	_, ok = doc.Param("x")
	assert.False(t, ok)
	_, ok = doc.Template("T")
	assert.False(t, ok)
}

func TestIsJSDocComment(t *testing.T) {
	t.Parallel()

	assert.True(t, IsJSDocComment("/** doc */"))
	assert.False(t, IsJSDocComment("/* plain */"))
	assert.False(t, IsJSDocComment("/**/"))
	assert.False(t, IsJSDocComment("// line"))
}
