package doclet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for doclet encoding and aggregation:
// - Marshal writes kind as the first key of every variant
// - Empty slices render as [] and a nil sequence as an empty array
// - Optional fields are omitted, never null
// - Aggregator keeps append order, ignores nil and hands out copies

func TestMarshal_KindFirst(t *testing.T) {
	t.Parallel()

	doclets := []Doclet{
		&ClassDoclet{Implements: []string{}, SymbolInfo: SymbolInfo{Name: "C"}},
		&PropertyDoclet{SymbolInfo: SymbolInfo{Name: "p"}},
		&ConstructorDoclet{Parameters: []Parameter{}},
		&FunctionDoclet{Name: "f", Parameters: []Parameter{}},
		&InterfaceDoclet{Name: "I", Templates: []Template{}},
		&VariableDoclet{SymbolInfo: SymbolInfo{Name: "v"}},
	}

	for _, d := range doclets {
		data, err := d.(interface{ MarshalJSON() ([]byte, error) }).MarshalJSON()
		require.NoError(t, err)
		prefix := `{"kind":"` + string(d.Kind()) + `"`
		assert.True(t, strings.HasPrefix(string(data), prefix), "got %s", data)
	}
}

func TestMarshal_EmptyCollections(t *testing.T) {
	t.Parallel()

	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = Marshal([]Doclet{
		&ClassDoclet{Implements: []string{}, SymbolInfo: SymbolInfo{Type: TypeInfo{Value: "typeof C"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"implements": []`)
	assert.NotContains(t, string(data), "null")
	// a type without a symbol has no file key
	assert.NotContains(t, string(data), `"file": ""`)
}

func TestMarshal_FunctionMemberOfOmitted(t *testing.T) {
	t.Parallel()

	data, err := Marshal([]Doclet{&FunctionDoclet{Name: "f", FullName: "a.ts#f", Parameters: []Parameter{}}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "memberOf")

	data, err = Marshal([]Doclet{&FunctionDoclet{Name: "m", MemberOf: "a.ts/C", FullName: "a.ts/C#m", Parameters: []Parameter{}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"memberOf": "a.ts/C"`)
}

func TestAggregator(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	assert.Equal(t, 0, agg.Len())
	assert.NotNil(t, agg.Doclets())

	first := &VariableDoclet{SymbolInfo: SymbolInfo{Name: "a"}}
	second := &VariableDoclet{SymbolInfo: SymbolInfo{Name: "b"}}
	agg.Append(first, nil)
	agg.Append(second)

	require.Equal(t, 2, agg.Len())
	got := agg.Doclets()
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])

	got[0] = second
	assert.Same(t, first, agg.Doclets()[0])
}
