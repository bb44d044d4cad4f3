package doclet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/doclet-gen/internal/checker"
)

// Test Plan for Generate:
// - Two runs over the same input produce identical JSON
// - Module files only document exported declarations
// - Declaration files and scripts document every top-level declaration
// - Every construct signature of a class becomes its own constructor doclet
// - Interface members follow the interface doclet, properties before methods
// - Call and construct signatures of an interface are skipped
// - Class type parameters and index signatures are documented as properties
// - Primitive types carry no file; declared types name their file
// - A reference to a missing module aborts the run with ErrMissingDeclaration
// - Unsupported declarations are skipped without failing the run
// - Anonymous function declarations are skipped without failing the run
// - Namespace members are only documented when namespaces are enabled
// - Files are documented in root-file order

func testOptions() checker.CompilerOptions {
	return checker.CompilerOptions{AllowJs: true, CheckJs: true, NoEmit: true, Target: "es6"}
}

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func generateIn(t *testing.T, dir string, names []string, options ...Option) ([]Doclet, error) {
	t.Helper()
	roots := make([]string, 0, len(names))
	for _, name := range names {
		roots = append(roots, filepath.Join(dir, name))
	}
	options = append([]Option{WithBaseDir(dir)}, options...)
	return Generate(roots, testOptions(), options...)
}

func names(doclets []Doclet) []string {
	result := make([]string, 0, len(doclets))
	for _, d := range doclets {
		switch v := d.(type) {
		case *ClassDoclet:
			result = append(result, "class:"+v.Name)
		case *PropertyDoclet:
			result = append(result, "property:"+v.Name)
		case *ConstructorDoclet:
			result = append(result, "constructor")
		case *FunctionDoclet:
			result = append(result, "function:"+v.Name)
		case *InterfaceDoclet:
			result = append(result, "interface:"+v.Name)
		case *VariableDoclet:
			result = append(result, "variable:"+v.Name)
		}
	}
	return result
}

func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	fixture := filepath.Join("..", "..", "testdata", "fixtures", "01-input.js")
	base := filepath.Join("..", "..", "testdata")

	first, err := Generate([]string{fixture}, testOptions(), WithBaseDir(base))
	require.NoError(t, err)
	second, err := Generate([]string{fixture}, testOptions(), WithBaseDir(base))
	require.NoError(t, err)

	a, err := Marshal(first)
	require.NoError(t, err)
	b, err := Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, first)
}

func TestGenerate_ExportFilter(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"module.ts":  "export const shown = 1;\nconst hidden = 2;\nfunction helper() {}\nexport function visible(): void {}\n",
		"types.d.ts": "declare const version: string;\ninterface Options { debug: boolean; }\n",
		"script.js":  "var counter = 0;\nfunction increment() { counter++; }\n",
	})

	doclets, err := generateIn(t, dir, []string{"module.ts", "types.d.ts", "script.js"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"variable:shown",
		"function:visible",
		"variable:version",
		"interface:Options",
		"property:debug",
		"variable:counter",
		"function:increment",
	}, names(doclets))
}

func TestGenerate_ConstructorOverloads(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"shape.ts": `export class Shape {
    /** Empty shape. */
    constructor();
    /** Sized shape. */
    constructor(size: number);
    constructor(size?: number) {}
}
`,
	})

	doclets, err := generateIn(t, dir, []string{"shape.ts"})
	require.NoError(t, err)
	require.Equal(t, []string{"class:Shape", "constructor", "constructor"}, names(doclets))

	empty := doclets[1].(*ConstructorDoclet)
	sized := doclets[2].(*ConstructorDoclet)

	assert.Equal(t, "shape.ts/Shape#constructor", empty.FullName)
	assert.Equal(t, empty.FullName, sized.FullName)
	assert.Equal(t, "Empty shape.", empty.Documentation)
	assert.Empty(t, empty.Parameters)
	assert.Equal(t, "Sized shape.", sized.Documentation)
	require.Len(t, sized.Parameters, 1)
	assert.Equal(t, "size", sized.Parameters[0].Name)
	assert.Equal(t, TypeInfo{Value: "number"}, sized.Parameters[0].Type)
	assert.Equal(t, TypeInfo{Value: "Shape", File: "shape.ts"}, sized.ReturnType)
	assert.Less(t, empty.Meta.Start, sized.Meta.Start)
}

func TestGenerate_InterfaceMembers(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"api.ts": `/** A drawable thing. */
export interface Drawable {
    draw(scale: number): void;
    /** Label shown next to the drawing. */
    label: string;
}
`,
	})

	doclets, err := generateIn(t, dir, []string{"api.ts"})
	require.NoError(t, err)
	require.Equal(t, []string{"interface:Drawable", "property:label", "function:draw"}, names(doclets))

	iface := doclets[0].(*InterfaceDoclet)
	assert.Equal(t, "api.ts/Drawable", iface.FullName)
	assert.Equal(t, "A drawable thing.", iface.Documentation)
	assert.Equal(t, TypeInfo{Value: "Drawable", File: "api.ts"}, iface.Type)
	assert.Empty(t, iface.Templates)

	label := doclets[1].(*PropertyDoclet)
	assert.Equal(t, "api.ts/Drawable", label.MemberOf)
	assert.Equal(t, "api.ts/Drawable#label", label.FullName)
	assert.Equal(t, "Label shown next to the drawing.", label.Documentation)

	draw := doclets[2].(*FunctionDoclet)
	assert.Equal(t, "api.ts/Drawable", draw.MemberOf)
	assert.Equal(t, "api.ts/Drawable#draw", draw.FullName)
	assert.Equal(t, TypeInfo{Value: "void"}, draw.ReturnType)
}

func TestGenerate_InterfaceSignaturesAreSkipped(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"spy.d.ts": `export interface Spy {
    (): void;
    (x: number): void;
    new (name: string): Spy;
    /** Whether the spy was called. */
    called: boolean;
}
`,
	})

	doclets, err := generateIn(t, dir, []string{"spy.d.ts"})
	require.NoError(t, err)
	require.Equal(t, []string{"interface:Spy", "property:called"}, names(doclets))

	called := doclets[1].(*PropertyDoclet)
	assert.Equal(t, "spy.d.ts/Spy#called", called.FullName)
	assert.Equal(t, TypeInfo{Value: "boolean"}, called.Type)
}

func TestGenerate_ClassTypeParametersAndIndexSignatures(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"box.ts": `/**
 * A keyed box.
 * @template T the held type
 */
export class Box<T> {
    [key: string]: any;
    value: T;
}
`,
	})

	doclets, err := generateIn(t, dir, []string{"box.ts"})
	require.NoError(t, err)
	require.Equal(t, []string{"class:Box", "property:T", "property:__index", "property:value"}, names(doclets))

	param := doclets[1].(*PropertyDoclet)
	assert.Equal(t, "box.ts/Box<T>", param.MemberOf)
	assert.Equal(t, "box.ts/Box<T>#T", param.FullName)
	assert.Equal(t, "the held type", param.Documentation)
	assert.Equal(t, TypeInfo{Value: "T", File: "box.ts"}, param.Type)
	assert.True(t, param.Documented)

	index := doclets[2].(*PropertyDoclet)
	assert.Equal(t, "box.ts/Box<T>#__index", index.FullName)
	assert.Equal(t, TypeInfo{Value: "any"}, index.Type)
	assert.False(t, index.Documented)

	value := doclets[3].(*PropertyDoclet)
	assert.Equal(t, TypeInfo{Value: "T", File: "box.ts"}, value.Type)
}

func TestGenerate_PrimitiveTypesHaveNoFile(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"point.ts": "export interface Point { x: number; }\n",
		"main.ts": `import { Point } from './point';
export const count: number = 1;
export const names: string[] = [];
export const either: string | number = 1;
export const origin: Point = { x: 0 };
`,
	})

	doclets, err := generateIn(t, dir, []string{"main.ts"})
	require.NoError(t, err)
	require.Len(t, doclets, 4)

	types := make(map[string]TypeInfo)
	for _, d := range doclets {
		v := d.(*VariableDoclet)
		types[v.Name] = v.Type
	}
	assert.Equal(t, TypeInfo{Value: "number"}, types["count"])
	assert.Equal(t, TypeInfo{Value: "string[]"}, types["names"])
	assert.Equal(t, TypeInfo{Value: "string | number"}, types["either"])
	assert.Equal(t, TypeInfo{Value: "Point", File: "point.ts"}, types["origin"])
}

func TestGenerate_MissingDeclarationIsFatal(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"main.ts": "export const before = 1;\nimport { Gone } from './missing';\nexport const value: Gone = null;\n",
	})

	doclets, err := generateIn(t, dir, []string{"main.ts"})
	require.Error(t, err)
	assert.Nil(t, doclets)
	assert.True(t, errors.Is(err, ErrMissingDeclaration))

	var missing *MissingDeclarationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Gone", missing.Symbol)
	assert.Equal(t, "main.ts", missing.File)
}

func TestGenerate_UnsupportedDeclarationsAreSkipped(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"misc.ts": `export type Id = string;
export enum Color { Red, Green }
export default 42;
export const kept = true;
`,
	})

	doclets, err := generateIn(t, dir, []string{"misc.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"variable:kept"}, names(doclets))
}

func TestGenerate_AnonymousFunctionIsSkipped(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"anon.ts": "export default function () {}\nexport function named(): void {}\n",
		"anon.js": "export default function (a) { return a; }\n",
	})

	doclets, err := generateIn(t, dir, []string{"anon.ts", "anon.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"function:named"}, names(doclets))
}

func TestGenerate_Namespaces(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"ns.ts": `export namespace Geometry {
    export const unit = 1;
    function scale(n: number): number { return n * unit; }
}
`,
	})

	without, err := generateIn(t, dir, []string{"ns.ts"})
	require.NoError(t, err)
	assert.Empty(t, without)

	with, err := generateIn(t, dir, []string{"ns.ts"}, WithNamespaces(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"variable:unit", "function:scale"}, names(with))
}

func TestGenerate_RootFileOrder(t *testing.T) {
	t.Parallel()

	dir := writeSources(t, map[string]string{
		"a.ts": "export const a = 1;\n",
		"b.ts": "export const b = 2;\n",
	})

	doclets, err := generateIn(t, dir, []string{"b.ts", "a.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"variable:b", "variable:a"}, names(doclets))
}
