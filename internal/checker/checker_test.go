package checker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Program and Checker:
// - NewProgram keeps root order and loads relative imports
// - A program without usable root files fails with ErrNoRootFiles
// - JavaScript roots are skipped without allowJs
// - Progress callbacks see every loaded file
// - Script and module files are told apart
// - Annotated, JSDoc-typed and inferred declarations print as the checker would
// - Imports resolve to their target; bare specifiers are external
// - Documentation comes from the description, @param and @template

func testOptions() CompilerOptions {
	return CompilerOptions{AllowJs: true, CheckJs: true, NoEmit: true, Target: "es6"}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadProgram(t *testing.T, dir string, roots ...string) *Program {
	t.Helper()
	paths := make([]string, 0, len(roots))
	for _, root := range roots {
		paths = append(paths, filepath.Join(dir, root))
	}
	program, err := NewProgram(paths, testOptions())
	require.NoError(t, err)
	t.Cleanup(program.Close)
	return program
}

func typeOf(t *testing.T, program *Program, file, name string) string {
	t.Helper()
	f := program.File(file)
	require.NotNil(t, f, "file %s not loaded", file)
	sym := f.Locals.Get(name)
	require.NotNil(t, sym, "symbol %s not found", name)
	return program.Checker().TypeToString(program.Checker().TypeOfSymbol(sym))
}

type recordingProgress struct {
	started int
	loaded  []string
	files   int
}

func (r *recordingProgress) OnLoadStart(rootFiles int)    { r.started = rootFiles }
func (r *recordingProgress) OnFileLoaded(fileName string) { r.loaded = append(r.loaded, fileName) }
func (r *recordingProgress) OnLoadComplete(files int, duration time.Duration) {
	r.files = files
}

func TestNewProgram_LoadsImports(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"b.ts":          "export const b = 1;\n",
		"a.ts":          "import { helper } from './lib/helper';\nexport const a = helper;\n",
		"lib/helper.ts": "export function helper(): string { return ''; }\n",
	})

	progress := &recordingProgress{}
	program, err := NewProgram(
		[]string{filepath.Join(dir, "b.ts"), filepath.Join(dir, "a.ts")},
		testOptions(),
		WithProgress(progress),
	)
	require.NoError(t, err)
	defer program.Close()

	assert.Equal(t, []string{filepath.Join(dir, "b.ts"), filepath.Join(dir, "a.ts")}, program.RootFiles())
	assert.NotNil(t, program.File(filepath.Join(dir, "lib", "helper.ts")))
	assert.False(t, program.IsRootFile(filepath.Join(dir, "lib", "helper.ts")))

	assert.Equal(t, 2, progress.started)
	assert.Len(t, progress.loaded, 3)
	assert.Equal(t, 3, progress.files)

	// imported files come before their importers
	var order []string
	for _, f := range program.SourceFiles() {
		rel, err := filepath.Rel(dir, f.Path)
		require.NoError(t, err)
		order = append(order, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"b.ts", "lib/helper.ts", "a.ts"}, order)
}

func TestNewProgram_NoRootFiles(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.js": "var a = 1;\n"})

	_, err := NewProgram([]string{filepath.Join(dir, "a.js")}, CompilerOptions{})
	require.ErrorIs(t, err, ErrNoRootFiles)

	_, err = NewProgram(nil, testOptions())
	require.ErrorIs(t, err, ErrNoRootFiles)
}

func TestFile_IsModule(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"module.ts": "export const a = 1;\n",
		"script.js": "var b = 2;\n",
	})
	program := loadProgram(t, dir, "module.ts", "script.js")

	assert.True(t, program.File(filepath.Join(dir, "module.ts")).IsModule)
	assert.False(t, program.File(filepath.Join(dir, "script.js")).IsModule)
}

func TestChecker_TypeScriptDeclarations(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"main.ts": `export interface Point { x: number; y: number; }
export const one = 1;
export let two = 2;
export const greeting = "hi";
export const list = [1, 2];
export const flag = 1 > 2;
export const point: Point = { x: 0, y: 0 };
export const obj = { a: 1, b: "s" };
export function add(a: number, b: number) { return a + b; }
export async function load() { return "x"; }
export const square = (n: number): number => n * n;
export class Box { size = 1; }
`,
	})
	program := loadProgram(t, dir, "main.ts")
	file := filepath.Join(dir, "main.ts")

	tests := []struct {
		name string
		want string
	}{
		{"one", "1"},
		{"two", "number"},
		{"greeting", `"hi"`},
		{"list", "number[]"},
		{"flag", "boolean"},
		{"point", "Point"},
		{"obj", "{ a: number; b: string; }"},
		{"add", "(a: number, b: number) => number"},
		{"load", "() => Promise<string>"},
		{"square", "(n: number) => number"},
		{"Box", "typeof Box"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, typeOf(t, program, file, tt.name), tt.name)
	}
}

func TestChecker_JSDocTypes(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"lib.js": `/** @type {string[]} */
var names = [];

/**
 * Squares a number.
 * @param {number} x the input
 * @returns {number}
 */
function square(x) { return x * x; }

/** @type {Array<number|string>} */
var mixed = [];
`,
	})
	program := loadProgram(t, dir, "lib.js")
	file := filepath.Join(dir, "lib.js")

	assert.Equal(t, "string[]", typeOf(t, program, file, "names"))
	assert.Equal(t, "(x: number) => number", typeOf(t, program, file, "square"))
	assert.Equal(t, "(string | number)[]", typeOf(t, program, file, "mixed"))

	c := program.Checker()
	sym := program.File(file).Locals.Get("square")
	assert.Equal(t, "Squares a number.", c.DocumentationComment(sym))

	sigs := c.TypeOfSymbol(sym).CallSignatures
	require.Len(t, sigs, 1)
	require.Len(t, sigs[0].Parameters, 1)
	assert.Equal(t, "the input", c.DocumentationComment(sigs[0].Parameters[0]))
	assert.Equal(t, "Squares a number.", c.SignatureDocumentation(sigs[0]))
}

func TestChecker_ResolveAlias(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"shapes.ts": "export class Circle {}\n",
		"main.ts": `import { Circle } from './shapes';
import { EventEmitter } from 'events';
export const c: Circle = new Circle();
export const e: EventEmitter = null;
`,
	})
	program := loadProgram(t, dir, "main.ts")
	c := program.Checker()
	main := program.File(filepath.Join(dir, "main.ts"))

	circle := c.ResolveAlias(main.Locals.Get("Circle"))
	require.NotNil(t, circle)
	require.NotEmpty(t, circle.Declarations)
	assert.Equal(t, DeclClass, circle.Declarations[0].Kind)
	assert.Equal(t, filepath.Join(dir, "shapes.ts"), circle.Declarations[0].File.Path)

	assert.True(t, c.IsExternal(main.Locals.Get("EventEmitter")))

	typ := c.TypeOfSymbol(main.Locals.Get("c"))
	assert.Equal(t, "Circle", c.TypeToString(typ))
	assert.Same(t, circle, typ.Symbol)

	external := c.TypeOfSymbol(main.Locals.Get("e"))
	assert.Equal(t, "EventEmitter", c.TypeToString(external))
	assert.Nil(t, external.Symbol)
}

func TestChecker_TemplateDocumentation(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"api.d.ts": `/**
 * Holds a value.
 * @template T the held type
 */
interface Holder<T> {
    value: T;
}
`,
	})
	program := loadProgram(t, dir, "api.d.ts")
	c := program.Checker()

	holder := program.File(filepath.Join(dir, "api.d.ts")).Locals.Get("Holder")
	require.NotNil(t, holder)
	assert.Equal(t, "Holder<T>", c.TypeToString(c.DeclaredTypeOfSymbol(holder)))
	assert.Equal(t, "Holds a value.", c.DocumentationComment(holder))

	tp := holder.Members.Get("T")
	require.NotNil(t, tp)
	assert.Equal(t, "the held type", c.DocumentationComment(tp))
}
