package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/mvp-joe/doclet-gen/internal/checker"
	"github.com/mvp-joe/doclet-gen/internal/doclet"
)

// ErrMissingExpected is returned when an input fixture has no expected output.
var ErrMissingExpected = errors.New("expected output file does not exist")

var inputPattern = regexp.MustCompile(`^([0-9]+)-input\.`)

// Case is one input fixture and the JSON it must produce.
type Case struct {
	Name     string
	Input    string
	Expected string
}

// Result is the outcome of running a Case.
type Result struct {
	Case Case
	// Diff is empty when the output matched.
	Diff     string
	Expected any
	Actual   any
}

// Passed reports whether the generated output matched.
func (r Result) Passed() bool {
	return r.Diff == ""
}

// FixedOptions are the compiler options every fixture is generated with.
func FixedOptions() checker.CompilerOptions {
	return checker.CompilerOptions{
		AllowJs: true,
		CheckJs: true,
		NoEmit:  true,
		Target:  "es6",
	}
}

// Discover finds the NN-input.* files of dir, ordered by name, and pairs each
// with its NN-output.json.
func Discover(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	var cases []Case
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := inputPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		expected := filepath.Join(dir, match[1]+"-output.json")
		if _, err := os.Stat(expected); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingExpected, entry.Name())
		}
		cases = append(cases, Case{
			Name:     match[1],
			Input:    filepath.Join(dir, entry.Name()),
			Expected: expected,
		})
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Input < cases[j].Input
	})
	return cases, nil
}

// Run generates the doclets of a case with opts and compares them with the
// expected JSON. Paths are made relative to baseDir, usually the parent of the
// fixture directory. A generation failure is returned as an error; a mismatch
// is reported in the result.
func Run(c Case, opts checker.CompilerOptions, baseDir string, options ...doclet.Option) (Result, error) {
	result := Result{Case: c}

	raw, err := os.ReadFile(c.Expected)
	if err != nil {
		return result, fmt.Errorf("failed to read expected output: %w", err)
	}
	if err := json.Unmarshal(raw, &result.Expected); err != nil {
		return result, fmt.Errorf("failed to parse expected output %s: %w", c.Expected, err)
	}

	options = append([]doclet.Option{doclet.WithBaseDir(baseDir)}, options...)
	doclets, err := doclet.Generate([]string{c.Input}, opts, options...)
	if err != nil {
		return result, fmt.Errorf("failed to generate %s: %w", c.Input, err)
	}
	generated, err := doclet.Marshal(doclets)
	if err != nil {
		return result, fmt.Errorf("failed to encode doclets: %w", err)
	}
	if err := json.Unmarshal(generated, &result.Actual); err != nil {
		return result, fmt.Errorf("failed to decode doclets: %w", err)
	}

	result.Diff = cmp.Diff(result.Expected, result.Actual)
	return result, nil
}
