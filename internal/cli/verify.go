package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/doclet-gen/internal/doclet"
	"github.com/mvp-joe/doclet-gen/internal/fixture"
)

// ErrFixturesFailed is returned when at least one fixture does not match.
var ErrFixturesFailed = errors.New("fixtures failed")

var verifyQuietFlag bool

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [fixture-dir]",
	Short: "Check generated doclets against NN-input / NN-output.json fixtures",
	Long: `Verify generates the doclets of every NN-input.* file in the fixture
directory, one at a time, and compares them with NN-output.json. Paths in the
output are relative to the parent of the fixture directory.

The command fails if any fixture differs or cannot be generated.

Examples:
  # Verify testdata/fixtures
  doclet-gen verify

  # Verify another directory, printing only failures
  doclet-gen verify --quiet ./regressions
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVarP(&verifyQuietFlag, "quiet", "q", false, "only report failing fixtures")
}

func runVerify(cmd *cobra.Command, args []string) error {
	dir := filepath.Join("testdata", "fixtures")
	if len(args) == 1 {
		dir = args[0]
	}
	return executeVerify(cmd.OutOrStdout(), dir, verifyQuietFlag)
}

func executeVerify(out io.Writer, dir string, quiet bool) error {
	cases, err := fixture.Discover(dir)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(filepath.Clean(dir))

	failed := 0
	for _, c := range cases {
		result, err := fixture.Run(c, fixture.FixedOptions(), baseDir, doclet.WithLogger(slog.Default()))
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", c.Name, err)
		case !result.Passed():
			failed++
			fmt.Fprintf(out, "✗ %s (-expected +actual):\n%s\n", c.Name, result.Diff)
		case !quiet:
			fmt.Fprintf(out, "✓ %s\n", c.Name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFixturesFailed, failed, len(cases))
	}
	if !quiet {
		fmt.Fprintf(out, "\nAll %d fixtures passed\n", len(cases))
	}
	return nil
}
