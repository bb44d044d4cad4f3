package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/doclet-gen/internal/config"
	"github.com/mvp-joe/doclet-gen/internal/doclet"
)

var (
	projectFlag    string
	outputFlag     string
	namespacesFlag bool
	progressFlag   bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Print the doclets of a project as JSON",
	Long: `Generate loads the given files, or the files selected by the project's
tsconfig.json include and exclude patterns, and prints a JSON array of doclets.

Doclet paths are relative to the project root unless doclets.baseDir is set.

Examples:
  # Document the project in the current directory
  doclet-gen generate

  # Use a specific project file
  doclet-gen generate -p ./packages/core/tsconfig.json

  # Document individual files, including namespace members
  doclet-gen generate --namespaces src/index.ts src/shapes.ts
`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&projectFlag, "project", "p", "", "path to a tsconfig.json (default ./tsconfig.json if present)")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write the JSON to a file instead of stdout")
	generateCmd.Flags().BoolVar(&namespacesFlag, "namespaces", false, "document the members of namespace declarations")
	generateCmd.Flags().BoolVar(&progressFlag, "progress", false, "show a progress bar on stderr while files load")
}

// generateRequest holds everything executeGenerate needs, independent of flags.
type generateRequest struct {
	loader     config.Loader
	files      []string
	namespaces *bool
	progress   bool
	// output is a file path replacing out when set.
	output string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req := generateRequest{
		files:    args,
		progress: progressFlag,
	}
	if projectFlag != "" {
		req.loader = config.NewFileLoader(projectFlag)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		req.loader = config.NewLoader(wd)
	}
	if cmd.Flags().Changed("namespaces") {
		req.namespaces = &namespacesFlag
	}

	req.output = outputFlag

	return executeGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), req)
}

// executeGenerate resolves the root files, generates their doclets and writes
// the JSON array to out, or to req.output when set. Nothing is written, and no
// output file is created, when generation fails.
func executeGenerate(out, errOut io.Writer, req generateRequest) error {
	cfg, err := req.loader.Load()
	if err != nil {
		return err
	}
	rootDir := req.loader.RootDir()
	if req.namespaces != nil {
		cfg.Doclets.Namespaces = *req.namespaces
	}

	files, err := rootFiles(cfg, rootDir, req.files)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found in %s", rootDir)
	}
	slog.Debug("generating doclets", "files", len(files), "root", rootDir)

	options := append(cfg.GenerateOptions(rootDir), doclet.WithLogger(slog.Default()))
	if req.progress {
		options = append(options, doclet.WithProgress(NewCLIProgressReporter(errOut, false)))
	}

	doclets, err := doclet.Generate(files, cfg.CompilerOptions, options...)
	if err != nil {
		return err
	}

	data, err := doclet.Marshal(doclets)
	if err != nil {
		return fmt.Errorf("failed to encode doclets: %w", err)
	}
	data = append(data, '\n')

	if req.output != "" {
		if err := os.WriteFile(req.output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write doclets: %w", err)
	}
	return nil
}

// rootFiles returns the explicit files when given, resolved against the
// working directory, and the discovered project files otherwise.
func rootFiles(cfg *config.Config, rootDir string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		files := make([]string, 0, len(explicit))
		for _, file := range explicit {
			abs, err := filepath.Abs(file)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
			}
			files = append(files, abs)
		}
		return files, nil
	}

	fd, err := cfg.Discovery(rootDir)
	if err != nil {
		return nil, err
	}
	return fd.Discover()
}
