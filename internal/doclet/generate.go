package doclet

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mvp-joe/doclet-gen/internal/checker"
)

type generateConfig struct {
	baseDir    string
	logger     *slog.Logger
	namespaces bool
	progress   checker.ProgressReporter
}

// Option configures Generate.
type Option func(*generateConfig)

// WithBaseDir sets the directory file paths are made relative to. The default
// is the working directory.
func WithBaseDir(dir string) Option {
	return func(c *generateConfig) {
		c.baseDir = dir
	}
}

// WithLogger sets the logger receiving diagnostics about skipped declarations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *generateConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNamespaces enables walking into namespace bodies.
func WithNamespaces(enabled bool) Option {
	return func(c *generateConfig) {
		c.namespaces = enabled
	}
}

// WithProgress sets the reporter notified while the program loads.
func WithProgress(progress checker.ProgressReporter) Option {
	return func(c *generateConfig) {
		c.progress = progress
	}
}

// Generate builds a program from rootFiles and returns the doclets of their
// visible declarations, in discovery order. A missing declaration aborts the
// run and no doclets are returned.
func Generate(rootFiles []string, opts checker.CompilerOptions, options ...Option) ([]Doclet, error) {
	cfg := generateConfig{logger: slog.Default()}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.baseDir = wd
	}

	program, err := checker.NewProgram(rootFiles, opts,
		checker.WithLogger(cfg.logger),
		checker.WithProgress(cfg.progress),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	defer program.Close()

	agg := NewAggregator()
	walker := NewWalker(program, NewLocator(cfg.baseDir), cfg.logger, cfg.namespaces)
	if err := walker.Walk(agg); err != nil {
		return nil, err
	}
	return agg.Doclets(), nil
}
