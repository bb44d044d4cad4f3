package config

import (
	"path/filepath"

	"github.com/mvp-joe/doclet-gen/internal/discovery"
	"github.com/mvp-joe/doclet-gen/internal/doclet"
)

// Discovery builds the file discovery for the include and exclude patterns.
// The rootDir parameter is the directory the patterns are relative to.
func (c *Config) Discovery(rootDir string) (*discovery.FileDiscovery, error) {
	return discovery.New(rootDir, c.Include, c.Exclude)
}

// GenerateOptions converts the doclet settings into generator options.
func (c *Config) GenerateOptions(rootDir string) []doclet.Option {
	baseDir := c.Doclets.BaseDir
	switch {
	case baseDir == "":
		baseDir = rootDir
	case !filepath.IsAbs(baseDir):
		baseDir = filepath.Join(rootDir, baseDir)
	}
	return []doclet.Option{
		doclet.WithBaseDir(baseDir),
		doclet.WithNamespaces(c.Doclets.Namespaces),
	}
}
