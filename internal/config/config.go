package config

import (
	"github.com/mvp-joe/doclet-gen/internal/checker"
)

// ConfigFileName is the project file the loader looks for in the root directory.
const ConfigFileName = "tsconfig.json"

// Config represents the complete doclet-gen configuration.
// It is read from a tsconfig-shaped file with environment variable overrides.
type Config struct {
	Include         []string                `json:"include" mapstructure:"include" validate:"required,min=1,dive,required"`
	Exclude         []string                `json:"exclude" mapstructure:"exclude" validate:"dive,required"`
	CompilerOptions checker.CompilerOptions `json:"compilerOptions" mapstructure:"compilerOptions"`
	Doclets         DocletsConfig           `json:"doclets" mapstructure:"doclets"`
}

// DocletsConfig holds the generator switches that have no tsconfig equivalent.
type DocletsConfig struct {
	Namespaces bool   `json:"namespaces" mapstructure:"namespaces"`
	BaseDir    string `json:"baseDir" mapstructure:"baseDir"` // paths in doclets are relative to it; defaults to the root dir
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Include: []string{
			"**/*.ts",
			"**/*.js",
		},
		Exclude: []string{
			"node_modules/**",
		},
		CompilerOptions: checker.CompilerOptions{
			AllowJs: true,
			CheckJs: true,
			NoEmit:  true,
			Target:  "es6",
		},
	}
}
