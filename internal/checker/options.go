package checker

import "strings"

// CompilerOptions is the flat, tsconfig-style configuration handed to the checker.
// Only the options the checker consults are typed; anything else is carried in Extra
// untouched.
type CompilerOptions struct {
	AllowJs          bool           `mapstructure:"allowJs" json:"allowJs,omitempty" validate:"-"`
	CheckJs          bool           `mapstructure:"checkJs" json:"checkJs,omitempty" validate:"-"`
	NoEmit           bool           `mapstructure:"noEmit" json:"noEmit,omitempty" validate:"-"`
	Target           string         `mapstructure:"target" json:"target,omitempty" validate:"omitempty,target"`
	ModuleResolution string         `mapstructure:"moduleResolution" json:"moduleResolution,omitempty" validate:"omitempty,moduleresolution"`
	Extra            map[string]any `mapstructure:",remain" json:"-"`
}

// Targets lists the language levels accepted for the target option.
var Targets = []string{
	"es3", "es5", "es6", "es2015", "es2016", "es2017", "es2018", "es2019",
	"es2020", "es2021", "es2022", "es2023", "es2024", "esnext",
}

// ModuleResolutions lists the accepted moduleResolution modes.
var ModuleResolutions = []string{"classic", "node", "node10", "node16", "nodenext", "bundler"}

// Normalize lower-cases the enumerated options.
func (o CompilerOptions) Normalize() CompilerOptions {
	o.Target = strings.ToLower(o.Target)
	o.ModuleResolution = strings.ToLower(o.ModuleResolution)
	return o
}

// classicResolution reports whether directory index files are skipped during module resolution.
func (o CompilerOptions) classicResolution() bool {
	return strings.EqualFold(o.ModuleResolution, "classic")
}

// strictNullChecks reports whether null and undefined stay distinct union members.
// Only the pass-through strict and strictNullChecks options enable it.
func (o CompilerOptions) strictNullChecks() bool {
	for _, key := range []string{"strictNullChecks", "strict"} {
		if v, ok := o.extra(key).(bool); ok {
			return v
		}
	}
	return false
}

// extra looks up a pass-through option. Keys are matched case-insensitively
// since config loaders may fold them to lower case.
func (o CompilerOptions) extra(key string) any {
	if v, ok := o.Extra[key]; ok {
		return v
	}
	for k, v := range o.Extra {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
