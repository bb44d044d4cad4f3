package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"

	"github.com/mvp-joe/doclet-gen/internal/checker"
)

var (
	// ErrInvalidField indicates a field failed a validation rule
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidPattern indicates an include or exclude glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// validate is configured to report JSON field names, matching the project file.
var validate *validator.Validate

// choices maps the enumerated compiler option tags to their accepted values.
var choices = map[string][]string{
	"target":           checker.Targets,
	"moduleresolution": checker.ModuleResolutions,
}

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, allowed := range choices {
		allowed := allowed
		err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(allowed, fl.Field().String())
		})
		if err != nil {
			panic(err)
		}
	}
}

// Validate checks that the configuration is valid and complete. Every problem
// found is reported, not only the first.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
	}

	for _, pattern := range cfg.Include {
		result = multierror.Append(result, validatePattern("include", pattern))
	}
	for _, pattern := range cfg.Exclude {
		result = multierror.Append(result, validatePattern("exclude", pattern))
	}

	return result.ErrorOrNil()
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "min":
		return fmt.Errorf("%w: %s is required", ErrInvalidField, field)
	case "target", "moduleresolution":
		return fmt.Errorf("%w: %s must be one of [%s], got '%v'", ErrInvalidField, field, strings.Join(choices[fe.Tag()], " "), fe.Value())
	default:
		return fmt.Errorf("%w: %s failed '%s'", ErrInvalidField, field, fe.Tag())
	}
}

func validatePattern(field, pattern string) error {
	if pattern == "" {
		// already reported by the struct rules
		return nil
	}
	if _, err := glob.Compile(pattern, '/'); err != nil {
		return fmt.Errorf("%w: %s pattern %q: %v", ErrInvalidPattern, field, pattern, err)
	}
	return nil
}
