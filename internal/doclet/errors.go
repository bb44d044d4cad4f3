package doclet

import (
	"errors"
	"fmt"
)

// ErrMissingDeclaration is matched by every MissingDeclarationError.
var ErrMissingDeclaration = errors.New("missing declaration")

// MissingDeclarationError reports a symbol without any declaration: a referenced
// file is missing or a type names something that does not exist. It aborts the
// whole run.
type MissingDeclarationError struct {
	Symbol string
	// File is the file that referenced the symbol, when known.
	File string
}

func (e *MissingDeclarationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("missing declaration for the symbol %q referenced from %s", e.Symbol, e.File)
	}
	return fmt.Sprintf("missing declaration for the symbol %q", e.Symbol)
}

func (e *MissingDeclarationError) Unwrap() error {
	return ErrMissingDeclaration
}
