package doclet

import (
	"github.com/mvp-joe/doclet-gen/internal/checker"
)

// Facade answers the type questions the serializers ask, on top of a checker.
// It adds two policies: types without a symbol have no file, and a symbol
// without declarations is fatal.
type Facade struct {
	checker *checker.Checker
	locator *Locator
}

// NewFacade creates a Facade.
func NewFacade(c *checker.Checker, locator *Locator) *Facade {
	return &Facade{checker: c, locator: locator}
}

// DescribeType prints t and, when t comes from a declared symbol, names the file
// declaring it.
func (f *Facade) DescribeType(t *checker.Type) (TypeInfo, error) {
	info := TypeInfo{Value: f.checker.TypeToString(t)}
	if t == nil || t.Symbol == nil {
		return info, nil
	}
	decl, err := f.FirstDeclaration(t.Symbol)
	if err != nil {
		return TypeInfo{}, err
	}
	info.File = f.locator.File(decl)
	return info, nil
}

// FirstDeclaration returns the value declaration of sym, or its first
// declaration.
func (f *Facade) FirstDeclaration(sym *checker.Symbol) (*checker.Declaration, error) {
	if sym == nil || len(sym.Declarations) == 0 {
		name := "<nil>"
		if sym != nil {
			name = sym.Name
		}
		return nil, &MissingDeclarationError{Symbol: name}
	}
	if sym.ValueDeclaration != nil {
		return sym.ValueDeclaration, nil
	}
	return sym.Declarations[0], nil
}

// TypeOfSymbol returns the type of sym.
func (f *Facade) TypeOfSymbol(sym *checker.Symbol) *checker.Type {
	return f.checker.TypeOfSymbol(sym)
}

// TypeAtLocation returns the type of the node declared by decl.
func (f *Facade) TypeAtLocation(decl *checker.Declaration) *checker.Type {
	return f.checker.TypeAtLocation(decl)
}

// TypeToString prints t.
func (f *Facade) TypeToString(t *checker.Type) string {
	return f.checker.TypeToString(t)
}

// Documentation returns the doc comment of sym without its tags.
func (f *Facade) Documentation(sym *checker.Symbol) string {
	return f.checker.DocumentationComment(sym)
}

// SignatureDocumentation returns the doc comment of the declaration of sig.
func (f *Facade) SignatureDocumentation(sig *checker.Signature) string {
	return f.checker.SignatureDocumentation(sig)
}

// Tags returns the JSDoc tags attached to sym.
func (f *Facade) Tags(sym *checker.Symbol) []checker.JSDocTag {
	return f.checker.JSDocTags(sym)
}
