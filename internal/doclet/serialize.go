package doclet

import (
	"errors"
	"log/slog"

	"github.com/mvp-joe/doclet-gen/internal/checker"
)

// serializer turns symbols into doclets.
type serializer struct {
	facade  *Facade
	locator *Locator
	logger  *slog.Logger
}

func newSerializer(facade *Facade, locator *Locator, logger *slog.Logger) *serializer {
	return &serializer{facade: facade, locator: locator, logger: logger}
}

// symbolInfo builds the fields shared by every symbol-based doclet.
func (s *serializer) symbolInfo(sym *checker.Symbol) (SymbolInfo, error) {
	decl, err := s.facade.FirstDeclaration(sym)
	if err != nil {
		return SymbolInfo{}, err
	}
	typ, err := s.describe(s.facade.TypeOfSymbol(sym), decl)
	if err != nil {
		return SymbolInfo{}, err
	}
	tags := s.facade.Tags(sym)
	return SymbolInfo{
		Name:          sym.Name,
		Documentation: s.facade.Documentation(sym),
		Type:          typ,
		Documented:    len(tags) > 0,
		Private:       hasTag(tags, "private"),
		Meta:          s.locator.Locate(decl),
	}, nil
}

// describe is DescribeType that names the referencing file in fatal errors.
func (s *serializer) describe(t *checker.Type, from *checker.Declaration) (TypeInfo, error) {
	info, err := s.facade.DescribeType(t)
	if err != nil {
		var missing *MissingDeclarationError
		if errors.As(err, &missing) && missing.File == "" && from != nil {
			missing.File = s.locator.File(from)
		}
		return TypeInfo{}, err
	}
	return info, nil
}

func hasTag(tags []checker.JSDocTag, name string) bool {
	for _, tag := range tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// Class returns the doclet of a class. Its fullName joins file and name without
// a separator, unlike members.
func (s *serializer) Class(sym *checker.Symbol) (*ClassDoclet, error) {
	info, err := s.symbolInfo(sym)
	if err != nil {
		return nil, err
	}
	implements := []string{}
	for _, tag := range s.facade.Tags(sym) {
		if tag.Name == "implements" {
			implements = append(implements, implementsText(tag))
		}
	}
	return &ClassDoclet{
		Implements: implements,
		MemberOf:   info.Meta.File,
		FullName:   info.Meta.File + info.Name,
		SymbolInfo: info,
	}, nil
}

// implementsText returns the interface named by an @implements tag, written
// with or without braces.
func implementsText(tag checker.JSDocTag) string {
	if tag.HasType {
		return tag.Type
	}
	return tag.Text
}

// Property returns the doclet of a class or interface property.
func (s *serializer) Property(sym *checker.Symbol) (*PropertyDoclet, error) {
	info, err := s.symbolInfo(sym)
	if err != nil {
		return nil, err
	}
	memberOf, err := s.memberOf(sym)
	if err != nil {
		return nil, err
	}
	return &PropertyDoclet{
		MemberOf:   memberOf,
		FullName:   memberOf + "#" + info.Name,
		SymbolInfo: info,
	}, nil
}

// Constructors returns one doclet per construct signature of a constructor
// member. Overloads share the same fullName.
func (s *serializer) Constructors(sym *checker.Symbol) ([]Doclet, error) {
	decl, err := s.facade.FirstDeclaration(sym)
	if err != nil {
		return nil, err
	}
	memberOf, err := s.memberOf(sym)
	if err != nil {
		return nil, err
	}

	var doclets []Doclet
	for _, sig := range s.facade.TypeOfSymbol(sym).ConstructSignatures {
		params, returnType, err := s.signature(sig, decl)
		if err != nil {
			return nil, err
		}
		location := decl
		if sig.Declaration != nil {
			location = sig.Declaration
		}
		doclets = append(doclets, &ConstructorDoclet{
			Meta:          s.locator.Locate(location),
			MemberOf:      memberOf,
			FullName:      memberOf + "#constructor",
			Parameters:    params,
			ReturnType:    returnType,
			Documentation: s.facade.SignatureDocumentation(sig),
		})
	}
	return doclets, nil
}

// Method returns the doclet of a function, method or method signature, built
// from its first call signature. It returns nil when the symbol is not callable.
func (s *serializer) Method(sym *checker.Symbol) (*FunctionDoclet, error) {
	decl, err := s.facade.FirstDeclaration(sym)
	if err != nil {
		return nil, err
	}
	sigs := s.facade.TypeOfSymbol(sym).CallSignatures
	if len(sigs) == 0 {
		s.logger.Debug("skipping symbol without call signatures", "name", sym.Name, "file", s.locator.File(decl))
		return nil, nil
	}
	params, returnType, err := s.signature(sigs[0], decl)
	if err != nil {
		return nil, err
	}

	tags := s.facade.Tags(sym)
	doclet := &FunctionDoclet{
		Name:          sym.Name,
		Documented:    len(tags) > 0,
		Private:       hasTag(tags, "private"),
		Meta:          s.locator.Locate(decl),
		Parameters:    params,
		ReturnType:    returnType,
		Documentation: s.facade.SignatureDocumentation(sigs[0]),
	}
	if isMember(decl) {
		memberOf, err := s.memberOf(sym)
		if err != nil {
			return nil, err
		}
		doclet.MemberOf = memberOf
		doclet.FullName = memberOf + "#" + sym.Name
	} else {
		doclet.FullName = doclet.Meta.File + "#" + sym.Name
	}
	return doclet, nil
}

func isMember(decl *checker.Declaration) bool {
	if decl.Parent == nil {
		return false
	}
	switch decl.Parent.Kind {
	case checker.DeclClass, checker.DeclInterface:
		return true
	}
	return false
}

// Interface returns the doclet of an interface followed by the doclets of its
// properties and then its methods. Call, construct and index signatures are
// not documented.
func (s *serializer) Interface(sym *checker.Symbol) ([]Doclet, error) {
	decl, err := s.facade.FirstDeclaration(sym)
	if err != nil {
		return nil, err
	}
	typ, err := s.describe(s.facade.TypeOfSymbol(sym), decl)
	if err != nil {
		return nil, err
	}

	var properties, methods []*checker.Symbol
	templates := []Template{}
	if sym.Members != nil {
		for _, member := range sym.Members.Values() {
			switch {
			case member.Has(checker.SymbolTypeParameter):
				templates = append(templates, Template{
					Name:          member.Name,
					Documentation: s.facade.Documentation(member),
				})
			case member.Has(checker.SymbolProperty):
				properties = append(properties, member)
			case member.Has(checker.SymbolMethod):
				methods = append(methods, member)
			case member.Has(checker.SymbolSignature):
				s.logger.Debug("skipping signature member", "member", member.Name, "interface", sym.Name)
			}
		}
	}

	meta := s.locator.Locate(decl)
	tags := s.facade.Tags(sym)
	doclets := []Doclet{&InterfaceDoclet{
		Name:          sym.Name,
		FullName:      meta.File + "/" + sym.Name,
		Meta:          meta,
		Documentation: s.facade.Documentation(sym),
		Type:          typ,
		Documented:    len(tags) > 0,
		Private:       hasTag(tags, "private"),
		Templates:     templates,
	}}

	for _, member := range properties {
		doclet, err := s.Property(member)
		if err != nil {
			return nil, err
		}
		doclets = append(doclets, doclet)
	}
	for _, member := range methods {
		doclet, err := s.Method(member)
		if err != nil {
			return nil, err
		}
		if doclet != nil {
			doclets = append(doclets, doclet)
		}
	}
	return doclets, nil
}

// Variable returns the doclet of one variable name.
func (s *serializer) Variable(sym *checker.Symbol) (*VariableDoclet, error) {
	info, err := s.symbolInfo(sym)
	if err != nil {
		return nil, err
	}
	return &VariableDoclet{SymbolInfo: info}, nil
}

// signature serializes the parameters and return type of sig.
func (s *serializer) signature(sig *checker.Signature, from *checker.Declaration) ([]Parameter, TypeInfo, error) {
	params := make([]Parameter, 0, len(sig.Parameters))
	for _, param := range sig.Parameters {
		p, err := s.parameter(param, from)
		if err != nil {
			return nil, TypeInfo{}, err
		}
		params = append(params, p)
	}
	returnType, err := s.describe(sig.ReturnType(), from)
	if err != nil {
		return nil, TypeInfo{}, err
	}
	return params, returnType, nil
}

func (s *serializer) parameter(sym *checker.Symbol, from *checker.Declaration) (Parameter, error) {
	typ, err := s.describe(s.facade.TypeOfSymbol(sym), from)
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{
		Name:          sym.Name,
		Documentation: s.facade.Documentation(sym),
		Type:          typ,
	}, nil
}

// memberOf links a member to its owner: the member's file, a slash, and the
// printed type of the declaration containing it.
func (s *serializer) memberOf(sym *checker.Symbol) (string, error) {
	decl, err := s.facade.FirstDeclaration(sym)
	if err != nil {
		return "", err
	}
	file := s.locator.File(decl)
	if decl.Parent == nil {
		return file, nil
	}
	owner := s.facade.TypeAtLocation(decl.Parent)
	return file + "/" + s.facade.TypeToString(owner), nil
}
