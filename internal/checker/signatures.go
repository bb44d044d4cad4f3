package checker

// Signature is a callable or constructable shape: parameters plus return type.
type Signature struct {
	// Declaration is the declaration the signature was read from. Nil for
	// signatures written inside JSDoc type expressions.
	Declaration    *Declaration
	TypeParameters []*Symbol
	// Parameters holds one symbol per declared parameter.
	Parameters []*Symbol

	params     []sigParam
	returnType *Type
}

type sigParam struct {
	name     string
	optional bool
	rest     bool
	typ      *Type
}

// ReturnType returns the declared or inferred return type.
func (s *Signature) ReturnType() *Type {
	if s.returnType == nil {
		return anyType
	}
	return s.returnType
}
