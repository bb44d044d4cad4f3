package checker

import (
	"strings"
)

// TypeKind identifies the shape of a Type.
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypeIntrinsic
	TypeLiteral
	TypeReference
	TypeClassObject
	TypeArray
	TypeTuple
	TypeUnion
	TypeIntersection
	TypeObject
	TypeVerbatim
)

// Type is a resolved type. Only the fields relevant to Kind are set.
type Type struct {
	Kind TypeKind
	// Name is the intrinsic keyword, the literal text, the referenced name or the
	// verbatim text.
	Name string
	// Symbol is the symbol the type originates from. Intrinsics, literals, unions
	// and unresolved names have none.
	Symbol *Symbol

	Arguments []*Type
	Element   *Type
	Types     []*Type

	CallSignatures      []*Signature
	ConstructSignatures []*Signature
	Properties          []*PropertyType

	// target is the aliased type behind a type alias reference.
	target *Type
}

// PropertyType is a member of an object type.
type PropertyType struct {
	Name     string
	Optional bool
	Readonly bool
	Type     *Type

	// method members print as name(params): result.
	method bool
}

// Intrinsic types are shared.
var (
	anyType       = &Type{Kind: TypeAny, Name: "any"}
	unknownType   = &Type{Kind: TypeIntrinsic, Name: "unknown"}
	stringType    = &Type{Kind: TypeIntrinsic, Name: "string"}
	numberType    = &Type{Kind: TypeIntrinsic, Name: "number"}
	bigintType    = &Type{Kind: TypeIntrinsic, Name: "bigint"}
	booleanType   = &Type{Kind: TypeIntrinsic, Name: "boolean"}
	symbolType    = &Type{Kind: TypeIntrinsic, Name: "symbol"}
	voidType      = &Type{Kind: TypeIntrinsic, Name: "void"}
	undefinedType = &Type{Kind: TypeIntrinsic, Name: "undefined"}
	nullType      = &Type{Kind: TypeIntrinsic, Name: "null"}
	neverType     = &Type{Kind: TypeIntrinsic, Name: "never"}
	objectType    = &Type{Kind: TypeIntrinsic, Name: "object"}
)

var intrinsics = map[string]*Type{
	"any":       anyType,
	"unknown":   unknownType,
	"string":    stringType,
	"number":    numberType,
	"bigint":    bigintType,
	"boolean":   booleanType,
	"symbol":    symbolType,
	"void":      voidType,
	"undefined": undefinedType,
	"null":      nullType,
	"never":     neverType,
	"object":    objectType,
}

// Display order of intrinsic union members.
var intrinsicRank = map[string]int{
	"any":       0,
	"unknown":   1,
	"undefined": 2,
	"null":      3,
	"string":    4,
	"number":    5,
	"bigint":    6,
	"boolean":   7,
	"symbol":    8,
	"void":      9,
	"never":     10,
	"object":    11,
}

// IntrinsicType returns the shared intrinsic type for a keyword, or nil.
func IntrinsicType(name string) *Type {
	return intrinsics[name]
}

// IsPrimitive reports whether t carries no symbol information.
func (t *Type) IsPrimitive() bool {
	return t == nil || t.Kind == TypeAny || t.Kind == TypeIntrinsic || t.Kind == TypeLiteral
}

func (t *Type) String() string {
	return TypeToString(t)
}

func literalType(text string) *Type {
	return &Type{Kind: TypeLiteral, Name: text}
}

func arrayOf(elem *Type) *Type {
	return &Type{Kind: TypeArray, Element: elem}
}

func referenceTo(name string, sym *Symbol, args ...*Type) *Type {
	return &Type{Kind: TypeReference, Name: name, Symbol: sym, Arguments: args}
}

func functionType(sym *Symbol, sigs ...*Signature) *Type {
	return &Type{Kind: TypeObject, Symbol: sym, CallSignatures: sigs}
}

// widen turns literal types into their base primitive.
func widen(t *Type) *Type {
	if t == nil {
		return anyType
	}
	switch t.Kind {
	case TypeLiteral:
		switch {
		case t.Name == "true" || t.Name == "false":
			return booleanType
		case strings.HasPrefix(t.Name, `"`):
			return stringType
		case strings.HasSuffix(t.Name, "n"):
			return bigintType
		default:
			return numberType
		}
	case TypeUnion:
		members := make([]*Type, 0, len(t.Types))
		for _, m := range t.Types {
			members = append(members, widen(m))
		}
		return unionOf(members, true)
	}
	return t
}

// unionOf builds a union type. Members are flattened and deduplicated, any
// absorbs everything, and without strict null checks undefined and null vanish
// next to other members. Intrinsic members sort first in checker order; the rest
// keep source order. Literal true | false collapse to boolean.
func unionOf(types []*Type, strictNull bool) *Type {
	var flat []*Type
	var add func(*Type)
	add = func(t *Type) {
		if t == nil {
			return
		}
		if t.Kind == TypeUnion {
			for _, m := range t.Types {
				add(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}

	var (
		members  []*Type
		seen     = make(map[string]bool)
		hasTrue  bool
		hasFalse bool
	)
	for _, t := range flat {
		if t.Kind == TypeAny {
			return anyType
		}
		key := TypeToString(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		if t.Kind == TypeLiteral && t.Name == "true" {
			hasTrue = true
		}
		if t.Kind == TypeLiteral && t.Name == "false" {
			hasFalse = true
		}
		members = append(members, t)
	}

	if hasTrue && hasFalse {
		kept := members[:0]
		inserted := false
		for _, t := range members {
			if t.Kind == TypeLiteral && (t.Name == "true" || t.Name == "false") {
				if !inserted && !seen["boolean"] {
					kept = append(kept, booleanType)
					inserted = true
				}
				continue
			}
			kept = append(kept, t)
		}
		members = kept
	}

	if !strictNull && len(members) > 1 {
		kept := members[:0]
		for _, t := range members {
			if t == undefinedType || t == nullType {
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) == 0 {
			return anyType
		}
		members = kept
	}

	switch len(members) {
	case 0:
		return neverType
	case 1:
		return members[0]
	}

	ordered := make([]*Type, 0, len(members))
	for rank := 0; rank <= len(intrinsicRank); rank++ {
		for _, t := range members {
			if t.Kind == TypeIntrinsic && intrinsicRank[t.Name] == rank {
				ordered = append(ordered, t)
			}
		}
	}
	for _, t := range members {
		if t.Kind != TypeIntrinsic {
			ordered = append(ordered, t)
		}
	}
	return &Type{Kind: TypeUnion, Types: ordered}
}

// TypeToString prints a type in the checker's display form.
func TypeToString(t *Type) string {
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

func writeType(b *strings.Builder, t *Type) {
	if t == nil {
		b.WriteString("any")
		return
	}

	switch t.Kind {
	case TypeAny, TypeIntrinsic, TypeLiteral, TypeVerbatim:
		b.WriteString(t.Name)
	case TypeReference:
		b.WriteString(t.Name)
		writeTypeArguments(b, t.Arguments)
	case TypeClassObject:
		b.WriteString("typeof ")
		b.WriteString(t.Name)
	case TypeArray:
		elem := t.Element
		if needsParens(elem) {
			b.WriteString("(")
			writeType(b, elem)
			b.WriteString(")")
		} else {
			writeType(b, elem)
		}
		b.WriteString("[]")
	case TypeTuple:
		b.WriteString("[")
		for i, elem := range t.Types {
			if i > 0 {
				b.WriteString(", ")
			}
			writeType(b, elem)
		}
		b.WriteString("]")
	case TypeUnion, TypeIntersection:
		sep := " | "
		if t.Kind == TypeIntersection {
			sep = " & "
		}
		for i, m := range t.Types {
			if i > 0 {
				b.WriteString(sep)
			}
			if m.Kind == TypeObject && isArrowShape(m) || t.Kind == TypeIntersection && m.Kind == TypeUnion {
				b.WriteString("(")
				writeType(b, m)
				b.WriteString(")")
				continue
			}
			writeType(b, m)
		}
	case TypeObject:
		writeObject(b, t)
	default:
		b.WriteString("any")
	}
}

func writeTypeArguments(b *strings.Builder, args []*Type) {
	if len(args) == 0 {
		return
	}
	b.WriteString("<")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeType(b, arg)
	}
	b.WriteString(">")
}

func needsParens(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeUnion, TypeIntersection:
		return true
	case TypeObject:
		return isArrowShape(t)
	}
	return false
}

// isArrowShape reports whether an object type prints as a single arrow signature.
func isArrowShape(t *Type) bool {
	if len(t.Properties) > 0 {
		return false
	}
	calls, constructs := len(t.CallSignatures), len(t.ConstructSignatures)
	return calls+constructs == 1
}

func writeObject(b *strings.Builder, t *Type) {
	if isArrowShape(t) {
		if len(t.ConstructSignatures) == 1 {
			b.WriteString("new ")
			writeSignature(b, t.ConstructSignatures[0], " => ")
			return
		}
		writeSignature(b, t.CallSignatures[0], " => ")
		return
	}

	if len(t.Properties) == 0 && len(t.CallSignatures) == 0 && len(t.ConstructSignatures) == 0 {
		b.WriteString("{}")
		return
	}

	b.WriteString("{ ")
	for _, sig := range t.CallSignatures {
		writeSignature(b, sig, ": ")
		b.WriteString("; ")
	}
	for _, sig := range t.ConstructSignatures {
		b.WriteString("new ")
		writeSignature(b, sig, ": ")
		b.WriteString("; ")
	}
	for _, prop := range t.Properties {
		if prop.method && prop.Type != nil && len(prop.Type.CallSignatures) == 1 {
			b.WriteString(prop.Name)
			if prop.Optional {
				b.WriteString("?")
			}
			writeSignature(b, prop.Type.CallSignatures[0], ": ")
			b.WriteString("; ")
			continue
		}
		if prop.Readonly {
			b.WriteString("readonly ")
		}
		b.WriteString(prop.Name)
		if prop.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		writeType(b, prop.Type)
		b.WriteString("; ")
	}
	b.WriteString("}")
}

func writeSignature(b *strings.Builder, sig *Signature, arrow string) {
	if len(sig.TypeParameters) > 0 {
		b.WriteString("<")
		for i, tp := range sig.TypeParameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tp.Name)
		}
		b.WriteString(">")
	}
	b.WriteString("(")
	for i, param := range sig.params {
		if i > 0 {
			b.WriteString(", ")
		}
		if param.rest {
			b.WriteString("...")
		}
		b.WriteString(param.name)
		if param.optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		writeType(b, param.typ)
	}
	b.WriteString(")")
	b.WriteString(arrow)
	writeType(b, sig.returnType)
}
