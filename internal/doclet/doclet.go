package doclet

import (
	"encoding/json"
)

// Kind is the closed set of doclet kinds.
type Kind string

const (
	KindFunction    Kind = "function"
	KindProperty    Kind = "property"
	KindClass       Kind = "class"
	KindConstructor Kind = "constructor"
	KindInterface   Kind = "interface"
	KindVariable    Kind = "variable"
)

// Doclet is one flattened documentation record. The implementations below are
// the only ones; each carries just the fields of its kind.
type Doclet interface {
	Kind() Kind
	doclet()
}

// TypeInfo is a printed type plus the file declaring it. File is empty for
// types without a symbol (primitives, literals, unions, arrays).
type TypeInfo struct {
	Value string `json:"value"`
	File  string `json:"file,omitempty"`
}

// Meta is the source location of a declaration. Offsets count UTF-16 code units.
type Meta struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Parameter describes one parameter of a signature.
type Parameter struct {
	Name          string   `json:"name"`
	Documentation string   `json:"documentation"`
	Type          TypeInfo `json:"type"`
}

// Template describes a type parameter of an interface.
type Template struct {
	Name          string `json:"name"`
	Documentation string `json:"documentation"`
}

// SymbolInfo holds the fields every symbol-based doclet shares.
type SymbolInfo struct {
	Name          string   `json:"name"`
	Documentation string   `json:"documentation"`
	Type          TypeInfo `json:"type"`
	Documented    bool     `json:"documented"`
	Private       bool     `json:"private"`
	Meta          Meta     `json:"meta"`
}

// ClassDoclet documents a class declaration.
type ClassDoclet struct {
	Implements []string `json:"implements"`
	MemberOf   string   `json:"memberOf"`
	FullName   string   `json:"fullName"`
	SymbolInfo
}

// PropertyDoclet documents a property of a class or interface.
type PropertyDoclet struct {
	MemberOf string `json:"memberOf"`
	FullName string `json:"fullName"`
	SymbolInfo
}

// ConstructorDoclet documents one construct signature of a class.
type ConstructorDoclet struct {
	Meta          Meta        `json:"meta"`
	MemberOf      string      `json:"memberOf"`
	FullName      string      `json:"fullName"`
	Parameters    []Parameter `json:"parameters"`
	ReturnType    TypeInfo    `json:"returnType"`
	Documentation string      `json:"documentation"`
}

// FunctionDoclet documents a function, a method or a method signature. MemberOf
// is only set for members.
type FunctionDoclet struct {
	Name          string      `json:"name"`
	Documented    bool        `json:"documented"`
	Private       bool        `json:"private"`
	Meta          Meta        `json:"meta"`
	MemberOf      string      `json:"memberOf,omitempty"`
	FullName      string      `json:"fullName"`
	Parameters    []Parameter `json:"parameters"`
	ReturnType    TypeInfo    `json:"returnType"`
	Documentation string      `json:"documentation"`
}

// InterfaceDoclet documents an interface declaration.
type InterfaceDoclet struct {
	Name          string     `json:"name"`
	FullName      string     `json:"fullName"`
	Meta          Meta       `json:"meta"`
	Documentation string     `json:"documentation"`
	Type          TypeInfo   `json:"type"`
	Documented    bool       `json:"documented"`
	Private       bool       `json:"private"`
	Templates     []Template `json:"templates"`
}

// VariableDoclet documents one name bound by a variable statement.
type VariableDoclet struct {
	SymbolInfo
}

func (*ClassDoclet) Kind() Kind       { return KindClass }
func (*PropertyDoclet) Kind() Kind    { return KindProperty }
func (*ConstructorDoclet) Kind() Kind { return KindConstructor }
func (*FunctionDoclet) Kind() Kind    { return KindFunction }
func (*InterfaceDoclet) Kind() Kind   { return KindInterface }
func (*VariableDoclet) Kind() Kind    { return KindVariable }

func (*ClassDoclet) doclet()       {}
func (*PropertyDoclet) doclet()    {}
func (*ConstructorDoclet) doclet() {}
func (*FunctionDoclet) doclet()    {}
func (*InterfaceDoclet) doclet()   {}
func (*VariableDoclet) doclet()    {}

// MarshalJSON writes the kind first, followed by the fields of the variant.
func (d *ClassDoclet) MarshalJSON() ([]byte, error) {
	type fields ClassDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

func (d *PropertyDoclet) MarshalJSON() ([]byte, error) {
	type fields PropertyDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

func (d *ConstructorDoclet) MarshalJSON() ([]byte, error) {
	type fields ConstructorDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

func (d *FunctionDoclet) MarshalJSON() ([]byte, error) {
	type fields FunctionDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

func (d *InterfaceDoclet) MarshalJSON() ([]byte, error) {
	type fields InterfaceDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

func (d *VariableDoclet) MarshalJSON() ([]byte, error) {
	type fields VariableDoclet
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*fields
	}{d.Kind(), (*fields)(d)})
}

// Marshal renders doclets as an indented JSON array.
func Marshal(doclets []Doclet) ([]byte, error) {
	if doclets == nil {
		doclets = []Doclet{}
	}
	return json.MarshalIndent(doclets, "", "    ")
}
