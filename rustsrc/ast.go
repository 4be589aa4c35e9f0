// Package rustsrc is a structural scanner for the subset of Rust source the
// generator analyzes: top-level struct and enum definitions, and impl blocks
// whose methods carry transport attributes. It does not evaluate or expand
// anything; bodies are skipped by brace matching and type expressions are
// captured as text for the WIT type mapper to interpret.
//
// Attributes are parsed into structured key-value form up front, so callers
// never reconstruct values from a formatted representation.
package rustsrc

// File is everything the scanner recovered from one source file.
type File struct {
	Path    string
	Structs []Struct
	Enums   []Enum
	Impls   []Impl
}

// StructKind distinguishes the three Rust struct shapes. Only named-field
// and unit structs can be expressed as WIT records; tuple structs are
// reported so the caller can reject them with a precise error.
type StructKind int

const (
	StructNamed StructKind = iota
	StructUnit
	StructTuple
)

// Struct is a top-level struct definition.
type Struct struct {
	Name   string
	Kind   StructKind
	Fields []Field
}

// Field is one named struct field with its type captured as source text.
type Field struct {
	Name string
	Type string
}

// VariantKind distinguishes enum variant shapes. WIT variants support unit
// cases and single-payload cases; everything else is reported for rejection.
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantStructLike
)

// EnumVariant is one case of an enum. Payloads holds the unnamed field
// types for tuple variants (len 1 is the only WIT-expressible form).
type EnumVariant struct {
	Name     string
	Kind     VariantKind
	Payloads []string
}

// Enum is a top-level enum definition.
type Enum struct {
	Name     string
	Variants []EnumVariant
}

// Attr is one parsed attribute, e.g. #[remote] or
// #[hyperprocess(wit_world = "my-world")]. Args holds `key = value` pairs
// with string literals unquoted; bare tokens appear as keys with an empty
// value.
type Attr struct {
	Name string
	Args map[string]string
}

// Impl is an inherent impl block with its attributes and methods.
type Impl struct {
	TypeName string
	Attrs    []Attr
	Methods  []Method
}

// Method is one function item inside an impl block. Params excludes the
// self receiver; Return is the raw return type text, empty when the method
// has no explicit return type.
type Method struct {
	Name   string
	Attrs  []Attr
	Params []Param
	Return string
}

// Param is one method parameter with its type captured as source text.
type Param struct {
	Name string
	Type string
}

// FindAttr returns the attribute with the given name, if present.
func FindAttr(attrs []Attr, name string) (Attr, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// HasAttr reports whether an attribute with the given name is present.
func HasAttr(attrs []Attr, name string) bool {
	_, ok := FindAttr(attrs, name)
	return ok
}
