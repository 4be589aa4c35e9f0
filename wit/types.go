// Package wit holds the data model for the generated interface definition
// language and the shared parser that recovers it from WIT text. The
// generation side (witgen) writes this model to disk; both stub emitters
// (stubgen/rust, stubgen/typescript) read it back through ParseInterface so
// the two never drift apart on grammar details.
package wit

// AttrKind is the transport attribute a function signature was generated
// for. Lifecycle and streaming attributes (init, websocket-server,
// websocket-client, eth-subscription) never reach this type: they suppress
// signature generation entirely.
type AttrKind string

const (
	AttrRemote AttrKind = "remote"
	AttrLocal  AttrKind = "local"
	AttrHTTP   AttrKind = "http"
)

// SignatureField is one field of a signature record: the WIT-legal field
// name and its type expression (possibly nested: list<...>, option<...>,
// result<...>, tuple<...> or a custom kebab-case name).
type SignatureField struct {
	Name string
	Type string
}

// SignatureStruct represents exactly one (function, transport) pairing
// recovered from a `<fn>-signature-<attr>` record. By convention Fields
// starts with "target" (string for http, address otherwise) and ends with
// "returning" (the declared return type).
type SignatureStruct struct {
	FunctionName string // kebab-case
	Attr         AttrKind
	Fields       []SignatureField

	// HTTP hint comment (`// HTTP: <METHOD> <path>`) above http signature
	// records. Empty for other transports.
	HTTPMethod string
	HTTPPath   string
}

// Returning reports the declared return type of the signature, if present.
func (s *SignatureStruct) Returning() (string, bool) {
	for _, f := range s.Fields {
		if f.Name == "returning" {
			return f.Type, true
		}
	}
	return "", false
}

// Params returns the parameter fields in declaration order, excluding the
// target and returning conventions.
func (s *SignatureStruct) Params() []SignatureField {
	var params []SignatureField
	for _, f := range s.Fields {
		if f.Name == "target" || f.Name == "returning" {
			continue
		}
		params = append(params, f)
	}
	return params
}

// Record is a plain WIT record type (not a signature record).
type Record struct {
	Name   string
	Fields []SignatureField
}

// VariantCase is one case of a WIT variant; Type is empty for unit cases.
type VariantCase struct {
	Name string
	Type string
}

// Variant is a WIT variant type (tagged union).
type Variant struct {
	Name  string
	Cases []VariantCase
}

// Enum is a WIT enum type (variant with no payloads).
type Enum struct {
	Name  string
	Cases []string
}

// Alias is a WIT type alias: `type name = rhs;`.
type Alias struct {
	Name string
	RHS  string
}

// Document is everything recovered from one WIT interface file.
type Document struct {
	Signatures []SignatureStruct
	Records    []Record
	Variants   []Variant
	Enums      []Enum
	Aliases    []Alias
}

// TypeDefKind classifies a rendered type definition.
type TypeDefKind string

const (
	DefRecord  TypeDefKind = "record"
	DefVariant TypeDefKind = "variant"
	DefEnum    TypeDefKind = "enum"
)

// TypeDefinition is one custom type rendered for the interface file, with
// the custom type names its body references (used for topological ordering).
type TypeDefinition struct {
	KebabName    string
	Kind         TypeDefKind
	Body         string
	Dependencies map[string]struct{}
}
