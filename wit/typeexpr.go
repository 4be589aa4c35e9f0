package wit

import (
	"strings"

	"github.com/witforge/witforge/naming"
)

// NoValue is the placeholder for Rust's unit type (). It is only valid
// nested inside a result's ok/err position; anywhere else the caller must
// reject it.
const NoValue = "_"

// primitives are the scalar WIT types plus the shared address builtin.
var primitives = map[string]bool{
	"s8": true, "u8": true, "s16": true, "u16": true,
	"s32": true, "u32": true, "s64": true, "u64": true,
	"f32": true, "f64": true,
	"bool": true, "char": true, "string": true, "address": true,
}

// IsPrimitiveOrBuiltin reports whether a WIT type expression needs no local
// type definition: scalar primitives, the address builtin, and the generic
// composites (whose element types are checked separately by the resolver).
func IsPrimitiveOrBuiltin(typeExpr string) bool {
	if primitives[typeExpr] {
		return true
	}
	return strings.HasPrefix(typeExpr, "list<") ||
		strings.HasPrefix(typeExpr, "option<") ||
		strings.HasPrefix(typeExpr, "result<") ||
		strings.HasPrefix(typeExpr, "tuple<") ||
		typeExpr == "result"
}

// IsScalar reports whether typeExpr is a bare primitive token.
func IsScalar(typeExpr string) bool {
	return primitives[typeExpr]
}

// InnerType strips a single generic wrapper, e.g. InnerType("list<u8>",
// "list") == "u8". Returns false when typeExpr is not that wrapper.
func InnerType(typeExpr, wrapper string) (string, bool) {
	prefix := wrapper + "<"
	if !strings.HasPrefix(typeExpr, prefix) || !strings.HasSuffix(typeExpr, ">") {
		return "", false
	}
	return typeExpr[len(prefix) : len(typeExpr)-1], true
}

// SplitGenericArgs splits a comma-separated generic argument list at the
// top level only, tracking angle-bracket depth so nested generics stay
// intact: "tuple<u64, bool>, string" -> ["tuple<u64, bool>", "string"].
func SplitGenericArgs(inner string) []string {
	var args []string
	var current strings.Builder
	depth := 0

	for _, c := range inner {
		switch c {
		case '<':
			depth++
			current.WriteRune(c)
		case '>':
			depth--
			current.WriteRune(c)
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
			current.WriteRune(c)
		default:
			current.WriteRune(c)
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		args = append(args, s)
	}
	return args
}

// ResultParts destructures a result type expression into its ok and err
// positions, normalizing the shorthand forms:
//
//	result          -> ("_", "_")
//	result<T>       -> (T, "_")
//	result<_, E>    -> ("_", E)
//	result<T, E>    -> (T, E)
//
// ok is false when typeExpr is not a result at all.
func ResultParts(typeExpr string) (okType, errType string, ok bool) {
	if typeExpr == "result" {
		return NoValue, NoValue, true
	}
	inner, isResult := InnerType(typeExpr, "result")
	if !isResult {
		return "", "", false
	}
	args := SplitGenericArgs(inner)
	switch len(args) {
	case 1:
		return args[0], NoValue, true
	case 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

// TupleParts destructures a tuple type expression into its element types.
// Returns nil when typeExpr is not a tuple.
func TupleParts(typeExpr string) []string {
	inner, isTuple := InnerType(typeExpr, "tuple")
	if !isTuple {
		return nil
	}
	return SplitGenericArgs(inner)
}

// composites are the generic wrapper keywords of the type-expression grammar.
var composites = map[string]bool{
	"list": true, "option": true, "result": true, "tuple": true,
}

// CustomTypeNames extracts every custom type name referenced anywhere in a
// type expression, however deeply nested. Keyword-escaped names are returned
// unescaped. Order follows first appearance; duplicates are dropped.
func CustomTypeNames(typeExpr string) []string {
	cleaned := strings.NewReplacer("<", " ", ">", " ", ",", " ").Replace(typeExpr)

	var names []string
	seen := map[string]bool{}
	for _, token := range strings.Fields(cleaned) {
		token = naming.StripWitEscape(token)
		if token == NoValue || primitives[token] || composites[token] || seen[token] {
			continue
		}
		seen[token] = true
		names = append(names, token)
	}
	return names
}
