package witgen

import (
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// rustPrimitives maps Rust scalar types directly to WIT primitives. usize
// and isize are widened to 64 bits.
var rustPrimitives = map[string]string{
	"i8":    "s8",
	"u8":    "u8",
	"i16":   "s16",
	"u16":   "u16",
	"i32":   "s32",
	"u32":   "u32",
	"i64":   "s64",
	"u64":   "u64",
	"usize": "u64",
	"isize": "s64",
	"f32":   "f32",
	"f64":   "f64",
	"bool":  "bool",
	"char":  "char",
}

// unsupportedContainers cannot be expressed in the WIT subset the generator
// emits. Naming them gives a sharper error than falling through to the
// custom-type path.
var unsupportedContainers = map[string]bool{
	"HashMap":  true,
	"BTreeMap": true,
	"HashSet":  true,
	"BTreeSet": true,
}

// RustTypeToWit maps Rust type text to its WIT expression. Custom type names
// encountered anywhere in the expression are recorded in used (under their
// original Rust spelling) so the closure resolver can chase their
// definitions.
func RustTypeToWit(rustType string, used map[string]struct{}) (string, error) {
	t := stripReferences(rustType)
	if t == "" {
		return "", errors.UnsupportedTypef("empty type expression")
	}

	// tuples, including the unit type
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		parts := splitRustArgs(t[1 : len(t)-1])
		if len(parts) == 0 {
			return wit.NoValue, nil
		}
		mapped := make([]string, 0, len(parts))
		for _, p := range parts {
			m, err := RustTypeToWit(p, used)
			if err != nil {
				return "", err
			}
			mapped = append(mapped, m)
		}
		return "tuple<" + strings.Join(mapped, ", ") + ">", nil
	}

	// slices and arrays
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		inner := t[1 : len(t)-1]
		if semi := strings.Index(inner, ";"); semi >= 0 {
			inner = inner[:semi]
		}
		m, err := RustTypeToWit(inner, used)
		if err != nil {
			return "", err
		}
		return "list<" + m + ">", nil
	}

	base, generics := splitBaseAndGenerics(t)
	base = lastPathSegment(base)

	if p, ok := rustPrimitives[base]; ok {
		return p, nil
	}
	switch base {
	case "String", "str":
		return "string", nil
	case "Address":
		return "address", nil
	case "Vec":
		if len(generics) != 1 {
			return "", errors.UnsupportedTypef("Vec requires one type argument, got %q", rustType)
		}
		m, err := RustTypeToWit(generics[0], used)
		if err != nil {
			return "", err
		}
		return "list<" + m + ">", nil
	case "Option":
		if len(generics) != 1 {
			return "", errors.UnsupportedTypef("Option requires one type argument, got %q", rustType)
		}
		m, err := RustTypeToWit(generics[0], used)
		if err != nil {
			return "", err
		}
		return "option<" + m + ">", nil
	case "Result":
		return mapResult(rustType, generics, used)
	}

	if unsupportedContainers[base] {
		return "", errors.UnsupportedTypef("%s cannot be represented in WIT; use a list of pairs instead", base)
	}
	if len(generics) > 0 {
		return "", errors.UnsupportedTypef("generic type %q is not supported", rustType)
	}

	if err := naming.ValidateName(base, "type"); err != nil {
		return "", err
	}
	used[base] = struct{}{}
	return naming.ToWitIdent(naming.ToKebabCase(base)), nil
}

// mapResult normalizes Result<T, E> into the WIT result forms, using the
// no-value placeholder for unit sides.
func mapResult(rustType string, generics []string, used map[string]struct{}) (string, error) {
	if len(generics) != 2 {
		return "", errors.UnsupportedTypef("Result requires exactly two type arguments, got %q", rustType)
	}

	okType, err := mapResultSide(generics[0], used)
	if err != nil {
		return "", err
	}
	errType, err := mapResultSide(generics[1], used)
	if err != nil {
		return "", err
	}

	switch {
	case okType == wit.NoValue && errType == wit.NoValue:
		return "result", nil
	case errType == wit.NoValue:
		return "result<" + okType + ">", nil
	default:
		return "result<" + okType + ", " + errType + ">", nil
	}
}

func mapResultSide(rustType string, used map[string]struct{}) (string, error) {
	if strings.TrimSpace(rustType) == "()" {
		return wit.NoValue, nil
	}
	return RustTypeToWit(rustType, used)
}

// stripReferences removes reference sigils, lifetimes, and mut qualifiers so
// &'a mut T maps the same as T.
func stripReferences(t string) string {
	t = strings.TrimSpace(t)
	for {
		switch {
		case strings.HasPrefix(t, "&"):
			t = strings.TrimSpace(t[1:])
		case strings.HasPrefix(t, "'"):
			idx := strings.IndexAny(t, " \t")
			if idx < 0 {
				return ""
			}
			t = strings.TrimSpace(t[idx+1:])
		case strings.HasPrefix(t, "mut "):
			t = strings.TrimSpace(t[4:])
		default:
			return t
		}
	}
}

// splitBaseAndGenerics separates `Vec<u8>` into base `Vec` and its type
// arguments.
func splitBaseAndGenerics(t string) (string, []string) {
	open := strings.Index(t, "<")
	if open < 0 {
		return t, nil
	}
	close := strings.LastIndex(t, ">")
	if close < open {
		return t, nil
	}
	return strings.TrimSpace(t[:open]), splitRustArgs(t[open+1 : close])
}

func lastPathSegment(t string) string {
	if idx := strings.LastIndex(t, "::"); idx >= 0 {
		return t[idx+2:]
	}
	return t
}

// splitRustArgs splits on commas at bracket depth zero, tracking angle
// brackets, parentheses, and square brackets.
func splitRustArgs(text string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(text[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(text[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
