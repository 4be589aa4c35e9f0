// Package naming converts identifiers between the casing conventions of the
// three surfaces the generator bridges: Rust source (PascalCase/snake_case),
// WIT (kebab-case), and TypeScript (camelCase/PascalCase).
//
// All conversions are purely structural. ToKebabCase is a left inverse of
// ToPascalCase for identifiers without leading/trailing or consecutive
// hyphens, which is what makes regeneration deterministic.
package naming

import (
	"strings"
	"unicode"

	"github.com/witforge/witforge/errors"
)

// WitEscape is the prefix WIT uses to escape identifiers that collide with
// grammar keywords or primitive type names, e.g. %record.
const WitEscape = "%"

// witReserved holds the WIT grammar keywords and primitive type names. An
// identifier matching one of these must be %-escaped when emitted into WIT
// text; the escape keeps the mapping recoverable instead of renaming.
var witReserved = map[string]bool{
	// grammar keywords
	"use": true, "type": true, "resource": true, "func": true,
	"record": true, "enum": true, "flags": true, "variant": true,
	"static": true, "interface": true, "world": true, "import": true,
	"export": true, "package": true, "include": true, "constructor": true,
	"own": true, "borrow": true, "as": true, "from": true, "with": true,
	// primitive and builtin type names
	"u8": true, "u16": true, "u32": true, "u64": true,
	"s8": true, "s16": true, "s32": true, "s64": true,
	"f32": true, "f64": true, "char": true, "bool": true, "string": true,
	"list": true, "option": true, "result": true, "tuple": true,
	"future": true, "stream": true, "address": true,
}

// ToKebabCase converts a Rust identifier to WIT kebab-case. Inputs that
// already contain underscores are treated as snake_case and only have the
// delimiter swapped; otherwise every non-leading uppercase letter starts a
// new hyphenated segment.
func ToKebabCase(s string) string {
	if strings.Contains(s, "_") {
		return strings.ReplaceAll(s, "_", "-")
	}

	var b strings.Builder
	b.Grow(len(s) + 5)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToPascalCase converts a kebab-case WIT identifier to PascalCase. A %
// escape prefix is dropped first; empty segments are skipped.
func ToPascalCase(kebab string) string {
	kebab = StripWitEscape(kebab)

	var b strings.Builder
	for _, part := range strings.Split(kebab, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// ToSnakeCase converts a kebab-case WIT identifier to snake_case, dropping
// any % escape prefix.
func ToSnakeCase(kebab string) string {
	return strings.ReplaceAll(StripWitEscape(kebab), "-", "_")
}

// ToCamelCase converts a kebab-case WIT identifier to camelCase.
func ToCamelCase(kebab string) string {
	pascal := ToPascalCase(kebab)
	if pascal == "" {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToWitIdent escapes a kebab-case identifier if it collides with a WIT
// reserved word. Identifiers used only internally (map keys, file names)
// must not pass through here.
func ToWitIdent(kebab string) string {
	if witReserved[kebab] {
		return WitEscape + kebab
	}
	return kebab
}

// StripWitEscape removes the % keyword-escape prefix if present.
func StripWitEscape(s string) string {
	return strings.TrimPrefix(s, WitEscape)
}

// StripLeadingUnderscore removes a single leading underscore from a
// parameter or field name. The second return reports whether one was
// stripped, so the caller can warn: a leading underscore marks an
// intentionally unused binding in Rust but is illegal in WIT identifiers.
func StripLeadingUnderscore(name string) (string, bool) {
	if strings.HasPrefix(name, "_") {
		return name[1:], true
	}
	return name, false
}

// ValidateName rejects identifiers that cannot be expressed in WIT: names
// containing decimal digits, and names containing "stream" in any casing
// (reserved for a future WIT feature). kind classifies the identifier for
// the error message ("Struct", "Field", "Parameter", "Function", ...).
func ValidateName(name, kind string) error {
	for _, r := range name {
		if unicode.IsDigit(r) {
			return errors.WithHint(
				errors.NamingViolationf("%s name %q contains a digit, which is not allowed in WIT identifiers", kind, name),
				"spell the number out (count_two) or drop it (count)",
			)
		}
	}

	if strings.Contains(strings.ToLower(name), "stream") {
		return errors.WithHint(
			errors.NamingViolationf("%s name %q contains 'stream', which is reserved for a future WIT feature", kind, name),
			"use a different word, e.g. 'feed', 'channel', or 'flow'",
		)
	}

	return nil
}
