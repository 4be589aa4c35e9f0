// Package rust emits the caller-utils crate: one async RPC wrapper function
// per non-http signature record, assembled into a single generated crate
// that binds the workspace's WIT world.
package rust

import (
	"fmt"
	"strings"

	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// scalarToRust maps bare WIT tokens to Rust types. The address builtin maps
// to the bindgen-generated WitAddress; the no-value placeholder maps to unit.
var scalarToRust = map[string]string{
	"s8":      "i8",
	"u8":      "u8",
	"s16":     "i16",
	"u16":     "u16",
	"s32":     "i32",
	"u32":     "u32",
	"s64":     "i64",
	"u64":     "u64",
	"f32":     "f32",
	"f64":     "f64",
	"string":  "String",
	"str":     "&str",
	"char":    "char",
	"bool":    "bool",
	"_":       "()",
	"address": "WitAddress",
}

// WitTypeToRust parses a WIT type expression back into Rust type syntax.
// Custom kebab-case names become their PascalCase bindings.
func WitTypeToRust(witType string) string {
	if r, ok := scalarToRust[witType]; ok {
		return r
	}
	if witType == "result" {
		return "Result<(), ()>"
	}
	if inner, ok := wit.InnerType(witType, "list"); ok {
		return fmt.Sprintf("Vec<%s>", WitTypeToRust(inner))
	}
	if inner, ok := wit.InnerType(witType, "option"); ok {
		return fmt.Sprintf("Option<%s>", WitTypeToRust(inner))
	}
	if okType, errType, ok := wit.ResultParts(witType); ok {
		return fmt.Sprintf("Result<%s, %s>", WitTypeToRust(okType), WitTypeToRust(errType))
	}
	if parts := wit.TupleParts(witType); parts != nil {
		mapped := make([]string, 0, len(parts))
		for _, p := range parts {
			mapped = append(mapped, WitTypeToRust(p))
		}
		return fmt.Sprintf("(%s)", strings.Join(mapped, ", "))
	}
	return naming.ToPascalCase(witType)
}
