// Package typescript emits the browser-side caller file: typed request and
// response declarations plus fetch-based async functions for every
// http-tagged signature record, grouped into one namespace per app.
package typescript

import (
	"fmt"
	"strings"

	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// scalarToTS maps bare WIT tokens to TypeScript. All numeric widths collapse
// to number; the address builtin is a node identity string on the wire.
var scalarToTS = map[string]string{
	"s8": "number", "u8": "number", "s16": "number", "u16": "number",
	"s32": "number", "u32": "number", "s64": "number", "u64": "number",
	"f32": "number", "f64": "number",
	"string": "string", "char": "string", "bool": "boolean",
	"_": "void", "address": "string",
}

// WitTypeToTypeScript parses a WIT type expression into TypeScript syntax.
// list<u8> becomes number[] directly; results become an Ok/Err object union
// mirroring the serialized envelope.
func WitTypeToTypeScript(witType string) string {
	if ts, ok := scalarToTS[witType]; ok {
		return ts
	}
	if witType == "result" {
		return "{ Ok: void } | { Err: void }"
	}
	if inner, ok := wit.InnerType(witType, "list"); ok {
		if inner == "u8" {
			return "number[]"
		}
		return WitTypeToTypeScript(inner) + "[]"
	}
	if inner, ok := wit.InnerType(witType, "option"); ok {
		return WitTypeToTypeScript(inner) + " | null"
	}
	if okType, errType, ok := wit.ResultParts(witType); ok {
		return fmt.Sprintf("{ Ok: %s } | { Err: %s }",
			WitTypeToTypeScript(okType), WitTypeToTypeScript(errType))
	}
	if parts := wit.TupleParts(witType); parts != nil {
		mapped := make([]string, 0, len(parts))
		for _, p := range parts {
			mapped = append(mapped, WitTypeToTypeScript(p))
		}
		return "[" + strings.Join(mapped, ", ") + "]"
	}
	return naming.ToPascalCase(witType)
}

// ExtractResultOkType unwraps the ok side of a result type for function
// return positions, since the response parser strips the envelope. Returns
// false when witType is not a result.
func ExtractResultOkType(witType string) (string, bool) {
	okType, _, ok := wit.ResultParts(witType)
	if !ok {
		return "", false
	}
	return WitTypeToTypeScript(okType), true
}
