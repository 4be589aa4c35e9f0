package wit

import (
	"os"
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/naming"
)

// signatureMarker separates the function name from the transport attribute
// in generated signature record names: `<fn>-signature-<attr>`.
const signatureMarker = "-signature-"

// ParseInterfaceFile reads and parses one WIT interface file.
func ParseInterfaceFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read WIT file %s", path)
	}
	return ParseInterface(string(content)), nil
}

// ParseInterface recovers signature records, plain records, variants, enums
// and aliases from WIT interface text. The grammar is line-oriented and
// indentation-insensitive; comments and blank lines inside bodies are
// skipped, except for the `// HTTP: <METHOD> <path>` hint read for http
// signature records.
func ParseInterface(content string) *Document {
	doc := &Document{}
	lines := strings.Split(content, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case strings.HasPrefix(line, "type "):
			rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "type "), ";"))
			if eq := strings.Index(rest, "="); eq >= 0 {
				doc.Aliases = append(doc.Aliases, Alias{
					Name: naming.StripWitEscape(strings.TrimSpace(rest[:eq])),
					RHS:  strings.TrimSpace(rest[eq+1:]),
				})
			}

		case strings.HasPrefix(line, "record "):
			name := naming.StripWitEscape(headerName(line, "record "))
			fields, next := parseFields(lines, i+1)

			if fn, attr, isSig := splitSignatureName(name); isSig {
				sig := SignatureStruct{
					FunctionName: fn,
					Attr:         AttrKind(attr),
					Fields:       fields,
				}
				if sig.Attr == AttrHTTP {
					sig.HTTPMethod, sig.HTTPPath = findHTTPHint(lines, i)
				}
				doc.Signatures = append(doc.Signatures, sig)
			} else {
				doc.Records = append(doc.Records, Record{Name: name, Fields: fields})
			}
			i = next

		case strings.HasPrefix(line, "variant "):
			name := naming.StripWitEscape(headerName(line, "variant "))
			variant := Variant{Name: name}
			next := scanBody(lines, i+1, func(body string) {
				raw := strings.TrimSuffix(body, ",")
				if paren := strings.Index(raw, "("); paren >= 0 {
					end := strings.LastIndex(raw, ")")
					if end < 0 {
						end = len(raw)
					}
					variant.Cases = append(variant.Cases, VariantCase{
						Name: naming.StripWitEscape(raw[:paren]),
						Type: raw[paren+1 : end],
					})
				} else {
					variant.Cases = append(variant.Cases, VariantCase{Name: naming.StripWitEscape(raw)})
				}
			})
			doc.Variants = append(doc.Variants, variant)
			i = next

		case strings.HasPrefix(line, "enum "):
			name := naming.StripWitEscape(headerName(line, "enum "))
			enum := Enum{Name: name}
			next := scanBody(lines, i+1, func(body string) {
				enum.Cases = append(enum.Cases, naming.StripWitEscape(strings.TrimSuffix(body, ",")))
			})
			doc.Enums = append(doc.Enums, enum)
			i = next
		}
	}

	return doc
}

// ContainsWorld reports whether WIT file content declares a world rather
// than an interface. World files are handled by the world rewriter, never
// by the interface parser. Only a line starting a world block counts;
// "world" appearing inside comments or identifiers (a get-world function,
// say) does not make an interface file a world file.
func ContainsWorld(content string) bool {
	for _, raw := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(raw), "world ") {
			return true
		}
	}
	return false
}

// World is a parsed world aggregator file. Imports and Includes hold the
// trimmed statement lines verbatim so rewriting preserves their text.
type World struct {
	Name     string
	Imports  []string
	Includes []string
}

// ParseWorld extracts the world declaration from file content. Returns
// false when no world block is present.
func ParseWorld(content string) (*World, bool) {
	w := &World{}
	seen := map[string]bool{}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "world "):
			if fields := strings.Fields(line); len(fields) >= 2 {
				w.Name = strings.TrimSuffix(fields[1], "{")
			}
		case strings.HasPrefix(line, "import "):
			w.Imports = append(w.Imports, line)
		case strings.HasPrefix(line, "include "):
			if !seen[line] {
				seen[line] = true
				w.Includes = append(w.Includes, line)
			}
		}
	}

	if w.Name == "" {
		return nil, false
	}
	return w, true
}

func headerName(line, keyword string) string {
	name := strings.TrimPrefix(line, keyword)
	name = strings.TrimSuffix(name, "{")
	return strings.TrimSpace(name)
}

func splitSignatureName(name string) (fn, attr string, ok bool) {
	if !strings.Contains(name, signatureMarker) {
		return "", "", false
	}
	parts := strings.SplitN(name, signatureMarker, 2)
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseFields consumes `name: type,` lines until the closing brace, skipping
// comments and blanks. Returns the fields and the index of the closing line.
func parseFields(lines []string, start int) ([]SignatureField, int) {
	var fields []SignatureField
	next := scanBody(lines, start, func(body string) {
		colon := strings.Index(body, ":")
		if colon < 0 {
			return
		}
		fields = append(fields, SignatureField{
			Name: naming.StripWitEscape(strings.TrimSpace(body[:colon])),
			Type: strings.TrimSuffix(strings.TrimSpace(body[colon+1:]), ","),
		})
	})
	return fields, next
}

// scanBody walks lines from start until a closing brace, feeding each
// non-comment non-blank line to visit. Returns the closing line's index.
func scanBody(lines []string, start int, visit func(string)) int {
	i := start
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "}") {
			break
		}
		if line != "" && !strings.HasPrefix(line, "//") {
			visit(line)
		}
		i++
	}
	return i
}

// findHTTPHint scans upward from a signature record header through its
// leading comments for a `// HTTP: <METHOD> <path>` line. Missing hints
// default to POST /api.
func findHTTPHint(lines []string, headerIdx int) (method, path string) {
	method, path = "POST", "/api"

	for j := headerIdx; j > 0; j-- {
		prev := strings.TrimSpace(lines[j-1])
		if prev == "" {
			continue
		}
		if strings.HasPrefix(prev, "// HTTP:") {
			tokens := strings.Fields(strings.TrimPrefix(prev, "// HTTP:"))
			if len(tokens) >= 1 {
				method = strings.ToUpper(tokens[0])
			}
			if len(tokens) >= 2 {
				path = tokens[1]
			}
			return method, path
		}
		if strings.HasPrefix(prev, "//") {
			continue
		}
		return method, path
	}
	return method, path
}
