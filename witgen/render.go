package witgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// RenderInterface produces the complete WIT interface file text: the shared
// address use-statement, the topologically sorted type definitions, then
// the signature records sorted by record name. Callers pass definitions
// already ordered by SortDefinitions.
func RenderInterface(name string, defs []wit.TypeDefinition, sigs []wit.SignatureStruct) string {
	sorted := make([]wit.SignatureStruct, len(sigs))
	copy(sorted, sigs)
	sort.Slice(sorted, func(i, j int) bool {
		return signatureRecordName(sorted[i]) < signatureRecordName(sorted[j])
	})

	var b strings.Builder
	fmt.Fprintf(&b, "interface %s {\n", naming.ToWitIdent(name))
	b.WriteString("    use standard.{address};\n")

	for _, d := range defs {
		b.WriteString("\n")
		writeIndented(&b, d.Body)
	}

	for _, sig := range sorted {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    // Function signature for: %s (%s)\n", sig.FunctionName, sig.Attr)
		if sig.Attr == wit.AttrHTTP {
			fmt.Fprintf(&b, "    // HTTP: %s %s\n", sig.HTTPMethod, sig.HTTPPath)
		}
		fmt.Fprintf(&b, "    record %s {\n", signatureRecordName(sig))
		for _, f := range sig.Fields {
			fmt.Fprintf(&b, "        %s: %s,\n", naming.ToWitIdent(f.Name), f.Type)
		}
		b.WriteString("    }\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func signatureRecordName(sig wit.SignatureStruct) string {
	return fmt.Sprintf("%s-signature-%s", sig.FunctionName, sig.Attr)
}

func writeIndented(b *strings.Builder, body string) {
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
