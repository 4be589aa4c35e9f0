package witgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/rustsrc"
	"github.com/witforge/witforge/wit"
)

// definitionIndex maps type names to their definitions across a project's
// source files. Duplicate names keep the first definition seen, with a
// warning, so file ordering must be deterministic.
type definitionIndex struct {
	structs map[string]rustsrc.Struct
	enums   map[string]rustsrc.Enum
}

func indexDefinitions(files []*rustsrc.File) *definitionIndex {
	idx := &definitionIndex{
		structs: map[string]rustsrc.Struct{},
		enums:   map[string]rustsrc.Enum{},
	}
	for _, f := range files {
		for _, st := range f.Structs {
			if idx.has(st.Name) {
				logger.Warnf("duplicate definition of %s in %s ignored, first definition wins", st.Name, f.Path)
				continue
			}
			idx.structs[st.Name] = st
		}
		for _, en := range f.Enums {
			if idx.has(en.Name) {
				logger.Warnf("duplicate definition of %s in %s ignored, first definition wins", en.Name, f.Path)
				continue
			}
			idx.enums[en.Name] = en
		}
	}
	return idx
}

func (idx *definitionIndex) has(name string) bool {
	_, s := idx.structs[name]
	_, e := idx.enums[name]
	return s || e
}

// ResolveClosure locates the definition of every used custom type across
// the project's source files, transitively chasing types referenced by
// those definitions. Types containing "__" are framework-internal and
// skipped. Missing definitions are reported once, aggregated and sorted,
// so a single rerun can fix all of them.
func ResolveClosure(used map[string]struct{}, files []*rustsrc.File) ([]wit.TypeDefinition, error) {
	idx := indexDefinitions(files)

	queue := make([]string, 0, len(used))
	visited := map[string]bool{}
	for name := range used {
		queue = append(queue, name)
		visited[name] = true
	}
	sort.Strings(queue)

	var defs []wit.TypeDefinition
	var missing []string

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if strings.Contains(name, "__") {
			logger.Debugw("skipping internal type", "type", name)
			continue
		}

		nested := map[string]struct{}{}
		var def wit.TypeDefinition
		var err error
		switch {
		case idx.hasStruct(name):
			def, err = renderRecordDef(idx.structs[name], nested)
		case idx.hasEnum(name):
			def, err = renderEnumDef(idx.enums[name], nested)
		default:
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return nil, err
		}

		def.Dependencies = map[string]struct{}{}
		for dep := range nested {
			kebab := naming.ToKebabCase(dep)
			if kebab != def.KebabName {
				def.Dependencies[kebab] = struct{}{}
			}
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
		// keep processing order deterministic regardless of map iteration
		sort.Strings(queue)
		defs = append(defs, def)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.WithHint(
			errors.IncompleteClosuref("no definition found for types: %s", strings.Join(missing, ", ")),
			"define these types in the project source, or remove their uses from exposed methods")
	}
	return defs, nil
}

func (idx *definitionIndex) hasStruct(name string) bool { _, ok := idx.structs[name]; return ok }
func (idx *definitionIndex) hasEnum(name string) bool   { _, ok := idx.enums[name]; return ok }

// renderRecordDef renders a named-field struct as a WIT record. Custom type
// names touched by field types accumulate into used.
func renderRecordDef(st rustsrc.Struct, used map[string]struct{}) (wit.TypeDefinition, error) {
	if st.Kind == rustsrc.StructTuple {
		return wit.TypeDefinition{}, errors.UnsupportedTypef(
			"struct %s has positional fields; records require named fields", st.Name)
	}
	if err := naming.ValidateName(st.Name, "type"); err != nil {
		return wit.TypeDefinition{}, err
	}
	kebab := naming.ToKebabCase(st.Name)
	ident := naming.ToWitIdent(kebab)

	if len(st.Fields) == 0 {
		return wit.TypeDefinition{
			KebabName: kebab,
			Kind:      wit.DefRecord,
			Body:      fmt.Sprintf("record %s {}", ident),
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "record %s {\n", ident)
	for _, f := range st.Fields {
		name, _ := naming.StripLeadingUnderscore(f.Name)
		if err := naming.ValidateName(name, "field"); err != nil {
			return wit.TypeDefinition{}, errors.Wrapf(err, "field of %s", st.Name)
		}
		witType, err := RustTypeToWit(f.Type, used)
		if err != nil {
			return wit.TypeDefinition{}, errors.Wrapf(err, "field %s of %s", f.Name, st.Name)
		}
		fmt.Fprintf(&b, "    %s: %s,\n", naming.ToWitIdent(naming.ToKebabCase(name)), witType)
	}
	b.WriteString("}")

	return wit.TypeDefinition{KebabName: kebab, Kind: wit.DefRecord, Body: b.String()}, nil
}

// renderEnumDef renders an enum as a WIT enum when every variant is a bare
// unit, or as a WIT variant when any case carries a payload. Struct-like and
// multi-payload variants cannot be represented.
func renderEnumDef(en rustsrc.Enum, used map[string]struct{}) (wit.TypeDefinition, error) {
	if err := naming.ValidateName(en.Name, "type"); err != nil {
		return wit.TypeDefinition{}, err
	}
	kebab := naming.ToKebabCase(en.Name)
	ident := naming.ToWitIdent(kebab)

	allUnit := true
	for _, v := range en.Variants {
		switch {
		case v.Kind == rustsrc.VariantStructLike:
			return wit.TypeDefinition{}, errors.UnsupportedTypef(
				"enum %s variant %s has struct-like fields; variants carry at most one unnamed payload", en.Name, v.Name)
		case v.Kind == rustsrc.VariantTuple && len(v.Payloads) > 1:
			return wit.TypeDefinition{}, errors.UnsupportedTypef(
				"enum %s variant %s has %d payload fields; variants carry at most one unnamed payload", en.Name, v.Name, len(v.Payloads))
		case v.Kind == rustsrc.VariantTuple && len(v.Payloads) == 1:
			allUnit = false
		}
		if err := naming.ValidateName(v.Name, "variant case"); err != nil {
			return wit.TypeDefinition{}, errors.Wrapf(err, "variant of %s", en.Name)
		}
	}

	var b strings.Builder
	kind := wit.DefEnum
	if allUnit {
		fmt.Fprintf(&b, "enum %s {\n", ident)
		for _, v := range en.Variants {
			fmt.Fprintf(&b, "    %s,\n", naming.ToWitIdent(naming.ToKebabCase(v.Name)))
		}
	} else {
		kind = wit.DefVariant
		fmt.Fprintf(&b, "variant %s {\n", ident)
		for _, v := range en.Variants {
			caseName := naming.ToWitIdent(naming.ToKebabCase(v.Name))
			if v.Kind == rustsrc.VariantTuple && len(v.Payloads) == 1 {
				witType, err := RustTypeToWit(v.Payloads[0], used)
				if err != nil {
					return wit.TypeDefinition{}, errors.Wrapf(err, "variant %s of %s", v.Name, en.Name)
				}
				fmt.Fprintf(&b, "    %s(%s),\n", caseName, witType)
			} else {
				fmt.Fprintf(&b, "    %s,\n", caseName)
			}
		}
	}
	b.WriteString("}")

	return wit.TypeDefinition{KebabName: kebab, Kind: kind, Body: b.String()}, nil
}
