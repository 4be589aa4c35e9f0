package witgen

import (
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/rustsrc"
	"github.com/witforge/witforge/wit"
)

// processAttr marks the impl block a process exposes its methods from.
const processAttr = "hyperprocess"

// transportAttrs are the markers that generate a signature record, in the
// order their records derive target typing.
var transportAttrs = []struct {
	name string
	kind wit.AttrKind
}{
	{"remote", wit.AttrRemote},
	{"local", wit.AttrLocal},
	{"http", wit.AttrHTTP},
}

// lifecycleAttrs mark framework hooks that are classified but never exposed
// as RPC signatures.
var lifecycleAttrs = map[string]bool{
	"init":             true,
	"ws":               true,
	"ws_server":        true,
	"ws_client":        true,
	"eth_subscription": true,
}

// Analysis is everything the source analyzer recovers from one project's
// primary source file.
type Analysis struct {
	InterfaceName string // kebab-case
	WorldName     string
	Signatures    []wit.SignatureStruct
	UsedTypes     map[string]struct{} // original source spellings
}

// AnalyzeImpl scans a parsed primary source file for a process impl block
// and derives one signature record per (method, transport) pair. Returns
// nil when the file declares no process block; the project is then skipped.
func AnalyzeImpl(f *rustsrc.File) (*Analysis, error) {
	var impl *rustsrc.Impl
	var procAttr rustsrc.Attr
	for i := range f.Impls {
		if a, ok := rustsrc.FindAttr(f.Impls[i].Attrs, processAttr); ok {
			impl = &f.Impls[i]
			procAttr = a
			break
		}
	}
	if impl == nil {
		return nil, nil
	}

	world := procAttr.Args["wit_world"]
	if world == "" {
		return nil, errors.MissingMetadataf(
			"impl %s declares #[%s] without a wit_world", impl.TypeName, processAttr)
	}

	ifaceSource := strings.TrimSuffix(impl.TypeName, "State")
	if ifaceSource == "" {
		ifaceSource = impl.TypeName
	}
	if err := naming.ValidateName(ifaceSource, "interface"); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		InterfaceName: naming.ToKebabCase(ifaceSource),
		WorldName:     world,
		UsedTypes:     map[string]struct{}{},
	}

	for _, m := range impl.Methods {
		sigs, err := analyzeMethod(f.Path, m, analysis.UsedTypes)
		if err != nil {
			return nil, err
		}
		analysis.Signatures = append(analysis.Signatures, sigs...)
	}
	return analysis, nil
}

// analyzeMethod classifies one method's transport markers and builds its
// signature records. Lifecycle hooks yield no records; a method with no
// recognized marker at all is a malformed process definition.
func analyzeMethod(path string, m rustsrc.Method, used map[string]struct{}) ([]wit.SignatureStruct, error) {
	for name := range lifecycleAttrs {
		if rustsrc.HasAttr(m.Attrs, name) {
			return nil, nil
		}
	}

	var kinds []wit.AttrKind
	var httpAttr rustsrc.Attr
	for _, t := range transportAttrs {
		if a, ok := rustsrc.FindAttr(m.Attrs, t.name); ok {
			kinds = append(kinds, t.kind)
			if t.kind == wit.AttrHTTP {
				httpAttr = a
			}
		}
	}
	if len(kinds) == 0 {
		return nil, errors.MissingMetadataf(
			"method %s in %s has no transport attribute; every exposed method must carry one of remote, local, http, init, ws_server, ws_client, eth_subscription",
			m.Name, path)
	}

	if err := naming.ValidateName(m.Name, "function"); err != nil {
		return nil, err
	}
	fnName := naming.ToKebabCase(m.Name)

	var params []wit.SignatureField
	for _, p := range m.Params {
		name, stripped := naming.StripLeadingUnderscore(p.Name)
		if stripped {
			logger.Warnf("parameter %s of %s: leading underscore stripped for the interface definition", p.Name, m.Name)
		}
		if err := naming.ValidateName(name, "parameter"); err != nil {
			return nil, err
		}
		kebab := naming.ToKebabCase(name)
		if kebab == "target" || kebab == "returning" {
			return nil, errors.NamingViolationf(
				"parameter %s of %s collides with the generated %s field; rename the parameter",
				p.Name, m.Name, kebab)
		}
		witType, err := RustTypeToWit(p.Type, used)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s of %s", p.Name, m.Name)
		}
		params = append(params, wit.SignatureField{
			Name: kebab,
			Type: witType,
		})
	}

	ret := strings.TrimSpace(m.Return)
	if ret == "" {
		return nil, errors.MissingMetadataf(
			"method %s must declare a non-unit return type to be exposed", m.Name)
	}
	returning, err := RustTypeToWit(ret, used)
	if err != nil {
		return nil, errors.Wrapf(err, "return type of %s", m.Name)
	}
	// checked after mapping so spelling variants of the unit type all land here
	if returning == wit.NoValue {
		return nil, errors.MissingMetadataf(
			"method %s must declare a non-unit return type to be exposed", m.Name)
	}

	var sigs []wit.SignatureStruct
	for _, kind := range kinds {
		sig := wit.SignatureStruct{
			FunctionName: fnName,
			Attr:         kind,
		}
		targetType := "address"
		if kind == wit.AttrHTTP {
			targetType = "string"
			sig.HTTPMethod, sig.HTTPPath = httpHint(httpAttr)
		}
		sig.Fields = append(sig.Fields, wit.SignatureField{Name: "target", Type: targetType})
		sig.Fields = append(sig.Fields, params...)
		sig.Fields = append(sig.Fields, wit.SignatureField{Name: "returning", Type: returning})
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// httpHint reads the optional method/path arguments of an #[http] marker.
func httpHint(attr rustsrc.Attr) (method, path string) {
	method, path = "POST", "/api"
	if m := attr.Args["method"]; m != "" {
		method = strings.ToUpper(m)
	}
	if p := attr.Args["path"]; p != "" {
		path = p
	}
	return method, path
}
