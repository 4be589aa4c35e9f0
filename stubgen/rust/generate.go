package rust

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// Options configures one caller-crate emission.
type Options struct {
	// APIDir holds the generated WIT interface and world files.
	APIDir string
	// OutDir is the crate root to write, e.g. <root>/target/<name>-caller-utils.
	OutDir string
	// CrateName is the generated crate's name, conventionally
	// "<workspace>-caller-utils".
	CrateName string
	// ProcessLibDep is the runtime library dependency spec, in inline TOML
	// form, propagated from the workspace's process crates.
	ProcessLibDep string
}

// Generate writes the complete caller-utils crate: Cargo.toml, a single
// src/lib.rs holding one module of async RPC stubs per interface, and a
// copy of every WIT file for the bindgen invocation to consume.
func Generate(opts Options) error {
	if err := os.MkdirAll(filepath.Join(opts.OutDir, "src"), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create crate directory %s", opts.OutDir)
	}

	if err := writeManifest(opts); err != nil {
		return err
	}

	world, err := resolveWorldName(opts.APIDir)
	if err != nil {
		return err
	}

	imports, err := worldInterfaceImports(opts.APIDir)
	if err != nil {
		return err
	}

	modules, err := buildModules(opts.APIDir)
	if err != nil {
		return err
	}

	libRS := renderLibRS(world, imports, modules)
	libPath := filepath.Join(opts.OutDir, "src", "lib.rs")
	if err := os.WriteFile(libPath, []byte(libRS), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", libPath)
	}

	if err := copyWitFiles(opts.APIDir, filepath.Join(opts.OutDir, "target", "wit")); err != nil {
		return err
	}

	logger.Infof("generated caller crate %s in %s", opts.CrateName, opts.OutDir)
	return nil
}

const manifestTemplate = `[package]
name = "%s"
version = "0.1.0"
edition = "2021"
publish = false

[dependencies]
anyhow = "1.0"
process_macros = "0.1.0"
futures-util = "0.3"
serde = { version = "1.0", features = ["derive"] }
serde_json = "1.0"
hyperware_process_lib = %s
once_cell = "1.20.2"
futures = "0.3"
uuid = { version = "1.0" }
wit-bindgen = "0.41.0"

[lib]
crate-type = ["cdylib", "lib"]
`

func writeManifest(opts Options) error {
	content := fmt.Sprintf(manifestTemplate,
		strings.ReplaceAll(opts.CrateName, "-", "_"), opts.ProcessLibDep)
	path := filepath.Join(opts.OutDir, "Cargo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// resolveWorldName picks the world the generated crate binds: the types-
// prefixed world when exactly one exists, or a synthesized aggregate world
// including each when there are several. No types- world at all means the
// workspace has not been generated yet.
func resolveWorldName(apiDir string) (string, error) {
	var worlds []string
	err := eachWorldFile(apiDir, func(path string, w *wit.World) {
		if strings.HasPrefix(w.Name, "types-") {
			worlds = append(worlds, w.Name)
		}
	})
	if err != nil {
		return "", err
	}
	sort.Strings(worlds)

	switch len(worlds) {
	case 0:
		return "", errors.New("no types- world found in any WIT file; run interface generation first")
	case 1:
		return worlds[0], nil
	}

	// several process worlds: bind an umbrella world including them all
	var b strings.Builder
	b.WriteString("world types {\n")
	for _, w := range worlds {
		fmt.Fprintf(&b, "    include %s;\n", w)
	}
	b.WriteString("}\n")
	path := filepath.Join(apiDir, "types.wit")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return "types", nil
}

// worldInterfaceImports collects every interface imported by any world file,
// deduplicated, in sorted order.
func worldInterfaceImports(apiDir string) ([]string, error) {
	seen := map[string]bool{}
	var imports []string
	err := eachWorldFile(apiDir, func(path string, w *wit.World) {
		for _, line := range w.Imports {
			name := strings.TrimSuffix(strings.TrimPrefix(line, "import "), ";")
			name = strings.TrimSpace(name)
			if name != "" && !seen[name] {
				seen[name] = true
				imports = append(imports, name)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(imports)
	return imports, nil
}

func eachWorldFile(apiDir string, visit func(path string, w *wit.World)) error {
	paths, err := witFiles(apiDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read WIT file %s", path)
		}
		if !wit.ContainsWorld(string(content)) {
			continue
		}
		if w, ok := wit.ParseWorld(string(content)); ok {
			visit(path, w)
		}
	}
	return nil
}

func witFiles(apiDir string) ([]string, error) {
	entries, err := os.ReadDir(apiDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read API directory %s", apiDir)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".wit") {
			paths = append(paths, filepath.Join(apiDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// module is the generated stub content for one interface.
type module struct {
	name    string // snake_case module name
	content string
}

// buildModules parses every interface file and renders its stub functions.
// Interfaces with no signature records produce no module.
func buildModules(apiDir string) ([]module, error) {
	paths, err := witFiles(apiDir)
	if err != nil {
		return nil, err
	}

	var modules []module
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read WIT file %s", path)
		}
		if wit.ContainsWorld(string(content)) {
			continue
		}

		doc := wit.ParseInterface(string(content))
		if len(doc.Signatures) == 0 {
			logger.Debugw("no signature records, skipping module", "file", path)
			continue
		}

		var fns []string
		for _, sig := range doc.Signatures {
			if fn, ok := GenerateFunction(sig); ok {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			continue
		}

		ifaceName := strings.TrimSuffix(filepath.Base(path), ".wit")
		modules = append(modules, module{
			name:    naming.ToSnakeCase(ifaceName),
			content: strings.Join(fns, "\n\n"),
		})
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].name < modules[j].name })
	return modules, nil
}

// GenerateFunction renders one async RPC wrapper for a signature record.
// Returns false for http signatures: HTTP endpoints are server-bound, not
// RPC-callable from this crate.
func GenerateFunction(sig wit.SignatureStruct) (string, bool) {
	if sig.Attr == wit.AttrHTTP {
		return "", false
	}

	snakeName := naming.ToSnakeCase(sig.FunctionName)
	pascalName := naming.ToPascalCase(sig.FunctionName)
	fnName := fmt.Sprintf("%s_%s_rpc", snakeName, sig.Attr)

	targetType := "&Address"
	if t, ok := targetField(sig); ok && t == "string" {
		targetType = "&str"
	}

	params := []string{"target: " + targetType}
	var paramNames []string
	for _, f := range sig.Params() {
		name := naming.ToSnakeCase(f.Name)
		params = append(params, fmt.Sprintf("%s: %s", name, WitTypeToRust(f.Type)))
		paramNames = append(paramNames, name)
	}

	returnType := "()"
	if ret, ok := sig.Returning(); ok {
		returnType = WitTypeToRust(ret)
	}

	var jsonBody string
	switch len(paramNames) {
	case 0:
		jsonBody = fmt.Sprintf("json!({%q: null})", pascalName)
	case 1:
		jsonBody = fmt.Sprintf("json!({%q: %s})", pascalName, paramNames[0])
	default:
		jsonBody = fmt.Sprintf("json!({%q: (%s)})", pascalName, strings.Join(paramNames, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/// Generated stub for `%s` %s RPC call\n", sig.FunctionName, sig.Attr)
	fmt.Fprintf(&b, "pub async fn %s(%s) -> Result<%s, AppSendError> {\n",
		fnName, strings.Join(params, ", "), returnType)
	fmt.Fprintf(&b, "    let body = %s;\n", jsonBody)
	b.WriteString("    let body = serde_json::to_vec(&body).unwrap();\n")
	b.WriteString("    let request = Request::to(target)\n")
	b.WriteString("        .body(body);\n")
	fmt.Fprintf(&b, "    send::<%s>(request).await\n", returnType)
	b.WriteString("}")
	return b.String(), true
}

func targetField(sig wit.SignatureStruct) (string, bool) {
	for _, f := range sig.Fields {
		if f.Name == "target" {
			return f.Type, true
		}
	}
	return "", false
}

func renderLibRS(world string, imports []string, modules []module) string {
	var b strings.Builder

	b.WriteString("wit_bindgen::generate!({\n")
	b.WriteString("    path: \"target/wit\",\n")
	fmt.Fprintf(&b, "    world: %q,\n", world)
	b.WriteString("    generate_unused_types: true,\n")
	b.WriteString("    additional_derives: [serde::Deserialize, serde::Serialize, process_macros::SerdeJsonInto],\n")
	b.WriteString("});\n\n")

	b.WriteString("/// Generated caller utilities for RPC function stubs\n\n")
	b.WriteString("pub use hyperware_process_lib::hyperapp::AppSendError;\n")
	b.WriteString("pub use hyperware_process_lib::hyperapp::send;\n")
	b.WriteString("pub use hyperware_process_lib::{Address, Request};\n")
	b.WriteString("use serde_json::json;\n\n")

	if len(imports) > 0 {
		b.WriteString("// Import types from each interface\n")
		for _, iface := range imports {
			fmt.Fprintf(&b, "pub use crate::hyperware::process::%s::*;\n", naming.ToSnakeCase(iface))
		}
		b.WriteString("\n")
	}

	for _, m := range modules {
		fmt.Fprintf(&b, "/// Generated RPC stubs for the %s interface\n", m.name)
		fmt.Fprintf(&b, "pub mod %s {\n", m.name)
		b.WriteString("    use crate::*;\n\n")
		b.WriteString("    " + strings.ReplaceAll(m.content, "\n", "\n    ") + "\n")
		b.WriteString("}\n\n")
	}

	return b.String()
}

// copyWitFiles mirrors the API directory's WIT files into the crate's
// target/wit directory, replacing any stale copy wholesale.
func copyWitFiles(apiDir, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "failed to clean %s", dst)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	paths, err := witFiles(apiDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}
		target := filepath.Join(dst, filepath.Base(path))
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", target)
		}
	}
	return nil
}
