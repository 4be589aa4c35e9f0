package witgen

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/rustsrc"
)

// componentPackageMarker in Cargo metadata identifies a process crate.
const componentPackageMarker = "hyperware:process"

// processLibCrate is the runtime library every process depends on. Its
// dependency spec is propagated into the generated caller crate manifest.
const processLibCrate = "hyperware_process_lib"

// defaultProcessLibDep applies when no process declares the dependency.
const defaultProcessLibDep = `{ git = "https://github.com/hyperware-ai/hyperprocess-macro", rev = "4c944b2" }`

type cargoManifest struct {
	Package struct {
		Name     string `toml:"name"`
		Metadata struct {
			Component struct {
				Package string `toml:"package"`
			} `toml:"component"`
		} `toml:"metadata"`
	} `toml:"package"`
	Dependencies map[string]any `toml:"dependencies"`
}

// Project is one process crate discovered under the workspace root.
type Project struct {
	Dir  string
	Name string
}

func readManifest(path string) (*cargoManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var m cargoManifest
	if err := toml.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &m, nil
}

// DiscoverProjects finds process crates in the immediate subdirectories of
// root: those whose Cargo.toml declares the component package marker.
// Directories without the marker are not processes and are silently skipped.
func DiscoverProjects(root string) ([]Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workspace root %s", root)
	}

	var projects []Project
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || e.Name() == "target" {
			continue
		}
		dir := filepath.Join(root, e.Name())
		manifestPath := filepath.Join(dir, "Cargo.toml")
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}
		m, err := readManifest(manifestPath)
		if err != nil {
			logger.Debugw("skipping unparseable manifest", "path", manifestPath, "error", err)
			continue
		}
		if m.Package.Metadata.Component.Package != componentPackageMarker {
			logger.Debugw("no component package metadata", "path", manifestPath)
			continue
		}
		name := m.Package.Name
		if name == "" {
			name = e.Name()
		}
		projects = append(projects, Project{Dir: dir, Name: name})
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Dir < projects[j].Dir })
	logger.Debugw("discovered process projects", "count", len(projects))
	return projects, nil
}

// LoadSources parses every .rs file under the project's src directory in
// path order. The second return is the primary lib.rs, nil when the project
// has none (the project is then skipped, not failed).
func LoadSources(p Project) ([]*rustsrc.File, *rustsrc.File, error) {
	srcDir := filepath.Join(p.Dir, "src")
	var paths []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rs") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, "failed to walk %s", srcDir)
	}
	sort.Strings(paths)

	libPath := filepath.Join(srcDir, "lib.rs")
	var files []*rustsrc.File
	var primary *rustsrc.File
	for _, path := range paths {
		f, err := rustsrc.ParseFile(path)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, f)
		if path == libPath {
			primary = f
		}
	}
	return files, primary, nil
}

// ProcessLibDependency resolves the runtime library dependency spec shared
// by the workspace's process crates. Every process must pin the same spec;
// conflicting specs are an error since the generated caller crate can only
// link one.
func ProcessLibDependency(projects []Project) (string, error) {
	type found struct {
		project string
		dep     string
	}
	var deps []found
	for _, p := range projects {
		m, err := readManifest(filepath.Join(p.Dir, "Cargo.toml"))
		if err != nil {
			continue
		}
		raw, ok := m.Dependencies[processLibCrate]
		if !ok {
			continue
		}
		rendered, ok := renderTOMLDependency(raw)
		if !ok {
			continue
		}
		deps = append(deps, found{project: p.Name, dep: rendered})
	}

	if len(deps) == 0 {
		logger.Warnf("no %s dependency found in any process, using default", processLibCrate)
		return defaultProcessLibDep, nil
	}
	for _, d := range deps[1:] {
		if !sameDependencySpec(deps[0].dep, d.dep) {
			return "", errors.Newf(
				"conflicting %s versions: process %s uses %s, process %s uses %s; all processes must use the same version",
				processLibCrate, deps[0].project, deps[0].dep, d.project, d.dep)
		}
	}
	logger.Debugw("resolved process lib dependency", "dep", deps[0].dep)
	return deps[0].dep, nil
}

// sameDependencySpec reports whether two rendered dependency specs pin the
// same requirement. Plain version strings compare as semver, so "1.0" and
// "1.0.0" are one requirement rather than a conflict; structured specs
// (git/rev/path) must match exactly.
func sameDependencySpec(a, b string) bool {
	if a == b {
		return true
	}
	av, aok := bareVersion(a)
	bv, bok := bareVersion(b)
	if !aok || !bok {
		return false
	}
	va, errA := semver.NewVersion(av)
	vb, errB := semver.NewVersion(bv)
	return errA == nil && errB == nil && va.Equal(vb)
}

// bareVersion unwraps a rendered plain-version spec like `"1.0"`.
func bareVersion(dep string) (string, bool) {
	if len(dep) >= 2 && strings.HasPrefix(dep, `"`) && strings.HasSuffix(dep, `"`) {
		return dep[1 : len(dep)-1], true
	}
	return "", false
}

// renderTOMLDependency turns a parsed Cargo dependency value back into its
// inline TOML form, keeping only the keys the generated manifest needs.
func renderTOMLDependency(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t), true
	case map[string]any:
		var parts []string
		for _, key := range []string{"git", "rev", "branch", "tag", "version", "path"} {
			if s, ok := t[key].(string); ok {
				parts = append(parts, fmt.Sprintf("%s = %q", key, s))
			}
		}
		if raw, ok := t["features"].([]any); ok {
			var features []string
			for _, f := range raw {
				if s, ok := f.(string); ok {
					features = append(features, fmt.Sprintf("%q", s))
				}
			}
			parts = append(parts, fmt.Sprintf("features = [%s]", strings.Join(features, ", ")))
		}
		if len(parts) == 0 {
			return "", false
		}
		return "{ " + strings.Join(parts, ", ") + " }", true
	}
	return "", false
}
