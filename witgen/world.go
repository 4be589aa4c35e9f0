package witgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/wit"
)

// typesWorldPrefix marks a types-only world. A world named types-X receives
// the imports destined for world X.
const typesWorldPrefix = "types-"

// WorldUpdate is one generated interface registered for a named world.
type WorldUpdate struct {
	World     string
	Interface string // kebab-case interface name
}

// UpdateWorlds merges generated interface imports into the world files under
// apiDir. Existing worlds are matched by exact name or by their types-
// prefixed variant; their imports and includes are preserved and only added
// to, never removed. World names with no existing file get a fresh pair of
// files synthesized, a types-only world including the base library world and
// a bare world including the default process API world.
func UpdateWorlds(apiDir string, updates []WorldUpdate) error {
	pending := map[string]map[string]bool{}
	for _, u := range updates {
		if pending[u.World] == nil {
			pending[u.World] = map[string]bool{}
		}
		pending[u.World][fmt.Sprintf("import %s;", u.Interface)] = true
	}
	if len(pending) == 0 {
		return nil
	}

	entries, err := os.ReadDir(apiDir)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read API directory %s", apiDir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".wit") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(apiDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read WIT file %s", path)
		}
		if !wit.ContainsWorld(string(content)) {
			continue
		}
		w, ok := wit.ParseWorld(string(content))
		if !ok {
			continue
		}

		target := matchWorld(w.Name, pending)
		if target == "" {
			continue
		}
		mergeImports(w, pending[target])
		if err := os.WriteFile(path, []byte(renderWorld(w)), 0o644); err != nil {
			return errors.Wrapf(err, "failed to rewrite world file %s", path)
		}
		logger.Infof("updated world %s in %s", w.Name, path)
		delete(pending, target)
	}

	var remaining []string
	for world := range pending {
		remaining = append(remaining, world)
	}
	sort.Strings(remaining)

	for _, world := range remaining {
		imports := pending[world]

		typesWorld := &wit.World{Name: typesWorldPrefix + world, Includes: []string{"include lib;"}}
		mergeImports(typesWorld, imports)

		bareWorld := &wit.World{Name: world, Includes: []string{"include process-v1;"}}
		mergeImports(bareWorld, imports)

		for _, w := range []*wit.World{typesWorld, bareWorld} {
			path := filepath.Join(apiDir, w.Name+".wit")
			if err := os.WriteFile(path, []byte(renderWorld(w)), 0o644); err != nil {
				return errors.Wrapf(err, "failed to write world file %s", path)
			}
			logger.Infof("created world %s in %s", w.Name, path)
		}
	}
	return nil
}

// matchWorld resolves which pending world name an existing world serves:
// its own name, or the name its types- prefix strips to.
func matchWorld(name string, pending map[string]map[string]bool) string {
	if _, ok := pending[name]; ok {
		return name
	}
	if stripped := strings.TrimPrefix(name, typesWorldPrefix); stripped != name {
		if _, ok := pending[stripped]; ok {
			return stripped
		}
	}
	return ""
}

// mergeImports adds import statements not already present, deduplicating by
// trimmed text, and leaves the final import list sorted.
func mergeImports(w *wit.World, imports map[string]bool) {
	present := map[string]bool{}
	for _, line := range w.Imports {
		present[strings.TrimSpace(line)] = true
	}
	for line := range imports {
		if !present[line] {
			present[line] = true
			w.Imports = append(w.Imports, line)
		}
	}
	sort.Strings(w.Imports)
}

func renderWorld(w *wit.World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "world %s {\n", w.Name)
	for _, line := range w.Imports {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	for _, line := range w.Includes {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	b.WriteString("}\n")
	return b.String()
}
