// Package witgen implements the IDL generation side of the pipeline: it
// discovers process crates in a workspace, analyzes their annotated impl
// blocks, resolves and orders the custom type closure, and writes one WIT
// interface file per process plus the merged world files the interfaces
// register into.
package witgen

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/wit"
)

// Options configures one generation run over a workspace.
type Options struct {
	// RootDir is the workspace root containing process crate directories.
	RootDir string
	// APIDir receives the generated WIT files. Defaults to <RootDir>/api.
	APIDir string
	// Jobs caps concurrent project analyses. Zero means unbounded.
	Jobs int
}

func (o Options) apiDir() string {
	if o.APIDir != "" {
		return o.APIDir
	}
	return filepath.Join(o.RootDir, "api")
}

// GeneratedInterface records one interface file written during a run.
type GeneratedInterface struct {
	Project   string
	Interface string
	World     string
	Path      string
}

// Generate runs the full IDL generation pass. Per-project analysis is
// independent and runs in parallel; world-file merging happens strictly
// after every analysis has finished, since it needs the complete set of
// (interface, world) pairs. The first failing project aborts the run.
func Generate(ctx context.Context, opts Options) ([]GeneratedInterface, error) {
	apiDir := opts.apiDir()
	if err := os.MkdirAll(apiDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create API directory %s", apiDir)
	}

	projects, err := DiscoverProjects(opts.RootDir)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}

	var mu sync.Mutex
	var results []GeneratedInterface

	for _, p := range projects {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := generateProject(p, apiDir)
			if err != nil {
				return errors.Wrapf(err, "project %s", p.Name)
			}
			if res == nil {
				return nil
			}
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Interface < results[j].Interface })

	updates := make([]WorldUpdate, 0, len(results))
	for _, r := range results {
		updates = append(updates, WorldUpdate{World: r.World, Interface: r.Interface})
	}
	if err := UpdateWorlds(apiDir, updates); err != nil {
		return nil, err
	}
	return results, nil
}

// generateProject runs analysis through interface write for one process
// crate. A nil result means the crate is not a process and was skipped.
func generateProject(p Project, apiDir string) (*GeneratedInterface, error) {
	files, primary, err := LoadSources(p)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		logger.Debugw("no primary source file, skipping", "project", p.Name)
		return nil, nil
	}

	analysis, err := AnalyzeImpl(primary)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		logger.Debugw("no process impl block, skipping", "project", p.Name)
		return nil, nil
	}

	defs, err := ResolveClosure(analysis.UsedTypes, files)
	if err != nil {
		return nil, err
	}
	sorted := SortDefinitions(defs)
	if err := VerifyClosure(sorted, analysis.Signatures); err != nil {
		return nil, err
	}

	content := RenderInterface(analysis.InterfaceName, sorted, analysis.Signatures)
	path := filepath.Join(apiDir, analysis.InterfaceName+".wit")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write interface file %s", path)
	}
	logger.Infof("generated interface %s (world %s) for project %s",
		analysis.InterfaceName, analysis.WorldName, p.Name)

	return &GeneratedInterface{
		Project:   p.Name,
		Interface: analysis.InterfaceName,
		World:     analysis.WorldName,
		Path:      path,
	}, nil
}

// VerifyClosure enforces the completeness invariant before emission: every
// custom type referenced by any signature field, at any nesting depth, must
// have a resolved definition.
func VerifyClosure(defs []wit.TypeDefinition, sigs []wit.SignatureStruct) error {
	defined := make(map[string]bool, len(defs))
	for _, d := range defs {
		defined[d.KebabName] = true
	}

	var missing []string
	seen := map[string]bool{}
	for _, sig := range sigs {
		for _, f := range sig.Fields {
			for _, name := range wit.CustomTypeNames(f.Type) {
				if !defined[name] && !seen[name] {
					seen[name] = true
					missing = append(missing, name)
				}
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.IncompleteClosuref("interface references undefined types: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
