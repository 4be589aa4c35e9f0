package witgen

import (
	"sort"
	"strings"

	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/wit"
)

// SortDefinitions orders type definitions dependencies-first using Kahn's
// algorithm, breaking ties lexicographically so repeated runs emit identical
// files. Cycles degrade softly: the cyclic remainder is appended in sorted
// order with a warning, since the interface grammar tolerates forward
// references in practice.
func SortDefinitions(defs []wit.TypeDefinition) []wit.TypeDefinition {
	byName := make(map[string]wit.TypeDefinition, len(defs))
	for _, d := range defs {
		byName[d.KebabName] = d
	}

	indegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))
	for _, d := range defs {
		indegree[d.KebabName] = 0
	}
	for _, d := range defs {
		for dep := range d.Dependencies {
			if _, present := byName[dep]; !present {
				continue // dependency on a primitive alias or external name
			}
			indegree[d.KebabName]++
			dependents[dep] = append(dependents[dep], d.KebabName)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	sorted := make([]wit.TypeDefinition, 0, len(defs))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, byName[name])

		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
	}

	if len(sorted) < len(defs) {
		var cyclic []string
		emitted := make(map[string]bool, len(sorted))
		for _, d := range sorted {
			emitted[d.KebabName] = true
		}
		for _, d := range defs {
			if !emitted[d.KebabName] {
				cyclic = append(cyclic, d.KebabName)
			}
		}
		sort.Strings(cyclic)
		logger.Warnf("dependency cycle among types: %s; emitting them in name order", strings.Join(cyclic, ", "))
		for _, name := range cyclic {
			sorted = append(sorted, byName[name])
		}
	}
	return sorted
}
