// Package depgraph models the dependency relationships between compose
// services as a directed graph and keeps interactive selections closed
// under those relationships.
package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Service is one graph node as declared by the compose reader: a name plus
// the names it requires (links and depends_on, already merged into one set
// by the caller, duplicates tolerated here).
type Service struct {
	Name      string
	DependsOn []string
}

// MissingRef is one unresolvable edge: Dependant declares a dependency on
// Dependency, but no service with that name exists.
type MissingRef struct {
	Dependant  string
	Dependency string
}

// MissingDependencyError reports every unresolvable edge found while
// building a Graph. All problems are collected in one pass so the operator
// can fix the compose file once instead of replaying failures.
type MissingDependencyError struct {
	Refs []MissingRef
}

func (e *MissingDependencyError) Error() string {
	parts := make([]string, 0, len(e.Refs))
	for _, r := range e.Refs {
		parts = append(parts, fmt.Sprintf("%q depends on undeclared service %q", r.Dependant, r.Dependency))
	}
	return "unresolvable dependencies: " + strings.Join(parts, "; ")
}

// Graph is an immutable directed dependency graph over service names.
// Display order is the declaration order of the services it was built from.
type Graph struct {
	names      []string
	dependsOn  map[string]map[string]bool
	requiredBy map[string]map[string]bool
}

// New validates and indexes the given services. Dependency names must all
// resolve to declared services; otherwise New returns a
// *MissingDependencyError listing every bad (dependant, dependency) pair.
func New(services []Service) (*Graph, error) {
	g := &Graph{
		names:      make([]string, 0, len(services)),
		dependsOn:  make(map[string]map[string]bool, len(services)),
		requiredBy: make(map[string]map[string]bool, len(services)),
	}

	for _, s := range services {
		if _, ok := g.dependsOn[s.Name]; ok {
			continue // first declaration wins
		}
		g.names = append(g.names, s.Name)
		deps := make(map[string]bool, len(s.DependsOn))
		for _, d := range s.DependsOn {
			deps[d] = true
		}
		g.dependsOn[s.Name] = deps
	}

	var missing []MissingRef
	for _, name := range g.names {
		for dep := range g.dependsOn[name] {
			if _, ok := g.dependsOn[dep]; !ok {
				missing = append(missing, MissingRef{Dependant: name, Dependency: dep})
			}
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool {
			if missing[i].Dependant != missing[j].Dependant {
				return missing[i].Dependant < missing[j].Dependant
			}
			return missing[i].Dependency < missing[j].Dependency
		})
		return nil, &MissingDependencyError{Refs: missing}
	}

	// Invert each forward edge once to build the dependants index.
	for _, name := range g.names {
		g.requiredBy[name] = make(map[string]bool)
	}
	for _, name := range g.names {
		for dep := range g.dependsOn[name] {
			g.requiredBy[dep][name] = true
		}
	}

	return g, nil
}

// Names returns the service names in display order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Len returns the number of services in the graph.
func (g *Graph) Len() int { return len(g.names) }

// DependsOn returns the direct dependencies of name, sorted for stable output.
func (g *Graph) DependsOn(name string) []string {
	return sortedKeys(g.dependsOn[name])
}

// RequiredBy returns the direct dependants of name, sorted for stable output.
func (g *Graph) RequiredBy(name string) []string {
	return sortedKeys(g.requiredBy[name])
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
