package depgraph

// CheckDependencies marks every service that name transitively requires as
// checked. The walk carries a fresh per-call visited set keyed by name, so
// dependency cycles terminate and no service is processed twice.
//
// Postcondition: every checked service has all of its transitive
// dependencies checked, provided that held before the call.
func (g *Graph) CheckDependencies(name string, checked map[string]bool) {
	visited := make(map[string]bool, len(g.names))
	g.checkWalk(name, checked, visited)
}

func (g *Graph) checkWalk(name string, checked, visited map[string]bool) {
	visited[name] = true
	for dep := range g.dependsOn[name] {
		if visited[dep] {
			continue
		}
		if !checked[dep] {
			checked[dep] = true
		}
		g.checkWalk(dep, checked, visited)
	}
}

// UncheckDependants clears every service that transitively requires name.
// Mirror of CheckDependencies over the reverse edges: anything whose
// requirement just disappeared cascades off with it.
func (g *Graph) UncheckDependants(name string, checked map[string]bool) {
	visited := make(map[string]bool, len(g.names))
	g.uncheckWalk(name, checked, visited)
}

func (g *Graph) uncheckWalk(name string, checked, visited map[string]bool) {
	visited[name] = true
	for dependant := range g.requiredBy[name] {
		if visited[dependant] {
			continue
		}
		if checked[dependant] {
			delete(checked, dependant)
		}
		g.uncheckWalk(dependant, checked, visited)
	}
}

// Toggle flips the checked flag for name and restores the closure invariant:
// checking pulls in everything name needs, unchecking pushes out everything
// that needed name. Returns the new flag value.
func (g *Graph) Toggle(name string, checked map[string]bool) bool {
	if checked[name] {
		delete(checked, name)
		g.UncheckDependants(name, checked)
		return false
	}
	checked[name] = true
	g.CheckDependencies(name, checked)
	return true
}
