package derive

import (
	"sync"
)

// watchGraph tracks which components watch which signals, so a signal write
// can mark exactly its dependents dirty.
type watchGraph struct {
	downstream map[AnySignal][]*Component
	upstream   map[*Component][]AnySignal
	mu         sync.RWMutex
}

func newWatchGraph() *watchGraph {
	return &watchGraph{
		downstream: make(map[AnySignal][]*Component),
		upstream:   make(map[*Component][]AnySignal),
	}
}

// addEdge records that a component read a signal during render
func (g *watchGraph) addEdge(sig AnySignal, c *Component) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.downstream[sig] = appendUnique(g.downstream[sig], c)
	g.upstream[c] = appendUnique(g.upstream[c], sig)
}

// removeComponent drops all edges touching a component (on unmount)
func (g *watchGraph) removeComponent(c *Component) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, sig := range g.upstream[c] {
		g.downstream[sig] = removeElement(g.downstream[sig], c)
		if len(g.downstream[sig]) == 0 {
			delete(g.downstream, sig)
		}
	}
	delete(g.upstream, c)
}

// dependents returns a copy of the components watching a signal
func (g *watchGraph) dependents(sig AnySignal) []*Component {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if deps, exists := g.downstream[sig]; exists {
		result := make([]*Component, len(deps))
		copy(result, deps)
		return result
	}
	return nil
}

// watched returns a copy of the signals a component currently watches
func (g *watchGraph) watched(c *Component) []AnySignal {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if sigs, exists := g.upstream[c]; exists {
		result := make([]AnySignal, len(sigs))
		copy(result, sigs)
		return result
	}
	return nil
}

// Utility functions for working with slices efficiently

func appendUnique[T comparable](slice []T, item T) []T {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeElement[T comparable](slice []T, item T) []T {
	for i, existing := range slice {
		if existing == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
