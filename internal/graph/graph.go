// Package graph provides a generic topological ordering over a
// dependency map. It knows nothing about templates or effects.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// ErrCycle reports that a dependency graph cannot be linearized.
// Sort wraps it with the residual node set so callers can name the
// offending keys.
var ErrCycle = fmt.Errorf("graph: dependency cycle")

// Sort returns a linear order consistent with deps, where an edge
// n -> d means "n depends on d". The returned order places each
// dependency *after* its dependents; callers reverse it to obtain
// dependency-first application order.
//
// The graph is normalized first: any node referenced only as a
// dependency is added as a key with no dependencies of its own. Ties
// between simultaneously free nodes break lexicographically, making the
// order deterministic for a given input. An empty graph yields an empty
// order. A cycle yields an error wrapping ErrCycle, never a truncated
// order.
func Sort(deps map[string][]string) ([]string, error) {
	nodes := normalize(deps)
	if len(nodes) == 0 {
		return nil, nil
	}

	// dependents counts, per node, how many remaining nodes depend on
	// it. Nodes with zero remaining dependents are free to emit.
	dependents := make(map[string]int, len(nodes))
	for n := range nodes {
		dependents[n] = 0
	}
	for _, ds := range nodes {
		for _, d := range ds {
			dependents[d]++
		}
	}

	free := make([]string, 0, len(nodes))
	for n, count := range dependents {
		if count == 0 {
			free = append(free, n)
		}
	}
	sort.Strings(free)

	order := make([]string, 0, len(nodes))
	for len(free) > 0 {
		n := free[0]
		free = free[1:]
		order = append(order, n)

		released := make([]string, 0, len(nodes[n]))
		for _, d := range nodes[n] {
			dependents[d]--
			if dependents[d] == 0 {
				released = append(released, d)
			}
		}
		sort.Strings(released)
		free = append(free, released...)
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("%w involving %s", ErrCycle, residual(nodes, order))
	}
	return order, nil
}

// normalize copies deps, deduplicates edges, and promotes every node
// referenced only as a dependency into a key of its own.
func normalize(deps map[string][]string) map[string][]string {
	out := make(map[string][]string, len(deps))
	for n, ds := range deps {
		seen := make(map[string]bool, len(ds))
		edges := make([]string, 0, len(ds))
		for _, d := range ds {
			// Self-edges stay: a node depending on itself is a cycle
			// and must be reported, not dropped.
			if seen[d] {
				continue
			}
			seen[d] = true
			edges = append(edges, d)
		}
		out[n] = edges
	}
	for _, ds := range deps {
		for _, d := range ds {
			if _, ok := out[d]; !ok {
				out[d] = nil
			}
		}
	}
	return out
}

func residual(nodes map[string][]string, order []string) string {
	emitted := make(map[string]bool, len(order))
	for _, n := range order {
		emitted[n] = true
	}
	rest := make([]string, 0, len(nodes)-len(order))
	for n := range nodes {
		if !emitted[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return strings.Join(rest, ", ")
}
