package path

import (
	"strconv"

	"github.com/goliatone/go-entgen/pkg/choice"
)

// Flatten reduces a raw entity's choice tree to one FlatOption per
// chosen option node, depth-first in document order. Intermediate picks
// that expose nested selections still contribute their own entry: their
// modifiers and plugins apply regardless of what was chosen beneath
// them.
func Flatten(raw *choice.RawEntity) []choice.FlatOption {
	if raw == nil {
		return nil
	}
	var out []choice.FlatOption
	flattenSelections(raw.Selections, nil, &out)
	return out
}

func flattenSelections(selections []choice.RawSelection, prefix []string, out *[]choice.FlatOption) {
	for _, rs := range selections {
		for i, chosen := range rs.Chosen {
			component := chosen.Key
			if component == "" {
				component = strconv.Itoa(i)
			}
			p := make([]string, 0, len(prefix)+2)
			p = append(p, prefix...)
			p = append(p, rs.Key, component)
			*out = append(*out, choice.FlatOption{Path: p, Value: chosen.Value})
			flattenSelections(chosen.Selections, p, out)
		}
	}
}

// Set is a prefix set over flat paths: a sparse "is this subtree
// touched" index used to prune template traversal.
type Set struct {
	children map[string]*Set
}

// Populated builds the prefix set of every flat-option path present in
// the raw entity.
func Populated(raw *choice.RawEntity) *Set {
	root := &Set{}
	for _, fo := range Flatten(raw) {
		root.add(fo.Path)
	}
	return root
}

func (s *Set) add(path []string) {
	node := s
	for _, component := range path {
		if node.children == nil {
			node.children = make(map[string]*Set)
		}
		next, ok := node.children[component]
		if !ok {
			next = &Set{}
			node.children[component] = next
		}
		node = next
	}
}

// Has reports whether path (or any extension of it) was recorded. The
// empty path is always present.
func (s *Set) Has(path []string) bool {
	if s == nil {
		return false
	}
	node := s
	for _, component := range path {
		next, ok := node.children[component]
		if !ok {
			return false
		}
		node = next
	}
	return true
}
