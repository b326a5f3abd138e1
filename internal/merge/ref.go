package merge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-entgen/pkg/choice"
)

// CombineRefSelections folds selections sharing a ref into one pooled
// selection: the first member is the template, Min is the sum of member
// minimums, Max is the sum of member maximums only when every member
// has one (a single unbounded member makes the pool unbounded), and
// Options is the union of all member options deduplicated by key and
// ordered by key.
func CombineRefSelections(selections []choice.Selection) choice.Selection {
	if len(selections) == 0 {
		return choice.Selection{}
	}
	out := choice.CloneSelections(selections[:1])[0]

	min := 0
	max := 0
	bounded := true
	byKey := make(map[string]choice.Option)
	keys := make([]string, 0, len(selections))
	for _, s := range selections {
		min += s.Min
		if s.Max == nil {
			bounded = false
		} else if bounded {
			max += *s.Max
		}
		for _, o := range s.Options {
			if _, ok := byKey[o.Key]; ok {
				continue
			}
			byKey[o.Key] = choice.CloneOptions([]choice.Option{o})[0]
			keys = append(keys, o.Key)
		}
	}

	out.Min = min
	if bounded {
		out.Max = &max
	} else {
		out.Max = nil
	}

	sort.Strings(keys)
	pooled := make([]choice.Option, 0, len(keys))
	for _, k := range keys {
		pooled = append(pooled, byKey[k])
	}
	out.Options = pooled
	return out
}

// RefMap indexes pooled selections by the path of every member
// selection, so a chosen option can be resolved inside the combined
// cross-branch pool instead of its original template node.
type RefMap struct {
	byPath map[string]*choice.Selection
}

// NewRefMap walks every selection in the template (the full tree, not
// pruned by populated paths), groups those carrying a Ref, and pools
// each group.
func NewRefMap(t *choice.Template) *RefMap {
	m := &RefMap{byPath: make(map[string]*choice.Selection)}
	if t == nil {
		return m
	}

	groups := make(map[string][]choice.Selection)
	paths := make(map[string][][]string)
	var walk func(selections []choice.Selection, prefix []string)
	walk = func(selections []choice.Selection, prefix []string) {
		for _, s := range selections {
			p := append(append([]string(nil), prefix...), s.Key)
			if s.Ref != "" {
				groups[s.Ref] = append(groups[s.Ref], s)
				paths[s.Ref] = append(paths[s.Ref], p)
			}
			for i, o := range s.Options {
				walk(o.Selections, append(p, componentOf(o, i)))
			}
		}
	}
	walk(t.Selections, nil)

	for ref, members := range groups {
		pooled := CombineRefSelections(members)
		for _, p := range paths[ref] {
			m.byPath[joinPath(p)] = &pooled
		}
	}
	return m
}

// Lookup returns the pooled selection for a selection path, when that
// selection is part of a ref pool.
func (m *RefMap) Lookup(selectionPath []string) (*choice.Selection, bool) {
	if m == nil || len(m.byPath) == 0 {
		return nil, false
	}
	pooled, ok := m.byPath[joinPath(selectionPath)]
	return pooled, ok
}

// componentOf mirrors the flattener: an option contributes its key, or
// its sibling position when it has none, so ref-map paths line up with
// flat-option paths.
func componentOf(o choice.Option, index int) string {
	if o.Key != "" {
		return o.Key
	}
	return strconv.Itoa(index)
}

// joinPath uses a separator that cannot appear in authored keys coming
// from document sources (the parser rejects it) to keep lookups exact.
func joinPath(path []string) string {
	return strings.Join(path, "\x1f")
}
