// Package resolve walks templates: it computes the currently available
// choice points for a raw entity (pruned by populated paths, filtered by
// prerequisites, pooled by ref) and derives plugin-extended templates.
package resolve

import (
	"strconv"

	"github.com/goliatone/go-entgen/internal/merge"
	"github.com/goliatone/go-entgen/internal/path"
	"github.com/goliatone/go-entgen/pkg/choice"
)

// AvailableSelections returns the choice points currently reachable for
// the raw entity, depth-first over the template. A nested selection
// surfaces only once the option above it has actually been chosen;
// grandchildren of an untouched selection never appear. Options whose
// prerequisite fails against the built entity are silently omitted
// (disqualification is a filtering outcome, not an error). Selections
// sharing a ref are pooled into one combined quota and option set, and
// the result is re-sorted into presentation order.
func AvailableSelections(raw *choice.RawEntity, built choice.BuiltEntity, t *choice.Template) []choice.Selection {
	if t == nil {
		return nil
	}
	populated := path.Populated(raw)

	var out []choice.Selection
	var walk func(selections []choice.Selection, prefix []string)
	walk = func(selections []choice.Selection, prefix []string) {
		for _, s := range selections {
			p := append(append([]string(nil), prefix...), s.Key)
			out = append(out, filterDisqualified(s, built))
			for i, o := range s.Options {
				op := append(append([]string(nil), p...), componentOf(o, i))
				if o.Key == "" {
					// Transparent wrapper: its children surface as if
					// attached to the parent level.
					walk(o.Selections, op)
					continue
				}
				if populated.Has(op) {
					walk(o.Selections, op)
				}
			}
		}
	}
	walk(t.Selections, nil)

	out = poolByRef(out)
	merge.SortSelections(out)
	return out
}

// filterDisqualified copies the selection with failing-prereq options
// dropped and the survivors in presentation order.
func filterDisqualified(s choice.Selection, built choice.BuiltEntity) choice.Selection {
	out := choice.CloneSelections([]choice.Selection{s})[0]
	kept := out.Options[:0]
	for _, o := range out.Options {
		if o.Prereq != nil && !o.Prereq(built) {
			continue
		}
		kept = append(kept, o)
	}
	out.Options = kept
	merge.SortOptions(out.Options)
	return out
}

// poolByRef folds collected selections sharing a ref into one combined
// selection, placed at the first member's position.
func poolByRef(selections []choice.Selection) []choice.Selection {
	groups := make(map[string][]choice.Selection)
	for _, s := range selections {
		if s.Ref != "" {
			groups[s.Ref] = append(groups[s.Ref], s)
		}
	}
	if len(groups) == 0 {
		return selections
	}

	out := make([]choice.Selection, 0, len(selections))
	emitted := make(map[string]bool, len(groups))
	for _, s := range selections {
		if s.Ref == "" {
			out = append(out, s)
			continue
		}
		if emitted[s.Ref] {
			continue
		}
		emitted[s.Ref] = true
		out = append(out, merge.CombineRefSelections(groups[s.Ref]))
	}
	return out
}

func componentOf(o choice.Option, index int) string {
	if o.Key != "" {
		return o.Key
	}
	return strconv.Itoa(index)
}
