// Package merge implements the keyed, order-preserving structural merge
// used both for ref pooling and for plugin splicing, plus the
// deterministic re-sorts applied after a merge.
package merge

import (
	"sort"

	"github.com/goliatone/go-entgen/pkg/choice"
)

// Selections merges two selection slices. Keys present on both sides
// merge recursively; the result keeps a's keys in a's order (carrying
// the merged node) followed by b-only keys in b's order.
func Selections(a, b []choice.Selection) []choice.Selection {
	if len(b) == 0 {
		return choice.CloneSelections(a)
	}
	if len(a) == 0 {
		return choice.CloneSelections(b)
	}

	bByKey := make(map[string]choice.Selection, len(b))
	for _, s := range b {
		bByKey[s.Key] = s
	}

	out := make([]choice.Selection, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s.Key] = true
		if other, ok := bByKey[s.Key]; ok {
			out = append(out, mergeSelection(s, other))
			continue
		}
		out = append(out, choice.CloneSelections([]choice.Selection{s})[0])
	}
	for _, s := range b {
		if seen[s.Key] {
			continue
		}
		out = append(out, choice.CloneSelections([]choice.Selection{s})[0])
	}
	return out
}

// Options merges two option slices with the same keyed a-then-b rule.
// Options sharing a key merge their nested selections and concatenate
// their modifier lists, a's modifiers first. Self-merge therefore
// doubles a node's modifiers; that is the documented behavior of the
// fold, not something to silently dedupe.
func Options(a, b []choice.Option) []choice.Option {
	if len(b) == 0 {
		return choice.CloneOptions(a)
	}
	if len(a) == 0 {
		return choice.CloneOptions(b)
	}

	bByKey := make(map[string]choice.Option, len(b))
	for _, o := range b {
		bByKey[o.Key] = o
	}

	out := make([]choice.Option, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a))
	for _, o := range a {
		seen[o.Key] = true
		if other, ok := bByKey[o.Key]; ok {
			out = append(out, mergeOption(o, other))
			continue
		}
		out = append(out, choice.CloneOptions([]choice.Option{o})[0])
	}
	for _, o := range b {
		if seen[o.Key] {
			continue
		}
		out = append(out, choice.CloneOptions([]choice.Option{o})[0])
	}
	return out
}

func mergeSelection(a, b choice.Selection) choice.Selection {
	out := choice.CloneSelections([]choice.Selection{a})[0]
	out.Options = Options(a.Options, b.Options)
	return out
}

func mergeOption(a, b choice.Option) choice.Option {
	out := choice.CloneOptions([]choice.Option{a})[0]
	out.Selections = Selections(a.Selections, b.Selections)
	merged := choice.CloneOptions([]choice.Option{b})[0]
	out.Modifiers = append(out.Modifiers, merged.Modifiers...)
	return out
}

// SortSelections orders sibling selections by (Order ?? DefaultOrder)
// ascending, stably, undoing the a-then-b merge ordering where authors
// declared a semantic one. Idempotent.
func SortSelections(selections []choice.Selection) {
	sort.SliceStable(selections, func(i, j int) bool {
		return choice.OrderOf(selections[i].Order, choice.DefaultOrder) <
			choice.OrderOf(selections[j].Order, choice.DefaultOrder)
	})
}

// SortOptions orders sibling options by (Order ?? DefaultOrder, Name)
// ascending, stably. Idempotent.
func SortOptions(options []choice.Option) {
	sort.SliceStable(options, func(i, j int) bool {
		oi := choice.OrderOf(options[i].Order, choice.DefaultOrder)
		oj := choice.OrderOf(options[j].Order, choice.DefaultOrder)
		if oi != oj {
			return oi < oj
		}
		return options[i].Name < options[j].Name
	})
}
