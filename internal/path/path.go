// Package path translates between the flat key/index paths recorded in
// a raw entity and the array-indexed coordinates of a template, and
// builds the populated-path prefix set the selection resolver prunes
// with. Flat paths alternate selection key and option key (or decimal
// position when the option has no key).
package path

import (
	"errors"
	"strconv"

	"github.com/goliatone/go-entgen/pkg/choice"
)

// ErrNotFound reports a flat path that no longer matches any node.
// Dangling references are expected with stale user data; callers skip
// them rather than failing the build.
var ErrNotFound = errors.New("path: no matching node")

// ResolveTemplatePath resolves a flat path against the template,
// replacing each key with its array index. The path must alternate
// selection key then option key starting at the template root.
func ResolveTemplatePath(t *choice.Template, flat []string) ([]int, error) {
	if t == nil || len(flat) == 0 {
		return nil, ErrNotFound
	}
	indexes := make([]int, 0, len(flat))
	selections := t.Selections
	for i := 0; i < len(flat); i += 2 {
		si := selectionIndex(selections, flat[i])
		if si < 0 {
			return nil, ErrNotFound
		}
		indexes = append(indexes, si)
		if i+1 == len(flat) {
			return indexes, nil
		}
		oi := optionIndex(selections[si].Options, flat[i+1])
		if oi < 0 {
			return nil, ErrNotFound
		}
		indexes = append(indexes, oi)
		selections = selections[si].Options[oi].Selections
	}
	return indexes, nil
}

// OptionAt returns the template option node a flat path addresses. The
// path must end on an option component.
func OptionAt(t *choice.Template, flat []string) (*choice.Option, error) {
	if t == nil || len(flat) < 2 || len(flat)%2 != 0 {
		return nil, ErrNotFound
	}
	selections := t.Selections
	for i := 0; i < len(flat); i += 2 {
		si := selectionIndex(selections, flat[i])
		if si < 0 {
			return nil, ErrNotFound
		}
		oi := optionIndex(selections[si].Options, flat[i+1])
		if oi < 0 {
			return nil, ErrNotFound
		}
		opt := &selections[si].Options[oi]
		if i+2 == len(flat) {
			return opt, nil
		}
		selections = opt.Selections
	}
	return nil, ErrNotFound
}

// ResolveEntityPath resolves a flat path through the raw entity's
// structure. A numeric flat component is taken as an explicit position;
// a key component resolves to the position of the matching chosen
// option. Because raw entities store every selection as an ordered
// sequence, singular selections resolve like any other: their index is
// simply 0. The template is consulted to confirm the path still
// addresses authored nodes.
func ResolveEntityPath(t *choice.Template, raw *choice.RawEntity, flat []string) (choice.EntityPath, error) {
	if t == nil || raw == nil || len(flat) == 0 || len(flat)%2 != 0 {
		return nil, ErrNotFound
	}
	out := make(choice.EntityPath, 0, len(flat)/2)
	selections := t.Selections
	rawSelections := raw.Selections
	for i := 0; i < len(flat); i += 2 {
		si := selectionIndex(selections, flat[i])
		if si < 0 {
			return nil, ErrNotFound
		}
		rs := rawSelection(rawSelections, flat[i])
		if rs == nil {
			return nil, ErrNotFound
		}
		idx := chosenIndex(rs.Chosen, flat[i+1])
		if idx < 0 || idx >= len(rs.Chosen) {
			return nil, ErrNotFound
		}
		out = append(out, choice.EntityStep{Selection: flat[i], Index: idx})

		chosen := rs.Chosen[idx]
		oi := optionIndex(selections[si].Options, componentKey(chosen, flat[i+1]))
		if oi < 0 {
			return nil, ErrNotFound
		}
		selections = selections[si].Options[oi].Selections
		rawSelections = chosen.Selections
	}
	return out, nil
}

func selectionIndex(selections []choice.Selection, key string) int {
	for i, s := range selections {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// optionIndex matches by key first; a purely numeric component falls
// back to positional addressing for unkeyed options.
func optionIndex(options []choice.Option, component string) int {
	for i, o := range options {
		if o.Key != "" && o.Key == component {
			return i
		}
	}
	if n, err := strconv.Atoi(component); err == nil && n >= 0 && n < len(options) {
		return n
	}
	return -1
}

func rawSelection(selections []choice.RawSelection, key string) *choice.RawSelection {
	for i := range selections {
		if selections[i].Key == key {
			return &selections[i]
		}
	}
	return nil
}

func chosenIndex(chosen []choice.ChosenOption, component string) int {
	if n, err := strconv.Atoi(component); err == nil {
		return n
	}
	for i, c := range chosen {
		if c.Key == component {
			return i
		}
	}
	return -1
}

// componentKey recovers the template-side lookup key for a chosen
// option: its own key when present, otherwise the original flat
// component (a position, which optionIndex resolves numerically).
func componentKey(chosen choice.ChosenOption, component string) string {
	if chosen.Key != "" {
		return chosen.Key
	}
	return component
}
