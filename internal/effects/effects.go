// Package effects collects the modifiers granted by chosen options and
// folds them over the base value in dependency order.
package effects

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-entgen/internal/graph"
	"github.com/goliatone/go-entgen/internal/merge"
	"github.com/goliatone/go-entgen/internal/path"
	"github.com/goliatone/go-entgen/pkg/choice"
)

// CollectModifiers gathers the effect list for every chosen option, in
// flattening order. When a chosen option's owning selection belongs to
// a ref pool, the option is looked up in the pooled option set, which
// lets a choice draw from a cross-branch pool. Otherwise it
// resolves directly through the template. Deferred effects are bound to
// the chosen value (or the effect's default). Dangling paths are
// skipped silently.
func CollectModifiers(raw *choice.RawEntity, flat []choice.FlatOption, t *choice.Template) []choice.Effect {
	refs := merge.NewRefMap(t)

	var out []choice.Effect
	for _, fo := range flat {
		if len(fo.Path) < 2 {
			continue
		}
		opt, ok := resolveOption(t, refs, fo.Path)
		if !ok {
			continue
		}
		for _, e := range opt.Modifiers {
			out = append(out, bind(e, fo.Value))
		}
	}
	return out
}

func resolveOption(t *choice.Template, refs *merge.RefMap, flatPath []string) (*choice.Option, bool) {
	selectionPath := flatPath[:len(flatPath)-1]
	optionKey := flatPath[len(flatPath)-1]

	if pooled, ok := refs.Lookup(selectionPath); ok {
		for i := range pooled.Options {
			if pooled.Options[i].Key == optionKey {
				return &pooled.Options[i], true
			}
		}
		return nil, false
	}

	opt, err := path.OptionAt(t, flatPath)
	if err != nil {
		return nil, false
	}
	return opt, true
}

// bind resolves which function the effect applies with: a deferred
// factory with a chosen or default value wins over a direct function.
func bind(e choice.Effect, chosen any) choice.Effect {
	out := e
	if e.DeferredFn == nil {
		return out
	}
	value := chosen
	if value == nil {
		value = e.DefaultValue
	}
	if value == nil {
		return out
	}
	out.Fn = e.DeferredFn(value)
	out.DeferredFn = nil
	return out
}

// Apply computes the built entity for an already-extended template:
// base merge, manual order pre-pass, dependency graph, topological
// ordering, and the left fold of effect functions. A dependency cycle
// is a template authoring bug and fails the whole build with no partial
// result is produced.
func Apply(raw *choice.RawEntity, t *choice.Template) (choice.BuiltEntity, error) {
	if t == nil {
		return choice.BuiltEntity{}, fmt.Errorf("effects: template is required")
	}

	var values choice.Values
	if raw != nil {
		values = raw.Values
	}
	base := choice.MergeValues(t.Base, values)

	flat := path.Flatten(raw)
	modifiers := CollectModifiers(raw, flat, t)

	// Manual pre-pass: authors tiebreak with an explicit order before
	// dependencies have their say. Stable, so collection order holds
	// among equals.
	sort.SliceStable(modifiers, func(i, j int) bool {
		return choice.OrderOf(modifiers[i].Order, choice.DefaultEffectOrder) <
			choice.OrderOf(modifiers[j].Order, choice.DefaultEffectOrder)
	})

	deps := dependencyGraph(modifiers, t.BaseDeps)
	if _, err := graph.Sort(deps); err != nil {
		return choice.BuiltEntity{}, fmt.Errorf("effects: order modifiers: %w", err)
	}
	modifiers = orderModifiers(modifiers, deps)

	result := base
	for _, e := range modifiers {
		if e.Fn == nil {
			continue
		}
		result = e.Fn(result)
	}

	return choice.BuiltEntity{Values: result, Deps: deps}, nil
}

// dependencyGraph reduces modifier deps into a key -> dep-set map and
// merges in the base value's declared dependencies, unioning sets on
// key collision.
func dependencyGraph(modifiers []choice.Effect, baseDeps map[string][]string) map[string][]string {
	deps := make(map[string][]string, len(modifiers)+len(baseDeps))
	add := func(key string, ds []string) {
		if key == "" {
			return
		}
		seen := make(map[string]bool, len(deps[key]))
		for _, d := range deps[key] {
			seen[d] = true
		}
		for _, d := range ds {
			if seen[d] {
				continue
			}
			seen[d] = true
			deps[key] = append(deps[key], d)
		}
		if _, ok := deps[key]; !ok {
			deps[key] = nil
		}
	}
	for _, e := range modifiers {
		add(e.Key, e.Deps)
	}
	for k, ds := range baseDeps {
		add(k, ds)
	}
	return deps
}

// orderModifiers reorders modifiers so every dependency is applied
// before its dependents, disturbing the manual pre-sort as little as
// possible: among simultaneously ready modifiers the earliest pre-sort
// position wins. Modifiers without keys carry no constraints and keep
// their position. The graph is already known to be acyclic.
func orderModifiers(modifiers []choice.Effect, deps map[string][]string) []choice.Effect {
	byKey := make(map[string][]int, len(modifiers))
	for i, e := range modifiers {
		if e.Key != "" {
			byKey[e.Key] = append(byKey[e.Key], i)
		}
	}

	indegree := make([]int, len(modifiers))
	dependents := make([][]int, len(modifiers))
	for i, e := range modifiers {
		if e.Key == "" {
			continue
		}
		for _, d := range deps[e.Key] {
			for _, j := range byKey[d] {
				if j == i {
					continue
				}
				dependents[j] = append(dependents[j], i)
				indegree[i]++
			}
		}
	}

	out := make([]choice.Effect, 0, len(modifiers))
	emitted := make([]bool, len(modifiers))
	for len(out) < len(modifiers) {
		pick := -1
		for i := range modifiers {
			if !emitted[i] && indegree[i] == 0 {
				pick = i
				break
			}
		}
		if pick < 0 {
			break
		}
		emitted[pick] = true
		out = append(out, modifiers[pick])
		for _, i := range dependents[pick] {
			indegree[i]--
		}
	}
	return out
}
