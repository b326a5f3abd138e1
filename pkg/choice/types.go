package choice

// Values is the opaque base value a template builds on: a keyed bag of
// fields that effects read and rewrite. The engine never interprets the
// values themselves; it only merges, copies, and threads them through
// effect functions.
type Values map[string]any

// Template is the authored tree of choice points. It is treated as
// immutable by the engine: plugin splicing produces a derived deep copy,
// never an in-place mutation.
type Template struct {
	Name string

	// Base seeds the built entity before any effects apply. RawEntity
	// values override base keys on collision.
	Base Values

	// BaseDeps declares dependencies of the base value's own
	// pre-populated fields. They participate in effect ordering exactly
	// like declared effect dependencies.
	BaseDeps map[string][]string

	Selections []Selection
}

// Selection is a choice point: a keyed set of mutually exclusive or
// repeatable options plus a quota.
type Selection struct {
	Key  string
	Name string

	// Order positions the selection when siblings are re-sorted after a
	// merge. Nil sorts with DefaultOrder.
	Order *int

	// Min and Max bound how many options may be chosen. A nil Max means
	// unbounded.
	Min int
	Max *int

	// Multiselect marks a selection that admits several choices even
	// when Max is 1 or unset.
	Multiselect bool

	// Ref names a cross-branch pool: selections anywhere in the template
	// sharing the same Ref are treated as one combined quota and option
	// set.
	Ref string

	Tags []string

	Options []Option
}

// Option is one choice inside a Selection. An option carrying nested
// Selections is a branching node; one without is a leaf. An option with
// an empty Key cannot be chosen and acts as a transparent wrapper whose
// nested selections surface directly.
type Option struct {
	Key  string
	Name string

	// Order positions the option when siblings are re-sorted after a
	// merge; ties break on Name. Nil sorts with DefaultOrder.
	Order *int

	Tags []string

	Selections []Selection
	Modifiers  []Effect
	Plugins    []Plugin

	// Prereq disqualifies the option when it returns false against the
	// built entity. A failing prereq is not an error: the option is
	// silently omitted from availability.
	Prereq func(BuiltEntity) bool
}

// Effect (a modifier) transforms the base value. Exactly one of Fn and
// DeferredFn is used per application: when DeferredFn is set and a
// chosen or default value is available, the effective function is
// DeferredFn(value); otherwise Fn applies directly.
type Effect struct {
	Key  string
	Name string

	// Value is declarative payload carried for authoring tools and
	// cache fingerprints; the engine does not interpret it.
	Value any

	Fn         func(Values) Values
	DeferredFn func(chosen any) func(Values) Values

	// Deps names effect keys (or base-value keys) this effect must be
	// applied after.
	Deps []string

	// Order is a manual pre-pass tiebreak applied before dependency
	// ordering. Nil sorts with DefaultEffectOrder.
	Order *int

	// DefaultValue feeds DeferredFn when the chosen option carries no
	// explicit value.
	DefaultValue any
}

// Plugin is a template extension bundle attached to an option. When the
// owning option is chosen, Selections merge into (and Modifiers append
// to) the template node addressed by Path (empty Path targets the
// template root). Dangling paths are ignored.
type Plugin struct {
	Path       []string
	Selections []Selection
	Modifiers  []Effect
}

// RawEntity records a user's choices, mirroring the template's shape
// sparsely. It is owned by the caller and never mutated by the engine.
//
// Cardinality is not validated: recording more chosen options than a
// selection's Max admits is garbage-in/garbage-out and a caller
// precondition.
type RawEntity struct {
	// Values override template base keys before effects apply.
	Values Values

	Selections []RawSelection
}

// RawSelection pairs a selection key with the options chosen under it.
// Chosen is always an ordered sequence: a singular selection holds one
// element. Keeping a single sequence type at every level removes the
// single-versus-list shape checks a sparse map encoding would need.
type RawSelection struct {
	Key    string         `json:"key" yaml:"key"`
	Chosen []ChosenOption `json:"chosen" yaml:"chosen"`
}

// ChosenOption records one picked option, its optional user-supplied
// value, and any nested choices made beneath it.
type ChosenOption struct {
	Key        string         `json:"key" yaml:"key"`
	Value      any            `json:"value,omitempty" yaml:"value,omitempty"`
	Selections []RawSelection `json:"selections,omitempty" yaml:"selections,omitempty"`
}

// FlatOption is one chosen option reduced to a path plus its optional
// value. Paths alternate selection key and option key; an option with
// no key contributes its position as a decimal string instead. Every
// chosen option node yields an entry, intermediate branching picks
// included, in depth-first document order.
type FlatOption struct {
	Path  []string
	Value any
}

// EntityStep addresses one level of a raw entity: the selection key and
// the position of the chosen option within its ordered sequence.
type EntityStep struct {
	Selection string
	Index     int
}

// EntityPath is the raw-entity coordinate form of a flat path. UI
// layers use it to address a chosen value for in-place editing, such as
// the storage slot of a free-text value tied to a chosen option.
type EntityPath []EntityStep

// BuiltEntity is the final derived value: the base merged with raw
// overrides and folded through every chosen, dependency-ordered effect,
// plus the merged dependency map that ordering used.
type BuiltEntity struct {
	Values Values
	Deps   map[string][]string
}

// Field returns a named value from the built entity, with ok reporting
// presence. Prerequisite predicates use it to probe the build result.
func (b BuiltEntity) Field(key string) (any, bool) {
	if b.Values == nil {
		return nil, false
	}
	v, ok := b.Values[key]
	return v, ok
}

// MergeValues returns a new Values holding base overlaid with override:
// override wins on key collision. Neither input is mutated.
func MergeValues(base, override Values) Values {
	out := make(Values, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
