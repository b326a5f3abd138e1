// Package prereq defines the prerequisite predicate contract options
// use to gate their availability. Predicates are pure functions over
// the built entity; a false result disqualifies the option silently.
// Authors can hand-write predicates in Go, compile them from the
// expression grammar in prereq/expr, or script them via pkg/script.
package prereq

import "github.com/goliatone/go-entgen/pkg/choice"

// Predicate reports whether an option is qualified given the current
// built entity.
type Predicate func(choice.BuiltEntity) bool

// All combines predicates conjunctively; nil entries are skipped. An
// empty set qualifies.
func All(predicates ...Predicate) Predicate {
	return func(built choice.BuiltEntity) bool {
		for _, p := range predicates {
			if p == nil {
				continue
			}
			if !p(built) {
				return false
			}
		}
		return true
	}
}

// Any combines predicates disjunctively; nil entries are skipped. An
// empty set qualifies.
func Any(predicates ...Predicate) Predicate {
	return func(built choice.BuiltEntity) bool {
		qualified := true
		for _, p := range predicates {
			if p == nil {
				continue
			}
			qualified = false
			if p(built) {
				return true
			}
		}
		return qualified
	}
}
