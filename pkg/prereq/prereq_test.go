package prereq_test

import (
	"testing"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/prereq"
)

func entity(values choice.Values) choice.BuiltEntity {
	return choice.BuiltEntity{Values: values}
}

func TestAll(t *testing.T) {
	strong := func(b choice.BuiltEntity) bool { v, _ := b.Values["str"].(int); return v >= 13 }
	quick := func(b choice.BuiltEntity) bool { v, _ := b.Values["dex"].(int); return v >= 13 }

	both := prereq.All(strong, nil, quick)

	if !both(entity(choice.Values{"str": 14, "dex": 14})) {
		t.Error("All() = false with both satisfied, want true")
	}
	if both(entity(choice.Values{"str": 14, "dex": 8})) {
		t.Error("All() = true with one failing, want false")
	}
	if !prereq.All()(entity(nil)) {
		t.Error("All() empty = false, want true")
	}
}

func TestAny(t *testing.T) {
	strong := func(b choice.BuiltEntity) bool { v, _ := b.Values["str"].(int); return v >= 13 }
	quick := func(b choice.BuiltEntity) bool { v, _ := b.Values["dex"].(int); return v >= 13 }

	either := prereq.Any(strong, nil, quick)

	if !either(entity(choice.Values{"str": 8, "dex": 14})) {
		t.Error("Any() = false with one satisfied, want true")
	}
	if either(entity(choice.Values{"str": 8, "dex": 8})) {
		t.Error("Any() = true with none satisfied, want false")
	}
	if !prereq.Any()(entity(nil)) {
		t.Error("Any() empty = false, want true")
	}
	if !prereq.Any(nil, nil)(entity(nil)) {
		t.Error("Any(nil, nil) = false, want true (nil entries skipped)")
	}
}
