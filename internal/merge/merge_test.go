package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-entgen/internal/merge"
	"github.com/goliatone/go-entgen/pkg/choice"
)

var ignoreFns = cmpopts.IgnoreFields(choice.Effect{}, "Fn", "DeferredFn")

func intPtr(v int) *int {
	return &v
}

func TestSelections_KeyedAThenBOrder(t *testing.T) {
	a := []choice.Selection{
		{Key: "class"},
		{Key: "ancestry"},
	}
	b := []choice.Selection{
		{Key: "background"},
		{Key: "ancestry"},
	}

	got := merge.Selections(a, b)

	keys := make([]string, len(got))
	for i, s := range got {
		keys[i] = s.Key
	}
	want := []string{"class", "ancestry", "background"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("merged key order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelections_SharedKeysMergeRecursively(t *testing.T) {
	a := []choice.Selection{
		{
			Key: "class",
			Options: []choice.Option{
				{Key: "fighter", Modifiers: []choice.Effect{{Key: "hp"}}},
			},
		},
	}
	b := []choice.Selection{
		{
			Key: "class",
			Options: []choice.Option{
				{Key: "fighter", Modifiers: []choice.Effect{{Key: "str"}}},
				{Key: "rogue"},
			},
		},
	}

	got := merge.Selections(a, b)

	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	opts := got[0].Options
	if len(opts) != 2 || opts[0].Key != "fighter" || opts[1].Key != "rogue" {
		t.Fatalf("merged options = %+v, want fighter then rogue", opts)
	}

	wantMods := []choice.Effect{{Key: "hp"}, {Key: "str"}}
	if diff := cmp.Diff(wantMods, opts[0].Modifiers, ignoreFns); diff != "" {
		t.Errorf("fighter modifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestSelections_SelfMergeDoublesModifiers(t *testing.T) {
	sel := []choice.Selection{
		{
			Key: "class",
			Options: []choice.Option{
				{Key: "fighter", Modifiers: []choice.Effect{{Key: "hp"}}},
			},
		},
	}

	got := merge.Selections(sel, sel)

	mods := got[0].Options[0].Modifiers
	if len(mods) != 2 {
		t.Fatalf("len(mods) = %d, want 2 (self-merge concatenates)", len(mods))
	}
}

func TestSelections_DoesNotMutateInputs(t *testing.T) {
	a := []choice.Selection{
		{Key: "class", Options: []choice.Option{{Key: "fighter"}}},
	}
	b := []choice.Selection{
		{Key: "class", Options: []choice.Option{{Key: "rogue"}}},
	}

	got := merge.Selections(a, b)
	got[0].Options[0].Key = "mutated"
	got[0].Key = "mutated"

	if a[0].Key != "class" || a[0].Options[0].Key != "fighter" {
		t.Errorf("input a mutated: %+v", a)
	}
	if b[0].Options[0].Key != "rogue" {
		t.Errorf("input b mutated: %+v", b)
	}
}

func TestSortSelections_OrderWithDefault(t *testing.T) {
	selections := []choice.Selection{
		{Key: "unordered"},
		{Key: "last", Order: intPtr(2000)},
		{Key: "first", Order: intPtr(1)},
	}

	merge.SortSelections(selections)

	keys := []string{selections[0].Key, selections[1].Key, selections[2].Key}
	want := []string{"first", "unordered", "last"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("sorted order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortOptions_TiesBreakOnName(t *testing.T) {
	options := []choice.Option{
		{Key: "b", Name: "Zeta"},
		{Key: "a", Name: "Alpha"},
		{Key: "c", Name: "Alpha", Order: intPtr(1)},
	}

	merge.SortOptions(options)

	keys := []string{options[0].Key, options[1].Key, options[2].Key}
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("sorted order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortSelections_Idempotent(t *testing.T) {
	selections := []choice.Selection{
		{Key: "b", Order: intPtr(5)},
		{Key: "a", Order: intPtr(5)},
		{Key: "c"},
	}

	merge.SortSelections(selections)
	once := append([]choice.Selection(nil), selections...)
	merge.SortSelections(selections)

	if diff := cmp.Diff(once, selections, ignoreFns); diff != "" {
		t.Errorf("second sort changed order (-want +got):\n%s", diff)
	}
}
