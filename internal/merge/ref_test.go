package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/internal/merge"
	"github.com/goliatone/go-entgen/pkg/choice"
)

func TestCombineRefSelections_SumsQuota(t *testing.T) {
	members := []choice.Selection{
		{Key: "class-skills", Ref: "skills", Min: 2, Max: intPtr(2), Options: []choice.Option{
			{Key: "stealth"}, {Key: "athletics"},
		}},
		{Key: "background-skills", Ref: "skills", Min: 1, Max: intPtr(1), Options: []choice.Option{
			{Key: "athletics"}, {Key: "arcana"},
		}},
	}

	pooled := merge.CombineRefSelections(members)

	if pooled.Key != "class-skills" {
		t.Errorf("Key = %q, want first member's key", pooled.Key)
	}
	if pooled.Min != 3 {
		t.Errorf("Min = %d, want 3", pooled.Min)
	}
	if pooled.Max == nil || *pooled.Max != 3 {
		t.Errorf("Max = %v, want 3", pooled.Max)
	}

	keys := make([]string, len(pooled.Options))
	for i, o := range pooled.Options {
		keys[i] = o.Key
	}
	want := []string{"arcana", "athletics", "stealth"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("pooled options mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineRefSelections_UnboundedMemberClearsMax(t *testing.T) {
	members := []choice.Selection{
		{Key: "a", Ref: "skills", Min: 1, Max: intPtr(2)},
		{Key: "b", Ref: "skills", Min: 1},
	}

	pooled := merge.CombineRefSelections(members)

	if pooled.Min != 2 {
		t.Errorf("Min = %d, want 2", pooled.Min)
	}
	if pooled.Max != nil {
		t.Errorf("Max = %v, want nil (one member unbounded)", *pooled.Max)
	}
}

func TestRefMap_LookupByMemberPath(t *testing.T) {
	tmpl := &choice.Template{
		Name: "character",
		Selections: []choice.Selection{
			{
				Key: "class",
				Options: []choice.Option{
					{
						Key: "rogue",
						Selections: []choice.Selection{
							{Key: "skills", Ref: "skill-pool", Min: 2, Max: intPtr(2), Options: []choice.Option{{Key: "stealth"}}},
						},
					},
				},
			},
			{Key: "extra-skills", Ref: "skill-pool", Min: 1, Max: intPtr(1), Options: []choice.Option{{Key: "arcana"}}},
		},
	}

	m := merge.NewRefMap(tmpl)

	nested, ok := m.Lookup([]string{"class", "rogue", "skills"})
	if !ok {
		t.Fatal("Lookup(nested member) = false, want pooled selection")
	}
	top, ok := m.Lookup([]string{"extra-skills"})
	if !ok {
		t.Fatal("Lookup(top member) = false, want pooled selection")
	}
	if nested != top {
		t.Error("members resolve to different pooled selections, want shared")
	}
	if nested.Min != 3 || nested.Max == nil || *nested.Max != 3 {
		t.Errorf("pooled quota = min %d max %v, want 3/3", nested.Min, nested.Max)
	}
	if len(nested.Options) != 2 {
		t.Errorf("pooled options = %d, want union of 2", len(nested.Options))
	}

	if _, ok := m.Lookup([]string{"class"}); ok {
		t.Error("Lookup(non-ref selection) = true, want false")
	}
}
