package resolve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/internal/resolve"
	"github.com/goliatone/go-entgen/pkg/choice"
)

func intPtr(v int) *int {
	return &v
}

func selectionKeys(selections []choice.Selection) []string {
	keys := make([]string, len(selections))
	for i, s := range selections {
		keys[i] = s.Key
	}
	return keys
}

func optionKeys(options []choice.Option) []string {
	keys := make([]string, len(options))
	for i, o := range options {
		keys[i] = o.Key
	}
	return keys
}

func nestedTemplate() *choice.Template {
	return &choice.Template{
		Name: "character",
		Selections: []choice.Selection{
			{
				Key: "class",
				Options: []choice.Option{
					{Key: "fighter"},
					{
						Key: "rogue",
						Selections: []choice.Selection{
							{
								Key: "expertise",
								Options: []choice.Option{
									{
										Key: "stealth",
										Selections: []choice.Selection{
											{Key: "specialty", Options: []choice.Option{{Key: "ambush"}}},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestAvailableSelections_PrunesUnchosenSubtrees(t *testing.T) {
	tmpl := nestedTemplate()

	// Nothing chosen: only the root selection is reachable.
	got := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{}, tmpl)
	if diff := cmp.Diff([]string{"class"}, selectionKeys(got)); diff != "" {
		t.Errorf("untouched availability mismatch (-want +got):\n%s", diff)
	}

	// Choosing rogue surfaces expertise, but not the selection two
	// levels down under the still-unchosen stealth option.
	raw := &choice.RawEntity{
		Selections: []choice.RawSelection{
			{Key: "class", Chosen: []choice.ChosenOption{{Key: "rogue"}}},
		},
	}
	got = resolve.AvailableSelections(raw, choice.BuiltEntity{}, tmpl)
	if diff := cmp.Diff([]string{"class", "expertise"}, selectionKeys(got)); diff != "" {
		t.Errorf("one-level availability mismatch (-want +got):\n%s", diff)
	}

	// Choosing stealth surfaces the grandchild selection too.
	raw.Selections[0].Chosen[0].Selections = []choice.RawSelection{
		{Key: "expertise", Chosen: []choice.ChosenOption{{Key: "stealth"}}},
	}
	got = resolve.AvailableSelections(raw, choice.BuiltEntity{}, tmpl)
	if diff := cmp.Diff([]string{"class", "expertise", "specialty"}, selectionKeys(got)); diff != "" {
		t.Errorf("two-level availability mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableSelections_TransparentWrapperSurfacesChildren(t *testing.T) {
	tmpl := &choice.Template{
		Name: "gear",
		Selections: []choice.Selection{
			{
				Key: "loadout",
				Options: []choice.Option{
					{
						// No key: unchoosable wrapper.
						Name: "standard issue",
						Selections: []choice.Selection{
							{Key: "weapon", Options: []choice.Option{{Key: "sword"}}},
						},
					},
				},
			},
		},
	}

	got := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{}, tmpl)
	if diff := cmp.Diff([]string{"loadout", "weapon"}, selectionKeys(got)); diff != "" {
		t.Errorf("wrapper availability mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableSelections_DisqualifiedOptionsOmitted(t *testing.T) {
	needsDex := func(built choice.BuiltEntity) bool {
		dex, _ := built.Values["dex"].(int)
		return dex >= 10
	}
	tmpl := &choice.Template{
		Name: "character",
		Selections: []choice.Selection{
			{
				Key: "class",
				Options: []choice.Option{
					{Key: "fighter"},
					{Key: "rogue", Prereq: needsDex},
				},
			},
		},
	}

	low := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{Values: choice.Values{"dex": 8}}, tmpl)
	if diff := cmp.Diff([]string{"fighter"}, optionKeys(low[0].Options)); diff != "" {
		t.Errorf("low-dex options mismatch (-want +got):\n%s", diff)
	}

	high := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{Values: choice.Values{"dex": 12}}, tmpl)
	if diff := cmp.Diff([]string{"fighter", "rogue"}, optionKeys(high[0].Options)); diff != "" {
		t.Errorf("high-dex options mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableSelections_RefPooling(t *testing.T) {
	tmpl := &choice.Template{
		Name: "character",
		Selections: []choice.Selection{
			{Key: "class-skills", Ref: "skills", Min: 2, Max: intPtr(2), Options: []choice.Option{
				{Key: "stealth"}, {Key: "athletics"},
			}},
			{Key: "background", Options: []choice.Option{{Key: "soldier"}}},
			{Key: "bonus-skills", Ref: "skills", Min: 1, Max: intPtr(1), Options: []choice.Option{
				{Key: "arcana"}, {Key: "athletics"},
			}},
		},
	}

	got := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{}, tmpl)

	// The pool replaces both members at the first member's position.
	if diff := cmp.Diff([]string{"class-skills", "background"}, selectionKeys(got)); diff != "" {
		t.Errorf("pooled selection keys mismatch (-want +got):\n%s", diff)
	}
	pool := got[0]
	if pool.Min != 3 || pool.Max == nil || *pool.Max != 3 {
		t.Errorf("pool quota = min %d max %v, want 3/3", pool.Min, pool.Max)
	}
	if diff := cmp.Diff([]string{"arcana", "athletics", "stealth"}, optionKeys(pool.Options)); diff != "" {
		t.Errorf("pool options mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableSelections_SortedByOrder(t *testing.T) {
	tmpl := &choice.Template{
		Name: "ordered",
		Selections: []choice.Selection{
			{Key: "later", Order: intPtr(2000)},
			{Key: "default"},
			{Key: "first", Order: intPtr(10)},
		},
	}

	got := resolve.AvailableSelections(&choice.RawEntity{}, choice.BuiltEntity{}, tmpl)
	if diff := cmp.Diff([]string{"first", "default", "later"}, selectionKeys(got)); diff != "" {
		t.Errorf("sorted availability mismatch (-want +got):\n%s", diff)
	}
}
