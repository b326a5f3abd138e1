package path_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/internal/path"
	"github.com/goliatone/go-entgen/pkg/choice"
)

func fixtureTemplate() *choice.Template {
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
								Key:     "expertise",
								Options: []choice.Option{{Key: "stealth"}, {Key: "thievery"}},
							},
						},
					},
				},
			},
			{
				Key: "gear",
				Options: []choice.Option{
					{Name: "first unkeyed"},
					{Name: "second unkeyed"},
				},
			},
		},
	}
}

func fixtureRaw() *choice.RawEntity {
	return &choice.RawEntity{
		Selections: []choice.RawSelection{
			{
				Key: "class",
				Chosen: []choice.ChosenOption{
					{
						Key: "rogue",
						Selections: []choice.RawSelection{
							{Key: "expertise", Chosen: []choice.ChosenOption{{Key: "stealth", Value: "trained"}}},
						},
					},
				},
			},
			{
				Key:    "gear",
				Chosen: []choice.ChosenOption{{Value: "rope"}, {Value: "torch"}},
			},
		},
	}
}

func TestResolveTemplatePath(t *testing.T) {
	tmpl := fixtureTemplate()

	tests := []struct {
		name string
		flat []string
		want []int
	}{
		{name: "selection only", flat: []string{"class"}, want: []int{0}},
		{name: "option", flat: []string{"class", "rogue"}, want: []int{0, 1}},
		{name: "nested option", flat: []string{"class", "rogue", "expertise", "thievery"}, want: []int{0, 1, 0, 1}},
		{name: "numeric component for unkeyed option", flat: []string{"gear", "1"}, want: []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := path.ResolveTemplatePath(tmpl, tt.flat)
			if err != nil {
				t.Fatalf("ResolveTemplatePath() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("indexes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveTemplatePath_Dangling(t *testing.T) {
	tmpl := fixtureTemplate()

	for _, flat := range [][]string{
		{"missing"},
		{"class", "wizard"},
		{"class", "rogue", "expertise", "arcana"},
		{"gear", "9"},
	} {
		if _, err := path.ResolveTemplatePath(tmpl, flat); !errors.Is(err, path.ErrNotFound) {
			t.Errorf("ResolveTemplatePath(%v) error = %v, want ErrNotFound", flat, err)
		}
	}
}

func TestOptionAt(t *testing.T) {
	tmpl := fixtureTemplate()

	opt, err := path.OptionAt(tmpl, []string{"class", "rogue", "expertise", "stealth"})
	if err != nil {
		t.Fatalf("OptionAt() error = %v", err)
	}
	if opt.Key != "stealth" {
		t.Errorf("opt.Key = %q, want %q", opt.Key, "stealth")
	}

	if _, err := path.OptionAt(tmpl, []string{"class"}); !errors.Is(err, path.ErrNotFound) {
		t.Errorf("OptionAt(odd path) error = %v, want ErrNotFound", err)
	}
}

func TestFlatten_EveryChosenNodeInDocumentOrder(t *testing.T) {
	got := path.Flatten(fixtureRaw())

	want := []choice.FlatOption{
		{Path: []string{"class", "rogue"}},
		{Path: []string{"class", "rogue", "expertise", "stealth"}, Value: "trained"},
		{Path: []string{"gear", "0"}, Value: "rope"},
		{Path: []string{"gear", "1"}, Value: "torch"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := path.Flatten(nil); got != nil {
		t.Errorf("Flatten(nil) = %v, want nil", got)
	}
	if got := path.Flatten(&choice.RawEntity{}); len(got) != 0 {
		t.Errorf("Flatten(empty) = %v, want none", got)
	}
}

func TestResolveEntityPath_RoundTripsFlattenedPaths(t *testing.T) {
	tmpl := fixtureTemplate()
	raw := fixtureRaw()

	want := []choice.EntityPath{
		{{Selection: "class", Index: 0}},
		{{Selection: "class", Index: 0}, {Selection: "expertise", Index: 0}},
		{{Selection: "gear", Index: 0}},
		{{Selection: "gear", Index: 1}},
	}

	flat := path.Flatten(raw)
	if len(flat) != len(want) {
		t.Fatalf("len(flat) = %d, want %d", len(flat), len(want))
	}
	for i, fo := range flat {
		got, err := path.ResolveEntityPath(tmpl, raw, fo.Path)
		if err != nil {
			t.Fatalf("ResolveEntityPath(%v) error = %v", fo.Path, err)
		}
		if diff := cmp.Diff(want[i], got); diff != "" {
			t.Errorf("entity path for %v mismatch (-want +got):\n%s", fo.Path, diff)
		}
	}
}

func TestResolveEntityPath_Dangling(t *testing.T) {
	tmpl := fixtureTemplate()
	raw := fixtureRaw()

	for _, flat := range [][]string{
		{"class", "fighter"},
		{"class"},
		{"missing", "x"},
		{"gear", "7"},
	} {
		if _, err := path.ResolveEntityPath(tmpl, raw, flat); !errors.Is(err, path.ErrNotFound) {
			t.Errorf("ResolveEntityPath(%v) error = %v, want ErrNotFound", flat, err)
		}
	}
}

func TestPopulated_PrefixSet(t *testing.T) {
	set := path.Populated(fixtureRaw())

	if !set.Has(nil) {
		t.Error("Has(empty) = false, want true")
	}
	if !set.Has([]string{"class", "rogue"}) {
		t.Error("Has(class/rogue) = false, want true")
	}
	if !set.Has([]string{"class", "rogue", "expertise"}) {
		t.Error("Has(prefix of recorded path) = false, want true")
	}
	if set.Has([]string{"class", "fighter"}) {
		t.Error("Has(unchosen option) = true, want false")
	}
}
