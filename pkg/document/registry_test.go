package document_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/document"
)

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := document.NewRegistry()
	op := func(key string, arg any) func(choice.Values) choice.Values {
		return func(values choice.Values) choice.Values { return values }
	}

	if err := registry.Register("noop", op); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register("noop", op); err == nil {
		t.Fatal("Register() duplicate error = nil, want error")
	}
	if !registry.Has("noop") {
		t.Error("Has(noop) = false, want true")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	if _, err := document.NewRegistry().Get("missing"); err == nil {
		t.Fatal("Get(missing) error = nil, want error")
	}
}

func TestDefaultRegistry_List(t *testing.T) {
	got := document.DefaultRegistry().List()
	want := []string{"add", "push", "set"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinOps(t *testing.T) {
	registry := document.DefaultRegistry()

	tests := []struct {
		name string
		op   string
		key  string
		arg  any
		in   choice.Values
		want choice.Values
	}{
		{
			name: "set overwrites",
			op:   "set",
			key:  "speed",
			arg:  30,
			in:   choice.Values{"speed": 25},
			want: choice.Values{"speed": 30},
		},
		{
			name: "add to existing",
			op:   "add",
			key:  "hp",
			arg:  4,
			in:   choice.Values{"hp": 10},
			want: choice.Values{"hp": 14},
		},
		{
			name: "add to missing key starts from zero",
			op:   "add",
			key:  "hp",
			arg:  4,
			in:   choice.Values{},
			want: choice.Values{"hp": 4},
		},
		{
			name: "add keeps fractions",
			op:   "add",
			key:  "weight",
			arg:  0.5,
			in:   choice.Values{"weight": 2},
			want: choice.Values{"weight": 2.5},
		},
		{
			name: "push appends to list",
			op:   "push",
			key:  "tags",
			arg:  "martial",
			in:   choice.Values{"tags": []any{"simple"}},
			want: choice.Values{"tags": []any{"simple", "martial"}},
		},
		{
			name: "push starts a list",
			op:   "push",
			key:  "tags",
			arg:  "simple",
			in:   choice.Values{},
			want: choice.Values{"tags": []any{"simple"}},
		},
		{
			name: "push wraps a scalar",
			op:   "push",
			key:  "tags",
			arg:  "martial",
			in:   choice.Values{"tags": "simple"},
			want: choice.Values{"tags": []any{"simple", "martial"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := registry.Get(tt.op)
			if err != nil {
				t.Fatalf("Get(%s) error = %v", tt.op, err)
			}
			in := choice.MergeValues(tt.in, nil)
			got := op(tt.key, tt.arg)(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("op result mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(in, tt.in); diff != "" {
				t.Errorf("op mutated its input (-want +got):\n%s", diff)
			}
		})
	}
}
