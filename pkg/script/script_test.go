package script_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/script"
)

func TestEffectFn_TransformsValues(t *testing.T) {
	fn, err := script.EffectFn(`
		values.dex = values.dex + 2
		return values
	`)
	if err != nil {
		t.Fatalf("EffectFn() error = %v", err)
	}

	got := fn(choice.Values{"dex": 10, "name": "elf"})
	want := choice.Values{"dex": 12, "name": "elf"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("effect values mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectFn_ListsRoundTrip(t *testing.T) {
	fn, err := script.EffectFn(`
		table.insert(values.tags, "martial")
		return values
	`)
	if err != nil {
		t.Fatalf("EffectFn() error = %v", err)
	}

	got := fn(choice.Values{"tags": []any{"simple"}})
	want := choice.Values{"tags": []any{"simple", "martial"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("effect values mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectFn_NestedTables(t *testing.T) {
	fn, err := script.EffectFn(`
		values.stats = { str = 8, dex = values.base.dex }
		return values
	`)
	if err != nil {
		t.Fatalf("EffectFn() error = %v", err)
	}

	got := fn(choice.Values{"base": map[string]any{"dex": 14}})
	want := choice.Values{
		"base":  map[string]any{"dex": 14},
		"stats": map[string]any{"str": 8, "dex": 14},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("effect values mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectFn_CompileError(t *testing.T) {
	if _, err := script.EffectFn(`return values +`); err == nil {
		t.Fatal("EffectFn() expected compile error, got nil")
	}
}

func TestEffectFn_RuntimeErrorLeavesValuesUnchanged(t *testing.T) {
	fn, err := script.EffectFn(`error("boom")`)
	if err != nil {
		t.Fatalf("EffectFn() error = %v", err)
	}

	in := choice.Values{"hp": 7}
	got := fn(in)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestDeferredEffectFn_BindsChosenValue(t *testing.T) {
	factory, err := script.DeferredEffectFn(`
		values.favored = chosen
		return values
	`)
	if err != nil {
		t.Fatalf("DeferredEffectFn() error = %v", err)
	}

	got := factory("ranger")(choice.Values{})
	want := choice.Values{"favored": "ranger"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deferred values mismatch (-want +got):\n%s", diff)
	}
}

func TestPrereq(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values choice.Values
		want   bool
	}{
		{
			name:   "passes",
			src:    `return values.level >= 3`,
			values: choice.Values{"level": 5},
			want:   true,
		},
		{
			name:   "fails",
			src:    `return values.level >= 3`,
			values: choice.Values{"level": 1},
			want:   false,
		},
		{
			name:   "non boolean result disqualifies",
			src:    `return "yes"`,
			values: choice.Values{},
			want:   false,
		},
		{
			name:   "runtime error disqualifies",
			src:    `error("boom")`,
			values: choice.Values{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := script.Prereq(tt.src)
			if err != nil {
				t.Fatalf("Prereq() error = %v", err)
			}
			if got := pred(choice.BuiltEntity{Values: tt.values}); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrereq_CompileError(t *testing.T) {
	if _, err := script.Prereq(`return (`); err == nil {
		t.Fatal("Prereq() expected compile error, got nil")
	}
}
