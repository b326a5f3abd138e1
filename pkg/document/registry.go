package document

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/goliatone/go-entgen/pkg/choice"
)

// Op builds an effect function from a target value key and the declared
// argument. Parsed documents reference ops by name.
type Op func(key string, arg any) func(choice.Values) choice.Values

// Registry stores effect ops by name, providing discovery and duplication
// safeguards. Callers can register custom Go ops before parsing.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Op
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]Op),
	}
}

// DefaultRegistry returns a registry preloaded with the built-in ops
// set, add, and push.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("set", opSet)
	r.MustRegister("add", opAdd)
	r.MustRegister("push", opPush)
	return r
}

// Register adds an op under the supplied name. Duplicate names return an
// error.
func (r *Registry) Register(name string, op Op) error {
	if op == nil {
		return fmt.Errorf("document: op is required")
	}
	if name == "" {
		return fmt.Errorf("document: op name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("document: op %q already registered", name)
	}

	r.ops[name] = op
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, op Op) {
	if err := r.Register(name, op); err != nil {
		panic(err)
	}
}

// Get retrieves an op by name.
func (r *Registry) Get(name string) (Op, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("document: op %q not found", name)
	}
	return op, nil
}

// List returns a sorted list of op names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an op is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.ops[name]
	return ok
}

func opSet(key string, arg any) func(choice.Values) choice.Values {
	return func(values choice.Values) choice.Values {
		out := choice.MergeValues(values, nil)
		out[key] = arg
		return out
	}
}

func opAdd(key string, arg any) func(choice.Values) choice.Values {
	return func(values choice.Values) choice.Values {
		out := choice.MergeValues(values, nil)
		current, _ := toNumber(out[key])
		delta, ok := toNumber(arg)
		if !ok {
			return out
		}
		out[key] = normalizeNumber(current + delta)
		return out
	}
}

func opPush(key string, arg any) func(choice.Values) choice.Values {
	return func(values choice.Values) choice.Values {
		out := choice.MergeValues(values, nil)
		switch current := out[key].(type) {
		case nil:
			out[key] = []any{arg}
		case []any:
			out[key] = append(append([]any(nil), current...), arg)
		default:
			out[key] = []any{current, arg}
		}
		return out
	}
}

func toNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case float64:
		return value, true
	case float32:
		return float64(value), true
	default:
		return 0, false
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
