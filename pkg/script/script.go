// Package script compiles Lua snippets into the function hooks a
// choice.Template carries: effect functions, deferred effect factories,
// and prerequisite predicates. Each invocation runs in a fresh Lua
// state, so snippets cannot leak globals into one another.
package script

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/prereq"
)

// EffectFn compiles src into an effect function. The snippet sees the
// current entity values as the global table `values` and must return a
// table, which becomes the new value set. Syntax errors surface here;
// a runtime failure leaves the input values unchanged.
func EffectFn(src string) (func(choice.Values) choice.Values, error) {
	if err := checkCompiles(src); err != nil {
		return nil, fmt.Errorf("script: compile effect: %w", err)
	}
	return func(values choice.Values) choice.Values {
		out, err := runSnippet(src, map[string]any{"values": map[string]any(values)})
		if err != nil {
			return values
		}
		return out
	}, nil
}

// DeferredEffectFn compiles src into a deferred effect factory. The
// snippet additionally sees the chosen option value as the global
// `chosen`.
func DeferredEffectFn(src string) (func(any) func(choice.Values) choice.Values, error) {
	if err := checkCompiles(src); err != nil {
		return nil, fmt.Errorf("script: compile deferred effect: %w", err)
	}
	return func(chosen any) func(choice.Values) choice.Values {
		return func(values choice.Values) choice.Values {
			out, err := runSnippet(src, map[string]any{
				"values": map[string]any(values),
				"chosen": chosen,
			})
			if err != nil {
				return values
			}
			return out
		}
	}, nil
}

// Prereq compiles src into a prerequisite predicate. The snippet sees
// the built entity's values as the global `values` and must return a
// boolean. Any error disqualifies, matching the silent-omission rule
// for failing prerequisites.
func Prereq(src string) (prereq.Predicate, error) {
	if err := checkCompiles(src); err != nil {
		return nil, fmt.Errorf("script: compile prereq: %w", err)
	}
	return func(built choice.BuiltEntity) bool {
		state := lua.NewState()
		lua.OpenLibraries(state)
		pushValue(state, map[string]any(built.Values))
		state.SetGlobal("values")
		if err := lua.LoadString(state, src); err != nil {
			return false
		}
		if err := state.ProtectedCall(0, 1, 0); err != nil {
			return false
		}
		defer state.Pop(1)
		if state.TypeOf(-1) != lua.TypeBoolean {
			return false
		}
		return state.ToBoolean(-1)
	}, nil
}

func checkCompiles(src string) error {
	state := lua.NewState()
	return lua.LoadString(state, src)
}

// runSnippet executes src with the given globals and converts its
// returned table back into values.
func runSnippet(src string, globals map[string]any) (choice.Values, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	for name, value := range globals {
		pushValue(state, value)
		state.SetGlobal(name)
	}

	if err := lua.LoadString(state, src); err != nil {
		return nil, fmt.Errorf("script: load: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("script: run: %w", err)
	}
	defer state.Pop(1)

	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("script: snippet must return a table")
	}
	return choice.Values(tableToMap(state, -1)), nil
}

func pushValue(state *lua.State, v any) {
	switch value := v.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(value)
	case string:
		state.PushString(value)
	case int:
		state.PushNumber(float64(value))
	case int64:
		state.PushNumber(float64(value))
	case float64:
		state.PushNumber(value)
	case []any:
		state.NewTable()
		for i, elem := range value {
			pushValue(state, elem)
			state.RawSetInt(-2, i+1)
		}
	case map[string]any:
		state.NewTable()
		for key, elem := range value {
			pushValue(state, elem)
			state.SetField(-2, key)
		}
	case choice.Values:
		pushValue(state, map[string]any(value))
	default:
		state.PushString(fmt.Sprint(value))
	}
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for tables indexed 1..n with no gaps and a
// map[string]any otherwise.
func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
