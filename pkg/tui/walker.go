package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/engine"
)

// Walker drives an interactive session over a choice template. It keeps
// prompting for the first unanswered selection and rebuilds the derived
// template after every answer, so plugin splices and prerequisite changes
// take effect before the next prompt.
type Walker struct {
	engine *engine.Engine
	driver PromptDriver
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithPromptDriver overrides the prompt driver used by the walker.
func WithPromptDriver(driver PromptDriver) WalkerOption {
	return func(w *Walker) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithEngine swaps the build engine, e.g. to share a configured cache.
func WithEngine(e *engine.Engine) WalkerOption {
	return func(w *Walker) {
		if e != nil {
			w.engine = e
		}
	}
}

// NewWalker constructs a walker with defaults (survey driver, fresh engine).
func NewWalker(options ...WalkerOption) *Walker {
	w := &Walker{
		engine: engine.New(),
		driver: newSurveyDriver(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Walk prompts until every reachable selection is answered, then returns
// the recorded raw entity together with its build result.
func (w *Walker) Walk(ctx context.Context, t *choice.Template) (choice.RawEntity, choice.BuiltEntity, error) {
	var raw choice.RawEntity
	for {
		if err := ctx.Err(); err != nil {
			return raw, choice.BuiltEntity{}, err
		}

		derived := w.engine.BuildTemplate(&raw, t)
		built, err := w.engine.Build(&raw, t)
		if err != nil {
			return raw, choice.BuiltEntity{}, err
		}

		answered, err := w.promptNext(ctx, derived.Selections, &raw.Selections, built)
		if err != nil {
			return raw, choice.BuiltEntity{}, err
		}
		if !answered {
			built, err := w.engine.Build(&raw, t)
			if err != nil {
				return raw, choice.BuiltEntity{}, err
			}
			return raw, built, nil
		}
	}
}

// promptNext finds the first selection without a recorded answer, walking
// depth-first through the choices already made, and prompts it. It reports
// whether a prompt happened.
func (w *Walker) promptNext(ctx context.Context, selections []choice.Selection, container *[]choice.RawSelection, built choice.BuiltEntity) (bool, error) {
	for _, sel := range selections {
		idx := rawIndex(*container, sel.Key)
		if idx < 0 {
			err := w.promptSelection(ctx, sel, container, built)
			return true, err
		}

		chosen := (*container)[idx].Chosen
		for i := range chosen {
			opt := optionByKey(sel.Options, chosen[i].Key)
			if opt == nil || len(opt.Selections) == 0 {
				continue
			}
			answered, err := w.promptNext(ctx, opt.Selections, &(*container)[idx].Chosen[i].Selections, built)
			if answered || err != nil {
				return answered, err
			}
		}
	}
	return false, nil
}

func (w *Walker) promptSelection(ctx context.Context, sel choice.Selection, container *[]choice.RawSelection, built choice.BuiltEntity) error {
	qualified := qualifiedOptions(sel.Options, built)
	if len(qualified) == 0 {
		if err := w.driver.Info(ctx, fmt.Sprintf("%s: no options available", displayName(sel.Name, sel.Key))); err != nil {
			return err
		}
		*container = append(*container, choice.RawSelection{Key: sel.Key})
		return nil
	}

	labels := make([]string, len(qualified))
	for i, opt := range qualified {
		labels[i] = displayName(opt.Name, opt.Key)
	}

	var picks []int
	if singular(sel) {
		idx, err := w.driver.Select(ctx, SelectConfig{
			Message: displayName(sel.Name, sel.Key),
			Options: labels,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(qualified) {
			return fmt.Errorf("tui: selection %q: choice out of range", sel.Key)
		}
		picks = []int{idx}
	} else {
		var err error
		picks, err = w.promptMulti(ctx, sel, labels)
		if err != nil {
			return err
		}
	}

	record := choice.RawSelection{Key: sel.Key}
	for _, idx := range picks {
		opt := qualified[idx]
		co := choice.ChosenOption{Key: opt.Key}
		if wantsValue(opt) {
			value, err := w.driver.Input(ctx, InputConfig{
				Message: fmt.Sprintf("Value for %s (empty for default)", displayName(opt.Name, opt.Key)),
			})
			if err != nil {
				return err
			}
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				co.Value = trimmed
			}
		}
		record.Chosen = append(record.Chosen, co)
	}
	*container = append(*container, record)
	return nil
}

// promptMulti re-prompts until the pick count satisfies the selection quota.
func (w *Walker) promptMulti(ctx context.Context, sel choice.Selection, labels []string) ([]int, error) {
	for {
		picks, err := w.driver.MultiSelect(ctx, SelectConfig{
			Message: displayName(sel.Name, sel.Key),
			Options: labels,
		})
		if err != nil {
			return nil, err
		}
		if len(picks) < sel.Min {
			if err := w.driver.Info(ctx, fmt.Sprintf("pick at least %d", sel.Min)); err != nil {
				return nil, err
			}
			continue
		}
		if sel.Max != nil && len(picks) > *sel.Max {
			if err := w.driver.Info(ctx, fmt.Sprintf("pick at most %d", *sel.Max)); err != nil {
				return nil, err
			}
			continue
		}
		return picks, nil
	}
}

// singular reports whether the selection admits exactly one choice.
func singular(sel choice.Selection) bool {
	return !sel.Multiselect && sel.Max != nil && *sel.Max == 1
}

// wantsValue reports whether any modifier on the option resolves against a
// chosen value, which makes a free-text prompt worthwhile.
func wantsValue(opt choice.Option) bool {
	for _, m := range opt.Modifiers {
		if m.DeferredFn != nil {
			return true
		}
	}
	return false
}

func qualifiedOptions(options []choice.Option, built choice.BuiltEntity) []choice.Option {
	out := make([]choice.Option, 0, len(options))
	for _, opt := range options {
		if opt.Key == "" {
			continue
		}
		if opt.Prereq != nil && !opt.Prereq(built) {
			continue
		}
		out = append(out, opt)
	}
	return out
}

func rawIndex(selections []choice.RawSelection, key string) int {
	for i, rs := range selections {
		if rs.Key == key {
			return i
		}
	}
	return -1
}

func optionByKey(options []choice.Option, key string) *choice.Option {
	if key == "" {
		return nil
	}
	for i := range options {
		if options[i].Key == key {
			return &options[i]
		}
	}
	return nil
}

func displayName(name, key string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return key
}
