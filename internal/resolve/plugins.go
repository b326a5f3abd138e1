package resolve

import (
	"github.com/goliatone/go-entgen/internal/merge"
	"github.com/goliatone/go-entgen/internal/path"
	"github.com/goliatone/go-entgen/pkg/choice"
)

// BuildTemplate derives the plugin-extended template for a raw entity:
// for every chosen option (in flattening order) the option's plugin
// bundles are spliced into a deep copy of the template at each
// plugin's path. Selections merge with the keyed merge rule and the
// touched level is re-sorted; modifiers concatenate in application
// order. Dangling flat paths and dangling plugin paths are skipped.
// The input template is never mutated.
func BuildTemplate(raw *choice.RawEntity, t *choice.Template) *choice.Template {
	if t == nil {
		return nil
	}
	derived := t.Clone()
	for _, fo := range path.Flatten(raw) {
		// Resolve against the in-progress template, so options
		// introduced by an earlier splice can contribute plugins of
		// their own.
		opt, err := path.OptionAt(derived, fo.Path)
		if err != nil {
			// Stale choice: the option no longer exists.
			continue
		}
		for _, p := range opt.Plugins {
			splice(derived, p)
		}
	}
	return derived
}

// splice merges one plugin bundle into the template node addressed by
// its path. An empty path targets the template root (selections only);
// otherwise the path must address an option node. Anything else is
// treated as dangling and ignored.
func splice(t *choice.Template, p choice.Plugin) {
	if len(p.Path) == 0 {
		t.Selections = merge.Selections(t.Selections, p.Selections)
		merge.SortSelections(t.Selections)
		return
	}
	if len(p.Path)%2 != 0 {
		return
	}
	opt, err := path.OptionAt(t, p.Path)
	if err != nil {
		return
	}
	opt.Selections = merge.Selections(opt.Selections, p.Selections)
	merge.SortSelections(opt.Selections)
	if len(p.Modifiers) > 0 {
		opt.Modifiers = append(opt.Modifiers, choice.CloneEffects(p.Modifiers)...)
	}
}
