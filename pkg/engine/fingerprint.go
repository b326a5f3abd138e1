package engine

import "github.com/goliatone/go-entgen/pkg/choice"

// Fingerprint views mirror the declarative shape of the model types
// with every function field reduced to a presence flag. Two templates
// that differ only in function bodies behind the same declared effect
// keys fingerprint identically: effects are identified by their keys
// by contract, so that is the structural equality the cache documents.

type templateFP struct {
	Name       string              `cbor:"1,keyasint"`
	Base       choice.Values       `cbor:"2,keyasint"`
	BaseDeps   map[string][]string `cbor:"3,keyasint"`
	Selections []selectionFP       `cbor:"4,keyasint"`
}

type selectionFP struct {
	Key         string     `cbor:"1,keyasint"`
	Name        string     `cbor:"2,keyasint"`
	Order       *int       `cbor:"3,keyasint"`
	Min         int        `cbor:"4,keyasint"`
	Max         *int       `cbor:"5,keyasint"`
	Multiselect bool       `cbor:"6,keyasint"`
	Ref         string     `cbor:"7,keyasint"`
	Tags        []string   `cbor:"8,keyasint"`
	Options     []optionFP `cbor:"9,keyasint"`
}

type optionFP struct {
	Key        string        `cbor:"1,keyasint"`
	Name       string        `cbor:"2,keyasint"`
	Order      *int          `cbor:"3,keyasint"`
	Tags       []string      `cbor:"4,keyasint"`
	Selections []selectionFP `cbor:"5,keyasint"`
	Modifiers  []effectFP    `cbor:"6,keyasint"`
	Plugins    []pluginFP    `cbor:"7,keyasint"`
	HasPrereq  bool          `cbor:"8,keyasint"`
}

type effectFP struct {
	Key         string   `cbor:"1,keyasint"`
	Name        string   `cbor:"2,keyasint"`
	Value       any      `cbor:"3,keyasint"`
	HasFn       bool     `cbor:"4,keyasint"`
	HasDeferred bool     `cbor:"5,keyasint"`
	Deps        []string `cbor:"6,keyasint"`
	Order       *int     `cbor:"7,keyasint"`
	Default     any      `cbor:"8,keyasint"`
}

type pluginFP struct {
	Path       []string      `cbor:"1,keyasint"`
	Selections []selectionFP `cbor:"2,keyasint"`
	Modifiers  []effectFP    `cbor:"3,keyasint"`
}

type rawSelectionFP struct {
	Key    string     `cbor:"1,keyasint"`
	Chosen []chosenFP `cbor:"2,keyasint"`
}

type chosenFP struct {
	Key        string           `cbor:"1,keyasint"`
	Value      any              `cbor:"2,keyasint"`
	Selections []rawSelectionFP `cbor:"3,keyasint"`
}

type rawEntityFP struct {
	Values     choice.Values    `cbor:"1,keyasint"`
	Selections []rawSelectionFP `cbor:"2,keyasint"`
}

func fingerprintTemplate(t *choice.Template) templateFP {
	if t == nil {
		return templateFP{}
	}
	return templateFP{
		Name:       t.Name,
		Base:       t.Base,
		BaseDeps:   t.BaseDeps,
		Selections: fingerprintSelections(t.Selections),
	}
}

func fingerprintSelections(selections []choice.Selection) []selectionFP {
	if len(selections) == 0 {
		return nil
	}
	out := make([]selectionFP, len(selections))
	for i, s := range selections {
		out[i] = selectionFP{
			Key:         s.Key,
			Name:        s.Name,
			Order:       s.Order,
			Min:         s.Min,
			Max:         s.Max,
			Multiselect: s.Multiselect,
			Ref:         s.Ref,
			Tags:        s.Tags,
			Options:     fingerprintOptions(s.Options),
		}
	}
	return out
}

func fingerprintOptions(options []choice.Option) []optionFP {
	if len(options) == 0 {
		return nil
	}
	out := make([]optionFP, len(options))
	for i, o := range options {
		out[i] = optionFP{
			Key:        o.Key,
			Name:       o.Name,
			Order:      o.Order,
			Tags:       o.Tags,
			Selections: fingerprintSelections(o.Selections),
			Modifiers:  fingerprintEffects(o.Modifiers),
			Plugins:    fingerprintPlugins(o.Plugins),
			HasPrereq:  o.Prereq != nil,
		}
	}
	return out
}

func fingerprintEffects(effects []choice.Effect) []effectFP {
	if len(effects) == 0 {
		return nil
	}
	out := make([]effectFP, len(effects))
	for i, e := range effects {
		out[i] = effectFP{
			Key:         e.Key,
			Name:        e.Name,
			Value:       e.Value,
			HasFn:       e.Fn != nil,
			HasDeferred: e.DeferredFn != nil,
			Deps:        e.Deps,
			Order:       e.Order,
			Default:     e.DefaultValue,
		}
	}
	return out
}

func fingerprintPlugins(plugins []choice.Plugin) []pluginFP {
	if len(plugins) == 0 {
		return nil
	}
	out := make([]pluginFP, len(plugins))
	for i, p := range plugins {
		out[i] = pluginFP{
			Path:       p.Path,
			Selections: fingerprintSelections(p.Selections),
			Modifiers:  fingerprintEffects(p.Modifiers),
		}
	}
	return out
}

func fingerprintRawEntity(raw *choice.RawEntity) rawEntityFP {
	if raw == nil {
		return rawEntityFP{}
	}
	return rawEntityFP{
		Values:     raw.Values,
		Selections: fingerprintRawSelections(raw.Selections),
	}
}

func fingerprintRawSelections(selections []choice.RawSelection) []rawSelectionFP {
	if len(selections) == 0 {
		return nil
	}
	out := make([]rawSelectionFP, len(selections))
	for i, s := range selections {
		chosen := make([]chosenFP, len(s.Chosen))
		for j, c := range s.Chosen {
			chosen[j] = chosenFP{
				Key:        c.Key,
				Value:      c.Value,
				Selections: fingerprintRawSelections(c.Selections),
			}
		}
		out[i] = rawSelectionFP{Key: s.Key, Chosen: chosen}
	}
	return out
}
