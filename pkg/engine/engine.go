// Package engine composes the entgen pipeline into memoized entry
// points: template extension, entity building, and selection
// availability. An Engine is cheap to construct; all state lives in the
// injected cache.
package engine

import (
	"fmt"

	"github.com/goliatone/go-entgen/internal/effects"
	"github.com/goliatone/go-entgen/internal/graph"
	"github.com/goliatone/go-entgen/internal/path"
	"github.com/goliatone/go-entgen/internal/resolve"
	"github.com/goliatone/go-entgen/pkg/cache"
	"github.com/goliatone/go-entgen/pkg/choice"
)

// ErrCycle reports that a template's effect/base dependency graph
// cannot be linearized. It indicates a template authoring bug, not bad
// user data: Build fails whole, producing no partial entity.
var ErrCycle = graph.ErrCycle

// Option customises the engine configuration.
type Option func(*Engine)

// WithCache injects the memoization cache. The engine defaults to an
// unbounded in-memory cache; pass a shared or bounded implementation to
// control memory across engines.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheSpecified = true
	}
}

// WithoutCache disables memoization; every call recomputes.
func WithoutCache() Option {
	return func(e *Engine) {
		e.cache = nil
		e.cacheSpecified = true
	}
}

// Engine is the entry point the owning application holds. It never
// mutates caller inputs: templates are extended into derived copies and
// raw entities are only read.
type Engine struct {
	cache          cache.Cache
	cacheSpecified bool
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if !e.cacheSpecified {
		e.cache = cache.NewMemory()
	}
	return e
}

// BuildTemplate returns the template extended by the plugins of every
// option chosen in the raw entity. Memoized by the flattened choice set
// and the template fingerprint.
func (e *Engine) BuildTemplate(raw *choice.RawEntity, t *choice.Template) *choice.Template {
	v := e.cached("entgen.template", buildTemplateKey{
		Flat:     flatPaths(path.Flatten(raw)),
		Template: fingerprintTemplate(t),
	}, func() any {
		return resolve.BuildTemplate(raw, t)
	})
	return v.(*choice.Template)
}

// Build computes the built entity: the raw entity's values merged over
// the template base, folded through every chosen effect in
// dependency-correct order, against the plugin-extended template.
func (e *Engine) Build(raw *choice.RawEntity, t *choice.Template) (choice.BuiltEntity, error) {
	v, err := e.cachedErr("entgen.build", buildKey{
		Raw:      fingerprintRawEntity(raw),
		Template: fingerprintTemplate(t),
	}, func() (any, error) {
		return effects.Apply(raw, e.BuildTemplate(raw, t))
	})
	if err != nil {
		return choice.BuiltEntity{}, fmt.Errorf("engine: build: %w", err)
	}
	return v.(choice.BuiltEntity), nil
}

// AvailableSelections computes the choice points currently reachable
// for the raw entity, with disqualified options filtered against the
// supplied built entity. Callers typically pass the result of Build.
func (e *Engine) AvailableSelections(raw *choice.RawEntity, built choice.BuiltEntity, t *choice.Template) []choice.Selection {
	v := e.cached("entgen.available", availableKey{
		Raw:      fingerprintRawEntity(raw),
		Built:    built.Values,
		Template: fingerprintTemplate(t),
	}, func() any {
		return resolve.AvailableSelections(raw, built, e.BuildTemplate(raw, t))
	})
	return v.([]choice.Selection)
}

// TaggedSelections filters available selections to those whose tag set
// intersects tags.
func (e *Engine) TaggedSelections(available []choice.Selection, tags []string) []choice.Selection {
	if len(tags) == 0 || len(available) == 0 {
		return nil
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []choice.Selection
	for _, s := range available {
		for _, tag := range s.Tags {
			if want[tag] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// FlattenOptions reduces the raw entity's choice tree to flat paths, in
// document order.
func (e *Engine) FlattenOptions(raw *choice.RawEntity) []choice.FlatOption {
	return path.Flatten(raw)
}

// ResolveEntityPath resolves a flat path to raw-entity coordinates for
// in-place editing. Stale paths return an error callers may ignore.
func (e *Engine) ResolveEntityPath(t *choice.Template, raw *choice.RawEntity, flat []string) (choice.EntityPath, error) {
	p, err := path.ResolveEntityPath(t, raw, flat)
	if err != nil {
		return nil, fmt.Errorf("engine: resolve entity path: %w", err)
	}
	return p, nil
}

type buildTemplateKey struct {
	Flat     [][]string `cbor:"1,keyasint"`
	Template templateFP `cbor:"2,keyasint"`
}

type buildKey struct {
	Raw      rawEntityFP `cbor:"1,keyasint"`
	Template templateFP  `cbor:"2,keyasint"`
}

type availableKey struct {
	Raw      rawEntityFP   `cbor:"1,keyasint"`
	Built    choice.Values `cbor:"2,keyasint"`
	Template templateFP    `cbor:"3,keyasint"`
}

// cached memoizes an infallible computation. Fingerprints that cannot
// be encoded (exotic value payloads) bypass the cache rather than
// failing the call.
func (e *Engine) cached(domain string, payload any, compute func() any) any {
	if e.cache == nil {
		return compute()
	}
	key, err := cache.NewKey(domain, payload)
	if err != nil {
		return compute()
	}
	v, _ := e.cache.GetOrCompute(key, func() (any, error) {
		return compute(), nil
	})
	return v
}

func (e *Engine) cachedErr(domain string, payload any, compute func() (any, error)) (any, error) {
	if e.cache == nil {
		return compute()
	}
	key, err := cache.NewKey(domain, payload)
	if err != nil {
		return compute()
	}
	return e.cache.GetOrCompute(key, compute)
}

func flatPaths(flat []choice.FlatOption) [][]string {
	if len(flat) == 0 {
		return nil
	}
	out := make([][]string, len(flat))
	for i, fo := range flat {
		out[i] = fo.Path
	}
	return out
}
