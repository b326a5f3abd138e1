// Package entgen derives entities from declarative choice templates: it
// resolves which choice points a set of recorded choices unlocks and
// folds the chosen effects, in dependency order, into a built value.
package entgen

import (
	"io/fs"

	"github.com/goliatone/go-entgen/pkg/cache"
	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/document"
	"github.com/goliatone/go-entgen/pkg/engine"
)

// Core model types re-exported via the root package for convenience.
type (
	Values       = choice.Values
	Template     = choice.Template
	Selection    = choice.Selection
	Option       = choice.Option
	Effect       = choice.Effect
	Plugin       = choice.Plugin
	RawEntity    = choice.RawEntity
	RawSelection = choice.RawSelection
	ChosenOption = choice.ChosenOption
	FlatOption   = choice.FlatOption
	EntityStep   = choice.EntityStep
	EntityPath   = choice.EntityPath
	BuiltEntity  = choice.BuiltEntity
)

// Engine is the memoizing build pipeline.
type Engine = engine.Engine

// ErrCycle reports a dependency cycle among effects; Build wraps it.
var ErrCycle = engine.ErrCycle

// New exposes the engine constructor from the top-level module.
func New(options ...engine.Option) *Engine {
	return engine.New(options...)
}

// Cache is the pluggable memoization store consulted by the engine.
type Cache = cache.Cache

// NewMemoryCache returns an in-process cache safe for concurrent use.
func NewMemoryCache() *cache.Memory {
	return cache.NewMemory()
}

// WithCache injects a shared cache into the engine.
func WithCache(c Cache) engine.Option {
	return engine.WithCache(c)
}

// WithoutCache disables memoization entirely.
func WithoutCache() engine.Option {
	return engine.WithoutCache()
}

// Build derives the final entity for a raw set of choices against a
// template using a default engine. It is the simplest entry point for
// callers that just want the built values.
func Build(raw *RawEntity, t *Template) (BuiltEntity, error) {
	return engine.New().Build(raw, t)
}

// BuildTemplate returns the plugin-spliced derived template for the
// choices made so far.
func BuildTemplate(raw *RawEntity, t *Template) *Template {
	return engine.New().BuildTemplate(raw, t)
}

// AvailableSelections lists the choice points still reachable given the
// choices made so far, with disqualified options pruned.
func AvailableSelections(raw *RawEntity, t *Template) ([]Selection, error) {
	e := engine.New()
	built, err := e.Build(raw, t)
	if err != nil {
		return nil, err
	}
	return e.AvailableSelections(raw, built, t), nil
}

// ParseTemplate parses a YAML or JSON template document.
func ParseTemplate(doc document.Document, options ...document.ParserOption) (*Template, error) {
	return document.NewParser(options...).Parse(doc)
}

// LoadTemplates walks a filesystem and parses every template document
// found into a library keyed by template name.
func LoadTemplates(fsys fs.FS, options ...document.ParserOption) (*document.Library, error) {
	return document.LoadFS(fsys, options...)
}
