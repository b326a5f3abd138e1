package document

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/prereq/expr"
	"github.com/goliatone/go-entgen/pkg/script"
)

// Parser converts template documents into choice.Template values.
type Parser struct {
	registry *Registry
}

// ParserOption customises parser construction.
type ParserOption func(*Parser)

// WithRegistry swaps the effect op registry used to resolve `op:` entries.
func WithRegistry(registry *Registry) ParserOption {
	return func(p *Parser) {
		if registry != nil {
			p.registry = registry
		}
	}
}

// NewParser builds a parser backed by DefaultRegistry unless overridden.
func NewParser(options ...ParserOption) *Parser {
	p := &Parser{registry: DefaultRegistry()}
	for _, opt := range options {
		opt(p)
	}
	return p
}

type templateFile struct {
	Name       string              `json:"name" yaml:"name"`
	Base       map[string]any      `json:"base" yaml:"base"`
	BaseDeps   map[string][]string `json:"baseDeps" yaml:"baseDeps"`
	Selections []selectionFile     `json:"selections" yaml:"selections"`
}

type selectionFile struct {
	Key         string       `json:"key" yaml:"key"`
	Name        string       `json:"name" yaml:"name"`
	Order       *int         `json:"order" yaml:"order"`
	Min         int          `json:"min" yaml:"min"`
	Max         *int         `json:"max" yaml:"max"`
	Multiselect bool         `json:"multiselect" yaml:"multiselect"`
	Ref         string       `json:"ref" yaml:"ref"`
	Tags        []string     `json:"tags" yaml:"tags"`
	Options     []optionFile `json:"options" yaml:"options"`
}

type optionFile struct {
	Key        string          `json:"key" yaml:"key"`
	Name       string          `json:"name" yaml:"name"`
	Order      *int            `json:"order" yaml:"order"`
	Tags       []string        `json:"tags" yaml:"tags"`
	Selections []selectionFile `json:"selections" yaml:"selections"`
	Modifiers  []effectFile    `json:"modifiers" yaml:"modifiers"`
	Plugins    []pluginFile    `json:"plugins" yaml:"plugins"`
	Prereq     string          `json:"prereq" yaml:"prereq"`
	PrereqLua  string          `json:"prereqLua" yaml:"prereqLua"`
}

type effectFile struct {
	Key      string   `json:"key" yaml:"key"`
	Name     string   `json:"name" yaml:"name"`
	Op       string   `json:"op" yaml:"op"`
	Target   string   `json:"target" yaml:"target"`
	Value    any      `json:"value" yaml:"value"`
	Lua      string   `json:"lua" yaml:"lua"`
	Deferred bool     `json:"deferred" yaml:"deferred"`
	Deps     []string `json:"deps" yaml:"deps"`
	Order    *int     `json:"order" yaml:"order"`
	Default  any      `json:"default" yaml:"default"`
}

type pluginFile struct {
	Path       []string        `json:"path" yaml:"path"`
	Selections []selectionFile `json:"selections" yaml:"selections"`
	Modifiers  []effectFile    `json:"modifiers" yaml:"modifiers"`
}

// Parse converts a template document into a choice.Template. Authored
// display names are sanitised before they reach the model; structural
// keys must be plain text free of control characters.
func (p *Parser) Parse(doc Document) (*choice.Template, error) {
	raw, err := parseTemplateFile(doc.Raw(), doc.Location())
	if err != nil {
		return nil, err
	}
	return p.buildTemplate(raw, doc.Location())
}

func parseTemplateFile(data []byte, source string) (templateFile, error) {
	var file templateFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return templateFile{}, fmt.Errorf("document: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &file); err == nil {
		return file, nil
	}

	if err := yaml.Unmarshal(data, &file); err == nil {
		return file, nil
	}

	return templateFile{}, fmt.Errorf("document: parse %s: invalid JSON or YAML", source)
}

func (p *Parser) buildTemplate(file templateFile, source string) (*choice.Template, error) {
	name := strings.TrimSpace(file.Name)
	if name == "" {
		return nil, fmt.Errorf("document: file %s declares no template name", source)
	}

	selections, err := p.buildSelections(file.Selections, source)
	if err != nil {
		return nil, err
	}

	t := &choice.Template{
		Name:       name,
		Base:       choice.Values(file.Base),
		Selections: selections,
	}
	if len(file.BaseDeps) > 0 {
		t.BaseDeps = make(map[string][]string, len(file.BaseDeps))
		for key, deps := range file.BaseDeps {
			t.BaseDeps[key] = append([]string(nil), deps...)
		}
	}
	return t, nil
}

func (p *Parser) buildSelections(files []selectionFile, source string) ([]choice.Selection, error) {
	if len(files) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(files))
	out := make([]choice.Selection, 0, len(files))
	for _, sf := range files {
		sel, err := p.buildSelection(sf, source)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[sel.Key]; dup {
			return nil, fmt.Errorf("document: file %s defines duplicate selection key %q", source, sel.Key)
		}
		seen[sel.Key] = struct{}{}
		out = append(out, sel)
	}
	return out, nil
}

func (p *Parser) buildSelection(file selectionFile, source string) (choice.Selection, error) {
	key := strings.TrimSpace(file.Key)
	if key == "" {
		return choice.Selection{}, fmt.Errorf("document: file %s defines a selection with an empty key", source)
	}
	if err := validateKey(key); err != nil {
		return choice.Selection{}, fmt.Errorf("document: file %s selection %q: %w", source, key, err)
	}

	options, err := p.buildOptions(file.Options, key, source)
	if err != nil {
		return choice.Selection{}, err
	}

	return choice.Selection{
		Key:         key,
		Name:        sanitizeText(file.Name),
		Order:       cloneIntPtr(file.Order),
		Min:         file.Min,
		Max:         cloneIntPtr(file.Max),
		Multiselect: file.Multiselect,
		Ref:         strings.TrimSpace(file.Ref),
		Tags:        append([]string(nil), file.Tags...),
		Options:     options,
	}, nil
}

func (p *Parser) buildOptions(files []optionFile, selection, source string) ([]choice.Option, error) {
	if len(files) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(files))
	out := make([]choice.Option, 0, len(files))
	for _, of := range files {
		opt, err := p.buildOption(of, selection, source)
		if err != nil {
			return nil, err
		}
		if opt.Key != "" {
			if _, dup := seen[opt.Key]; dup {
				return nil, fmt.Errorf("document: file %s selection %q defines duplicate option key %q", source, selection, opt.Key)
			}
			seen[opt.Key] = struct{}{}
		}
		out = append(out, opt)
	}
	return out, nil
}

func (p *Parser) buildOption(file optionFile, selection, source string) (choice.Option, error) {
	key := strings.TrimSpace(file.Key)
	if key != "" {
		if err := validateKey(key); err != nil {
			return choice.Option{}, fmt.Errorf("document: file %s option %q: %w", source, key, err)
		}
	}

	nested, err := p.buildSelections(file.Selections, source)
	if err != nil {
		return choice.Option{}, err
	}

	modifiers, err := p.buildEffects(file.Modifiers, source)
	if err != nil {
		return choice.Option{}, err
	}

	plugins, err := p.buildPlugins(file.Plugins, source)
	if err != nil {
		return choice.Option{}, err
	}

	pred, err := buildPrereq(file, key, source)
	if err != nil {
		return choice.Option{}, err
	}

	return choice.Option{
		Key:        key,
		Name:       sanitizeText(file.Name),
		Order:      cloneIntPtr(file.Order),
		Tags:       append([]string(nil), file.Tags...),
		Selections: nested,
		Modifiers:  modifiers,
		Plugins:    plugins,
		Prereq:     pred,
	}, nil
}

func buildPrereq(file optionFile, key, source string) (func(choice.BuiltEntity) bool, error) {
	rule := strings.TrimSpace(file.Prereq)
	luaSrc := strings.TrimSpace(file.PrereqLua)

	switch {
	case rule != "" && luaSrc != "":
		return nil, fmt.Errorf("document: file %s option %q sets both prereq and prereqLua", source, key)
	case rule != "":
		pred, err := expr.Compile(rule)
		if err != nil {
			return nil, fmt.Errorf("document: file %s option %q: %w", source, key, err)
		}
		return pred, nil
	case luaSrc != "":
		pred, err := script.Prereq(luaSrc)
		if err != nil {
			return nil, fmt.Errorf("document: file %s option %q: %w", source, key, err)
		}
		return pred, nil
	default:
		return nil, nil
	}
}

func (p *Parser) buildEffects(files []effectFile, source string) ([]choice.Effect, error) {
	if len(files) == 0 {
		return nil, nil
	}

	out := make([]choice.Effect, 0, len(files))
	for _, ef := range files {
		effect, err := p.buildEffect(ef, source)
		if err != nil {
			return nil, err
		}
		out = append(out, effect)
	}
	return out, nil
}

func (p *Parser) buildEffect(file effectFile, source string) (choice.Effect, error) {
	key := strings.TrimSpace(file.Key)
	if key != "" {
		if err := validateKey(key); err != nil {
			return choice.Effect{}, fmt.Errorf("document: file %s modifier %q: %w", source, key, err)
		}
	}

	effect := choice.Effect{
		Key:          key,
		Name:         sanitizeText(file.Name),
		Value:        file.Value,
		Deps:         append([]string(nil), file.Deps...),
		Order:        cloneIntPtr(file.Order),
		DefaultValue: file.Default,
	}

	opName := strings.TrimSpace(file.Op)
	luaSrc := strings.TrimSpace(file.Lua)

	switch {
	case opName != "" && luaSrc != "":
		return choice.Effect{}, fmt.Errorf("document: file %s modifier %q sets both op and lua", source, key)

	case opName != "":
		target := strings.TrimSpace(file.Target)
		if target == "" {
			target = key
		}
		if target == "" {
			return choice.Effect{}, fmt.Errorf("document: file %s modifier op %q needs a target or key", source, opName)
		}
		op, err := p.registry.Get(opName)
		if err != nil {
			return choice.Effect{}, fmt.Errorf("document: file %s modifier %q: %w", source, key, err)
		}
		if file.Deferred {
			effect.DeferredFn = func(chosen any) func(choice.Values) choice.Values {
				return op(target, chosen)
			}
		} else {
			effect.Fn = op(target, file.Value)
		}

	case luaSrc != "":
		if file.Deferred {
			fn, err := script.DeferredEffectFn(luaSrc)
			if err != nil {
				return choice.Effect{}, fmt.Errorf("document: file %s modifier %q: %w", source, key, err)
			}
			effect.DeferredFn = fn
		} else {
			fn, err := script.EffectFn(luaSrc)
			if err != nil {
				return choice.Effect{}, fmt.Errorf("document: file %s modifier %q: %w", source, key, err)
			}
			effect.Fn = fn
		}

	default:
		return choice.Effect{}, fmt.Errorf("document: file %s modifier %q declares neither op nor lua", source, key)
	}

	return effect, nil
}

func (p *Parser) buildPlugins(files []pluginFile, source string) ([]choice.Plugin, error) {
	if len(files) == 0 {
		return nil, nil
	}

	out := make([]choice.Plugin, 0, len(files))
	for _, pf := range files {
		selections, err := p.buildSelections(pf.Selections, source)
		if err != nil {
			return nil, err
		}
		modifiers, err := p.buildEffects(pf.Modifiers, source)
		if err != nil {
			return nil, err
		}
		out = append(out, choice.Plugin{
			Path:       append([]string(nil), pf.Path...),
			Selections: selections,
			Modifiers:  modifiers,
		})
	}
	return out, nil
}

// validateKey rejects control characters so structural keys stay safe to
// join into path strings.
func validateKey(key string) error {
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("key contains a control character")
		}
	}
	return nil
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Library holds the templates loaded from a filesystem, keyed by name.
type Library struct {
	templates map[string]*choice.Template
}

// Template returns the named template.
func (l *Library) Template(name string) (*choice.Template, bool) {
	if l == nil {
		return nil, false
	}
	t, ok := l.templates[name]
	return t, ok
}

// Names returns the sorted template names.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the library holds any templates.
func (l *Library) Empty() bool {
	return l == nil || len(l.templates) == 0
}

// LoadFS walks the provided filesystem and parses JSON/YAML template
// documents. When fsys is nil or no template files are present, the
// returned library is empty.
func LoadFS(fsys fs.FS, options ...ParserOption) (*Library, error) {
	library := &Library{templates: make(map[string]*choice.Template)}
	if fsys == nil {
		return library, nil
	}

	parser := NewParser(options...)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("document: read %s: %w", path, err)
		}

		doc, err := NewDocument(SourceFromFS(path), data)
		if err != nil {
			return err
		}

		t, err := parser.Parse(doc)
		if err != nil {
			return err
		}
		if _, exists := library.templates[t.Name]; exists {
			return fmt.Errorf("document: duplicate template %q (file %s)", t.Name, path)
		}
		library.templates[t.Name] = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	return library, nil
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
