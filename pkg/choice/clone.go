package choice

// Clone returns a deep copy of the template. Effect and prerequisite
// functions are shared (they are immutable by contract); every slice and
// map is copied so splicing into the clone never touches the original.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := &Template{
		Name:       t.Name,
		Base:       cloneValues(t.Base),
		BaseDeps:   cloneDeps(t.BaseDeps),
		Selections: CloneSelections(t.Selections),
	}
	return out
}

// CloneSelections deep-copies a selection slice.
func CloneSelections(selections []Selection) []Selection {
	if selections == nil {
		return nil
	}
	out := make([]Selection, len(selections))
	for i, s := range selections {
		out[i] = s.clone()
	}
	return out
}

// CloneOptions deep-copies an option slice.
func CloneOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	out := make([]Option, len(options))
	for i, o := range options {
		out[i] = o.clone()
	}
	return out
}

func (s Selection) clone() Selection {
	out := s
	out.Order = cloneIntPtr(s.Order)
	out.Max = cloneIntPtr(s.Max)
	out.Tags = append([]string(nil), s.Tags...)
	out.Options = CloneOptions(s.Options)
	return out
}

func (o Option) clone() Option {
	out := o
	out.Order = cloneIntPtr(o.Order)
	out.Tags = append([]string(nil), o.Tags...)
	out.Selections = CloneSelections(o.Selections)
	out.Modifiers = CloneEffects(o.Modifiers)
	out.Plugins = clonePlugins(o.Plugins)
	return out
}

// CloneEffects deep-copies an effect slice; function fields are shared.
func CloneEffects(effects []Effect) []Effect {
	if effects == nil {
		return nil
	}
	out := make([]Effect, len(effects))
	for i, e := range effects {
		c := e
		c.Order = cloneIntPtr(e.Order)
		c.Deps = append([]string(nil), e.Deps...)
		out[i] = c
	}
	return out
}

func clonePlugins(plugins []Plugin) []Plugin {
	if plugins == nil {
		return nil
	}
	out := make([]Plugin, len(plugins))
	for i, p := range plugins {
		out[i] = Plugin{
			Path:       append([]string(nil), p.Path...),
			Selections: CloneSelections(p.Selections),
			Modifiers:  CloneEffects(p.Modifiers),
		}
	}
	return out
}

func cloneValues(v Values) Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func cloneDeps(deps map[string][]string) map[string][]string {
	if deps == nil {
		return nil
	}
	out := make(map[string][]string, len(deps))
	for k, v := range deps {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
