package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Parameter is a graph-scoped, typed value addressed by GUID. Names are
// editable and not stable keys.
type Parameter struct {
	GUID     string
	Name     string
	Type     schema.Type
	Value    any
	Input    bool
	Settings map[string]any
}

// Record returns the persisted form of the parameter.
func (p *Parameter) Record() domain.ParameterRecord {
	return domain.ParameterRecord{
		GUID:     p.GUID,
		Name:     p.Name,
		Type:     p.Type.Name(),
		Value:    p.Value,
		Input:    p.Input,
		Settings: p.Settings,
	}
}

// AddParameter creates a parameter of the given type tag. A nil value
// stores the type default.
func (g *Graph) AddParameter(name, typeTag string, value any) (string, error) {
	t, err := schema.ParseType(typeTag)
	if err != nil {
		return "", fmt.Errorf("parameter %s: %w", name, err)
	}
	v, err := schema.Coerce(t, value)
	if err != nil {
		return "", &TypeMismatchError{Target: name, Expected: t.Name(), Value: value, Reason: err}
	}
	p := &Parameter{GUID: uuid.NewString(), Name: name, Type: t, Value: v}
	return g.AddParameterRecord(p), nil
}

// AddParameterRecord adds a pre-built parameter, assigning a GUID when empty.
func (g *Graph) AddParameterRecord(p *Parameter) string {
	if p.GUID == "" {
		p.GUID = uuid.NewString()
	}
	if p.Type == nil {
		p.Type = schema.Any()
	}
	g.params = append(g.params, p)
	g.parameterListChanged()
	return p.GUID
}

// RemoveParameter drops a parameter and deletes the parameter nodes bound
// to it. It reports whether the parameter existed.
func (g *Graph) RemoveParameter(guid string) bool {
	for i, p := range g.params {
		if p.GUID != guid {
			continue
		}
		g.params = append(g.params[:i], g.params[i+1:]...)
		for _, n := range g.Nodes() {
			if pn, ok := n.behavior.(*ParameterNode); ok && pn.ParameterGUID == guid {
				g.DeleteNode(n)
			}
		}
		g.parameterListChanged()
		return true
	}
	return false
}

// Parameter looks up a parameter by GUID.
func (g *Graph) Parameter(guid string) (*Parameter, bool) {
	for _, p := range g.params {
		if p.GUID == guid {
			return p, true
		}
	}
	return nil, false
}

// ParameterByName looks up the first parameter with the given name.
func (g *Graph) ParameterByName(name string) (*Parameter, bool) {
	for _, p := range g.params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Parameters returns the parameter list in insertion order.
func (g *Graph) Parameters() []*Parameter {
	return append([]*Parameter(nil), g.params...)
}

// UpdateParameter assigns a new value. A value that does not fit the
// declared type fails with a *TypeMismatchError.
func (g *Graph) UpdateParameter(guid string, value any) error {
	p, ok := g.Parameter(guid)
	if !ok {
		return fmt.Errorf("update %s: %w", guid, domain.ErrParameterNotFound)
	}
	v, err := schema.Coerce(p.Type, value)
	if err != nil {
		return &TypeMismatchError{Target: p.Name, Expected: p.Type.Name(), Value: value, Reason: err}
	}
	p.Value = v
	if g.hooks.OnParameterModified != nil {
		g.hooks.OnParameterModified(guid)
	}
	if g.hooks.OnParameterValueChanged != nil {
		g.hooks.OnParameterValueChanged(guid, v)
	}
	return nil
}

// RenameParameter changes the display name of a parameter.
func (g *Graph) RenameParameter(guid, name string) error {
	p, ok := g.Parameter(guid)
	if !ok {
		return fmt.Errorf("rename %s: %w", guid, domain.ErrParameterNotFound)
	}
	p.Name = name
	if g.hooks.OnParameterModified != nil {
		g.hooks.OnParameterModified(guid)
	}
	return nil
}

// ParameterValue returns the value of the first parameter named name.
func (g *Graph) ParameterValue(name string) (any, bool) {
	p, ok := g.ParameterByName(name)
	if !ok {
		return nil, false
	}
	return p.Value, true
}

// SetParameterValue assigns the first parameter named name. It reports
// false when no such parameter exists.
func (g *Graph) SetParameterValue(name string, value any) (bool, error) {
	p, ok := g.ParameterByName(name)
	if !ok {
		return false, nil
	}
	return true, g.UpdateParameter(p.GUID, value)
}

func (g *Graph) parameterListChanged() {
	if g.hooks.OnParameterListChanged != nil {
		g.hooks.OnParameterListChanged()
	}
}
