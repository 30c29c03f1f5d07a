package dsl

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

type paramDef struct {
	name  string
	typ   string
	value any
}

// Builder manages the graph construction. Nodes are addressed by alias
// until Build assigns their GUIDs.
type Builder struct {
	reg    *graph.Registry
	id     string
	name   string
	entry  string
	order  []string
	nodes  map[string]*NodeBuilder
	params []paramDef
	guids  map[string]string
}

// New creates a new graph builder. A nil registry means the built-in nodes.
func New(reg *graph.Registry) *Builder {
	if reg == nil {
		reg = nodes.NewRegistry()
	}
	return &Builder{
		reg:   reg,
		nodes: make(map[string]*NodeBuilder),
	}
}

// ID sets the graph ID. Without it the graph gets a random one.
func (b *Builder) ID(id string) *Builder {
	b.id = id
	return b
}

// Name sets the graph name.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Param declares a graph parameter.
func (b *Builder) Param(name, typ string, value any) *Builder {
	b.params = append(b.params, paramDef{name: name, typ: typ, value: value})
	return b
}

// Entry marks alias as the entry node. When it is never called the only
// node of type "entry" is used.
func (b *Builder) Entry(alias string) *Builder {
	b.entry = alias
	return b
}

// Add creates a node of the given type.
// If the alias already exists, it returns the existing builder.
func (b *Builder) Add(alias, typ string) *NodeBuilder {
	if nb, ok := b.nodes[alias]; ok {
		return nb
	}
	nb := &NodeBuilder{
		alias:   alias,
		typ:     typ,
		fields:  make(map[string]any),
		values:  make(map[string]any),
		builder: b,
	}
	b.nodes[alias] = nb
	b.order = append(b.order, alias)
	return nb
}

// Get adds a parameter node reading the named parameter.
func (b *Builder) Get(alias, param string) *NodeBuilder {
	return b.Add(alias, graph.ParameterNodeType).
		Field("accessor", string(graph.AccessorGet)).
		Param(param)
}

// Set adds a parameter node writing the named parameter. The node carries
// no control ports, so it cannot be chained with Then; use a set_variable
// node to write a parameter while a skill runs.
func (b *Builder) Set(alias, param string) *NodeBuilder {
	return b.Add(alias, graph.ParameterNodeType).
		Field("accessor", string(graph.AccessorSet)).
		Param(param)
}

// GUID returns the GUID given to alias by the last Build.
func (b *Builder) GUID(alias string) (string, bool) {
	guid, ok := b.guids[alias]
	return guid, ok
}

// Build creates the live graph: parameters, then nodes, then edges.
// Every problem found is reported, joined into one error.
func (b *Builder) Build(opts ...graph.Option) (*graph.Graph, error) {
	if b.id != "" {
		opts = append([]graph.Option{graph.WithID(b.id)}, opts...)
	}
	g := graph.New(append([]graph.Option{graph.WithName(b.name)}, opts...)...)
	b.guids = make(map[string]string, len(b.order))

	var errs []error
	paramGUIDs := make(map[string]string, len(b.params))
	for _, p := range b.params {
		guid, err := g.AddParameter(p.name, p.typ, p.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("parameter %q: %w", p.name, err))
			continue
		}
		paramGUIDs[p.name] = guid
	}

	for _, alias := range b.order {
		if err := b.nodes[alias].add(g, paramGUIDs); err != nil {
			errs = append(errs, err)
		}
	}

	for _, alias := range b.order {
		for _, l := range b.nodes[alias].links {
			if err := b.connect(g, alias, l); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := b.setEntry(g); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// Document builds the graph and returns its persisted form.
func (b *Builder) Document() (*domain.GraphDocument, error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return g.Document()
}

func (b *Builder) connect(g *graph.Graph, from string, l link) error {
	src, ok := b.guids[from]
	if !ok {
		return nil // the node itself failed and was reported
	}
	dst, ok := b.guids[l.target]
	if !ok {
		return fmt.Errorf("%s -> %s: %w", from, l.target, domain.ErrNodeNotFound)
	}
	outField := l.outField
	if outField == "" {
		outField = graph.FieldEnd
		if b.nodes[from].typ == nodes.TypeEntry {
			outField = nodes.EntryOutputField
		}
	}
	inField := l.inField
	if inField == "" {
		inField = graph.FieldStart
	}
	if _, err := g.ConnectFields(dst, inField, src, outField); err != nil {
		return fmt.Errorf("%s.%s -> %s.%s: %w", from, outField, l.target, inField, err)
	}
	return nil
}

func (b *Builder) setEntry(g *graph.Graph) error {
	alias := b.entry
	if alias == "" {
		for _, a := range b.order {
			if b.nodes[a].typ != nodes.TypeEntry {
				continue
			}
			if alias != "" {
				return fmt.Errorf("several entry nodes (%s, %s); call Entry", alias, a)
			}
			alias = a
		}
		if alias == "" {
			return nil
		}
	}
	guid, ok := b.guids[alias]
	if !ok {
		return fmt.Errorf("entry %q: %w", alias, domain.ErrNodeNotFound)
	}
	return g.SetEntryNode(guid)
}

func newGUID() string { return uuid.NewString() }
