package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Behavior is the per-type logic of a node. Start runs when control reaches
// the node; Update runs once per tick until the node calls Finish.
// Exported struct fields tagged with `mapstructure` are persisted.
type Behavior interface {
	Start(n *Node) error
	Update(n *Node) error
}

// Enabler is implemented by behaviors that bind graph state when the node
// is added. Returning domain.ErrParameterNotFound removes the node.
type Enabler interface {
	Enable(n *Node) error
}

// Disabler is implemented by behaviors that release state on removal.
type Disabler interface {
	Disable(n *Node)
}

// PortResetter lets a behavior keep an input value after its last edge is
// disconnected.
type PortResetter interface {
	CanResetPort(p *Port) bool
}

// DynamicPorts expands one declared field into zero or more physical ports.
// It runs on every port rebuild and must be deterministic.
type DynamicPorts interface {
	RecomputePorts(n *Node, spec PortSpec) []PortSpec
}

// FieldOrderer reorders the declared fields before ports are built.
type FieldOrderer interface {
	OverrideFieldOrder(fields []PortSpec) []PortSpec
}

// OutputResolver refreshes a data node's outputs before they are pulled.
type OutputResolver interface {
	ResolveOutputs(n *Node) error
}

// Brancher selects which control outputs a finished node walks.
// Without it every control output is walked.
type Brancher interface {
	Branches(n *Node) []string
}

// Descriptor is the static registration of a node type.
type Descriptor struct {
	// Type is the persisted type tag.
	Type string
	// Name is the display name; defaults to Type.
	Name string
	// Sequential types inherit the Start/End control ports.
	Sequential bool
	// Ports lists the declared ports in declaration order.
	Ports []PortSpec
	// Fields types the persisted behavior state.
	Fields schema.Schema
	// New returns a fresh behavior.
	New func() Behavior
}

// OrderedPorts returns the declared ports followed by inherited ones.
func (d *Descriptor) OrderedPorts() []PortSpec {
	specs := make([]PortSpec, 0, len(d.Ports)+2)
	specs = append(specs, d.Ports...)
	if d.Sequential {
		specs = append(specs, StartSpec(), EndSpec())
	}
	return specs
}

func (d *Descriptor) validate() error {
	if d.Type == "" {
		return fmt.Errorf("descriptor: empty type")
	}
	if d.New == nil {
		return fmt.Errorf("descriptor %s: missing behavior factory", d.Type)
	}
	seen := make(map[string]struct{})
	for _, spec := range d.OrderedPorts() {
		if spec.Field == "" {
			return fmt.Errorf("descriptor %s: port with empty field", d.Type)
		}
		key := portKey(spec.Field, spec.Identifier)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("descriptor %s: duplicate port %q", d.Type, key)
		}
		seen[key] = struct{}{}
		if spec.Type == nil {
			return fmt.Errorf("descriptor %s: port %q has no type", d.Type, key)
		}
		if spec.Control != schema.IsControl(spec.Type) {
			return fmt.Errorf("descriptor %s: port %q control flag disagrees with type %s", d.Type, key, spec.Type.Name())
		}
	}
	return nil
}

// Registry maps type tags to descriptors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Descriptor),
	}
}

// Register adds a node type. If the type exists, it is overwritten.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if d.Name == "" {
		d.Name = d.Type
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Type] = &d
	return nil
}

// MustRegister is Register for static registrations.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor of a type tag.
func (r *Registry) Lookup(typ string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typ]
	return d, ok
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Create builds a new node of the given type with a fresh GUID.
func (r *Registry) Create(typ string, pos domain.Position) (*Node, error) {
	d, ok := r.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNodeType, typ)
	}
	return newNode(uuid.NewString(), d, pos), nil
}

// Restore rebuilds a node from its persisted record. Persisted fields are
// validated against the descriptor and decoded into the behavior.
func (r *Registry) Restore(rec domain.NodeRecord) (*Node, error) {
	d, ok := r.Lookup(rec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNodeType, rec.Type)
	}
	if rec.GUID == "" {
		return nil, fmt.Errorf("node of type %s: empty guid", rec.Type)
	}
	if err := schema.Validate(d.Fields, rec.Fields); err != nil {
		return nil, fmt.Errorf("node %s: %w", rec.GUID, err)
	}

	n := newNode(rec.GUID, d, rec.Position)
	n.Expanded = rec.Expanded
	n.Locked = rec.Locked
	n.CustomName = rec.CustomName
	if err := decodeFields(rec.Fields, n.behavior); err != nil {
		return nil, fmt.Errorf("node %s: decode fields: %w", rec.GUID, err)
	}
	for k, v := range rec.Values {
		n.values[k] = v
	}
	return n, nil
}

func decodeFields(fields map[string]any, target Behavior) error {
	if len(fields) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(fields)
}

func encodeFields(b Behavior) (map[string]any, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(b, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
