package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

type connectConfig struct {
	autoDisconnect bool
	guid           string
}

// ConnectOption configures a single Connect call.
type ConnectOption func(*connectConfig)

// WithoutAutoDisconnect rejects the connection instead of replacing the
// existing edge of a single-edge port.
func WithoutAutoDisconnect() ConnectOption {
	return func(c *connectConfig) { c.autoDisconnect = false }
}

// WithAutoDisconnect sets the auto-disconnect policy explicitly.
func WithAutoDisconnect(enabled bool) ConnectOption {
	return func(c *connectConfig) { c.autoDisconnect = enabled }
}

// WithEdgeGUID uses guid for the new edge instead of a random one.
func WithEdgeGUID(guid string) ConnectOption {
	return func(c *connectConfig) { c.guid = guid }
}

// CanConnect checks the connection rules: the input really is an input,
// the output really is an output, the ports sit on different nodes and their
// declared types are identical.
func CanConnect(input, output *Port) error {
	if input == nil || output == nil {
		return &ConnectError{Input: input, Output: output, Reason: "missing port", Err: domain.ErrPortNotFound}
	}
	if input.Direction != Input || output.Direction != Output {
		return &ConnectError{Input: input, Output: output, Reason: "directions must be input and output", Err: domain.ErrNotConnectable}
	}
	if input.node == nil || output.node == nil {
		return &ConnectError{Input: input, Output: output, Reason: "detached port", Err: domain.ErrNodeNotFound}
	}
	if input.node == output.node {
		return &ConnectError{Input: input, Output: output, Reason: "same node", Err: domain.ErrNotConnectable}
	}
	if !schema.Identical(input.Type, output.Type) {
		return &ConnectError{
			Input:  input,
			Output: output,
			Reason: fmt.Sprintf("type %s is not %s", output.Type.Name(), input.Type.Name()),
			Err:    domain.ErrNotConnectable,
		}
	}
	return nil
}

// Connect creates an edge from output to input. Both ports must belong to
// live nodes of this graph. When an endpoint forbids multiple edges its
// current edges are disconnected first, or the call fails with
// domain.ErrPortOccupied if WithoutAutoDisconnect is given.
func (g *Graph) Connect(input, output *Port, opts ...ConnectOption) (*Edge, error) {
	cfg := connectConfig{autoDisconnect: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := CanConnect(input, output); err != nil {
		return nil, err
	}
	if !g.owns(input) || !g.owns(output) {
		return nil, &ConnectError{Input: input, Output: output, Reason: "node not in graph", Err: domain.ErrNodeNotFound}
	}
	guid := cfg.guid
	if guid == "" {
		guid = uuid.NewString()
	}
	if _, dup := g.edgesByGUID[guid]; dup {
		return nil, fmt.Errorf("connect: edge %s: %w", guid, domain.ErrDuplicateEdge)
	}

	for _, p := range []*Port{input, output} {
		if p.Multiple || len(p.edges) == 0 {
			continue
		}
		if !cfg.autoDisconnect {
			return nil, &ConnectError{Input: input, Output: output, Reason: fmt.Sprintf("%s accepts a single edge", p), Err: domain.ErrPortOccupied}
		}
		for _, old := range p.Edges() {
			if err := g.Disconnect(old.GUID); err != nil {
				return nil, fmt.Errorf("auto-disconnect %s: %w", old.GUID, err)
			}
		}
	}

	e := newEdge(guid, input, output)
	g.edges = append(g.edges, e)
	g.edgesByGUID[e.GUID] = e

	input.node.onEdgeConnected(input, e)
	output.node.onEdgeConnected(output, e)

	g.logger.Debug("edge connected", "edge", e.GUID, "from", output.String(), "to", input.String())
	g.emit(domain.GraphChange{Kind: domain.ChangeAddedEdge, EdgeGUID: e.GUID})
	return e, nil
}

// ConnectFields is Connect addressed by node GUID and field name.
func (g *Graph) ConnectFields(inputNode, inputField, outputNode, outputField string, opts ...ConnectOption) (*Edge, error) {
	in, ok := g.Node(inputNode)
	if !ok {
		return nil, fmt.Errorf("input node %s: %w", inputNode, domain.ErrNodeNotFound)
	}
	out, ok := g.Node(outputNode)
	if !ok {
		return nil, fmt.Errorf("output node %s: %w", outputNode, domain.ErrNodeNotFound)
	}
	ip, ok := in.GetPort(inputField, "")
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", in, inputField, domain.ErrPortNotFound)
	}
	op, ok := out.GetPort(outputField, "")
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", out, outputField, domain.ErrPortNotFound)
	}
	return g.Connect(ip, op, opts...)
}

// Disconnect removes an edge. The edge leaves the global list before the
// endpoint nodes are told, so a node reacting to the notification never sees
// it again.
func (g *Graph) Disconnect(edgeGUID string) error {
	e, ok := g.edgesByGUID[edgeGUID]
	if !ok {
		return fmt.Errorf("disconnect %s: %w", edgeGUID, domain.ErrEdgeNotFound)
	}

	delete(g.edgesByGUID, edgeGUID)
	for i, existing := range g.edges {
		if existing == e {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			break
		}
	}

	var endpoints []*Node
	if n := e.InputNode(); n != nil {
		endpoints = append(endpoints, n)
	}
	if n := e.OutputNode(); n != nil {
		endpoints = append(endpoints, n)
	}

	g.logger.Debug("edge disconnected", "edge", e.GUID)
	g.emit(domain.GraphChange{Kind: domain.ChangeRemovedEdge, EdgeGUID: e.GUID})

	for _, n := range endpoints {
		n.onEdgeDisconnected(e)
	}
	return nil
}

func (g *Graph) owns(p *Port) bool {
	n, ok := g.nodesByGUID[p.node.GUID]
	if !ok || n != p.node {
		return false
	}
	i, ok := n.index[p.Key()]
	return ok && n.ports[i] == p
}
