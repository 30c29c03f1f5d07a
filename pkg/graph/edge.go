package graph

import "github.com/aretw0/skillgraph/pkg/domain"

// Edge connects one output port to one input port. Endpoints are persisted
// by (node GUID, field, identifier); the live port references are resolved
// by RegenerateData and are never persisted.
type Edge struct {
	GUID string

	InputNodeGUID   string
	InputField      string
	InputIdentifier string
	InputMultiple   bool

	OutputNodeGUID   string
	OutputField      string
	OutputIdentifier string
	OutputMultiple   bool

	inputPort  *Port
	outputPort *Port
}

func newEdge(guid string, input, output *Port) *Edge {
	return &Edge{
		GUID:             guid,
		InputNodeGUID:    input.node.GUID,
		InputField:       input.Field,
		InputIdentifier:  input.Identifier,
		InputMultiple:    input.Multiple,
		OutputNodeGUID:   output.node.GUID,
		OutputField:      output.Field,
		OutputIdentifier: output.Identifier,
		OutputMultiple:   output.Multiple,
		inputPort:        input,
		outputPort:       output,
	}
}

func edgeFromRecord(r domain.EdgeRecord) *Edge {
	return &Edge{
		GUID:             r.GUID,
		InputNodeGUID:    r.InputNodeGUID,
		InputField:       r.InputField,
		InputIdentifier:  r.InputIdentifier,
		InputMultiple:    r.InputMultiple,
		OutputNodeGUID:   r.OutputNodeGUID,
		OutputField:      r.OutputField,
		OutputIdentifier: r.OutputIdentifier,
		OutputMultiple:   r.OutputMultiple,
	}
}

// Record returns the persisted form of the edge.
func (e *Edge) Record() domain.EdgeRecord {
	return domain.EdgeRecord{
		GUID:             e.GUID,
		InputNodeGUID:    e.InputNodeGUID,
		InputField:       e.InputField,
		InputIdentifier:  e.InputIdentifier,
		InputMultiple:    e.InputMultiple,
		OutputNodeGUID:   e.OutputNodeGUID,
		OutputField:      e.OutputField,
		OutputIdentifier: e.OutputIdentifier,
		OutputMultiple:   e.OutputMultiple,
	}
}

// InputPort returns the resolved input endpoint, or nil if unresolved.
func (e *Edge) InputPort() *Port { return e.inputPort }

// OutputPort returns the resolved output endpoint, or nil if unresolved.
func (e *Edge) OutputPort() *Port { return e.outputPort }

// InputNode returns the node owning the input endpoint.
func (e *Edge) InputNode() *Node {
	if e.inputPort == nil {
		return nil
	}
	return e.inputPort.node
}

// OutputNode returns the node owning the output endpoint.
func (e *Edge) OutputNode() *Node {
	if e.outputPort == nil {
		return nil
	}
	return e.outputPort.node
}
