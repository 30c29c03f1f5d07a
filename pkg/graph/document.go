package graph

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Load builds a live graph from a persisted document. Parameters are
// restored first so parameter nodes can bind; nodes with unresolvable
// parameters drop out and edges that fail to resolve are discarded.
func Load(doc *domain.GraphDocument, reg *Registry, opts ...Option) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("load: nil document")
	}
	g := New(append([]Option{WithID(doc.ID), WithName(doc.Name)}, opts...)...)
	hooks := g.hooks
	g.hooks = Hooks{}
	defer func() { g.hooks = hooks }()

	for _, rec := range doc.Parameters {
		t, err := schema.ParseType(rec.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", rec.GUID, err)
		}
		v, err := schema.Coerce(t, rec.Value)
		if err != nil {
			return nil, &TypeMismatchError{Target: rec.Name, Expected: t.Name(), Value: rec.Value, Reason: err}
		}
		g.AddParameterRecord(&Parameter{
			GUID:     rec.GUID,
			Name:     rec.Name,
			Type:     t,
			Value:    v,
			Input:    rec.Input,
			Settings: rec.Settings,
		})
	}

	for _, rec := range doc.Nodes {
		n, err := reg.Restore(rec)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for _, rec := range doc.Edges {
		g.edges = append(g.edges, edgeFromRecord(rec))
	}
	g.RegenerateData()

	if doc.EntryNodeGUID != "" {
		if err := g.SetEntryNode(doc.EntryNodeGUID); err != nil {
			g.logger.Warn("entry node not resolved", "entry", doc.EntryNodeGUID)
		}
	}
	return g, nil
}

// Document returns the persisted form of the graph.
func (g *Graph) Document() (*domain.GraphDocument, error) {
	doc := &domain.GraphDocument{
		ID:            g.ID,
		Name:          g.Name,
		EntryNodeGUID: g.entryGUID,
		Nodes:         make([]domain.NodeRecord, 0, len(g.nodes)),
		Edges:         make([]domain.EdgeRecord, 0, len(g.edges)),
		Parameters:    make([]domain.ParameterRecord, 0, len(g.params)),
	}
	for _, n := range g.nodes {
		rec, err := n.Record()
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, e.Record())
	}
	for _, p := range g.params {
		doc.Parameters = append(doc.Parameters, p.Record())
	}
	return doc, nil
}
