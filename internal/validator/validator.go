// Package validator checks a graph document for structural defects before it
// is loaded or run.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is a single finding about one node, edge or parameter.
type Problem struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s", p.Severity, p.Subject, p.Message)
}

// Report collects every finding of a validation pass.
type Report struct {
	Problems []Problem `json:"problems"`
}

func (r *Report) add(sev Severity, subject, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the error-level problems.
func (r *Report) Errors() []Problem { return r.filter(SeverityError) }

// Warnings returns the warning-level problems.
func (r *Report) Warnings() []Problem { return r.filter(SeverityWarning) }

func (r *Report) filter(sev Severity) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Severity == sev {
			out = append(out, p)
		}
	}
	return out
}

// Err folds the error-level problems into one error, or nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, p := range errs {
		lines[i] = p.Subject + ": " + p.Message
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Validate inspects doc against the node types in reg. Structural defects
// (unknown types, dangling edges, a missing entry) are errors; nodes the
// entry can never reach are warnings.
func Validate(doc *domain.GraphDocument, reg *graph.Registry) *Report {
	r := &Report{}
	if doc == nil {
		r.add(SeverityError, "document", "is nil")
		return r
	}

	nodes := make(map[string]domain.NodeRecord, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, dup := nodes[n.GUID]; dup {
			r.add(SeverityError, "node "+n.GUID, "duplicate guid")
			continue
		}
		nodes[n.GUID] = n
		if _, ok := reg.Lookup(n.Type); !ok {
			r.add(SeverityError, "node "+n.GUID, "unknown node type %q", n.Type)
		}
	}

	params := make(map[string]bool, len(doc.Parameters))
	names := make(map[string]bool, len(doc.Parameters))
	for _, p := range doc.Parameters {
		if names[p.Name] {
			r.add(SeverityError, "parameter "+p.GUID, "duplicate name %q", p.Name)
		}
		params[p.GUID], names[p.Name] = true, true
	}
	for _, n := range doc.Nodes {
		ref, ok := n.Fields["parameter_guid"].(string)
		if ok && !params[ref] {
			r.add(SeverityWarning, "node "+n.GUID, "parameter %s is not declared; the node will be dropped", ref)
		}
	}

	for _, e := range doc.Edges {
		for _, end := range []string{e.OutputNodeGUID, e.InputNodeGUID} {
			if _, ok := nodes[end]; !ok {
				r.add(SeverityError, "edge "+e.GUID, "references missing node %q", end)
			}
		}
	}

	switch {
	case doc.EntryNodeGUID == "":
		r.add(SeverityError, "graph "+doc.ID, "no entry node")
	default:
		if _, ok := nodes[doc.EntryNodeGUID]; !ok {
			r.add(SeverityError, "graph "+doc.ID, "entry node %q not found", doc.EntryNodeGUID)
		}
	}

	if len(r.Errors()) > 0 {
		return r
	}

	g, err := graph.Load(doc, reg, graph.WithLogger(logging.NewNop()))
	if err != nil {
		r.add(SeverityError, "graph "+doc.ID, "load: %v", err)
		return r
	}
	for _, e := range doc.Edges {
		if _, ok := g.Edge(e.GUID); ok {
			continue
		}
		if _, ok := g.Node(e.InputNodeGUID); !ok {
			continue
		}
		if _, ok := g.Node(e.OutputNodeGUID); !ok {
			continue
		}
		r.add(SeverityError, "edge "+e.GUID, "%s.%s -> %s.%s does not connect compatible ports",
			e.OutputNodeGUID, e.OutputField, e.InputNodeGUID, e.InputField)
	}

	for _, guid := range Unreachable(g) {
		r.add(SeverityWarning, "node "+guid, "unreachable from the entry node")
	}
	return r
}

// Unreachable lists, in sorted order, the nodes no skill started at the
// entry node can execute or read from. Control edges carry execution; a
// node feeding data into a reachable node counts as reachable.
func Unreachable(g *graph.Graph) []string {
	entry, ok := g.EntryNode()
	if !ok {
		return nil
	}
	seen := map[string]bool{entry.GUID: true}
	queue := []*graph.Node{entry}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, p := range n.GetAllPorts() {
			for _, e := range p.Edges() {
				var next *graph.Node
				switch {
				case p.Control && e.OutputPort() == p:
					next = e.InputNode()
				case !p.Control && e.InputPort() == p:
					next = e.OutputNode()
				}
				if next != nil && !seen[next.GUID] {
					seen[next.GUID] = true
					queue = append(queue, next)
				}
			}
		}
	}

	var out []string
	for _, n := range g.Nodes() {
		if !seen[n.GUID] {
			out = append(out, n.GUID)
		}
	}
	sort.Strings(out)
	return out
}
