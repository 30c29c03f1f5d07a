package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/skillgraph/internal/validator"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/scheduler"
)

// Markdown describes g as a markdown report: parameters, nodes, the
// breadth-first control order from the entry node, edges and any
// validation findings.
func Markdown(g *graph.Graph, report *validator.Report) string {
	var b strings.Builder
	title := g.Name
	if title == "" {
		title = g.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **id**: `%s`\n", g.ID)
	if entry, ok := g.EntryNode(); ok {
		fmt.Fprintf(&b, "- **entry**: %s (`%s`)\n", entry.Name(), entry.GUID)
	} else {
		b.WriteString("- **entry**: _none_\n")
	}
	fmt.Fprintf(&b, "- **nodes**: %d, **edges**: %d\n\n", len(g.Nodes()), len(g.Edges()))

	if params := g.Parameters(); len(params) > 0 {
		b.WriteString("## Parameters\n\n| Name | Type | Value |\n|---|---|---|\n")
		for _, p := range params {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Name, p.Type.Name(), cell(p.Value))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Nodes\n\n| Name | Type | GUID | Flow |\n|---|---|---|---|\n")
	for _, n := range g.Nodes() {
		flow := "data"
		if n.IsSequential() {
			flow = "sequential"
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n", n.Name(), n.Type(), n.GUID, flow)
	}
	b.WriteString("\n")

	if order := scheduler.Timeline(g); len(order) > 0 {
		b.WriteString("## Timeline\n\n")
		for i, guid := range order {
			fmt.Fprintf(&b, "%d. %s\n", i+1, nodeName(g, guid))
		}
		b.WriteString("\n")
	}

	if edges := g.Edges(); len(edges) > 0 {
		b.WriteString("## Edges\n\n")
		lines := make([]string, 0, len(edges))
		for _, e := range edges {
			kind := "data"
			if p := e.OutputPort(); p != nil && p.Control {
				kind = "control"
			}
			lines = append(lines, fmt.Sprintf("- `%s.%s` → `%s.%s` (%s)",
				nodeName(g, e.OutputNodeGUID), e.OutputField, nodeName(g, e.InputNodeGUID), e.InputField, kind))
		}
		sort.Strings(lines)
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}

	if report != nil && len(report.Problems) > 0 {
		b.WriteString("## Problems\n\n")
		for _, p := range report.Problems {
			fmt.Fprintf(&b, "- **%s** %s: %s\n", p.Severity, p.Subject, p.Message)
		}
	}
	return b.String()
}

func nodeName(g *graph.Graph, guid string) string {
	if n, ok := g.Node(guid); ok {
		return n.Name()
	}
	return guid
}

func cell(v any) string {
	s := fmt.Sprint(v)
	if s == "" {
		return "_empty_"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
