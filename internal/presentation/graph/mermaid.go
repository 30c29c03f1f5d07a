package graph

import (
	"fmt"
	"strings"

	sgraph "github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

// GraphOverlay contains run state to highlight on the diagram.
type GraphOverlay struct {
	Visited []string
	Running []string
}

// GenerateMermaid renders a graph as a Mermaid flowchart.
// Shapes follow the node role:
// - Entry: ((Circle))
// - Parameter: [/Parallelogram/]
// - Data-only: ([Stadium])
// - Sequential: [Rectangle]
// Control edges are solid, data edges dotted and labelled with their fields.
func GenerateMermaid(g *sgraph.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := g.EntryGUID()
	for _, n := range g.Nodes() {
		opener, closer := "[", "]"
		switch {
		case n.GUID == entry || n.Type() == nodes.TypeEntry:
			opener, closer = "((", "))"
		case n.Type() == sgraph.ParameterNodeType:
			opener, closer = "[/", "/]"
		case !n.IsSequential():
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.GUID), opener, escape(n.Name()), closer)
	}

	for _, e := range g.Edges() {
		from, to := mermaidID(e.OutputNodeGUID), mermaidID(e.InputNodeGUID)
		switch {
		case e.OutputPort() != nil && !e.OutputPort().Control:
			fmt.Fprintf(&sb, "    %s -. \"%s → %s\" .-> %s\n", from, escape(e.OutputField), escape(e.InputField), to)
		case e.OutputField != sgraph.FieldEnd && e.OutputField != nodes.EntryOutputField:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(e.OutputField), to)
		default:
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, guid := range overlay.Visited {
			if guid == "" || seen[guid] {
				continue
			}
			seen[guid] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", mermaidID(guid))
		}
		for _, guid := range overlay.Running {
			fmt.Fprintf(&sb, "    class %s running;\n", mermaidID(guid))
		}
	}

	return sb.String()
}

// mermaidID prefixes GUIDs so ids starting with a digit stay valid.
func mermaidID(guid string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "n_" + r.Replace(guid)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
