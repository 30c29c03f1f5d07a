package domain

// GraphDocument is the persisted form of a graph: the node, edge and parameter
// lists plus the designated entry node. Indices are never persisted; they are
// rebuilt from these lists on load.
type GraphDocument struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`
	EntryNodeGUID string            `json:"entry_node,omitempty" yaml:"entry_node,omitempty"`
	Nodes         []NodeRecord      `json:"nodes" yaml:"nodes"`
	Edges         []EdgeRecord      `json:"edges" yaml:"edges"`
	Parameters    []ParameterRecord `json:"parameters" yaml:"parameters"`
	Version       int               `json:"version" yaml:"version"`
}

// Position is a node's rectangle on the editor canvas.
type Position struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// NodeRecord is a persisted node. Fields holds the type-specific state
// (parameter GUIDs, wait counts); Values holds the inline values of data
// input ports keyed by port key.
type NodeRecord struct {
	GUID       string         `json:"guid" yaml:"guid"`
	Type       string         `json:"type" yaml:"type"`
	Position   Position       `json:"position" yaml:"position"`
	Expanded   bool           `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Locked     bool           `json:"locked,omitempty" yaml:"locked,omitempty"`
	CustomName string         `json:"custom_name,omitempty" yaml:"custom_name,omitempty"`
	Fields     map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	Values     map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

// EdgeRecord is a persisted edge. Endpoints are addressed by node GUID,
// field name and optional sub-identifier.
type EdgeRecord struct {
	GUID             string `json:"guid" yaml:"guid"`
	InputNodeGUID    string `json:"input_node" yaml:"input_node"`
	InputField       string `json:"input_field" yaml:"input_field"`
	InputIdentifier  string `json:"input_id,omitempty" yaml:"input_id,omitempty"`
	InputMultiple    bool   `json:"input_multiple,omitempty" yaml:"input_multiple,omitempty"`
	OutputNodeGUID   string `json:"output_node" yaml:"output_node"`
	OutputField      string `json:"output_field" yaml:"output_field"`
	OutputIdentifier string `json:"output_id,omitempty" yaml:"output_id,omitempty"`
	OutputMultiple   bool   `json:"output_multiple,omitempty" yaml:"output_multiple,omitempty"`
}

// ParameterRecord is a persisted graph-scoped parameter.
type ParameterRecord struct {
	GUID     string         `json:"guid" yaml:"guid"`
	Name     string         `json:"name" yaml:"name"`
	Type     string         `json:"type" yaml:"type"`
	Value    any            `json:"value,omitempty" yaml:"value,omitempty"`
	Input    bool           `json:"input,omitempty" yaml:"input,omitempty"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Clone returns a deep copy of the document. Field and setting maps are
// copied recursively so stores can hand out documents without aliasing.
func (d *GraphDocument) Clone() *GraphDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Nodes = make([]NodeRecord, len(d.Nodes))
	for i, n := range d.Nodes {
		n.Fields = cloneMap(n.Fields)
		n.Values = cloneMap(n.Values)
		out.Nodes[i] = n
	}
	out.Edges = append([]EdgeRecord(nil), d.Edges...)
	out.Parameters = make([]ParameterRecord, len(d.Parameters))
	for i, p := range d.Parameters {
		p.Value = cloneValue(p.Value)
		p.Settings = cloneMap(p.Settings)
		out.Parameters[i] = p
	}
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []float64:
		return append([]float64(nil), t...)
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
