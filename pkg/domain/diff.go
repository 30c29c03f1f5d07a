package domain

import (
	"reflect"
	"sort"
)

// DocumentDiff lists the structural changes between two graph documents.
// It is designed to be serialized to JSON for editor sync and CLI output.
type DocumentDiff struct {
	GraphID string `json:"graph_id"`

	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`

	// Parameters maps parameter GUIDs to their new value.
	// Removed parameters are present with a nil value.
	Parameters map[string]any `json:"parameters,omitempty"`

	EntryChanged bool `json:"entry_changed,omitempty"`
}

// Empty reports whether the two documents were structurally equal.
func (d *DocumentDiff) Empty() bool {
	return d == nil || (len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 && len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 && len(d.Parameters) == 0 && !d.EntryChanged)
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, everything in newDoc is reported as added.
// Edges are compared by endpoint pairs, not by GUID, so a reload that
// reassigns edge GUIDs does not register as a change.
func Diff(oldDoc, newDoc *GraphDocument) *DocumentDiff {
	if newDoc == nil {
		return nil
	}
	if oldDoc == nil {
		oldDoc = &GraphDocument{}
	}

	diff := &DocumentDiff{
		GraphID:      newDoc.ID,
		EntryChanged: oldDoc.EntryNodeGUID != newDoc.EntryNodeGUID,
	}

	oldNodes := make(map[string]NodeRecord, len(oldDoc.Nodes))
	for _, n := range oldDoc.Nodes {
		oldNodes[n.GUID] = n
	}
	newNodes := make(map[string]struct{}, len(newDoc.Nodes))
	for _, n := range newDoc.Nodes {
		newNodes[n.GUID] = struct{}{}
		prev, ok := oldNodes[n.GUID]
		switch {
		case !ok:
			diff.AddedNodes = append(diff.AddedNodes, n.GUID)
		case !sameNode(prev, n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.GUID)
		}
	}
	for guid := range oldNodes {
		if _, ok := newNodes[guid]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, guid)
		}
	}

	oldEdges := make(map[EdgeKey]string, len(oldDoc.Edges))
	for _, e := range oldDoc.Edges {
		oldEdges[e.Key()] = e.GUID
	}
	newEdges := make(map[EdgeKey]struct{}, len(newDoc.Edges))
	for _, e := range newDoc.Edges {
		newEdges[e.Key()] = struct{}{}
		if _, ok := oldEdges[e.Key()]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, e.GUID)
		}
	}
	for key, guid := range oldEdges {
		if _, ok := newEdges[key]; !ok {
			diff.RemovedEdges = append(diff.RemovedEdges, guid)
		}
	}

	oldParams := make(map[string]ParameterRecord, len(oldDoc.Parameters))
	for _, p := range oldDoc.Parameters {
		oldParams[p.GUID] = p
	}
	params := make(map[string]any)
	seen := make(map[string]struct{}, len(newDoc.Parameters))
	for _, p := range newDoc.Parameters {
		seen[p.GUID] = struct{}{}
		prev, ok := oldParams[p.GUID]
		if !ok || prev.Name != p.Name || prev.Type != p.Type || !reflect.DeepEqual(prev.Value, p.Value) {
			params[p.GUID] = p.Value
		}
	}
	for guid := range oldParams {
		if _, ok := seen[guid]; !ok {
			params[guid] = nil
		}
	}
	if len(params) > 0 {
		diff.Parameters = params
	}

	for _, list := range [][]string{diff.AddedNodes, diff.RemovedNodes, diff.ChangedNodes, diff.AddedEdges, diff.RemovedEdges} {
		sort.Strings(list)
	}
	return diff
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	InputNode, InputField, InputID    string
	OutputNode, OutputField, OutputID string
}

// Key returns the endpoint pair of the edge.
func (e EdgeRecord) Key() EdgeKey {
	return EdgeKey{
		InputNode: e.InputNodeGUID, InputField: e.InputField, InputID: e.InputIdentifier,
		OutputNode: e.OutputNodeGUID, OutputField: e.OutputField, OutputID: e.OutputIdentifier,
	}
}

func sameNode(a, b NodeRecord) bool {
	return a.Type == b.Type && a.Position == b.Position && a.CustomName == b.CustomName &&
		a.Expanded == b.Expanded && a.Locked == b.Locked &&
		reflect.DeepEqual(a.Fields, b.Fields) && reflect.DeepEqual(a.Values, b.Values)
}
