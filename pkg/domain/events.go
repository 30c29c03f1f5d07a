package domain

import (
	"context"
	"time"
)

// ChangeKind names a structural graph mutation.
type ChangeKind string

const (
	ChangeAddedNode   ChangeKind = "added_node"
	ChangeRemovedNode ChangeKind = "removed_node"
	ChangeAddedEdge   ChangeKind = "added_edge"
	ChangeRemovedEdge ChangeKind = "removed_edge"
	ChangeNodeChanged ChangeKind = "node_changed"
)

// GraphChange is emitted to editor collaborators after a structural mutation.
type GraphChange struct {
	Kind     ChangeKind `json:"kind"`
	NodeGUID string     `json:"node_guid,omitempty"`
	EdgeGUID string     `json:"edge_guid,omitempty"`
}

// SkillEvent describes a skill-level transition.
type SkillEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SkillID   string    `json:"skill_id"`
	GraphID   string    `json:"graph_id"`
	Frame     int       `json:"frame"`
}

// NodeEvent describes a node lifecycle transition inside a skill.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SkillID   string    `json:"skill_id"`
	NodeGUID  string    `json:"node_guid"`
	NodeType  string    `json:"node_type"`
	Frame     int       `json:"frame"`
	Err       error     `json:"-"`
}

// SkillHooks defines callbacks for scheduler observability.
// Any field may be nil.
type SkillHooks struct {
	OnSkillStart  func(context.Context, *SkillEvent)
	OnSkillFinish func(context.Context, *SkillEvent)
	OnTick        func(context.Context, *SkillEvent)
	OnNodeStart   func(context.Context, *NodeEvent)
	OnNodeFinish  func(context.Context, *NodeEvent)
	OnNodeError   func(context.Context, *NodeEvent)
}
