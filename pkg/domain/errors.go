package domain

import "errors"

var (
	// ErrNodeNotFound is returned when a node GUID does not resolve in a graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an edge GUID does not resolve in a graph.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrPortNotFound is returned when a (field, identifier) pair names no port.
	ErrPortNotFound = errors.New("port not found")
	// ErrDuplicateNode is returned when a node GUID is already registered.
	ErrDuplicateNode = errors.New("duplicate node guid")
	// ErrDuplicateEdge is returned when an edge GUID is already registered.
	ErrDuplicateEdge = errors.New("duplicate edge guid")
	// ErrPortOccupied is returned when connecting to a single-edge port that
	// already has an edge and auto-disconnect is off.
	ErrPortOccupied = errors.New("port already connected")
	// ErrNotConnectable is returned when two ports violate the connection rules.
	ErrNotConnectable = errors.New("ports are not connectable")
	// ErrTypeMismatch is returned when a value does not fit a declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrParameterNotFound is returned when a parameter GUID does not resolve.
	ErrParameterNotFound = errors.New("parameter not found")
	// ErrUnknownNodeType is returned when no descriptor is registered for a type tag.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrNoEntryNode is returned when a skill starts on a graph without an entry node.
	ErrNoEntryNode = errors.New("graph has no entry node")
	// ErrGraphNotFound is returned when a graph document cannot be found in the store.
	ErrGraphNotFound = errors.New("graph not found")
	// ErrSkillFinished is returned when a finished skill is started again.
	ErrSkillFinished = errors.New("skill already finished")
)
