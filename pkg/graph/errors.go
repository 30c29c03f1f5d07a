package graph

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// TypeMismatchError reports a value that does not fit a declared type.
type TypeMismatchError struct {
	Target   string // parameter or port the value was meant for
	Expected string
	Value    any
	Reason   error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: cannot assign %T to %s: %v", e.Target, e.Value, e.Expected, e.Reason)
}

func (e *TypeMismatchError) Unwrap() error { return domain.ErrTypeMismatch }

// ConnectError reports why two ports could not be connected.
type ConnectError struct {
	Input  *Port
	Output *Port
	Reason string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s -> %s: %s", e.Output, e.Input, e.Reason)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// NodeError wraps a failure raised by a node behavior.
type NodeError struct {
	NodeGUID string
	NodeType string
	Op       string
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s) %s: %v", e.NodeGUID, e.NodeType, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// SafeCall runs fn and converts a panic into an error.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
