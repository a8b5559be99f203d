// Package graph owns the node and edge collections of one in-progress
// workflow and enforces structural legality at mutation time.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound indicates a mutation referenced a node id absent
	// from the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates a disconnect referenced an unknown edge id.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrKindMismatch indicates a config update whose variant does not
	// match the node's kind.
	ErrKindMismatch = errors.New("config kind does not match node kind")
)

// ConnectionError is the normal, expected rejection of an illegal
// connection. It is an outcome for the caller to inspect and report, not a
// fault: callers must not log it as an error.
type ConnectionError struct {
	Source string
	Target string
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s -> %s rejected: %s", e.Source, e.Target, e.Reason)
}

// IsConnectionRejected reports whether err is a connection-legality
// rejection rather than a reference error.
func IsConnectionRejected(err error) bool {
	var ce *ConnectionError

	return errors.As(err, &ce)
}
