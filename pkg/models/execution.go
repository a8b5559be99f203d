package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionPaused    ExecutionStatus = "paused"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further node visits.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed || s == ExecutionCancelled
}

// ExecutionLog records one node visit outcome.
type ExecutionLog struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// Execution is one run of one workflow against one triggering event.
// Path is strictly the sequence of node ids actually visited, in
// visitation order; Logs mirror it one entry per visit so the final status
// is replayable from the log alone.
type Execution struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflow_id"`
	Status        ExecutionStatus `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CurrentNodeID string          `json:"current_node_id,omitempty"`
	Path          []string        `json:"execution_path"`
	Context       map[string]any  `json:"context"`
	Logs          []ExecutionLog  `json:"logs"`
}

// Visit appends a node to the path and records a log entry for it.
func (e *Execution) Visit(nodeID, status, message string) {
	e.CurrentNodeID = nodeID
	e.Path = append(e.Path, nodeID)
	e.Logs = append(e.Logs, ExecutionLog{
		NodeID:    nodeID,
		Timestamp: time.Now().UTC(),
		Status:    status,
		Message:   message,
	})
}

// Finish moves the execution to a terminal status and stamps completion.
func (e *Execution) Finish(status ExecutionStatus) {
	now := time.Now().UTC()
	e.Status = status
	e.CompletedAt = &now
	e.CurrentNodeID = ""
}
