// Package events defines the event contracts crossing the engine boundary:
// domain events consumed from the TMS, and execution lifecycle events the
// engine emits.
package events

import (
	"time"

	"github.com/loadsmith/cargoflow/pkg/models"
)

type EventType string

// Kafka topics.
const (
	DomainTopic    = "cargoflow.domain.events"
	ExecutionTopic = "cargoflow.execution.events"
)

const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	DomainEventReceived EventType = "domain.event.received"

	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionPausedEvent    EventType = "execution.paused"
	ExecutionResumedEvent   EventType = "execution.resumed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
	NodeVisitedEvent        EventType = "execution.node.visited"
)

// DomainEvent is what the TMS publishes when something happens: a load
// changes status, a payment lands, a document arrives. Payload field names
// are dotted-path addressable by trigger filters and condition rules.
type DomainEvent struct {
	ID         string               `json:"id"`
	EventType  string               `json:"event_type"`
	Module     models.ModuleContext `json:"module_context"`
	Payload    map[string]any       `json:"payload"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventReceived
}

type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	WorkflowID  string    `json:"workflow_id"`
	ExecutionID string    `json:"execution_id"`
}

type ExecutionStarted struct {
	BaseEvent

	TriggerNodeID string `json:"trigger_node_id"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

type ExecutionCompleted struct {
	BaseEvent

	Path []string `json:"execution_path"`
}

func (e ExecutionCompleted) GetType() EventType { return ExecutionCompletedEvent }

type ExecutionFailed struct {
	BaseEvent

	NodeID string `json:"node_id,omitempty"`
	Reason string `json:"reason"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

type ExecutionPaused struct {
	BaseEvent

	NodeID   string    `json:"node_id"`
	ResumeAt time.Time `json:"resume_at"`
}

func (e ExecutionPaused) GetType() EventType { return ExecutionPausedEvent }

type ExecutionResumed struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e ExecutionResumed) GetType() EventType { return ExecutionResumedEvent }

type ExecutionCancelled struct {
	BaseEvent
}

func (e ExecutionCancelled) GetType() EventType { return ExecutionCancelledEvent }

type NodeVisited struct {
	BaseEvent

	NodeID string `json:"node_id"`
	Status string `json:"status"`
}

func (e NodeVisited) GetType() EventType { return NodeVisitedEvent }
