package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/eventbus"
	"github.com/loadsmith/cargoflow/pkg/events"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/otelhelper"
	"github.com/loadsmith/cargoflow/pkg/persistence"
	"github.com/loadsmith/cargoflow/pkg/scheduler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultExecutionTimeout bounds how long an execution may stay alive,
// pauses included, before it is failed instead of resumed.
const DefaultExecutionTimeout = 72 * time.Hour

var ErrExecutionFinished = errors.New("execution already finished")

// pendingNodesKey stores the not-yet-visited frontier in the execution
// context while the execution is paused on a delay node.
const pendingNodesKey = "pending_nodes"

// Engine drives workflow executions. One execution is a walk over the
// workflow graph starting at a matched trigger node; condition nodes route
// the walk by evaluation outcome, action nodes dispatch side effects, and
// delay nodes suspend the walk behind a durable timer.
type Engine struct {
	logger     *slog.Logger
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	timers     scheduler.TimerQueue
	matcher    *Matcher
	dispatcher *Dispatcher
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	timeout    time.Duration
}

func NewEngine(
	logger *slog.Logger,
	persist persistence.Persistence,
	timers scheduler.TimerQueue,
	publisher eventbus.EventPublisher,
) *Engine {
	return &Engine{
		logger:     logger.With("module", "execution_engine"),
		workflows:  persist.WorkflowRepository(),
		executions: persist.ExecutionRepository(),
		timers:     timers,
		matcher:    NewMatcher(logger),
		dispatcher: NewDispatcher(logger),
		publisher:  publisher,
		tracer:     otel.Tracer("cargoflow.execution"),
		timeout:    DefaultExecutionTimeout,
	}
}

// Dispatcher exposes the action dispatcher so deployments can register
// real delivery handlers.
func (e *Engine) Dispatcher() *Dispatcher {
	return e.dispatcher
}

// SetTimeout overrides the execution timeout. Zero restores the default.
func (e *Engine) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultExecutionTimeout
	}

	e.timeout = timeout
}

// HandleEvent fires every live workflow whose trigger matches the event.
// Each match starts an independent execution; one failing does not stop
// the others.
func (e *Engine) HandleEvent(ctx context.Context, event *events.DomainEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.handle_event",
		otelhelper.EventID(event.ID),
		otelhelper.Module(string(event.Module)),
	)
	defer span.End()

	workflows, err := e.workflows.List(ctx, persistence.ListWorkflowsOptions{
		Module:   event.Module,
		OnlyLive: true,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("list live workflows: %w", err)
	}

	matches := e.matcher.Match(event, workflows)

	var errs []error

	for _, match := range matches {
		if err := e.start(ctx, match.Workflow, match.TriggerNode, event.Payload); err != nil {
			e.logger.ErrorContext(ctx, "Failed to start execution",
				"workflow_id", match.Workflow.ID,
				"trigger_node_id", match.TriggerNode.ID,
				"error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// RunScheduled starts an execution for a cron-fired trigger node.
func (e *Engine) RunScheduled(ctx context.Context, workflowID, triggerNodeID string) error {
	workflow, err := e.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("fetch workflow %s: %w", workflowID, err)
	}

	if !workflow.IsActive || workflow.IsDraft {
		e.logger.InfoContext(ctx, "Skipping schedule for non-live workflow", "workflow_id", workflowID)

		return nil
	}

	node := workflow.NodeByID(triggerNodeID)
	if node == nil || node.Kind != models.KindTrigger {
		return fmt.Errorf("workflow %s has no trigger node %s: %w",
			workflowID, triggerNodeID, persistence.ErrWorkflowNotFound)
	}

	payload := map[string]any{
		"scheduled": map[string]any{
			"fired_at": time.Now().UTC().Format(time.RFC3339),
		},
	}

	return e.start(ctx, workflow, node, payload)
}

func (e *Engine) start(ctx context.Context, workflow *models.Workflow, trigger *models.Node, payload map[string]any) error {
	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		Status:     models.ExecutionRunning,
		StartedAt:  time.Now().UTC(),
		Path:       []string{},
		Context: map[string]any{
			"event":   payload,
			"actions": map[string]any{},
		},
		Logs: []models.ExecutionLog{},
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute",
		otelhelper.WorkflowID(workflow.ID),
		otelhelper.ExecutionID(execution.ID),
	)
	defer span.End()

	execution.Visit(trigger.ID, "matched", "trigger fired")

	if err := e.executions.Save(ctx, execution); err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionStarted{
		BaseEvent:     e.baseEvent(events.ExecutionStartedEvent, execution),
		TriggerNodeID: trigger.ID,
	})

	e.logger.InfoContext(ctx, "Execution started",
		"execution_id", execution.ID,
		"workflow_id", workflow.ID,
		"trigger_node_id", trigger.ID)

	return e.walk(ctx, workflow, execution, e.successors(workflow, trigger.ID, ""))
}

// walk visits frontier nodes breadth-first until the frontier drains, the
// execution pauses on a delay, or a node fails.
func (e *Engine) walk(ctx context.Context, workflow *models.Workflow, execution *models.Execution, frontier []string) error {
	for len(frontier) > 0 {
		if cancelled, err := e.cancelObserved(ctx, execution); err != nil {
			return err
		} else if cancelled {
			return nil
		}

		if time.Since(execution.StartedAt) > e.timeout {
			return e.fail(ctx, execution, "", "execution exceeded timeout")
		}

		nodeID := frontier[0]
		frontier = frontier[1:]

		node := workflow.NodeByID(nodeID)
		if node == nil {
			return e.fail(ctx, execution, nodeID, fmt.Sprintf("node %s not found in workflow", nodeID))
		}

		switch node.Kind {
		case models.KindCondition:
			next, err := e.visitCondition(ctx, execution, workflow, node)
			if err != nil {
				return e.fail(ctx, execution, node.ID, err.Error())
			}

			frontier = append(frontier, next...)

		case models.KindAction:
			if err := e.visitAction(ctx, execution, node); err != nil {
				return e.fail(ctx, execution, node.ID, err.Error())
			}

			frontier = append(frontier, e.successors(workflow, node.ID, "")...)

		case models.KindDelay:
			return e.pause(ctx, workflow, execution, node, frontier)

		default:
			return e.fail(ctx, execution, node.ID,
				fmt.Sprintf("node %s of kind %s cannot be an execution target", node.ID, node.Kind))
		}

		if err := e.executions.Save(ctx, execution); err != nil {
			return fmt.Errorf("persist execution %s: %w", execution.ID, err)
		}
	}

	execution.Finish(models.ExecutionCompleted)
	delete(execution.Context, pendingNodesKey)

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionCompleted{
		BaseEvent: e.baseEvent(events.ExecutionCompletedEvent, execution),
		Path:      execution.Path,
	})

	e.logger.InfoContext(ctx, "Execution completed",
		"execution_id", execution.ID,
		"path_length", len(execution.Path))

	return nil
}

func (e *Engine) visitCondition(ctx context.Context, execution *models.Execution, workflow *models.Workflow, node *models.Node) ([]string, error) {
	cfg := node.Config.Condition
	if !node.IsConfigured || cfg == nil {
		return nil, fmt.Errorf("condition node %s is not configured", node.ID)
	}

	outcome, err := EvaluateCondition(cfg, e.conditionData(execution))
	if err != nil {
		return nil, fmt.Errorf("evaluate condition node %s: %w", node.ID, err)
	}

	handle := models.HandleFalse
	if outcome {
		handle = models.HandleTrue
	}

	execution.Visit(node.ID, "evaluated", "condition "+handle)
	e.publishNodeVisited(ctx, execution, node.ID, "evaluated")

	// An unwired branch ends the walk on that side cleanly.
	return e.successors(workflow, node.ID, handle), nil
}

func (e *Engine) visitAction(ctx context.Context, execution *models.Execution, node *models.Node) error {
	if !node.IsConfigured || node.Config.Action == nil {
		return fmt.Errorf("action node %s is not configured", node.ID)
	}

	result, err := e.dispatcher.Dispatch(ctx, node, execution)
	if err != nil {
		return fmt.Errorf("action node %s: %w", node.ID, err)
	}

	if actions, ok := execution.Context["actions"].(map[string]any); ok {
		actions[node.ID] = result
	}

	execution.Visit(node.ID, "completed", string(node.Config.Action.Type))
	e.publishNodeVisited(ctx, execution, node.ID, "completed")

	return nil
}

// pause suspends the execution on a delay node. The rest of the frontier is
// parked in the execution context so Resume can rebuild it.
func (e *Engine) pause(ctx context.Context, workflow *models.Workflow, execution *models.Execution, node *models.Node, frontier []string) error {
	cfg := node.Config.Delay
	if !node.IsConfigured || cfg == nil {
		return e.fail(ctx, execution, node.ID, fmt.Sprintf("delay node %s is not configured", node.ID))
	}

	resumeAt, err := resolveDelay(cfg, workflow.Hours(), time.Now().UTC())
	if err != nil {
		return e.fail(ctx, execution, node.ID, err.Error())
	}

	execution.Visit(node.ID, "paused", "delayed until "+resumeAt.Format(time.RFC3339))
	execution.Status = models.ExecutionPaused
	execution.Context[pendingNodesKey] = frontier

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	timer := &scheduler.Timer{
		ID:          timerID(execution.ID, node.ID),
		ExecutionID: execution.ID,
		NodeID:      node.ID,
		DueAt:       resumeAt,
	}

	if err := e.timers.Schedule(ctx, timer); err != nil {
		return fmt.Errorf("schedule resume timer for execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionPaused{
		BaseEvent: e.baseEvent(events.ExecutionPausedEvent, execution),
		NodeID:    node.ID,
		ResumeAt:  resumeAt,
	})

	e.logger.InfoContext(ctx, "Execution paused",
		"execution_id", execution.ID,
		"node_id", node.ID,
		"resume_at", resumeAt)

	return nil
}

// Resume continues a paused execution once its delay timer fires. Timers
// for executions that finished or were cancelled in the meantime are
// dropped silently.
func (e *Engine) Resume(ctx context.Context, timer *scheduler.Timer) error {
	execution, err := e.executions.GetByID(ctx, timer.ExecutionID)
	if err != nil {
		if persistence.IsExecutionNotFound(err) {
			e.logger.WarnContext(ctx, "Dropping timer for unknown execution",
				"execution_id", timer.ExecutionID)

			return nil
		}

		return fmt.Errorf("fetch execution %s: %w", timer.ExecutionID, err)
	}

	if execution.Status != models.ExecutionPaused {
		e.logger.InfoContext(ctx, "Dropping timer, execution no longer paused",
			"execution_id", execution.ID,
			"status", execution.Status)

		return nil
	}

	workflow, err := e.workflows.GetByID(ctx, execution.WorkflowID)
	if err != nil {
		return fmt.Errorf("fetch workflow %s: %w", execution.WorkflowID, err)
	}

	if !workflow.IsActive || workflow.IsDraft {
		e.logger.InfoContext(ctx, "Workflow deactivated while paused, cancelling execution",
			"execution_id", execution.ID,
			"workflow_id", workflow.ID)

		return e.cancelHalted(ctx, execution)
	}

	if time.Since(execution.StartedAt) > e.timeout {
		return e.fail(ctx, execution, timer.NodeID, "execution exceeded timeout while paused")
	}

	execution.Status = models.ExecutionRunning

	frontier := e.successors(workflow, timer.NodeID, "")
	frontier = append(frontier, pendingNodes(execution)...)
	delete(execution.Context, pendingNodesKey)

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionResumed{
		BaseEvent: e.baseEvent(events.ExecutionResumedEvent, execution),
		NodeID:    timer.NodeID,
	})

	e.logger.InfoContext(ctx, "Execution resumed",
		"execution_id", execution.ID,
		"node_id", timer.NodeID)

	return e.walk(ctx, workflow, execution, frontier)
}

// Cancel moves a running or paused execution to cancelled and discards its
// pending resume timer. Finished executions cannot be cancelled.
func (e *Engine) Cancel(ctx context.Context, executionID string) error {
	execution, err := e.executions.GetByID(ctx, executionID)
	if err != nil {
		return err
	}

	if execution.Status.Terminal() {
		return fmt.Errorf("execution %s: %w", executionID, ErrExecutionFinished)
	}

	if execution.Status == models.ExecutionPaused && execution.CurrentNodeID != "" {
		err := e.timers.Cancel(ctx, timerID(execution.ID, execution.CurrentNodeID))
		if err != nil && !errors.Is(err, scheduler.ErrTimerNotFound) {
			return fmt.Errorf("cancel resume timer for execution %s: %w", executionID, err)
		}
	}

	execution.Finish(models.ExecutionCancelled)
	delete(execution.Context, pendingNodesKey)

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", executionID, err)
	}

	e.publish(ctx, execution, events.ExecutionCancelled{
		BaseEvent: e.baseEvent(events.ExecutionCancelledEvent, execution),
	})

	e.logger.InfoContext(ctx, "Execution cancelled", "execution_id", executionID)

	return nil
}

func (e *Engine) fail(ctx context.Context, execution *models.Execution, nodeID, reason string) error {
	if nodeID != "" {
		execution.Visit(nodeID, "failed", reason)
	}

	execution.Finish(models.ExecutionFailed)
	delete(execution.Context, pendingNodesKey)

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionFailed{
		BaseEvent: e.baseEvent(events.ExecutionFailedEvent, execution),
		NodeID:    nodeID,
		Reason:    reason,
	})

	e.logger.WarnContext(ctx, "Execution failed",
		"execution_id", execution.ID,
		"node_id", nodeID,
		"reason", reason)

	return nil
}

// cancelObserved re-reads the persisted execution and workflow so a Cancel
// issued from the API, or a deactivation of the workflow, is honored before
// the next node visit. Visits already made stand.
func (e *Engine) cancelObserved(ctx context.Context, execution *models.Execution) (bool, error) {
	fresh, err := e.executions.GetByID(ctx, execution.ID)
	if err != nil {
		return false, fmt.Errorf("refresh execution %s: %w", execution.ID, err)
	}

	if fresh.Status == models.ExecutionCancelled {
		e.logger.InfoContext(ctx, "Cancellation observed, stopping walk",
			"execution_id", execution.ID)

		return true, nil
	}

	workflow, err := e.workflows.GetByID(ctx, execution.WorkflowID)
	if err != nil {
		return false, fmt.Errorf("refresh workflow %s: %w", execution.WorkflowID, err)
	}

	if !workflow.IsActive || workflow.IsDraft {
		e.logger.InfoContext(ctx, "Workflow deactivated mid-run, cancelling execution",
			"execution_id", execution.ID,
			"workflow_id", workflow.ID)

		if err := e.cancelHalted(ctx, execution); err != nil {
			return false, err
		}

		return true, nil
	}

	return false, nil
}

// cancelHalted finishes an execution as cancelled after its workflow left
// the live set.
func (e *Engine) cancelHalted(ctx context.Context, execution *models.Execution) error {
	execution.Finish(models.ExecutionCancelled)
	delete(execution.Context, pendingNodesKey)

	if err := e.executions.Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution %s: %w", execution.ID, err)
	}

	e.publish(ctx, execution, events.ExecutionCancelled{
		BaseEvent: e.baseEvent(events.ExecutionCancelledEvent, execution),
	})

	return nil
}

// successors returns the targets of the node's outgoing edges carrying the
// given source handle.
func (e *Engine) successors(workflow *models.Workflow, nodeID, handle string) []string {
	next := []string{}

	for _, edge := range workflow.OutgoingEdges(nodeID) {
		if edge.SourceHandle == handle {
			next = append(next, edge.Target)
		}
	}

	return next
}

// conditionData exposes the triggering event's fields at the top level plus
// prior action results under "actions".
func (e *Engine) conditionData(execution *models.Execution) map[string]any {
	data := map[string]any{}

	if event, ok := execution.Context["event"].(map[string]any); ok {
		for k, v := range event {
			data[k] = v
		}
	}

	data["actions"] = execution.Context["actions"]

	return data
}

func (e *Engine) baseEvent(eventType events.EventType, execution *models.Execution) events.BaseEvent {
	return events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}
}

func (e *Engine) publish(ctx context.Context, execution *models.Execution, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, events.ExecutionTopic, execution.WorkflowID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish execution event",
			"event_type", event.GetType(),
			"execution_id", execution.ID,
			"error", err)
	}
}

func (e *Engine) publishNodeVisited(ctx context.Context, execution *models.Execution, nodeID, status string) {
	e.publish(ctx, execution, events.NodeVisited{
		BaseEvent: e.baseEvent(events.NodeVisitedEvent, execution),
		NodeID:    nodeID,
		Status:    status,
	})
}

func timerID(executionID, nodeID string) string {
	return executionID + ":" + nodeID
}

// pendingNodes recovers the parked frontier. After a JSON round trip the
// slice arrives as []any.
func pendingNodes(execution *models.Execution) []string {
	switch v := execution.Context[pendingNodesKey].(type) {
	case []string:
		return v
	case []any:
		nodes := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				nodes = append(nodes, s)
			}
		}

		return nodes
	default:
		return nil
	}
}
