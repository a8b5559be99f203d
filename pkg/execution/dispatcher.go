package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/template"
)

// ActionHandler performs one action's side effect. Params arrive already
// template-rendered. The returned map is merged into the execution context
// under the action node's id.
type ActionHandler func(ctx context.Context, params map[string]any, execution *models.Execution) (map[string]any, error)

var ErrNoHandler = errors.New("no handler registered for action type")

// Dispatcher routes action nodes to their handlers. Delivery-oriented
// actions (email, sms, tasks, alerts) default to recording handlers that
// produce the outbound payload for downstream integrations; webhook and
// api_call perform the HTTP request directly.
type Dispatcher struct {
	logger   *slog.Logger
	handlers map[models.ActionType]ActionHandler
	client   *http.Client
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		logger:   logger.With("module", "action_dispatcher"),
		handlers: make(map[models.ActionType]ActionHandler),
		client:   &http.Client{Timeout: 30 * time.Second},
	}

	for _, actionType := range []models.ActionType{
		models.ActionSendEmail,
		models.ActionSendSMS,
		models.ActionSendNotification,
		models.ActionCreateAlert,
		models.ActionUpdateStatus,
		models.ActionUpdateField,
		models.ActionAssignResource,
		models.ActionCreateTask,
		models.ActionCreateFollowUp,
		models.ActionScheduleAppointment,
		models.ActionExportData,
	} {
		d.handlers[actionType] = d.recordAction(actionType)
	}

	d.handlers[models.ActionWebhook] = d.httpAction
	d.handlers[models.ActionAPICall] = d.httpAction

	return d
}

// Register replaces the handler for an action type. Lets deployments plug
// real delivery providers in place of the recording defaults.
func (d *Dispatcher) Register(actionType models.ActionType, handler ActionHandler) {
	d.handlers[actionType] = handler
}

// Dispatch renders the node's params and invokes its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, node *models.Node, execution *models.Execution) (map[string]any, error) {
	cfg := node.Config.Action
	if cfg == nil {
		return nil, fmt.Errorf("node %s has no action configuration", node.ID)
	}

	handler, ok := d.handlers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, cfg.Type)
	}

	params, err := template.RenderParams(cfg.Params, execution)
	if err != nil {
		return nil, fmt.Errorf("render params for node %s: %w", node.ID, err)
	}

	d.logger.DebugContext(ctx, "Dispatching action",
		"node_id", node.ID,
		"action_type", cfg.Type,
		"execution_id", execution.ID)

	return handler(ctx, params, execution)
}

func (d *Dispatcher) recordAction(actionType models.ActionType) ActionHandler {
	return func(ctx context.Context, params map[string]any, execution *models.Execution) (map[string]any, error) {
		d.logger.InfoContext(ctx, "Action recorded",
			"action_type", actionType,
			"execution_id", execution.ID)

		return map[string]any{
			"action_type":  string(actionType),
			"params":       params,
			"performed_at": time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
}

func (d *Dispatcher) httpAction(ctx context.Context, params map[string]any, _ *models.Execution) (map[string]any, error) {
	// Webhook forms configure "url", api_call forms configure "endpoint".
	url, _ := params["url"].(string)
	if url == "" {
		url, _ = params["endpoint"].(string)
	}

	if url == "" {
		return nil, errors.New("http action requires a url or endpoint")
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader

	// Rendered body templates come back typed: JSON-shaped output is
	// already a map, plain text stays a string.
	switch raw := params["body"].(type) {
	case string:
		if raw != "" {
			body = bytes.NewReader([]byte(raw))
		}
	case nil:
		if payload, ok := params["payload"]; ok {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal webhook payload: %w", err)
			}

			body = bytes.NewReader(data)
		}
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("marshal webhook body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if headers, ok := params["headers"].(map[string]any); ok {
		for name, value := range headers {
			if s, ok := value.(string); ok {
				req.Header.Set(name, s)
			}
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	result := map[string]any{
		"status_code": float64(resp.StatusCode),
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		result["body"] = parsed
	} else {
		result["body"] = string(respBody)
	}

	return result, nil
}
