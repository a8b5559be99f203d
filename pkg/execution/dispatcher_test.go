package execution

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func dispatcherExecution() *models.Execution {
	return &models.Execution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     models.ExecutionRunning,
		StartedAt:  time.Now().UTC(),
		Context: map[string]any{
			"event": map[string]any{
				"load": map[string]any{"id": "L-77", "status": "delivered"},
			},
			"actions": map[string]any{},
		},
	}
}

func TestDispatcher_RecordingActionRendersParams(t *testing.T) {
	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type: models.ActionSendEmail,
			Params: map[string]any{
				"to":      "ops@example.com",
				"subject": "Load {{.event.load.id}} {{.event.load.status}}",
			},
		},
	}))

	result, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.NoError(t, err)

	assert.Equal(t, "send_email", result["action_type"])
	assert.NotEmpty(t, result["performed_at"])

	params, ok := result["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Load L-77 delivered", params["subject"])
}

func TestDispatcher_WebhookAction(t *testing.T) {
	var received struct {
		method string
		header string
		body   map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.method = r.Method
		received.header = r.Header.Get("X-Source")

		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &received.body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted": true}`))
	}))
	defer server.Close()

	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type: models.ActionWebhook,
			Params: map[string]any{
				"url":     server.URL,
				"body":    `{"load_id": "{{.event.load.id}}"}`,
				"headers": map[string]any{"X-Source": "cargoflow"},
			},
		},
	}))

	result, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, received.method)
	assert.Equal(t, "cargoflow", received.header)
	assert.Equal(t, "L-77", received.body["load_id"])

	assert.Equal(t, float64(http.StatusOK), result["status_code"])
	assert.Equal(t, map[string]any{"accepted": true}, result["body"])
}

func TestDispatcher_WebhookRequiresURL(t *testing.T) {
	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type:   models.ActionWebhook,
			Params: map[string]any{},
		},
	}))

	_, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a url")
}

func TestDispatcher_APICallUsesEndpointAndPayload(t *testing.T) {
	var received struct {
		method string
		body   map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.method = r.Method

		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &received.body)

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type: models.ActionAPICall,
			Params: map[string]any{
				"endpoint": server.URL,
				"method":   http.MethodPut,
				"payload":  map[string]any{"load_id": "{{.event.load.id}}"},
			},
		},
	}))

	result, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, received.method)
	assert.Equal(t, "L-77", received.body["load_id"])
	assert.Equal(t, float64(http.StatusOK), result["status_code"])
}

func TestDispatcher_WebhookErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type:   models.ActionAPICall,
			Params: map[string]any{"endpoint": server.URL, "method": http.MethodGet},
		},
	}))

	_, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestDispatcher_RegisterOverridesHandler(t *testing.T) {
	dispatcher := newTestDispatcher()

	dispatcher.Register(models.ActionSendSMS, func(_ context.Context, params map[string]any, _ *models.Execution) (map[string]any, error) {
		return map[string]any{"provider": "twilio", "to": params["to"]}, nil
	})

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{
			Type:   models.ActionSendSMS,
			Params: map[string]any{"to": "+15551234567"},
		},
	}))

	result, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	require.NoError(t, err)
	assert.Equal(t, "twilio", result["provider"])
	assert.Equal(t, "+15551234567", result["to"])
}

func TestDispatcher_UnknownActionType(t *testing.T) {
	dispatcher := newTestDispatcher()

	node := testutil.CreateTestNode(models.KindAction, testutil.WithConfig(models.NodeConfig{
		Action: &models.ActionConfig{Type: "teleport_freight"},
	}))

	_, err := dispatcher.Dispatch(context.Background(), node, dispatcherExecution())
	assert.ErrorIs(t, err, ErrNoHandler)
}
