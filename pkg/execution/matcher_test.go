package execution

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/loadsmith/cargoflow/pkg/events"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainEvent(eventType string, module models.ModuleContext, payload map[string]any) *events.DomainEvent {
	return &events.DomainEvent{
		ID:         "evt-1",
		EventType:  eventType,
		Module:     module,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func TestMatcher_MatchesTriggerType(t *testing.T) {
	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	workflow := testutil.CreateTestWorkflow()
	event := domainEvent("load_status_changed", models.ModuleBroker, map[string]any{
		"load": map[string]any{"status": "delivered"},
	})

	matches := matcher.Match(event, []*models.Workflow{workflow})

	require.Len(t, matches, 1)
	assert.Equal(t, workflow.ID, matches[0].Workflow.ID)
	assert.Equal(t, workflow.TriggerNodes()[0].ID, matches[0].TriggerNode.ID)
}

func TestMatcher_RejectsDifferentEventType(t *testing.T) {
	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	workflow := testutil.CreateTestWorkflow()
	event := domainEvent("payment_received", models.ModuleBroker, map[string]any{})

	assert.Empty(t, matcher.Match(event, []*models.Workflow{workflow}))
}

func TestMatcher_SkipsUnconfiguredTrigger(t *testing.T) {
	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	workflow := testutil.CreateTestWorkflow()
	workflow.TriggerNodes()[0].IsConfigured = false

	event := domainEvent("load_status_changed", models.ModuleBroker, map[string]any{})

	assert.Empty(t, matcher.Match(event, []*models.Workflow{workflow}))
}

func TestMatcher_ScheduledTriggersNeverMatchDomainEvents(t *testing.T) {
	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	workflow := testutil.CreateTestWorkflow()
	workflow.TriggerNodes()[0].Config.Trigger = &models.TriggerConfig{
		Type:    models.TriggerScheduled,
		Filters: map[string]any{"cronExpression": "0 9 * * 1"},
	}

	event := domainEvent("scheduled", models.ModuleBroker, map[string]any{})

	assert.Empty(t, matcher.Match(event, []*models.Workflow{workflow}))
}

func TestMatcher_FilterBindings(t *testing.T) {
	tests := []struct {
		name        string
		triggerType models.TriggerType
		filters     map[string]any
		payload     map[string]any
		want        bool
	}{
		{
			name:        "status filter matches",
			triggerType: models.TriggerLoadStatusChanged,
			filters:     map[string]any{"statusFilter": "delivered"},
			payload:     map[string]any{"load": map[string]any{"status": "delivered"}},
			want:        true,
		},
		{
			name:        "status filter rejects other status",
			triggerType: models.TriggerLoadStatusChanged,
			filters:     map[string]any{"statusFilter": "delivered"},
			payload:     map[string]any{"load": map[string]any{"status": "in_transit"}},
			want:        false,
		},
		{
			name:        "rating threshold is a floor",
			triggerType: models.TriggerCarrierAssigned,
			filters:     map[string]any{"ratingThreshold": float64(4)},
			payload:     map[string]any{"carrier": map[string]any{"rating": float64(4.5)}},
			want:        true,
		},
		{
			name:        "rating below threshold rejected",
			triggerType: models.TriggerCarrierAssigned,
			filters:     map[string]any{"ratingThreshold": float64(4)},
			payload:     map[string]any{"carrier": map[string]any{"rating": float64(3.2)}},
			want:        false,
		},
		{
			name:        "amount threshold is a floor",
			triggerType: models.TriggerPaymentReceived,
			filters:     map[string]any{"amountThreshold": float64(1000)},
			payload:     map[string]any{"payment": map[string]any{"amount": float64(1000)}},
			want:        true,
		},
		{
			name:        "inventory threshold is a ceiling",
			triggerType: models.TriggerInventoryLow,
			filters:     map[string]any{"thresholdQuantity": float64(10)},
			payload:     map[string]any{"inventory": map[string]any{"quantity": float64(7)}},
			want:        true,
		},
		{
			name:        "hours remaining is a ceiling",
			triggerType: models.TriggerDriverHOSAlert,
			filters:     map[string]any{"hoursRemaining": float64(2)},
			payload:     map[string]any{"driver": map[string]any{"hoursOfService": float64(3)}},
			want:        false,
		},
		{
			name:        "document type filter",
			triggerType: models.TriggerDocumentUploaded,
			filters:     map[string]any{"documentType": "pod"},
			payload:     map[string]any{"document": map[string]any{"type": "pod"}},
			want:        true,
		},
		{
			name:        "unknown filter key imposes no constraint",
			triggerType: models.TriggerLoadStatusChanged,
			filters:     map[string]any{"somethingElse": "x"},
			payload:     map[string]any{"load": map[string]any{"status": "delivered"}},
			want:        true,
		},
		{
			name:        "filter on missing payload field rejects",
			triggerType: models.TriggerLoadStatusChanged,
			filters:     map[string]any{"statusFilter": "delivered"},
			payload:     map[string]any{},
			want:        false,
		},
	}

	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow := testutil.CreateTestWorkflow()
			workflow.TriggerNodes()[0].Config.Trigger = &models.TriggerConfig{
				Type:    tt.triggerType,
				Filters: tt.filters,
			}

			event := domainEvent(string(tt.triggerType), models.ModuleBroker, tt.payload)
			matches := matcher.Match(event, []*models.Workflow{workflow})

			if tt.want {
				assert.Len(t, matches, 1)
			} else {
				assert.Empty(t, matches)
			}
		})
	}
}

func TestMatcher_MultipleTriggersYieldMultipleMatches(t *testing.T) {
	matcher := NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	workflow := testutil.CreateTestWorkflow()
	second := testutil.CreateTestNode(models.KindTrigger)
	workflow.Nodes = append(workflow.Nodes, second)

	event := domainEvent("load_status_changed", models.ModuleBroker, map[string]any{})
	matches := matcher.Match(event, []*models.Workflow{workflow})

	assert.Len(t, matches, 2)
}
