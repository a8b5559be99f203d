package graph

import (
	"testing"

	"github.com/loadsmith/cargoflow/pkg/log"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()

	return New(registry.NewRegistry(log.WithModule("test")), models.ModuleBroker)
}

func TestGraph_AddNode(t *testing.T) {
	g := newTestGraph(t)

	node, err := g.AddNode(models.KindTrigger, models.Position{X: 10, Y: 20})
	require.NoError(t, err)

	assert.False(t, node.IsConfigured)
	assert.Equal(t, models.ModuleBroker, node.ModuleContext)
	assert.Equal(t, models.KindTrigger, node.Config.Kind())
	require.NotNil(t, node.Config.Trigger)
	assert.NotEmpty(t, node.Config.Trigger.Type)

	_, err = g.AddNode("gateway", models.Position{})
	assert.Error(t, err)
}

func TestGraph_UpdateNodeConfig_NotFound(t *testing.T) {
	g := newTestGraph(t)

	err := g.UpdateNodeConfig("node-missing", models.NodeConfig{
		Action: &models.ActionConfig{Type: models.ActionSendEmail},
	}, true)

	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_UpdateNodeConfig_KindMismatch(t *testing.T) {
	g := newTestGraph(t)

	node, err := g.AddNode(models.KindAction, models.Position{})
	require.NoError(t, err)

	err = g.UpdateNodeConfig(node.ID, models.NodeConfig{
		Delay: &models.DelayConfig{Type: models.DelayFixed, Amount: 1, Unit: models.UnitHours},
	}, true)

	require.ErrorIs(t, err, ErrKindMismatch)
	assert.False(t, node.IsConfigured)
}

func TestGraph_Connect(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	edge, err := g.Connect(trigger.ID, action.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.EdgeID(trigger.ID, action.ID, ""), edge.ID)
	assert.Len(t, g.Outgoing(trigger.ID), 1)
}

func TestGraph_Connect_RejectsDuplicate(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	_, err := g.Connect(trigger.ID, action.ID, "")
	require.NoError(t, err)

	_, err = g.Connect(trigger.ID, action.ID, "")
	require.Error(t, err)
	assert.True(t, IsConnectionRejected(err))
	assert.Len(t, g.Edges(), 1)
}

func TestGraph_Connect_ConditionHandlesAreDistinct(t *testing.T) {
	g := newTestGraph(t)

	condition, _ := g.AddNode(models.KindCondition, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	_, err := g.Connect(condition.ID, action.ID, models.HandleTrue)
	require.NoError(t, err)

	_, err = g.Connect(condition.ID, action.ID, models.HandleFalse)
	require.NoError(t, err)

	assert.Len(t, g.Edges(), 2)
}

func TestGraph_Connect_RejectsTriggerTarget(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	_, err := g.Connect(action.ID, trigger.ID, "")
	require.Error(t, err)
	assert.True(t, IsConnectionRejected(err))
}

func TestGraph_Connect_RejectsMissingEndpoint(t *testing.T) {
	g := newTestGraph(t)

	action, _ := g.AddNode(models.KindAction, models.Position{})

	_, err := g.Connect("node-ghost", action.ID, "")
	require.Error(t, err)
	assert.True(t, IsConnectionRejected(err))
}

func TestGraph_DeleteNode_CascadesEdges(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	condition, _ := g.AddNode(models.KindCondition, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	_, err := g.Connect(trigger.ID, condition.ID, "")
	require.NoError(t, err)
	_, err = g.Connect(condition.ID, action.ID, models.HandleTrue)
	require.NoError(t, err)

	require.NoError(t, g.DeleteNode(condition.ID))

	assert.Empty(t, g.Edges())
	assert.Empty(t, g.Outgoing(trigger.ID))
	assert.Len(t, g.Nodes(), 2)
}

func TestGraph_DeleteNode_NotFound(t *testing.T) {
	g := newTestGraph(t)

	require.ErrorIs(t, g.DeleteNode("node-missing"), ErrNodeNotFound)
}

func TestGraph_Disconnect(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})

	edge, err := g.Connect(trigger.ID, action.ID, "")
	require.NoError(t, err)

	require.NoError(t, g.Disconnect(edge.ID))
	assert.Empty(t, g.Edges())
	assert.Len(t, g.Nodes(), 2)

	require.ErrorIs(t, g.Disconnect(edge.ID), ErrEdgeNotFound)
}

func TestGraph_LoadAndClear(t *testing.T) {
	g := newTestGraph(t)

	trigger, _ := g.AddNode(models.KindTrigger, models.Position{})
	action, _ := g.AddNode(models.KindAction, models.Position{})
	_, err := g.Connect(trigger.ID, action.ID, "")
	require.NoError(t, err)

	nodes := g.Nodes()
	edges := g.Edges()

	other := newTestGraph(t)
	other.Load(models.ModuleCarrier, nodes, edges)

	assert.Len(t, other.Nodes(), 2)
	assert.Len(t, other.Outgoing(trigger.ID), 1)
	assert.Equal(t, models.ModuleCarrier, other.Module())

	other.Clear()
	assert.Empty(t, other.Nodes())
	assert.Empty(t, other.Edges())
	assert.Equal(t, models.ModuleCarrier, other.Module())
}

func TestGraph_LoadRescopesNewNodes(t *testing.T) {
	g := newTestGraph(t)

	g.Load(models.ModuleCarrier, nil, nil)

	node, err := g.AddNode(models.KindTrigger, models.Position{})
	require.NoError(t, err)
	assert.Equal(t, models.ModuleCarrier, node.ModuleContext)
}
