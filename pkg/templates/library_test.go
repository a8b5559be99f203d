package templates

import (
	"testing"

	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_ForModule(t *testing.T) {
	lib := NewLibrary()

	require.NotEmpty(t, lib.All())

	for _, module := range models.AllModules() {
		for _, tpl := range lib.ForModule(module) {
			assert.Equal(t, module, tpl.ModuleContext)
		}
	}
}

func TestLibrary_GetUnknownTemplate(t *testing.T) {
	lib := NewLibrary()

	_, err := lib.Get("no-such-template")
	require.ErrorIs(t, err, ErrTemplateNotFound)
	assert.True(t, IsTemplateNotFound(err))
}

func TestLibrary_InstantiateProducesValidDraft(t *testing.T) {
	lib := NewLibrary()

	workflow, err := lib.Instantiate("broker-pod-reminder")
	require.NoError(t, err)

	assert.True(t, workflow.IsDraft)
	assert.False(t, workflow.IsActive)
	assert.Equal(t, 1, workflow.Version)
	assert.Equal(t, models.ModuleBroker, workflow.ModuleContext)

	result := validation.Validate(workflow.Nodes)
	assert.True(t, result.IsValid, "template instances must pass validation: %v", result.Errors)
}

func TestLibrary_InstantiateRemapsEdges(t *testing.T) {
	lib := NewLibrary()

	workflow, err := lib.Instantiate("broker-pod-reminder")
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, node := range workflow.Nodes {
		ids[node.ID] = true
	}

	for _, edge := range workflow.Edges {
		assert.True(t, ids[edge.Source], "edge source %s must reference an instance node", edge.Source)
		assert.True(t, ids[edge.Target], "edge target %s must reference an instance node", edge.Target)
		assert.Equal(t, models.EdgeID(edge.Source, edge.Target, edge.SourceHandle), edge.ID)
	}
}

func TestLibrary_InstancesHaveDisjointIDs(t *testing.T) {
	lib := NewLibrary()

	first, err := lib.Instantiate("carrier-hos-alert")
	require.NoError(t, err)
	second, err := lib.Instantiate("carrier-hos-alert")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	firstIDs := map[string]bool{}
	for _, node := range first.Nodes {
		firstIDs[node.ID] = true
	}

	for _, node := range second.Nodes {
		assert.False(t, firstIDs[node.ID], "node id %s reused across instances", node.ID)
	}
}

func TestLibrary_InstantiateDoesNotMutateTemplate(t *testing.T) {
	lib := NewLibrary()

	tpl, err := lib.Get("broker-pod-reminder")
	require.NoError(t, err)
	originalFirstID := tpl.Nodes[0].ID

	_, err = lib.Instantiate("broker-pod-reminder")
	require.NoError(t, err)

	assert.Equal(t, originalFirstID, tpl.Nodes[0].ID)
}
