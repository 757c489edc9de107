package ai_services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/flows"
	"taskflow-backend/flows/flowstest"
	"taskflow-backend/models"
)

func TestRegisterGenkitFlows(t *testing.T) {
	ctx := context.Background()
	g, err := genkit.Init(ctx)
	require.NoError(t, err)

	model := flowstest.NewModel().
		Respond(flows.NameSuggestTaskOrder, `{"orderedTasks":["B","A"],"reasoning":"B vence antes"}`)
	registry := RegisterGenkitFlows(g, flows.Runtime{Model: model})

	var catalog []string
	for _, info := range flows.Catalog() {
		catalog = append(catalog, info.Name)
	}
	assert.Equal(t, catalog, registry.Names())

	run, ok := registry.Runner(flows.NameSuggestTaskOrder)
	require.True(t, ok)

	out, err := run(ctx, json.RawMessage(`{"tasks":[{"id":"A","title":"Write","priority":"Low"},{"id":"B","title":"Fix","priority":"High"}]}`))
	require.NoError(t, err)

	order, ok := out.(*models.TaskOrderOutput)
	require.True(t, ok, "tipo inesperado %T", out)
	assert.Equal(t, []string{"B", "A"}, order.OrderedTasks)

	_, err = run(ctx, json.RawMessage(`{"tasks":`))
	assert.Equal(t, flows.KindInvalidInput, flows.KindOf(err))

	_, err = run(ctx, json.RawMessage(`{"tasks":[{"id":"A","title":"Write"}]}`))
	assert.Equal(t, flows.KindInvalidInput, flows.KindOf(err))
	assert.Equal(t, 1, model.CallCount(flows.NameSuggestTaskOrder))

	_, ok = registry.Runner("emailGenerator")
	assert.False(t, ok)
}
