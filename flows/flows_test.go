package flows_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"taskflow-backend/flows"
	"taskflow-backend/flows/flowstest"
	"taskflow-backend/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runtimeWith(model flows.Model) flows.Runtime {
	return flows.Runtime{Model: model, Session: flows.Session{UserID: "uid-1"}}
}

func twoTasks() models.TaskOrderInput {
	return models.TaskOrderInput{Tasks: []models.OrderableTask{
		{ID: "A", Title: "Write report", Priority: models.PriorityLow},
		{ID: "B", Title: "Fix prod bug", Priority: models.PriorityCritical, DueDate: "2024-05-01T12:00:00Z"},
	}}
}

func TestSuggestTaskOrderReturnsModelOrder(t *testing.T) {
	model := flowstest.NewModel().
		Respond(flows.NameSuggestTaskOrder, `{"orderedTasks":["B","A"],"reasoning":"B is critical"}`)

	out, err := flows.SuggestTaskOrder(context.Background(), runtimeWith(model), twoTasks())
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, out.OrderedTasks)
	assert.Equal(t, "B is critical", out.Reasoning)

	calls := model.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, flows.NameSuggestTaskOrder, calls[0].Flow)
	assert.Contains(t, calls[0].Instruction, "- ID: B\n  Title: Fix prod bug\n")
	assert.Equal(t, flows.SuggestTaskOrderFlow.OutputSchema(), calls[0].OutputSchema)
}

func TestInvalidInputNeverCallsModel(t *testing.T) {
	model := flowstest.NewModel().Default(`{}`)
	rt := runtimeWith(model)

	_, err := flows.SuggestTaskOrder(context.Background(), rt, models.TaskOrderInput{Tasks: []models.OrderableTask{
		{ID: "A", Title: "", Priority: models.PriorityLow},
	}})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)

	_, err = flows.SuggestTaskOrder(context.Background(), rt, models.TaskOrderInput{Tasks: []models.OrderableTask{
		{ID: "A", Title: "Write report", Priority: "Urgent"},
	}})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)

	_, err = flows.SummarizeNotes(context.Background(), rt, models.SummarizeNotesInput{NoteContent: "  "})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)

	assert.Zero(t, model.CallCount(""))
}

func TestInstructionUsesCanonicalPriority(t *testing.T) {
	model := flowstest.NewModel().
		Respond(flows.NameSuggestTaskOrder, `{"orderedTasks":["A"],"reasoning":"única"}`)

	_, err := flows.SuggestTaskOrder(context.Background(), runtimeWith(model), models.TaskOrderInput{Tasks: []models.OrderableTask{
		{ID: "A", Title: "Write report", Priority: "high"},
	}})
	require.NoError(t, err)

	calls := model.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Instruction, "  Priority: High\n")
	assert.NotContains(t, calls[0].Instruction, "Priority: high")
}

func TestDecodeInputRejectsMissingRequiredFields(t *testing.T) {
	raw := []byte(`{"tasks":[{"id":"t1","title":"Deploy","priority":"High","estimatedDuration":2,"requiredSkills":["go"]}],` +
		`"teamMembers":[{"id":"m1","name":"Ana","skills":["go"]}]}`)

	_, err := flows.DecodeInput[models.TaskDistributionInput](flows.NameSuggestTaskDistribution, raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, flows.ErrInvalidInput)
	assert.Contains(t, err.Error(), "availableHoursPerWeek")
	assert.Contains(t, err.Error(), "currentWorkload")
}

func TestDecodeInputNormalizesPayload(t *testing.T) {
	in, err := flows.DecodeInput[models.TaskOrderInput](flows.NameSuggestTaskOrder,
		[]byte(`{"tasks":[{"id":"A","title":"Write","priority":"low","estimatedDuration":"30"}]}`))
	require.NoError(t, err)

	want := models.TaskOrderInput{Tasks: []models.OrderableTask{
		{ID: "A", Title: "Write", Priority: models.PriorityLow, EstimatedDuration: 30},
	}}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("entrada diferente (-want +got):\n%s", diff)
	}

	_, err = flows.DecodeInput[models.TaskOrderInput]("writePoem", []byte(`{}`))
	assert.Equal(t, flows.KindInvalidInput, flows.KindOf(err))
}

func TestProviderErrorIsWrapped(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	model := flowstest.NewModel().Fail(flows.NameSummarizeNotes, providerErr)

	_, err := flows.SummarizeNotes(context.Background(), runtimeWith(model), models.SummarizeNotesInput{NoteContent: "reunião de segunda"})

	assert.ErrorIs(t, err, flows.ErrExternalCall)
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, flows.KindExternalCall, flows.KindOf(err))

	var fe *flows.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, flows.NameSummarizeNotes, fe.Flow)
}

func TestMissingModelIsExternalFailure(t *testing.T) {
	_, err := flows.SummarizeNotes(context.Background(), flows.Runtime{}, models.SummarizeNotesInput{NoteContent: "x"})
	assert.ErrorIs(t, err, flows.ErrExternalCall)
}

func TestCancelledContextReachesCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := flowstest.NewModel().Default(`{"summary":"- ok"}`)

	_, err := flows.SummarizeNotes(ctx, runtimeWith(model), models.SummarizeNotesInput{NoteContent: "x"})

	assert.ErrorIs(t, err, flows.ErrExternalCall)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmptyResponse(t *testing.T) {
	for _, payload := range []string{"", "   ", "null", "\nnull\n"} {
		model := flowstest.NewModel().Respond(flows.NameSummarizeNotes, payload)

		_, err := flows.SummarizeNotes(context.Background(), runtimeWith(model), models.SummarizeNotesInput{NoteContent: "x"})

		assert.ErrorIs(t, err, flows.ErrEmptyResponse, "payload %q", payload)
	}
}

func TestSchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"objeto vazio":     `{}`,
		"tipo errado":      `{"summary":42}`,
		"json quebrado":    `{"summary":"- a"`,
		"lista no lugar":   `["- a"]`,
		"resumo em branco": `{"summary":""}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			model := flowstest.NewModel().Respond(flows.NameSummarizeNotes, payload)

			_, err := flows.SummarizeNotes(context.Background(), runtimeWith(model), models.SummarizeNotesInput{NoteContent: "x"})

			assert.ErrorIs(t, err, flows.ErrSchemaMismatch)
			var verr *flows.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestExecuteReturnsTaggedResult(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameExtractTasksFromNotes, `{"tasks":"buy milk"}`)

	res := flows.ExtractTasksFromNotesFlow.Execute(context.Background(), runtimeWith(model), models.ExtractTasksFromNotesInput{Notes: "buy milk"})

	assert.False(t, res.IsOk())
	assert.Equal(t, flows.KindSchemaMismatch, res.Kind())
	require.NotNil(t, res.Failure())
	assert.Equal(t, flows.NameExtractTasksFromNotes, res.Failure().Flow)
}

func TestExtractTasksFromNotesAcceptsEmptyList(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameExtractTasksFromNotes, `{"tasks":[]}`)

	out, err := flows.ExtractTasksFromNotes(context.Background(), runtimeWith(model), models.ExtractTasksFromNotesInput{Notes: "nada a fazer"})
	require.NoError(t, err)
	assert.Empty(t, out.Tasks)
}

func TestCreateTaskFromTextLeavesDefaultsToConsumer(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameCreateTaskFromText, `{"title":"Call Bob"}`)

	out, err := flows.CreateTaskFromText(context.Background(), runtimeWith(model), models.CreateTaskFromTextInput{
		Command: "call Bob",
		Context: models.CommandContext{CurrentDate: "2024-05-01T09:00:00Z"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Call Bob", out.Title)
	assert.Empty(t, out.Priority)
	assert.Empty(t, out.DueDate)
}

func TestCreateTaskFromTextNormalizesPriority(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameCreateTaskFromText, `{"title":"Pay rent","dueDate":"2024-05-02T09:00:00Z","priority":"HIGH"}`)

	out, err := flows.CreateTaskFromText(context.Background(), runtimeWith(model), models.CreateTaskFromTextInput{
		Command: "pay rent tomorrow, it's important",
		Context: models.CommandContext{CurrentDate: "2024-05-01T09:00:00Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, out.Priority)
}

func TestSuggestTaskDistribution(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameSuggestTaskDistribution,
		`[{"taskId":"t1","teamMemberId":"m2","reason":"knows sql"},{"taskId":"t9","teamMemberId":"m1","reason":"?"}]`)

	got, err := flows.SuggestTaskDistribution(context.Background(), runtimeWith(model), models.TaskDistributionInput{
		Tasks: []models.DistributableTask{
			{ID: "t1", Title: "Migration", Priority: models.PriorityHigh, EstimatedDuration: 2, RequiredSkills: []string{"sql"}},
		},
		TeamMembers: []models.TeamMember{
			{ID: "m1", Name: "Ana", AvailableHoursPerWeek: 40, Skills: []string{"go"}},
			{ID: "m2", Name: "Rui", AvailableHoursPerWeek: 20, Skills: []string{"sql"}, CurrentWorkload: 5},
		},
	})
	require.NoError(t, err)

	want := []models.TaskAssignment{
		{TaskID: "t1", TeamMemberID: "m2", Reason: "knows sql"},
		{TaskID: "t9", TeamMemberID: "m1", Reason: "?"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("atribuições diferentes (-want +got):\n%s", diff)
	}
}

func TestGenerateTeamStatusSummary(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameGenerateTeamStatusSummary, `{"summary":"3 done, 2 pending"}`)

	out, err := flows.GenerateTeamStatusSummary(context.Background(), runtimeWith(model), models.TeamStatusSummaryInput{ProjectID: "proj-7"})
	require.NoError(t, err)

	assert.Equal(t, "3 done, 2 pending", out.Summary)
	assert.Contains(t, model.Calls()[0].Instruction, "project with ID proj-7.")
}

func TestConcurrentInvocationsAreIndependent(t *testing.T) {
	model := flowstest.NewModel().Respond(flows.NameSummarizeNotes, `{"summary":"- ok"}`)
	rt := runtimeWith(model)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			out, err := flows.SummarizeNotes(ctx, rt, models.SummarizeNotesInput{NoteContent: fmt.Sprintf("nota %d", i)})
			if err != nil {
				return err
			}
			if out.Summary != "- ok" {
				return fmt.Errorf("resumo inesperado: %q", out.Summary)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 20, model.CallCount(flows.NameSummarizeNotes))
}

func TestCatalogListsEveryFlow(t *testing.T) {
	var names []string
	for _, info := range flows.Catalog() {
		names = append(names, info.Name)
		assert.NotNil(t, info.Input)
		assert.NotNil(t, info.Output)
	}

	assert.Equal(t, []string{
		flows.NameCreateTaskFromText,
		flows.NameExtractTasksFromNotes,
		flows.NameGenerateTeamStatusSummary,
		flows.NameSuggestTaskDistribution,
		flows.NameSuggestTaskOrder,
		flows.NameSummarizeNotes,
	}, names)

	_, ok := flows.Lookup("emailGenerator")
	assert.False(t, ok)
}
