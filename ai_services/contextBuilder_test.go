package ai_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/models"
)

type stubMembers struct {
	members []models.TeamMemberProfile
	err     error
}

func (s stubMembers) ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMemberProfile, error) {
	return s.members, s.err
}

type stubTasks struct {
	tasks    []models.Task
	err      error
	gotTeam  string
	gotLimit int
}

func (s *stubTasks) ListOpenByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error) {
	s.gotTeam, s.gotLimit = teamID, limit
	return s.tasks, s.err
}

func TestBuildDistributionInput(t *testing.T) {
	members := stubMembers{members: []models.TeamMemberProfile{
		{UserID: "u1", DisplayName: "Ana", MemberCapacity: models.MemberCapacity{Skills: []string{"go"}, AvailableHoursPerWeek: 40, CurrentWorkload: 8}},
		{UserID: "u2", Email: "rui@example.com"},
	}}
	tasks := &stubTasks{tasks: []models.Task{
		{ID: "t1", Title: "API", Priority: models.PriorityHigh, EstimatedDuration: 90, Tags: []string{"go"}, Status: models.StatusTodo},
		{ID: "t2", Title: "Deploy", Status: models.StatusDone},
		{ID: "t3", Title: "Docs", Priority: "", Status: models.StatusInProgress},
	}}

	in, err := BuildDistributionInput(context.Background(), members, tasks, 42, 50)
	require.NoError(t, err)

	assert.Equal(t, "42", tasks.gotTeam)
	assert.Equal(t, 50, tasks.gotLimit)
	assert.Equal(t, []models.DistributableTask{
		{ID: "t1", Title: "API", Priority: models.PriorityHigh, EstimatedDuration: 1.5, RequiredSkills: []string{"go"}},
		{ID: "t3", Title: "Docs", Priority: models.PriorityMedium, RequiredSkills: []string{}},
	}, in.Tasks)
	assert.Equal(t, []models.TeamMember{
		{ID: "u1", Name: "Ana", AvailableHoursPerWeek: 40, Skills: []string{"go"}, CurrentWorkload: 8},
		{ID: "u2", Name: "rui@example.com", Skills: []string{}},
	}, in.TeamMembers)
}

func TestBuildDistributionInputLimitCountsOnlyOpenTasks(t *testing.T) {
	members := stubMembers{members: []models.TeamMemberProfile{{UserID: "u1", DisplayName: "Ana"}}}
	tasks := &stubTasks{tasks: []models.Task{
		{ID: "d1", Title: "Old", Status: models.StatusDone},
		{ID: "d2", Title: "Older", Status: models.StatusDone},
		{ID: "t1", Title: "API", Status: models.StatusTodo},
		{ID: "t2", Title: "Docs", Status: models.StatusInProgress},
		{ID: "t3", Title: "Deploy", Status: models.StatusTodo},
	}}

	in, err := BuildDistributionInput(context.Background(), members, tasks, 3, 2)
	require.NoError(t, err)

	var ids []string
	for _, task := range in.Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)
}

func TestBuildDistributionInputPropagatesErrors(t *testing.T) {
	pgErr := errors.New("conexão recusada")

	_, err := BuildDistributionInput(context.Background(), stubMembers{err: pgErr}, &stubTasks{}, 1, 10)
	assert.ErrorIs(t, err, pgErr)

	fsErr := errors.New("firestore indisponível")
	_, err = BuildDistributionInput(context.Background(), stubMembers{}, &stubTasks{err: fsErr}, 1, 10)
	assert.ErrorIs(t, err, fsErr)
}

func TestBuildDistributionInputWithEmptyTeam(t *testing.T) {
	in, err := BuildDistributionInput(context.Background(), stubMembers{}, &stubTasks{}, 7, 10)
	require.NoError(t, err)

	assert.NotNil(t, in.Tasks)
	assert.NotNil(t, in.TeamMembers)
	assert.Empty(t, in.Tasks)
}

func TestTodaysTasks(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	today := time.Date(2024, 5, 1, 9, 0, 0, 0, loc)

	tasks := []models.Task{
		{ID: "a", DueDate: "2024-05-01T12:00:00-03:00"},
		{ID: "b", DueDate: "2024-05-02T01:00:00Z"},
		{ID: "c", DueDate: "2024-05-02T12:00:00-03:00"},
		{ID: "d", DueDate: "2024-05-01T18:00:00-03:00", Status: models.StatusDone},
		{ID: "e"},
		{ID: "f", DueDate: "amanhã"},
		{ID: "g", DueDate: "2024-05-01T23:59:00-03:00"},
	}

	got := TodaysTasks(tasks, today, 5)
	var ids []string
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"a", "b", "g"}, ids)

	assert.Len(t, TodaysTasks(tasks, today, 2), 2)
	assert.Empty(t, TodaysTasks(nil, today, 5))
}
