package ai_services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

// MemberSource lista os membros de uma equipe (PostgreSQL).
type MemberSource interface {
	ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMemberProfile, error)
}

// TaskSource lista as tarefas abertas de uma equipe (Firestore).
type TaskSource interface {
	ListOpenByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error)
}

// BuildDistributionInput monta a entrada do flow de distribuição com as tarefas
// abertas da equipe e seus membros, buscados em paralelo.
func BuildDistributionInput(ctx context.Context, members MemberSource, tasks TaskSource, teamID int64, limit int) (models.TaskDistributionInput, error) {
	utilities.LogDebug("BuildDistributionInput: Montando contexto para a equipe %d (até %d tarefas)", teamID, limit)

	var (
		profiles  []models.TeamMemberProfile
		teamTasks []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = members.ListTeamMembers(gctx, teamID)
		if err != nil {
			return fmt.Errorf("erro ao buscar membros da equipe %d: %w", teamID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		teamTasks, err = tasks.ListOpenByTeam(gctx, strconv.FormatInt(teamID, 10), limit)
		if err != nil {
			return fmt.Errorf("erro ao buscar tarefas da equipe %d: %w", teamID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.TaskDistributionInput{}, err
	}

	in := models.TaskDistributionInput{
		Tasks:       []models.DistributableTask{},
		TeamMembers: make([]models.TeamMember, 0, len(profiles)),
	}
	for _, t := range teamTasks {
		if t.Status == models.StatusDone {
			continue
		}
		if limit > 0 && len(in.Tasks) == limit {
			break
		}
		in.Tasks = append(in.Tasks, ForDistribution(t))
	}
	for _, p := range profiles {
		in.TeamMembers = append(in.TeamMembers, p.ForDistribution())
	}

	utilities.LogDebug("BuildDistributionInput: %d tarefas abertas e %d membros para a equipe %d", len(in.Tasks), len(in.TeamMembers), teamID)
	return in, nil
}

// ForDistribution converte a tarefa armazenada para o flow de distribuição:
// duração de minutos para horas e tags como habilidades exigidas.
func ForDistribution(t models.Task) models.DistributableTask {
	skills := t.Tags
	if skills == nil {
		skills = []string{}
	}
	return models.DistributableTask{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          priorityOrDefault(t.Priority),
		EstimatedDuration: t.EstimatedDuration / 60,
		RequiredSkills:    skills,
	}
}

// ForOrdering é Task.ForOrdering com prioridade padrão para tarefas antigas sem prioridade.
func ForOrdering(t models.Task) models.OrderableTask {
	o := t.ForOrdering()
	o.Priority = priorityOrDefault(o.Priority)
	return o
}

func priorityOrDefault(p models.Priority) models.Priority {
	if parsed, ok := models.ParsePriority(string(p)); ok {
		return parsed
	}
	return models.PriorityMedium
}

// TodaysTasks devolve as tarefas não concluídas que vencem no mesmo dia de
// today (no fuso de today), na ordem recebida, limitadas a limit (0 = sem limite).
func TodaysTasks(tasks []models.Task, today time.Time, limit int) []models.Task {
	y, m, d := today.Date()
	out := []models.Task{}
	for _, t := range tasks {
		if limit > 0 && len(out) == limit {
			break
		}
		if t.Status == models.StatusDone {
			continue
		}
		due, ok := t.DueTime()
		if !ok {
			continue
		}
		dy, dm, dd := due.In(today.Location()).Date()
		if dy == y && dm == m && dd == d {
			out = append(out, t)
		}
	}
	return out
}
