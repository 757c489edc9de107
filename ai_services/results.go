package ai_services

import (
	"time"

	"taskflow-backend/models"
)

// MatchOrdered devolve os itens na ordem dos ids sugeridos pelo modelo. Ids
// desconhecidos são descartados em silêncio; repetições são mantidas.
func MatchOrdered[T any](ids []string, items []T, idOf func(T) string) (matched []T, dropped int) {
	byID := make(map[string]T, len(items))
	for _, item := range items {
		byID[idOf(item)] = item
	}
	matched = make([]T, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			dropped++
			continue
		}
		matched = append(matched, item)
	}
	return matched, dropped
}

// MatchOrderedTasks aplica a ordem sugerida por suggestTaskOrder às tarefas.
func MatchOrderedTasks(ids []string, tasks []models.Task) ([]models.Task, int) {
	return MatchOrdered(ids, tasks, func(t models.Task) string { return t.ID })
}

// MatchAssignments mantém só as atribuições cuja tarefa e membro existem na entrada.
func MatchAssignments(assignments []models.TaskAssignment, in models.TaskDistributionInput) ([]models.TaskAssignment, int) {
	tasks := make(map[string]bool, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks[t.ID] = true
	}
	members := make(map[string]bool, len(in.TeamMembers))
	for _, m := range in.TeamMembers {
		members[m.ID] = true
	}

	kept := make([]models.TaskAssignment, 0, len(assignments))
	dropped := 0
	for _, a := range assignments {
		if !tasks[a.TaskID] || !members[a.TeamMemberID] {
			dropped++
			continue
		}
		kept = append(kept, a)
	}
	return kept, dropped
}

// ApplyTaskDraftDefaults completa o rascunho devolvido por createTaskFromText:
// prioridade Medium e vencimento na data corrente quando ausentes.
func ApplyTaskDraftDefaults(out models.CreateTaskFromTextOutput, currentDate string) models.TaskDraft {
	draft := models.TaskDraft{Title: out.Title, DueDate: out.DueDate, Priority: out.Priority}
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}
	if draft.DueDate == "" {
		draft.DueDate = currentDate
	}
	return draft
}

// CurrentDate formata now como a data de referência enviada ao modelo.
func CurrentDate(now time.Time) string {
	return now.Format(time.RFC3339)
}
