package flows

import (
	"context"
	"fmt"
	"strings"

	"taskflow-backend/models"
)

const NameSuggestTaskDistribution = "suggestTaskDistribution"

// SuggestTaskDistributionFlow distribui tarefas entre os membros de uma equipe.
var SuggestTaskDistributionFlow = DefineFlow[models.TaskDistributionInput, []models.TaskAssignment](
	NameSuggestTaskDistribution,
	"Sugere a distribuição de tarefas entre os membros da equipe",
	renderTaskDistribution,
)

// assignmentsSchema é o mesmo schema de saída do flow, embutido no prompt.
var assignmentsSchema = MustSchemaFor[[]models.TaskAssignment](NameSuggestTaskDistribution + "Output")

func renderTaskDistribution(in models.TaskDistributionInput) string {
	var b strings.Builder
	b.WriteString("You are an AI project manager responsible for suggesting the distribution of tasks among team members.\n\n")
	b.WriteString("Given the following tasks:\n\n")
	renderEach(&b, in.Tasks, "\n", func(b *strings.Builder, t models.DistributableTask) {
		fmt.Fprintf(b, "Task ID: %s\n", t.ID)
		fmt.Fprintf(b, "Title: %s\n", t.Title)
		fmt.Fprintf(b, "Description: %s\n", t.Description)
		fmt.Fprintf(b, "Priority: %s\n", t.Priority)
		fmt.Fprintf(b, "Estimated Duration: %s hours\n", number(t.EstimatedDuration))
		fmt.Fprintf(b, "Required Skills: %s\n", listText(t.RequiredSkills))
	})
	b.WriteString("\nAnd the following team members:\n\n")
	renderEach(&b, in.TeamMembers, "\n", func(b *strings.Builder, m models.TeamMember) {
		fmt.Fprintf(b, "Team Member ID: %s\n", m.ID)
		fmt.Fprintf(b, "Name: %s\n", m.Name)
		fmt.Fprintf(b, "Available Hours Per Week: %s hours\n", number(m.AvailableHoursPerWeek))
		fmt.Fprintf(b, "Skills: %s\n", listText(m.Skills))
		fmt.Fprintf(b, "Current Workload: %s hours\n", number(m.CurrentWorkload))
	})
	b.WriteString("\nSuggest an optimal task distribution, taking into account workload, skills, and task priorities. Provide a brief reason for each assignment.\n\n")
	b.WriteString("Return the output as a JSON array of objects with taskId, teamMemberId, and reason fields. The output must match the following schema:\n")
	b.WriteString(assignmentsSchema.JSON())
	b.WriteString("\n")
	return b.String()
}

// SuggestTaskDistribution devolve uma atribuição sugerida por tarefa. Nem toda
// tarefa precisa aparecer, e ids desconhecidos são filtrados por quem consome.
func SuggestTaskDistribution(ctx context.Context, rt Runtime, in models.TaskDistributionInput) ([]models.TaskAssignment, error) {
	return SuggestTaskDistributionFlow.Execute(ctx, rt, in).Get()
}
