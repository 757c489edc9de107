package flows

import (
	"context"
	"fmt"
	"strings"

	"taskflow-backend/models"
)

const NameSuggestTaskOrder = "suggestTaskOrder"

// SuggestTaskOrderFlow sugere a ordem de execução de uma lista de tarefas.
var SuggestTaskOrderFlow = DefineFlow[models.TaskOrderInput, models.TaskOrderOutput](
	NameSuggestTaskOrder,
	"Sugere a ordem ideal de execução das tarefas",
	renderTaskOrder,
)

func renderTaskOrder(in models.TaskOrderInput) string {
	var b strings.Builder
	b.WriteString("Given the following tasks, suggest an optimal order in which they should be performed to maximize productivity. Consider urgency, importance, deadlines, and estimated duration.\n\n")
	b.WriteString("Tasks:\n")
	renderEach(&b, in.Tasks, "", func(b *strings.Builder, t models.OrderableTask) {
		fmt.Fprintf(b, "- ID: %s\n", t.ID)
		fmt.Fprintf(b, "  Title: %s\n", t.Title)
		fmt.Fprintf(b, "  Description: %s\n", t.Description)
		fmt.Fprintf(b, "  Due Date: %s\n", t.DueDate)
		fmt.Fprintf(b, "  Priority: %s\n", t.Priority)
		fmt.Fprintf(b, "  Estimated Duration: %s\n", optionalNumber(t.EstimatedDuration, " minutes"))
		fmt.Fprintf(b, "  Tags: %s\n", listText(t.Tags))
	})
	b.WriteString("\nRespond with a JSON object containing an \"orderedTasks\" array of task IDs in the suggested order and a \"reasoning\" field explaining the rationale behind the order.")
	return b.String()
}

// SuggestTaskOrder devolve os ids das tarefas na ordem sugerida e a justificativa.
// Os ids podem não corresponder às tarefas de entrada; quem consome filtra.
func SuggestTaskOrder(ctx context.Context, rt Runtime, in models.TaskOrderInput) (*models.TaskOrderOutput, error) {
	out, err := SuggestTaskOrderFlow.Execute(ctx, rt, in).Get()
	if err != nil {
		return nil, err
	}
	return &out, nil
}
