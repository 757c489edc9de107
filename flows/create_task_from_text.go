package flows

import (
	"context"
	"fmt"
	"strings"

	"taskflow-backend/models"
)

const NameCreateTaskFromText = "createTaskFromText"

var CreateTaskFromTextFlow = DefineFlow[models.CreateTaskFromTextInput, models.CreateTaskFromTextOutput](
	NameCreateTaskFromText,
	"Cria um rascunho de tarefa a partir de um comando em linguagem natural",
	renderCreateTaskFromText,
)

func renderCreateTaskFromText(in models.CreateTaskFromTextInput) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant that creates tasks from natural language.\n")
	fmt.Fprintf(&b, "The current date is: %s\n", in.Context.CurrentDate)
	b.WriteString("Parse the following command and extract the task details.\n")
	b.WriteString("- The 'title' should be a concise action item.\n")
	b.WriteString("- The 'dueDate' should be in ISO 8601 format. If a time is mentioned without a date, assume it's for today. If no date or time is mentioned, use today's date.\n")
	b.WriteString("- The 'priority' should be one of 'Low', 'Medium', 'High', 'Critical'. Default to 'Medium' if not specified.\n\n")
	fmt.Fprintf(&b, "Command: \"%s\"\n\n", in.Command)
	b.WriteString("Return a JSON object with the extracted details.")
	return b.String()
}

// CreateTaskFromText devolve o rascunho como o modelo respondeu. dueDate e
// priority podem vir ausentes; ai_services.ApplyTaskDraftDefaults completa os padrões.
func CreateTaskFromText(ctx context.Context, rt Runtime, in models.CreateTaskFromTextInput) (*models.CreateTaskFromTextOutput, error) {
	out, err := CreateTaskFromTextFlow.Execute(ctx, rt, in).Get()
	if err != nil {
		return nil, err
	}
	return &out, nil
}
