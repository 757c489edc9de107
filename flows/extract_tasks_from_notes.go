package flows

import (
	"context"

	"taskflow-backend/models"
)

const NameExtractTasksFromNotes = "extractTasksFromNotes"

var ExtractTasksFromNotesFlow = DefineFlow[models.ExtractTasksFromNotesInput, models.ExtractTasksFromNotesOutput](
	NameExtractTasksFromNotes,
	"Extrai itens de ação de um texto de notas",
	func(in models.ExtractTasksFromNotesInput) string {
		return "You are a helpful assistant designed to extract tasks from notes.\n\n" +
			"Given the following notes, extract all tasks that need to be done. A task is an action item, usually with a verb.\n" +
			"Return the tasks as a JSON array of strings.\n\n" +
			"Notes: " + in.Notes
	},
)

// ExtractTasksFromNotes devolve os textos das tarefas encontradas; lista vazia é um resultado válido.
func ExtractTasksFromNotes(ctx context.Context, rt Runtime, in models.ExtractTasksFromNotesInput) (*models.ExtractTasksFromNotesOutput, error) {
	out, err := ExtractTasksFromNotesFlow.Execute(ctx, rt, in).Get()
	if err != nil {
		return nil, err
	}
	return &out, nil
}
