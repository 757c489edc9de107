package flows

import (
	"context"

	"taskflow-backend/models"
)

const NameSummarizeNotes = "summarizeNotes"

var SummarizeNotesFlow = DefineFlow[models.SummarizeNotesInput, models.SummarizeNotesOutput](
	NameSummarizeNotes,
	"Resume o conteúdo de uma nota em tópicos markdown",
	func(in models.SummarizeNotesInput) string {
		return "Summarize the following note content into concise bullet points. Format the output as a markdown list.\n\n" +
			"Note Content:\n" + in.NoteContent
	},
)

func SummarizeNotes(ctx context.Context, rt Runtime, in models.SummarizeNotesInput) (*models.SummarizeNotesOutput, error) {
	out, err := SummarizeNotesFlow.Execute(ctx, rt, in).Get()
	if err != nil {
		return nil, err
	}
	return &out, nil
}
