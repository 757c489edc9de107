package flows

import (
	"context"
	"fmt"

	"taskflow-backend/models"
)

const NameGenerateTeamStatusSummary = "generateTeamStatusSummary"

var GenerateTeamStatusSummaryFlow = DefineFlow[models.TeamStatusSummaryInput, models.TeamStatusSummaryOutput](
	NameGenerateTeamStatusSummary,
	"Gera um resumo do status de um projeto da equipe",
	func(in models.TeamStatusSummaryInput) string {
		return fmt.Sprintf(`You are an AI assistant helping to manage team projects. Generate a concise status summary for project with ID %s. The summary should include:

*   Completed tasks
*   Pending tasks
*   Task assignments to team members.

Keep the summary brief and informative.`, in.ProjectID)
	},
)

// GenerateTeamStatusSummary só envia o id do projeto; o modelo não recebe os dados das tarefas.
func GenerateTeamStatusSummary(ctx context.Context, rt Runtime, in models.TeamStatusSummaryInput) (*models.TeamStatusSummaryOutput, error) {
	out, err := GenerateTeamStatusSummaryFlow.Execute(ctx, rt, in).Get()
	if err != nil {
		return nil, err
	}
	return &out, nil
}
