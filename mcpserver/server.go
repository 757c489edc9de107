// Package mcpserver expõe os flows de IA como ferramentas MCP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"taskflow-backend/flows"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

// DistributionResult embrulha as atribuições: a saída estruturada de uma
// ferramenta MCP precisa ser um objeto.
type DistributionResult struct {
	Assignments []models.TaskAssignment `json:"assignments"`
}

// New cria o servidor com uma ferramenta por flow do catálogo, todas ligadas a rt.
func New(rt flows.Runtime, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "taskflow", Version: version}, nil)

	addFlowTool(server, rt, flows.NameSuggestTaskOrder, flows.SuggestTaskOrder)
	addFlowTool(server, rt, flows.NameSuggestTaskDistribution,
		func(ctx context.Context, rt flows.Runtime, in models.TaskDistributionInput) (*DistributionResult, error) {
			assignments, err := flows.SuggestTaskDistribution(ctx, rt, in)
			if err != nil {
				return nil, err
			}
			if assignments == nil {
				assignments = []models.TaskAssignment{}
			}
			return &DistributionResult{Assignments: assignments}, nil
		})
	addFlowTool(server, rt, flows.NameSummarizeNotes, flows.SummarizeNotes)
	addFlowTool(server, rt, flows.NameExtractTasksFromNotes, flows.ExtractTasksFromNotes)
	addFlowTool(server, rt, flows.NameGenerateTeamStatusSummary, flows.GenerateTeamStatusSummary)
	addFlowTool(server, rt, flows.NameCreateTaskFromText, flows.CreateTaskFromText)
	return server
}

// addFlowTool registra o flow name. O schema de entrada anunciado é o próprio
// contrato do flow; o de saída é inferido do tipo Out pelo SDK.
func addFlowTool[In, Out any](server *mcp.Server, rt flows.Runtime, name string, run func(context.Context, flows.Runtime, In) (Out, error)) {
	info, ok := flows.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("mcpserver: flow %s não está no catálogo", name))
	}
	tool := &mcp.Tool{
		Name:        name,
		Description: info.Description,
		InputSchema: json.RawMessage(info.Input.JSON()),
	}
	mcp.AddTool(server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		utilities.LogDebug("MCP: executando a ferramenta %s", name)
		out, err := run(ctx, rt, in)
		if err != nil {
			utilities.LogError(err, "MCP: falha na ferramenta "+name)
		}
		return nil, out, err
	})
}

// Serve atende o protocolo MCP pela entrada e saída padrão até ctx ser cancelado.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
