package ai_services

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/firebase/genkit/go/genkit"

	"taskflow-backend/flows"
)

// FlowRunner executa um flow registrado a partir da entrada em JSON.
type FlowRunner func(ctx context.Context, input json.RawMessage) (any, error)

// GenkitRegistry guarda os flows registrados no genkit, por nome.
type GenkitRegistry struct {
	runners map[string]FlowRunner
}

// RegisterGenkitFlows define os seis flows no genkit, todos ligados ao mesmo Runtime.
// Assim eles aparecem na UI de desenvolvimento do genkit e podem ser chamados pela CLI.
func RegisterGenkitFlows(g *genkit.Genkit, rt flows.Runtime) *GenkitRegistry {
	r := &GenkitRegistry{runners: map[string]FlowRunner{}}
	register(g, r, rt, flows.NameSuggestTaskOrder, flows.SuggestTaskOrder)
	register(g, r, rt, flows.NameSuggestTaskDistribution, flows.SuggestTaskDistribution)
	register(g, r, rt, flows.NameSummarizeNotes, flows.SummarizeNotes)
	register(g, r, rt, flows.NameExtractTasksFromNotes, flows.ExtractTasksFromNotes)
	register(g, r, rt, flows.NameGenerateTeamStatusSummary, flows.GenerateTeamStatusSummary)
	register(g, r, rt, flows.NameCreateTaskFromText, flows.CreateTaskFromText)
	return r
}

func register[In, Out any](g *genkit.Genkit, r *GenkitRegistry, rt flows.Runtime, name string, facade func(context.Context, flows.Runtime, In) (Out, error)) {
	flow := genkit.DefineFlow(g, name, func(ctx context.Context, in In) (Out, error) {
		return facade(ctx, rt, in)
	})
	r.runners[name] = func(ctx context.Context, input json.RawMessage) (any, error) {
		in, err := flows.DecodeInput[In](name, input)
		if err != nil {
			return nil, err
		}
		return flow.Run(ctx, in)
	}
}

// Runner devolve o executor do flow name.
func (r *GenkitRegistry) Runner(name string) (FlowRunner, bool) {
	run, ok := r.runners[name]
	return run, ok
}

// Names lista os flows registrados em ordem alfabética.
func (r *GenkitRegistry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
