package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"taskflow-backend/utilities"
)

// ModelRequest é a única chamada externa de uma execução: a instrução renderizada
// e o schema que a resposta precisa satisfazer.
type ModelRequest struct {
	Flow         string
	Instruction  string
	OutputSchema *Schema
}

// Model é o serviço de IA externo. Generate devolve o payload JSON cru; payload
// vazio é tratado pelo executor como resposta vazia.
type Model interface {
	Generate(ctx context.Context, req ModelRequest) ([]byte, error)
}

// ModelFunc adapta uma função para Model.
type ModelFunc func(ctx context.Context, req ModelRequest) ([]byte, error)

func (f ModelFunc) Generate(ctx context.Context, req ModelRequest) ([]byte, error) {
	return f(ctx, req)
}

// Session identifica quem está chamando o flow.
type Session struct {
	UserID string
	TeamID string
}

// Runtime é o contexto explícito de cada chamada de flow.
type Runtime struct {
	Model   Model
	Session Session
}

// Flow liga schema de entrada, template e schema de saída em uma operação.
// É imutável depois de definido e pode ser executado concorrentemente.
type Flow[In, Out any] struct {
	name        string
	description string
	input       *Schema
	output      *Schema
	render      func(In) string
}

// DefineFlow cria o flow e o registra no catálogo do pacote.
func DefineFlow[In, Out any](name, description string, render func(In) string) *Flow[In, Out] {
	f := &Flow[In, Out]{
		name:        name,
		description: description,
		input:       MustSchemaFor[In](name + "Input"),
		output:      MustSchemaFor[Out](name + "Output"),
		render:      render,
	}
	catalog = append(catalog, Info{Name: name, Description: description, Input: f.input, Output: f.output})
	return f
}

func (f *Flow[In, Out]) Name() string          { return f.name }
func (f *Flow[In, Out]) InputSchema() *Schema  { return f.input }
func (f *Flow[In, Out]) OutputSchema() *Schema { return f.output }

func (f *Flow[In, Out]) failure(kind ErrorKind, detail string, err error) *FlowError {
	return &FlowError{Flow: f.name, Kind: kind, Detail: detail, Err: err}
}

// Prompt valida a entrada e renderiza a instrução, sem chamar o modelo.
func (f *Flow[In, Out]) Prompt(in In) (string, error) {
	instruction, fe := f.prompt(in)
	if fe != nil {
		return "", fe
	}
	return instruction, nil
}

// prompt valida a entrada e renderiza a instrução a partir do valor normalizado
// pelo schema, para que o modelo receba os enums na grafia canônica.
func (f *Flow[In, Out]) prompt(in In) (string, *FlowError) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", f.failure(KindInvalidInput, "entrada não serializável", err)
	}
	normalized, err := f.input.Check(payload)
	if err != nil {
		return "", f.failure(KindInvalidInput, "", err)
	}
	var clean In
	if err := json.Unmarshal(normalized, &clean); err != nil {
		return "", f.failure(KindInvalidInput, "", err)
	}
	return f.render(clean), nil
}

// Execute faz exatamente uma chamada ao modelo: valida a entrada, renderiza a
// instrução, chama o modelo e valida a resposta contra o schema de saída.
// Não há retentativas nem resultados parciais.
func (f *Flow[In, Out]) Execute(ctx context.Context, rt Runtime, in In) Result[Out] {
	instruction, fe := f.prompt(in)
	if fe != nil {
		return Err[Out](fe)
	}
	if rt.Model == nil {
		return Err[Out](f.failure(KindExternalCall, "nenhum modelo configurado", nil))
	}

	start := time.Now()
	utilities.LogDebug("flow %s: chamando o modelo (usuário: %q, equipe: %q)", f.name, rt.Session.UserID, rt.Session.TeamID)

	payload, err := rt.Model.Generate(ctx, ModelRequest{
		Flow:         f.name,
		Instruction:  instruction,
		OutputSchema: f.output,
	})
	if err != nil {
		return Err[Out](f.failure(KindExternalCall, "", err))
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return Err[Out](f.failure(KindEmptyResponse, "o modelo não devolveu conteúdo", nil))
	}

	normalized, err := f.output.Check(payload)
	if err != nil {
		return Err[Out](f.failure(KindSchemaMismatch, "", err))
	}

	var out Out
	if err := json.Unmarshal(normalized, &out); err != nil {
		return Err[Out](f.failure(KindSchemaMismatch, "", err))
	}

	utilities.LogDebug("flow %s: resposta validada em %v", f.name, time.Since(start))
	return Ok(out)
}

// DecodeInput converte o JSON cru na entrada do flow name. O payload é validado
// contra o schema de entrada antes de virar In, então um campo obrigatório
// ausente é rejeitado aqui em vez de chegar ao modelo como valor zero.
func DecodeInput[In any](name string, raw []byte) (In, error) {
	var in In
	info, ok := Lookup(name)
	if !ok {
		return in, &FlowError{Flow: name, Kind: KindInvalidInput, Detail: "flow desconhecido"}
	}
	normalized, err := info.Input.Check(raw)
	if err != nil {
		return in, &FlowError{Flow: name, Kind: KindInvalidInput, Err: err}
	}
	if err := json.Unmarshal(normalized, &in); err != nil {
		return in, &FlowError{Flow: name, Kind: KindInvalidInput, Detail: "JSON de entrada inválido", Err: err}
	}
	return in, nil
}

// Info descreve um flow registrado.
type Info struct {
	Name        string
	Description string
	Input       *Schema
	Output      *Schema
}

var catalog []Info

// Catalog lista os flows definidos no pacote, em ordem alfabética.
func Catalog() []Info {
	list := append([]Info(nil), catalog...)
	slices.SortFunc(list, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return list
}

// Lookup busca um flow do catálogo pelo nome.
func Lookup(name string) (Info, bool) {
	for _, info := range catalog {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}
