package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"taskflow-backend/ai_services"
	"taskflow-backend/firebase"
	"taskflow-backend/flows"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

const aiFailureMessage = "Não foi possível obter um resultado da IA"

// PlanTodayResponse é o plano do dia: as tarefas na ordem sugerida e a justificativa.
type PlanTodayResponse struct {
	Tasks     []models.Task `json:"tasks"`
	Reasoning string        `json:"reasoning"`
}

type DistributionResponse struct {
	Assignments []models.TaskAssignment `json:"assignments"`
}

// CreateTaskFromTextResponse traz o rascunho e, com ?save=true, a tarefa salva.
type CreateTaskFromTextResponse struct {
	Draft models.TaskDraft `json:"draft"`
	Task  *models.Task     `json:"task,omitempty"`
}

func (h *Handler) runtime(uid, teamID string) flows.Runtime {
	return flows.Runtime{Model: h.Model, Session: flows.Session{UserID: uid, TeamID: teamID}}
}

// aiContext limita a chamada ao modelo pelo AI_TIMEOUT configurado.
func (h *Handler) aiContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.AITimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.AITimeout)
}

// respondFlowError traduz a falha do flow para HTTP. Entrada inválida é erro do
// cliente; as demais falhas viram 502 com mensagem genérica.
func respondFlowError(w http.ResponseWriter, err error) {
	switch flows.KindOf(err) {
	case flows.KindInvalidInput:
		utilities.LogDebug("Entrada inválida para o flow: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case flows.KindExternalCall, flows.KindEmptyResponse, flows.KindSchemaMismatch:
		utilities.LogError(err, "Falha na execução do flow de IA")
		writeError(w, http.StatusBadGateway, aiFailureMessage)
	default:
		utilities.LogError(err, "Erro inesperado no flow de IA")
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// recordHistory grava só as chamadas bem-sucedidas.
func (h *Handler) recordHistory(ctx context.Context, uid, teamID, flow string, start time.Time, request, response any) {
	if h.History == nil {
		return
	}
	entry, err := ai_services.NewHistoryEntry(uid, teamID, flow, start, request, response)
	if err != nil {
		utilities.LogError(err, "Erro ao montar histórico de IA")
		return
	}
	h.History.LogAIInteraction(ctx, entry)
}

// decodeOptionalBody aceita corpo vazio.
func decodeOptionalBody(r *http.Request, v any) error {
	err := decodeBody(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// PlanTodayHandler ordena as tarefas do usuário que vencem hoje.
// Rota: POST /ai/plan-today
func (h *Handler) PlanTodayHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Context models.CommandContext `json:"context"`
	}
	if err := decodeOptionalBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	today := h.now()
	if input.Context.CurrentDate != "" {
		parsed, err := time.Parse(time.RFC3339, input.Context.CurrentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "context.currentDate deve estar em ISO 8601")
			return
		}
		today = parsed
	}

	tasks, err := h.Tasks.ListByOwner(r.Context(), uid, firebase.TaskFilter{})
	if err != nil {
		utilities.LogError(err, "PlanTodayHandler: Erro ao listar tarefas")
		writeError(w, http.StatusInternalServerError, "Erro ao carregar tarefas")
		return
	}
	todays := ai_services.TodaysTasks(tasks, today, h.PlanTodayLimit)
	if len(todays) == 0 {
		writeJSON(w, http.StatusOK, PlanTodayResponse{Tasks: []models.Task{}})
		return
	}

	in := models.TaskOrderInput{Tasks: make([]models.OrderableTask, 0, len(todays))}
	for _, t := range todays {
		in.Tasks = append(in.Tasks, ai_services.ForOrdering(t))
	}

	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	out, err := flows.SuggestTaskOrder(ctx, h.runtime(uid, ""), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}

	ordered, dropped := ai_services.MatchOrderedTasks(out.OrderedTasks, todays)
	if dropped > 0 {
		utilities.LogDebug("PlanTodayHandler: %d ids desconhecidos descartados", dropped)
	}
	h.recordHistory(r.Context(), uid, "", flows.NameSuggestTaskOrder, start, in, out)
	writeJSON(w, http.StatusOK, PlanTodayResponse{Tasks: ordered, Reasoning: out.Reasoning})
}

// SuggestDistributionHandler sugere quem deve fazer cada tarefa aberta da equipe.
// Rota: POST /teams/{team_id}/ai/suggest-distribution
func (h *Handler) SuggestDistributionHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.requireTeamMember(w, r, uid, teamID) {
		return
	}

	in, err := ai_services.BuildDistributionInput(r.Context(), h.Teams, h.Tasks, teamID, h.MaxTasksForAIContext)
	if err != nil {
		utilities.LogError(err, "SuggestDistributionHandler: Erro ao obter contexto da equipe")
		writeError(w, http.StatusInternalServerError, "Falha ao carregar dados da equipe")
		return
	}
	if len(in.Tasks) == 0 || len(in.TeamMembers) == 0 {
		writeJSON(w, http.StatusOK, DistributionResponse{Assignments: []models.TaskAssignment{}})
		return
	}

	teamKey := strconv.FormatInt(teamID, 10)
	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	assignments, err := flows.SuggestTaskDistribution(ctx, h.runtime(uid, teamKey), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}

	kept, dropped := ai_services.MatchAssignments(assignments, in)
	if dropped > 0 {
		utilities.LogDebug("SuggestDistributionHandler: %d atribuições com ids desconhecidos descartadas", dropped)
	}
	h.recordHistory(r.Context(), uid, teamKey, flows.NameSuggestTaskDistribution, start, in, assignments)
	writeJSON(w, http.StatusOK, DistributionResponse{Assignments: kept})
}

// TeamStatusSummaryHandler atende a rota POST /teams/{team_id}/ai/status-summary
func (h *Handler) TeamStatusSummaryHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.requireTeamMember(w, r, uid, teamID) {
		return
	}

	teamKey := strconv.FormatInt(teamID, 10)
	in := models.TeamStatusSummaryInput{ProjectID: teamKey}
	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	out, err := flows.GenerateTeamStatusSummary(ctx, h.runtime(uid, teamKey), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	h.recordHistory(r.Context(), uid, teamKey, flows.NameGenerateTeamStatusSummary, start, in, out)
	writeJSON(w, http.StatusOK, out)
}

// SummarizeNoteHandler atende a rota POST /notes/{note_id}/ai/summarize
func (h *Handler) SummarizeNoteHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	note := h.loadNote(w, r, uid)
	if note == nil {
		return
	}

	in := models.SummarizeNotesInput{NoteContent: note.Content}
	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	out, err := flows.SummarizeNotes(ctx, h.runtime(uid, ""), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	h.recordHistory(r.Context(), uid, "", flows.NameSummarizeNotes, start, in, out)
	writeJSON(w, http.StatusOK, out)
}

// ExtractTasksHandler atende a rota POST /notes/{note_id}/ai/extract-tasks
func (h *Handler) ExtractTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	note := h.loadNote(w, r, uid)
	if note == nil {
		return
	}

	in := models.ExtractTasksFromNotesInput{Notes: note.Content}
	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	out, err := flows.ExtractTasksFromNotes(ctx, h.runtime(uid, ""), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	h.recordHistory(r.Context(), uid, "", flows.NameExtractTasksFromNotes, start, in, out)
	writeJSON(w, http.StatusOK, out)
}

// CreateTaskFromTextHandler transforma um comando em rascunho de tarefa. Com
// ?save=true o rascunho é salvo como tarefa do usuário.
// Rota: POST /ai/create-task-from-text
func (h *Handler) CreateTaskFromTextHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in models.CreateTaskFromTextInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if in.Context.CurrentDate == "" {
		in.Context.CurrentDate = ai_services.CurrentDate(h.now())
	}

	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	out, err := flows.CreateTaskFromText(ctx, h.runtime(uid, ""), in)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	h.recordHistory(r.Context(), uid, "", flows.NameCreateTaskFromText, start, in, out)

	draft := ai_services.ApplyTaskDraftDefaults(*out, in.Context.CurrentDate)
	if r.URL.Query().Get("save") != "true" {
		writeJSON(w, http.StatusOK, CreateTaskFromTextResponse{Draft: draft})
		return
	}

	task, err := models.NewTask(uid, models.CreateTaskInput{
		Title:    draft.Title,
		DueDate:  normalizeDueDate(draft.DueDate),
		Priority: draft.Priority,
	}, h.now())
	if err != nil {
		utilities.LogDebug("CreateTaskFromTextHandler: rascunho não pôde virar tarefa: %v", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.Tasks.Create(r.Context(), &task); err != nil {
		utilities.LogError(err, "CreateTaskFromTextHandler: Erro ao salvar tarefa")
		writeError(w, http.StatusInternalServerError, "Erro ao salvar tarefa")
		return
	}
	writeJSON(w, http.StatusCreated, CreateTaskFromTextResponse{Draft: draft, Task: &task})
}

// normalizeDueDate aceita também datas sem horário ("2024-05-01"), que o modelo às vezes devolve.
func normalizeDueDate(due string) string {
	if d, err := time.Parse(time.DateOnly, due); err == nil {
		return d.Format(time.RFC3339)
	}
	return due
}

type rawFlow func(ctx context.Context, rt flows.Runtime, input []byte) (in, out any, err error)

func bindRaw[In, Out any](name string, facade func(context.Context, flows.Runtime, In) (Out, error)) rawFlow {
	return func(ctx context.Context, rt flows.Runtime, input []byte) (any, any, error) {
		in, err := flows.DecodeInput[In](name, input)
		if err != nil {
			return nil, nil, err
		}
		out, err := facade(ctx, rt, in)
		return in, out, err
	}
}

var rawFlows = map[string]rawFlow{
	flows.NameSuggestTaskOrder:          bindRaw(flows.NameSuggestTaskOrder, flows.SuggestTaskOrder),
	flows.NameSuggestTaskDistribution:   bindRaw(flows.NameSuggestTaskDistribution, flows.SuggestTaskDistribution),
	flows.NameSummarizeNotes:            bindRaw(flows.NameSummarizeNotes, flows.SummarizeNotes),
	flows.NameExtractTasksFromNotes:     bindRaw(flows.NameExtractTasksFromNotes, flows.ExtractTasksFromNotes),
	flows.NameGenerateTeamStatusSummary: bindRaw(flows.NameGenerateTeamStatusSummary, flows.GenerateTeamStatusSummary),
	flows.NameCreateTaskFromText:        bindRaw(flows.NameCreateTaskFromText, flows.CreateTaskFromText),
}

// ListFlowsHandler lista os flows disponíveis com seus schemas.
// Rota: GET /ai/flows
func (h *Handler) ListFlowsHandler(w http.ResponseWriter, r *http.Request) {
	type flowInfo struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		InputSchema  json.RawMessage `json:"inputSchema"`
		OutputSchema json.RawMessage `json:"outputSchema"`
	}
	list := []flowInfo{}
	for _, info := range flows.Catalog() {
		list = append(list, flowInfo{
			Name:         info.Name,
			Description:  info.Description,
			InputSchema:  json.RawMessage(info.Input.JSON()),
			OutputSchema: json.RawMessage(info.Output.JSON()),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

// RunFlowHandler executa um flow do catálogo com a entrada crua em JSON.
// Rota: POST /ai/flows/{flow}
func (h *Handler) RunFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["flow"]
	run, ok := rawFlows[name]
	if !ok {
		writeError(w, http.StatusNotFound, "Flow desconhecido: "+name)
		return
	}

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	start := time.Now()
	ctx, cancel := h.aiContext(r.Context())
	defer cancel()
	in, out, err := run(ctx, h.runtime(uid, ""), body)
	if err != nil {
		respondFlowError(w, err)
		return
	}
	h.recordHistory(r.Context(), uid, "", name, start, in, out)
	writeJSON(w, http.StatusOK, out)
}
