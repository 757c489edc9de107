package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taskflow-backend/firebase"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

// CreateTaskHandler cria uma tarefa do usuário logado, opcionalmente ligada a uma equipe.
// Rota: POST /tasks
func (h *Handler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input models.CreateTaskInput
	if err := decodeBody(r, &input); err != nil {
		utilities.LogError(err, "CreateTaskHandler: Erro ao decodificar JSON da tarefa")
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if input.TeamID != "" {
		teamID, err := strconv.ParseInt(input.TeamID, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "teamId inválido")
			return
		}
		if !h.requireTeamMember(w, r, uid, teamID) {
			return
		}
	}

	task, err := models.NewTask(uid, input, h.now())
	if err != nil {
		utilities.LogDebug("CreateTaskHandler: Validação falhou: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Tasks.Create(r.Context(), &task); err != nil {
		utilities.LogError(err, "CreateTaskHandler: Erro ao salvar tarefa")
		writeError(w, http.StatusInternalServerError, "Erro ao salvar tarefa")
		return
	}

	utilities.LogInfo("CreateTaskHandler: Tarefa criada com sucesso: %s (ID: %s)", task.Title, task.ID)
	writeJSON(w, http.StatusCreated, task)
}

// ListTasksHandler lista as tarefas do usuário, ou as de uma equipe com ?team_id=.
// Aceita ?status= como filtro.
// Rota: GET /tasks
func (h *Handler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	status := models.TaskStatus(query.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "Status inválido")
		return
	}

	var (
		tasks []models.Task
		err   error
	)
	if raw := query.Get("team_id"); raw != "" {
		teamID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "team_id inválido")
			return
		}
		if !h.requireTeamMember(w, r, uid, teamID) {
			return
		}
		tasks, err = h.Tasks.ListByTeam(r.Context(), raw, 0)
		if err == nil && status != "" {
			tasks = filterByStatus(tasks, status)
		}
	} else {
		tasks, err = h.Tasks.ListByOwner(r.Context(), uid, firebase.TaskFilter{Status: status})
	}
	if err != nil {
		utilities.LogError(err, "ListTasksHandler: Erro ao listar tarefas")
		writeError(w, http.StatusInternalServerError, "Erro ao listar tarefas")
		return
	}

	utilities.LogDebug("ListTasksHandler: %d tarefas encontradas para %s", len(tasks), uid)
	writeJSON(w, http.StatusOK, tasks)
}

func filterByStatus(tasks []models.Task, status models.TaskStatus) []models.Task {
	filtered := []models.Task{}
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// loadTask busca a tarefa da rota e confere o acesso. Responde e devolve nil em caso de falha.
func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request, uid string) *models.Task {
	taskID := mux.Vars(r)["task_id"]
	task, err := h.Tasks.Get(r.Context(), taskID)
	if errors.Is(err, firebase.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tarefa não encontrada")
		return nil
	}
	if err != nil {
		utilities.LogError(err, "Erro ao buscar tarefa "+taskID)
		writeError(w, http.StatusInternalServerError, "Erro ao buscar tarefa")
		return nil
	}

	allowed, err := h.canAccessTask(r.Context(), uid, task)
	if err != nil {
		utilities.LogError(err, "Erro ao verificar acesso à tarefa "+taskID)
		writeError(w, http.StatusInternalServerError, "Erro ao verificar permissões")
		return nil
	}
	if !allowed {
		// Não revela a existência da tarefa
		writeError(w, http.StatusNotFound, "Tarefa não encontrada")
		return nil
	}
	return task
}

// GetTaskHandler atende a rota GET /tasks/{task_id}
func (h *Handler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	task := h.loadTask(w, r, uid)
	if task == nil {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTaskHandler aplica uma atualização parcial.
// Rota: PUT /tasks/{task_id}
func (h *Handler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input models.UpdateTaskInput
	if err := decodeBody(r, &input); err != nil {
		utilities.LogError(err, "UpdateTaskHandler: Erro ao decodificar JSON")
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	task := h.loadTask(w, r, uid)
	if task == nil {
		return
	}

	updated, err := h.Tasks.Update(r.Context(), task.ID, input)
	switch {
	case errors.Is(err, models.ErrInvalidTask):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, firebase.ErrNotFound):
		writeError(w, http.StatusNotFound, "Tarefa não encontrada")
		return
	case err != nil:
		utilities.LogError(err, "UpdateTaskHandler: Erro ao atualizar tarefa")
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar tarefa")
		return
	}

	utilities.LogInfo("UpdateTaskHandler: Tarefa %s atualizada por %s", updated.ID, uid)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTaskHandler remove a tarefa. Só o dono pode deletar.
// Rota: DELETE /tasks/{task_id}
func (h *Handler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	task := h.loadTask(w, r, uid)
	if task == nil {
		return
	}
	if task.OwnerID != uid {
		writeError(w, http.StatusForbidden, "Apenas o criador pode deletar a tarefa")
		return
	}

	if err := h.Tasks.Delete(r.Context(), task.ID); err != nil {
		utilities.LogError(err, "DeleteTaskHandler: Erro ao deletar tarefa")
		writeError(w, http.StatusInternalServerError, "Erro ao deletar tarefa")
		return
	}

	utilities.LogInfo("DeleteTaskHandler: Tarefa %s deletada por %s", task.ID, uid)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tarefa deletada com sucesso"})
}
