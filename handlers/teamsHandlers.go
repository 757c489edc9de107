package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

type teamInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// addMemberInput é o corpo de POST /teams/{team_id}/members.
type addMemberInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	models.MemberCapacity
}

// CreateTeamHandler cria a equipe; o criador vira admin.
// Rota: POST /teams
func (h *Handler) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input teamInput
	if err := decodeBody(r, &input); err != nil {
		utilities.LogError(err, "CreateTeamHandler: Erro ao decodificar JSON da equipe")
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		writeError(w, http.StatusBadRequest, "Nome da equipe é obrigatório")
		return
	}

	team, err := h.Teams.Create(r.Context(), uid, input.Name, input.Description)
	if errors.Is(err, models.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "Usuário não encontrado, finalize o login primeiro")
		return
	}
	if err != nil {
		utilities.LogError(err, "CreateTeamHandler: Erro ao criar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao criar equipe")
		return
	}

	utilities.LogInfo("CreateTeamHandler: Equipe criada com sucesso: %s (ID: %d)", team.Name, team.ID)
	writeJSON(w, http.StatusCreated, team)
}

// Rota: GET /teams/mine
func (h *Handler) ListMyTeamsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teams, err := h.Teams.ListUserTeams(r.Context(), uid)
	if err != nil {
		utilities.LogError(err, "ListMyTeamsHandler: Erro ao listar equipes")
		writeError(w, http.StatusInternalServerError, "Erro ao listar equipes")
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Rota: GET /teams/{team_id}
func (h *Handler) GetTeamInfoHandler(w http.ResponseWriter, r *http.Request) {
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

	team, err := h.Teams.Info(r.Context(), teamID)
	if errors.Is(err, models.ErrTeamNotFound) {
		writeError(w, http.StatusNotFound, "Equipe não encontrada")
		return
	}
	if err != nil {
		utilities.LogError(err, "GetTeamInfoHandler: Erro ao buscar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao buscar equipe")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// Rota: PUT /teams/{team_id}
func (h *Handler) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input teamInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		writeError(w, http.StatusBadRequest, "Nome da equipe é obrigatório")
		return
	}
	if _, ok := h.requireTeamOwner(w, r, uid, teamID); !ok {
		return
	}

	if err := h.Teams.Update(r.Context(), teamID, input.Name, input.Description); err != nil {
		utilities.LogError(err, "UpdateTeamHandler: Erro ao atualizar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar equipe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Equipe atualizada com sucesso"})
}

// DeleteTeamHandler apaga as tarefas da equipe no Firestore e depois a equipe.
// Rota: DELETE /teams/{team_id}
func (h *Handler) DeleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := h.requireTeamOwner(w, r, uid, teamID); !ok {
		return
	}

	deleted, err := h.Tasks.DeleteByTeam(r.Context(), strconv.FormatInt(teamID, 10))
	if err != nil {
		utilities.LogError(err, "DeleteTeamHandler: Erro ao deletar tarefas da equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao deletar tarefas da equipe")
		return
	}

	err = h.Teams.Delete(r.Context(), teamID, uid)
	if errors.Is(err, models.ErrNotTeamOwner) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		utilities.LogError(err, "DeleteTeamHandler: Erro ao deletar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao deletar equipe")
		return
	}

	utilities.LogInfo("DeleteTeamHandler: Equipe %d deletada (%d tarefas removidas)", teamID, deleted)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Equipe deletada com sucesso", "deleted_tasks": deleted})
}

// Rota: GET /teams/{team_id}/members
func (h *Handler) ListTeamMembersHandler(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.Teams.ListTeamMembers(r.Context(), teamID)
	if err != nil {
		utilities.LogError(err, "ListTeamMembersHandler: Erro ao listar membros")
		writeError(w, http.StatusInternalServerError, "Erro ao listar membros da equipe")
		return
	}
	if members == nil {
		members = []models.TeamMemberProfile{}
	}
	writeJSON(w, http.StatusOK, members)
}

// AddTeamMemberHandler adiciona um usuário pelo e-mail, com o perfil de capacidade.
// Rota: POST /teams/{team_id}/members
func (h *Handler) AddTeamMemberHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input addMemberInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		writeError(w, http.StatusBadRequest, "E-mail é obrigatório")
		return
	}
	if input.Role != "" && input.Role != "member" && input.Role != "admin" {
		writeError(w, http.StatusBadRequest, "Papel inválido")
		return
	}
	if input.AvailableHoursPerWeek < 0 || input.CurrentWorkload < 0 {
		writeError(w, http.StatusBadRequest, "Horas não podem ser negativas")
		return
	}
	if _, ok := h.requireTeamOwner(w, r, uid, teamID); !ok {
		return
	}

	err = h.Teams.AddMember(r.Context(), teamID, input.Email, input.Role, input.MemberCapacity)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Usuário não encontrado")
		return
	case errors.Is(err, models.ErrAlreadyTeamMember):
		writeError(w, http.StatusConflict, "Usuário já é membro da equipe")
		return
	case err != nil:
		utilities.LogError(err, "AddTeamMemberHandler: Erro ao adicionar membro")
		writeError(w, http.StatusInternalServerError, "Erro ao adicionar membro")
		return
	}

	utilities.LogInfo("AddTeamMemberHandler: %s adicionado à equipe %d", input.Email, teamID)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Membro adicionado com sucesso"})
}

// UpdateMemberCapacityHandler atualiza skills e horas de um membro. O dono da
// equipe pode alterar qualquer membro; os demais, só o próprio perfil.
// Rota: PUT /teams/{team_id}/members/{user_uid}/capacity
func (h *Handler) UpdateMemberCapacityHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	memberUID := mux.Vars(r)["user_uid"]

	var capacity models.MemberCapacity
	if err := decodeBody(r, &capacity); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if capacity.AvailableHoursPerWeek < 0 || capacity.CurrentWorkload < 0 {
		writeError(w, http.StatusBadRequest, "Horas não podem ser negativas")
		return
	}

	if memberUID != uid {
		if _, ok := h.requireTeamOwner(w, r, uid, teamID); !ok {
			return
		}
	}

	err = h.Teams.UpdateCapacity(r.Context(), teamID, memberUID, capacity)
	if errors.Is(err, models.ErrTeamMemberNotFound) || errors.Is(err, models.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "Membro não encontrado na equipe")
		return
	}
	if err != nil {
		utilities.LogError(err, "UpdateMemberCapacityHandler: Erro ao atualizar capacidade")
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar capacidade do membro")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Capacidade atualizada com sucesso"})
}

// RemoveTeamMemberHandler remove um membro. O dono não pode ser removido.
// Rota: DELETE /teams/{team_id}/members/{user_uid}
func (h *Handler) RemoveTeamMemberHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathInt64(r, "team_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	memberUID := mux.Vars(r)["user_uid"]

	team, err := h.Teams.Info(r.Context(), teamID)
	if errors.Is(err, models.ErrTeamNotFound) {
		writeError(w, http.StatusNotFound, "Equipe não encontrada")
		return
	}
	if err != nil {
		utilities.LogError(err, "RemoveTeamMemberHandler: Erro ao buscar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao buscar equipe")
		return
	}
	if memberUID == team.OwnerUID {
		writeError(w, http.StatusBadRequest, "O dono não pode ser removido da equipe")
		return
	}
	if uid != team.OwnerUID && uid != memberUID {
		writeError(w, http.StatusForbidden, "Apenas o dono da equipe pode remover outros membros")
		return
	}

	err = h.Teams.RemoveMember(r.Context(), teamID, memberUID)
	if errors.Is(err, models.ErrTeamMemberNotFound) || errors.Is(err, models.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "Membro não encontrado na equipe")
		return
	}
	if err != nil {
		utilities.LogError(err, "RemoveTeamMemberHandler: Erro ao remover membro")
		writeError(w, http.StatusInternalServerError, "Erro ao remover membro")
		return
	}

	utilities.LogInfo("RemoveTeamMemberHandler: %s removido da equipe %d por %s", memberUID, teamID, uid)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Membro removido com sucesso"})
}
