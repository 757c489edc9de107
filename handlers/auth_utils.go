package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

type contextKey string

const userUIDKey contextKey = "userUID"

var errMissingToken = errors.New("token não fornecido")

// withUserUID guarda o UID autenticado no contexto da requisição.
func withUserUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userUIDKey, uid)
}

// UserUIDFromContext devolve o UID colocado pelo AuthMiddleware.
func UserUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userUIDKey).(string)
	return uid, ok && uid != ""
}

// bearerToken extrai o token do header Authorization.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// pathInt64 lê um parâmetro numérico da rota (team_id, ...).
func pathInt64(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("%s não encontrado nos parâmetros da rota", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("formato de %s inválido na rota: %s", name, raw)
	}
	return id, nil
}

// requireTeamMember responde 403/500 e devolve false quando uid não pode acessar a equipe.
func (h *Handler) requireTeamMember(w http.ResponseWriter, r *http.Request, uid string, teamID int64) bool {
	isMember, err := h.Teams.IsMember(r.Context(), uid, teamID)
	if err != nil {
		utilities.LogError(err, "Erro ao verificar membro da equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao verificar permissões da equipe")
		return false
	}
	if !isMember {
		utilities.LogDebug("Usuário %s não é membro da equipe %d", uid, teamID)
		writeError(w, http.StatusForbidden, "Acesso não autorizado à equipe")
		return false
	}
	return true
}

// requireTeamOwner carrega a equipe e confere se uid é o dono.
func (h *Handler) requireTeamOwner(w http.ResponseWriter, r *http.Request, uid string, teamID int64) (*models.Team, bool) {
	team, err := h.Teams.Info(r.Context(), teamID)
	if errors.Is(err, models.ErrTeamNotFound) {
		writeError(w, http.StatusNotFound, "Equipe não encontrada")
		return nil, false
	}
	if err != nil {
		utilities.LogError(err, "Erro ao buscar equipe")
		writeError(w, http.StatusInternalServerError, "Erro ao buscar equipe")
		return nil, false
	}
	if team.OwnerUID != uid {
		writeError(w, http.StatusForbidden, "Apenas o dono da equipe pode fazer esta operação")
		return nil, false
	}
	return team, true
}

// canAccessTask: o dono da tarefa sempre pode; tarefas de equipe também ficam
// visíveis para os membros.
func (h *Handler) canAccessTask(ctx context.Context, uid string, task *models.Task) (bool, error) {
	if task.OwnerID == uid {
		return true, nil
	}
	if task.TeamID == "" {
		return false, nil
	}
	teamID, err := strconv.ParseInt(task.TeamID, 10, 64)
	if err != nil {
		return false, nil
	}
	return h.Teams.IsMember(ctx, uid, teamID)
}

// currentUser devolve o UID autenticado ou responde 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := UserUIDFromContext(r.Context())
	if !ok {
		utilities.LogError(fmt.Errorf("UID não encontrado no contexto"), "Falha na autenticação")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return uid, true
}
