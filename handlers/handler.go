package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"

	"taskflow-backend/firebase"
	"taskflow-backend/flows"
	"taskflow-backend/models"
)

// Accounts são as operações do Firebase Auth usadas pelos handlers.
type Accounts interface {
	VerifyUserToken(ctx context.Context, token string) (*auth.Token, error)
	CreateFirebaseUser(ctx context.Context, email, password, displayName string) (*auth.UserRecord, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	DeleteUser(ctx context.Context, uid string) error
	CustomToken(ctx context.Context, uid string) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// UserRepository é a tabela users do PostgreSQL.
type UserRepository interface {
	Ensure(ctx context.Context, user models.Usuario) (string, error)
	Insert(ctx context.Context, user models.Usuario) error
	Get(ctx context.Context, uid string) (*models.Usuario, error)
}

// TaskRepository é a coleção de tarefas do Firestore.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id string) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string, filter firebase.TaskFilter) ([]models.Task, error)
	ListByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error)
	ListOpenByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error)
	Update(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) (int, error)
}

// NoteRepository é a coleção de notas do Firestore.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	Get(ctx context.Context, id string) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error)
	Delete(ctx context.Context, id string) error
}

// TeamRepository são as equipes e membros do PostgreSQL.
type TeamRepository interface {
	Create(ctx context.Context, ownerUID, name, description string) (*models.Team, error)
	Info(ctx context.Context, teamID int64) (*models.Team, error)
	ListUserTeams(ctx context.Context, firebaseUID string) ([]models.UserTeamInfo, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMemberProfile, error)
	Update(ctx context.Context, teamID int64, name, description string) error
	Delete(ctx context.Context, teamID int64, ownerUID string) error
	AddMember(ctx context.Context, teamID int64, email, role string, capacity models.MemberCapacity) error
	UpdateCapacity(ctx context.Context, teamID int64, firebaseUID string, capacity models.MemberCapacity) error
	RemoveMember(ctx context.Context, teamID int64, firebaseUID string) error
	IsMember(ctx context.Context, firebaseUID string, teamID int64) (bool, error)
}

// HistoryLogger registra as interações bem-sucedidas com a IA.
type HistoryLogger interface {
	LogAIInteraction(ctx context.Context, entry models.AIRequestHistoryEntry)
}

// Handler concentra as dependências das rotas HTTP.
type Handler struct {
	Accounts Accounts
	Users    UserRepository
	Tasks    TaskRepository
	Notes    NoteRepository
	Teams    TeamRepository
	History  HistoryLogger
	Model    flows.Model

	AITimeout            time.Duration
	PlanTodayLimit       int
	MaxTasksForAIContext int

	// Now pode ser trocado nos testes.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
