package main

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"taskflow-backend/handlers"
	"taskflow-backend/utilities"
)

func LoadRoutes(h *handlers.Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	// Aplicar o middleware de logging global em todas as rotas
	r.Use(handlers.LoggingMiddleware)

	// --- Rotas de Autenticação e Públicas ---
	r.HandleFunc("/auth/register", h.RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/finalize-login", h.FinalizeFirebaseLoginHandler).Methods("POST")
	r.HandleFunc("/auth/logout", h.AuthMiddleware(h.LogoutHandler)).Methods("POST")

	// --- Rotas de Usuário ---
	r.HandleFunc("/user/info", h.AuthMiddleware(h.UserHandler)).Methods("GET")

	// --- Rotas de Tarefas ---
	r.HandleFunc("/tasks", h.AuthMiddleware(h.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks", h.AuthMiddleware(h.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks/{task_id}", h.AuthMiddleware(h.GetTaskHandler)).Methods("GET")
	r.HandleFunc("/tasks/{task_id}", h.AuthMiddleware(h.UpdateTaskHandler)).Methods("PUT")
	r.HandleFunc("/tasks/{task_id}", h.AuthMiddleware(h.DeleteTaskHandler)).Methods("DELETE")

	// --- Rotas de Notas ---
	r.HandleFunc("/notes", h.AuthMiddleware(h.CreateNoteHandler)).Methods("POST")
	r.HandleFunc("/notes", h.AuthMiddleware(h.ListNotesHandler)).Methods("GET")
	r.HandleFunc("/notes/{note_id}", h.AuthMiddleware(h.GetNoteHandler)).Methods("GET")
	r.HandleFunc("/notes/{note_id}", h.AuthMiddleware(h.DeleteNoteHandler)).Methods("DELETE")
	r.HandleFunc("/notes/{note_id}/ai/summarize", h.AuthMiddleware(h.SummarizeNoteHandler)).Methods("POST")
	r.HandleFunc("/notes/{note_id}/ai/extract-tasks", h.AuthMiddleware(h.ExtractTasksHandler)).Methods("POST")

	// --- Rotas de Equipes ---
	r.HandleFunc("/teams", h.AuthMiddleware(h.CreateTeamHandler)).Methods("POST")
	r.HandleFunc("/teams/mine", h.AuthMiddleware(h.ListMyTeamsHandler)).Methods("GET")
	r.HandleFunc("/teams/{team_id:[0-9]+}", h.AuthMiddleware(h.GetTeamInfoHandler)).Methods("GET")
	r.HandleFunc("/teams/{team_id:[0-9]+}", h.AuthMiddleware(h.UpdateTeamHandler)).Methods("PUT")
	r.HandleFunc("/teams/{team_id:[0-9]+}", h.AuthMiddleware(h.DeleteTeamHandler)).Methods("DELETE")
	r.HandleFunc("/teams/{team_id:[0-9]+}/members", h.AuthMiddleware(h.ListTeamMembersHandler)).Methods("GET")
	r.HandleFunc("/teams/{team_id:[0-9]+}/members", h.AuthMiddleware(h.AddTeamMemberHandler)).Methods("POST")
	r.HandleFunc("/teams/{team_id:[0-9]+}/members/{user_uid}/capacity", h.AuthMiddleware(h.UpdateMemberCapacityHandler)).Methods("PUT")
	r.HandleFunc("/teams/{team_id:[0-9]+}/members/{user_uid}", h.AuthMiddleware(h.RemoveTeamMemberHandler)).Methods("DELETE")
	r.HandleFunc("/teams/{team_id:[0-9]+}/ai/suggest-distribution", h.AuthMiddleware(h.SuggestDistributionHandler)).Methods("POST")
	r.HandleFunc("/teams/{team_id:[0-9]+}/ai/status-summary", h.AuthMiddleware(h.TeamStatusSummaryHandler)).Methods("POST")

	// --- Rotas de IA ---
	r.HandleFunc("/ai/plan-today", h.AuthMiddleware(h.PlanTodayHandler)).Methods("POST")
	r.HandleFunc("/ai/create-task-from-text", h.AuthMiddleware(h.CreateTaskFromTextHandler)).Methods("POST")
	r.HandleFunc("/ai/flows", h.AuthMiddleware(h.ListFlowsHandler)).Methods("GET")
	r.HandleFunc("/ai/flows/{flow}", h.AuthMiddleware(h.RunFlowHandler)).Methods("POST")

	// Configuração do CORS
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization", "X-Request-ID"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
		utilities.LogInfo("CORS_ALLOWED_ORIGINS não definida, permitindo todas as origens ('*'). Defina para maior segurança em produção.")
	}
	origins := gorillahandlers.AllowedOrigins(allowedOrigins)
	utilities.LogInfo("Configurando CORS com origens permitidas: %v", allowedOrigins)

	return gorillahandlers.CORS(headers, methods, origins)(r)
}
