package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskflow-backend/utilities"
)

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware registra informações sobre cada requisição HTTP e garante
// um X-Request-ID na resposta.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		// Captura o status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		utilities.LogDebug("Requisição %s concluída", requestID)
		utilities.LogRequest(r.Method, r.URL.Path, r.RemoteAddr, rw.statusCode, time.Since(start))
	})
}

// AuthMiddleware verifica o token do Firebase e coloca o UID no contexto.
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			utilities.LogError(err, "Autenticação falhou")
			writeError(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		verifiedToken, err := h.Accounts.VerifyUserToken(r.Context(), token)
		if err != nil {
			utilities.LogError(err, "Token inválido")
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserUID(r.Context(), verifiedToken.UID)))
	}
}

// responseWriter é um wrapper para http.ResponseWriter que captura o status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
