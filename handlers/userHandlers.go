package handlers

import (
	"errors"
	"net/http"
	"strings"

	"taskflow-backend/firebase"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

type SocialLoginInput struct {
	IDToken string `json:"idToken"`
}

// SocialLoginResponse define a estrutura da resposta de sucesso
type SocialLoginResponse struct {
	Message     string `json:"message"`
	FirebaseUID string `json:"firebaseUid"`
}

// RegisterHandler cria o usuário no Firebase e na tabela users. Se o insert no
// PostgreSQL falhar, o usuário do Firebase é removido.
// Rota: POST /auth/register
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando registro de novo usuário")

	var user models.Usuario
	if err := decodeBody(r, &user); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON do corpo da requisição")
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	user.Email = strings.TrimSpace(user.Email)
	user.DisplayName = strings.TrimSpace(user.DisplayName)

	switch {
	case user.Email == "":
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	case user.Password == "":
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	case user.DisplayName == "":
		writeError(w, http.StatusBadRequest, "Display name is required")
		return
	}

	ctx := r.Context()
	inUse, err := h.Accounts.EmailInUse(ctx, user.Email)
	if err != nil {
		utilities.LogError(err, "Erro inesperado ao verificar usuário no Firebase")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if inUse {
		utilities.LogInfo("Tentativa de registro com email já existente: %s", user.Email)
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	firebaseUser, err := h.Accounts.CreateFirebaseUser(ctx, user.Email, user.Password, user.DisplayName)
	if err != nil {
		utilities.LogError(err, "Erro ao criar usuário no Firebase")
		writeError(w, http.StatusInternalServerError, "Failed to create user in Firebase")
		return
	}
	user.FirebaseUID = firebaseUser.UID
	user.Password = ""

	if err := h.Users.Insert(ctx, user); err != nil {
		utilities.LogError(err, "Erro ao salvar usuário no banco de dados")
		if delErr := h.Accounts.DeleteUser(ctx, user.FirebaseUID); delErr != nil {
			utilities.LogError(delErr, "Falha CRÍTICA ao reverter criação do usuário no Firebase UID: "+user.FirebaseUID)
		}
		writeError(w, http.StatusInternalServerError, "Failed to save user in database")
		return
	}

	customToken, err := h.Accounts.CustomToken(ctx, user.FirebaseUID)
	if err != nil {
		utilities.LogError(err, "Erro ao gerar custom token")
		writeError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	utilities.LogInfo("Usuário registrado com sucesso: %s", user.Email)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "User created successfully and ready to sign in",
		"uid":         user.FirebaseUID,
		"customToken": customToken,
	})
}

// FinalizeFirebaseLoginHandler verifica um ID Token do Firebase (login social ou
// outro) e sincroniza o usuário com o banco local.
// Rota: POST /auth/finalize-login
func (h *Handler) FinalizeFirebaseLoginHandler(w http.ResponseWriter, r *http.Request) {
	var input SocialLoginInput
	if err := decodeBody(r, &input); err != nil {
		utilities.LogError(err, "Erro ao decodificar corpo da requisição para finalizar login Firebase")
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(input.IDToken) == "" {
		writeError(w, http.StatusBadRequest, "ID Token é obrigatório")
		return
	}

	verifiedToken, err := h.Accounts.VerifyUserToken(r.Context(), input.IDToken)
	if err != nil {
		utilities.LogError(err, "Falha ao verificar ID Token do Firebase")
		writeError(w, http.StatusUnauthorized, "Token inválido ou falha na verificação")
		return
	}

	localUserUID, err := h.Users.Ensure(r.Context(), firebase.UserFromToken(verifiedToken))
	if err != nil {
		utilities.LogError(err, "Erro ao sincronizar usuário com banco de dados local")
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor ao processar usuário")
		return
	}

	utilities.LogInfo("Usuário (Firebase UID: %s) sincronizado com o banco local", localUserUID)
	writeJSON(w, http.StatusOK, SocialLoginResponse{
		Message:     "Login finalizado e usuário sincronizado com sucesso.",
		FirebaseUID: localUserUID,
	})
}

// UserHandler retorna informações do usuário atual.
// Rota: GET /user/info
func (h *Handler) UserHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.Users.Get(r.Context(), uid)
	if errors.Is(err, models.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "Usuário não encontrado")
		return
	}
	if err != nil {
		utilities.LogError(err, "Erro ao buscar usuário")
		writeError(w, http.StatusInternalServerError, "Erro ao buscar usuário")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// LogoutHandler revoga os refresh tokens do usuário.
// Rota: POST /auth/logout
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Accounts.RevokeRefreshTokens(r.Context(), uid); err != nil {
		utilities.LogError(err, "Erro ao revogar tokens")
		writeError(w, http.StatusInternalServerError, "Erro ao fazer logout")
		return
	}

	utilities.LogInfo("Tokens revogados para UID: %s", uid)
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout efetuado com sucesso"})
}
