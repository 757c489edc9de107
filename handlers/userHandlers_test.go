package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(nil)

	rec := serve(env.h.RegisterHandler, request(http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"secret","display_name":"New"}`, "", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]string](t, rec.Body.Bytes())
	assert.Equal(t, "new-uid", body["uid"])
	assert.Equal(t, "custom-new-uid", body["customToken"])
	assert.Equal(t, models.Usuario{FirebaseUID: "new-uid", Email: "new@example.com", DisplayName: "New"}, env.users.users["new-uid"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(nil)
	env.accounts.existing["taken@example.com"] = true

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"sem email", `{"password":"x","display_name":"x"}`, http.StatusBadRequest},
		{"sem senha", `{"email":"a@b.c","display_name":"x"}`, http.StatusBadRequest},
		{"sem nome", `{"email":"a@b.c","password":"x"}`, http.StatusBadRequest},
		{"email em uso", `{"email":"taken@example.com","password":"x","display_name":"x"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(env.h.RegisterHandler, request(http.MethodPost, "/auth/register", tc.body, "", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRegisterRollsBackFirebaseUser(t *testing.T) {
	env := newTestEnv(nil)
	env.users.insertErr = errors.New("conexão recusada")

	rec := serve(env.h.RegisterHandler, request(http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"secret","display_name":"New"}`, "", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"new-uid"}, env.accounts.deleted)
}

func TestFinalizeLogin(t *testing.T) {
	env := newTestEnv(nil)

	rec := serve(env.h.FinalizeFirebaseLoginHandler, request(http.MethodPost, "/auth/finalize-login", `{"idToken":"bad"}`, "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(env.h.FinalizeFirebaseLoginHandler, request(http.MethodPost, "/auth/finalize-login", `{"idToken":"good-token"}`, "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[SocialLoginResponse](t, rec.Body.Bytes()).FirebaseUID)
	assert.Equal(t, "alice@example.com", env.users.users["alice"].Email)

	rec = serve(env.h.UserHandler, request(http.MethodGet, "/user/info", "", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[models.Usuario](t, rec.Body.Bytes()).DisplayName)

	rec = serve(env.h.UserHandler, request(http.MethodGet, "/user/info", "", "ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesTokens(t *testing.T) {
	env := newTestEnv(nil)
	rec := serve(env.h.LogoutHandler, request(http.MethodPost, "/auth/logout", "", "alice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice"}, env.accounts.revoked)
}
