package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5, cfg.PlanTodayLimit)
	assert.Equal(t, 50, cfg.MaxTasksForAIContext)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Development())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("PLAN_TODAY_LIMIT", "3")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_NAME", "tasks_test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.PlanTodayLimit)
	assert.True(t, cfg.Development())
	assert.Contains(t, cfg.Database.DSN(), "dbname=tasks_test")
}

func TestGoogleAPIKeyIsFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.AI.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.AI.APIKey)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "ai_model: gemini-1.5-pro\nmax_tasks_for_ai_context: 20\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskflow.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
	assert.Equal(t, 20, cfg.MaxTasksForAIContext)
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "trinta segundos")

	_, err := Load("")
	assert.ErrorContains(t, err, "AI_TIMEOUT")
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.ValidateAI(), "GEMINI_API_KEY")
	assert.ErrorContains(t, cfg.ValidateServer(), "FIREBASE_CREDENTIALS_PATH")

	cfg.AI.APIKey = "key"
	cfg.Firebase.CredentialsPath = "/etc/firebase.json"
	assert.NoError(t, cfg.ValidateAI())
	assert.NoError(t, cfg.ValidateServer())
}
