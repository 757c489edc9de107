// Package config carrega a configuração do servidor a partir de um .env
// opcional, de variáveis de ambiente e de um taskflow.yaml opcional.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN monta a string de conexão do lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type AIConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

type Config struct {
	ServerPort           string
	CORSAllowedOrigins   []string
	Database             DatabaseConfig
	Firebase             FirebaseConfig
	AI                   AIConfig
	LogLevel             string
	AppEnv               string
	PlanTodayLimit       int
	MaxTasksForAIContext int
}

// Development indica se o servidor roda em modo de desenvolvimento.
func (c *Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "taskflow")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("firebase_credentials_path", "")
	v.SetDefault("firebase_project_id", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("ai_model", "gemini-2.0-flash")
	v.SetDefault("ai_timeout", "30s")
	v.SetDefault("ai_temperature", 0.2)
	v.SetDefault("log_level", "info")
	v.SetDefault("app_env", "production")
	v.SetDefault("plan_today_limit", 5)
	v.SetDefault("max_tasks_for_ai_context", 50)
}

// Load lê o .env (se existir) e depois o taskflow.yaml em dir (se existir).
// Variáveis de ambiente têm precedência sobre o arquivo.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("erro ao carregar o arquivo .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("taskflow")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	setDefaults(v)
	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, err
	}

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("erro ao ler taskflow.yaml: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("ai_timeout"))
	if err != nil {
		return nil, fmt.Errorf("AI_TIMEOUT inválido: %w", err)
	}

	cfg := &Config{
		ServerPort: v.GetString("server_port"),
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: v.GetString("firebase_credentials_path"),
			ProjectID:       v.GetString("firebase_project_id"),
		},
		AI: AIConfig{
			APIKey:      v.GetString("gemini_api_key"),
			Model:       v.GetString("ai_model"),
			Timeout:     timeout,
			Temperature: float32(v.GetFloat64("ai_temperature")),
		},
		LogLevel:             v.GetString("log_level"),
		AppEnv:               v.GetString("app_env"),
		PlanTodayLimit:       v.GetInt("plan_today_limit"),
		MaxTasksForAIContext: v.GetInt("max_tasks_for_ai_context"),
	}

	for _, origin := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	return cfg, nil
}

// ValidateAI checa o que é preciso para chamar o modelo.
func (c *Config) ValidateAI() error {
	var problems []string
	if c.AI.APIKey == "" {
		problems = append(problems, "GEMINI_API_KEY (ou GOOGLE_API_KEY) não está definida")
	}
	if c.AI.Model == "" {
		problems = append(problems, "AI_MODEL não pode ser vazio")
	}
	if c.AI.Timeout <= 0 {
		problems = append(problems, "AI_TIMEOUT deve ser positivo")
	}
	return joinProblems(problems)
}

// ValidateServer checa o que é preciso para subir a API HTTP.
func (c *Config) ValidateServer() error {
	var problems []string
	if err := c.ValidateAI(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Firebase.CredentialsPath == "" {
		problems = append(problems, "FIREBASE_CREDENTIALS_PATH não está definido")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		problems = append(problems, "DB_HOST e DB_NAME são obrigatórios")
	}
	if c.PlanTodayLimit <= 0 {
		problems = append(problems, "PLAN_TODAY_LIMIT deve ser positivo")
	}
	if c.MaxTasksForAIContext <= 0 {
		problems = append(problems, "MAX_TASKS_FOR_AI_CONTEXT deve ser positivo")
	}
	return joinProblems(problems)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuração inválida: %s", strings.Join(problems, "; "))
}
