package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"taskflow-backend/ai_services"
	"taskflow-backend/config"
	"taskflow-backend/database"
	"taskflow-backend/firebase"
	"taskflow-backend/handlers"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

var appVersion = "dev"

var configDir string

var rootCmd = &cobra.Command{
	Use:           "taskflow",
	Short:         "API do TaskFlow e ferramentas dos flows de IA",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if err := utilities.InitLogger(cfg.LogLevel, cfg.Development()); err != nil {
		return nil, fmt.Errorf("erro ao inicializar o logger: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.ConnectPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao banco de dados: %w", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	fb, err := firebase.InitializeFirebase(ctx, cfg.Firebase)
	if err != nil {
		return err
	}
	defer fb.Close()

	model, err := ai_services.NewGeminiModel(ctx, cfg.AI)
	if err != nil {
		return err
	}

	h := &handlers.Handler{
		Accounts:             firebase.NewAuthenticator(fb.Auth),
		Users:                firebase.UserStore{DB: db},
		Tasks:                firebase.NewTaskStore(fb.Firestore),
		Notes:                firebase.NewNoteStore(fb.Firestore),
		Teams:                models.TeamStore{DB: db},
		History:              ai_services.NewHistoryRecorder(fb.Firestore),
		Model:                model,
		AITimeout:            cfg.AI.Timeout,
		PlanTodayLimit:       cfg.PlanTodayLimit,
		MaxTasksForAIContext: cfg.MaxTasksForAIContext,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           LoadRoutes(h, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utilities.LogInfo("Servidor iniciado na porta %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utilities.LogInfo("Encerrando o servidor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostra a versão",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s\n", appVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "diretório onde procurar o taskflow.yaml")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	defer utilities.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		utilities.Sync()
		os.Exit(1)
	}
}
