package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"taskflow-backend/config"
	"taskflow-backend/utilities"
)

func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão com o banco de dados: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar ao banco de dados: %w", err)
	}

	utilities.LogInfo("Conectado ao PostgreSQL com sucesso!")
	return db, nil
}

// Schema são as tabelas relacionais: usuários, equipes e membros com perfil de capacidade.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id           BIGSERIAL PRIMARY KEY,
	firebase_uid TEXT NOT NULL UNIQUE,
	email        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS teams (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner_uid   TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS team_members (
	team_id                  BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	user_id                  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role                     TEXT NOT NULL DEFAULT 'member',
	joined_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	skills                   TEXT[] NOT NULL DEFAULT '{}',
	available_hours_per_week DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_workload         DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (team_id, user_id)
);
`

// EnsureSchema cria as tabelas que ainda não existem.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("erro ao criar tabelas: %w", err)
	}
	return nil
}
