package firebase

import (
	"context"
	"database/sql"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

// Authenticator agrupa as operações de usuário sobre o Firebase Auth.
type Authenticator struct {
	client *auth.Client
}

func NewAuthenticator(client *auth.Client) *Authenticator {
	return &Authenticator{client: client}
}

func (a *Authenticator) VerifyUserToken(ctx context.Context, token string) (*auth.Token, error) {
	verifiedToken, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("erro ao verificar token: %w", err)
	}
	return verifiedToken, nil
}

// Criar usuário
func (a *Authenticator) CreateFirebaseUser(ctx context.Context, email, password, displayName string) (*auth.UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		EmailVerified(false).
		Password(password).
		DisplayName(displayName).
		Disabled(false)

	user, err := a.client.CreateUser(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar usuário: %w", err)
	}

	utilities.LogInfo("Usuário criado com sucesso: UID = %s", user.UID)
	return user, nil
}

// EmailInUse informa se já existe usuário no Firebase com esse e-mail.
func (a *Authenticator) EmailInUse(ctx context.Context, email string) (bool, error) {
	_, err := a.client.GetUserByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if auth.IsUserNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("erro ao buscar usuário por e-mail: %w", err)
}

// Deletar usuário
func (a *Authenticator) DeleteUser(ctx context.Context, uid string) error {
	if err := a.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("erro ao deletar usuário: %w", err)
	}
	utilities.LogInfo("Usuário com UID %s deletado com sucesso", uid)
	return nil
}

func (a *Authenticator) CustomToken(ctx context.Context, uid string) (string, error) {
	return a.client.CustomToken(ctx, uid)
}

func (a *Authenticator) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return a.client.RevokeRefreshTokens(ctx, uid)
}

// UserFromToken extrai os dados do usuário das claims do token.
func UserFromToken(token *auth.Token) models.Usuario {
	email, _ := token.Claims["email"].(string)
	displayName, _ := token.Claims["name"].(string)
	return models.Usuario{FirebaseUID: token.UID, Email: email, DisplayName: displayName}
}

// CheckOrCreateUserInPostgres garante que o usuário do token exista na tabela users.
func CheckOrCreateUserInPostgres(ctx context.Context, db *sql.DB, user models.Usuario) (string, error) {
	var dbUID string
	err := db.QueryRowContext(ctx, "SELECT firebase_uid FROM users WHERE firebase_uid = $1", user.FirebaseUID).Scan(&dbUID)

	switch {
	case err == sql.ErrNoRows:
		utilities.LogInfo("Primeiro acesso para UID %s. Criando no PostgreSQL...", user.FirebaseUID)
		if err := InsertUser(ctx, db, user); err != nil {
			return "", err
		}
		return user.FirebaseUID, nil

	case err != nil:
		return "", fmt.Errorf("erro ao buscar usuário no DB: %w", err)

	default:
		utilities.LogDebug("Usuário %s encontrado no PostgreSQL", user.FirebaseUID)
		return dbUID, nil
	}
}

func InsertUser(ctx context.Context, db *sql.DB, user models.Usuario) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (firebase_uid, email, display_name) VALUES ($1, $2, $3)",
		user.FirebaseUID, user.Email, user.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir usuário no DB: %w", err)
	}
	return nil
}

// GetUser busca o usuário local pelo Firebase UID.
func GetUser(ctx context.Context, db *sql.DB, uid string) (*models.Usuario, error) {
	var user models.Usuario
	err := db.QueryRowContext(ctx, "SELECT firebase_uid, email, display_name FROM users WHERE firebase_uid = $1", uid).
		Scan(&user.FirebaseUID, &user.Email, &user.DisplayName)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuário: %w", err)
	}
	return &user, nil
}

// UserStore expõe as funções de usuário do PostgreSQL como métodos.
type UserStore struct {
	DB *sql.DB
}

func (s UserStore) Ensure(ctx context.Context, user models.Usuario) (string, error) {
	return CheckOrCreateUserInPostgres(ctx, s.DB, user)
}

func (s UserStore) Insert(ctx context.Context, user models.Usuario) error {
	return InsertUser(ctx, s.DB, user)
}

func (s UserStore) Get(ctx context.Context, uid string) (*models.Usuario, error) {
	return GetUser(ctx, s.DB, uid)
}
