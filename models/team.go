package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrTeamNotFound       = errors.New("equipe não encontrada")
	ErrNotTeamOwner       = errors.New("equipe não encontrada ou usuário não é o dono")
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrAlreadyTeamMember  = errors.New("usuário já é membro da equipe")
	ErrTeamMemberNotFound = errors.New("usuário não encontrado na equipe ou já removido")
)

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerUID    string    `json:"owner_uid"` // Firebase UID do dono
	CreatedAt   time.Time `json:"created_at"`
	Members     int       `json:"members"`
}

// UserTeamInfo descreve uma equipe da qual o usuário é membro.
type UserTeamInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	UserRole string `json:"user_role"` // "admin" ou "member"
	IsOwner  bool   `json:"is_owner"`
}

// MemberCapacity é o perfil de capacidade usado na distribuição de tarefas.
type MemberCapacity struct {
	Skills                []string `json:"skills"`
	AvailableHoursPerWeek float64  `json:"available_hours_per_week"`
	CurrentWorkload       float64  `json:"current_workload"`
}

type TeamMemberProfile struct {
	UserID      string    `json:"user_id"` // Firebase UID
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	MemberCapacity
}

// ForDistribution converte o perfil para o formato do flow de distribuição.
func (m TeamMemberProfile) ForDistribution() TeamMember {
	skills := m.Skills
	if skills == nil {
		skills = []string{}
	}
	name := m.DisplayName
	if name == "" {
		name = m.Email
	}
	if name == "" {
		name = m.UserID
	}
	return TeamMember{
		ID:                    m.UserID,
		Name:                  name,
		AvailableHoursPerWeek: m.AvailableHoursPerWeek,
		Skills:                skills,
		CurrentWorkload:       m.CurrentWorkload,
	}
}

func localUserID(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, firebaseUID string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT id FROM users WHERE firebase_uid = $1", firebaseUID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrUserNotFound, firebaseUID)
	}
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar ID do usuário: %w", err)
	}
	return id, nil
}

// CreateTeam cria a equipe e adiciona o criador como admin, na mesma transação.
func CreateTeam(ctx context.Context, db *sql.DB, ownerUID, name, description string) (team *Team, err error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("nome da equipe não pode ser vazio")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	userID, err := localUserID(ctx, tx, ownerUID)
	if err != nil {
		return nil, err
	}

	t := &Team{Name: name, Description: description, OwnerUID: ownerUID, Members: 1}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO teams (name, description, owner_uid, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, name, description, ownerUID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar equipe: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at, skills, available_hours_per_week, current_workload)
		VALUES ($1, $2, 'admin', NOW(), '{}', 0, 0)
	`, t.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("falha ao adicionar criador à equipe: %w", err)
	}
	return t, nil
}

func GetTeamInfo(ctx context.Context, db *sql.DB, teamID int64) (*Team, error) {
	var team Team
	err := db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.description, t.owner_uid, t.created_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id)
		FROM teams t
		WHERE t.id = $1
	`, teamID).Scan(&team.ID, &team.Name, &team.Description, &team.OwnerUID, &team.CreatedAt, &team.Members)
	if err == sql.ErrNoRows {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func ListUserTeams(ctx context.Context, db *sql.DB, firebaseUID string) ([]UserTeamInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, tm.role, t.owner_uid = $1
		FROM team_members tm
		JOIN teams t ON tm.team_id = t.id
		JOIN users u ON tm.user_id = u.id
		WHERE u.firebase_uid = $1
		ORDER BY t.name
	`, firebaseUID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar equipes do usuário: %w", err)
	}
	defer rows.Close()

	teams := []UserTeamInfo{}
	for rows.Next() {
		var info UserTeamInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UserRole, &info.IsOwner); err != nil {
			return nil, err
		}
		teams = append(teams, info)
	}
	return teams, rows.Err()
}

func ListTeamMembers(ctx context.Context, db *sql.DB, teamID int64) ([]TeamMemberProfile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT u.firebase_uid, u.display_name, u.email, tm.role, tm.joined_at,
		       tm.skills, tm.available_hours_per_week, tm.current_workload
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar membros da equipe: %w", err)
	}
	defer rows.Close()

	var members []TeamMemberProfile
	for rows.Next() {
		var m TeamMemberProfile
		err := rows.Scan(
			&m.UserID,
			&m.DisplayName,
			&m.Email,
			&m.Role,
			&m.JoinedAt,
			pq.Array(&m.Skills),
			&m.AvailableHoursPerWeek,
			&m.CurrentWorkload,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func UpdateTeam(ctx context.Context, db *sql.DB, teamID int64, name, description string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("nome da equipe não pode ser vazio")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE teams
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`, name, description, teamID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar equipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func DeleteTeam(ctx context.Context, db *sql.DB, teamID int64, ownerUID string) error {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM teams
			WHERE id = $1 AND owner_uid = $2
		)
	`, teamID, ownerUID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("falha ao verificar dono da equipe: %w", err)
	}
	if !exists {
		return ErrNotTeamOwner
	}

	// team_members é removido em cascata
	if _, err := db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID); err != nil {
		return fmt.Errorf("falha ao deletar equipe: %w", err)
	}
	return nil
}

func AddUserToTeam(ctx context.Context, db *sql.DB, teamID int64, email, role string, capacity MemberCapacity) error {
	if role == "" {
		role = "member"
	}
	if capacity.Skills == nil {
		capacity.Skills = []string{}
	}

	var userID int64
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return fmt.Errorf("erro ao buscar ID do usuário: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at, skills, available_hours_per_week, current_workload)
		VALUES ($1, $2, $3, NOW(), $4, $5, $6)
	`, teamID, userID, role, pq.Array(capacity.Skills), capacity.AvailableHoursPerWeek, capacity.CurrentWorkload)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w (email: %s, equipe %d)", ErrAlreadyTeamMember, email, teamID)
		}
		return fmt.Errorf("falha ao adicionar usuário à equipe: %w", err)
	}
	return nil
}

// UpdateMemberCapacity atualiza habilidades, horas disponíveis e carga atual de um membro.
func UpdateMemberCapacity(ctx context.Context, db *sql.DB, teamID int64, firebaseUID string, capacity MemberCapacity) error {
	if capacity.Skills == nil {
		capacity.Skills = []string{}
	}
	userID, err := localUserID(ctx, db, firebaseUID)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE team_members
		SET skills = $1, available_hours_per_week = $2, current_workload = $3
		WHERE team_id = $4 AND user_id = $5
	`, pq.Array(capacity.Skills), capacity.AvailableHoursPerWeek, capacity.CurrentWorkload, teamID, userID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar capacidade do membro: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func RemoveUserFromTeam(ctx context.Context, db *sql.DB, teamID int64, firebaseUID string) error {
	userID, err := localUserID(ctx, db, firebaseUID)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `
		DELETE FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return fmt.Errorf("falha ao remover usuário da equipe: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func IsTeamMember(ctx context.Context, db *sql.DB, firebaseUID string, teamID int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM team_members tm
			JOIN users u ON tm.user_id = u.id
			WHERE u.firebase_uid = $1 AND tm.team_id = $2
		)
	`, firebaseUID, teamID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("falha ao checar se usuário é membro da equipe: %w", err)
	}
	return exists, nil
}

// TeamStore expõe as funções de equipe sobre um *sql.DB como métodos, para
// quem depende de uma interface (handlers, contexto da IA).
type TeamStore struct {
	DB *sql.DB
}

func (s TeamStore) Create(ctx context.Context, ownerUID, name, description string) (*Team, error) {
	return CreateTeam(ctx, s.DB, ownerUID, name, description)
}

func (s TeamStore) Info(ctx context.Context, teamID int64) (*Team, error) {
	return GetTeamInfo(ctx, s.DB, teamID)
}

func (s TeamStore) ListUserTeams(ctx context.Context, firebaseUID string) ([]UserTeamInfo, error) {
	return ListUserTeams(ctx, s.DB, firebaseUID)
}

func (s TeamStore) ListTeamMembers(ctx context.Context, teamID int64) ([]TeamMemberProfile, error) {
	return ListTeamMembers(ctx, s.DB, teamID)
}

func (s TeamStore) Update(ctx context.Context, teamID int64, name, description string) error {
	return UpdateTeam(ctx, s.DB, teamID, name, description)
}

func (s TeamStore) Delete(ctx context.Context, teamID int64, ownerUID string) error {
	return DeleteTeam(ctx, s.DB, teamID, ownerUID)
}

func (s TeamStore) AddMember(ctx context.Context, teamID int64, email, role string, capacity MemberCapacity) error {
	return AddUserToTeam(ctx, s.DB, teamID, email, role, capacity)
}

func (s TeamStore) UpdateCapacity(ctx context.Context, teamID int64, firebaseUID string, capacity MemberCapacity) error {
	return UpdateMemberCapacity(ctx, s.DB, teamID, firebaseUID, capacity)
}

func (s TeamStore) RemoveMember(ctx context.Context, teamID int64, firebaseUID string) error {
	return RemoveUserFromTeam(ctx, s.DB, teamID, firebaseUID)
}

func (s TeamStore) IsMember(ctx context.Context, firebaseUID string, teamID int64) (bool, error) {
	return IsTeamMember(ctx, s.DB, firebaseUID, teamID)
}
