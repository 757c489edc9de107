package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gorilla/mux"

	"taskflow-backend/firebase"
	"taskflow-backend/flows"
	"taskflow-backend/models"
)

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeAccounts struct {
	tokens   map[string]string // token -> uid
	existing map[string]bool   // e-mails já cadastrados
	deleted  []string
	revoked  []string
	nextUID  string
}

func (f *fakeAccounts) VerifyUserToken(_ context.Context, token string) (*auth.Token, error) {
	uid, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("token inválido")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com", "name": uid}}, nil
}

func (f *fakeAccounts) CreateFirebaseUser(_ context.Context, email, _, displayName string) (*auth.UserRecord, error) {
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: f.nextUID, Email: email, DisplayName: displayName}}, nil
}

func (f *fakeAccounts) EmailInUse(_ context.Context, email string) (bool, error) {
	return f.existing[email], nil
}

func (f *fakeAccounts) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeAccounts) CustomToken(_ context.Context, uid string) (string, error) {
	return "custom-" + uid, nil
}

func (f *fakeAccounts) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakeUsers struct {
	users     map[string]models.Usuario
	insertErr error
}

func (f *fakeUsers) Ensure(_ context.Context, user models.Usuario) (string, error) {
	if _, ok := f.users[user.FirebaseUID]; !ok {
		f.users[user.FirebaseUID] = user
	}
	return user.FirebaseUID, nil
}

func (f *fakeUsers) Insert(_ context.Context, user models.Usuario) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.users[user.FirebaseUID] = user
	return nil
}

func (f *fakeUsers) Get(_ context.Context, uid string) (*models.Usuario, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]models.Task
	order []string
	seq   int
}

func newFakeTasks(tasks ...models.Task) *fakeTasks {
	f := &fakeTasks{tasks: map[string]models.Task{}}
	for _, t := range tasks {
		f.put(t)
	}
	return f
}

func (f *fakeTasks) put(t models.Task) {
	if _, ok := f.tasks[t.ID]; !ok {
		f.order = append(f.order, t.ID)
	}
	f.tasks[t.ID] = t
}

func (f *fakeTasks) Create(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	task.ID = fmt.Sprintf("task-%d", f.seq)
	f.put(*task)
	return nil
}

func (f *fakeTasks) Get(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, firebase.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTasks) filter(keep func(models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, id := range f.order {
		if t, ok := f.tasks[id]; ok && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeTasks) ListByOwner(_ context.Context, ownerID string, filter firebase.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(t models.Task) bool {
		return t.OwnerID == ownerID &&
			(filter.Status == "" || t.Status == filter.Status) &&
			(filter.TeamID == "" || t.TeamID == filter.TeamID)
	}), nil
}

func (f *fakeTasks) ListByTeam(_ context.Context, teamID string, limit int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.filter(func(t models.Task) bool { return t.TeamID == teamID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTasks) ListOpenByTeam(_ context.Context, teamID string, limit int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.filter(func(t models.Task) bool { return t.TeamID == teamID && t.Status != models.StatusDone })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, id string, in models.UpdateTaskInput) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, firebase.ErrNotFound
	}
	if err := in.Apply(&t, testNow); err != nil {
		return nil, err
	}
	f.tasks[id] = t
	return &t, nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) DeleteByTeam(_ context.Context, teamID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, t := range f.tasks {
		if t.TeamID == teamID {
			delete(f.tasks, id)
			n++
		}
	}
	return n, nil
}

type fakeNotes struct {
	notes map[string]models.Note
	seq   int
}

func (f *fakeNotes) Create(_ context.Context, note *models.Note) error {
	f.seq++
	note.ID = fmt.Sprintf("note-%d", f.seq)
	f.notes[note.ID] = *note
	return nil
}

func (f *fakeNotes) Get(_ context.Context, id string) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, firebase.ErrNotFound
	}
	return &n, nil
}

func (f *fakeNotes) ListByOwner(_ context.Context, ownerID string) ([]models.Note, error) {
	out := []models.Note{}
	for _, n := range f.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Delete(_ context.Context, id string) error {
	delete(f.notes, id)
	return nil
}

// fakeTeams guarda equipes e membros em memória. Os membros são identificados pelo UID.
type fakeTeams struct {
	mu      sync.Mutex
	teams   map[int64]*models.Team
	members map[int64][]models.TeamMemberProfile
	emails  map[string]string // e-mail -> uid
	seq     int64
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{teams: map[int64]*models.Team{}, members: map[int64][]models.TeamMemberProfile{}, emails: map[string]string{}}
}

func (f *fakeTeams) Create(_ context.Context, ownerUID, name, description string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &models.Team{ID: f.seq, Name: name, Description: description, OwnerUID: ownerUID, CreatedAt: testNow, Members: 1}
	f.teams[t.ID] = t
	f.members[t.ID] = []models.TeamMemberProfile{{UserID: ownerUID, Role: "admin"}}
	return t, nil
}

func (f *fakeTeams) addProfile(teamID int64, p models.TeamMemberProfile) {
	f.members[teamID] = append(f.members[teamID], p)
}

func (f *fakeTeams) Info(_ context.Context, teamID int64) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[teamID]
	if !ok {
		return nil, models.ErrTeamNotFound
	}
	cp := *t
	cp.Members = len(f.members[teamID])
	return &cp, nil
}

func (f *fakeTeams) ListUserTeams(_ context.Context, uid string) ([]models.UserTeamInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserTeamInfo{}
	for id, members := range f.members {
		for _, m := range members {
			if m.UserID == uid {
				out = append(out, models.UserTeamInfo{ID: id, Name: f.teams[id].Name, UserRole: m.Role, IsOwner: f.teams[id].OwnerUID == uid})
			}
		}
	}
	return out, nil
}

func (f *fakeTeams) ListTeamMembers(_ context.Context, teamID int64) ([]models.TeamMemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TeamMemberProfile(nil), f.members[teamID]...), nil
}

func (f *fakeTeams) Update(_ context.Context, teamID int64, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[teamID]
	if !ok {
		return models.ErrTeamNotFound
	}
	t.Name, t.Description = name, description
	return nil
}

func (f *fakeTeams) Delete(_ context.Context, teamID int64, ownerUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[teamID]
	if !ok || t.OwnerUID != ownerUID {
		return models.ErrNotTeamOwner
	}
	delete(f.teams, teamID)
	delete(f.members, teamID)
	return nil
}

func (f *fakeTeams) AddMember(_ context.Context, teamID int64, email, role string, capacity models.MemberCapacity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.emails[email]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, m := range f.members[teamID] {
		if m.UserID == uid {
			return models.ErrAlreadyTeamMember
		}
	}
	if role == "" {
		role = "member"
	}
	f.addProfile(teamID, models.TeamMemberProfile{UserID: uid, Email: email, Role: role, MemberCapacity: capacity})
	return nil
}

func (f *fakeTeams) UpdateCapacity(_ context.Context, teamID int64, uid string, capacity models.MemberCapacity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members[teamID] {
		if m.UserID == uid {
			f.members[teamID][i].MemberCapacity = capacity
			return nil
		}
	}
	return models.ErrTeamMemberNotFound
}

func (f *fakeTeams) RemoveMember(_ context.Context, teamID int64, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.members[teamID]
	for i, m := range members {
		if m.UserID == uid {
			f.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return models.ErrTeamMemberNotFound
}

func (f *fakeTeams) IsMember(_ context.Context, uid string, teamID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members[teamID] {
		if m.UserID == uid {
			return true, nil
		}
	}
	return false, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []models.AIRequestHistoryEntry
}

func (f *fakeHistory) LogAIInteraction(_ context.Context, entry models.AIRequestHistoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeHistory) Entries() []models.AIRequestHistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AIRequestHistoryEntry(nil), f.entries...)
}

type testEnv struct {
	h        *Handler
	accounts *fakeAccounts
	users    *fakeUsers
	tasks    *fakeTasks
	notes    *fakeNotes
	teams    *fakeTeams
	history  *fakeHistory
}

func newTestEnv(model flows.Model) *testEnv {
	env := &testEnv{
		accounts: &fakeAccounts{tokens: map[string]string{"good-token": "alice"}, existing: map[string]bool{}, nextUID: "new-uid"},
		users:    &fakeUsers{users: map[string]models.Usuario{}},
		tasks:    newFakeTasks(),
		notes:    &fakeNotes{notes: map[string]models.Note{}},
		teams:    newFakeTeams(),
		history:  &fakeHistory{},
	}
	env.h = &Handler{
		Accounts:             env.accounts,
		Users:                env.users,
		Tasks:                env.tasks,
		Notes:                env.notes,
		Teams:                env.teams,
		History:              env.history,
		Model:                model,
		AITimeout:            time.Second,
		PlanTodayLimit:       5,
		MaxTasksForAIContext: 50,
		Now:                  func() time.Time { return testNow },
	}
	return env
}

// request monta uma requisição já autenticada como uid ("" = sem usuário) e com as variáveis de rota.
func request(method, path, body, uid string, vars map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if uid != "" {
		r = r.WithContext(withUserUID(r.Context(), uid))
	}
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func serve(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec
}
