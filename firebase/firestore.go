package firebase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

const (
	tasksCollectionName = "tasks"
	notesCollectionName = "notes"
	deleteBatchSize     = 500 // O Firestore aceita até 500 operações por batch
)

// ErrNotFound indica que o documento não existe no Firestore.
var ErrNotFound = errors.New("documento não encontrado")

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// TaskFilter restringe a listagem de tarefas de um usuário.
type TaskFilter struct {
	Status models.TaskStatus
	TeamID string
	Limit  int
}

// TaskStore guarda as tarefas na coleção "tasks".
type TaskStore struct {
	client *firestore.Client
}

func NewTaskStore(client *firestore.Client) *TaskStore {
	return &TaskStore{client: client}
}

func (s *TaskStore) collection() *firestore.CollectionRef {
	return s.client.Collection(tasksCollectionName)
}

// Create salva a tarefa e preenche task.ID com o ID gerado.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	ref, _, err := s.collection().Add(ctx, task)
	if err != nil {
		return fmt.Errorf("erro ao salvar tarefa no Firestore: %w", err)
	}
	task.ID = ref.ID
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar tarefa %s: %w", id, err)
	}
	return taskFromDoc(doc)
}

func taskFromDoc(doc *firestore.DocumentSnapshot) (*models.Task, error) {
	var task models.Task
	if err := doc.DataTo(&task); err != nil {
		return nil, fmt.Errorf("erro ao converter tarefa %s: %w", doc.Ref.ID, err)
	}
	task.ID = doc.Ref.ID
	return &task, nil
}

// ListByOwner lista as tarefas criadas por ownerID, das mais antigas para as mais novas.
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID string, filter TaskFilter) ([]models.Task, error) {
	q := s.collection().Where("ownerId", "==", ownerID)
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.TeamID != "" {
		q = q.Where("teamId", "==", filter.TeamID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return s.list(ctx, q)
}

// ListByTeam lista até limit tarefas da equipe.
func (s *TaskStore) ListByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error) {
	q := s.collection().Where("teamId", "==", teamID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.list(ctx, q)
}

// ListOpenByTeam lista até limit tarefas da equipe que ainda não foram concluídas.
// O filtro de status fica na consulta para que o limite conte só tarefas abertas.
func (s *TaskStore) ListOpenByTeam(ctx context.Context, teamID string, limit int) ([]models.Task, error) {
	q := s.collection().
		Where("teamId", "==", teamID).
		Where("status", "in", []string{string(models.StatusTodo), string(models.StatusInProgress)})
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.list(ctx, q)
}

func (s *TaskStore) list(ctx context.Context, q firestore.Query) ([]models.Task, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	tasks := []models.Task{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar tarefas do Firestore: %w", err)
		}
		task, err := taskFromDoc(doc)
		if err != nil {
			// Uma tarefa malformada não deve derrubar a listagem inteira
			utilities.LogWarn("Ignorando tarefa malformada: %v", err)
			continue
		}
		tasks = append(tasks, *task)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

// Update aplica a atualização parcial dentro de uma transação.
func (s *TaskStore) Update(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error) {
	ref := s.collection().Doc(id)
	var updated *models.Task
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if notFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		task, err := taskFromDoc(doc)
		if err != nil {
			return err
		}
		if err := in.Apply(task, time.Now()); err != nil {
			return err
		}
		updated = task
		return tx.Set(ref, task)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, models.ErrInvalidTask) {
			return nil, err
		}
		return nil, fmt.Errorf("erro ao atualizar tarefa %s: %w", id, err)
	}
	return updated, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("erro ao deletar tarefa %s: %w", id, err)
	}
	return nil
}

// DeleteByTeam apaga todas as tarefas da equipe em batches e devolve quantas foram apagadas.
func (s *TaskStore) DeleteByTeam(ctx context.Context, teamID string) (int, error) {
	total := 0
	for {
		iter := s.collection().Where("teamId", "==", teamID).Limit(deleteBatchSize).Documents(ctx)
		numDeleted := 0

		batch := s.client.Batch()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return total, fmt.Errorf("erro ao iterar tarefas para deleção na equipe %s: %w", teamID, err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}
		iter.Stop()

		if numDeleted == 0 {
			break
		}

		if _, err := batch.Commit(ctx); err != nil {
			return total, fmt.Errorf("erro ao deletar batch de tarefas na equipe %s: %w", teamID, err)
		}
		total += numDeleted
		utilities.LogDebug("Deletadas %d tarefas da equipe %s no Firestore.", numDeleted, teamID)
	}
	return total, nil
}

// NoteStore guarda as notas na coleção "notes".
type NoteStore struct {
	client *firestore.Client
}

func NewNoteStore(client *firestore.Client) *NoteStore {
	return &NoteStore{client: client}
}

func (s *NoteStore) collection() *firestore.CollectionRef {
	return s.client.Collection(notesCollectionName)
}

func (s *NoteStore) Create(ctx context.Context, note *models.Note) error {
	ref, _, err := s.collection().Add(ctx, note)
	if err != nil {
		return fmt.Errorf("erro ao salvar nota no Firestore: %w", err)
	}
	note.ID = ref.ID
	return nil
}

func (s *NoteStore) Get(ctx context.Context, id string) (*models.Note, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar nota %s: %w", id, err)
	}
	var note models.Note
	if err := doc.DataTo(&note); err != nil {
		return nil, fmt.Errorf("erro ao converter nota %s: %w", id, err)
	}
	note.ID = doc.Ref.ID
	return &note, nil
}

func (s *NoteStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	iter := s.collection().Where("ownerId", "==", ownerID).Documents(ctx)
	defer iter.Stop()

	notes := []models.Note{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar notas do Firestore: %w", err)
		}
		var note models.Note
		if err := doc.DataTo(&note); err != nil {
			utilities.LogWarn("Ignorando nota malformada %s: %v", doc.Ref.ID, err)
			continue
		}
		note.ID = doc.Ref.ID
		notes = append(notes, note)
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

func (s *NoteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("erro ao deletar nota %s: %w", id, err)
	}
	return nil
}
