package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// Priority é a prioridade de uma tarefa. Enumeração fechada.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lista as prioridades válidas na ordem crescente de urgência.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid informa se p é uma das prioridades conhecidas.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePriority aceita a prioridade ignorando maiúsculas/minúsculas ("high" -> High).
func ParsePriority(s string) (Priority, bool) {
	for _, known := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, true
		}
	}
	return "", false
}

// JSONSchema faz o reflector do contrato dos flows tratar Priority como enum.
func (Priority) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(Priorities))
	for i, p := range Priorities {
		enum[i] = string(p)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// TaskStatus é o estado de uma tarefa. Enumeração fechada.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid informa se s é um status conhecido.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task representa uma tarefa armazenada no Firestore (coleção "tasks").
type Task struct {
	ID                string     `json:"id" firestore:"-"`
	Title             string     `json:"title" firestore:"title"`
	Description       string     `json:"description,omitempty" firestore:"description,omitempty"`
	Status            TaskStatus `json:"status" firestore:"status"`
	DueDate           string     `json:"dueDate,omitempty" firestore:"dueDate,omitempty"` // ISO 8601
	Priority          Priority   `json:"priority" firestore:"priority"`
	EstimatedDuration float64    `json:"estimatedDuration,omitempty" firestore:"estimatedDuration,omitempty"` // minutos
	Tags              []string   `json:"tags,omitempty" firestore:"tags,omitempty"`
	OwnerID           string     `json:"ownerId" firestore:"ownerId"`
	TeamID            string     `json:"teamId,omitempty" firestore:"teamId,omitempty"`
	AssignedTo        string     `json:"assignedTo,omitempty" firestore:"assignedTo,omitempty"`
	CreatedAt         time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// DueTime interpreta DueDate. ok é false quando a data está ausente ou malformada.
func (t Task) DueTime() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := time.Parse(time.RFC3339, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// ForOrdering devolve o recorte da tarefa usado pelo flow de ordenação.
func (t Task) ForOrdering() OrderableTask {
	return OrderableTask{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		DueDate:           t.DueDate,
		Priority:          t.Priority,
		EstimatedDuration: t.EstimatedDuration,
		Tags:              t.Tags,
	}
}

// CreateTaskInput é o corpo aceito na criação de tarefas (campos gerados pelo servidor ficam de fora).
type CreateTaskInput struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            TaskStatus `json:"status"`
	DueDate           string     `json:"dueDate"`
	Priority          Priority   `json:"priority"`
	EstimatedDuration float64    `json:"estimatedDuration"`
	Tags              []string   `json:"tags"`
	TeamID            string     `json:"teamId"`
	AssignedTo        string     `json:"assignedTo"`
}

type UpdateTaskInput struct {
	Title             *string     `json:"title"` // Ponteiros para indicar quais campos atualizar
	Description       *string     `json:"description"`
	Status            *TaskStatus `json:"status"`
	DueDate           *string     `json:"dueDate"`
	Priority          *Priority   `json:"priority"`
	EstimatedDuration *float64    `json:"estimatedDuration"`
	Tags              *[]string   `json:"tags"`
	AssignedTo        *string     `json:"assignedTo"`
}

// ErrInvalidTask indica um corpo de tarefa que não pode ser salvo.
var ErrInvalidTask = errors.New("tarefa inválida")

func invalidTask(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTask, fmt.Sprintf(format, args...))
}

func checkDueDate(due string) error {
	if due == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, due); err != nil {
		return invalidTask("dueDate deve estar em ISO 8601 (RFC 3339): %q", due)
	}
	return nil
}

// NewTask valida o corpo de criação e monta a tarefa do dono ownerID.
// Prioridade ausente vira Medium e status ausente vira todo.
func NewTask(ownerID string, in CreateTaskInput, now time.Time) (Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Task{}, invalidTask("título é obrigatório")
	}

	priority := PriorityMedium
	if in.Priority != "" {
		p, ok := ParsePriority(string(in.Priority))
		if !ok {
			return Task{}, invalidTask("prioridade desconhecida: %q", in.Priority)
		}
		priority = p
	}

	status := StatusTodo
	if in.Status != "" {
		if !in.Status.Valid() {
			return Task{}, invalidTask("status desconhecido: %q", in.Status)
		}
		status = in.Status
	}

	if err := checkDueDate(in.DueDate); err != nil {
		return Task{}, err
	}
	if in.EstimatedDuration < 0 {
		return Task{}, invalidTask("estimatedDuration não pode ser negativo")
	}

	return Task{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Status:            status,
		DueDate:           in.DueDate,
		Priority:          priority,
		EstimatedDuration: in.EstimatedDuration,
		Tags:              in.Tags,
		OwnerID:           ownerID,
		TeamID:            in.TeamID,
		AssignedTo:        in.AssignedTo,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Apply aplica a atualização parcial em t. Só os campos não nulos mudam.
func (in UpdateTaskInput) Apply(t *Task, now time.Time) error {
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return invalidTask("título não pode ser vazio")
		}
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return invalidTask("status desconhecido: %q", *in.Status)
		}
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		if err := checkDueDate(*in.DueDate); err != nil {
			return err
		}
		t.DueDate = *in.DueDate
	}
	if in.Priority != nil {
		p, ok := ParsePriority(string(*in.Priority))
		if !ok {
			return invalidTask("prioridade desconhecida: %q", *in.Priority)
		}
		t.Priority = p
	}
	if in.EstimatedDuration != nil {
		if *in.EstimatedDuration < 0 {
			return invalidTask("estimatedDuration não pode ser negativo")
		}
		t.EstimatedDuration = *in.EstimatedDuration
	}
	if in.Tags != nil {
		t.Tags = *in.Tags
	}
	if in.AssignedTo != nil {
		t.AssignedTo = *in.AssignedTo
	}
	t.UpdatedAt = now
	return nil
}
