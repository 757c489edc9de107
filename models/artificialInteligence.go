package models

import "time"

// Os tipos abaixo são os contratos de entrada/saída dos flows de IA. As tags
// jsonschema_description viram a descrição de cada campo no schema enviado ao modelo.

// OrderableTask é o recorte de Task usado pelo flow suggestTaskOrder.
type OrderableTask struct {
	ID                string   `json:"id" jsonschema_description:"The unique identifier of the task."`
	Title             string   `json:"title" jsonschema_description:"The title of the task."`
	Description       string   `json:"description,omitempty" jsonschema_description:"A description of the task."`
	DueDate           string   `json:"dueDate,omitempty" jsonschema_description:"The due date of the task in ISO format."`
	Priority          Priority `json:"priority" jsonschema_description:"The priority of the task."`
	EstimatedDuration float64  `json:"estimatedDuration,omitempty" jsonschema_description:"The estimated duration of the task in minutes."`
	Tags              []string `json:"tags,omitempty" jsonschema_description:"Tags or categories for the task."`
}

type TaskOrderInput struct {
	Tasks []OrderableTask `json:"tasks" jsonschema_description:"An array of tasks to be ordered."`
}

type TaskOrderOutput struct {
	OrderedTasks []string `json:"orderedTasks" jsonschema_description:"An array of task IDs representing the suggested order."`
	Reasoning    string   `json:"reasoning" jsonschema_description:"The AI reasoning for the suggested order."`
}

// DistributableTask é a tarefa como o flow de distribuição a enxerga (duração em horas).
type DistributableTask struct {
	ID                string   `json:"id" jsonschema_description:"The unique identifier of the task."`
	Title             string   `json:"title" jsonschema_description:"The title of the task."`
	Description       string   `json:"description,omitempty" jsonschema_description:"A detailed description of the task."`
	Priority          Priority `json:"priority" jsonschema_description:"The priority of the task."`
	EstimatedDuration float64  `json:"estimatedDuration" jsonschema_description:"The estimated duration of the task in hours."`
	RequiredSkills    []string `json:"requiredSkills" jsonschema_description:"List of skills required for the task."`
}

// TeamMember é o membro de equipe como o flow de distribuição o enxerga.
type TeamMember struct {
	ID                    string   `json:"id" jsonschema_description:"The unique identifier of the team member."`
	Name                  string   `json:"name" jsonschema_description:"The name of the team member."`
	AvailableHoursPerWeek float64  `json:"availableHoursPerWeek" jsonschema_description:"The number of hours per week the team member is available."`
	Skills                []string `json:"skills" jsonschema_description:"List of skills the team member possesses."`
	CurrentWorkload       float64  `json:"currentWorkload" jsonschema_description:"The team member current workload in hours."`
}

type TaskDistributionInput struct {
	Tasks       []DistributableTask `json:"tasks" jsonschema_description:"The list of tasks to be distributed."`
	TeamMembers []TeamMember        `json:"teamMembers" jsonschema_description:"The list of team members to distribute the tasks among."`
}

type TaskAssignment struct {
	TaskID       string `json:"taskId" jsonschema_description:"The ID of the assigned task"`
	TeamMemberID string `json:"teamMemberId" jsonschema_description:"The ID of the team member assigned to the task"`
	Reason       string `json:"reason" jsonschema_description:"Explanation of why the task was assigned to this team member."`
}

type SummarizeNotesInput struct {
	NoteContent string `json:"noteContent" jsonschema_description:"The content of the note to be summarized."`
}

type SummarizeNotesOutput struct {
	Summary string `json:"summary" jsonschema_description:"The summarized content of the note, formatted as markdown bullet points."`
}

type ExtractTasksFromNotesInput struct {
	Notes string `json:"notes" jsonschema_description:"The notes from which to extract tasks."`
}

type ExtractTasksFromNotesOutput struct {
	Tasks []string `json:"tasks" jsonschema_description:"The extracted tasks from the notes."`
}

type TeamStatusSummaryInput struct {
	ProjectID string `json:"projectId" jsonschema_description:"The ID of the team project."`
}

type TeamStatusSummaryOutput struct {
	Summary string `json:"summary" jsonschema_description:"A summary of the team project status."`
}

// CommandContext ancora a resolução de datas relativas ("today", "tomorrow").
type CommandContext struct {
	CurrentDate string `json:"currentDate" jsonschema_description:"The current date in ISO format to resolve relative dates like \"today\" or \"tomorrow\"."`
}

type CreateTaskFromTextInput struct {
	Command string         `json:"command" jsonschema_description:"The natural language command to create a task."`
	Context CommandContext `json:"context"`
}

type CreateTaskFromTextOutput struct {
	Title    string   `json:"title" jsonschema_description:"The extracted title of the task. Should be a concise action."`
	DueDate  string   `json:"dueDate,omitempty" jsonschema_description:"The extracted due date for the task in ISO 8601 format. If no date is specified, use the current date."`
	Priority Priority `json:"priority,omitempty" jsonschema_description:"The priority of the task. Default to \"Medium\" if not specified."`
}

// TaskDraft é o rascunho de tarefa já com os valores padrão aplicados pelo consumidor.
type TaskDraft struct {
	Title    string   `json:"title"`
	DueDate  string   `json:"dueDate"`
	Priority Priority `json:"priority"`
}

// AIRequestHistoryEntry representa um registro de requisição à IA no Firestore.
type AIRequestHistoryEntry struct {
	RequestID       string    `firestore:"request_id"`
	UserID          string    `firestore:"user_id"` // Firebase UID do usuário que fez a requisição
	TeamID          string    `firestore:"team_id,omitempty"`
	Flow            string    `firestore:"flow"` // Ex: "suggestTaskOrder", "summarizeNotes"
	Timestamp       time.Time `firestore:"timestamp"`
	DurationMs      int64     `firestore:"duration_ms"`
	RequestPayload  any       `firestore:"request_payload"`
	ResponsePayload any       `firestore:"response_payload,omitempty"`
}
