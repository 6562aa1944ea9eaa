package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	DueDate     *Date     `json:"due_date,omitempty"`
	ListName    string    `json:"list_name,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Subtasks    []Subtask `json:"subtasks"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Subtask struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

// TaskFilter narrows a task listing on the store side. Nil fields are not applied.
type TaskFilter struct {
	ListName  *string
	Category  *string
	Tags      []string
	Completed *bool
	// Query is matched in memory against title and description after the fetch.
	Query string
}

// StructuredTask is the shape returned by the natural-language structuring collaborator.
type StructuredTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate"`
	List        string   `json:"list"`
	Subtasks    []string `json:"subtasks"`
}
