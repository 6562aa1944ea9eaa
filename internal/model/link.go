package model

import "time"

// Link associates one task with one note. At most one link exists per (task, note) pair.
type Link struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	NoteID    string    `json:"note_id"`
	CreatedAt time.Time `json:"created_at"`
}
