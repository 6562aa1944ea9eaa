package model

import "time"

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteFilter struct {
	Query    string
	Category *string
}

// StructuredNote is the note shape returned by the natural-language structuring collaborator.
type StructuredNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
