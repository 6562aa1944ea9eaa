package model

// TaskPatch is a partial task update. Nil fields keep their current value. Version must match the
// stored task.
type TaskPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	DueDate      *Date     `json:"due_date,omitempty"`
	ClearDueDate bool      `json:"clear_due_date,omitempty"`
	ListName     *string   `json:"list_name,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Version      int       `json:"version"`
}

// Apply returns t with the patch fields written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.ListName != nil {
		t.ListName = *p.ListName
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	t.Version = p.Version
	return t
}

type NotePatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	return n
}
