// Package organizer derives sidebar, board and dashboard views from task and note snapshots.
//
// Nothing here performs I/O or keeps state between calls: every function is a pure transform over
// the slices it is given and returns fresh slices.
package organizer

import (
	"strings"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

const (
	// DefaultCategory is substituted for items that carry no category.
	DefaultCategory = "General"
	// AllCategory is the "show everything" pseudo-category. It is never a stored label.
	AllCategory = "all"
)

// CategoryOf returns the effective category of a label. Blank labels, and labels that collide
// with the sentinel, read as DefaultCategory.
func CategoryOf(category string) string {
	if strings.TrimSpace(category) == "" || category == AllCategory {
		return DefaultCategory
	}
	return category
}

func TaskCategory(t model.Task) string { return CategoryOf(t.Category) }

func NoteCategory(n model.Note) string { return CategoryOf(n.Category) }

// NormalizeTags trims tags, drops empty ones and collapses duplicates keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// NormalizeTask applies the read-time defaults to a single task. The input is not modified.
func NormalizeTask(t model.Task) model.Task {
	t.Category = CategoryOf(t.Category)
	t.Tags = NormalizeTags(t.Tags)
	if !t.Priority.Valid() {
		t.Priority = model.PriorityMedium
	}
	subtasks := make([]model.Subtask, len(t.Subtasks))
	copy(subtasks, t.Subtasks)
	t.Subtasks = subtasks
	return t
}

// Normalize is applied once to every fetched task snapshot so downstream views never repeat
// the category fallback.
func Normalize(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = NormalizeTask(t)
	}
	return out
}

func NormalizeNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		n.Category = CategoryOf(n.Category)
		out[i] = n
	}
	return out
}

// DistinctCategories lists the effective categories of items in first-seen order.
func DistinctCategories[T any](items []T, category func(T) string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range items {
		c := CategoryOf(category(item))
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// DistinctLists lists the non-empty list names of tasks in first-seen order.
func DistinctLists(tasks []model.Task) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if t.ListName == "" {
			continue
		}
		if _, ok := seen[t.ListName]; ok {
			continue
		}
		seen[t.ListName] = struct{}{}
		out = append(out, t.ListName)
	}
	return out
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
