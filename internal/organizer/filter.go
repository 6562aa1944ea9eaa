package organizer

import (
	"strings"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

type Completion string

const (
	CompletionAll       Completion = "all"
	CompletionActive    Completion = "active"
	CompletionCompleted Completion = "completed"
)

func ParseCompletion(s string) (Completion, bool) {
	switch c := Completion(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompletionAll, true
	case CompletionAll, CompletionActive, CompletionCompleted:
		return c, true
	}
	return CompletionAll, false
}

// Filters is a conjunction of optional predicates. Zero values pass everything.
type Filters struct {
	List       string     `json:"list,omitempty"`
	Category   string     `json:"category,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Completion Completion `json:"completion,omitempty"`
}

// Match checks list, category, tags and completion, in that order.
func (f Filters) Match(t model.Task) bool {
	if f.List != "" && t.ListName != f.List {
		return false
	}
	if f.Category != "" && f.Category != AllCategory && CategoryOf(t.Category) != f.Category {
		return false
	}
	if !hasAllTags(t.Tags, f.Tags) {
		return false
	}
	switch f.Completion {
	case CompletionActive:
		return !t.Completed
	case CompletionCompleted:
		return t.Completed
	}
	return true
}

// ApplyFilters keeps tasks matching f, preserving their relative order.
func ApplyFilters(tasks []model.Task, f Filters) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func hasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, tag := range have {
		set[strings.TrimSpace(tag)] = struct{}{}
	}
	for _, tag := range want {
		if _, ok := set[tag]; !ok {
			return false
		}
	}
	return true
}

// SearchTasks matches query case-insensitively against title and description.
func SearchTasks(tasks []model.Task, query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" || containsFold(t.Title, q) || containsFold(t.Description, q) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
