package organizer

import (
	"errors"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

var (
	ErrAlreadyLinked = errors.New("task and note are already linked")
	ErrLinkNotFound  = errors.New("link not found")
)

// Side names which end of a link an item id refers to.
type Side int

const (
	SideTask Side = iota
	SideNote
)

type Edge struct {
	TaskID string `json:"task_id"`
	NoteID string `json:"note_id"`
}

func EdgesOf(links []model.Link) []Edge {
	edges := make([]Edge, len(links))
	for i, l := range links {
		edges[i] = Edge{TaskID: l.TaskID, NoteID: l.NoteID}
	}
	return edges
}

// Link validates a new edge against the existing ones.
func Link(taskID, noteID string, existing []Edge) (Edge, error) {
	e := Edge{TaskID: taskID, NoteID: noteID}
	for _, x := range existing {
		if x == e {
			return Edge{}, ErrAlreadyLinked
		}
	}
	return e, nil
}

// Unlink checks that the edge exists.
func Unlink(taskID, noteID string, existing []Edge) error {
	e := Edge{TaskID: taskID, NoteID: noteID}
	for _, x := range existing {
		if x == e {
			return nil
		}
	}
	return ErrLinkNotFound
}

// LinkedIDs returns the ids on the opposite side of every edge touching itemID, without repeats.
func LinkedIDs(itemID string, side Side, edges []Edge) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, e := range edges {
		var other string
		switch {
		case side == SideTask && e.TaskID == itemID:
			other = e.NoteID
		case side == SideNote && e.NoteID == itemID:
			other = e.TaskID
		default:
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out
}

// LinkedItemsFor resolves the items linked to itemID. Edges whose opposite item cannot be
// looked up are skipped.
func LinkedItemsFor[T any](itemID string, side Side, edges []Edge, lookup func(id string) (T, bool)) []T {
	out := []T{}
	for _, id := range LinkedIDs(itemID, side, edges) {
		if item, ok := lookup(id); ok {
			out = append(out, item)
		}
	}
	return out
}

// Index builds a lookup function over items keyed by id.
func Index[T any](items []T, id func(T) string) func(string) (T, bool) {
	m := make(map[string]T, len(items))
	for _, item := range items {
		m[id(item)] = item
	}
	return func(key string) (T, bool) {
		item, ok := m[key]
		return item, ok
	}
}

func TaskID(t model.Task) string { return t.ID }

func NoteID(n model.Note) string { return n.ID }
