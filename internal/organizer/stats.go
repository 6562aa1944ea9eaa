package organizer

import (
	"math"
	"sort"
	"time"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

type OverviewStats struct {
	TotalTasks     int `json:"total_tasks"`
	ActiveTasks    int `json:"active_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	DueToday       int `json:"due_today"`
	TotalNotes     int `json:"total_notes"`
	CompletionRate int `json:"completion_rate"`
}

func Overview(tasks []model.Task, notes []model.Note, today time.Time) OverviewStats {
	s := OverviewStats{
		TotalTasks: len(tasks),
		TotalNotes: len(notes),
		DueToday:   len(DueToday(tasks, today)),
	}
	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
		} else {
			s.ActiveTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}
	return s
}

type CategoryCount struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Active   int    `json:"active"`
}

// CategoryStats counts tasks per effective category, in first-seen category order.
func CategoryStats(tasks []model.Task) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, t := range tasks {
		c := CategoryOf(t.Category)
		i, ok := index[c]
		if !ok {
			i = len(out)
			index[c] = i
			out = append(out, CategoryCount{Category: c})
		}
		out[i].Total++
		if !t.Completed {
			out[i].Active++
		}
	}
	return out
}

// TopCategories returns up to limit categories that still have active tasks, busiest first.
func TopCategories(tasks []model.Task, limit int) []CategoryCount {
	out := []CategoryCount{}
	for _, c := range CategoryStats(tasks) {
		if c.Active > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active > out[j].Active
		}
		return lessFold(out[i].Category, out[j].Category)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecentNotes returns up to limit notes, most recently updated first.
func RecentNotes(notes []model.Note, limit int) []model.Note {
	out := make([]model.Note, len(notes))
	copy(out, notes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
