package organizer

import (
	"sort"
	"time"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

const (
	CalendarDays       = 14
	UpcomingWindowDays = 7
	UpcomingLimit      = 5
)

type Day struct {
	Date  model.Date   `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// BuildWindow buckets tasks by due day over numDays calendar days starting at start.
// Every day is present, including empty ones. Tasks keep their input order inside a bucket;
// tasks without a due date, or due outside the window, are not placed anywhere.
func BuildWindow(tasks []model.Task, start time.Time, numDays int) []Day {
	if numDays < 0 {
		numDays = 0
	}
	first := model.DateOf(start)
	days := make([]Day, numDays)
	index := make(map[string]int, numDays)
	for i := range days {
		d := model.Date{Time: first.AddDate(0, 0, i)}
		days[i] = Day{Date: d, Tasks: []model.Task{}}
		index[d.String()] = i
	}

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if i, ok := index[model.DateOf(t.DueDate.Time).String()]; ok {
			days[i].Tasks = append(days[i].Tasks, t)
		}
	}
	return days
}

func DueToday(tasks []model.Task, today time.Time) []model.Task {
	return BuildWindow(tasks, today, 1)[0].Tasks
}

// UpcomingDeadlines returns incomplete tasks due from referenceDate onwards, earliest first.
// The window ends at whichever comes first: windowDays after referenceDate or the Sunday closing
// referenceDate's Monday-based week. On a Sunday only that day qualifies, so the result can span
// fewer than windowDays days. Overdue tasks are left out. A limit <= 0 disables truncation.
func UpcomingDeadlines(tasks []model.Task, referenceDate time.Time, windowDays, limit int) []model.Task {
	from := model.DateOf(referenceDate).Time
	until := from.AddDate(0, 0, windowDays)
	if weekEnd := weekStart(from).AddDate(0, 0, 7); weekEnd.Before(until) {
		until = weekEnd
	}

	out := []model.Task{}
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		due := model.DateOf(t.DueDate.Time).Time
		if due.Before(from) || !due.Before(until) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return model.DateOf(out[i].DueDate.Time).Before(model.DateOf(out[j].DueDate.Time).Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
