package organizer

import (
	"time"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

func due(year int, month time.Month, day int) *model.Date {
	d := model.NewDate(year, month, day)
	return &d
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
