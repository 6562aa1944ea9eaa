package organizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

func TestGroupBy_Categories(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Category: "Work"},
		{ID: "2", Category: ""},
		{ID: "3", Category: "Home"},
		{ID: "4", Category: "Work"},
	}

	groups := GroupBy(tasks, TaskCategory, []string{"Work"})

	type summary struct {
		Key   string
		IDs   []string
		Count int
	}
	var got []summary
	for _, g := range groups {
		got = append(got, summary{Key: g.Key, IDs: ids(g.Items), Count: g.Count})
	}
	want := []summary{
		{Key: "Work", IDs: []string{"1", "4"}, Count: 2},
		{Key: "General", IDs: []string{"2"}, Count: 1},
		{Key: "Home", IDs: []string{"3"}, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupBy mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupBy_Partition(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", ListName: "Shopping"},
		{ID: "2"},
		{ID: "3", ListName: "Errands"},
		{ID: "4", ListName: "Shopping"},
		{ID: "5", ListName: "all"},
	}

	groups := GroupBy(tasks, TaskList, nil)

	seen := map[string]int{}
	for _, g := range groups {
		require.NotEmpty(t, g.Items, "group %q is empty", g.Key)
		assert.Equal(t, len(g.Items), g.Count)
		for _, item := range g.Items {
			seen[item.ID]++
		}
	}
	assert.Len(t, seen, len(tasks))
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %s appears %d times", id, n)
	}
}

func TestGroupBy_Empty(t *testing.T) {
	assert.Empty(t, GroupBy([]model.Note{}, NoteCategory, []string{"Work"}))
}

func TestGroupBy_Notes(t *testing.T) {
	notes := []model.Note{
		{ID: "n1", Category: "Recipes"},
		{ID: "n2", Category: "journal"},
		{ID: "n3"},
	}

	groups := GroupBy(notes, NoteCategory, nil)

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"General", "journal", "Recipes"}, keys)
}

func TestTagsForCategory(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Category: "Work", Tags: []string{"urgent", "Client"}},
		{ID: "2", Category: "Work", Tags: []string{"urgent", "billing", " "}},
		{ID: "3", Category: "Home", Tags: []string{"garden", "Urgent"}},
		{ID: "4", Tags: []string{"misc"}},
	}

	tests := []struct {
		category string
		want     []string
	}{
		{category: "Work", want: []string{"billing", "Client", "urgent"}},
		{category: "Home", want: []string{"garden", "Urgent"}},
		{category: "General", want: []string{"misc"}},
		{category: "Nowhere", want: []string{}},
		{category: AllCategory, want: []string{"billing", "Client", "garden", "misc", "Urgent", "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, TagsForCategory(tasks, tt.category))
		})
	}
}

func TestTagsForCategory_AllIsUnionOfCategories(t *testing.T) {
	tasks := []model.Task{
		{Category: "A", Tags: []string{"x", "y"}},
		{Category: "B", Tags: []string{"y", "z"}},
		{Tags: []string{"w", "x"}},
	}

	union := map[string]struct{}{}
	for _, c := range DistinctCategories(tasks, TaskCategory) {
		for _, tag := range TagsForCategory(tasks, c) {
			union[tag] = struct{}{}
		}
	}
	all := TagsForCategory(tasks, AllCategory)

	assert.Len(t, all, len(union))
	for _, tag := range all {
		assert.Contains(t, union, tag)
	}
}

func TestNormalize(t *testing.T) {
	in := []model.Task{{
		ID:       "1",
		Tags:     []string{"a", " a ", "", "b"},
		Subtasks: []model.Subtask{{ID: "s1", Title: "step"}},
	}}

	out := Normalize(in)

	assert.Equal(t, DefaultCategory, out[0].Category)
	assert.Equal(t, []string{"a", "b"}, out[0].Tags)
	assert.Equal(t, model.PriorityMedium, out[0].Priority)

	out[0].Subtasks[0].Title = "changed"
	assert.Equal(t, "", in[0].Category, "input must not be rewritten")
	assert.Equal(t, "step", in[0].Subtasks[0].Title)
}

func TestDistinctLists(t *testing.T) {
	tasks := []model.Task{{ListName: "B"}, {}, {ListName: "A"}, {ListName: "B"}}
	assert.Equal(t, []string{"B", "A"}, DistinctLists(tasks))
}
