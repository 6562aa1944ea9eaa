package organizer

import (
	"sort"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

type Group[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
	Count int    `json:"count"`
}

// GroupBy partitions items by key, ordering the groups with ResolveOrder against saved.
// Blank keys fall into DefaultCategory. Only keys that occur produce a group.
func GroupBy[T any](items []T, key func(T) string, saved []string) []Group[T] {
	buckets := make(map[string][]T)
	var keys []string
	for _, item := range items {
		k := CategoryOf(key(item))
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], item)
	}

	order := ResolveOrder(keys, saved)
	groups := make([]Group[T], 0, len(keys))
	for _, k := range order {
		members, ok := buckets[k]
		if !ok {
			continue
		}
		groups = append(groups, Group[T]{Key: k, Items: members, Count: len(members)})
	}
	return groups
}

func TaskList(t model.Task) string { return t.ListName }

// TagsForCategory is the sorted union of tags on tasks in category, or on every task for the sentinel.
func TagsForCategory(tasks []model.Task, category string) []string {
	all := category == "" || category == AllCategory
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range tasks {
		if !all && CategoryOf(t.Category) != category {
			continue
		}
		for _, tag := range NormalizeTags(t.Tags) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i], out[j]) })
	return out
}
