package store

import (
	"iter"
	"slices"
	"sort"
	"strings"
)

// Filter selects tasks. Unset fields match everything; set fields must all match.
type Filter struct {
	Completed *bool
	Category  *string
	// Topic is matched as a case-insensitive substring
	Topic string
	// Date is matched exactly against the stored YYYY-MM-DD value
	Date string
}

// Match reports whether t satisfies every predicate of the filter
func (f Filter) Match(t Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Topic != "" && !strings.Contains(strings.ToLower(t.Topic), strings.ToLower(f.Topic)) {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	return true
}

// ListTasks returns the tasks matching filter in stored order. The sequence is
// evaluated lazily over a snapshot taken now, so it can be ranged over repeatedly
// and is not affected by later mutations.
func (s *Store) ListTasks(filter Filter) iter.Seq[Task] {
	snapshot := slices.Clone(s.tasks)
	return func(yield func(Task) bool) {
		for _, t := range snapshot {
			if !filter.Match(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// SortByPriority returns tasks ordered High, Medium, Low. Equal priorities keep
// their relative order.
func SortByPriority(tasks iter.Seq[Task]) []Task {
	sorted := slices.Collect(tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.rank() > sorted[j].Priority.rank()
	})
	return sorted
}

// Uncategorized is the statistics bucket for tasks without a category
const Uncategorized = "Uncategorized"

// CategoryCount is the number of tasks carrying one category
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// Stats summarizes the task list
type Stats struct {
	Total       int             `json:"total" yaml:"total"`
	Completed   int             `json:"completed" yaml:"completed"`
	Uncompleted int             `json:"uncompleted" yaml:"uncompleted"`
	Categories  []CategoryCount `json:"categories" yaml:"categories"`
}

// Stats counts completed and open tasks and tasks per category, categories in
// order of first appearance
func (s *Store) Stats() Stats {
	stats := Stats{Total: len(s.tasks), Categories: []CategoryCount{}}
	index := map[string]int{}

	for _, t := range s.tasks {
		if t.Completed {
			stats.Completed++
		} else {
			stats.Uncompleted++
		}

		category := t.Category
		if category == "" {
			category = Uncategorized
		}
		i, ok := index[category]
		if !ok {
			i = len(stats.Categories)
			index[category] = i
			stats.Categories = append(stats.Categories, CategoryCount{Category: category})
		}
		stats.Categories[i].Count++
	}
	return stats
}
