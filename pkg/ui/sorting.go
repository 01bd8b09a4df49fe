package ui

import (
	"slices"

	"pinlist/pkg/store"
)

// StatusFilter narrows the list by completion state
type StatusFilter int

const (
	AllTasksFilter StatusFilter = iota
	OpenTasksFilter
	DoneTasksFilter
)

func (f StatusFilter) String() string {
	switch f {
	case OpenTasksFilter:
		return "open only"
	case DoneTasksFilter:
		return "completed only"
	}
	return "no filter"
}

// next cycles all -> open -> completed -> all
func (f StatusFilter) next() StatusFilter {
	return (f + 1) % 3
}

// filter builds the store query for the current view state
func (m *Model) filter() store.Filter {
	f := store.Filter{Topic: m.searchTerm}
	switch m.statusFilter {
	case OpenTasksFilter:
		done := false
		f.Completed = &done
	case DoneTasksFilter:
		done := true
		f.Completed = &done
	}
	return f
}

// visibleTasks runs the query and applies the optional priority ordering
func (m *Model) visibleTasks() []store.Task {
	seq := m.store.ListTasks(m.filter())
	if m.sortByPriority {
		return store.SortByPriority(seq)
	}
	return slices.Collect(seq)
}
