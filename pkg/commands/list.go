package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"pinlist/pkg/store"
)

// ListOptions carries the --list flags
type ListOptions struct {
	Done         bool
	Undone       bool
	Category     string
	Search       string
	Date         string
	SortPriority bool
}

// Filter converts the flags into a store filter
func (o ListOptions) Filter() store.Filter {
	var f store.Filter
	if o.Done {
		done := true
		f.Completed = &done
	} else if o.Undone {
		done := false
		f.Completed = &done
	}
	if o.Category != "" {
		category := o.Category
		f.Category = &category
	}
	f.Topic = o.Search
	f.Date = o.Date
	return f
}

// FormatTask renders one task as a single checklist line
func FormatTask(t store.Task) string {
	line := checklistLine(t)
	if t.HasDate() {
		line += fmt.Sprintf(" (%s)", t.Date)
	}
	return line + fmt.Sprintf(" #%d", t.ID)
}

// checklistLine renders status, topic, +category and !priority, the part
// the import command reads back
func checklistLine(t store.Task) string {
	status := " "
	if t.Completed {
		status = "x"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "- [%s] %s", status, t.Topic)
	if t.Category != "" {
		fmt.Fprintf(&sb, " +%s", t.Category)
	}
	if t.Priority != store.Low {
		fmt.Fprintf(&sb, " !%s", strings.ToLower(string(t.Priority)))
	}
	return sb.String()
}

// HandleList processes --list
func HandleList(s *store.Store, out io.Writer, opts ListOptions) error {
	seq := s.ListTasks(opts.Filter())

	var tasks []store.Task
	if opts.SortPriority {
		tasks = store.SortByPriority(seq)
	} else {
		tasks = slices.Collect(seq)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return nil
	}
	for _, t := range tasks {
		fmt.Fprintln(out, FormatTask(t))
	}
	return nil
}

// HandlePinned processes --pinned
func HandlePinned(s *store.Store, out io.Writer) error {
	pinned := s.Pinned()
	if len(pinned) == 0 {
		fmt.Fprintln(out, "No pinned tasks")
		return nil
	}
	for _, t := range pinned {
		fmt.Fprintln(out, FormatTask(t))
	}
	return nil
}

// HandleStats processes --stats
func HandleStats(s *store.Store, out io.Writer) error {
	stats := s.Stats()
	fmt.Fprintf(out, "Completed Tasks: %d\n", stats.Completed)
	fmt.Fprintf(out, "Uncompleted Tasks: %d\n", stats.Uncompleted)
	if len(stats.Categories) > 0 {
		fmt.Fprintln(out, "Tasks by Category:")
		for _, c := range stats.Categories {
			fmt.Fprintf(out, "  %s: %d\n", c.Category, c.Count)
		}
	}
	return nil
}
