package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"pinlist/pkg/store"
)

// ParseIDs reads a comma separated list of task ids
func ParseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid task id %q", store.ErrValidation, part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no task ids given", store.ErrValidation)
	}
	return ids, nil
}

// HandleToggleTask processes --done-id
func HandleToggleTask(s *store.Store, out io.Writer, id int64) error {
	task, err := s.ToggleComplete(id)
	if err != nil {
		return err
	}

	state := "open"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(out, "Task %d is now %s\n", task.ID, state)
	return nil
}

// HandlePinTask processes --pin, which pins or unpins a task
func HandlePinTask(s *store.Store, out io.Writer, id int64) error {
	task, err := s.Get(id)
	if err != nil {
		return err
	}

	pinned, err := s.PinTask(task)
	if err != nil {
		return err
	}

	if pinned {
		fmt.Fprintf(out, "Pinned task %d\n", id)
	} else {
		fmt.Fprintf(out, "Unpinned task %d\n", id)
	}
	return nil
}

// HandleUnpinTask processes --unpin
func HandleUnpinTask(s *store.Store, out io.Writer, id int64) error {
	if err := s.UnpinTask(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Unpinned task %d\n", id)
	return nil
}

// HandleDeleteTasks processes --delete
func HandleDeleteTasks(s *store.Store, out io.Writer, ids []int64) error {
	before := len(s.Tasks())
	if err := s.DeleteTasks(ids...); err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully deleted %d task(s)\n", before-len(s.Tasks()))
	return nil
}

// HandleAddCategory processes --add-category
func HandleAddCategory(s *store.Store, out io.Writer, name string) error {
	if err := s.AddCategory(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Categories: %s\n", strings.Join(s.Categories(), ", "))
	return nil
}
