package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pinlist/pkg/store"
)

// PurgeOptions carries the --purge flags
type PurgeOptions struct {
	ListOptions
	Yes bool
}

// Storage is the part of the durable store the storage command inspects
type Storage interface {
	Keys() ([]string, error)
	Delete(keys ...string) error
}

// HandlePurge deletes every task matching the filter after confirmation
func HandlePurge(s *store.Store, in io.Reader, out io.Writer, opts PurgeOptions) error {
	var ids []int64
	for t := range s.ListTasks(opts.Filter()) {
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No tasks match.")
		return nil
	}

	// Show confirmation unless --yes flag is used
	if !opts.Yes && !confirm(in, out, fmt.Sprintf("Are you sure you want to delete %d task(s)? (y/N): ", len(ids))) {
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	}

	if err := s.DeleteTasks(ids...); err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully deleted %d task(s)\n", len(ids))
	return nil
}

// HandleStorageCommand processes --storage info|reset
func HandleStorageCommand(st Storage, in io.Reader, out io.Writer, cmd string, yes bool) error {
	switch cmd {
	case "info":
		keys, err := st.Keys()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Stored keys: %s\n", strings.Join(keys, ", "))
		return nil

	case "reset":
		if !yes && !confirm(in, out, "Delete all stored tasks, pinned tasks and categories? (y/N): ") {
			fmt.Fprintln(out, "Operation cancelled.")
			return nil
		}
		if err := st.Delete(store.TasksKey, store.PinnedKey, store.CategoriesKey); err != nil {
			return err
		}
		fmt.Fprintln(out, "Storage reset.")
		return nil
	}
	return fmt.Errorf("unknown storage command: %s", cmd)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
