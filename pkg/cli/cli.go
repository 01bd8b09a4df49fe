package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"pinlist/pkg/commands"
	"pinlist/pkg/store"
)

// Args represents parsed command line arguments
type Args struct {
	ConfigPath string
	Database   string
	Verbose    bool

	// Task operations
	AddTask     string
	Description string
	Category    string
	DateFlag    string
	Priority    string
	ToggleID    string
	PinID       string
	UnpinID     string
	DeleteIDs   string
	AddCategory string

	// Listing
	List     bool
	Pinned   bool
	Stats    bool
	Search   string
	SortBy   string
	DoneFlag bool
	Undone   bool

	// Database operations
	Purge      bool
	StorageCmd string
	YesFlag    bool

	// Import/Export operations
	ImportFile string
	ExportFile string
	TypeFlag   string
}

// ParseArgs parses command line arguments and returns Args struct.
// Parse errors are already reported on stderr with the usage.
func ParseArgs(name string, arguments []string) (*Args, error) {
	args := &Args{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	// Define command line flags
	fs.StringVar(&args.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&args.Database, "database", "", "Database DSN (file path for sqlite3)")
	fs.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")

	// Task operations
	fs.StringVar(&args.AddTask, "add", "", "Add a new task (+category and !priority tags allowed)")
	fs.StringVar(&args.Description, "desc", "", "Description for --add")
	fs.StringVar(&args.Category, "category", "", "Category for --add, or filter for --list/--purge")
	fs.StringVar(&args.DateFlag, "date", "", "Date for task (YYYY-MM-DD format), or filter")
	fs.StringVar(&args.Priority, "priority", "", "Priority for --add (low, medium, high)")
	fs.StringVar(&args.ToggleID, "done-id", "", "Toggle completion of the task with this id")
	fs.StringVar(&args.PinID, "pin", "", "Pin or unpin the task with this id")
	fs.StringVar(&args.UnpinID, "unpin", "", "Unpin the task with this id")
	fs.StringVar(&args.DeleteIDs, "delete", "", "Delete tasks by comma separated ids")
	fs.StringVar(&args.AddCategory, "add-category", "", "Add a category")

	// Listing
	fs.BoolVar(&args.List, "list", false, "List tasks")
	fs.BoolVar(&args.Pinned, "pinned", false, "List pinned tasks")
	fs.BoolVar(&args.Stats, "stats", false, "Show task statistics")
	fs.StringVar(&args.Search, "search", "", "Filter by topic substring")
	fs.StringVar(&args.SortBy, "sort", "", "Sort listing (priority)")
	fs.BoolVar(&args.DoneFlag, "done", false, "Filter done tasks")
	fs.BoolVar(&args.Undone, "undone", false, "Filter undone tasks")

	// Database operations
	fs.BoolVar(&args.Purge, "purge", false, "Delete all tasks matching the filters")
	fs.StringVar(&args.StorageCmd, "storage", "", "Storage command (info, reset)")
	fs.BoolVar(&args.YesFlag, "yes", false, "Skip confirmation")

	// Import/Export operations
	fs.StringVar(&args.ImportFile, "import", "", "Import tasks from file")
	fs.StringVar(&args.ExportFile, "export", "", "Export tasks to file")
	fs.StringVar(&args.TypeFlag, "type", commands.ExportJSON, "Export file type (json, yaml, txt, pdf)")

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}
	if args.SortBy != "" && args.SortBy != "priority" {
		err := fmt.Errorf("unknown sort %q", args.SortBy)
		fmt.Fprintln(fs.Output(), err)
		return nil, err
	}
	return args, nil
}

// Env is what command handlers need besides the parsed flags
type Env struct {
	Store   *store.Store
	Storage commands.Storage
	In      io.Reader
	Out     io.Writer
}

func (a *Args) listOptions() commands.ListOptions {
	return commands.ListOptions{
		Done:         a.DoneFlag,
		Undone:       a.Undone,
		Category:     a.Category,
		Search:       a.Search,
		Date:         a.DateFlag,
		SortPriority: a.SortBy == "priority",
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid task id %q", store.ErrValidation, s)
	}
	return id, nil
}

// HandleCommands processes CLI commands and reports whether one was handled
func HandleCommands(env Env, args *Args) (bool, error) {
	s, out := env.Store, env.Out

	switch {
	case args.AddTask != "":
		return true, commands.HandleAddTask(s, out, commands.AddOptions{
			Topic:       args.AddTask,
			Description: args.Description,
			Category:    args.Category,
			Date:        args.DateFlag,
			Priority:    args.Priority,
		})

	case args.ToggleID != "":
		id, err := parseID(args.ToggleID)
		if err != nil {
			return true, err
		}
		return true, commands.HandleToggleTask(s, out, id)

	case args.PinID != "":
		id, err := parseID(args.PinID)
		if err != nil {
			return true, err
		}
		return true, commands.HandlePinTask(s, out, id)

	case args.UnpinID != "":
		id, err := parseID(args.UnpinID)
		if err != nil {
			return true, err
		}
		return true, commands.HandleUnpinTask(s, out, id)

	case args.DeleteIDs != "":
		ids, err := commands.ParseIDs(args.DeleteIDs)
		if err != nil {
			return true, err
		}
		return true, commands.HandleDeleteTasks(s, out, ids)

	case args.AddCategory != "":
		return true, commands.HandleAddCategory(s, out, args.AddCategory)

	case args.Purge:
		return true, commands.HandlePurge(s, env.In, out, commands.PurgeOptions{
			ListOptions: args.listOptions(),
			Yes:         args.YesFlag,
		})

	case args.StorageCmd != "":
		return true, commands.HandleStorageCommand(env.Storage, env.In, out, args.StorageCmd, args.YesFlag)

	case args.ImportFile != "":
		return true, commands.HandleImportCommand(s, out, args.ImportFile)

	case args.ExportFile != "":
		return true, commands.HandleExportCommand(s, out, args.ExportFile, args.TypeFlag)

	case args.List:
		return true, commands.HandleList(s, out, args.listOptions())

	case args.Pinned:
		return true, commands.HandlePinned(s, out)

	case args.Stats:
		return true, commands.HandleStats(s, out)
	}

	// No CLI command was handled
	return false, nil
}
