package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pinlist/pkg/cli"
	"pinlist/pkg/config"
	"pinlist/pkg/database"
	"pinlist/pkg/store"
	"pinlist/pkg/ui"
	"pinlist/pkg/utils"
)

func main() {
	if code := run(os.Args[0], os.Args[1:], os.Stdin, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// run executes one invocation and returns the exit code. It returns instead of
// exiting so the deferred database and log file closes always run.
func run(name string, argv []string, in io.Reader, out io.Writer) int {
	// Parse command line flags
	args, err := cli.ParseArgs(name, argv)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	// Load configuration
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		fmt.Fprintf(out, "Error loading config: %v\n", err)
		return 1
	}

	// Override with command-line flag if provided
	if args.Database != "" {
		cfg.Database.DSN = args.Database
	}

	utils.InitLogger(args.Verbose, cfg.LogDir)
	defer utils.CloseLogger()

	fail := func(what string, err error) int {
		utils.Log("Exiting: %s: %v", what, err)
		fmt.Fprintf(out, "Error %s: %v\n", what, err)
		return 1
	}

	// Connect to database
	db, err := database.ConnectDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fail("connecting to database", err)
	}
	defer db.Close()

	// Ensure database schema
	if err := database.EnsureSchema(db); err != nil {
		return fail("creating schema", err)
	}

	kv, err := database.NewKVStore(db)
	if err != nil {
		return fail("opening storage", err)
	}

	s := store.New(kv,
		store.WithDefaultCategories(cfg.DefaultCategories),
		store.WithCascadeUnpin(cfg.CascadeUnpin),
	)
	s.Load()

	// Handle CLI commands
	handled, err := cli.HandleCommands(cli.Env{
		Store:   s,
		Storage: kv,
		In:      in,
		Out:     out,
	}, args)
	if err != nil {
		return fail("running command", err)
	}
	if handled {
		return 0
	}

	// Create and run the Bubble Tea program
	p := tea.NewProgram(ui.NewModel(s, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fail("running program", err)
	}
	return 0
}
