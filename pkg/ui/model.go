package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pinlist/pkg/config"
	"pinlist/pkg/keymaps"
	"pinlist/pkg/store"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	SearchMode     // Mode for searching tasks
	PinnedViewMode // Mode for the pinned snapshot list
	StatsViewMode  // Mode for the statistics panel
	HelpViewMode   // Mode for displaying help
)

// Form fields in tab order
const (
	topicField = iota
	descField
	categoryField
	dateField
	priorityField
	fieldCount
)

// Model represents the application state
type Model struct {
	table         table.Model
	store         *store.Store
	visible       []store.Task
	width, height int
	err           error
	notice        string

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	// View state
	statusFilter   StatusFilter
	searchTerm     string
	sortByPriority bool
	pinnedCursor   int

	// Form state
	mode        InputMode
	inputs      [fieldCount]textinput.Model
	searchInput textinput.Model
	activeInput int

	// Edit/delete state
	editingID int64
	deleting  *store.Task
}

// NewModel creates a new UI model over a loaded store
func NewModel(s *store.Store, cfg config.Config) Model {
	// Create an empty column - the title will be empty to avoid showing a header
	columns := []table.Column{
		{Title: "", Width: 70},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithWidth(74),
	)

	styles := cfg.Styles
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(false).
		Bold(false).
		Foreground(lipgloss.NoColor{})
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(ts)

	placeholders := [fieldCount]string{
		topicField:    "Topic (required)",
		descField:     "Description",
		categoryField: "Category",
		dateField:     "Date (YYYY-MM-DD, optional)",
		priorityField: "Priority (low, medium, high)",
	}
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].Width = 40
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Search tasks by topic"
	searchInput.Width = 40

	m := Model{
		table:        t,
		store:        s,
		config:       cfg,
		styles:       styles,
		keyMap:       keymaps.BuildKeyMap(cfg.KeyMap),
		mode:         NormalMode,
		inputs:       inputs,
		searchInput:  searchInput,
		statusFilter: AllTasksFilter,
	}
	m.resetInputs()

	// Load initial data
	m.loadTasks()

	return m
}

// Init initializes the model (required by Bubble Tea Model interface)
func (m Model) Init() tea.Cmd {
	return nil
}

// resetInputs clears all form inputs and focuses the topic
func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.inputs[priorityField].SetValue(string(store.Low))
	m.activeInput = topicField
	m.focusInput()
}

// selected returns the task under the cursor
func (m Model) selected() (store.Task, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return store.Task{}, false
	}
	return m.visible[idx], true
}
