package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pinlist/pkg/store"
	"pinlist/pkg/utils"
)

var errSortedReorder = errors.New("turn off priority sort to reorder tasks")

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			return m.updateNormal(msg)

		case AddMode, EditMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.err = nil
				m.resetInputs()
				m.editingID = 0
				return m, nil

			case "tab", "down":
				m.focusNextInput()
				return m, nil

			case "shift+tab", "up":
				m.focusPreviousInput()
				return m, nil

			case "enter":
				if m.activeInput == priorityField { // Submit on enter from the last field
					m.submitForm()
				} else {
					m.focusNextInput()
				}
				return m, nil
			}

			m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
			cmds = append(cmds, cmd)

		case SearchMode:
			switch msg.String() {
			case "esc":
				// Exit search mode and clear the filter
				m.mode = NormalMode
				m.searchTerm = ""
				m.loadTasks()
				return m, nil

			case "enter":
				m.searchTerm = m.searchInput.Value()
				utils.Log("Searching for: %s", m.searchTerm)
				m.mode = NormalMode
				m.searchInput.Blur()
				m.loadTasks()
				return m, nil
			}

			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.deleting != nil {
					utils.Log("Deleting task ID: %d", m.deleting.ID)
					if err := m.store.DeleteTasks(m.deleting.ID); err != nil {
						utils.Log("Error deleting task: %v", err)
						m.err = err
					} else {
						m.notice = fmt.Sprintf("Deleted %q", m.deleting.Topic)
						m.loadTasks()
					}
				}
				m.mode = NormalMode
				m.deleting = nil

			case "n", "N", "esc":
				m.mode = NormalMode
				m.deleting = nil
			}

		case PinnedViewMode:
			return m.updatePinned(msg)

		case StatsViewMode:
			if msg.String() == "esc" || key.Matches(msg, m.keyMap.ShowStats) {
				m.mode = NormalMode
			} else if key.Matches(msg, m.keyMap.QuitApp) {
				return m, tea.Quit
			}

		case HelpViewMode:
			if msg.String() == "esc" || key.Matches(msg, m.keyMap.ShowHelp) {
				m.mode = NormalMode
			} else if key.Matches(msg, m.keyMap.QuitApp) {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(msg.Height - 6)
	}

	return m, tea.Batch(cmds...)
}

// updateNormal handles key presses on the task list
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.notice = ""
	task, ok := m.selected()

	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.ShowStats):
		m.mode = StatsViewMode

	case key.Matches(msg, m.keyMap.ShowPinned):
		m.mode = PinnedViewMode
		m.pinnedCursor = 0

	case key.Matches(msg, m.keyMap.AddTask):
		m.mode = AddMode
		m.resetInputs()

	case key.Matches(msg, m.keyMap.EditTask):
		if ok {
			m.startEdit(task)
		}

	case key.Matches(msg, m.keyMap.DeleteTask):
		if ok {
			m.mode = DeleteConfirmMode
			m.deleting = &task
		}

	case key.Matches(msg, m.keyMap.ToggleStatus):
		if ok {
			if _, err := m.store.ToggleComplete(task.ID); err != nil {
				m.err = err
				break
			}
			m.loadTasks()
			m.selectTask(task.ID)
		}

	case key.Matches(msg, m.keyMap.PinTask):
		if ok {
			pinned, err := m.store.PinTask(task)
			if err != nil {
				m.err = err
				break
			}
			if pinned {
				m.notice = fmt.Sprintf("Pinned %q", task.Topic)
			} else {
				m.notice = fmt.Sprintf("Unpinned %q", task.Topic)
			}
			m.loadTasks()
		}

	case key.Matches(msg, m.keyMap.MoveUp), key.Matches(msg, m.keyMap.MoveDown):
		if !ok {
			break
		}
		if m.sortByPriority {
			m.err = errSortedReorder
			break
		}
		delta := 1
		if key.Matches(msg, m.keyMap.MoveUp) {
			delta = -1
		}
		if err := m.store.Move(task.ID, delta); err != nil {
			m.err = err
			break
		}
		m.loadTasks()
		m.selectTask(task.ID)

	case key.Matches(msg, m.keyMap.SortByPriority):
		m.sortByPriority = !m.sortByPriority
		m.loadTasks()

	case key.Matches(msg, m.keyMap.CycleFilter):
		m.statusFilter = m.statusFilter.next()
		m.loadTasks()

	case key.Matches(msg, m.keyMap.SearchTasks):
		m.mode = SearchMode
		m.searchInput.SetValue(m.searchTerm)
		m.searchInput.Focus()

	default:
		// Cursor movement is left to the table
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updatePinned handles key presses on the pinned list
func (m Model) updatePinned(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pinned := m.store.Pinned()

	switch {
	case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowPinned):
		m.mode = NormalMode
		m.loadTasks()

	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit

	case msg.String() == "up", msg.String() == "k":
		if m.pinnedCursor > 0 {
			m.pinnedCursor--
		}

	case msg.String() == "down", msg.String() == "j":
		if m.pinnedCursor < len(pinned)-1 {
			m.pinnedCursor++
		}

	case key.Matches(msg, m.keyMap.PinTask), msg.String() == "delete":
		if m.pinnedCursor >= len(pinned) {
			break
		}
		if err := m.store.UnpinTask(pinned[m.pinnedCursor].ID); err != nil {
			m.err = err
			break
		}
		if m.pinnedCursor >= len(pinned)-1 && m.pinnedCursor > 0 {
			m.pinnedCursor--
		}
	}

	return m, nil
}

// pinnedSelection returns the pinned snapshot under the pinned cursor
func (m Model) pinnedSelection() (store.Task, bool) {
	pinned := m.store.Pinned()
	if m.pinnedCursor < 0 || m.pinnedCursor >= len(pinned) {
		return store.Task{}, false
	}
	return pinned[m.pinnedCursor], true
}
