package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"pinlist/pkg/config"
	"pinlist/pkg/store"
	"pinlist/pkg/utils"
)

// loadTasks retrieves and displays tasks based on current filters
func (m *Model) loadTasks() {
	m.visible = m.visibleTasks()

	rows := make([]table.Row, 0, len(m.visible))
	for _, task := range m.visible {
		rows = append(rows, table.Row{renderTask(task, m.store.IsPinned(task.ID), m.styles)})
	}
	m.table.SetRows(rows)

	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

// selectTask moves the cursor onto the task with id, if it is visible
func (m *Model) selectTask(id int64) {
	for i, t := range m.visible {
		if t.ID == id {
			m.table.SetCursor(i)
			return
		}
	}
}

// renderTask renders one row: status, topic, +category, !priority, date and pin marker
func renderTask(t store.Task, pinned bool, styles config.Styles) string {
	status := "[ ]"
	if t.Completed {
		status = "[x]"
	}

	parts := []string{status, t.Topic}
	if t.Category != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.CategoryColor)).
			Render("+"+t.Category))
	}
	parts = append(parts, lipgloss.NewStyle().
		Foreground(lipgloss.Color(priorityColor(t.Priority, styles))).
		Render("!"+strings.ToLower(string(t.Priority))))
	if t.HasDate() {
		parts = append(parts, t.Date)
	}
	if pinned {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.PinnedColor)).
			Render("(pinned)"))
	}
	return strings.Join(parts, " ")
}

func priorityColor(p store.Priority, styles config.Styles) string {
	switch p {
	case store.High:
		return styles.HighColor
	case store.Medium:
		return styles.MediumColor
	}
	return styles.LowColor
}

// focusInput focuses the active form input and blurs the rest
func (m *Model) focusInput() {
	for i := range m.inputs {
		if i == m.activeInput {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	m.activeInput = (m.activeInput + 1) % fieldCount
	m.focusInput()
}

// focusPreviousInput cycles backwards through the form inputs
func (m *Model) focusPreviousInput() {
	m.activeInput = (m.activeInput + fieldCount - 1) % fieldCount
	m.focusInput()
}

// startEdit fills the form from the selected task
func (m *Model) startEdit(t store.Task) {
	m.mode = EditMode
	m.editingID = t.ID
	m.resetInputs()

	m.inputs[topicField].SetValue(t.Topic)
	m.inputs[descField].SetValue(t.Description)
	m.inputs[categoryField].SetValue(t.Category)
	if t.HasDate() {
		m.inputs[dateField].SetValue(t.Date)
	}
	m.inputs[priorityField].SetValue(string(t.Priority))
}

// formFields reads the form into task fields
func (m *Model) formFields() (store.TaskFields, error) {
	priority, err := store.ParsePriority(m.inputs[priorityField].Value())
	if err != nil {
		return store.TaskFields{}, err
	}
	return store.TaskFields{
		Topic:       m.inputs[topicField].Value(),
		Description: strings.TrimSpace(m.inputs[descField].Value()),
		Category:    m.inputs[categoryField].Value(),
		Date:        m.inputs[dateField].Value(),
		Priority:    priority,
	}, nil
}

// submitForm processes the form data based on the current mode.
// On a validation error the form stays open so the input can be fixed.
func (m *Model) submitForm() {
	fields, err := m.formFields()
	if err != nil {
		m.err = err
		return
	}

	var task store.Task
	switch m.mode {
	case AddMode:
		task, err = m.store.CreateTask(fields)
	case EditMode:
		task, err = m.store.UpdateTask(m.editingID, fields)
	}
	if err != nil {
		utils.Log("Error saving task: %v", err)
		m.err = err
		return
	}

	if m.mode == AddMode {
		m.notice = fmt.Sprintf("Added %q", task.Topic)
	} else {
		m.notice = fmt.Sprintf("Updated %q", task.Topic)
	}

	// Reset state
	m.err = nil
	m.mode = NormalMode
	m.resetInputs()
	m.editingID = 0
	m.loadTasks()
	m.selectTask(task.ID)
}
