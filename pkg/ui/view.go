package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		sb.WriteString(m.titleBar(" Pinlist ", m.styles.AccentColor))
		sb.WriteString("\n\n")

		if len(m.visible) == 0 {
			sb.WriteString(m.textStyle().Render("No tasks found"))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
			if task, ok := m.selected(); ok && task.Description != "" {
				sb.WriteString(m.textStyle().Italic(true).Render(task.Description))
				sb.WriteString("\n")
			}
		}

		// Display filter and sort state
		viewInfo := fmt.Sprintf("Showing %d task(s) (%s)", len(m.visible), m.statusFilter)
		if m.searchTerm != "" {
			viewInfo += fmt.Sprintf(" | search: %s", m.searchTerm)
		}
		if m.sortByPriority {
			viewInfo += " | sorted by priority"
		}
		sb.WriteString(m.textStyle().Render(viewInfo))
		sb.WriteString("\n")

	case AddMode:
		sb.WriteString(m.titleBar(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.deleting != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Topic: %s\n", m.deleting.Topic))
			sb.WriteString(fmt.Sprintf("Description: %s\n", m.deleting.Description))
			if m.store.IsPinned(m.deleting.ID) && !m.config.CascadeUnpin {
				sb.WriteString("Its pinned copy will be kept.\n")
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case SearchMode:
		sb.WriteString(m.titleBar(" Search Tasks ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Enter search term to find tasks:")
		sb.WriteString("\n\n")
		sb.WriteString(m.searchInput.View())

	case PinnedViewMode:
		sb.WriteString(m.titleBar(" Pinned Tasks ", m.styles.PinnedColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderPinned())

	case StatsViewMode:
		sb.WriteString(m.titleBar(" Statistics ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderStats())

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")

		keyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.AccentColor)).
			Bold(true)
		for _, line := range m.keyMap.HelpLines() {
			k, desc, _ := strings.Cut(line, ": ")
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.textStyle().Render(desc), keyStyle.Render(k)))
		}
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(m.textStyle().Render(m.notice))
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(title, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(title)
}

func (m Model) textStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))
}

// helpBar renders a status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor)).
		Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), m.textStyle().Render(desc)))
	}

	switch m.mode {
	case NormalMode:
		km := m.keyMap
		addAction(km.AddTask.Help().Key, "add")
		addAction(km.EditTask.Help().Key, "edit")
		addAction(km.DeleteTask.Help().Key, "del")
		addAction(km.ToggleStatus.Help().Key, "done")
		addAction(km.PinTask.Help().Key, "pin")
		addAction(km.ShowPinned.Help().Key, "pinned")
		addAction(km.SearchTasks.Help().Key, "search")
		addAction(km.ShowHelp.Help().Key, "help")
		addAction(km.QuitApp.Help().Key, "quit")

	case AddMode, EditMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case SearchMode:
		addAction("enter", "search")
		addAction("esc", "clear")

	case PinnedViewMode:
		addAction("↑↓", "nav")
		addAction(m.keyMap.PinTask.Help().Key, "unpin")
		addAction("esc", "back")

	case StatsViewMode, HelpViewMode:
		addAction("esc", "back")
		addAction(m.keyMap.QuitApp.Help().Key, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	labels := [fieldCount]string{
		topicField:    "Topic:",
		descField:     "Description:",
		categoryField: "Category:",
		dateField:     "Date (YYYY-MM-DD):",
		priorityField: "Priority:",
	}

	var sb strings.Builder
	for i, input := range m.inputs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(labels[i])
		sb.WriteString("\n")
		sb.WriteString(input.View())
	}

	if categories := m.store.Categories(); len(categories) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.CategoryColor)).
			Render("Categories: " + strings.Join(categories, ", ")))
	}
	return sb.String()
}

// renderPinned lists the pinned snapshots with the cursor marked
func (m Model) renderPinned() string {
	pinned := m.store.Pinned()
	if len(pinned) == 0 {
		return m.textStyle().Render("No pinned tasks") + "\n"
	}

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor)).
		Bold(true)

	var sb strings.Builder
	for i, task := range pinned {
		line := renderTask(task, false, m.styles)
		if i == m.pinnedCursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if task, ok := m.pinnedSelection(); ok && task.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(m.textStyle().Italic(true).Render(task.Description))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderStats shows completion counts and tasks per category
func (m Model) renderStats() string {
	stats := m.store.Stats()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total Tasks: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Completed Tasks: %d\n", stats.Completed))
	sb.WriteString(fmt.Sprintf("Uncompleted Tasks: %d\n", stats.Uncompleted))

	if len(stats.Categories) > 0 {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Tasks by Category"))
		sb.WriteString("\n")
		catStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.CategoryColor))
		for _, c := range stats.Categories {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", catStyle.Render(c.Category), c.Count))
		}
	}
	return sb.String()
}
