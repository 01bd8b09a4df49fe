package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":       {"?", "show/hide commands"},
	"QuitApp":        {"q,ctrl+c", "quit"},
	"ToggleStatus":   {"x", "toggle completed"},
	"AddTask":        {"a", "add task"},
	"EditTask":       {"e", "edit task"},
	"DeleteTask":     {"d", "delete task"},
	"PinTask":        {"p", "pin/unpin task"},
	"ShowPinned":     {"v", "show pinned tasks"},
	"ShowStats":      {"t", "show statistics"},
	"SearchTasks":    {"/", "search tasks by topic"},
	"CycleFilter":    {"f", "cycle all/open/completed"},
	"SortByPriority": {"s", "toggle sort by priority"},
	"MoveUp":         {"K", "move task up"},
	"MoveDown":       {"J", "move task down"},
}

type KeyMap struct {
	ShowHelp       key.Binding
	QuitApp        key.Binding
	ToggleStatus   key.Binding
	AddTask        key.Binding
	EditTask       key.Binding
	DeleteTask     key.Binding
	PinTask        key.Binding
	ShowPinned     key.Binding
	ShowStats      key.Binding
	SearchTasks    key.Binding
	CycleFilter    key.Binding
	SortByPriority key.Binding
	MoveUp         key.Binding
	MoveDown       key.Binding
}

// BuildKeyMap applies configured overrides on top of the defaults.
// Action names are matched case-insensitively since config keys arrive lowercased.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)

		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "ToggleStatus":
			km.ToggleStatus = binding
		case "AddTask":
			km.AddTask = binding
		case "EditTask":
			km.EditTask = binding
		case "DeleteTask":
			km.DeleteTask = binding
		case "PinTask":
			km.PinTask = binding
		case "ShowPinned":
			km.ShowPinned = binding
		case "ShowStats":
			km.ShowStats = binding
		case "SearchTasks":
			km.SearchTasks = binding
		case "CycleFilter":
			km.CycleFilter = binding
		case "SortByPriority":
			km.SortByPriority = binding
		case "MoveUp":
			km.MoveUp = binding
		case "MoveDown":
			km.MoveDown = binding
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	keys := strings.Split(keyStr, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}

// HelpLines lists "key: help" for every binding, in display order
func (km KeyMap) HelpLines() []string {
	bindings := []key.Binding{
		km.AddTask, km.EditTask, km.DeleteTask, km.ToggleStatus, km.PinTask,
		km.MoveUp, km.MoveDown, km.SortByPriority, km.CycleFilter, km.SearchTasks,
		km.ShowPinned, km.ShowStats, km.ShowHelp, km.QuitApp,
	}
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, h.Key+": "+h.Desc)
	}
	return lines
}
