package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pinlist/pkg/store"
	"pinlist/pkg/utils"
)

// importedTask is one task read from an import file. err is set when the
// entry could not be parsed; such entries are reported and skipped.
type importedTask struct {
	fields    store.TaskFields
	completed bool
	err       error
}

// dateHeaderRegex matches a whole "DD.MM.YYYY:" or "YYYY-MM-DD:" line
var dateHeaderRegex = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4}|\d{4}-\d{2}-\d{2}):?$`)

// HandleImportCommand processes --import. Files ending in .json, .yaml or .yml
// are read as export documents, anything else as a text checklist.
// Tasks are imported one by one: a bad entry is reported and skipped, and a
// completed task is created and then marked done in a second write.
func HandleImportCommand(s *store.Store, out io.Writer, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var tasks []importedTask
	var categories []string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".yaml", ".yml":
		tasks, categories, err = parseDocument(content, filepath.Ext(filename))
	default:
		tasks = parseText(string(content))
	}
	if err != nil {
		return err
	}

	for _, name := range categories {
		if err := s.AddCategory(name); err != nil {
			return err
		}
	}

	var tasksAdded int
	for _, it := range tasks {
		if it.err != nil {
			fmt.Fprintf(out, "Error adding task '%s': %v\n", it.fields.Topic, it.err)
			continue
		}
		task, err := s.CreateTask(it.fields)
		if err != nil {
			fmt.Fprintf(out, "Error adding task '%s': %v\n", it.fields.Topic, err)
			continue
		}
		tasksAdded++
		if it.completed {
			if _, err := s.ToggleComplete(task.ID); err != nil {
				fmt.Fprintf(out, "Error completing task '%s', it was added as open: %v\n", task.Topic, err)
			}
		}
	}

	utils.Log("Imported %d of %d tasks from %s", tasksAdded, len(tasks), filename)
	fmt.Fprintf(out, "Successfully imported %d task(s) from %s\n", tasksAdded, filename)
	return nil
}

// parseDocument reads an exported document. Pinned snapshots are not imported
// since the tasks receive new ids.
func parseDocument(content []byte, ext string) ([]importedTask, []string, error) {
	var doc Document
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(content, &doc)
	} else {
		err = yaml.Unmarshal(content, &doc)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s document: %w", ext, err)
	}

	tasks := make([]importedTask, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		priority, err := store.ParsePriority(string(t.Priority))
		tasks = append(tasks, importedTask{
			fields: store.TaskFields{
				Topic:       t.Topic,
				Description: t.Description,
				Category:    t.Category,
				Date:        t.Date,
				Priority:    priority,
			},
			completed: t.Completed,
			err:       err,
		})
	}
	return tasks, doc.Categories, nil
}

// parseText reads a checklist grouped under date headings
func parseText(content string) []importedTask {
	var tasks []importedTask
	currentDate := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Check if line is a date heading (DD.MM.YYYY: or YYYY-MM-DD: format)
		if match := dateHeaderRegex.FindStringSubmatch(line); match != nil {
			// An impossible date such as 31.02.2024 ends the group like any other heading
			currentDate = parseHeaderDate(match[1])
			continue
		}

		// Any other heading, such as "No date:", ends the current date group
		if strings.HasSuffix(line, ":") && !strings.HasPrefix(line, "-") {
			currentDate = ""
			continue
		}

		// Check if line is a task (starts with -)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		taskText := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if taskText == "" {
			continue
		}

		completed := false
		if strings.HasPrefix(taskText, "[x]") {
			completed = true
			taskText = strings.TrimSpace(strings.TrimPrefix(taskText, "[x]"))
		} else if strings.HasPrefix(taskText, "[ ]") {
			taskText = strings.TrimSpace(strings.TrimPrefix(taskText, "[ ]"))
		}

		fields, err := parseTaskLine(taskText)
		if err != nil {
			fields.Topic = taskText
		}
		fields.Date = currentDate
		tasks = append(tasks, importedTask{fields: fields, completed: completed, err: err})
	}

	return tasks
}

// parseHeaderDate converts a heading date to YYYY-MM-DD, or "" when it is not a real date
func parseHeaderDate(s string) string {
	for _, layout := range []string{"02.01.2006", store.DateLayout} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(store.DateLayout)
		}
	}
	return ""
}
