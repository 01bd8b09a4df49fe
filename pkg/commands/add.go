package commands

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"pinlist/pkg/store"
)

// AddOptions carries the --add flags
type AddOptions struct {
	Topic       string
	Description string
	Category    string
	Date        string
	Priority    string
}

var (
	categoryTag = regexp.MustCompile(`\+(\w+)`)
	priorityTag = regexp.MustCompile(`!(\w+)`)
	tagSpaces   = regexp.MustCompile(`\s*[+!]\w+\s*`)
)

// HandleAddTask processes the --add command. A +tag in the topic sets the
// category and a !tag sets the priority when the flags leave them empty.
func HandleAddTask(s *store.Store, out io.Writer, opts AddOptions) error {
	fields, err := parseTaskLine(opts.Topic)
	if err != nil {
		return err
	}

	fields.Description = strings.TrimSpace(opts.Description)
	fields.Date = opts.Date
	if opts.Category != "" {
		fields.Category = opts.Category
	}
	if opts.Priority != "" {
		p, err := store.ParsePriority(opts.Priority)
		if err != nil {
			return err
		}
		fields.Priority = p
	}

	task, err := s.CreateTask(fields)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Added task %d: %s\n", task.ID, task.Topic)
	return nil
}

// parseTaskLine splits free text into topic, +category and !priority
func parseTaskLine(text string) (store.TaskFields, error) {
	var fields store.TaskFields

	if categories := extractTags(categoryTag, text); len(categories) > 0 {
		fields.Category = categories[0]
	}
	if priorities := extractTags(priorityTag, text); len(priorities) > 0 {
		p, err := store.ParsePriority(priorities[0])
		if err != nil {
			return fields, err
		}
		fields.Priority = p
	}

	// Remove tags from topic for clean display
	fields.Topic = strings.TrimSpace(tagSpaces.ReplaceAllString(text, " "))
	return fields, nil
}

// extractTags finds all tag values matched by re in text
func extractTags(re *regexp.Regexp, text string) []string {
	var tags []string
	for _, match := range re.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	return tags
}
