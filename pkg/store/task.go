package store

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format tasks are stored with
const DateLayout = "2006-01-02"

// NoDate marks a task without a calendar date
const NoDate = "No date selected"

// Priority represents how urgent a task is
type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities lists every priority from least to most urgent
var Priorities = []Priority{Low, Medium, High}

// ParsePriority converts user input into a Priority. Empty input means Low.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
}

// Valid reports whether p is one of the enumerated priorities
func (p Priority) Valid() bool {
	return p == Low || p == Medium || p == High
}

// rank orders priorities for sorting, higher is more urgent
func (p Priority) rank() int {
	switch p {
	case High:
		return 2
	case Medium:
		return 1
	}
	return 0
}

// Task represents a single to-do item
type Task struct {
	ID          int64    `json:"id" yaml:"id"`
	Topic       string   `json:"topic" yaml:"topic"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Date        string   `json:"date" yaml:"date"`
	Priority    Priority `json:"priority" yaml:"priority"`
	Completed   bool     `json:"completed" yaml:"completed"`
}

// HasDate reports whether the task carries a calendar date
func (t Task) HasDate() bool {
	return t.Date != "" && t.Date != NoDate
}

// validate checks the invariants every stored task must satisfy
func (t Task) validate() error {
	if strings.TrimSpace(t.Topic) == "" {
		return fmt.Errorf("%w: task %d has an empty topic", ErrValidation, t.ID)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: task %d has unknown priority %q", ErrValidation, t.ID, t.Priority)
	}
	return nil
}

// TaskFields holds the user-editable part of a task
type TaskFields struct {
	Topic       string
	Description string
	Category    string
	Date        string
	Priority    Priority
}

// normalize trims the fields and validates them
func (f TaskFields) normalize() (TaskFields, error) {
	f.Topic = strings.TrimSpace(f.Topic)
	if f.Topic == "" {
		return f, fmt.Errorf("%w: topic cannot be empty", ErrValidation)
	}
	f.Category = strings.TrimSpace(f.Category)

	date, err := NormalizeDate(f.Date)
	if err != nil {
		return f, err
	}
	f.Date = date

	if f.Priority == "" {
		f.Priority = Low
	}
	if !f.Priority.Valid() {
		return f, fmt.Errorf("%w: unknown priority %q", ErrValidation, f.Priority)
	}
	return f, nil
}

// NormalizeDate accepts YYYY-MM-DD, an empty string or NoDate
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == NoDate {
		return NoDate, nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", ErrValidation, s)
	}
	return s, nil
}
