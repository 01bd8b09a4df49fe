package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"pinlist/pkg/store"
)

// Export types accepted by --type
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
	ExportTXT  = "txt"
	ExportPDF  = "pdf"
)

// Document is the full export of the store
type Document struct {
	Tasks       []store.Task `json:"tasks" yaml:"tasks"`
	PinnedTasks []store.Task `json:"pinnedTasks" yaml:"pinnedTasks"`
	Categories  []string     `json:"categories" yaml:"categories"`
}

// HandleExportCommand processes --export commands
func HandleExportCommand(s *store.Store, out io.Writer, filename, exportType string) error {
	doc := Document{
		Tasks:       s.Tasks(),
		PinnedTasks: s.Pinned(),
		Categories:  s.Categories(),
	}

	content, err := RenderExport(doc, exportType)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	fmt.Fprintf(out, "Successfully exported %d task(s) to %s\n", len(doc.Tasks), filename)
	return nil
}

// RenderExport encodes the document in the requested format
func RenderExport(doc Document, exportType string) ([]byte, error) {
	switch exportType {
	case ExportJSON:
		return json.MarshalIndent(doc, "", "  ")
	case ExportYAML:
		return yaml.Marshal(doc)
	case ExportTXT:
		return []byte(renderText(doc.Tasks)), nil
	case ExportPDF:
		return renderPDF(doc)
	}
	return nil, fmt.Errorf("unknown export type: %s", exportType)
}

// byDate orders tasks by date, undated tasks first, keeping list order within a day
func byDate(tasks []store.Task) []store.Task {
	sorted := make([]store.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].HasDate(), sorted[j].HasDate()
		if di != dj {
			return !di
		}
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// dateHeader formats a group heading the import command reads back
func dateHeader(t store.Task) string {
	if !t.HasDate() {
		return "No date:"
	}
	d, err := time.Parse(store.DateLayout, t.Date)
	if err != nil {
		return t.Date + ":"
	}
	return d.Format("02.01.2006") + ":"
}

// renderText writes tasks grouped under date headings
func renderText(tasks []store.Task) string {
	var lines []string
	lastHeader := ""
	for _, task := range byDate(tasks) {
		header := dateHeader(task)
		if header != lastHeader {
			lines = append(lines, "\n"+header)
			lastHeader = header
		}
		lines = append(lines, checklistLine(task))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func renderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	for _, line := range strings.Split(renderText(doc.Tasks), "\n") {
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	if len(doc.PinnedTasks) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Pinned")
		pdf.Ln(10)
		pdf.SetFont("Arial", "", 10)
		for _, task := range doc.PinnedTasks {
			pdf.MultiCell(0, 6, FormatTask(task), "0", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
