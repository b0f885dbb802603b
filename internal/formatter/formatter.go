// package formatter exports task lists to CSV, Markdown, plain text and JSON, and parses import files
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

// Supported export and import formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists every export format.
var Formats = []string{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

var extensions = map[string]string{
	FormatCSV:      ".csv",
	FormatMarkdown: ".md",
	FormatText:     ".txt",
	FormatJSON:     ".json",
}

// ExportToCSV converts tasks to CSV format with columns: ID, Title, Description, Priority, Due, Completed
func ExportToCSV(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Description", "Priority", "Due", "Completed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format(shared.DueDateLayout)
		}
		record := []string{
			task.ID,
			task.Title,
			task.Description,
			string(task.Priority),
			due,
			strconv.FormatBool(task.Completed),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts tasks to a Markdown checkbox list, pending tasks first
func ExportToMarkdown(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}

	buf.WriteString("# Tasks\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n", len(tasks)))
	buf.WriteString(fmt.Sprintf("**Completed**: %d\n\n", done))

	for _, completed := range []bool{false, true} {
		for _, t := range tasks {
			if t.Completed != completed {
				continue
			}
			mark := " "
			if t.Completed {
				mark = "x"
			}
			buf.WriteString(fmt.Sprintf("- [%s] **%s** `%s`", mark, t.Title, t.Priority))
			if t.DueDate != nil {
				buf.WriteString(fmt.Sprintf(" (due %s)", t.DueDate.Format(shared.DueDateLayout)))
			}
			buf.WriteString("\n")
			if t.Description != "" {
				buf.WriteString(fmt.Sprintf("  %s\n", t.Description))
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts tasks to plain text format
func ExportToText(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tasks: %d\n\n", len(tasks)))
	for i, t := range tasks {
		buf.WriteString(fmt.Sprintf("%d. %s %s [%s] due %s\n", i+1, shared.CheckMark(t.Completed), t.Title, t.Priority, shared.FormatDueDate(t.DueDate)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes tasks as a JSON array. A nil slice encodes as [].
func ExportToJSON(tasks []models.Task, pretty bool) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return shared.MarshalJSON(tasks, pretty)
}

// Export dispatches to the exporter for format.
func Export(tasks []models.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(tasks)
	case FormatMarkdown, "md":
		return ExportToMarkdown(tasks)
	case FormatText, "text":
		return ExportToText(tasks)
	case FormatJSON, "":
		return ExportToJSON(tasks, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use csv, markdown, txt or json)", shared.ErrInvalidFlag, format)
	}
}

// WriteExport writes tasks to path in format.
//
// Defaults to tasks_{epoch}{ext} in the working directory as the filename.
func WriteExport(tasks []models.Task, format, path string) (string, error) {
	data, err := Export(tasks, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		ext, ok := extensions[strings.ToLower(format)]
		if !ok {
			ext = ".json"
		}
		path = fmt.Sprintf("tasks_%d%s", time.Now().Unix(), ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// FormatFromPath infers a format from a file extension, defaulting to json.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}

// ParseImport reads task inputs from CSV or JSON.
//
// CSV files need a header row; title is required and description, priority and due are optional.
// Column names are matched case-insensitively, so a CSV export can be imported back.
func ParseImport(r io.Reader, format string) ([]models.TaskInput, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON, "":
		var inputs []models.TaskInput
		if err := json.NewDecoder(r).Decode(&inputs); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON import: %v", shared.ErrInvalidInput, err)
		}
		return inputs, nil
	default:
		return nil, fmt.Errorf("%w: cannot import from %q (use csv or json)", shared.ErrInvalidFlag, format)
	}
}

// ReadImportFile opens path and parses it with the format implied by its extension.
func ReadImportFile(path string) ([]models.TaskInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return ParseImport(f, FormatFromPath(path))
}

func parseCSV(r io.Reader) ([]models.TaskInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV import: %v", shared.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return []models.TaskInput{}, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("%w: CSV import needs a title column", shared.ErrInvalidInput)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	inputs := make([]models.TaskInput, 0, len(records)-1)
	for line, rec := range records[1:] {
		priority, err := models.ParsePriority(field(rec, "priority"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		due, err := shared.ParseDueDate(field(rec, "due"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		inputs = append(inputs, models.TaskInput{
			Title:       field(rec, "title"),
			Description: field(rec, "description"),
			Priority:    priority,
			DueDate:     due,
		})
	}
	return inputs, nil
}
