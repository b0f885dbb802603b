package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

// Task form fields in focus order
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDue
	fieldCount
)

// taskForm edits a new or existing task.
type taskForm struct {
	editing     *models.Task
	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	priority    models.Priority
	focus       int
	err         string
	busy        bool
}

// newTaskForm returns an empty form, or one pre-filled from t when editing.
func newTaskForm(t *models.Task) taskForm {
	title := textinput.New()
	title.Prompt = "Title:       "
	title.Placeholder = "What needs doing?"
	title.CharLimit = 200

	description := textinput.New()
	description.Prompt = "Description: "
	description.Placeholder = "optional"

	due := textinput.New()
	due.Prompt = "Due:         "
	due.Placeholder = shared.DueDateLayout
	due.CharLimit = len(shared.DueDateLayout)

	f := taskForm{title: title, description: description, due: due, priority: models.DefaultPriority}
	if t != nil {
		cp := *t
		f.editing = &cp
		if n := len([]rune(t.Title)); n > f.title.CharLimit {
			f.title.CharLimit = n
		}
		f.title.SetValue(t.Title)
		f.description.SetValue(t.Description)
		if t.DueDate != nil {
			f.due.SetValue(t.DueDate.Format(shared.DueDateLayout))
		}
		if t.Priority.Valid() {
			f.priority = t.Priority
		}
	}
	f.setFocus(fieldTitle)
	return f
}

func (f *taskForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	f.due.Blur()

	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

// input builds and validates the request body from the fields.
func (f taskForm) input() (models.TaskInput, error) {
	due, err := shared.ParseDueDate(f.due.Value())
	if err != nil {
		return models.TaskInput{}, err
	}
	// The field only shows the date, so an untouched value keeps the stored time of day.
	if e := f.editing; e != nil && e.DueDate != nil && due != nil && due.Equal(truncateDay(*e.DueDate)) {
		due = e.DueDate
	}

	in := models.TaskInput{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Priority:    f.priority,
		DueDate:     due,
	}.Normalize()

	if err := in.Validate(); err != nil {
		return models.TaskInput{}, err
	}
	return in, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// update handles key input. save is true when the user asked to submit the form.
func (f *taskForm) update(msg tea.KeyMsg, keys keyMap) (save bool, cmd tea.Cmd) {
	if f.busy {
		return false, nil
	}

	switch {
	case key.Matches(msg, keys.save):
		return true, nil
	case key.Matches(msg, keys.next):
		return false, f.setFocus(f.focus + 1)
	case key.Matches(msg, keys.prev):
		return false, f.setFocus(f.focus - 1)
	case key.Matches(msg, keys.submit):
		if f.focus == fieldCount-1 {
			return true, nil
		}
		return false, f.setFocus(f.focus + 1)
	}

	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	case fieldPriority:
		if key.Matches(msg, keys.cycle) {
			f.priority = f.priority.Next()
		}
	}
	return false, cmd
}

func (f taskForm) View(keys keyMap, h help.Model) string {
	var b strings.Builder

	heading := "New task"
	if f.editing != nil {
		heading = "Edit task"
	}
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")

	b.WriteString(f.title.View() + "\n")
	b.WriteString(f.description.View() + "\n")

	label := styles.blurred.Render("Priority:    ")
	if f.focus == fieldPriority {
		label = styles.focused.Render("Priority:  > ")
	}
	b.WriteString(label + PriorityStyle(f.priority).Render(string(f.priority)) + "\n")
	b.WriteString(f.due.View() + "\n\n")

	switch {
	case f.busy:
		b.WriteString(styles.warn.Render("Saving...") + "\n")
	case f.err != "":
		b.WriteString(styles.err.Render(f.err) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(h.ShortHelpView([]key.Binding{keys.next, keys.cycle, keys.save, keys.back}))
	return b.String()
}
