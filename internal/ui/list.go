package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task models.Task
}

func (i taskItem) FilterValue() string { return i.task.Title + " " + i.task.Description }
func (i taskItem) Title() string {
	return fmt.Sprintf("%s %s", shared.CheckMark(i.task.Completed), i.task.Title)
}
func (i taskItem) Description() string {
	parts := []string{PriorityStyle(i.task.Priority).Render(string(i.task.Priority))}
	if i.task.DueDate != nil {
		parts = append(parts, "due "+shared.FormatDueDate(i.task.DueDate))
	}
	if i.task.Description != "" {
		parts = append(parts, i.task.Description)
	}
	return strings.Join(parts, " • ")
}

func taskItems(tasks []models.Task) []list.Item {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t}
	}
	return items
}
