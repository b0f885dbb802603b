package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/session"
)

// restoredMsg carries the session once the startup restore has resolved.
type restoredMsg struct {
	snapshot session.Snapshot
}

// authDoneMsg is the outcome of a login or register attempt.
type authDoneMsg struct {
	snapshot session.Snapshot
	err      error
}

// sessionChangedMsg is a transition observed through [session.Manager.Subscribe].
type sessionChangedMsg struct {
	snapshot session.Snapshot
}

// SessionChanged wraps a session snapshot for [tea.Program.Send].
func SessionChanged(snap session.Snapshot) tea.Msg {
	return sessionChangedMsg{snapshot: snap}
}

type loggedOutMsg struct {
	snapshot session.Snapshot
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

// taskSavedMsg is the outcome of a create or update from the form.
type taskSavedMsg struct {
	task *models.Task
	err  error
}

type taskToggledMsg struct {
	task *models.Task
	err  error
}

type taskDeletedMsg struct {
	id  string
	err error
}
