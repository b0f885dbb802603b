package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/services"
	"github.com/desertthunder/taskr/internal/session"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/desertthunder/taskr/internal/tasks"
)

// Screen is the current screen within the authenticated set.
type Screen int

const (
	TaskListScreen Screen = iota
	TaskFormScreen
	ConfirmDeleteScreen
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *session.Manager
	syncer  *tasks.Syncer
	logger  *log.Logger

	screen  Screen
	auth    authForm
	form    taskForm
	list    list.Model
	pending *models.Task // awaiting delete confirmation
	status  string
	err     string
	loading bool

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, sess *session.Manager, syncer *tasks.Syncer, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Tasks"
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Model{
		ctx:     ctx,
		session: sess,
		syncer:  syncer,
		logger:  logger,
		auth:    newAuthForm(),
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Route reports which screen set the current session selects.
func (m *Model) Route() Route {
	return RouteFor(m.session.Snapshot())
}

func (m *Model) Screen() Screen {
	return m.screen
}

// Init restores the stored session; nothing is drawn until it resolves.
func (m *Model) Init() tea.Cmd {
	return m.restore()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		switch m.Route() {
		case RouteUnauthenticated:
			return m.handleAuthKeys(msg)
		case RouteAuthenticated:
			switch m.screen {
			case TaskListScreen:
				return m.handleListKeys(msg)
			case TaskFormScreen:
				return m.handleFormKeys(msg)
			case ConfirmDeleteScreen:
				return m.handleConfirmKeys(msg)
			}
		}
		return m, nil

	case restoredMsg:
		if RouteFor(msg.snapshot) == RouteAuthenticated {
			return m, m.showList()
		}
		return m, m.auth.setFocus(0)

	case authDoneMsg:
		m.auth.busy = false
		if msg.err != nil {
			m.auth.err = services.UserMessage(msg.err)
			return m, nil
		}
		m.auth = newAuthForm()
		return m, m.showList()

	case sessionChangedMsg:
		// A session that ended while tasks were on screen drops them before the logout reply lands.
		if RouteFor(msg.snapshot) == RouteUnauthenticated && m.syncer.List().Loaded() {
			m.reset()
			return m, m.auth.setFocus(0)
		}
		return m, nil

	case loggedOutMsg:
		m.reset()
		return m, m.auth.setFocus(0)

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		m.err = ""
		return m, m.syncItems()

	case taskSavedMsg:
		m.form.busy = false
		if msg.err != nil {
			m.form.err = services.UserMessage(msg.err)
			if errors.Is(msg.err, shared.ErrNotAuthenticated) {
				return m, m.logout()
			}
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %q", msg.task.Title)
		return m, m.showList()

	case taskToggledMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		m.status = fmt.Sprintf("%s %s", shared.CheckMark(msg.task.Completed), msg.task.Title)
		return m, m.syncItems()

	case taskDeletedMsg:
		m.screen = TaskListScreen
		m.pending = nil
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		m.status = "Task deleted"
		return m, m.syncItems()
	}

	return m.updateList(msg)
}

// View renders the UI based on the session route and current screen.
func (m *Model) View() string {
	switch m.Route() {
	case RouteBlank:
		return ""
	case RouteUnauthenticated:
		return m.auth.View(m.keys, m.help)
	}

	switch m.screen {
	case TaskFormScreen:
		return m.form.View(m.keys, m.help)
	case ConfirmDeleteScreen:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submit, cmd := m.auth.update(msg, m.keys)
	if !submit {
		return m, cmd
	}

	if err := m.auth.validate(); err != nil {
		m.auth.err = "Email and password are required"
		return m, nil
	}
	m.auth.err = ""
	m.auth.busy = true
	return m, m.authenticate(m.auth.mode, m.auth.email(), m.auth.password())
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.newTask):
		return m, m.openForm(nil)
	case key.Matches(msg, m.keys.edit):
		if t, ok := m.selected(); ok {
			return m, m.openForm(&t)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if t, ok := m.selected(); ok {
			return m, m.toggle(t.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if t, ok := m.selected(); ok {
			m.pending = &t
			m.screen = ConfirmDeleteScreen
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	return m.updateList(msg)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) {
		return m, m.showList()
	}

	save, cmd := m.form.update(msg, m.keys)
	if !save {
		return m, cmd
	}

	in, err := m.form.input()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	m.form.err = ""
	m.form.busy = true
	return m, m.save(m.form.editing, in)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.pending == nil {
			m.screen = TaskListScreen
			return m, nil
		}
		return m, m.remove(m.pending.ID)
	case key.Matches(msg, m.keys.no):
		m.pending = nil
		m.screen = TaskListScreen
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Route() != RouteAuthenticated || m.screen != TaskListScreen {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleError shows err on the list. A rejected token ends the session.
func (m *Model) handleError(err error) tea.Cmd {
	m.err = services.UserMessage(err)
	m.logger.Warn("request failed", "error", err)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return m.logout()
	}
	return nil
}

func (m *Model) reset() {
	m.screen = TaskListScreen
	m.auth = newAuthForm()
	m.pending = nil
	m.status = ""
	m.err = ""
	m.syncer.List().Clear()
	m.list.SetItems(nil)
}

// showList returns to the list and re-fetches it.
func (m *Model) showList() tea.Cmd {
	m.screen = TaskListScreen
	return m.refresh()
}

func (m *Model) openForm(t *models.Task) tea.Cmd {
	m.form = newTaskForm(t)
	m.screen = TaskFormScreen
	m.status = ""
	return m.form.setFocus(fieldTitle)
}

func (m *Model) selected() (models.Task, bool) {
	item, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return models.Task{}, false
	}
	return item.task, true
}

func (m *Model) syncItems() tea.Cmd {
	return m.list.SetItems(taskItems(m.syncer.List().Items()))
}

func (m *Model) restore() tea.Cmd {
	return func() tea.Msg {
		return restoredMsg{snapshot: m.session.Restore(m.ctx)}
	}
}

func (m *Model) authenticate(mode authMode, email, password string) tea.Cmd {
	return func() tea.Msg {
		auth := m.session.Login
		if mode == modeRegister {
			auth = m.session.Register
		}
		snap, err := auth(m.ctx, email, password)
		return authDoneMsg{snapshot: snap, err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{snapshot: m.session.Logout(m.ctx)}
	}
}

func (m *Model) refresh() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		items, err := m.syncer.Refresh(m.ctx)
		return tasksLoadedMsg{tasks: items, err: err}
	}
}

func (m *Model) save(editing *models.Task, in models.TaskInput) tea.Cmd {
	return func() tea.Msg {
		var (
			task *models.Task
			err  error
		)
		if editing != nil {
			task, err = m.syncer.Update(m.ctx, editing.ID, in)
		} else {
			task, err = m.syncer.Create(m.ctx, in)
		}
		return taskSavedMsg{task: task, err: err}
	}
}

func (m *Model) toggle(id string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.syncer.Toggle(m.ctx, id)
		return taskToggledMsg{task: task, err: err}
	}
}

func (m *Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: m.syncer.Delete(m.ctx, id)}
	}
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.newTask, m.keys.edit, m.keys.toggle, m.keys.remove,
		m.keys.refresh, m.keys.logout, m.keys.quit,
	})

	var footer string
	switch {
	case m.err != "":
		footer = styles.err.Render(m.err)
	case m.loading:
		footer = styles.warn.Render("Loading...")
	case m.status != "":
		footer = styles.ok.Render(m.status)
	}

	var body string
	if m.syncer.List().Empty() {
		user := ""
		if snap := m.session.Snapshot(); snap.User != nil {
			user = snap.User.Email
		}
		body = fmt.Sprintf("%s\n%s", styles.title.Render("Tasks"), styles.empty.Render("No tasks yet. Press n to add one."))
		if user != "" {
			body += "\n" + styles.help.Render("Signed in as "+user)
		}
	} else {
		body = m.list.View()
	}

	return fmt.Sprintf("%s\n%s\n\n%s", body, footer, helpView)
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.pending.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.warn.Render("This cannot be undone."), helpView)
}
