package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskr/internal/shared"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

func (m authMode) String() string {
	if m == modeRegister {
		return "Register"
	}
	return "Log in"
}

// authForm is the unauthenticated screen set: one form shared by login and register.
type authForm struct {
	mode   authMode
	inputs []textinput.Model // email, password
	focus  int
	err    string
	busy   bool
}

func newAuthForm() authForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{inputs: []textinput.Model{email, password}}
}

func (f authForm) email() string    { return shared.NormalizeEmail(f.inputs[0].Value()) }
func (f authForm) password() string { return f.inputs[1].Value() }

func (f *authForm) setFocus(i int) tea.Cmd {
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *authForm) toggleMode() {
	if f.mode == modeLogin {
		f.mode = modeRegister
	} else {
		f.mode = modeLogin
	}
	f.err = ""
}

// validate checks the fields before any request is sent.
func (f authForm) validate() error {
	if f.email() == "" || f.password() == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}
	return nil
}

// update handles key input. submit is true when the user asked to send the form.
func (f *authForm) update(msg tea.KeyMsg, keys keyMap) (submit bool, cmd tea.Cmd) {
	if f.busy {
		return false, nil
	}

	switch {
	case key.Matches(msg, keys.mode):
		f.toggleMode()
		return false, nil
	case key.Matches(msg, keys.next):
		return false, f.setFocus(f.focus + 1)
	case key.Matches(msg, keys.prev):
		return false, f.setFocus(f.focus - 1)
	case key.Matches(msg, keys.submit):
		if f.focus < len(f.inputs)-1 {
			return false, f.setFocus(f.focus + 1)
		}
		return true, nil
	}

	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f authForm) View(keys keyMap, h help.Model) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(f.mode.String()))
	b.WriteString("\n")
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case f.busy:
		b.WriteString(styles.warn.Render("Signing in..."))
		b.WriteString("\n")
	case f.err != "":
		b.WriteString(styles.err.Render(f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(h.ShortHelpView([]key.Binding{keys.next, keys.submit, keys.mode, keys.forceQuit}))
	return b.String()
}
