// package models defines the data model shared by the task client, its session and the sandbox server
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/taskr/internal/shared"
)

// User is the authenticated account as returned by the task service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Validate reports whether the user record is complete enough to back a session.
func (u *User) Validate() error {
	if u == nil || strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrInvalidInput)
	}
	return nil
}

// Credentials is the request body for login and registration.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the service response to a successful login or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Validate reports whether the response carries both halves of a session.
func (r *AuthResponse) Validate() error {
	if r == nil || r.Token == "" {
		return fmt.Errorf("%w: response is missing a token", shared.ErrAPIRequest)
	}
	if err := r.User.Validate(); err != nil {
		return fmt.Errorf("%w: response is missing a user", shared.ErrAPIRequest)
	}
	return nil
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMed    Priority = "med"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMed, PriorityHigh, PriorityUrgent}

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = PriorityMed

// ParsePriority parses a priority name case-insensitively. "medium" is accepted for med.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMed, PriorityHigh, PriorityUrgent:
		return p, nil
	case "medium":
		return PriorityMed, nil
	case "":
		return DefaultPriority, nil
	default:
		return "", fmt.Errorf("%w: priority %q must be one of low, med, high, urgent", shared.ErrInvalidInput, s)
	}
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Next returns the following priority, wrapping from urgent back to low.
func (p Priority) Next() Priority {
	for i, known := range Priorities {
		if p == known {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return DefaultPriority
}

// Task is a single task owned by the remote service.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts the identifier as either "_id" or "id".
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.AltID
	}
	return nil
}

// Input returns the editable fields of t, for pre-filling an update.
func (t Task) Input() TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// TaskInput is the request body for creating or replacing a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Normalize trims text fields and fills in the default priority.
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = DefaultPriority
	}
	return in
}

// Validate checks the input the way the form does before any request is sent.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return fmt.Errorf("%w: priority %q must be one of low, med, high, urgent", shared.ErrInvalidInput, in.Priority)
	}
	return nil
}
