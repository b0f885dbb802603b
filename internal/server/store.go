package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user models.User
	hash []byte
}

// Store is the sandbox's in-memory account, token and task state.
type Store struct {
	mu   sync.RWMutex
	cost int
	now  func() time.Time

	accounts map[string]*account // keyed by normalized email
	tokens   map[string]string   // token -> user id
	order    map[string][]string // user id -> task ids in creation order
	tasks    map[string]*models.Task
	owners   map[string]string // task id -> user id
}

// NewStore creates an empty [Store]. A non-positive cost uses [bcrypt.DefaultCost].
func NewStore(cost int) *Store {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		cost:     cost,
		now:      func() time.Time { return time.Now().UTC() },
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		order:    make(map[string][]string),
		tasks:    make(map[string]*models.Task),
		owners:   make(map[string]string),
	}
}

// Register creates an account and issues its first token.
func (s *Store) Register(email, password string) (*models.AuthResponse, error) {
	email = shared.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[email]; ok {
		return nil, shared.ErrEmailTaken
	}

	acct := &account{user: models.User{ID: shared.GenerateID(), Email: email}, hash: hash}
	s.accounts[email] = acct
	return s.issue(acct.user), nil
}

// Login checks credentials and issues a new token.
func (s *Store) Login(email, password string) (*models.AuthResponse, error) {
	email = shared.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[email]
	if !ok {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issue(acct.user), nil
}

// issue must be called with the write lock held.
func (s *Store) issue(u models.User) *models.AuthResponse {
	token := shared.GenerateID()
	s.tokens[token] = u.ID
	return &models.AuthResponse{Token: token, User: &u}
}

// Authenticate resolves a bearer token to its user id.
func (s *Store) Authenticate(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.tokens[token]
	if !ok || token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return uid, nil
}

func (s *Store) ListTasks(uid string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[uid]
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.tasks[id])
	}
	return out
}

func (s *Store) GetTask(uid, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.owned(uid, id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (s *Store) CreateTask(uid string, in models.TaskInput) (*models.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := &models.Task{
		ID:          shared.GenerateID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	s.tasks[t.ID] = t
	s.owners[t.ID] = uid
	s.order[uid] = append(s.order[uid], t.ID)

	cp := *t
	return &cp, nil
}

// UpdateTask replaces the editable fields. Completion is left alone.
func (s *Store) UpdateTask(uid, id string, in models.TaskInput) (*models.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.owned(uid, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.UpdatedAt = &now

	cp := *t
	return &cp, nil
}

func (s *Store) ToggleTask(uid, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.owned(uid, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t.Completed = !t.Completed
	t.UpdatedAt = &now

	cp := *t
	return &cp, nil
}

func (s *Store) DeleteTask(uid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(uid, id); err != nil {
		return err
	}

	delete(s.tasks, id)
	delete(s.owners, id)
	ids := s.order[uid]
	for i, tid := range ids {
		if tid == id {
			s.order[uid] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// owned returns the task only if uid owns it. Tasks of other users are reported as missing.
func (s *Store) owned(uid, id string) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok || s.owners[id] != uid {
		return nil, shared.ErrTaskNotFound
	}
	return t, nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email address is not valid", shared.ErrInvalidInput)
	}
	return nil
}
