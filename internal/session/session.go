package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
	"golang.org/x/oauth2"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the persistent key-value store holding the session between runs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Authenticator exchanges credentials for a token and user with the remote service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, email, password string) (*models.AuthResponse, error)
}

// Manager owns the session state and is its only writer.
type Manager struct {
	store  Store
	auth   Authenticator
	logger *log.Logger

	mu        sync.Mutex
	state     Snapshot
	seq       uint64 // bumped by every transition
	listeners map[int]*listener
	nextID    int

	restoreOnce sync.Once
	ready       chan struct{}
}

// NewManager creates a [Manager] in the Loading state.
func NewManager(store Store, auth Authenticator, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Manager{
		store:     store,
		auth:      auth,
		logger:    logger,
		state:     Snapshot{Loading: true},
		listeners: make(map[int]*listener),
		ready:     make(chan struct{}),
	}
}

// Restore rebuilds the session from the store. Only the first call reads the store.
//
// It never fails: unreadable or unparsable records leave the session Unauthenticated.
func (m *Manager) Restore(ctx context.Context) Snapshot {
	m.restoreOnce.Do(func() {
		user, token := m.load(ctx)
		m.apply(action{kind: actionRestore, user: user, token: token})
		close(m.ready)
	})
	return m.Snapshot()
}

func (m *Manager) load(ctx context.Context) (*models.User, string) {
	token, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		if !errors.Is(err, shared.ErrKeyNotFound) {
			m.logger.Warn("unable to read stored token", "error", err)
		}
		return nil, ""
	}
	if token == "" {
		return nil, ""
	}

	raw, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		m.logger.Warn("stored token has no user record", "error", err)
		return nil, ""
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("unable to parse stored user", "error", err)
		return nil, ""
	}
	if err := user.Validate(); err != nil {
		m.logger.Warn("stored user is incomplete", "error", err)
		return nil, ""
	}
	return &user, token
}

// Login authenticates with the remote service and persists the resulting session.
//
// On failure the session is unchanged, nothing is written and the service error is returned.
func (m *Manager) Login(ctx context.Context, email, password string) (Snapshot, error) {
	return m.authenticate(ctx, "login", m.auth.Login, email, password)
}

// Register creates an account. A successful registration is also a login.
func (m *Manager) Register(ctx context.Context, email, password string) (Snapshot, error) {
	return m.authenticate(ctx, "register", m.auth.Register, email, password)
}

type authFunc func(ctx context.Context, email, password string) (*models.AuthResponse, error)

func (m *Manager) authenticate(ctx context.Context, op string, fn authFunc, email, password string) (Snapshot, error) {
	if err := m.waitReady(ctx); err != nil {
		return m.Snapshot(), err
	}

	resp, err := fn(ctx, email, password)
	if err != nil {
		m.logger.Debug(op+" failed", "email", shared.NormalizeEmail(email), "error", err)
		return m.Snapshot(), err
	}
	if err := resp.Validate(); err != nil {
		return m.Snapshot(), fmt.Errorf("%s: %w", op, err)
	}

	user := *resp.User
	m.persist(ctx, &user, resp.Token)
	snap := m.apply(action{kind: actionLogin, user: &user, token: resp.Token})

	m.logger.Info(op+" succeeded", "email", user.Email)
	return snap, nil
}

// persist writes the token then the user record.
//
// Any failed write clears both keys, so a restart never restores a token without its user
// or the previous account's record.
func (m *Manager) persist(ctx context.Context, user *models.User, token string) {
	data, err := json.Marshal(user)
	if err != nil {
		m.logger.Warn("unable to encode user", "error", err)
		m.discard(ctx)
		return
	}

	if err := m.store.Set(ctx, KeyToken, token); err != nil {
		m.logger.Warn("unable to persist session token", "error", err)
		m.discard(ctx)
		return
	}
	if err := m.store.Set(ctx, KeyUser, string(data)); err != nil {
		m.logger.Warn("unable to persist session user", "error", err)
		m.discard(ctx)
	}
}

func (m *Manager) discard(ctx context.Context) {
	if err := m.store.Remove(ctx, KeyToken, KeyUser); err != nil {
		m.logger.Warn("unable to clear stored session", "error", err)
	}
}

// Logout clears the stored session and always ends Unauthenticated.
func (m *Manager) Logout(ctx context.Context) Snapshot {
	// The transition applies even when ctx ends first.
	_ = m.waitReady(ctx)

	m.discard(ctx)
	return m.apply(action{kind: actionLogout})
}

func (m *Manager) waitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once Restore has resolved.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Token implements [oauth2.TokenSource] over the current session.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	token := m.state.Token
	m.mu.Unlock()

	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// Subscribe registers fn to receive every new snapshot and returns a func that removes it.
//
// Snapshots reach fn in transition order; one that arrives after a newer snapshot was
// delivered is dropped. fn runs outside the session lock but must not start a transition.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = &listener{fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) apply(a action) Snapshot {
	m.mu.Lock()
	m.state = reduce(m.state, a)
	m.seq++
	seq := m.seq
	snap := m.state.clone()
	ls := make([]*listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	for _, l := range ls {
		l.deliver(seq, snap.clone())
	}
	return snap
}

type listener struct {
	mu   sync.Mutex
	last uint64
	fn   func(Snapshot)
}

// deliver calls fn unless a later transition already reached it.
func (l *listener) deliver(seq uint64, snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq <= l.last {
		return
	}
	l.last = seq
	l.fn(snap)
}

var _ oauth2.TokenSource = (*Manager)(nil)
