package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/services"
	"github.com/desertthunder/taskr/internal/shared"
	tu "github.com/desertthunder/taskr/internal/testing"
)

type fakeAuth struct {
	resp  *models.AuthResponse
	err   error
	calls []string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.calls = append(f.calls, "login:"+email)
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.calls = append(f.calls, "register:"+email)
	return f.resp, f.err
}

func okAuth() *fakeAuth {
	return &fakeAuth{resp: &models.AuthResponse{Token: "t1", User: &models.User{ID: "1", Email: "a@b.com"}}}
}

const storedUser = `{"id":"1","email":"a@b.com"}`

func TestReduce(t *testing.T) {
	user := &models.User{ID: "1", Email: "a@b.com"}

	tests := []struct {
		name  string
		state Snapshot
		act   action
		want  string
	}{
		{name: "Restore Found", state: Snapshot{Loading: true}, act: action{kind: actionRestore, user: user, token: "t1"}, want: "authenticated"},
		{name: "Restore Empty", state: Snapshot{Loading: true}, act: action{kind: actionRestore}, want: "unauthenticated"},
		{name: "Restore Token Without User", state: Snapshot{Loading: true}, act: action{kind: actionRestore, token: "t1"}, want: "unauthenticated"},
		{name: "Restore After Login Is Ignored", state: Snapshot{User: user, Token: "t1"}, act: action{kind: actionRestore}, want: "authenticated"},
		{name: "Restore After Logout Is Ignored", state: Snapshot{}, act: action{kind: actionRestore, user: user, token: "t1"}, want: "unauthenticated"},
		{name: "Login From Loading", state: Snapshot{Loading: true}, act: action{kind: actionLogin, user: user, token: "t1"}, want: "authenticated"},
		{name: "Logout", state: Snapshot{User: user, Token: "t1"}, act: action{kind: actionLogout}, want: "unauthenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduce(tt.state, tt.act)
			if got.State() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.State())
			}
			if (got.User == nil) != (got.Token == "") {
				t.Errorf("user and token must be present together: %+v", got)
			}
		})
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Initial State Is Loading", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(nil), okAuth(), nil)
		snap := m.Snapshot()
		if !snap.Loading || snap.User != nil || snap.Token != "" {
			t.Errorf("expected empty loading state, got %+v", snap)
		}
		select {
		case <-m.Ready():
			t.Error("ready must not be closed before restore")
		default:
		}
	})

	t.Run("Restore", func(t *testing.T) {
		tests := []struct {
			name     string
			seed     map[string]string
			getErr   error
			wantAuth bool
		}{
			{name: "Valid Pair", seed: map[string]string{KeyToken: "t1", KeyUser: storedUser}, wantAuth: true},
			{name: "Fresh Install", seed: nil},
			{name: "Token Without User", seed: map[string]string{KeyToken: "t1"}},
			{name: "User Without Token", seed: map[string]string{KeyUser: storedUser}},
			{name: "Unparsable User", seed: map[string]string{KeyToken: "t1", KeyUser: "{not json"}},
			{name: "User Without ID", seed: map[string]string{KeyToken: "t1", KeyUser: `{"email":"a@b.com"}`}},
			{name: "Empty Token", seed: map[string]string{KeyToken: "", KeyUser: storedUser}},
			{name: "Read Error", seed: map[string]string{KeyToken: "t1", KeyUser: storedUser}, getErr: shared.ErrStore},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := tu.NewMemoryStore(tt.seed)
				store.GetErr = tt.getErr
				m := NewManager(store, okAuth(), nil)

				snap := m.Restore(ctx)
				if snap.Loading {
					t.Fatal("expected loading to be false after restore")
				}
				if snap.Authenticated() != tt.wantAuth {
					t.Errorf("expected authenticated=%v, got %+v", tt.wantAuth, snap)
				}
				if tt.wantAuth && (snap.Token != "t1" || snap.User.ID != "1" || snap.User.Email != "a@b.com") {
					t.Errorf("unexpected restored session: %+v", snap)
				}
				if store.Sets != 0 || store.Removes != 0 {
					t.Errorf("restore must not touch the store, got %d sets and %d removes", store.Sets, store.Removes)
				}

				select {
				case <-m.Ready():
				default:
					t.Error("expected ready to be closed")
				}
			})
		}
	})

	t.Run("Restore Runs Once", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)

		store.Set(ctx, KeyToken, "t1")
		store.Set(ctx, KeyUser, storedUser)

		if snap := m.Restore(ctx); snap.Authenticated() {
			t.Error("second restore must not re-read the store")
		}
	})

	t.Run("Login", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)

		snap, err := m.Login(ctx, "a@b.com", "pw")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !snap.Authenticated() || snap.Token != "t1" || snap.User.Email != "a@b.com" {
			t.Errorf("expected authenticated session, got %+v", snap)
		}

		stored := store.Snapshot()
		if stored[KeyToken] != "t1" {
			t.Errorf("expected stored token t1, got %q", stored[KeyToken])
		}
		if stored[KeyUser] != storedUser {
			t.Errorf("expected stored user %s, got %s", storedUser, stored[KeyUser])
		}
	})

	t.Run("Register", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		auth := okAuth()
		m := NewManager(store, auth, nil)
		m.Restore(ctx)

		snap, err := m.Register(ctx, "a@b.com", "pw")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !snap.Authenticated() {
			t.Errorf("expected registration to authenticate, got %+v", snap)
		}
		if len(auth.calls) != 1 || auth.calls[0] != "register:a@b.com" {
			t.Errorf("expected one register call, got %v", auth.calls)
		}
		if store.Snapshot()[KeyToken] != "t1" {
			t.Error("expected token to be persisted")
		}
	})

	t.Run("Failed Login Leaves State Unchanged", func(t *testing.T) {
		store := tu.NewMemoryStore(map[string]string{KeyToken: "t0", KeyUser: `{"id":"0","email":"z@b.com"}`})
		auth := &fakeAuth{err: &services.APIError{StatusCode: 401, Message: "Invalid credentials"}}
		m := NewManager(store, auth, nil)
		before := m.Restore(ctx)

		snap, err := m.Login(ctx, "a@b.com", "wrong")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "Invalid credentials") {
			t.Errorf("expected error to contain message, got %q", err.Error())
		}
		if snap.Token != before.Token || snap.User.ID != before.User.ID {
			t.Errorf("expected unchanged state %+v, got %+v", before, snap)
		}
		if store.Sets != 0 {
			t.Errorf("expected no writes on failure, got %d", store.Sets)
		}
	})

	t.Run("Incomplete Response Is A Failure", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		m := NewManager(store, &fakeAuth{resp: &models.AuthResponse{Token: "t1"}}, nil)
		m.Restore(ctx)

		if _, err := m.Login(ctx, "a@b.com", "pw"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if m.Snapshot().Authenticated() || store.Sets != 0 {
			t.Error("expected no session and no writes")
		}
	})

	t.Run("Persist Failure Still Authenticates", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		store.SetErr = shared.ErrStore
		store.FailSetKey = KeyUser
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)

		snap, err := m.Login(ctx, "a@b.com", "pw")
		if err != nil {
			t.Fatalf("persistence failures must not be returned: %v", err)
		}
		if !snap.Authenticated() {
			t.Error("expected in-memory session despite write failure")
		}
		if _, ok := store.Snapshot()[KeyToken]; ok {
			t.Error("expected orphaned token to be removed")
		}
	})

	t.Run("Failed Token Write Drops Previous Account", func(t *testing.T) {
		store := tu.NewMemoryStore(map[string]string{KeyToken: "t0", KeyUser: `{"id":"0","email":"old@b.com"}`})
		store.SetErr = shared.ErrStore
		store.FailSetKey = KeyToken
		auth := &fakeAuth{resp: &models.AuthResponse{Token: "t1", User: &models.User{ID: "1", Email: "new@b.com"}}}
		m := NewManager(store, auth, nil)
		m.Restore(ctx)

		snap, err := m.Login(ctx, "new@b.com", "pw")
		if err != nil {
			t.Fatalf("persistence failures must not be returned: %v", err)
		}
		if snap.User == nil || snap.User.Email != "new@b.com" {
			t.Errorf("expected new account in memory, got %+v", snap.User)
		}
		if stored := store.Snapshot(); len(stored) != 0 {
			t.Errorf("expected stale session cleared, got %v", stored)
		}

		restarted := NewManager(store, auth, nil).Restore(ctx)
		if restarted.Authenticated() {
			t.Errorf("expected restart to come up unauthenticated, got user %+v", restarted.User)
		}
	})

	t.Run("Failed User Write Drops Previous Account", func(t *testing.T) {
		store := tu.NewMemoryStore(map[string]string{KeyToken: "t0", KeyUser: `{"id":"0","email":"old@b.com"}`})
		store.SetErr = shared.ErrStore
		store.FailSetKey = KeyUser
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)

		if _, err := m.Login(ctx, "a@b.com", "pw"); err != nil {
			t.Fatalf("persistence failures must not be returned: %v", err)
		}
		if stored := store.Snapshot(); len(stored) != 0 {
			t.Errorf("expected new token and old user both removed, got %v", stored)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		store := tu.NewMemoryStore(map[string]string{KeyToken: "t1", KeyUser: storedUser, "other": "keep"})
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)

		snap := m.Logout(ctx)
		if snap.Authenticated() || snap.Loading || snap.Token != "" || snap.User != nil {
			t.Errorf("expected unauthenticated, got %+v", snap)
		}

		stored := store.Snapshot()
		if _, ok := stored[KeyToken]; ok {
			t.Error("expected token removed")
		}
		if _, ok := stored[KeyUser]; ok {
			t.Error("expected user removed")
		}
		if stored["other"] != "keep" {
			t.Error("expected unrelated keys to survive")
		}
	})

	t.Run("Logout Is Idempotent", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(map[string]string{KeyToken: "t1", KeyUser: storedUser}), okAuth(), nil)
		m.Restore(ctx)

		first := m.Logout(ctx)
		second := m.Logout(ctx)
		if first != second || second.Authenticated() {
			t.Errorf("expected identical unauthenticated snapshots, got %+v and %+v", first, second)
		}
	})

	t.Run("Logout With Store Failure", func(t *testing.T) {
		store := tu.NewMemoryStore(map[string]string{KeyToken: "t1", KeyUser: storedUser})
		m := NewManager(store, okAuth(), nil)
		m.Restore(ctx)
		store.RemoveErr = shared.ErrStore

		if snap := m.Logout(ctx); snap.Authenticated() {
			t.Errorf("expected unauthenticated regardless of store failure, got %+v", snap)
		}
	})

	t.Run("Login Waits For Restore", func(t *testing.T) {
		store := tu.NewMemoryStore(nil)
		m := NewManager(store, okAuth(), nil)

		done := make(chan Snapshot)
		go func() {
			snap, _ := m.Login(ctx, "a@b.com", "pw")
			done <- snap
		}()

		select {
		case <-done:
			t.Fatal("login must not complete before restore")
		case <-time.After(20 * time.Millisecond):
		}

		m.Restore(ctx)
		snap := <-done
		if !snap.Authenticated() {
			t.Fatalf("expected login to apply after restore, got %+v", snap)
		}
		if !m.Snapshot().Authenticated() {
			t.Error("restore must not overwrite the login")
		}
	})

	t.Run("Login Canceled Before Restore", func(t *testing.T) {
		auth := okAuth()
		m := NewManager(tu.NewMemoryStore(nil), auth, nil)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := m.Login(cctx, "a@b.com", "pw"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(auth.calls) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("Token", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(map[string]string{KeyToken: "t1", KeyUser: storedUser}), okAuth(), nil)
		if _, err := m.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated before restore, got %v", err)
		}

		m.Restore(ctx)
		tok, err := m.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.AccessToken != "t1" || tok.Type() != "Bearer" {
			t.Errorf("unexpected token %+v", tok)
		}

		m.Logout(ctx)
		if _, err := m.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
		}
	})

	t.Run("Snapshot Is A Copy", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(map[string]string{KeyToken: "t1", KeyUser: storedUser}), okAuth(), nil)
		m.Restore(ctx)

		snap := m.Snapshot()
		snap.User.Email = "changed@b.com"
		if m.Snapshot().User.Email != "a@b.com" {
			t.Error("mutating a snapshot must not change the session")
		}
	})

	t.Run("Subscribe", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(nil), okAuth(), nil)

		var mu sync.Mutex
		var states []string
		unsubscribe := m.Subscribe(func(s Snapshot) {
			mu.Lock()
			states = append(states, s.State())
			mu.Unlock()
		})

		m.Restore(ctx)
		m.Login(ctx, "a@b.com", "pw")
		unsubscribe()
		m.Logout(ctx)

		mu.Lock()
		defer mu.Unlock()
		want := []string{"unauthenticated", "authenticated"}
		if len(states) != len(want) {
			t.Fatalf("expected %v, got %v", want, states)
		}
		for i := range want {
			if states[i] != want[i] {
				t.Errorf("expected %v, got %v", want, states)
			}
		}
	})

	t.Run("Subscribe Drops Stale Snapshots", func(t *testing.T) {
		var got []string
		l := &listener{fn: func(s Snapshot) { got = append(got, s.State()) }}

		l.deliver(2, Snapshot{Token: "t1", User: &models.User{ID: "1", Email: "a@b.com"}})
		l.deliver(1, Snapshot{})
		l.deliver(3, Snapshot{})

		want := []string{"authenticated", "unauthenticated"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Subscribe Ends On Latest State", func(t *testing.T) {
		m := NewManager(tu.NewMemoryStore(nil), okAuth(), nil)
		m.Restore(ctx)

		var mu sync.Mutex
		var last Snapshot
		m.Subscribe(func(s Snapshot) {
			mu.Lock()
			last = s
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Logout(ctx)
			}()
		}
		wg.Wait()
		m.Login(ctx, "a@b.com", "pw")

		mu.Lock()
		defer mu.Unlock()
		if last.State() != m.Snapshot().State() {
			t.Errorf("expected listener to hold %s, got %s", m.Snapshot().State(), last.State())
		}
	})
}
