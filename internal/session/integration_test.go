package session_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/repositories"
	"github.com/desertthunder/taskr/internal/server"
	"github.com/desertthunder/taskr/internal/services"
	"github.com/desertthunder/taskr/internal/session"
	"github.com/desertthunder/taskr/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	kv      *repositories.KVRepository
	manager *session.Manager
	tasks   *services.TaskService
	sandbox *server.Server
}

// newHarness wires a manager, a sqlite store and the REST client against a sandbox server.
func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.OpenStore(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sandbox := server.New(server.ServerOpts{BcryptCost: bcrypt.MinCost})
	srv := httptest.NewServer(sandbox.Handler())
	t.Cleanup(srv.Close)

	kv := repositories.NewKVRepository(db)

	// Login and register go out unauthenticated; task requests carry the session token.
	base := srv.URL + "/api"
	manager := session.NewManager(kv, services.NewAuthService(services.NewClient(services.ClientOpts{BaseURL: base})), nil)
	client := services.NewClient(services.ClientOpts{BaseURL: base, Tokens: manager})

	return &harness{kv: kv, manager: manager, tasks: services.NewTaskService(client), sandbox: sandbox}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("Fresh Install", func(t *testing.T) {
		h := newHarness(t)

		if !h.manager.Snapshot().Loading {
			t.Fatal("expected loading before restore")
		}
		snap := h.manager.Restore(ctx)
		if snap.Loading || snap.Authenticated() {
			t.Errorf("expected unauthenticated, got %+v", snap)
		}

		keys, err := h.kv.Keys(ctx)
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("expected no stored keys, got %v", keys)
		}
	})

	t.Run("Register Then Login Persists Session", func(t *testing.T) {
		h := newHarness(t)
		h.manager.Restore(ctx)

		registered, err := h.manager.Register(ctx, "a@b.com", "pw")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		h.manager.Logout(ctx)

		snap, err := h.manager.Login(ctx, "a@b.com", "pw")
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		if !snap.Authenticated() || snap.User.ID != registered.User.ID {
			t.Errorf("unexpected session %+v", snap)
		}

		token, _ := h.kv.Get(ctx, session.KeyToken)
		if token != snap.Token {
			t.Errorf("expected stored token %s, got %s", snap.Token, token)
		}
		user, _ := h.kv.Get(ctx, session.KeyUser)
		if !strings.Contains(user, `"email":"a@b.com"`) {
			t.Errorf("unexpected stored user %s", user)
		}
	})

	t.Run("Restore From Store", func(t *testing.T) {
		h := newHarness(t)
		h.manager.Restore(ctx)
		if _, err := h.manager.Register(ctx, "a@b.com", "pw"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}

		again := session.NewManager(h.kv, nil, nil)
		snap := again.Restore(ctx)
		if !snap.Authenticated() || snap.User.Email != "a@b.com" {
			t.Errorf("expected restored session, got %+v", snap)
		}
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		h := newHarness(t)
		h.manager.Restore(ctx)
		h.manager.Register(ctx, "a@b.com", "pw")
		before := h.manager.Snapshot()

		_, err := h.manager.Login(ctx, "a@b.com", "wrong")
		if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
			t.Fatalf("expected Invalid credentials, got %v", err)
		}
		if after := h.manager.Snapshot(); after.Token != before.Token {
			t.Error("expected session to be unchanged")
		}
	})

	t.Run("Bearer Token Follows Session", func(t *testing.T) {
		h := newHarness(t)
		h.manager.Restore(ctx)

		if _, err := h.tasks.List(ctx); err == nil || services.UserMessage(err) != "Unauthorized" {
			t.Errorf("expected Unauthorized without a session, got %v", err)
		}

		h.manager.Register(ctx, "a@b.com", "pw")
		tasks, err := h.tasks.List(ctx)
		if err != nil {
			t.Fatalf("expected authorized request, got %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected empty list, got %d", len(tasks))
		}

		created, err := h.tasks.Create(ctx, models.TaskInput{Title: "Buy milk", Priority: models.PriorityLow})
		if err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		if created.Title != "Buy milk" {
			t.Errorf("unexpected task %+v", created)
		}

		h.manager.Logout(ctx)
		if _, err := h.tasks.List(ctx); err == nil {
			t.Error("expected request after logout to be rejected")
		}
	})
}
