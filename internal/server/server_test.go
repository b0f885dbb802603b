package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/taskr/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(ServerOpts{BcryptCost: bcrypt.MinCost}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func registerUser(t *testing.T, srv *httptest.Server, email string) models.AuthResponse {
	t.Helper()
	resp := send(t, srv, http.MethodPost, "/api/auth/register", "", models.Credentials{Email: email, Password: "pw"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decode[models.AuthResponse](t, resp)
}

func TestAuthRoutes(t *testing.T) {
	t.Run("Register", func(t *testing.T) {
		srv := newTestServer(t)
		auth := registerUser(t, srv, "A@B.com")

		if auth.Token == "" {
			t.Error("expected a token")
		}
		if auth.User == nil || auth.User.ID == "" || auth.User.Email != "a@b.com" {
			t.Errorf("unexpected user: %+v", auth.User)
		}
	})

	t.Run("Register Duplicate", func(t *testing.T) {
		srv := newTestServer(t)
		registerUser(t, srv, "a@b.com")

		resp := send(t, srv, http.MethodPost, "/api/auth/register", "", models.Credentials{Email: "a@b.com", Password: "pw"})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
		if msg := decode[errorResponse](t, resp).Message; msg != "Email already registered" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("Register Validation", func(t *testing.T) {
		srv := newTestServer(t)
		tests := []models.Credentials{
			{Email: "", Password: "pw"},
			{Email: "a@b.com", Password: ""},
			{Email: "not-an-email", Password: "pw"},
		}
		for _, creds := range tests {
			resp := send(t, srv, http.MethodPost, "/api/auth/register", "", creds)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400 for %+v, got %d", creds, resp.StatusCode)
			}
		}
	})

	t.Run("Login", func(t *testing.T) {
		srv := newTestServer(t)
		registered := registerUser(t, srv, "a@b.com")

		resp := send(t, srv, http.MethodPost, "/api/auth/login", "", models.Credentials{Email: "a@b.com", Password: "pw"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		auth := decode[models.AuthResponse](t, resp)
		if auth.User.ID != registered.User.ID {
			t.Errorf("expected same user id, got %s and %s", auth.User.ID, registered.User.ID)
		}
	})

	t.Run("Login Invalid Credentials", func(t *testing.T) {
		srv := newTestServer(t)
		registerUser(t, srv, "a@b.com")

		for _, creds := range []models.Credentials{
			{Email: "a@b.com", Password: "wrong"},
			{Email: "nobody@b.com", Password: "pw"},
		} {
			resp := send(t, srv, http.MethodPost, "/api/auth/login", "", creds)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if msg := decode[errorResponse](t, resp).Message; msg != "Invalid credentials" {
				t.Errorf("unexpected message %q", msg)
			}
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := newTestServer(t)
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/login", bytes.NewBufferString("{"))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestTaskRoutes(t *testing.T) {
	t.Run("Requires Bearer Token", func(t *testing.T) {
		srv := newTestServer(t)

		for _, token := range []string{"", "bogus"} {
			resp := send(t, srv, http.MethodGet, "/api/tasks", token, nil)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401 for token %q, got %d", token, resp.StatusCode)
			}
		}
	})

	t.Run("Health Is Public", func(t *testing.T) {
		srv := newTestServer(t)
		if resp := send(t, srv, http.MethodGet, "/api/health", "", nil); resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		srv := newTestServer(t)
		auth := registerUser(t, srv, "a@b.com")

		resp := send(t, srv, http.MethodGet, "/api/tasks", auth.Token, nil)
		tasks := decode[[]models.Task](t, resp)
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("expected empty array, got %#v", tasks)
		}
	})

	t.Run("Lifecycle", func(t *testing.T) {
		srv := newTestServer(t)
		auth := registerUser(t, srv, "a@b.com")

		resp := send(t, srv, http.MethodPost, "/api/tasks", auth.Token, models.TaskInput{Title: "  Buy milk  "})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		created := decode[models.Task](t, resp)
		if created.ID == "" || created.Title != "Buy milk" || created.Priority != models.DefaultPriority {
			t.Fatalf("unexpected created task: %+v", created)
		}

		resp = send(t, srv, http.MethodPut, "/api/tasks/"+created.ID, auth.Token, models.TaskInput{Title: "Buy oat milk", Priority: models.PriorityHigh})
		updated := decode[models.Task](t, resp)
		if updated.Title != "Buy oat milk" || updated.Priority != models.PriorityHigh {
			t.Errorf("unexpected updated task: %+v", updated)
		}

		resp = send(t, srv, http.MethodPatch, "/api/tasks/"+created.ID+"/complete", auth.Token, nil)
		if toggled := decode[models.Task](t, resp); !toggled.Completed {
			t.Error("expected task to be completed")
		}

		resp = send(t, srv, http.MethodGet, "/api/tasks/"+created.ID, auth.Token, nil)
		if got := decode[models.Task](t, resp); !got.Completed || got.Title != "Buy oat milk" {
			t.Errorf("unexpected fetched task: %+v", got)
		}

		resp = send(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, auth.Token, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("expected 204, got %d", resp.StatusCode)
		}

		resp = send(t, srv, http.MethodGet, "/api/tasks/"+created.ID, auth.Token, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
		}
		if msg := decode[errorResponse](t, resp).Message; msg != "Task not found" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		srv := newTestServer(t)
		auth := registerUser(t, srv, "a@b.com")

		for _, in := range []models.TaskInput{{Title: " "}, {Title: "ok", Priority: "someday"}} {
			resp := send(t, srv, http.MethodPost, "/api/tasks", auth.Token, in)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400 for %+v, got %d", in, resp.StatusCode)
			}
		}
	})

	t.Run("Tasks Are Scoped To Their Owner", func(t *testing.T) {
		srv := newTestServer(t)
		alice := registerUser(t, srv, "alice@b.com")
		bob := registerUser(t, srv, "bob@b.com")

		resp := send(t, srv, http.MethodPost, "/api/tasks", alice.Token, models.TaskInput{Title: "Secret"})
		task := decode[models.Task](t, resp)

		if resp := send(t, srv, http.MethodGet, "/api/tasks/"+task.ID, bob.Token, nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 for another user's task, got %d", resp.StatusCode)
		}
		if resp := send(t, srv, http.MethodDelete, "/api/tasks/"+task.ID, bob.Token, nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 deleting another user's task, got %d", resp.StatusCode)
		}

		resp = send(t, srv, http.MethodGet, "/api/tasks", bob.Token, nil)
		if tasks := decode[[]models.Task](t, resp); len(tasks) != 0 {
			t.Errorf("expected bob to see no tasks, got %d", len(tasks))
		}
	})

	t.Run("List Preserves Creation Order", func(t *testing.T) {
		srv := newTestServer(t)
		auth := registerUser(t, srv, "a@b.com")

		for _, title := range []string{"one", "two", "three"} {
			send(t, srv, http.MethodPost, "/api/tasks", auth.Token, models.TaskInput{Title: title})
		}

		resp := send(t, srv, http.MethodGet, "/api/tasks", auth.Token, nil)
		tasks := decode[[]models.Task](t, resp)
		if len(tasks) != 3 || tasks[0].Title != "one" || tasks[2].Title != "three" {
			t.Errorf("unexpected order: %+v", tasks)
		}
	})
}

func TestStore(t *testing.T) {
	t.Run("Delete Keeps Remaining Order", func(t *testing.T) {
		s := NewStore(bcrypt.MinCost)
		auth, err := s.Register("a@b.com", "pw")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		uid := auth.User.ID

		var ids []string
		for _, title := range []string{"one", "two", "three"} {
			task, _ := s.CreateTask(uid, models.TaskInput{Title: title})
			ids = append(ids, task.ID)
		}

		if err := s.DeleteTask(uid, ids[1]); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		tasks := s.ListTasks(uid)
		if len(tasks) != 2 || tasks[0].Title != "one" || tasks[1].Title != "three" {
			t.Errorf("unexpected tasks after delete: %+v", tasks)
		}
	})

	t.Run("Passwords Are Hashed", func(t *testing.T) {
		s := NewStore(bcrypt.MinCost)
		if _, err := s.Register("a@b.com", "pw"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if string(s.accounts["a@b.com"].hash) == "pw" {
			t.Error("expected password to be hashed")
		}
	})
}
