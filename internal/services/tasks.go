package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

// TaskService implements the task endpoints for the authenticated user.
type TaskService struct {
	client *Client
}

func NewTaskService(c *Client) *TaskService {
	return &TaskService{client: c}
}

// List returns the full current collection. A null body is treated as empty.
func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.client.doJSON(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	path, err := taskPath(id, "")
	if err != nil {
		return nil, err
	}
	return s.one(ctx, http.MethodGet, path, nil)
}

// Create returns the canonical stored task.
func (s *TaskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	return s.one(ctx, http.MethodPost, "/tasks", in)
}

// Update replaces the editable fields of a task.
func (s *TaskService) Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	path, err := taskPath(id, "")
	if err != nil {
		return nil, err
	}
	return s.one(ctx, http.MethodPut, path, in)
}

// ToggleComplete flips the completion flag on the server.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (*models.Task, error) {
	path, err := taskPath(id, "/complete")
	if err != nil {
		return nil, err
	}
	return s.one(ctx, http.MethodPatch, path, nil)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	path, err := taskPath(id, "")
	if err != nil {
		return err
	}
	_, err = s.client.Do(ctx, http.MethodDelete, path, nil)
	return err
}

func (s *TaskService) one(ctx context.Context, method, path string, body any) (*models.Task, error) {
	var task models.Task
	if err := s.client.doJSON(ctx, method, path, body, &task); err != nil {
		return nil, err
	}
	if task.ID == "" {
		return nil, fmt.Errorf("%w: response task has no id", shared.ErrAPIRequest)
	}
	return &task, nil
}

func taskPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	return "/tasks/" + url.PathEscape(id) + suffix, nil
}
