package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

// API is the remote task collection.
type API interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, error)
	ToggleComplete(ctx context.Context, id string) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

// Syncer applies mutations to the remote service and patches the local [List] from each response.
//
// The list is only touched after the server accepts a call.
type Syncer struct {
	api    API
	list   *List
	logger *log.Logger
}

// NewSyncer creates a [Syncer]. A nil list starts empty.
func NewSyncer(api API, list *List, logger *log.Logger) *Syncer {
	if list == nil {
		list = NewList()
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Syncer{api: api, list: list, logger: logger}
}

func (s *Syncer) List() *List {
	return s.list
}

// Refresh re-fetches the full collection and replaces the list.
func (s *Syncer) Refresh(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.api.List(ctx)
	if err != nil {
		return nil, err
	}
	s.list.Replace(tasks)
	s.logger.Debug("tasks refreshed", "count", len(tasks))
	return s.list.Items(), nil
}

// Get fetches one task and patches it into the list.
func (s *Syncer) Get(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.list.Upsert(*t)
	return t, nil
}

// Create validates in before any request is sent.
func (s *Syncer) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.api.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.list.Upsert(*t)
	s.logger.Info("task created", "id", t.ID, "title", t.Title)
	return t, nil
}

func (s *Syncer) Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.api.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.list.Upsert(*t)
	s.logger.Info("task updated", "id", t.ID)
	return t, nil
}

// Toggle flips completion on the server and stores the returned row.
func (s *Syncer) Toggle(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.api.ToggleComplete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.list.Upsert(*t)
	return t, nil
}

func (s *Syncer) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	s.list.Remove(id)
	s.logger.Info("task deleted", "id", id)
	return nil
}
