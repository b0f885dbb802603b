package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/taskr/internal/formatter"
	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/desertthunder/taskr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TasksList fetches the user's tasks, optionally filtered by completion and priority.
func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	var priority models.Priority
	if cmd.IsSet("priority") {
		p, err := models.ParsePriority(cmd.String("priority"))
		if err != nil {
			return err
		}
		priority = p
	}

	if _, err := r.syncer.Refresh(ctx); err != nil {
		return err
	}

	pending := cmd.Bool("pending")
	items := r.syncer.List().Filter(func(t models.Task) bool {
		if pending && t.Completed {
			return false
		}
		return priority == "" || t.Priority == priority
	})

	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(items, cmd.Bool("pretty"))
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.writePlain("%s\n", data)
	}

	if len(items) == 0 {
		return r.writePlain("No tasks yet. Add one with 'taskr tasks add --title ...'\n")
	}

	r.writePlainHeader(fmt.Sprintf("Tasks (%d)", len(items)))
	for _, t := range items {
		r.writePlain("%s %-36s %-6s due %-10s %s\n",
			shared.CheckMark(t.Completed), t.ID, t.Priority, shared.FormatDueDate(t.DueDate), t.Title)
	}
	return nil
}

// TasksGet prints a single task.
func (r *Runner) TasksGet(ctx context.Context, cmd *cli.Command) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	task, err := r.syncer.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(task, cmd.Bool("pretty"))
	}

	r.writePlainHeader(task.Title)
	r.writePlain("ID:          %s\n", task.ID)
	r.writePlain("Status:      %s\n", completionLabel(task.Completed))
	r.writePlain("Priority:    %s\n", task.Priority)
	r.writePlain("Due:         %s\n", shared.FormatDueDate(task.DueDate))
	if task.Description != "" {
		r.writePlain("Description: %s\n", task.Description)
	}
	return nil
}

// TasksAdd creates a task from flags.
func (r *Runner) TasksAdd(ctx context.Context, cmd *cli.Command) error {
	in, err := applyTaskFlags(cmd, models.TaskInput{})
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	task, err := r.syncer.Create(ctx, in)
	if err != nil {
		return err
	}

	r.logger.Info("task created", "id", task.ID)
	return r.writePlain("✓ Created %s: %s\n", task.ID, task.Title)
}

// TasksEdit fetches a task, applies the flags that were set, and sends the full record back.
func (r *Runner) TasksEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	current, err := r.syncer.Get(ctx, id)
	if err != nil {
		return err
	}

	in, err := applyTaskFlags(cmd, current.Input())
	if err != nil {
		return err
	}

	task, err := r.syncer.Update(ctx, id, in)
	if err != nil {
		return err
	}

	if cmd.IsSet("completed") && cmd.Bool("completed") != task.Completed {
		if task, err = r.syncer.Toggle(ctx, id); err != nil {
			return err
		}
	}

	r.logger.Info("task updated", "id", task.ID)
	return r.writePlain("✓ Updated %s: %s\n", task.ID, task.Title)
}

// TasksDone flips a task's completion flag.
func (r *Runner) TasksDone(ctx context.Context, cmd *cli.Command) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	task, err := r.syncer.Toggle(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s %s (%s)\n", shared.CheckMark(task.Completed), task.Title, completionLabel(task.Completed))
}

// TasksRemove deletes a task.
func (r *Runner) TasksRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if err := r.syncer.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("task deleted", "id", id)
	return r.writePlain("✓ Deleted %s\n", id)
}

// TasksExport writes every task in the chosen format.
func (r *Runner) TasksExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	if err := r.requireSession(ctx); err != nil {
		return err
	}

	items, err := r.syncer.Refresh(ctx)
	if err != nil {
		return err
	}

	if output == "-" {
		data, err := formatter.Export(items, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	path, err := formatter.WriteExport(items, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("tasks exported", "path", path, "count", len(items))
	return r.writePlain("✓ Exported %d tasks to %s\n", len(items), path)
}

// TasksImport creates tasks from a CSV or JSON file through the rate-limited worker pool.
func (r *Runner) TasksImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: import file path", shared.ErrMissingArgument)
	}

	inputs, err := formatter.ReadImportFile(path)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := r.syncer.Import(ctx, inputs, tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}, progress)
	close(progress)
	wg.Wait()

	if result != nil {
		r.writePlainHeader("Import")
		r.writePlain("Created: %d of %d\n", result.Created, result.Total)
		for _, item := range result.Results {
			if item.Error != nil {
				r.writePlain("✗ row %d %q: %v\n", item.Index+1, item.Input.Title, item.Error)
			}
		}
	}
	return err
}

func taskID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	return id, nil
}

// applyTaskFlags overlays the task flags that were set onto in.
func applyTaskFlags(cmd *cli.Command, in models.TaskInput) (models.TaskInput, error) {
	if cmd.IsSet("title") {
		in.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		in.Description = cmd.String("description")
	}
	if cmd.IsSet("priority") {
		p, err := models.ParsePriority(cmd.String("priority"))
		if err != nil {
			return in, err
		}
		in.Priority = p
	}
	if cmd.IsSet("due") {
		due, err := shared.ParseDueDate(cmd.String("due"))
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}

	in = in.Normalize()
	return in, in.Validate()
}

func completionLabel(done bool) string {
	if done {
		return "completed"
	}
	return "pending"
}
