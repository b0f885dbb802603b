package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/taskr/internal/models"
	"golang.org/x/time/rate"
)

// ImportOpts contains configuration for bulk task imports.
type ImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// ImportItemResult is the outcome of creating one input.
type ImportItemResult struct {
	Index int          // Position of the input in the original slice
	Input models.TaskInput
	Task  *models.Task // Created task, nil on failure
	Error error
}

// ImportResult summarizes a bulk import. Results are ordered by input index.
type ImportResult struct {
	Total   int
	Created int
	Failed  int
	Results []ImportItemResult
}

type importJob struct {
	index int
	input models.TaskInput
}

// Import creates many tasks concurrently with rate limiting and progress tracking.
//
// Inputs that fail validation are recorded without a request. Failed creates are collected and not retried.
// Cancelling ctx stops dispatching; inputs never sent are reported with the context error.
func (s *Syncer) Import(
	ctx context.Context,
	inputs []models.TaskInput,
	opts ImportOpts,
	prog chan<- ProgressUpdate,
) (*ImportResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	total := len(inputs)
	result := &ImportResult{Total: total, Results: make([]ImportItemResult, total)}

	sendProgress(prog, validatingUpdate(total))

	valid := make([]importJob, 0, total)
	for i, in := range inputs {
		in = in.Normalize()
		result.Results[i] = ImportItemResult{Index: i, Input: in}
		if err := in.Validate(); err != nil {
			result.Results[i].Error = err
			sendProgress(prog, invalidInputUpdate(i+1, total, err))
			continue
		}
		valid = append(valid, importJob{index: i, input: in})
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob)
	results := make(chan ImportItemResult, len(valid))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go s.importWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, job := range valid {
			select {
			case <-ctx.Done():
				for _, skipped := range valid[i:] {
					results <- ImportItemResult{Index: skipped.index, Input: skipped.input, Error: ctx.Err()}
				}
				return
			case jobs <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.Index] = res

		if res.Error == nil {
			sendProgress(prog, createdUpdate(completed, len(valid), res.Task.Title))
		} else {
			sendProgress(prog, createFailedUpdate(completed, len(valid), res.Input.Title, res.Error))
		}
	}

	for _, r := range result.Results {
		if r.Error == nil && r.Task != nil {
			result.Created++
		} else {
			result.Failed++
		}
	}

	sendProgress(prog, completeUpdate(result))
	s.logger.Info("import finished", "total", total, "created", result.Created, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted: %w", err)
	}
	return result, nil
}

// importWorker creates tasks from the jobs channel until it closes.
func (s *Syncer) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan importJob,
	results chan<- ImportItemResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := ImportItemResult{Index: job.index, Input: job.input}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		task, err := s.api.Create(ctx, job.input)
		if err != nil {
			res.Error = fmt.Errorf("failed to create task: %w", err)
		} else {
			res.Task = task
			s.list.Upsert(*task)
		}
		results <- res
	}
}
