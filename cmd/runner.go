package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskr/internal/repositories"
	"github.com/desertthunder/taskr/internal/services"
	"github.com/desertthunder/taskr/internal/session"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/desertthunder/taskr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The session store and API clients are opened lazily by the first command that needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	client  *services.Client
	session *session.Manager
	syncer  *tasks.Syncer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client // Nil builds one with the configured timeout
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tasksCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config when it exists. A missing file keeps the defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
		r.configPath = path
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	shared.SetLogLevel(r.logger, r.config.Log.Level)
	return ctx, nil
}

// After releases the session store.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// SetLogger replaces the logger used by the runner and by everything it opens afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close closes the session store if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.client = nil
	r.session = nil
	r.syncer = nil
	return err
}

// open connects the local session store, builds the API clients and restores the stored session.
//
// Auth requests go through an unauthenticated client; task requests carry the session's token.
func (r *Runner) open(ctx context.Context) error {
	if r.session != nil {
		return nil
	}

	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	opts := services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		UserAgent:  r.config.API.UserAgent,
		Timeout:    r.config.API.Timeout(),
		Logger:     shared.WithLogger(r.logger, "component", "api"),
	}

	r.db = db
	r.client = services.NewClient(opts)
	r.session = session.NewManager(
		repositories.NewKVRepository(db),
		services.NewAuthService(r.client),
		shared.WithLogger(r.logger, "component", "session"),
	)

	opts.Tokens = r.session
	r.syncer = tasks.NewSyncer(
		services.NewTaskService(services.NewClient(opts)),
		nil,
		shared.WithLogger(r.logger, "component", "tasks"),
	)

	go r.session.Restore(ctx)
	select {
	case <-r.session.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	r.logger.Debug("session restored", "state", r.session.Snapshot().State())
	return nil
}

// requireSession opens the store and fails unless a session was restored.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if !r.session.Snapshot().Authenticated() {
		return fmt.Errorf("%w: run 'taskr auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
