package main

import (
	"context"
	"os"

	"github.com/desertthunder/taskr/internal/services"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.3.0"

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Fatal(services.UserMessage(err))
	}
}

// newApp builds the root command. Configuration is loaded before any subcommand runs
// and the session store is closed after it returns.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "taskr",
		Usage:   "Manage your tasks from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}
