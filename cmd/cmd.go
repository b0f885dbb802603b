// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/taskr/internal/formatter"
	"github.com/urfave/cli/v3"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Sources:  cli.EnvVars("TASKR_PASSWORD"),
			Required: true,
		},
	}
}

// taskFlags are shared by add and edit. Only flags that were set are applied on edit.
func taskFlags(titleRequired bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Task title",
			Required: titleRequired,
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
			Usage:   "Task description",
		},
		&cli.StringFlag{
			Name:    "priority",
			Aliases: []string{"p"},
			Usage:   "Priority (low, med, high, urgent)",
		},
		&cli.StringFlag{
			Name:  "due",
			Usage: "Due date as YYYY-MM-DD; empty clears it",
		},
	}
}

// setupCommand handles setup operations for the local session store.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the session lifecycle
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and store the session locally",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "register",
				Usage:  "Create an account and log in",
				Flags:  credentialFlags(),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored session and check service health",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// tasksCommand handles task operations against the service
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"task", "t"},
		Usage:   "Task operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your tasks",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "pending",
						Usage: "Only show tasks that are not completed",
					},
					&cli.StringFlag{
						Name:  "priority",
						Usage: "Only show tasks with this priority",
					},
				},
				Action: r.TasksList,
			},
			{
				Name:      "get",
				Usage:     "Show a single task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TasksGet,
			},
			{
				Name:   "add",
				Usage:  "Create a task",
				Flags:  taskFlags(true),
				Action: r.TasksAdd,
			},
			{
				Name:      "edit",
				Usage:     "Update a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: append(taskFlags(false), &cli.BoolFlag{
					Name:  "completed",
					Usage: "Set the completion flag",
				}),
				Action: r.TasksEdit,
			},
			{
				Name:      "done",
				Usage:     "Toggle a task's completion",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.TasksDone,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.TasksRemove,
			},
			{
				Name:  "export",
				Usage: "Export your tasks to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (" + strings.Join(formatter.Formats, ", ") + ")",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path; - writes to stdout",
					},
				},
				Action: r.TasksExport,
			},
			{
				Name:      "import",
				Usage:     "Create tasks from a CSV or JSON file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests (max 10)",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
				},
				Action: r.TasksImport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive task management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive task manager",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs are written",
				Value: "./tmp/taskr-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the sandbox task service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run a local in-memory task service for development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}
