package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/taskr/internal/server"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the sandbox task service until interrupted. Accounts and tasks live in memory.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := host + ":" + strconv.Itoa(port)
	srv := server.New(server.ServerOpts{Logger: shared.WithLogger(r.logger, "component", "server")})

	r.logger.Info("serving sandbox task service", "url", "http://"+addr+"/api")
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}
