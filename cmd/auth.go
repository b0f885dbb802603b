package main

import (
	"context"
	"net/http"

	"github.com/desertthunder/taskr/internal/services"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a session and stores it locally.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	snap, err := r.session.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("login succeeded", "email", snap.User.Email)
	return r.writePlain("✓ Logged in as %s\n", snap.User.Email)
}

// AuthRegister creates an account; the new session is stored like a login.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	snap, err := r.session.Register(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("registration succeeded", "email", snap.User.Email)
	return r.writePlain("✓ Registered and logged in as %s\n", snap.User.Email)
}

// AuthLogout removes the stored session. It succeeds even when nobody is logged in.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	was := r.session.Snapshot()
	r.session.Logout(ctx)

	if was.User == nil {
		return r.writePlain("Not logged in\n")
	}
	return r.writePlain("✓ Logged out %s\n", was.User.Email)
}

type authStatus struct {
	State   string `json:"state"`
	Email   string `json:"email,omitempty"`
	BaseURL string `json:"baseUrl"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// AuthStatus reports the restored session and whether the service answers /health.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	snap := r.session.Snapshot()
	status := authStatus{State: snap.State(), BaseURL: r.client.BaseURL()}
	if snap.User != nil {
		status.Email = snap.User.Email
	}

	if _, err := r.client.Do(ctx, http.MethodGet, "/health", nil); err != nil {
		r.logger.Debug("health check failed", "error", err)
		status.Message = services.UserMessage(err)
	} else {
		status.Healthy = true
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Session")
	if status.Email != "" {
		r.writePlain("Authentication: ✓ %s\n", status.Email)
	} else {
		r.writePlain("Authentication: ✗ Not logged in\n")
	}
	r.writePlain("Service: %s\n", status.BaseURL)
	if status.Healthy {
		return r.writePlain("Health: ✓ Service is healthy\n")
	}
	return r.writePlain("Health: ✗ %s\n", status.Message)
}
