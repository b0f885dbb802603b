package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/taskr/internal/models"
	"github.com/desertthunder/taskr/internal/shared"
)

// AuthService exchanges credentials for a bearer token.
type AuthService struct {
	client *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{client: c}
}

// Login posts to /auth/login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/login", email, password)
}

// Register posts to /auth/register. A successful registration is also a login.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/register", email, password)
}

func (s *AuthService) authenticate(ctx context.Context, path, email, password string) (*models.AuthResponse, error) {
	creds := models.Credentials{Email: shared.NormalizeEmail(email), Password: password}

	var resp models.AuthResponse
	if err := s.client.doJSON(ctx, http.MethodPost, path, creds, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}
