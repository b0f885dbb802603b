package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/taskr/internal/shared"
)

// genericTransportMessage is shown when a request never produced a service response.
const genericTransportMessage = "unable to reach server, check your connection and try again"

// APIError is a non-2xx response from the task service.
//
// Message holds the service's human-readable "message" field when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	return apiErr
}

// Error returns the service message verbatim when present.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Unwrap lets callers match every service rejection with [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Is reports 401 responses as [shared.ErrNotAuthenticated] and 404 as [shared.ErrTaskNotFound].
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrTaskNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// UserMessage converts an error from this package into the text a screen should display.
//
// A structured service message is preferred; transport failures get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	if errors.Is(err, shared.ErrTransport) {
		return genericTransportMessage
	}

	return err.Error()
}
