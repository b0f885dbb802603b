package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrEmailTaken         = fmt.Errorf("email already registered")

	// Transport and API errors
	ErrTransport    = fmt.Errorf("unable to reach server")
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrTaskNotFound = fmt.Errorf("task not found")

	// Local persistence errors
	ErrStore       = fmt.Errorf("local store failure")
	ErrKeyNotFound = fmt.Errorf("key not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
