package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrUnauthenticated = fmt.Errorf("not authenticated")
	ErrAuthFailed      = fmt.Errorf("authentication failed")
	ErrTokenExpired    = fmt.Errorf("access token expired")

	// Pipeline errors. Remote-call adapters map failures onto one of these
	// so downstream stages switch on kind with errors.Is instead of matching
	// message text.
	ErrNotFound            = fmt.Errorf("not found")
	ErrInvalidReference    = fmt.Errorf("invalid reference")
	ErrQuotaExceeded       = fmt.Errorf("quota exceeded")
	ErrTransient           = fmt.Errorf("transient upstream failure")
	ErrInvalidAIResponse   = fmt.Errorf("invalid AI response")
	ErrConstraintViolation = fmt.Errorf("constraint violation")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
