package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Handlers map these to distinct
// HTTP statuses; anything else is treated as a transient storage failure.
var (
	ErrQuotaExceeded      = errors.New("monthly submission limit reached")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUnknownTier        = errors.New("unknown subscription tier")
)

// ValidationError reports a rejected submission payload. It is returned
// before any write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
