package screen

import (
	"errors"
	"fmt"

	"github.com/gerunddev/projecthub/internal/api"
)

// ErrMutationPending is returned when a form is submitted while its previous
// submission is still in flight.
var ErrMutationPending = errors.New("a change is already being saved")

// ValidationError is a client-side rejection. Nothing was sent to the server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LoadError is a failed fetch of data a screen needs to render.
type LoadError struct {
	Screen string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Screen, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MutationError is a failed create, update or delete. The form stays open.
type MutationError struct {
	Kind Kind
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// AuthError means the session is missing or expired. It is handled by
// signing out and redirecting, never in place.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err requires signing out.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// authOr promotes unauthorized responses to AuthError, otherwise wraps err
// with fallback.
func authOr(err error, fallback func(error) error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return &AuthError{Err: err}
	}
	return fallback(err)
}
