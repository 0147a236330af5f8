package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal server
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")

	// Store lifecycle errors
	ErrStoreClosed = errors.New("store closed")

	// Backend errors
	ErrProviderUnavailable = errors.New("auth provider unavailable")
	ErrTimeout             = errors.New("timeout")

	// Tenant record errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
