package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoContent     = errors.New("no content available")
	ErrStoreNotReady = errors.New("store not initialized")
)

// ProviderError wraps a failure reported by the model backend API so callers
// can branch on the HTTP status without string matching.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsAuthError reports whether the provider rejected our credentials.
func (e *ProviderError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
