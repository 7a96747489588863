package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the error shape surfaced by the remote configuration API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Method != "" || e.Path != "" {
		fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)
	}
	fmt.Fprintf(&b, "%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " (%s)", e.ErrorCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// AsAPIError finds the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError describes structural problems in the desired state of one
// resource type. It is never retried.
type ValidationError struct {
	ResourceType string
	Problems     []string
	// DuplicateKeys lists identity keys declared more than once.
	DuplicateKeys []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems)+1)
	if len(e.DuplicateKeys) > 0 {
		parts = append(parts, fmt.Sprintf("names must be unique, duplicated: %s", strings.Join(e.DuplicateKeys, ", ")))
	}
	parts = append(parts, e.Problems...)
	return fmt.Sprintf("invalid %s configuration: %s", e.ResourceType, strings.Join(parts, "; "))
}

func (e *ValidationError) HasProblems() bool {
	return len(e.Problems) > 0 || len(e.DuplicateKeys) > 0
}
