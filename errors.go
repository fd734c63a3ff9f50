package imageedit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrMalformedEncoding is returned when a data URL has no "data:" prefix
	// or no comma between header and payload.
	ErrMalformedEncoding = errors.New("malformed image encoding")

	// ErrNoImageProduced is returned when a round trip succeeds but the
	// model returned no image.
	ErrNoImageProduced = errors.New("no image produced")

	// ErrStorageNotConfigured is returned when storage operations are attempted
	// without a configured storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")
)

// ValidationError reports input rejected before anything is dispatched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EncodingError reports a data URL that could not be decoded.
type EncodingError struct {
	Input string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%v (input %q)", e.Err, truncate(e.Input, 32))
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps a failed call to the generation provider.
// Hint is set when the failure looks like a transient overload.
type UpstreamError struct {
	Hint string
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed: %s. Original error: %v", e.Hint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsValidationError reports whether err was raised while checking input,
// including undecodable images.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	var eErr *EncodingError
	return errors.As(err, &vErr) || errors.As(err, &eErr)
}

// transientPatterns are failure texts the provider emits when it is overloaded,
// typically with several input images.
var transientPatterns = []string{
	"500 Internal Server Error",
	"An internal error has occurred",
	"Error 500",
}

// OverloadHint is attached to upstream failures that look like transient overload.
const OverloadHint = "the model returned an internal server error, which may happen when processing multiple images; " +
	"try with fewer images or a simpler prompt"

// NewUpstreamError wraps err, adding a hint when it matches a known transient failure.
// Errors that are already classified are returned unchanged.
func NewUpstreamError(err error) error {
	if err == nil {
		return nil
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) || IsRateLimitError(err) || IsValidationError(err) {
		return err
	}

	e := &UpstreamError{Err: err}
	msg := err.Error()
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			e.Hint = OverloadHint
			break
		}
	}
	return e
}

// HTTPStatus maps an error to the status a transport should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusBadRequest
	case IsRateLimitError(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
