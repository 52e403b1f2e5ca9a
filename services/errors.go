package services

import "fmt"

// ValidationError marks bad caller input (missing, empty, or too short).
// It is never retried and maps to a 400 at the HTTP boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failure from one of the remote dependencies
// (embedding service, vector store, generation service). The embedding
// gateway retries transient instances internally before surfacing one.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigurationError marks a missing or invalid startup setting. It is fatal:
// the process refuses to serve rather than failing per-request.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}
