// Package errors provides standardized error handling for the orchestration
// pipeline and its collaborators.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Client errors: abort the request.
	ErrCodePersonaNotFound ErrorCode = "PERSONA_NOT_FOUND"
	ErrCodePersonaInvalid  ErrorCode = "PERSONA_INVALID"

	// Degraded-dependency errors: swallowed at the pipeline boundary.
	ErrCodeEmbeddingFailed        ErrorCode = "EMBEDDING_FAILED"
	ErrCodeVectorStoreUnavailable ErrorCode = "VECTOR_STORE_UNAVAILABLE"
	ErrCodeVectorSearchFailed     ErrorCode = "VECTOR_SEARCH_FAILED"
	ErrCodeToolExecutionFailed    ErrorCode = "TOOL_EXECUTION_FAILED"
	ErrCodeSpeechSynthesisFailed  ErrorCode = "SPEECH_SYNTHESIS_FAILED"

	// Startup / configuration errors.
	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"
)

// ErrPersonaNotFound is the sentinel for unresolved persona ids. Handlers
// match on it to map the failure to a 400.
var ErrPersonaNotFound = errors.New("persona not found")

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	wrapped error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.wrapped
}

// NewPersonaNotFoundError creates the client error for an unresolved persona
// id. It wraps ErrPersonaNotFound so callers can errors.Is against it.
func NewPersonaNotFoundError(personaID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePersonaNotFound,
		Message:   fmt.Sprintf("Unknown persona: %s", personaID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		wrapped:   ErrPersonaNotFound,
	}
}

// NewPersonaInvalidError creates a non-retryable persona validation error.
func NewPersonaInvalidError(personaID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePersonaInvalid,
		Message:   fmt.Sprintf("Invalid persona configuration: %s", personaID),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmbeddingFailedError creates a retryable embedding provider error.
func NewEmbeddingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "Embedding provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// NewVectorStoreUnavailableError creates a retryable vector store connection error.
func NewVectorStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVectorStoreUnavailable,
		Message:   "Vector store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// NewVectorSearchFailedError creates a retryable similarity search error.
func NewVectorSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVectorSearchFailed,
		Message:   "Similarity search error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// NewToolExecutionFailedError creates a retryable collaborator error.
func NewToolExecutionFailedError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolExecutionFailed,
		Message:   fmt.Sprintf("Tool '%s' execution error", tool),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// NewSpeechSynthesisFailedError creates the best-effort speech error; callers
// drop the media field and move on.
func NewSpeechSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSpeechSynthesisFailed,
		Message:   "Speech synthesis error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// NewCatalogLoadFailedError creates a non-retryable catalog load error.
func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Offer catalog load failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		wrapped:   err,
	}
}

// IsClientError reports whether the error should surface as a 4xx.
func IsClientError(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code == ErrCodePersonaNotFound || se.Code == ErrCodePersonaInvalid
	}
	return errors.Is(err, ErrPersonaNotFound)
}
