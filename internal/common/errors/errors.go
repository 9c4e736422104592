// Package errors provides standardized error handling for the agent and its
// workflow worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchFailed  ErrorCode = "FETCH_FAILED"
	ErrCodeFetchTimeout ErrorCode = "FETCH_TIMEOUT"

	ErrCodeInvalidOutputFormat ErrorCode = "INVALID_OUTPUT_FORMAT"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeConfigInvalid       ErrorCode = "CONFIG_INVALID"

	ErrCodeUnsupportedAIProvider ErrorCode = "UNSUPPORTED_AI_PROVIDER"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed    ErrorCode = "LLM_SYNTHESIS_FAILED"

	ErrCodeGatheringFailed ErrorCode = "INTELLIGENCE_GATHERING_FAILED"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any StandardError carrying the same code, so callers can write
// errors.Is(err, &StandardError{Code: ErrCodeLLMTimeout}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchFailedError reports a provider fetch that did not produce usable content.
func NewFetchFailedError(subject string, err error) *StandardError {
	return newError(ErrCodeFetchFailed, "Data source fetch failed", err.Error(), true).
		WithMetadata("subject", subject)
}

// NewFetchTimeoutError reports a provider fetch that exceeded its deadline.
func NewFetchTimeoutError(subject string) *StandardError {
	return newError(ErrCodeFetchTimeout, "Data source fetch timeout", "request exceeded timeout", true).
		WithMetadata("subject", subject)
}

// NewInvalidOutputFormatError rejects an unknown output format selector.
func NewInvalidOutputFormatError(format string) *StandardError {
	return newError(ErrCodeInvalidOutputFormat, "Invalid output format",
		fmt.Sprintf("format %q must be one of text, json, markdown", format), false)
}

// NewInvalidInputError rejects malformed caller input.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false)
}

// NewConfigInvalidError reports an unreadable or malformed configuration file.
func NewConfigInvalidError(err error) *StandardError {
	return newError(ErrCodeConfigInvalid, "Configuration could not be loaded", err.Error(), false)
}

// NewUnsupportedAIProviderError rejects an ai_provider nobody implements.
func NewUnsupportedAIProviderError(provider string) *StandardError {
	return newError(ErrCodeUnsupportedAIProvider, "Unsupported AI provider",
		fmt.Sprintf("provider: %s", provider), false)
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM summarization timeout", "LLM call exceeded timeout", true)
}

// NewLLMSynthesisFailedError creates a retryable LLM error.
func NewLLMSynthesisFailedError(err error) *StandardError {
	return newError(ErrCodeLLMSynthesisFailed, "LLM summarization API error", err.Error(), true)
}

// NewGatheringFailedError wraps an unexpected failure inside a run.
func NewGatheringFailedError(details string) *StandardError {
	return newError(ErrCodeGatheringFailed, "Intelligence gathering failed", details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeFetchFailed,
		ErrCodeLLMSynthesisFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeFetchTimeout,
		ErrCodeTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// GetErrorCategory groups codes for dashboards and logs.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidOutputFormat, ErrCodeInvalidInput:
		return "VALIDATION"
	case ErrCodeConfigInvalid, ErrCodeUnsupportedAIProvider:
		return "CONFIGURATION"
	case ErrCodeFetchFailed, ErrCodeFetchTimeout:
		return "DATA_SOURCE"
	case ErrCodeLLMTimeout, ErrCodeLLMSynthesisFailed:
		return "AI_SERVICE"
	case ErrCodeExternalService, ErrCodeTimeout, ErrCodeResourceNotFound, ErrCodeAuthentication:
		return "INTEGRATION"
	default:
		return "INTERNAL"
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: stdErr.Metadata,
	}
}
