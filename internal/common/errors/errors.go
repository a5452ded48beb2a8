// Package errors provides standardized error handling for pipeline runs.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed   ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeStageOutputInvalid ErrorCode = "STAGE_OUTPUT_INVALID"

	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Language model timeout",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMRequestFailedError creates a retryable LLM request error.
func NewLLMRequestFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Language model request failed",
		Details:   fmt.Sprintf("stage: %s, error: %v", stage, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStageOutputInvalidError creates a non-retryable stage contract error.
// Sports-data failures never use this path; they travel inside the fetched bundle.
func NewStageOutputInvalidError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageOutputInvalid,
		Message:   "Stage output violated its contract",
		Details:   fmt.Sprintf("stage: %s, error: %v", stage, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeLLMTimeout, ErrCodeLLMRequestFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)

	switch {
	case strings.HasPrefix(codeStr, "LLM_"):
		return "LANGUAGE_MODEL"
	case strings.HasPrefix(codeStr, "STAGE_"):
		return "PIPELINE"
	case strings.HasPrefix(codeStr, "CONFIG_"):
		return "CONFIGURATION"
	default:
		return "SYSTEM"
	}
}
