// internal/common/errors/handler.go
package errors

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrorHandler turns a failed pipeline run into a log entry and a user-facing sentence.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Describe logs err and returns the message shown to the user. The caller keeps running.
func (h *ErrorHandler) Describe(err error) string {
	stdErr := h.normalizeError(err)

	h.logger.Error("pipeline run failed", map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	return UserMessage(stdErr.Code)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &StandardError{
			Code:      ErrCodeLLMTimeout,
			Message:   "Request timed out",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
			cause:     err,
		}
	}

	return NewInternalError(err)
}

// UserMessage maps an error code to the sentence printed by the session driver.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrCodeLLMTimeout:
		return "Sorry, the assistant took too long to respond. Please try again."
	case ErrCodeLLMRequestFailed:
		return "Sorry, the assistant is unavailable right now. Please try again in a moment."
	case ErrCodeStageOutputInvalid:
		return "Sorry, I couldn't work out how to answer that. Try rephrasing the question."
	case ErrCodeConfigInvalid:
		return "The assistant is misconfigured. Check the API keys and configuration."
	default:
		return "Sorry, something went wrong while answering that question."
	}
}
