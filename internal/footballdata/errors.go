package footballdata

import (
	"fmt"

	"football-buddy/internal/models"
)

const (
	KindUnreachable      = models.KindUnreachable
	KindClientError      = models.KindClientError
	KindServerError      = models.KindServerError
	KindMalformedPayload = models.KindMalformedPayload
)

// RemoteDataError is the failure of a single football-data.org call.
type RemoteDataError struct {
	Kind       string
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteDataError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Operation, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Kind, e.Err)
}

func (e *RemoteDataError) Unwrap() error {
	return e.Err
}

// ToolError drops the transport detail so the failure can travel inside a bundle.
func (e *RemoteDataError) ToolError() *models.ToolError {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return &models.ToolError{
		Kind:       e.Kind,
		StatusCode: e.StatusCode,
		Message:    msg,
	}
}

func newRemoteError(kind, operation string, status int, err error) *RemoteDataError {
	return &RemoteDataError{
		Kind:       kind,
		Operation:  operation,
		StatusCode: status,
		Err:        err,
	}
}
