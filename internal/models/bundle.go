// internal/models/bundle.go
package models

import "encoding/json"

// Remote failure kinds.
const (
	KindUnreachable      = "unreachable"
	KindClientError      = "client_error"
	KindServerError      = "server_error"
	KindMalformedPayload = "malformed_payload"
)

type ToolError struct {
	Kind       string `json:"kind"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
}

// ToolResult is exactly one of Data or Err.
type ToolResult struct {
	Tool     string          `json:"tool"`
	Argument string          `json:"argument"`
	Data     json.RawMessage `json:"data,omitempty"`
	Err      *ToolError      `json:"error,omitempty"`
}

func (r ToolResult) OK() bool {
	return r.Err == nil
}

// FetchedBundle holds tool results in invocation order.
type FetchedBundle struct {
	Results []ToolResult `json:"results"`
}

// Successful counts results that carry data.
func (b FetchedBundle) Successful() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Calls lists the invocations as "tool(argument)".
func (b FetchedBundle) Calls() []string {
	calls := make([]string, 0, len(b.Results))
	for _, r := range b.Results {
		calls = append(calls, r.Tool+"("+r.Argument+")")
	}
	return calls
}
