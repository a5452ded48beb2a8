// internal/models/answer.go
package models

type Answer struct {
	RunID      string       `json:"runId"`
	Text       string       `json:"answer"`
	Sufficient bool         `json:"sufficient"`
	Query      QueryContext `json:"query"`
	ToolCalls  []string     `json:"toolCalls"`
}
