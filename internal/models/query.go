// internal/models/query.go
package models

import "strconv"

// QueryContext is the outcome of identifier resolution. It is passed by value
// and never mutated after the resolve stage returns it.
type QueryContext struct {
	Question      string `json:"question"`
	TeamID        *int   `json:"teamId"`
	CompetitionID *int   `json:"competitionId"`
	OpponentID    *int   `json:"opponentId"`
	Resolved      bool   `json:"resolved"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// FormatID renders an optional id the way the tool arguments expect it.
func FormatID(id *int) string {
	if id == nil {
		return "null"
	}
	return strconv.Itoa(*id)
}
