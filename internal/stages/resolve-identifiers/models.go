// internal/stages/resolve-identifiers/models.go
package resolveidentifiers

import "football-buddy/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Query  models.QueryContext `json:"query"`
	Source string              `json:"source"` // "model", "catalog" or "none"
	Raw    string              `json:"raw"`
}

// identifiers is the only shape the model may emit.
type identifiers struct {
	TeamID        *int `json:"team_id"`
	CompetitionID *int `json:"competition_id"`
	OpponentID    *int `json:"opponent_id"`
}
