// internal/models/football.go
package models

// Competition is a football-data.org competition known to the identifier catalog.
type Competition struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Code    string   `json:"code"`
	Aliases []string `json:"aliases,omitempty"`
}

// Team is a football-data.org team. CompetitionID is its domestic league.
type Team struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Aliases       []string `json:"aliases,omitempty"`
	CompetitionID int      `json:"competitionId"`
}
