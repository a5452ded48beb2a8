// internal/stages/fetch-data/models.go
package fetchdata

import (
	"football-buddy/internal/agent"
	"football-buddy/internal/models"
)

type Input struct {
	Query models.QueryContext
	Chain agent.Chain
}

type Output struct {
	Bundle     models.FetchedBundle `json:"bundle"`
	Plan       []PlannedCall        `json:"plan"`
	PlanSource string               `json:"planSource"` // "rules", "model" or "none"
}

type PlannedCall struct {
	Tool     string `json:"tool"`
	Argument string `json:"argument"`
}
