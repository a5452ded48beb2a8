// internal/stages/summarize-answer/models.go
package summarizeanswer

import (
	"football-buddy/internal/agent"
	"football-buddy/internal/models"
)

type Input struct {
	Question string
	Bundle   models.FetchedBundle
	Chain    agent.Chain
}

type Output struct {
	Text       string `json:"text"`
	Sufficient bool   `json:"sufficient"`
}
