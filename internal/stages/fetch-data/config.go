// internal/stages/fetch-data/config.go
package fetchdata

const (
	PlannerRules = "rules"
	PlannerModel = "model"
)

type Config struct {
	MaxToolCalls int
	Planner      string
	// PlanFallback uses the rules planner when the model plan is unusable.
	PlanFallback bool
}

func LoadConfig() *Config {
	return &Config{
		MaxToolCalls: 3,
		Planner:      PlannerRules,
		PlanFallback: true,
	}
}
