// internal/stages/fetch-data/planner.go
package fetchdata

import (
	"strconv"
	"strings"

	"football-buddy/internal/models"
	"football-buddy/internal/tools"
)

var (
	standingsWords   = []string{"standing", "table", "position", "rank", "top of", "bottom of", "leader", "points", "relegation", "title race"}
	squadWords       = []string{"squad", "player", "roster", "lineup", "line-up", "who plays", "coach", "manager", "stadium", "founded"}
	performanceWords = []string{"match", "game", "result", "form", "perform", "doing", "played", "fixture", "score", "won", "win", "lost", "lose", "draw", "goal", "last", "next", "season"}
)

// rulePlan selects tools from the question wording and the resolved ids alone.
// Its output is a pure function of its input.
func rulePlan(q models.QueryContext) []PlannedCall {
	if !q.Resolved {
		return nil
	}

	text := strings.ToLower(q.Question)
	var calls []PlannedCall

	if q.TeamID == nil {
		return []PlannedCall{{Tool: tools.LeagueStandings, Argument: strconv.Itoa(*q.CompetitionID)}}
	}

	team := strconv.Itoa(*q.TeamID)

	if q.OpponentID != nil {
		calls = append(calls, PlannedCall{Tool: tools.HeadToHead, Argument: team + "," + strconv.Itoa(*q.OpponentID)})
	}

	if q.CompetitionID != nil && containsAny(text, standingsWords) {
		calls = append(calls, PlannedCall{Tool: tools.LeagueStandings, Argument: strconv.Itoa(*q.CompetitionID)})
	}

	if containsAny(text, squadWords) {
		calls = append(calls, PlannedCall{Tool: tools.PlayerInfo, Argument: team})
	}

	if q.OpponentID == nil && (len(calls) == 0 || containsAny(text, performanceWords)) {
		arg := team
		if q.CompetitionID != nil {
			arg += "," + strconv.Itoa(*q.CompetitionID)
		}
		calls = append(calls, PlannedCall{Tool: tools.TeamPerformance, Argument: arg})
	}

	return calls
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
