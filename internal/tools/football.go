package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	LeagueStandings = "get_league_standings"
	TeamPerformance = "get_team_performance"
	PlayerInfo      = "get_player_info"
	PlayerMatches   = "get_games_by_player_id"
	HeadToHead      = "get_head_to_head"
)

// DataSource is the subset of the football-data client the adapters call.
type DataSource interface {
	LeagueStandings(ctx context.Context, competitionID int) (json.RawMessage, error)
	TeamPerformance(ctx context.Context, teamID int, competitionID *int) (json.RawMessage, error)
	PlayerInfo(ctx context.Context, teamID int) (json.RawMessage, error)
	PlayerMatches(ctx context.Context, playerID int) (json.RawMessage, error)
	HeadToHead(ctx context.Context, team1, team2, limit int) (json.RawMessage, error)
}

// ArgumentError means a tool argument could not be turned into a typed id.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Tool, e.Argument, e.Reason)
}

// FootballAdapters builds the five football-data tools.
func FootballAdapters(src DataSource, headToHeadLimit int) []Adapter {
	return []Adapter{
		{
			Name:        LeagueStandings,
			Description: "Get current league standings for a specific competition. Input should be a competition ID (e.g., 2021 for Premier League)",
			Invoke: func(ctx context.Context, arg string) (json.RawMessage, error) {
				ids, err := parseIDs(LeagueStandings, arg, 1, 1)
				if err != nil {
					return nil, err
				}
				return src.LeagueStandings(ctx, ids[0])
			},
		},
		{
			Name:        TeamPerformance,
			Description: "Get current team performance (match history) for a given team. Input should be a team ID (e.g., 61 for Chelsea FC), optionally followed by a competition ID as \"61,2001\"",
			Invoke: func(ctx context.Context, arg string) (json.RawMessage, error) {
				ids, err := parseIDs(TeamPerformance, arg, 1, 2)
				if err != nil {
					return nil, err
				}
				var competition *int
				if len(ids) == 2 {
					competition = &ids[1]
				}
				return src.TeamPerformance(ctx, ids[0], competition)
			},
		},
		{
			Name:        PlayerInfo,
			Description: "Get detailed squad and player information for a given team. Input should be a team ID (e.g., 61 for Chelsea FC)",
			Invoke: func(ctx context.Context, arg string) (json.RawMessage, error) {
				ids, err := parseIDs(PlayerInfo, arg, 1, 1)
				if err != nil {
					return nil, err
				}
				return src.PlayerInfo(ctx, ids[0])
			},
		},
		{
			Name:        PlayerMatches,
			Description: "Get detailed match information for matches a given player has played. Input should be a player ID (e.g., 102603 for Enzo Fernandez)",
			Invoke: func(ctx context.Context, arg string) (json.RawMessage, error) {
				ids, err := parseIDs(PlayerMatches, arg, 1, 1)
				if err != nil {
					return nil, err
				}
				return src.PlayerMatches(ctx, ids[0])
			},
		},
		{
			Name:        HeadToHead,
			Description: "Get recent finished head to head matches between two teams. Input should be two team IDs separated by a comma (e.g., \"61,57\" for Chelsea vs Arsenal)",
			Invoke: func(ctx context.Context, arg string) (json.RawMessage, error) {
				ids, err := parseIDs(HeadToHead, arg, 2, 2)
				if err != nil {
					return nil, err
				}
				return src.HeadToHead(ctx, ids[0], ids[1], headToHeadLimit)
			},
		},
	}
}

// RegisterFootball adds the football adapters to reg.
func RegisterFootball(reg *Registry, src DataSource, headToHeadLimit int) error {
	for _, a := range FootballAdapters(src, headToHeadLimit) {
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// parseIDs splits a comma separated argument into between lo and hi integers.
func parseIDs(tool, arg string, lo, hi int) ([]int, error) {
	parts := strings.Split(arg, ",")
	if len(parts) < lo || len(parts) > hi {
		return nil, &ArgumentError{Tool: tool, Argument: arg, Reason: fmt.Sprintf("expected %d to %d ids", lo, hi)}
	}

	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, &ArgumentError{Tool: tool, Argument: arg, Reason: "not an integer id"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
