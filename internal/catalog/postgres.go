package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"football-buddy/internal/models"

	"github.com/lib/pq"
)

const (
	competitionsQuery = `SELECT id, name, code, aliases FROM catalog_competitions ORDER BY id`
	teamsQuery        = `SELECT id, name, competition_id, aliases FROM catalog_teams ORDER BY id`
)

// LoadPostgres merges catalog rows over the current entries. Rows replace
// entries with the same id; the catalog is left untouched on error.
func (c *Catalog) LoadPostgres(ctx context.Context, db *sql.DB) (int, error) {
	competitions, err := queryCompetitions(ctx, db)
	if err != nil {
		return 0, err
	}

	teams, err := queryTeams(ctx, db)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, comp := range competitions {
		c.putCompetition(comp)
	}
	for _, team := range teams {
		c.putTeam(team)
	}

	return len(competitions) + len(teams), nil
}

func queryCompetitions(ctx context.Context, db *sql.DB) ([]models.Competition, error) {
	rows, err := db.QueryContext(ctx, competitionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query catalog_competitions: %w", err)
	}
	defer rows.Close()

	var out []models.Competition
	for rows.Next() {
		var (
			comp    models.Competition
			code    sql.NullString
			aliases pq.StringArray
		)
		if err := rows.Scan(&comp.ID, &comp.Name, &code, &aliases); err != nil {
			return nil, fmt.Errorf("scan catalog_competitions: %w", err)
		}
		comp.Code = code.String
		comp.Aliases = aliases
		out = append(out, comp)
	}

	return out, rows.Err()
}

func queryTeams(ctx context.Context, db *sql.DB) ([]models.Team, error) {
	rows, err := db.QueryContext(ctx, teamsQuery)
	if err != nil {
		return nil, fmt.Errorf("query catalog_teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var (
			team        models.Team
			competition sql.NullInt64
			aliases     pq.StringArray
		)
		if err := rows.Scan(&team.ID, &team.Name, &competition, &aliases); err != nil {
			return nil, fmt.Errorf("scan catalog_teams: %w", err)
		}
		team.CompetitionID = int(competition.Int64)
		team.Aliases = aliases
		out = append(out, team)
	}

	return out, rows.Err()
}
