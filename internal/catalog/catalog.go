// Package catalog maps team and competition names to football-data.org ids.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"football-buddy/internal/models"
)

// Competition ids used by football-data.org.
const (
	PremierLeague   = 2021
	LaLiga          = 2014
	Bundesliga      = 2002
	SerieA          = 2019
	Ligue1          = 2015
	ChampionsLeague = 2001
	EuropaLeague    = 2146
)

var defaultCompetitions = []models.Competition{
	{ID: PremierLeague, Name: "Premier League", Code: "PL", Aliases: []string{"premier league", "epl", "english premier league"}},
	{ID: LaLiga, Name: "La Liga", Code: "PD", Aliases: []string{"la liga", "laliga", "primera division"}},
	{ID: Bundesliga, Name: "Bundesliga", Code: "BL1", Aliases: []string{"bundesliga"}},
	{ID: SerieA, Name: "Serie A", Code: "SA", Aliases: []string{"serie a"}},
	{ID: Ligue1, Name: "Ligue 1", Code: "FL1", Aliases: []string{"ligue 1", "ligue un"}},
	{ID: ChampionsLeague, Name: "Champions League", Code: "CL", Aliases: []string{"champions league", "ucl"}},
	{ID: EuropaLeague, Name: "Europa League", Code: "EL", Aliases: []string{"europa league", "uel"}},
}

var defaultTeams = []models.Team{
	{ID: 61, Name: "Chelsea", CompetitionID: PremierLeague, Aliases: []string{"chelsea", "chelsea fc"}},
	{ID: 57, Name: "Arsenal", CompetitionID: PremierLeague, Aliases: []string{"arsenal", "gunners"}},
	{ID: 66, Name: "Manchester United", CompetitionID: PremierLeague, Aliases: []string{"manchester united", "man utd", "man united"}},
	{ID: 64, Name: "Liverpool", CompetitionID: PremierLeague, Aliases: []string{"liverpool"}},
	{ID: 65, Name: "Manchester City", CompetitionID: PremierLeague, Aliases: []string{"manchester city", "man city"}},
	{ID: 73, Name: "Tottenham", CompetitionID: PremierLeague, Aliases: []string{"tottenham", "spurs"}},
	{ID: 86, Name: "Real Madrid", CompetitionID: LaLiga, Aliases: []string{"real madrid"}},
	{ID: 81, Name: "Barcelona", CompetitionID: LaLiga, Aliases: []string{"barcelona", "barca", "barça"}},
	{ID: 5, Name: "Bayern Munich", CompetitionID: Bundesliga, Aliases: []string{"bayern munich", "bayern munchen", "bayern münchen", "bayern"}},
	{ID: 109, Name: "Juventus", CompetitionID: SerieA, Aliases: []string{"juventus", "juve"}},
	{ID: 108, Name: "Inter Milan", CompetitionID: SerieA, Aliases: []string{"inter milan", "internazionale", "inter"}},
	{ID: 524, Name: "PSG", CompetitionID: Ligue1, Aliases: []string{"psg", "paris saint-germain", "paris saint germain"}},
}

// Catalog is safe for concurrent reads. LoadPostgres may extend it at startup.
type Catalog struct {
	mu           sync.RWMutex
	competitions []models.Competition
	teams        []models.Team
}

// Default returns the built-in catalog of major European competitions and clubs.
func Default() *Catalog {
	c := &Catalog{}
	for _, comp := range defaultCompetitions {
		c.putCompetition(comp)
	}
	for _, team := range defaultTeams {
		c.putTeam(team)
	}
	return c
}

// Match is the deterministic result of scanning free text for known names.
type Match struct {
	TeamID        *int
	CompetitionID *int
	OpponentID    *int
}

type hit struct {
	start, end int
	team       *models.Team
	comp       *models.Competition
}

// Match finds the first team, first competition and a second distinct team
// mentioned in text, in order of appearance.
func (c *Catalog) Match(text string) Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(text)
	var hits []hit

	for i := range c.teams {
		for _, alias := range c.teams[i].Aliases {
			for _, pos := range findWord(lower, alias) {
				hits = append(hits, hit{start: pos, end: pos + len(alias), team: &c.teams[i]})
			}
		}
	}
	for i := range c.competitions {
		for _, alias := range c.competitions[i].Aliases {
			for _, pos := range findWord(lower, alias) {
				hits = append(hits, hit{start: pos, end: pos + len(alias), comp: &c.competitions[i]})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	var m Match
	covered := -1
	for _, h := range hits {
		if h.start < covered {
			continue
		}
		covered = h.end

		switch {
		case h.team != nil && m.TeamID == nil:
			m.TeamID = models.IntPtr(h.team.ID)
		case h.team != nil && m.OpponentID == nil && h.team.ID != *m.TeamID:
			m.OpponentID = models.IntPtr(h.team.ID)
		case h.comp != nil && m.CompetitionID == nil:
			m.CompetitionID = models.IntPtr(h.comp.ID)
		}
	}

	return m
}

// DomesticLeague returns the home competition of a known team.
func (c *Catalog) DomesticLeague(teamID int) (int, bool) {
	team, ok := c.Team(teamID)
	if !ok || team.CompetitionID == 0 {
		return 0, false
	}
	return team.CompetitionID, true
}

func (c *Catalog) Team(id int) (models.Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.teams {
		if t.ID == id {
			return t, true
		}
	}
	return models.Team{}, false
}

func (c *Catalog) Competition(id int) (models.Competition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, comp := range c.competitions {
		if comp.ID == id {
			return comp, true
		}
	}
	return models.Competition{}, false
}

// Describe renders the catalog as the id reference list used in prompts.
func (c *Catalog) Describe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Competition IDs:\n")
	for _, comp := range c.competitions {
		fmt.Fprintf(&b, "- %s has ID %d\n", comp.Name, comp.ID)
	}
	b.WriteString("\nTeam IDs:\n")
	for _, t := range c.teams {
		league := ""
		for _, comp := range c.competitions {
			if comp.ID == t.CompetitionID {
				league = fmt.Sprintf(" (domestic league: %s)", comp.Name)
				break
			}
		}
		fmt.Fprintf(&b, "- %s has ID %d%s\n", t.Name, t.ID, league)
	}
	return b.String()
}

// putCompetition inserts or replaces by id. Callers hold the write lock or own c.
func (c *Catalog) putCompetition(comp models.Competition) {
	comp.Aliases = normalizeAliases(comp.Name, comp.Aliases)
	for i := range c.competitions {
		if c.competitions[i].ID == comp.ID {
			c.competitions[i] = comp
			return
		}
	}
	c.competitions = append(c.competitions, comp)
}

func (c *Catalog) putTeam(team models.Team) {
	team.Aliases = normalizeAliases(team.Name, team.Aliases)
	for i := range c.teams {
		if c.teams[i].ID == team.ID {
			c.teams[i] = team
			return
		}
	}
	c.teams = append(c.teams, team)
}

func normalizeAliases(name string, aliases []string) []string {
	seen := make(map[string]bool, len(aliases)+1)
	out := make([]string, 0, len(aliases)+1)
	for _, a := range append([]string{name}, aliases...) {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// findWord returns the byte offsets where word occurs in s on word boundaries.
func findWord(s, word string) []int {
	var out []int
	for offset := 0; offset <= len(s)-len(word); {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			break
		}
		pos := offset + idx
		end := pos + len(word)
		if boundaryBefore(s, pos) && boundaryAfter(s, end) {
			out = append(out, pos)
		}
		offset = pos + 1
	}
	return out
}

func boundaryBefore(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	r := []rune(s[:pos])
	return !isWordRune(r[len(r)-1])
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	for _, r := range s[end:] {
		return !isWordRune(r)
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
