// Package footballdata is the read-only client for the football-data.org v4 API.
package footballdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	commonhttp "football-buddy/internal/common/http"
	"football-buddy/internal/common/logger"
)

const (
	headerAuthToken   = "X-Auth-Token"
	headerUnfoldGoals = "X-Unfold-Goals"
)

// Cache stores raw response bodies keyed by request path and query.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	cache  Cache
	logger logger.Logger
}

type Option func(*Client)

// WithCache enables response caching.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func NewClient(config *Config, log logger.Logger, opts ...Option) *Client {
	headers := map[string]string{
		headerAuthToken: config.APIKey,
	}
	if config.UnfoldGoals {
		headers[headerUnfoldGoals] = "true"
	}

	c := &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout, headers),
		logger: log.With(map[string]interface{}{
			"component": "footballdata",
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LeagueStandings returns the current table of a competition.
func (c *Client) LeagueStandings(ctx context.Context, competitionID int) (json.RawMessage, error) {
	path := fmt.Sprintf("/competitions/%d/standings", competitionID)
	return c.get(ctx, "LeagueStandings", path, nil)
}

// TeamPerformance returns a team's matches, optionally restricted to one competition.
func (c *Client) TeamPerformance(ctx context.Context, teamID int, competitionID *int) (json.RawMessage, error) {
	path := fmt.Sprintf("/teams/%d/matches", teamID)

	var query url.Values
	if competitionID != nil {
		query = url.Values{}
		query.Set("competition", strconv.Itoa(*competitionID))
	}

	return c.get(ctx, "TeamPerformance", path, query)
}

// PlayerInfo returns the team record including its squad.
func (c *Client) PlayerInfo(ctx context.Context, teamID int) (json.RawMessage, error) {
	path := fmt.Sprintf("/teams/%d", teamID)
	return c.get(ctx, "PlayerInfo", path, nil)
}

// PlayerMatches returns the matches a person took part in.
func (c *Client) PlayerMatches(ctx context.Context, playerID int) (json.RawMessage, error) {
	path := fmt.Sprintf("/persons/%d/matches", playerID)
	return c.get(ctx, "PlayerMatches", path, nil)
}

type h2hMatch struct {
	HomeTeam struct {
		ID int `json:"id"`
	} `json:"homeTeam"`
	AwayTeam struct {
		ID int `json:"id"`
	} `json:"awayTeam"`
}

// HeadToHead returns those of team1's last limit finished matches that were played
// against team2, as {"matches": [...]}. Only one page is requested.
func (c *Client) HeadToHead(ctx context.Context, team1, team2, limit int) (json.RawMessage, error) {
	const op = "HeadToHead"

	if limit <= 0 {
		limit = DefaultHeadToHeadLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("status", "FINISHED")

	raw, err := c.get(ctx, op, fmt.Sprintf("/teams/%d/matches", team1), query)
	if err != nil {
		return nil, err
	}

	var page struct {
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, newRemoteError(KindMalformedPayload, op, 0, err)
	}

	filtered := make([]json.RawMessage, 0, len(page.Matches))
	for _, m := range page.Matches {
		var teams h2hMatch
		if err := json.Unmarshal(m, &teams); err != nil {
			return nil, newRemoteError(KindMalformedPayload, op, 0, err)
		}
		if teams.HomeTeam.ID == team2 || teams.AwayTeam.ID == team2 {
			filtered = append(filtered, m)
		}
	}

	out, err := json.Marshal(map[string]interface{}{"matches": filtered})
	if err != nil {
		return nil, newRemoteError(KindMalformedPayload, op, 0, err)
	}

	c.logger.Debug("head to head filtered", map[string]interface{}{
		"team1":   team1,
		"team2":   team2,
		"fetched": len(page.Matches),
		"kept":    len(filtered),
	})

	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	target := strings.TrimRight(c.config.BaseURL, "/") + path
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
		target += "?" + query.Encode()
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			c.logger.Debug("cache hit", map[string]interface{}{"operation": op, "key": key})
			return json.RawMessage(body), nil
		}
	}

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, newRemoteError(KindClientError, op, 0, err)
	}

	resp, err := c.http.Do(ctx, req)
	if errors.Is(err, commonhttp.ErrResponseTooLarge) {
		return nil, newRemoteError(KindMalformedPayload, op, 0, err)
	}
	if err != nil {
		c.logger.Warn("football-data request failed", map[string]interface{}{
			"operation": op,
			"error":     err,
		})
		return nil, newRemoteError(KindUnreachable, op, 0, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, newRemoteError(KindServerError, op, resp.StatusCode, errors.New(apiMessage(resp.Body)))
	case resp.StatusCode >= 400:
		return nil, newRemoteError(KindClientError, op, resp.StatusCode, errors.New(apiMessage(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, newRemoteError(KindClientError, op, resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	if !json.Valid(resp.Body) {
		return nil, newRemoteError(KindMalformedPayload, op, resp.StatusCode, errors.New("response body is not JSON"))
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, resp.Body)
	}

	c.logger.Debug("football-data request completed", map[string]interface{}{
		"operation": op,
		"path":      path,
		"bytes":     len(resp.Body),
	})

	return json.RawMessage(resp.Body), nil
}

// apiMessage extracts the "message" field football-data.org puts in error bodies.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	if len(body) == 0 {
		return "empty response body"
	}
	return string(body)
}
