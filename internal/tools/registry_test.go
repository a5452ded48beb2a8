package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"football-buddy/internal/common/logger"
	"football-buddy/internal/footballdata"
	"football-buddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op   string
	args []int
}

type fakeSource struct {
	calls []call
	err   error
}

func (f *fakeSource) reply(op string, args ...int) (json.RawMessage, error) {
	f.calls = append(f.calls, call{op: op, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(fmt.Sprintf(`{"op":%q}`, op)), nil
}

func (f *fakeSource) LeagueStandings(ctx context.Context, competitionID int) (json.RawMessage, error) {
	return f.reply("standings", competitionID)
}

func (f *fakeSource) TeamPerformance(ctx context.Context, teamID int, competitionID *int) (json.RawMessage, error) {
	if competitionID != nil {
		return f.reply("performance", teamID, *competitionID)
	}
	return f.reply("performance", teamID)
}

func (f *fakeSource) PlayerInfo(ctx context.Context, teamID int) (json.RawMessage, error) {
	return f.reply("players", teamID)
}

func (f *fakeSource) PlayerMatches(ctx context.Context, playerID int) (json.RawMessage, error) {
	return f.reply("player-matches", playerID)
}

func (f *fakeSource) HeadToHead(ctx context.Context, team1, team2, limit int) (json.RawMessage, error) {
	return f.reply("h2h", team1, team2, limit)
}

func newFootballRegistry(t *testing.T, src DataSource) *Registry {
	t.Helper()
	reg := NewRegistry(logger.NewTestLogger(t))
	require.NoError(t, RegisterFootball(reg, src, 7))
	return reg
}

func TestRegistry_Order(t *testing.T) {
	reg := newFootballRegistry(t, &fakeSource{})
	assert.Equal(t, []string{LeagueStandings, TeamPerformance, PlayerInfo, PlayerMatches, HeadToHead}, reg.Names())
	assert.Contains(t, reg.Describe(), "- get_league_standings: Get current league standings")
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := newFootballRegistry(t, &fakeSource{})
	err := RegisterFootball(reg, &fakeSource{}, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Invoke(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		arg      string
		wantCall call
	}{
		{name: "standings", tool: LeagueStandings, arg: "2021", wantCall: call{"standings", []int{2021}}},
		{name: "quoted argument", tool: LeagueStandings, arg: ` "2014" `, wantCall: call{"standings", []int{2014}}},
		{name: "team only", tool: TeamPerformance, arg: "61", wantCall: call{"performance", []int{61}}},
		{name: "team and competition", tool: TeamPerformance, arg: "61, 2001", wantCall: call{"performance", []int{61, 2001}}},
		{name: "squad", tool: PlayerInfo, arg: "86", wantCall: call{"players", []int{86}}},
		{name: "player matches", tool: PlayerMatches, arg: "102603", wantCall: call{"player-matches", []int{102603}}},
		{name: "head to head uses configured limit", tool: HeadToHead, arg: "61,57", wantCall: call{"h2h", []int{61, 57, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			reg := newFootballRegistry(t, src)

			result := reg.Invoke(context.Background(), tt.tool, tt.arg)

			require.True(t, result.OK())
			assert.Equal(t, tt.tool, result.Tool)
			assert.Equal(t, tt.arg, result.Argument)
			require.Len(t, src.calls, 1)
			assert.Equal(t, tt.wantCall, src.calls[0])
		})
	}
}

func TestRegistry_InvokeFailuresAreTagged(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		arg      string
		srcErr   error
		wantKind string
	}{
		{name: "unknown tool", tool: "get_weather", arg: "1", wantKind: models.KindClientError},
		{name: "non integer id", tool: LeagueStandings, arg: "Premier League", wantKind: models.KindClientError},
		{name: "missing second team", tool: HeadToHead, arg: "61", wantKind: models.KindClientError},
		{name: "too many ids", tool: PlayerInfo, arg: "1,2", wantKind: models.KindClientError},
		{
			name:     "remote server error",
			tool:     PlayerInfo,
			arg:      "61",
			srcErr:   &footballdata.RemoteDataError{Kind: footballdata.KindServerError, Operation: "PlayerInfo", StatusCode: 503},
			wantKind: models.KindServerError,
		},
		{name: "untyped error", tool: PlayerInfo, arg: "61", srcErr: fmt.Errorf("socket closed"), wantKind: models.KindUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{err: tt.srcErr}
			reg := newFootballRegistry(t, src)

			var result models.ToolResult
			assert.NotPanics(t, func() {
				result = reg.Invoke(context.Background(), tt.tool, tt.arg)
			})

			assert.False(t, result.OK())
			assert.Nil(t, result.Data)
			assert.Equal(t, tt.wantKind, result.Err.Kind)
		})
	}
}

func TestRegistry_RemoteStatusCarried(t *testing.T) {
	src := &fakeSource{err: &footballdata.RemoteDataError{Kind: footballdata.KindClientError, Operation: "PlayerInfo", StatusCode: 404}}
	reg := newFootballRegistry(t, src)

	result := reg.Invoke(context.Background(), PlayerInfo, "999999")
	require.NotNil(t, result.Err)
	assert.Equal(t, 404, result.Err.StatusCode)
}
