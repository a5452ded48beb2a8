// internal/stages/summarize-answer/handler_test.go
package summarizeanswer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"football-buddy/internal/agent"
	"football-buddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	all := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	return all
}

type fakeRunner struct {
	reply  string
	err    error
	calls  int
	chains []agent.Chain
}

func (r *fakeRunner) Run(ctx context.Context, stage agent.Stage, topic string, chain agent.Chain) (string, error) {
	r.calls++
	r.chains = append(r.chains, chain)
	return r.reply, r.err
}

func okResult(tool, arg, data string) models.ToolResult {
	return models.ToolResult{Tool: tool, Argument: arg, Data: json.RawMessage(data)}
}

func failedResult(tool, arg, kind string) models.ToolResult {
	return models.ToolResult{Tool: tool, Argument: arg, Err: &models.ToolError{Kind: kind}}
}

func TestHandler_InsufficientWithoutModelCall(t *testing.T) {
	tests := []struct {
		name   string
		bundle models.FetchedBundle
	}{
		{name: "no tool calls", bundle: models.FetchedBundle{}},
		{name: "only failures", bundle: models.FetchedBundle{Results: []models.ToolResult{
			failedResult("get_player_info", "999999", models.KindClientError),
			failedResult("get_league_standings", "2021", models.KindUnreachable),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{reply: "Chelsea scored 90 goals."}
			h := NewHandler(LoadConfig(), runner, NewTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{Question: "  Who is Chelsea's top scorer? ", Bundle: tt.bundle})
			require.NoError(t, err)

			assert.Equal(t, 0, runner.calls)
			assert.False(t, out.Sufficient)
			assert.Equal(t, "I don't have enough specific data to answer this question about Who is Chelsea's top scorer.", out.Text)
		})
	}
}

func TestHandler_SummarizesFetchedData(t *testing.T) {
	runner := &fakeRunner{reply: "  Liverpool lead the Premier League on 70 points.\n"}
	h := NewHandler(LoadConfig(), runner, NewTestLogger(t))

	bundle := models.FetchedBundle{Results: []models.ToolResult{
		okResult("get_league_standings", "2021", `{"standings":[{"table":[{"team":{"name":"Liverpool"},"points":70}]}]}`),
		failedResult("get_player_info", "64", models.KindServerError),
	}}

	chain := agent.Chain{}.Append("resolve-identifiers", `{"competition_id":2021}`)
	out, err := h.Execute(context.Background(), &Input{
		Question: "What are the current standings for the Premier League?",
		Bundle:   bundle,
		Chain:    chain,
	})
	require.NoError(t, err)

	assert.True(t, out.Sufficient)
	assert.Equal(t, "Liverpool lead the Premier League on 70 points.", out.Text)

	require.Equal(t, 1, runner.calls)
	last, ok := runner.chains[0].Last()
	require.True(t, ok)
	assert.Equal(t, "fetch-data", last.Stage)
	assert.Contains(t, last.Output, "### get_league_standings(2021)\n{\"standings\"")
	assert.Contains(t, last.Output, "### get_player_info(64)\nno data available (server_error)")
	assert.Equal(t, 1, chain.Len())
}

func TestHandler_EmptyReplyIsInsufficient(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeRunner{reply: "   "}, NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Question: "How is Real Madrid doing?",
		Bundle:   models.FetchedBundle{Results: []models.ToolResult{okResult("get_team_performance", "86,2014", `{"matches":[]}`)}},
	})
	require.NoError(t, err)
	assert.False(t, out.Sufficient)
	assert.Equal(t, InsufficientData("How is Real Madrid doing?"), out.Text)
}

func TestHandler_ModelDeclinesIsInsufficient(t *testing.T) {
	reply := "I don't have enough specific data to answer this question about Mbappe's assists."
	h := NewHandler(LoadConfig(), &fakeRunner{reply: reply}, NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Question: "How many assists does Mbappe have?",
		Bundle:   models.FetchedBundle{Results: []models.ToolResult{okResult("get_player_info", "86", `{"squad":[]}`)}},
	})
	require.NoError(t, err)
	assert.False(t, out.Sufficient)
	assert.Equal(t, reply, out.Text)
}

func TestHandler_ModelError(t *testing.T) {
	runErr := errors.New("LLM_TIMEOUT")
	h := NewHandler(LoadConfig(), &fakeRunner{err: runErr}, NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Question: "q",
		Bundle:   models.FetchedBundle{Results: []models.ToolResult{okResult("get_player_info", "86", `{}`)}},
	})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, runErr)
}

func TestRenderBundle_Truncates(t *testing.T) {
	big := `{"matches":"` + strings.Repeat("é", 500) + `"}`
	bundle := models.FetchedBundle{Results: []models.ToolResult{okResult("get_team_performance", "61", big)}}

	out := RenderBundle(bundle, 200)
	assert.LessOrEqual(t, len(out), 200)
	assert.True(t, strings.HasSuffix(out, truncatedMarker))
	assert.True(t, utf8ValidString(out))

	full := RenderBundle(bundle, 0)
	assert.Contains(t, full, big)
}

func TestRenderBundle_LimitSmallerThanMarker(t *testing.T) {
	bundle := models.FetchedBundle{Results: []models.ToolResult{okResult("get_player_info", "44", `{"name":"Raheem Sterling"}`)}}

	for _, limit := range []int{1, 5, len(truncatedMarker)} {
		out := RenderBundle(bundle, limit)
		assert.LessOrEqual(t, len(out), limit)
		assert.NotEmpty(t, out)
		assert.True(t, strings.HasPrefix("### get_player_info(44)", out))
	}
}

func utf8ValidString(s string) bool {
	return strings.ToValidUTF8(s, "�") == s
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "Who leads La Liga", Topic("  Who leads La Liga?? "))
	assert.Equal(t, "Chelsea", Topic("Chelsea"))
}
