// internal/stages/resolve-identifiers/handler_test.go
package resolveidentifiers

import (
	"context"
	"errors"
	"testing"

	"football-buddy/internal/agent"
	"football-buddy/internal/catalog"
	apperrors "football-buddy/internal/common/errors"
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

// ==========================
// Fake runner
// ==========================

type fakeRunner struct {
	reply  string
	err    error
	calls  int
	topics []string
	stages []agent.Stage
}

func (r *fakeRunner) Run(ctx context.Context, stage agent.Stage, topic string, chain agent.Chain) (string, error) {
	r.calls++
	r.topics = append(r.topics, topic)
	r.stages = append(r.stages, stage)
	return r.reply, r.err
}

func id(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name         string
		question     string
		reply        string
		wantTeam     int
		wantComp     int
		wantOpponent int
		wantResolved bool
		wantSource   string
	}{
		{
			name:         "competition only",
			question:     "What are the current standings for the Premier League?",
			reply:        `{"team_id": null, "competition_id": 2021}`,
			wantComp:     2021,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "team without competition gets domestic league",
			question:     "How is Real Madrid doing?",
			reply:        `{"team_id": 86, "competition_id": null}`,
			wantTeam:     86,
			wantComp:     2014,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "fenced output",
			question:     "Bayern form",
			reply:        "```json\n{\"team_id\": 5, \"competition_id\": null}\n```",
			wantTeam:     5,
			wantComp:     2002,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "explicit competition kept",
			question:     "Chelsea in the Champions League",
			reply:        `{"team_id": 61, "competition_id": 2001, "opponent_id": null}`,
			wantTeam:     61,
			wantComp:     2001,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "opponent kept",
			question:     "Arsenal vs Chelsea",
			reply:        `{"team_id": 57, "competition_id": 2021, "opponent_id": 61}`,
			wantTeam:     57,
			wantComp:     2021,
			wantOpponent: 61,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "self opponent dropped",
			question:     "Arsenal vs Arsenal",
			reply:        `{"team_id": 57, "competition_id": 2021, "opponent_id": 57}`,
			wantTeam:     57,
			wantComp:     2021,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "unknown team stays unresolved",
			question:     "How are Accrington Stanley doing?",
			reply:        `{"team_id": null, "competition_id": null}`,
			wantResolved: false,
			wantSource:   SourceNone,
		},
		{
			name:         "team outside the catalog has no domestic league",
			question:     "How are team 4242 doing?",
			reply:        `{"team_id": 4242, "competition_id": null}`,
			wantTeam:     4242,
			wantResolved: true,
			wantSource:   SourceModel,
		},
		{
			name:         "prose falls back to catalog",
			question:     "Show me Liverpool's matches",
			reply:        "Liverpool is team 64 in the Premier League.",
			wantTeam:     64,
			wantComp:     2021,
			wantResolved: true,
			wantSource:   SourceCatalog,
		},
		{
			name:         "string id falls back to catalog",
			question:     "Juventus results",
			reply:        `{"team_id": "109", "competition_id": null}`,
			wantTeam:     109,
			wantComp:     2019,
			wantResolved: true,
			wantSource:   SourceCatalog,
		},
		{
			name:         "invalid output and no catalog match",
			question:     "Who won the 1966 World Cup?",
			reply:        "I am not sure.",
			wantResolved: false,
			wantSource:   SourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{reply: tt.reply}
			h := NewHandler(LoadConfig(), runner, catalog.Default(), NewTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{Question: tt.question})
			require.NoError(t, err)

			assert.Equal(t, 1, runner.calls)
			assert.Equal(t, tt.question, runner.topics[0])
			assert.Equal(t, tt.question, out.Query.Question)
			assert.Equal(t, tt.wantTeam, id(out.Query.TeamID))
			assert.Equal(t, tt.wantComp, id(out.Query.CompetitionID))
			assert.Equal(t, tt.wantOpponent, id(out.Query.OpponentID))
			assert.Equal(t, tt.wantResolved, out.Query.Resolved)
			assert.Equal(t, tt.wantSource, out.Source)
		})
	}
}

func TestHandler_ExecuteModelError(t *testing.T) {
	stdErr := apperrors.NewLLMTimeoutError(TaskType, errors.New("deadline"))
	h := NewHandler(LoadConfig(), &fakeRunner{err: stdErr}, catalog.Default(), NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Question: "Chelsea?"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, stdErr)
}

func TestHandler_ExecuteWithoutFallback(t *testing.T) {
	h := NewHandler(&Config{CatalogFallback: false}, &fakeRunner{reply: "nope"}, catalog.Default(), NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Question: "Chelsea?"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputInvalid))

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeStageOutputInvalid, stdErr.Code)
	assert.Equal(t, TaskType, stdErr.Metadata["stage"])
}

func TestStage_IncludesCatalog(t *testing.T) {
	stage := Stage(catalog.Default())
	assert.Equal(t, TaskType, stage.Name)
	assert.Equal(t, "Football ID Parser", stage.Role)
	assert.Contains(t, stage.Backstory, "Premier League has ID 2021")
	assert.Contains(t, stage.Task, "{{.Topic}}")
}

func TestHandler_QueryContextIsACopy(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeRunner{reply: `{"team_id": 61, "competition_id": 2021}`}, catalog.Default(), NewTestLogger(t))

	first, err := h.Execute(context.Background(), &Input{Question: "Chelsea"})
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), &Input{Question: "Chelsea"})
	require.NoError(t, err)

	*first.Query.TeamID = 1
	assert.Equal(t, 61, id(second.Query.TeamID))
	assert.IsType(t, models.QueryContext{}, second.Query)
}
