// internal/stages/resolve-identifiers/handler.go
package resolveidentifiers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"football-buddy/internal/agent"
	"football-buddy/internal/catalog"
	apperrors "football-buddy/internal/common/errors"
	"football-buddy/internal/common/validation"
	"football-buddy/internal/models"
)

const (
	TaskType = "resolve-identifiers"

	SourceModel   = "model"
	SourceCatalog = "catalog"
	SourceNone    = "none"
)

var (
	ErrOutputInvalid = errors.New("RESOLVE_OUTPUT_INVALID")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type StageRunner interface {
	Run(ctx context.Context, stage agent.Stage, topic string, chain agent.Chain) (string, error)
}

var outputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"team_id":        validation.NullableInteger(),
		"competition_id": validation.NullableInteger(),
		"opponent_id":    validation.NullableInteger(),
	},
	"required": []interface{}{"team_id", "competition_id"},
}

type Handler struct {
	config  *Config
	runner  StageRunner
	catalog *catalog.Catalog
	stage   agent.Stage
	logger  Logger
}

func NewHandler(config *Config, runner StageRunner, cat *catalog.Catalog, log Logger) *Handler {
	return &Handler{
		config:  config,
		runner:  runner,
		catalog: cat,
		stage:   Stage(cat),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Stage is the id parser prompt record. The catalog supplies the id reference list.
func Stage(cat *catalog.Catalog) agent.Stage {
	return agent.Stage{
		Name: TaskType,
		Role: "Football ID Parser",
		Goal: "Accurately interpret user requests and map them to correct team and competition IDs.",
		Backstory: "You are an expert in football database management with comprehensive knowledge of team " +
			"and competition IDs. Your specialty is interpreting natural language requests and converting them " +
			"into the correct identifiers used by the Football Data API.\n\n" + cat.Describe(),
		Task: "Analyze this request: {{.Topic}}\n" +
			"Identify the team and competition IDs. If no competition is mentioned then focus on the team's domestic " +
			"competition, for example La Liga for Real Madrid or the Bundesliga for Bayern Munich. " +
			"If a second team is mentioned as an opponent, report it as opponent_id. " +
			"Use null for anything you cannot identify.",
		ExpectedOutput: `ONLY a JSON object {"team_id": int|null, "competition_id": int|null, "opponent_id": int|null}, ` +
			"with no text or markdown before or after it.",
	}
}

// Execute resolves the question to ids. A model failure is returned as an error;
// an unusable model answer is not.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	raw, err := h.runner.Run(ctx, h.stage, input.Question, agent.Chain{})
	if err != nil {
		return nil, err
	}

	ids, err := parseIdentifiers(raw)
	source := SourceModel
	if err != nil {
		h.logger.Warn("model output rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   truncate(raw, 200),
		})
		if !h.config.CatalogFallback {
			return nil, apperrors.NewStageOutputInvalidError(TaskType, err)
		}
		m := h.catalog.Match(input.Question)
		ids = identifiers{TeamID: m.TeamID, CompetitionID: m.CompetitionID, OpponentID: m.OpponentID}
		source = SourceCatalog
	}

	query := h.normalize(input.Question, ids)
	if !query.Resolved {
		source = SourceNone
	}

	h.logger.Info("identifiers resolved", map[string]interface{}{
		"source":        source,
		"teamId":        models.FormatID(query.TeamID),
		"competitionId": models.FormatID(query.CompetitionID),
		"opponentId":    models.FormatID(query.OpponentID),
		"resolved":      query.Resolved,
	})

	return &Output{Query: query, Source: source, Raw: raw}, nil
}

// normalize fills the domestic league for a lone team and drops a self-opponent.
func (h *Handler) normalize(question string, ids identifiers) models.QueryContext {
	q := models.QueryContext{
		Question:      question,
		TeamID:        ids.TeamID,
		CompetitionID: ids.CompetitionID,
		OpponentID:    ids.OpponentID,
	}

	if q.TeamID != nil && q.CompetitionID == nil {
		if league, ok := h.catalog.DomesticLeague(*q.TeamID); ok {
			q.CompetitionID = models.IntPtr(league)
		}
	}

	if q.OpponentID != nil && (q.TeamID == nil || *q.OpponentID == *q.TeamID) {
		q.OpponentID = nil
	}

	q.Resolved = q.TeamID != nil || q.CompetitionID != nil
	return q
}

func parseIdentifiers(raw string) (identifiers, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return identifiers{}, fmt.Errorf("%w: no JSON object in output", ErrOutputInvalid)
	}

	if err := validation.ValidateJSON(outputSchema, []byte(doc)); err != nil {
		return identifiers{}, fmt.Errorf("%w: %v", ErrOutputInvalid, err)
	}

	var ids identifiers
	if err := json.Unmarshal([]byte(doc), &ids); err != nil {
		return identifiers{}, fmt.Errorf("%w: %v", ErrOutputInvalid, err)
	}
	return ids, nil
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
