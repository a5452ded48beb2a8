// internal/stages/fetch-data/handler.go
package fetchdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"football-buddy/internal/agent"
	apperrors "football-buddy/internal/common/errors"
	"football-buddy/internal/common/validation"
	"football-buddy/internal/models"
)

const (
	TaskType = "fetch-data"

	PlanSourceNone = "none"
)

var (
	ErrPlanInvalid = errors.New("FETCH_PLAN_INVALID")
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

// ToolInvoker is the tool registry as seen by this stage.
type ToolInvoker interface {
	Invoke(ctx context.Context, name, arg string) models.ToolResult
	Has(name string) bool
	Describe() string
}

var planSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"calls": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tool":     map[string]interface{}{"type": "string", "minLength": 1},
					"argument": map[string]interface{}{"type": []interface{}{"string", "integer"}},
				},
				"required": []interface{}{"tool", "argument"},
			},
		},
	},
	"required": []interface{}{"calls"},
}

type Handler struct {
	config *Config
	runner StageRunner
	tools  ToolInvoker
	stage  agent.Stage
	logger Logger
}

func NewHandler(config *Config, runner StageRunner, tools ToolInvoker, log Logger) *Handler {
	return &Handler{
		config: config,
		runner: runner,
		tools:  tools,
		stage:  Stage(tools.Describe()),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Stage is the data fetcher prompt record used by the model planner.
func Stage(toolDescriptions string) agent.Stage {
	return agent.Stage{
		Name: TaskType,
		Role: "Football Data Fetcher",
		Goal: "To retrieve the relevant football data requested by the user as of {{.Now}}",
		Backstory: "You are a focused data retrieval specialist who knows what tools to utilize for the given need. " +
			"You only retrieve data that directly answers the user's query, nothing more, nothing less.\n\n" +
			"Available tools:\n" + toolDescriptions,
		Task: "The user asked: {{.Topic}}\n" +
			"Using the IDs provided by the parser, decide which tools fetch the data that answers this request.\n" +
			"Only use the tools that are needed for this specific request and skip anything that is not relevant.",
		ExpectedOutput: `ONLY a JSON object {"calls": [{"tool": "<tool name>", "argument": "<id or comma separated ids>"}]}, ` +
			"with no text or markdown before or after it.",
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Query.Resolved {
		h.logger.Info("query unresolved, no data fetched", nil)
		return &Output{Bundle: models.FetchedBundle{Results: []models.ToolResult{}}, PlanSource: PlanSourceNone}, nil
	}

	calls, source, err := h.plan(ctx, input)
	if err != nil {
		return nil, err
	}

	bundle := models.FetchedBundle{Results: make([]models.ToolResult, 0, len(calls))}
	for _, c := range calls {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		bundle.Results = append(bundle.Results, h.tools.Invoke(ctx, c.Tool, c.Argument))
	}

	h.logger.Info("data fetched", map[string]interface{}{
		"planSource": source,
		"calls":      bundle.Calls(),
		"successful": bundle.Successful(),
	})

	return &Output{Bundle: bundle, Plan: calls, PlanSource: source}, nil
}

func (h *Handler) plan(ctx context.Context, input *Input) ([]PlannedCall, string, error) {
	if h.config.Planner == PlannerModel {
		raw, err := h.runner.Run(ctx, h.stage, input.Query.Question, input.Chain)
		if err != nil {
			return nil, "", err
		}

		calls, err := h.parsePlan(raw)
		if err == nil && len(calls) > 0 {
			return h.limit(calls), PlannerModel, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: no usable calls", ErrPlanInvalid)
		}
		if !h.config.PlanFallback {
			return nil, "", apperrors.NewStageOutputInvalidError(TaskType, err)
		}

		h.logger.Warn("model plan rejected, using rules", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return h.limit(dedupe(rulePlan(input.Query))), PlannerRules, nil
}

// parsePlan validates the model's plan and keeps known, distinct calls in order.
func (h *Handler) parsePlan(raw string) ([]PlannedCall, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrPlanInvalid)
	}
	if err := validation.ValidateJSON(planSchema, []byte(doc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanInvalid, err)
	}

	var p struct {
		Calls []struct {
			Tool     string          `json:"tool"`
			Argument json.RawMessage `json:"argument"`
		} `json:"calls"`
	}
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanInvalid, err)
	}

	var calls []PlannedCall
	for _, c := range p.Calls {
		if !h.tools.Has(c.Tool) {
			h.logger.Warn("model planned unknown tool", map[string]interface{}{"tool": c.Tool})
			continue
		}
		calls = append(calls, PlannedCall{Tool: c.Tool, Argument: argumentString(c.Argument)})
	}

	return dedupe(calls), nil
}

func (h *Handler) limit(calls []PlannedCall) []PlannedCall {
	if h.config.MaxToolCalls > 0 && len(calls) > h.config.MaxToolCalls {
		h.logger.Warn("plan truncated", map[string]interface{}{
			"planned": len(calls),
			"max":     h.config.MaxToolCalls,
		})
		return calls[:h.config.MaxToolCalls]
	}
	return calls
}

func dedupe(calls []PlannedCall) []PlannedCall {
	seen := make(map[PlannedCall]bool, len(calls))
	out := make([]PlannedCall, 0, len(calls))
	for _, c := range calls {
		c.Argument = strings.ReplaceAll(c.Argument, " ", "")
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func argumentString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
