// Package pipeline answers one question by running resolve, fetch and summarize in sequence.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"football-buddy/internal/agent"
	"football-buddy/internal/catalog"
	"football-buddy/internal/common/config"
	"football-buddy/internal/common/logger"
	"football-buddy/internal/common/metrics"
	"football-buddy/internal/common/observability"
	"football-buddy/internal/models"
	fd "football-buddy/internal/stages/fetch-data"
	ri "football-buddy/internal/stages/resolve-identifiers"
	sa "football-buddy/internal/stages/summarize-answer"

	"github.com/google/uuid"
)

const (
	OutcomeAnswered     = "answered"
	OutcomeInsufficient = "insufficient"
	OutcomeError        = "error"
)

// StageRunner executes one stage prompt against the model.
type StageRunner interface {
	Run(ctx context.Context, stage agent.Stage, topic string, chain agent.Chain) (string, error)
}

type Pipeline struct {
	resolve   *ri.Handler
	fetch     *fd.Handler
	summarize *sa.Handler
	obs       *observability.Observability
	logger    logger.Logger
}

// New wires the three stages. obs may be nil.
func New(cfg *config.Config, runner StageRunner, tools fd.ToolInvoker, cat *catalog.Catalog, obs *observability.Observability, log logger.Logger) *Pipeline {
	resolveCfg := ri.LoadConfig()
	resolveCfg.CatalogFallback = cfg.Pipeline.CatalogFallback

	fetchCfg := fd.LoadConfig()
	fetchCfg.MaxToolCalls = cfg.Pipeline.MaxToolCalls
	fetchCfg.Planner = cfg.Pipeline.Planner
	fetchCfg.PlanFallback = cfg.Pipeline.PlanFallback

	summarizeCfg := sa.LoadConfig()
	summarizeCfg.MaxContextBytes = cfg.Pipeline.MaxContextBytes

	return &Pipeline{
		resolve:   ri.NewHandler(resolveCfg, runner, cat, &resolveLoggerAdapter{log}),
		fetch:     fd.NewHandler(fetchCfg, runner, tools, &fetchLoggerAdapter{log}),
		summarize: sa.NewHandler(summarizeCfg, runner, &summarizeLoggerAdapter{log}),
		obs:       obs,
		logger:    log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run answers question. No state survives the call.
func (p *Pipeline) Run(ctx context.Context, question string) (*models.Answer, error) {
	runID := uuid.NewString()
	log := p.logger.With(map[string]interface{}{"runId": runID})
	start := time.Now()

	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	answer, err := p.run(ctx, runID, question, log)

	outcome := OutcomeError
	switch {
	case err != nil:
		log.Error("pipeline run failed", map[string]interface{}{"error": err})
	case answer.Sufficient:
		outcome = OutcomeAnswered
	default:
		outcome = OutcomeInsufficient
	}

	metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	p.obs.RecordRun(ctx, outcome)
	p.obs.RecordRunDuration(ctx, time.Since(start), outcome)

	if err != nil {
		return nil, err
	}

	log.Info("pipeline run completed", map[string]interface{}{
		"outcome":   outcome,
		"toolCalls": answer.ToolCalls,
		"duration":  time.Since(start).String(),
	})
	return answer, nil
}

func (p *Pipeline) run(ctx context.Context, runID, question string, log logger.Logger) (*models.Answer, error) {
	stageStart := time.Now()
	resolved, err := p.resolve.Execute(ctx, &ri.Input{Question: question})
	observeStage(ri.TaskType, stageStart)
	if err != nil {
		return nil, err
	}

	query := resolved.Query
	chain := agent.Chain{}.Append(ri.TaskType, contextJSON(query))

	stageStart = time.Now()
	fetched, err := p.fetch.Execute(ctx, &fd.Input{Query: query, Chain: chain})
	observeStage(fd.TaskType, stageStart)
	if err != nil {
		return nil, err
	}

	stageStart = time.Now()
	summary, err := p.summarize.Execute(ctx, &sa.Input{
		Question: question,
		Bundle:   fetched.Bundle,
		Chain:    chain,
	})
	observeStage(sa.TaskType, stageStart)
	if err != nil {
		return nil, err
	}

	log.Info("stages completed", map[string]interface{}{
		"resolvedBy": resolved.Source,
		"plannedBy":  fetched.PlanSource,
	})

	return &models.Answer{
		RunID:      runID,
		Text:       summary.Text,
		Sufficient: summary.Sufficient,
		Query:      query,
		ToolCalls:  fetched.Bundle.Calls(),
	}, nil
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// contextJSON is the resolve stage output as later stages see it.
func contextJSON(q models.QueryContext) string {
	b, err := json.Marshal(map[string]interface{}{
		"team_id":        q.TeamID,
		"competition_id": q.CompetitionID,
		"opponent_id":    q.OpponentID,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
