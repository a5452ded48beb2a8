// internal/stages/summarize-answer/handler.go
package summarizeanswer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"football-buddy/internal/agent"
	"football-buddy/internal/models"
)

const (
	TaskType = "summarize-answer"

	insufficientPrefix = "I don't have enough specific data to answer this question"
	truncatedMarker    = "\n[data truncated]"
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

type Handler struct {
	config *Config
	runner StageRunner
	stage  agent.Stage
	logger Logger
}

func NewHandler(config *Config, runner StageRunner, log Logger) *Handler {
	return &Handler{
		config: config,
		runner: runner,
		stage:  Stage(),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Stage is the reporter prompt record.
func Stage() agent.Stage {
	return agent.Stage{
		Name: TaskType,
		Role: "Focused Football Data Reporter",
		Goal: "Create fun, engaging and targeted summaries that directly address the user's specific query",
		Backstory: `You are a precise football enthusiast who focuses solely on answering the exact question asked by the user.
Your reporting principles:
1. Address ONLY what was specifically asked
2. Your answers are ALWAYS based on the data provided by the data fetcher
3. Don't speculate beyond the provided data
4. If something specific was asked but data isn't available, you clearly state that`,
		Task: `FOCUS ONLY ON THIS EXACT QUESTION: '{{.Topic}}'

STRICT RESPONSE RULES:
1. Read the user's question carefully and identify EXACTLY what is being asked
2. Only use data that DIRECTLY answers this specific question
3. IGNORE all other data points, even if interesting or related
4. If no relevant data exists to answer THIS SPECIFIC question, respond: "` + insufficientPrefix + ` about [exact topic asked]."

DO NOT include data that doesn't answer the question, draw broader conclusions, or mention statistics not directly related to it.`,
		ExpectedOutput: "A response that ONLY answers the specific question asked, nothing more.",
	}
}

// InsufficientData is the fixed answer for a question the fetched data cannot support.
func InsufficientData(question string) string {
	return fmt.Sprintf("%s about %s.", insufficientPrefix, Topic(question))
}

// Topic is the question without surrounding whitespace or trailing punctuation.
func Topic(question string) string {
	return strings.TrimRight(strings.TrimSpace(question), "?!. ")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Bundle.Successful() == 0 {
		h.logger.Info("no usable data, answering insufficient", map[string]interface{}{
			"results": len(input.Bundle.Results),
		})
		return &Output{Text: InsufficientData(input.Question), Sufficient: false}, nil
	}

	rendered := RenderBundle(input.Bundle, h.config.MaxContextBytes)
	chain := input.Chain.Append("fetch-data", rendered)

	text, err := h.runner.Run(ctx, h.stage, input.Question, chain)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		h.logger.Warn("model returned an empty summary", nil)
		return &Output{Text: InsufficientData(input.Question), Sufficient: false}, nil
	}

	sufficient := !strings.HasPrefix(text, insufficientPrefix)

	h.logger.Info("answer produced", map[string]interface{}{
		"sufficient":   sufficient,
		"contextBytes": len(rendered),
		"answerChars":  len(text),
	})

	return &Output{Text: text, Sufficient: sufficient}, nil
}

// RenderBundle lays the results out for the reporter, failed calls included,
// and cuts the text to at most maxBytes.
func RenderBundle(bundle models.FetchedBundle, maxBytes int) string {
	var b strings.Builder
	for i, r := range bundle.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "### %s(%s)\n", r.Tool, r.Argument)
		if r.OK() {
			b.Write(r.Data)
		} else {
			fmt.Fprintf(&b, "no data available (%s)", r.Err.Kind)
		}
	}

	out := b.String()
	if maxBytes <= 0 || len(out) <= maxBytes {
		return out
	}

	// A limit too small for the marker gets a bare cut.
	marker := truncatedMarker
	if maxBytes <= len(marker) {
		marker = ""
	}
	cut := maxBytes - len(marker)
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return out[:cut] + marker
}
