package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "football-buddy/internal/common/errors"
	"football-buddy/internal/common/logger"
	"football-buddy/internal/llm"
)

// Completer is a chat model.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type Runner struct {
	model  Completer
	logger logger.Logger
	now    func() time.Time
}

func NewRunner(model Completer, log logger.Logger) *Runner {
	return &Runner{
		model:  model,
		logger: log.With(map[string]interface{}{"component": "agent"}),
		now:    time.Now,
	}
}

// Run renders the stage prompt, attaches the last chain entry as context and
// makes exactly one model call.
func (r *Runner) Run(ctx context.Context, stage Stage, topic string, chain Chain) (string, error) {
	messages, err := r.Messages(stage, topic, chain)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	start := time.Now()
	out, err := r.model.Complete(ctx, messages)
	if err != nil {
		r.logger.Error("stage model call failed", map[string]interface{}{
			"stage": stage.Name,
			"error": err,
		})
		if errors.Is(err, llm.ErrLLMTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.NewLLMTimeoutError(stage.Name, err)
		}
		return "", apperrors.NewLLMRequestFailedError(stage.Name, err)
	}

	r.logger.Debug("stage completed", map[string]interface{}{
		"stage":    stage.Name,
		"duration": time.Since(start).String(),
		"chars":    len(out),
	})

	return out, nil
}

// Messages builds the system and user messages for a stage without calling the model.
func (r *Runner) Messages(stage Stage, topic string, chain Chain) ([]llm.Message, error) {
	data := TaskData{
		Topic: topic,
		Now:   r.now().Format("2006-01-02 15:04:05"),
	}

	goal, err := render(stage.Name+".goal", stage.Goal, data)
	if err != nil {
		return nil, err
	}
	task, err := render(stage.Name+".task", stage.Task, data)
	if err != nil {
		return nil, err
	}

	var system strings.Builder
	system.WriteString("You are " + stage.Role + ".\n")
	system.WriteString("Your goal: " + goal + "\n")
	if stage.Backstory != "" {
		system.WriteString("\n" + strings.TrimSpace(stage.Backstory) + "\n")
	}

	var user strings.Builder
	user.WriteString(strings.TrimSpace(task))
	if last, ok := chain.Last(); ok {
		user.WriteString("\n\nContext from the previous step (" + last.Stage + "):\n")
		user.WriteString(last.Output)
	}
	if stage.ExpectedOutput != "" {
		user.WriteString("\n\nExpected output: " + stage.ExpectedOutput)
	}

	return []llm.Message{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: user.String()},
	}, nil
}
