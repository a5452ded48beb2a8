// internal/tools/registry.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"football-buddy/internal/common/logger"
	"football-buddy/internal/common/metrics"
	"football-buddy/internal/models"
)

// Adapter exposes one data operation under a stable tool name.
type Adapter struct {
	Name        string
	Description string
	Invoke      func(ctx context.Context, arg string) (json.RawMessage, error)
}

// Registry keeps adapters in registration order.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
	logger   logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		logger: log.With(map[string]interface{}{
			"component": "tools",
		}),
	}
}

// Register adds an adapter; names must be unique.
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter.Name == "" || adapter.Invoke == nil {
		return fmt.Errorf("tool adapter requires a name and an invoke function")
	}
	if _, exists := r.adapters[adapter.Name]; exists {
		return fmt.Errorf("tool already registered: %s", adapter.Name)
	}

	r.adapters[adapter.Name] = adapter
	r.order = append(r.order, adapter.Name)
	return nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[name]
	return ok
}

// Names lists registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Describe renders "name: description" lines for prompts.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, r.adapters[name].Description))
	}
	return strings.Join(lines, "\n")
}

// Invoke runs a tool and returns its tagged result. Remote failures, unknown
// tools and unusable arguments are reported inside the result, never as a Go error.
func (r *Registry) Invoke(ctx context.Context, name, arg string) models.ToolResult {
	result := models.ToolResult{Tool: name, Argument: arg}

	r.mu.RLock()
	adapter, ok := r.adapters[name]
	r.mu.RUnlock()

	if !ok {
		result.Err = &models.ToolError{Kind: models.KindClientError, Message: "unknown tool: " + name}
		r.record(result)
		return result
	}

	data, err := adapter.Invoke(ctx, arg)
	if err != nil {
		result.Err = toToolError(err)
	} else {
		result.Data = data
	}

	r.record(result)
	return result
}

func (r *Registry) record(result models.ToolResult) {
	outcome := "ok"
	if result.Err != nil {
		outcome = result.Err.Kind
		r.logger.Warn("tool call failed", map[string]interface{}{
			"tool":     result.Tool,
			"argument": result.Argument,
			"kind":     result.Err.Kind,
			"message":  result.Err.Message,
		})
	} else {
		r.logger.Info("tool call completed", map[string]interface{}{
			"tool":     result.Tool,
			"argument": result.Argument,
			"bytes":    len(result.Data),
		})
	}
	metrics.ToolCalls.WithLabelValues(result.Tool, outcome).Inc()
}

type toolErrorer interface {
	ToolError() *models.ToolError
}

func toToolError(err error) *models.ToolError {
	var te toolErrorer
	if errors.As(err, &te) {
		return te.ToolError()
	}

	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return &models.ToolError{Kind: models.KindClientError, Message: argErr.Error()}
	}

	return &models.ToolError{Kind: models.KindUnreachable, Message: err.Error()}
}
