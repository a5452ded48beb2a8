// internal/pipeline/loggers.go
package pipeline

import (
	"football-buddy/internal/common/logger"
	fd "football-buddy/internal/stages/fetch-data"
	ri "football-buddy/internal/stages/resolve-identifiers"
	sa "football-buddy/internal/stages/summarize-answer"
)

// Stage packages declare their own Logger whose With returns that package's
// type; these adapters bridge the shared logger to each of them.

type resolveLoggerAdapter struct {
	logger.Logger
}

func (a *resolveLoggerAdapter) With(fields map[string]interface{}) ri.Logger {
	return &resolveLoggerAdapter{a.Logger.With(fields)}
}

type fetchLoggerAdapter struct {
	logger.Logger
}

func (a *fetchLoggerAdapter) With(fields map[string]interface{}) fd.Logger {
	return &fetchLoggerAdapter{a.Logger.With(fields)}
}

type summarizeLoggerAdapter struct {
	logger.Logger
}

func (a *summarizeLoggerAdapter) With(fields map[string]interface{}) sa.Logger {
	return &summarizeLoggerAdapter{a.Logger.With(fields)}
}
