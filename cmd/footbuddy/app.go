// cmd/footbuddy/app.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"football-buddy/internal/agent"
	"football-buddy/internal/catalog"
	"football-buddy/internal/common/config"
	"football-buddy/internal/common/database"
	apperrors "football-buddy/internal/common/errors"
	"football-buddy/internal/common/logger"
	"football-buddy/internal/common/observability"
	"football-buddy/internal/footballdata"
	"football-buddy/internal/llm"
	"football-buddy/internal/pipeline"
	"football-buddy/internal/tools"

	"github.com/redis/go-redis/v9"
)

// app holds everything a command needs. close releases the optional backends.
type app struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	pipeline *pipeline.Pipeline
	errors   *apperrors.ErrorHandler
	obs      *observability.Observability
	redis    *redis.Client
	db       *sql.DB
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	a.obs.Shutdown()
	_ = a.zapLog.Sync()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err)
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	a := &app{cfg: cfg, zapLog: zapLog, log: log, obs: obs}

	model := llm.NewClient(llm.NewConfig(cfg), log)
	runner := agent.NewRunner(model, log)

	var opts []footballdata.Option
	if cfg.Cache.Enabled {
		if err := retryWithBackoff(func() error {
			var err error
			a.redis, err = database.NewRedis(ctx, cfg.Database.Redis)
			return err
		}, 3, 500*time.Millisecond, zapLog, "Redis connection"); err != nil {
			zapLog.Warn("response cache disabled", zap.Error(err))
		} else {
			ttl := time.Duration(cfg.Cache.TTL) * time.Second
			opts = append(opts, footballdata.WithCache(footballdata.NewRedisCache(a.redis, ttl, log)))
			zapLog.Info("Redis response cache enabled", zap.Duration("ttl", ttl))
		}
	}
	client := footballdata.NewClient(footballdata.NewConfig(cfg), log, opts...)

	cat := catalog.Default()
	if cfg.Database.Postgres.Enabled {
		if err := retryWithBackoff(func() error {
			var err error
			a.db, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 3, time.Second, zapLog, "PostgreSQL connection"); err != nil {
			zapLog.Warn("catalog database unavailable, using built-in identifiers", zap.Error(err))
		} else if n, err := cat.LoadPostgres(ctx, a.db); err != nil {
			zapLog.Warn("catalog load failed, using built-in identifiers", zap.Error(err))
		} else {
			zapLog.Info("catalog loaded from PostgreSQL", zap.Int("entries", n))
		}
	}

	registry := tools.NewRegistry(log)
	if err := tools.RegisterFootball(registry, client, cfg.Pipeline.HeadToHeadLimit); err != nil {
		a.close()
		return nil, apperrors.NewInternalError(err)
	}

	a.pipeline = pipeline.New(cfg, runner, registry, cat, obs, log)
	a.errors = apperrors.NewErrorHandler(log)

	zapLog.Debug("football buddy ready",
		zap.String("model", cfg.LLM.Model),
		zap.String("planner", cfg.Pipeline.Planner),
		zap.Strings("tools", registry.Names()),
	)
	return a, nil
}
