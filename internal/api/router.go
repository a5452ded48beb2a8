// Package api exposes the pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "football-buddy/internal/common/errors"
	"football-buddy/internal/common/logger"
	"football-buddy/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Runner interface {
	Run(ctx context.Context, question string) (*models.Answer, error)
}

type ErrorDescriber interface {
	Describe(err error) string
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	RunID      string   `json:"runId"`
	Answer     string   `json:"answer"`
	Sufficient bool     `json:"sufficient"`
	ToolCalls  []string `json:"toolCalls"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SetupRouter builds the gin engine. requestTimeout bounds one pipeline run; zero disables it.
func SetupRouter(runner Runner, describer ErrorDescriber, requestTimeout time.Duration, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := r.Group("/api")
	{
		group.POST("/ask", AskHandler(runner, describer, requestTimeout))
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AskHandler answers {"question": "..."} with one pipeline run.
func AskHandler(runner Runner, describer ErrorDescriber, requestTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req askRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a question field"})
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "Please enter a valid question."})
			return
		}

		ctx := c.Request.Context()
		if requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, requestTimeout)
			defer cancel()
		}

		answer, err := runner.Run(ctx, req.Question)
		if err != nil {
			status, code := statusFor(err)
			c.JSON(status, errorResponse{Error: describer.Describe(err), Code: code})
			return
		}

		toolCalls := answer.ToolCalls
		if toolCalls == nil {
			toolCalls = []string{}
		}
		c.JSON(http.StatusOK, askResponse{
			RunID:      answer.RunID,
			Answer:     answer.Text,
			Sufficient: answer.Sufficient,
			ToolCalls:  toolCalls,
		})
	}
}

// statusFor reports model failures, including unusable model output, as 502 or 504
// and everything else as 500.
func statusFor(err error) (int, string) {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, string(apperrors.ErrCodeLLMTimeout)
		}
		return http.StatusInternalServerError, string(apperrors.ErrCodeInternal)
	}

	switch apperrors.GetErrorCategory(stdErr.Code) {
	case "LANGUAGE_MODEL", "PIPELINE":
		if stdErr.Code == apperrors.ErrCodeLLMTimeout {
			return http.StatusGatewayTimeout, string(stdErr.Code)
		}
		return http.StatusBadGateway, string(stdErr.Code)
	default:
		return http.StatusInternalServerError, string(stdErr.Code)
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
