// cmd/footbuddy/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"football-buddy/internal/api"
	"football-buddy/internal/common/config"
	"football-buddy/internal/session"
)

var flags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:           "footbuddy",
	Short:         "Answer football questions with live football-data.org data",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive question loop",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.AddCommand(chatCmd, askCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s := session.New(a.pipeline, a.errors, cmd.InOrStdin(), cmd.OutOrStdout(), a.log)
	if err := s.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runAsk(cmd *cobra.Command, argv []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	question := strings.Join(argv, " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%s", session.InvalidInput)
	}

	answer, err := a.pipeline.Run(ctx, question)
	if err != nil {
		return errors.New(a.errors.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// One run makes up to three model calls and MaxToolCalls data calls.
	requestTimeout := 3*config.GetDuration(a.cfg.LLM.Timeout) +
		time.Duration(a.cfg.Pipeline.MaxToolCalls)*config.GetDuration(a.cfg.FootballData.Timeout)
	router := api.SetupRouter(a.pipeline, a.errors, requestTimeout, a.log)

	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.zapLog.Info("HTTP API listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-serveErr:
		a.zapLog.Error("HTTP server failed", zap.Error(err))
		return err
	}

	a.zapLog.Info("Shutting down HTTP API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.zapLog.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}

	a.zapLog.Info("HTTP API stopped")
	return nil
}
