// Package session runs the interactive question loop.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"football-buddy/internal/common/logger"
	"football-buddy/internal/models"
)

const (
	Greeting       = "Hi dude, Im your Football Assistant for today!\nWhat would you like to know? Type 'quit' to kill me."
	Prompt         = "\nYour question: "
	Goodbye        = "Goodbye!"
	InvalidInput   = "Please enter a valid question."
	ResponsePrefix = "\nResponse: "
)

var quitWords = map[string]bool{"quit": true, "exit": true, "q": true}

// Runner answers one question.
type Runner interface {
	Run(ctx context.Context, question string) (*models.Answer, error)
}

// ErrorDescriber turns a failed run into the sentence shown to the user.
type ErrorDescriber interface {
	Describe(err error) string
}

type Session struct {
	runner Runner
	errors ErrorDescriber
	in     *bufio.Reader
	out    io.Writer
	logger logger.Logger
}

func New(runner Runner, describer ErrorDescriber, in io.Reader, out io.Writer, log logger.Logger) *Session {
	return &Session{
		runner: runner,
		errors: describer,
		in:     bufio.NewReader(in),
		out:    out,
		logger: log.With(map[string]interface{}{"component": "session"}),
	}
}

type readResult struct {
	line string
	err  error
}

// Loop reads questions until quit or EOF. Pipeline failures are reported and the
// loop continues; read errors and context cancellation end it early, even while
// waiting for input.
func (s *Session) Loop(ctx context.Context) error {
	fmt.Fprintln(s.out, Greeting)

	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, Prompt)

		var r readResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case r = <-lines:
		}

		line, err := r.line, r.err
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read question: %w", err)
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.out)
			return nil
		}

		question := strings.TrimRight(line, "\r\n")
		if quitWords[strings.ToLower(question)] {
			fmt.Fprintln(s.out, Goodbye)
			return nil
		}

		if strings.TrimSpace(question) == "" {
			fmt.Fprintln(s.out, InvalidInput)
		} else {
			s.ask(ctx, question)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// readLines feeds input lines to the loop until a read fails or done is closed.
// A read blocked on input outlives a cancelled loop; it ends with the process.
func (s *Session) readLines(done <-chan struct{}) <-chan readResult {
	lines := make(chan readResult)
	go func() {
		for {
			line, err := s.in.ReadString('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func (s *Session) ask(ctx context.Context, question string) {
	answer, err := s.runner.Run(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(s.out, ResponsePrefix+s.errors.Describe(err))
		return
	}

	s.logger.Debug("question answered", map[string]interface{}{
		"runId":      answer.RunID,
		"sufficient": answer.Sufficient,
	})
	fmt.Fprintln(s.out, ResponsePrefix+answer.Text)
}
