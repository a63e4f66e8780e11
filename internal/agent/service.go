package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/gtm-insight/internal/prompt"
)

// Service runs generation requests and turns their outcome into a Result.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService creates a service backed by generator. A nil generator puts
// the service in "not connected" mode.
func NewService(generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator: generator,
		logger:    logger,
	}
}

// Connected reports whether a generator is configured.
func (s *Service) Connected() bool {
	return s != nil && s.generator != nil
}

// Execute makes exactly one call to the generator and blocks until it returns.
// Errors are never returned; they are reported through Result.Failure.
func (s *Service) Execute(ctx context.Context, req prompt.Request) (res Result) {
	if !s.Connected() {
		return Failed(Failure{
			Kind:    FailureNotConnected,
			Message: "no API key configured",
			Hint:    HintFor(FailureNotConnected),
		})
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Generator panicked", "model", req.ModelID, "panic", r)
			res = Failed(Failure{
				Kind:    FailureUnknown,
				Message: fmt.Sprint(r),
				Hint:    HintFor(FailureUnknown),
			})
		}
	}()

	start := time.Now()
	text, err := s.generator.Generate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		f := Classify(err)
		s.logger.Warn("Generation failed",
			"model", req.ModelID,
			"kind", f.Kind,
			"duration", elapsed,
			"error", err,
		)
		return Failed(f)
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Warn("Generation returned empty text", "model", req.ModelID, "duration", elapsed)
		return Failed(Failure{
			Kind:    FailureEmpty,
			Message: "the model returned an empty response",
			Hint:    HintFor(FailureEmpty),
		})
	}

	s.logger.Info("Generation completed",
		"model", req.ModelID,
		"search", req.Search,
		"input_length", len(req.UserContent),
		"output_length", len(text),
		"duration", elapsed,
	)
	return Succeeded(text)
}
