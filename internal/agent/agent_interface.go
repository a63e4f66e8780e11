package agent

import (
	"context"

	"github.com/ashureev/gtm-insight/internal/prompt"
)

// Generator is the remote text generation service.
// It is implemented by the GenAI client and by test fakes.
type Generator interface {
	// Generate sends one request and returns the generated text.
	Generate(ctx context.Context, req prompt.Request) (string, error)
}

// Ensure GenAIGenerator implements Generator.
var _ Generator = (*GenAIGenerator)(nil)
