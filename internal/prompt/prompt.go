// Package prompt builds the requests sent to the text generation service.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/gtm-insight/internal/domain"
)

var (
	// ErrEmptyInput is returned when manual mode is given blank text.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoPrompt is returned for modes that have nothing to generate.
	ErrNoPrompt = errors.New("mode has no prompt")
)

// AutoScanQuery is the fixed question asked by the auto-scan screen.
const AutoScanQuery = "Identify the three most significant supply-chain disruptions in global agri-food trade " +
	"reported over the past two weeks. For each, summarise what happened, the affected products and regions, " +
	"and the likely impact on sourcing and pricing."

// Params are optional generation parameters. Zero values mean model defaults.
type Params struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens int32    `json:"max_output_tokens,omitempty"`
}

// Request is one fully assembled generation call.
type Request struct {
	SystemInstruction string `json:"system_instruction"`
	UserContent       string `json:"user_content"`
	ModelID           string `json:"model_id"`
	Params            Params `json:"params"`
	// Search enables search-grounded generation on the remote side.
	Search bool `json:"search"`
}

// Builder assembles requests from a fixed persona and model settings.
type Builder struct {
	Persona string
	ModelID string
	Params  Params
	Search  bool
}

// NewBuilder returns a Builder using the default persona written in language.
func NewBuilder(modelID, language string, params Params, search bool) *Builder {
	return &Builder{
		Persona: Persona(language),
		ModelID: modelID,
		Params:  params,
		Search:  search,
	}
}

// Build returns the request for mode. userText is only read in manual mode,
// where it is forwarded verbatim.
func (b *Builder) Build(mode domain.Mode, userText string) (Request, error) {
	var content string
	switch mode {
	case domain.ModeAuto:
		content = AutoScanQuery
	case domain.ModeManual:
		if strings.TrimSpace(userText) == "" {
			return Request{}, ErrEmptyInput
		}
		content = userText
	case domain.ModeHome:
		return Request{}, ErrNoPrompt
	default:
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	return Request{
		SystemInstruction: b.Persona,
		UserContent:       content,
		ModelID:           b.ModelID,
		Params:            b.Params,
		Search:            b.Search,
	}, nil
}
