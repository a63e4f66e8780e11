package agent

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ashureev/gtm-insight/internal/prompt"
	"google.golang.org/genai"
)

// GenAIGenerator generates reports with Google's Gemini API.
type GenAIGenerator struct {
	client *genai.Client
}

// GenAIConfig holds connection settings for the Gemini API.
type GenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint. Empty means the public endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, cfg GenAIConfig) (*GenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{client: client}, nil
}

// Generate sends req to the model named in req.ModelID.
func (g *GenAIGenerator) Generate(ctx context.Context, req prompt.Request) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		req.ModelID,
		genai.Text(req.UserContent),
		generateConfig(req),
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

func generateConfig(req prompt.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Params.Temperature,
		MaxOutputTokens: req.Params.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}
