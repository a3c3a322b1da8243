// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiMaxTokens    = 4095
)

// contentGenerator is the subset of *genai.Models the backend uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend calls the Gemini API with function calling forced onto
// extract_metadata.
type GeminiBackend struct {
	models contentGenerator
	model  string
}

// NewGeminiBackend creates a Gemini API client from cfg.
func NewGeminiBackend(ctx context.Context, cfg types.AIConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required (set GEMINI_API_KEY)")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" || model == defaultOpenAIModel {
		model = defaultGeminiModel
	}
	return &GeminiBackend{models: client.Models, model: model}, nil
}

func generateConfig() *genai.GenerateContentConfig {
	temperature := float32(0)
	topP := float32(1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       &temperature,
		TopP:              &topP,
		MaxOutputTokens:   geminiMaxTokens,
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        FunctionName,
				Description: systemPrompt,
				Parameters:  geminiSchema(),
			}},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{FunctionName},
			},
		},
	}
}

// Extract sends text to Gemini and decodes the first extract_metadata call.
func (g *GeminiBackend) Extract(ctx context.Context, text string) (*types.Metadata, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(text), generateConfig())
	if err != nil {
		return nil, fmt.Errorf("calling Gemini API: %w", err)
	}

	call := firstFunctionCall(resp)
	if call == nil {
		return nil, nil
	}

	raw, err := json.Marshal(call.Args)
	if err != nil {
		return nil, fmt.Errorf("re-encoding %s arguments: %w", FunctionName, err)
	}
	var meta types.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s arguments: %w", FunctionName, err)
	}
	return &meta, nil
}

func firstFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.FunctionCall != nil && part.FunctionCall.Name == FunctionName {
			return part.FunctionCall
		}
	}
	return nil
}
