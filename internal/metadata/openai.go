// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-ingest/internal/httputil"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	openAIMaxTokens      = 4095
)

// OpenAIBackend calls the OpenAI chat completions API with a single strict
// function tool.
type OpenAIBackend struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIBackend creates a backend from cfg. An API key is required.
func NewOpenAIBackend(cfg types.AIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required (set OPENAI_API_KEY)")
	}
	b := &OpenAIBackend{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if b.baseURL == "" {
		b.baseURL = defaultOpenAIBaseURL
	}
	if b.model == "" {
		b.model = defaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		b.client.Timeout = 120 * time.Second
	}
	return b, nil
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type functionDef struct {
	Name       string         `json:"name"`
	Strict     bool           `json:"strict"`
	Parameters map[string]any `json:"parameters"`
}

type tool struct {
	Type     string      `json:"type"`
	Function functionDef `json:"function"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the /chat/completions request body. Sampling parameters
// are sent even when zero.
type chatRequest struct {
	Model             string         `json:"model"`
	Messages          []chatMessage  `json:"messages"`
	Temperature       float64        `json:"temperature"`
	MaxTokens         int            `json:"max_tokens"`
	TopP              float64        `json:"top_p"`
	FrequencyPenalty  float64        `json:"frequency_penalty"`
	PresencePenalty   float64        `json:"presence_penalty"`
	Tools             []tool         `json:"tools"`
	ParallelToolCalls bool           `json:"parallel_tool_calls"`
	ResponseFormat    responseFormat `json:"response_format"`
}

type toolCall struct {
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b *OpenAIBackend) request(text string) chatRequest {
	return chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: []contentPart{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: []contentPart{{Type: "text", Text: text}}},
		},
		Temperature: 0,
		MaxTokens:   openAIMaxTokens,
		TopP:        1,
		Tools: []tool{{
			Type: "function",
			Function: functionDef{
				Name:       FunctionName,
				Strict:     true,
				Parameters: JSONSchema(),
			},
		}},
		ParallelToolCalls: true,
		ResponseFormat:    responseFormat{Type: "text"},
	}
}

// Extract sends text as a single completion request and parses the
// arguments of the first tool call.
func (b *OpenAIBackend) Extract(ctx context.Context, text string) (*types.Metadata, error) {
	header := http.Header{"Authorization": {"Bearer " + b.apiKey}}

	var resp chatResponse
	_, err := httputil.PostJSON(ctx, b.client, b.baseURL+"/chat/completions", header, b.request(text), &resp)
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI API: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, nil
	}

	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	var meta types.Metadata
	if err := json.Unmarshal([]byte(args), &meta); err != nil {
		return nil, fmt.Errorf("parsing %s arguments: %w", FunctionName, err)
	}
	return &meta, nil
}
