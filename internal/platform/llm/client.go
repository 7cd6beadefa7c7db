// Package llm wraps github.com/anthropics/anthropic-sdk-go behind the
// generate_json(prompt, model, temperature) -> object contract the
// Document Pipeline Driver depends on (spec §6 LLM contract). The
// message-building and response-decoding idiom follows the healing loop in
// handleui-detent's heal/loop package: a single-turn request, no tool use,
// reading the first text block of the response.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// DefaultModel mirrors the teacher's DefaultModel choice for its own
// single-turn JSON-extraction calls.
const DefaultModel = anthropic.ModelClaudeSonnet4_5

// Client implements the narrow GenerateJSON capability consumed by
// modules/documents.
type Client struct {
	api anthropic.Client
}

func New(api anthropic.Client) *Client {
	return &Client{api: api}
}

// GenerateJSON sends prompt as a single user turn with no tools, requests
// JSON back, and decodes the first text block into raw JSON. temperature
// must be in [0,1] per the contract; callers are responsible for picking
// the right value per step (0.3 experience rewrite, 0.5 summary).
func (c *Client) GenerateJSON(ctx context.Context, prompt, model string, temperature float64) (json.RawMessage, error) {
	m := anthropic.Model(model)
	if m == "" {
		m = DefaultModel
	}

	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     m,
		MaxTokens: 4096,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: "Respond with a single JSON object and nothing else. No markdown fences, no commentary."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	for i := range resp.Content {
		if text, ok := resp.Content[i].AsAny().(anthropic.TextBlock); ok {
			return json.RawMessage(text.Text), nil
		}
	}
	return nil, fmt.Errorf("llm response contained no text block")
}
