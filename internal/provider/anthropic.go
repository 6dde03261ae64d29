// Package provider connects to the hosted language model (Anthropic Messages API).
package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = anthropic.ModelClaude3_7SonnetLatest
	DefaultMaxTokens = 1024
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("missing Anthropic API key; set MEDBOT_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY")

// NewAnthropicClient returns a client authenticated with apiKey.
// Extra options (HTTP client, base URL) are applied after the key.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) (*anthropic.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	c := anthropic.NewClient(all...)
	return &c, nil
}

// Completer issues single-shot requests: one optional system instruction,
// one user prompt, text out.
type Completer struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
}

// Complete sends prompt (with system, when non-empty) and returns the reply text.
func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model(),
		MaxTokens: c.maxTokens(),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	msg, err := c.Client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	return Text(msg), nil
}

func (c *Completer) model() anthropic.Model {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

func (c *Completer) maxTokens() int64 {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// Text joins the text blocks of msg with newlines, skipping empty ones.
func Text(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, b := range msg.Content {
		if tb, ok := b.AsAny().(anthropic.TextBlock); ok && tb.Text != "" {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n")
}
