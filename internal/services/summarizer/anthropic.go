package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mindweb/internal/config"
)

// maxPromptRunes bounds the page text sent to the model.
const maxPromptRunes = 24000

const systemPrompt = "You summarize web pages for a study notebook. " +
	"Answer with the summary only, as plain prose without headings, lists or preamble."

// Model writes a summary of at most maxWords words.
type Model interface {
	Summarize(ctx context.Context, title, body string, maxWords int) (string, error)
}

// AnthropicModel is a Model backed by the Anthropic Messages API.
type AnthropicModel struct {
	client anthropic.Client
	cfg    config.LLMConfig
}

func NewAnthropicModel(cfg config.LLMConfig) *AnthropicModel {
	return &AnthropicModel{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}
}

func (m *AnthropicModel) Summarize(ctx context.Context, title, body string, maxWords int) (string, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}
	if r := []rune(body); len(r) > maxPromptRunes {
		body = string(r[:maxPromptRunes])
	}
	prompt := fmt.Sprintf("Summarize the following page in at most %d words.\n\nTitle: %s\n\n%s", maxWords, title, body)

	msg, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.cfg.Model),
		MaxTokens: int64(m.cfg.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("anthropic returned no text")
	}
	return out, nil
}
