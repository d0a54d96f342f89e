// Package answer turns the retrieval context into the final natural-language
// recommendation.
package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nearbite/nearbite/pkg/anthropic"
)

// Generator produces the answer text. Without a configured client every call
// returns the deterministic fallback, so the pipeline never depends on the
// LLM being up.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewGenerator(client anthropic.Client, model string, maxTokens int64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{client: client, model: model, maxTokens: maxTokens}
}

// Enabled reports whether an LLM client is configured.
func (g *Generator) Enabled() bool {
	return g.client != nil
}

// Generate asks the LLM to answer from the supplied context. Any failure or
// empty completion degrades to the fallback text.
func (g *Generator) Generate(ctx context.Context, llmContext, fallback string) string {
	if g.client == nil || strings.TrimSpace(llmContext) == "" {
		return fallback
	}

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: llmContext},
		},
	})
	if err != nil {
		zap.L().Warn("answer: generation failed, using fallback", zap.Error(err))
		return fallback
	}

	text := strings.TrimSpace(resp.FirstText())
	if text == "" {
		zap.L().Warn("answer: empty completion, using fallback")
		return fallback
	}

	resp.Usage.LogUsage(g.model, "answer")
	return text
}
