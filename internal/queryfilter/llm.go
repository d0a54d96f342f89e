package queryfilter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/pkg/perplexity"
)

const extractPrompt = `다음 사용자 요청에서 검색 키워드를 추출해 JSON으로만 답하세요.
형식: {"place_type": "...", "attributes": ["..."], "location": "..."}
추출할 수 없는 필드는 빈 값으로 두고, 요청에 없는 값을 만들어내지 마세요.

사용자 요청: `

// LLMExtractor asks a chat-completion backend for keywords and falls back to
// the rule-based extractor on any failure. It never returns an error.
type LLMExtractor struct {
	client   perplexity.Client
	fallback Extractor
}

// NewLLMExtractor wires the chat backend in front of the rule-based fallback.
func NewLLMExtractor(client perplexity.Client, fallback Extractor) *LLMExtractor {
	return &LLMExtractor{client: client, fallback: fallback}
}

// Extract queries the LLM; malformed or failed responses degrade to rules.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (model.Keywords, error) {
	kw, err := e.tryLLM(ctx, text)
	if err != nil {
		zap.L().Debug("queryfilter: llm extraction failed, using rules", zap.Error(err))
		return e.fallback.Extract(ctx, text)
	}
	return kw, nil
}

func (e *LLMExtractor) tryLLM(ctx context.Context, text string) (model.Keywords, error) {
	resp, err := e.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "user", Content: extractPrompt + text},
		},
	})
	if err != nil {
		return model.Keywords{}, eris.Wrap(err, "queryfilter: llm extract")
	}

	content := stripFences(resp.FirstContent())
	var kw model.Keywords
	if err := json.Unmarshal([]byte(content), &kw); err != nil {
		return model.Keywords{}, eris.Wrap(err, "queryfilter: decode llm keywords")
	}

	// Drop anything the model invented that is not literally in the query.
	kw.Attributes = presentOnly(kw.Attributes, text)
	return kw, nil
}

// presentOnly keeps attributes whose head token appears in the query text.
func presentOnly(attrs []string, text string) []string {
	var out []string
	for _, a := range attrs {
		head := a
		if idx := strings.IndexRune(a, ' '); idx > 0 {
			head = a[:idx]
		}
		if head != "" && strings.Contains(text, head) {
			out = append(out, a)
		}
	}
	return out
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
