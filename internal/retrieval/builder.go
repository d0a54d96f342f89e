package retrieval

import (
	"sort"
	"sync"

	"github.com/nearbite/nearbite/internal/model"
)

// DefaultSession namespaces documents when the caller supplies no session id.
const DefaultSession = "default"

// DefaultTopK is the number of documents returned by Search when the
// configured value is zero.
const DefaultTopK = 3

// ScoredDocument pairs a document with its retrieval score.
type ScoredDocument struct {
	Document
	Score float64
}

// Output is everything the retrieval stage hands to answer generation.
type Output struct {
	TopK           []ScoredDocument
	LLMContext     string
	FallbackAnswer string
}

// Builder owns the per-session document arenas and the scoring/formatting
// strategies. Sessions are request-scoped: one pipeline run writes and reads
// its own session, and ClearSession releases it.
type Builder struct {
	mu       sync.RWMutex
	sessions map[string][]Document

	scorer    Scorer
	formatter ContextFormatter
	topK      int
}

// NewBuilder selects strategies for the given ablation variant.
func NewBuilder(variant model.Variant, topK int) *Builder {
	if topK <= 0 {
		topK = DefaultTopK
	}
	b := &Builder{
		sessions:  make(map[string][]Document),
		scorer:    CosineScorer{},
		formatter: CandidateFormatter{},
		topK:      topK,
	}
	switch variant {
	case model.VariantNoRerank:
		b.scorer = RawCosineScorer{}
	case model.VariantNoContext:
		b.formatter = StubFormatter{}
	}
	return b
}

// Index replaces the session's documents.
func (b *Builder) Index(sessionID string, docs []Document) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = docs
}

// Search scores the session's documents against the query and returns the
// top K, scores rounded to four decimals, ties broken by doc id.
func (b *Builder) Search(sessionID, query string) []ScoredDocument {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	queryTokens := Tokenize(query)

	b.mu.RLock()
	docs := b.sessions[sessionID]
	b.mu.RUnlock()

	scored := make([]ScoredDocument, 0, len(docs))
	for _, d := range docs {
		scored = append(scored, ScoredDocument{
			Document: d,
			Score:    round4(b.scorer.Score(queryTokens, d)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].DocID < scored[j].DocID
	})

	if len(scored) > b.topK {
		scored = scored[:b.topK]
	}
	return scored
}

// Build runs search and renders both the LLM context and the fallback answer.
func (b *Builder) Build(sessionID, query string, profile *model.UserProfile) Output {
	top := b.Search(sessionID, query)
	return Output{
		TopK:           top,
		LLMContext:     b.formatter.Format(query, profile, top),
		FallbackAnswer: FallbackAnswer(top),
	}
}

// ClearSession discards a session's documents.
func (b *Builder) ClearSession(sessionID string) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}
