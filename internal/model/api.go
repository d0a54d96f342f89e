package model

// Variant selects an ablation behavior for the retrieval stage. The pipeline
// carries a default; a request may name its own. Changing the variant never
// changes the response contract.
type Variant string

const (
	VariantBaseline  Variant = "baseline"
	VariantNoRerank  Variant = "no_rerank"
	VariantNoContext Variant = "no_context"
)

// RecommendRequest is the external request contract.
type RecommendRequest struct {
	UserQuery   string       `json:"userQuery"`
	UserProfile *UserProfile `json:"userProfile,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	SessionID   string       `json:"sessionId,omitempty"`
	Variant     Variant      `json:"variant,omitempty"`
}

// MerchantLists carries the two ranked output lists, at most three entries each.
type MerchantLists struct {
	ByDiscount []RankedEntry `json:"byDiscount"`
	ByDistance []RankedEntry `json:"byDistance"`
}

// RetrievalBlock carries the retrieval stage outputs.
type RetrievalBlock struct {
	TopK           []ScoredDoc `json:"topK"`
	LLMContext     string      `json:"llmContext"`
	FallbackAnswer string      `json:"fallbackAnswer"`
}

// Diagnostics reports how far the pipeline got and which stages degraded.
type Diagnostics struct {
	Stage    string   `json:"stage"`
	Degraded []string `json:"degraded"`
}

// RecommendResponse is the external response contract.
type RecommendResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message,omitempty"`
	Merchants   MerchantLists  `json:"merchants"`
	Retrieval   RetrievalBlock `json:"retrieval"`
	Answer      string         `json:"answer,omitempty"`
	Diagnostics Diagnostics    `json:"diagnostics"`
}
