package model

// Review is a short visitor review attached to a merchant.
type Review struct {
	Author  string   `json:"author,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
	Content string   `json:"content"`
}

// Merchant is one nearby place discovered for a query. StoreID is synthesized
// as s1..sN when the provider lacks a stable id; it is stable only within one
// pipeline run, so downstream joins go by Name.
type Merchant struct {
	StoreID        string       `json:"storeId"`
	Name           string       `json:"name"`
	Category       string       `json:"category,omitempty"`
	Address        string       `json:"address,omitempty"`
	Coords         *Coordinates `json:"coords,omitempty"`
	DistanceMeters *float64     `json:"distanceMeters,omitempty"`
	Reviews        []Review     `json:"reviews,omitempty"`
}

// Keywords is the classification result for a user query. PlaceType drives
// merchant discovery; its absence downgrades the request to best-effort mode.
type Keywords struct {
	PlaceType  string   `json:"place_type,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// Query is the validated and classified user request.
type Query struct {
	Text     string   `json:"text"`
	Keywords Keywords `json:"keywords"`
}

// RankedEntry is one merchant in a ranked output list.
type RankedEntry struct {
	StoreID        string            `json:"storeId"`
	Name           string            `json:"name"`
	DistanceMeters *float64          `json:"distanceMeters,omitempty"`
	AllBenefits    []DiscountProgram `json:"all_benefits"`
	// BestSavings is the highest redeemable savings on the reference order
	// amount; DiscountRate is that value as a percentage of the amount.
	// Both are zero on the distance list.
	BestSavings  int64   `json:"bestSavings"`
	DiscountRate float64 `json:"discount_rate"`
	Rank         int     `json:"rank"`
}

// ScoredDoc is one retrieval result: a merchant document with its lexical
// score. The score is cosine similarity plus a rank bonus and may exceed 1.0.
type ScoredDoc struct {
	DocID     string  `json:"docId"`
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}
