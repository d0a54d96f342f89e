// Package retrieval builds a session-scoped lexical index over merchant
// documents and assembles the LLM context for answer generation.
package retrieval

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nearbite/nearbite/internal/model"
)

const reviewSnippetLen = 150

// Metadata carries the merchant facts attached to a document.
type Metadata struct {
	StoreID         string   `json:"storeId"`
	StoreName       string   `json:"storeName"`
	Category        string   `json:"category,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	BestDiscount    string   `json:"bestDiscount,omitempty"`
	DiscountRank    int      `json:"discountRank,omitempty"`
	DistanceRank    int      `json:"distanceRank,omitempty"`
	ReviewHighlight string   `json:"reviewHighlight,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// Document is one merchant's indexed text. Documents live for a single
// pipeline run inside their session.
type Document struct {
	DocID    string
	Text     string
	Tokens   map[string]int
	Metadata Metadata
}

// ComposeDocument builds the document for one merchant, concatenating the
// known facts with ". " separators.
func ComposeDocument(docID string, m model.Merchant, meta Metadata) Document {
	meta.StoreID = m.StoreID
	meta.StoreName = m.Name
	meta.Category = m.Category
	meta.Distance = m.DistanceMeters

	parts := []string{merchantTitle(m)}
	if m.Address != "" {
		parts = append(parts, "주소: "+m.Address)
	}
	if m.DistanceMeters != nil {
		parts = append(parts, fmt.Sprintf("현재 위치에서 %.0fm 거리", *m.DistanceMeters))
	}
	if meta.DiscountRank > 0 {
		parts = append(parts, fmt.Sprintf("할인 우선순위 %d위", meta.DiscountRank))
	}
	if meta.DistanceRank > 0 {
		parts = append(parts, fmt.Sprintf("거리 우선순위 %d위", meta.DistanceRank))
	}
	if meta.BestDiscount != "" {
		parts = append(parts, "대표 혜택: "+meta.BestDiscount)
	}
	if meta.Reason != "" {
		parts = append(parts, meta.Reason)
	}
	if highlight := reviewHighlight(m.Reviews); highlight != "" {
		meta.ReviewHighlight = highlight
		parts = append(parts, "리뷰: "+highlight)
	}

	text := strings.Join(parts, ". ")
	return Document{
		DocID:    docID,
		Text:     text,
		Tokens:   Tokenize(text),
		Metadata: meta,
	}
}

func merchantTitle(m model.Merchant) string {
	if m.Category != "" {
		return fmt.Sprintf("%s (%s)", m.Name, m.Category)
	}
	return m.Name
}

// reviewHighlight renders at most one review: author, star rating when
// present, content truncated with an ellipsis.
func reviewHighlight(reviews []model.Review) string {
	for _, r := range reviews {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		if utf8.RuneCountInString(content) > reviewSnippetLen {
			content = string([]rune(content)[:reviewSnippetLen]) + "…"
		}
		var b strings.Builder
		if r.Author != "" {
			b.WriteString(r.Author)
			if r.Rating != nil {
				fmt.Fprintf(&b, " (★%.1f)", *r.Rating)
			}
			b.WriteString(": ")
		} else if r.Rating != nil {
			fmt.Fprintf(&b, "★%.1f: ", *r.Rating)
		}
		b.WriteString(content)
		return b.String()
	}
	return ""
}
