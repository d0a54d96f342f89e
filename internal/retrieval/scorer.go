package retrieval

import "math"

// Rank bonus weights. The bonus is added to a cosine in [0, 1], so final
// scores can exceed 1.0; callers must not assume a [0, 1] range.
const (
	discountRankBonus = 0.15
	distanceRankBonus = 0.10
)

// Scorer scores one document against a query term-frequency vector. Selected
// at construction time so ablation variants need no runtime switching.
type Scorer interface {
	Score(query map[string]int, doc Document) float64
}

// CosineScorer scores by term-frequency cosine similarity plus the rank
// bonus (+0.15/discountRank, +0.10/distanceRank when those ranks exist).
type CosineScorer struct{}

func (CosineScorer) Score(query map[string]int, doc Document) float64 {
	score := cosine(query, doc.Tokens)
	if doc.Metadata.DiscountRank > 0 {
		score += discountRankBonus / float64(doc.Metadata.DiscountRank)
	}
	if doc.Metadata.DistanceRank > 0 {
		score += distanceRankBonus / float64(doc.Metadata.DistanceRank)
	}
	return score
}

// RawCosineScorer is the no_rerank ablation: cosine only, no rank bonus.
type RawCosineScorer struct{}

func (RawCosineScorer) Score(query map[string]int, doc Document) float64 {
	return cosine(query, doc.Tokens)
}

func cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, fa := range a {
		normA += float64(fa) * float64(fa)
		if fb, ok := b[term]; ok {
			dot += float64(fa) * float64(fb)
		}
	}
	for _, fb := range b {
		normB += float64(fb) * float64(fb)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// round4 rounds a score to four decimals for stable output.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
