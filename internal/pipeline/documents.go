package pipeline

import (
	"fmt"

	"github.com/nearbite/nearbite/internal/catalog"
	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/rank"
	"github.com/nearbite/nearbite/internal/retrieval"
)

// buildDocuments composes one retrieval document per merchant, carrying the
// ranked positions and the best applicable benefit as metadata.
func buildDocuments(merchants []model.Merchant, resolved map[string]catalog.MerchantDiscounts, lists rank.Lists) []retrieval.Document {
	discountRank := rankIndex(lists.ByDiscount)
	distanceRank := rankIndex(lists.ByDistance)

	docs := make([]retrieval.Document, 0, len(merchants))
	for i, m := range merchants {
		md := resolved[m.Name]
		docs = append(docs, retrieval.ComposeDocument(
			fmt.Sprintf("doc%d", i+1),
			m,
			retrieval.Metadata{
				DiscountRank: discountRank[m.StoreID],
				DistanceRank: distanceRank[m.StoreID],
				BestDiscount: bestDiscount(md.Discounts),
				Reason:       md.Reason,
			},
		))
	}
	return docs
}

func rankIndex(entries []model.RankedEntry) map[string]int {
	idx := make(map[string]int, len(entries))
	for _, e := range entries {
		idx[e.StoreID] = e.Rank
	}
	return idx
}

// bestDiscount names the first program the user actually qualifies for,
// preferring true discounts over accrual programs.
func bestDiscount(programs []model.DiscountProgram) string {
	var fallback string
	for _, p := range programs {
		if !p.AppliedByUserProfile {
			continue
		}
		if p.IsDiscount {
			return p.DiscountName
		}
		if fallback == "" {
			fallback = p.DiscountName
		}
	}
	return fallback
}
