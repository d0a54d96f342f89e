package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/catalog"
	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/rank"
)

func TestBuildDocuments(t *testing.T) {
	d := 120.0
	merchants := []model.Merchant{
		{StoreID: "s1", Name: "카페A", Category: "카페", DistanceMeters: &d},
		{StoreID: "s2", Name: "카페B", Category: "카페"},
	}
	resolved := map[string]catalog.MerchantDiscounts{
		"카페A": {
			Name:    "카페A",
			Matched: true,
			Discounts: []model.DiscountProgram{
				{DiscountName: "T멤버십 적립", AppliedByUserProfile: true, IsDiscount: false},
				{DiscountName: "신한카드 20% 할인", AppliedByUserProfile: true, IsDiscount: true},
			},
		},
		"카페B": {Name: "카페B", Reason: "brand not found"},
	}
	lists := rank.Lists{
		ByDiscount: []model.RankedEntry{{StoreID: "s1", Rank: 1}, {StoreID: "s2", Rank: 2}},
		ByDistance: []model.RankedEntry{{StoreID: "s1", Rank: 1}},
	}

	docs := buildDocuments(merchants, resolved, lists)
	require.Len(t, docs, 2)

	assert.Equal(t, "doc1", docs[0].DocID)
	assert.Equal(t, 1, docs[0].Metadata.DiscountRank)
	assert.Equal(t, 1, docs[0].Metadata.DistanceRank)
	// The true discount wins over the accrual program.
	assert.Equal(t, "신한카드 20% 할인", docs[0].Metadata.BestDiscount)

	assert.Equal(t, 2, docs[1].Metadata.DiscountRank)
	assert.Zero(t, docs[1].Metadata.DistanceRank)
	assert.Empty(t, docs[1].Metadata.BestDiscount)
	assert.Equal(t, "brand not found", docs[1].Metadata.Reason)
}

func TestBestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		programs []model.DiscountProgram
		want     string
	}{
		{"empty", nil, ""},
		{"none applied", []model.DiscountProgram{{DiscountName: "x", IsDiscount: true}}, ""},
		{
			"accrual only",
			[]model.DiscountProgram{{DiscountName: "T멤버십 적립", AppliedByUserProfile: true}},
			"T멤버십 적립",
		},
		{
			"discount preferred",
			[]model.DiscountProgram{
				{DiscountName: "T멤버십 적립", AppliedByUserProfile: true},
				{DiscountName: "통신사 10% 할인", AppliedByUserProfile: true, IsDiscount: true},
			},
			"통신사 10% 할인",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestDiscount(tt.programs))
		})
	}
}
