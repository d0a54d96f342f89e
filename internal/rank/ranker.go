package rank

import (
	"sort"

	"github.com/nearbite/nearbite/internal/benefit"
	"github.com/nearbite/nearbite/internal/model"
)

// MaxEntries caps each output list.
const MaxEntries = 3

// Input is everything the ranker needs for one pipeline run. Discounts is
// the canonical per-merchant-name map produced by Normalize; joins are by
// merchant display name.
type Input struct {
	Merchants       []model.Merchant
	Discounts       map[string][]model.DiscountProgram
	Profile         *model.UserProfile
	ReferenceAmount int64

	// Eval, when set, restricts eligibility and savings to programs whose
	// channel, time, and order-amount constraints hold right now. Listing
	// is never restricted: all_benefits carries every parsed program.
	Eval *benefit.EvalContext
}

// Lists holds the two ranked outputs.
type Lists struct {
	ByDiscount []model.RankedEntry `json:"byDiscount"`
	ByDistance []model.RankedEntry `json:"byDistance"`
}

// Rank builds the personalized and by-distance lists. Ties break by merchant
// name so the result is deterministic for identical inputs.
func Rank(in Input) Lists {
	amount := in.ReferenceAmount
	if amount <= 0 {
		amount = benefit.DefaultReferenceAmount
	}

	return Lists{
		ByDiscount: personalized(in, amount),
		ByDistance: byDistance(in, amount),
	}
}

type scoredMerchant struct {
	merchant  model.Merchant
	bestValue int64
	benefits  []model.DiscountProgram
}

// personalized keeps merchants with at least one applicable true discount,
// ordered by best applicable savings, then distance, then name.
func personalized(in Input, amount int64) []model.RankedEntry {
	var rows []scoredMerchant
	for _, m := range in.Merchants {
		applicable := benefit.Filter(in.Discounts[m.Name], in.Profile)
		usable := applicable
		if in.Eval != nil {
			usable = redeemable(applicable, *in.Eval)
		}
		if !hasTrueDiscount(usable) {
			continue
		}
		rows = append(rows, scoredMerchant{
			merchant:  m,
			bestValue: benefit.BestValue(usable, in.Profile, amount),
			benefits:  applicable,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].bestValue != rows[j].bestValue {
			return rows[i].bestValue > rows[j].bestValue
		}
		if c := compareDistance(rows[i].merchant.DistanceMeters, rows[j].merchant.DistanceMeters); c != 0 {
			return c < 0
		}
		return rows[i].merchant.Name < rows[j].merchant.Name
	})

	return toEntries(rows, amount)
}

// byDistance ranks every merchant by distance, nulls last, with all parsed
// programs attached unfiltered.
func byDistance(in Input, amount int64) []model.RankedEntry {
	rows := make([]scoredMerchant, 0, len(in.Merchants))
	for _, m := range in.Merchants {
		rows = append(rows, scoredMerchant{
			merchant: m,
			benefits: in.Discounts[m.Name],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareDistance(rows[i].merchant.DistanceMeters, rows[j].merchant.DistanceMeters); c != 0 {
			return c < 0
		}
		return rows[i].merchant.Name < rows[j].merchant.Name
	})

	return toEntries(rows, amount)
}

func toEntries(rows []scoredMerchant, amount int64) []model.RankedEntry {
	if len(rows) > MaxEntries {
		rows = rows[:MaxEntries]
	}
	entries := make([]model.RankedEntry, 0, len(rows))
	for i, row := range rows {
		benefits := row.benefits
		if benefits == nil {
			benefits = []model.DiscountProgram{}
		}
		entries = append(entries, model.RankedEntry{
			StoreID:        row.merchant.StoreID,
			Name:           row.merchant.Name,
			DistanceMeters: row.merchant.DistanceMeters,
			AllBenefits:    benefits,
			BestSavings:    row.bestValue,
			DiscountRate:   benefit.Rate(row.bestValue, amount),
			Rank:           i + 1,
		})
	}
	return entries
}

// redeemable keeps programs whose constraints hold under the evaluation
// context. Used for eligibility and savings only, never for listing.
func redeemable(programs []model.DiscountProgram, ec benefit.EvalContext) []model.DiscountProgram {
	out := make([]model.DiscountProgram, 0, len(programs))
	for _, d := range programs {
		if ok, _ := benefit.CheckConstraints(d.Constraints, ec); ok {
			out = append(out, d)
		}
	}
	return out
}

func hasTrueDiscount(programs []model.DiscountProgram) bool {
	for _, d := range programs {
		if d.IsDiscount {
			return true
		}
	}
	return false
}

// compareDistance orders ascending with nil (unknown distance) last.
func compareDistance(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
