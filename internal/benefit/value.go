// Package benefit computes discount applicability and effective savings.
package benefit

import (
	"math"

	"github.com/nearbite/nearbite/internal/model"
)

// DefaultReferenceAmount is the reference order amount used for savings
// comparisons when the caller does not supply one (smallest currency unit).
const DefaultReferenceAmount int64 = 12000

// Value computes the effective savings of a discount shape on an order of
// the given amount. The result is clamped to [0, amount] and to the shape's
// cap when one is set. Unknown shapes are worth zero.
func Value(s model.Shape, amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	var v int64
	switch s.Kind {
	case model.ShapePercent:
		p := s.Amount
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		v = int64(math.Floor(float64(amount) * p / 100))
		if s.MaxAmount != nil && v > *s.MaxAmount {
			v = *s.MaxAmount
		}
	case model.ShapeAmount:
		v = int64(math.Floor(s.Amount))
	case model.ShapePerUnit:
		if s.UnitAmount <= 0 {
			return 0
		}
		v = (amount / s.UnitAmount) * s.PerUnitValue
		if s.MaxDiscountAmount != nil && v > *s.MaxDiscountAmount {
			v = *s.MaxDiscountAmount
		}
	default:
		return 0
	}

	if v > amount {
		v = amount
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Rate returns the savings as a percentage of the order amount, rounded to
// two decimals.
func Rate(value, amount int64) float64 {
	if amount <= 0 {
		return 0
	}
	return math.Round(float64(value)/float64(amount)*100*100) / 100
}

// BestValue returns the highest savings across the programs that apply to the
// profile. Accrual programs (IsDiscount=false) never count toward savings.
func BestValue(programs []model.DiscountProgram, profile *model.UserProfile, amount int64) int64 {
	var best int64
	for _, d := range programs {
		if !d.IsDiscount {
			continue
		}
		if !Applicable(d, profile) {
			continue
		}
		if v := Value(d.Shape, amount); v > best {
			best = v
		}
	}
	return best
}
