// Package catalog looks up brands, branches, and their discount programs.
// The data is externally populated; this package only reads it.
package catalog

import (
	"context"
	"time"

	"github.com/nearbite/nearbite/internal/benefit"
	"github.com/nearbite/nearbite/internal/model"
)

// Brand is a merchant brand in the registry.
type Brand struct {
	BrandID string
	Name    string
}

// Branch is one location of a brand.
type Branch struct {
	BranchID string
	BrandID  string
	Name     string
}

// Catalog is the discount registry surface consumed by the resolver.
type Catalog interface {
	// FindBrand returns nil when the exact name is not registered.
	FindBrand(ctx context.Context, name string) (*Brand, error)

	// FindBranch returns nil when the brand has no branch with that name.
	FindBranch(ctx context.Context, brandID, branchName string) (*Branch, error)

	// FindApplicableDiscounts returns active programs for the brand (and
	// branch when given) whose date, day-of-week, and time-of-day
	// constraints admit now, ordered by (providerType, discountName).
	FindApplicableDiscounts(ctx context.Context, brandID string, branchID *string, now time.Time) ([]model.DiscountProgram, error)

	// LoadRequiredConditions loads the qualification lists for a program.
	LoadRequiredConditions(ctx context.Context, discountID string) (model.RequiredConditions, error)

	Close()
}

// admitsNow checks only the temporal constraints; channel and order-amount
// checks happen later at evaluation time.
func admitsNow(c model.Constraints, now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	if c.DayOfWeekMask != nil && *c.DayOfWeekMask&benefit.DayBit(now.Weekday()) == 0 {
		return false
	}
	hhmm := now.Format("15:04")
	if c.TimeFrom != "" && hhmm < c.TimeFrom {
		return false
	}
	if c.TimeTo != "" && hhmm > c.TimeTo {
		return false
	}
	return true
}
