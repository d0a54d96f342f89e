package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/benefit"
	"github.com/nearbite/nearbite/internal/model"
)

// MerchantDiscounts is the per-merchant resolver output. Err is set when the
// store failed for this merchant; the batch itself never aborts.
type MerchantDiscounts struct {
	Name      string                  `json:"name"`
	Matched   bool                    `json:"matched"`
	Reason    string                  `json:"reason,omitempty"`
	Discounts []model.DiscountProgram `json:"discounts"`
	Err       string                  `json:"error,omitempty"`
}

// Resolver resolves merchant display names to discount programs.
type Resolver struct {
	catalog Catalog
	now     func() time.Time
}

func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog, now: time.Now}
}

// Resolve processes each merchant name independently. The result map is
// keyed by the input display name.
func (r *Resolver) Resolve(ctx context.Context, profile *model.UserProfile, names []string) map[string]MerchantDiscounts {
	out := make(map[string]MerchantDiscounts, len(names))
	for _, name := range names {
		out[name] = r.resolveOne(ctx, profile, name)
	}
	return out
}

func (r *Resolver) resolveOne(ctx context.Context, profile *model.UserProfile, name string) MerchantDiscounts {
	md := MerchantDiscounts{Name: name, Discounts: []model.DiscountProgram{}}

	brandName, branchName := SplitBrandBranch(name)

	brand, err := r.catalog.FindBrand(ctx, brandName)
	if err != nil {
		zap.L().Warn("catalog: brand lookup failed", zap.String("merchant", name), zap.Error(err))
		md.Err = err.Error()
		return md
	}
	if brand == nil {
		md.Reason = "brand not found"
		return md
	}
	md.Matched = true

	var branchID *string
	if branchName != "" {
		branch, err := r.catalog.FindBranch(ctx, brand.BrandID, branchName)
		if err != nil {
			md.Err = err.Error()
			return md
		}
		if branch == nil {
			md.Reason = "branch not found; brand-level only"
		} else {
			branchID = &branch.BranchID
		}
	}

	programs, err := r.catalog.FindApplicableDiscounts(ctx, brand.BrandID, branchID, r.now())
	if err != nil {
		md.Err = err.Error()
		return md
	}

	for i := range programs {
		rc, err := r.catalog.LoadRequiredConditions(ctx, programs[i].DiscountID)
		if err != nil {
			md.Err = err.Error()
			return md
		}
		programs[i].RequiredConditions = rc
		programs[i].AppliedByUserProfile = benefit.Applicable(programs[i], profile)
	}

	md.Discounts = programs
	return md
}

// DiscountsByName flattens resolver output into the map the ranker consumes.
// Error entries contribute an empty program list.
func DiscountsByName(resolved map[string]MerchantDiscounts) map[string][]model.DiscountProgram {
	out := make(map[string][]model.DiscountProgram, len(resolved))
	for name, md := range resolved {
		out[name] = md.Discounts
	}
	return out
}

// SplitBrandBranch splits a merchant display name on the first whitespace
// into brand and optional branch ("스타벅스 동국대점" → "스타벅스", "동국대점").
func SplitBrandBranch(name string) (brand, branch string) {
	name = strings.TrimSpace(name)
	if idx := strings.IndexAny(name, " \t"); idx > 0 {
		return name[:idx], strings.TrimSpace(name[idx+1:])
	}
	return name, ""
}
