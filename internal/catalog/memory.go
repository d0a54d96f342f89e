package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/nearbite/nearbite/internal/model"
)

// MemoryCatalog is an in-memory Catalog for tests and degraded mode.
type MemoryCatalog struct {
	Brands   []Brand
	Branches []Branch

	// ProgramsByBrand maps brand id to programs; branch-scoped programs
	// live in ProgramsByBranch keyed by branch id.
	ProgramsByBrand  map[string][]model.DiscountProgram
	ProgramsByBranch map[string][]model.DiscountProgram

	// Conditions maps discount id to its qualification lists.
	Conditions map[string]model.RequiredConditions

	// Inactive marks discount ids excluded from lookups.
	Inactive map[string]bool
}

func (m *MemoryCatalog) FindBrand(_ context.Context, name string) (*Brand, error) {
	for _, b := range m.Brands {
		if b.Name == name {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *MemoryCatalog) FindBranch(_ context.Context, brandID, branchName string) (*Branch, error) {
	for _, b := range m.Branches {
		if b.BrandID == brandID && b.Name == branchName {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *MemoryCatalog) FindApplicableDiscounts(_ context.Context, brandID string, branchID *string, now time.Time) ([]model.DiscountProgram, error) {
	var out []model.DiscountProgram
	add := func(programs []model.DiscountProgram) {
		for _, p := range programs {
			if m.Inactive[p.DiscountID] || !admitsNow(p.Constraints, now) {
				continue
			}
			out = append(out, p)
		}
	}
	add(m.ProgramsByBrand[brandID])
	if branchID != nil {
		add(m.ProgramsByBranch[*branchID])
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProviderType != out[j].ProviderType {
			return out[i].ProviderType < out[j].ProviderType
		}
		return out[i].DiscountName < out[j].DiscountName
	})
	return out, nil
}

func (m *MemoryCatalog) LoadRequiredConditions(_ context.Context, discountID string) (model.RequiredConditions, error) {
	return m.Conditions[discountID], nil
}

func (m *MemoryCatalog) Close() {}
