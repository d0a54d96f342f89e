package benefit

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/nearbite/nearbite/internal/model"
)

// Applicable reports whether a discount program applies to a user profile.
// The check is a disjunction: a pre-computed catalog flag, a public program
// (no required conditions), a STORE promotion, or any single condition list
// matching the profile makes the program applicable.
func Applicable(d model.DiscountProgram, p *model.UserProfile) bool {
	if d.AppliedByUserProfile {
		return true
	}
	if d.ProviderType == model.ProviderStore {
		return true
	}
	if d.RequiredConditions.Empty() {
		return true
	}
	if p == nil {
		return false
	}

	for _, t := range d.RequiredConditions.Telcos {
		if nameMatch(p.Telco, t.TelcoName) {
			return true
		}
	}
	for _, pay := range d.RequiredConditions.Payments {
		for _, card := range p.Cards {
			if nameMatch(card, pay.PaymentName) {
				return true
			}
		}
	}
	for _, m := range d.RequiredConditions.Memberships {
		for _, have := range p.Memberships {
			if nameMatch(have, m.MembershipName) {
				return true
			}
		}
	}
	for _, a := range d.RequiredConditions.Affiliations {
		for _, have := range p.Affiliations {
			if nameMatch(have, a.OrganizationName) {
				return true
			}
		}
	}
	return false
}

// Filter returns only the programs applicable to the profile, preserving order.
func Filter(programs []model.DiscountProgram, p *model.UserProfile) []model.DiscountProgram {
	var out []model.DiscountProgram
	for _, d := range programs {
		if Applicable(d, p) {
			out = append(out, d)
		}
	}
	return out
}

// nameMatch compares two provider/product names: case-insensitive equality or
// containment either way, absorbing minor naming drift between the catalog
// and user-supplied profile values ("신한카드" vs "신한카드 Deep Dream").
func nameMatch(a, b string) bool {
	a, b = canonName(a), canonName(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// canonName width-folds, NFC-normalizes, upper-cases, and strips spaces.
func canonName(s string) string {
	s = norm.NFC.String(width.Narrow.String(s))
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "")
}
