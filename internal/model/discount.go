package model

import "time"

// ProviderType classifies who funds a discount program.
type ProviderType string

const (
	ProviderTelco       ProviderType = "TELCO"
	ProviderPayment     ProviderType = "PAYMENT"
	ProviderMembership  ProviderType = "MEMBERSHIP"
	ProviderAffiliation ProviderType = "AFFILIATION"
	ProviderStore       ProviderType = "STORE"
	ProviderBrand       ProviderType = "BRAND"
)

// ShapeKind tags the discount shape variant.
type ShapeKind string

const (
	ShapePercent ShapeKind = "PERCENT"
	ShapeAmount  ShapeKind = "AMOUNT"
	ShapePerUnit ShapeKind = "PER_UNIT"
)

// Shape describes how a discount reduces an order amount.
// Amount carries the percentage for PERCENT and the flat deduction for AMOUNT.
// PER_UNIT grants PerUnitValue for every full UnitAmount of spend.
type Shape struct {
	Kind              ShapeKind `json:"kind"`
	Amount            float64   `json:"amount,omitempty"`
	MaxAmount         *int64    `json:"maxAmount,omitempty"`
	UnitAmount        int64     `json:"unitAmount,omitempty"`
	PerUnitValue      int64     `json:"perUnitValue,omitempty"`
	MaxDiscountAmount *int64    `json:"maxDiscountAmount,omitempty"`
}

// Channel limits for discount redemption.
const (
	ChannelOnline  = "ONLINE"
	ChannelOffline = "OFFLINE"
	ChannelBoth    = "ONLINE/OFFLINE"
)

// Constraints bound when and how a discount may be redeemed.
// A nil/zero field means unconstrained. DayOfWeekMask uses Monday = bit 0.
type Constraints struct {
	ValidFrom       *time.Time `json:"validFrom,omitempty"`
	ValidTo         *time.Time `json:"validTo,omitempty"`
	DayOfWeekMask   *uint8     `json:"dayOfWeekMask,omitempty"`
	TimeFrom        string     `json:"timeFrom,omitempty"`
	TimeTo          string     `json:"timeTo,omitempty"`
	ChannelLimit    string     `json:"channelLimit,omitempty"`
	RequiredLevel   string     `json:"requiredLevel,omitempty"`
	Qualification   string     `json:"qualification,omitempty"`
	ApplicationMenu string     `json:"applicationMenu,omitempty"`
	MinOrderAmount  *int64     `json:"minOrderAmount,omitempty"`
	MaxOrderAmount  *int64     `json:"maxOrderAmount,omitempty"`
}

// TelcoCondition names a carrier whose subscribers qualify.
type TelcoCondition struct {
	TelcoName     string `json:"telcoName"`
	RequiredLevel string `json:"requiredLevel,omitempty"`
}

// PaymentCondition names a card product whose holders qualify.
type PaymentCondition struct {
	PaymentName string `json:"paymentName"`
}

// MembershipCondition names a loyalty program whose members qualify.
type MembershipCondition struct {
	MembershipName string `json:"membershipName"`
	RequiredLevel  string `json:"requiredLevel,omitempty"`
}

// AffiliationCondition names an organization whose members qualify.
type AffiliationCondition struct {
	OrganizationName string `json:"organizationName"`
}

// RequiredConditions lists who qualifies for a discount. An empty value means
// the program is public; otherwise applicability is the disjunction of matches.
type RequiredConditions struct {
	Payments     []PaymentCondition     `json:"payments,omitempty"`
	Telcos       []TelcoCondition       `json:"telcos,omitempty"`
	Memberships  []MembershipCondition  `json:"memberships,omitempty"`
	Affiliations []AffiliationCondition `json:"affiliations,omitempty"`
}

// Empty reports whether no condition list has entries.
func (rc RequiredConditions) Empty() bool {
	return len(rc.Payments) == 0 && len(rc.Telcos) == 0 &&
		len(rc.Memberships) == 0 && len(rc.Affiliations) == 0
}

// DiscountProgram is one benefit a merchant offers. IsDiscount=false marks a
// points-accrual program: its value is informational and never ranks as savings.
type DiscountProgram struct {
	DiscountID           string             `json:"discountId"`
	DiscountName         string             `json:"discountName"`
	ProviderType         ProviderType       `json:"providerType"`
	ProviderName         string             `json:"providerName"`
	Shape                Shape              `json:"shape"`
	Constraints          Constraints        `json:"constraints"`
	RequiredConditions   RequiredConditions `json:"requiredConditions"`
	AppliedByUserProfile bool               `json:"appliedByUserProfile"`
	IsDiscount           bool               `json:"isDiscount"`
}
