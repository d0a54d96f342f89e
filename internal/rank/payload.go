package rank

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/model"
)

// PayloadKind tags the historical discount payload shapes the resolver may
// hand over.
type PayloadKind string

const (
	// PayloadByMerchant is a map of merchant name → {discounts: [...]}.
	PayloadByMerchant PayloadKind = "by_merchant"
	// PayloadWrapped wraps the merchant map under a discounts_by_store key.
	PayloadWrapped PayloadKind = "wrapped"
	// PayloadNested buries the wrapper one level deeper under a discount key.
	PayloadNested PayloadKind = "nested"
	// PayloadRawList is a flat list of discount dicts carrying store names.
	PayloadRawList PayloadKind = "raw_list"
	// PayloadUnknown is anything the normalizer cannot place.
	PayloadUnknown PayloadKind = "unknown"
)

// DetectPayload classifies a decoded discount payload.
func DetectPayload(v any) PayloadKind {
	switch t := v.(type) {
	case []any:
		return PayloadRawList
	case map[string]any:
		if d, ok := t["discount"].(map[string]any); ok {
			if _, ok := d["discounts_by_store"]; ok {
				return PayloadNested
			}
		}
		if _, ok := t["discounts_by_store"]; ok {
			return PayloadWrapped
		}
		return PayloadByMerchant
	default:
		return PayloadUnknown
	}
}

// Normalize flattens any historical payload shape into the canonical
// merchant name → programs map. Records that cannot be decoded are dropped
// and reported; the rest proceed.
func Normalize(v any) (map[string][]model.DiscountProgram, []error) {
	var dropped []error
	out := make(map[string][]model.DiscountProgram)

	switch DetectPayload(v) {
	case PayloadNested:
		v = v.(map[string]any)["discount"].(map[string]any)["discounts_by_store"]
		return Normalize(v)
	case PayloadWrapped:
		return Normalize(v.(map[string]any)["discounts_by_store"])
	case PayloadByMerchant:
		for name, entry := range v.(map[string]any) {
			for _, raw := range discountList(entry) {
				program, err := DecodeProgram(raw)
				if err != nil {
					dropped = append(dropped, eris.Wrapf(err, "rank: merchant %s", name))
					continue
				}
				out[name] = append(out[name], program)
			}
		}
	case PayloadRawList:
		for _, raw := range v.([]any) {
			program, err := DecodeProgram(raw)
			if err != nil {
				dropped = append(dropped, err)
				continue
			}
			name := rawStoreName(raw)
			if name == "" {
				dropped = append(dropped, eris.Errorf("rank: discount %s has no store name", program.DiscountName))
				continue
			}
			out[name] = append(out[name], program)
		}
	default:
		if v != nil {
			dropped = append(dropped, eris.New("rank: unrecognized discount payload shape"))
		}
	}

	if len(dropped) > 0 {
		zap.L().Warn("rank: dropped malformed discount records", zap.Int("count", len(dropped)))
	}
	return out, dropped
}

// discountList digs the program list out of a per-merchant entry, accepting
// either {discounts: [...]} or a bare list.
func discountList(entry any) []any {
	switch t := entry.(type) {
	case []any:
		return t
	case map[string]any:
		if l, ok := t["discounts"].([]any); ok {
			return l
		}
	}
	return nil
}

func rawStoreName(raw any) string {
	m, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"store_name", "storeName", "store"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// DecodeProgram converts one decoded discount dict — or its stringified
// "@{...}" serialization — into a DiscountProgram.
func DecodeProgram(raw any) (model.DiscountProgram, error) {
	var m map[string]any
	switch t := raw.(type) {
	case map[string]any:
		m = t
	case string:
		parsed, err := ParseRecord(t)
		if err != nil {
			return model.DiscountProgram{}, err
		}
		m = parsed
	default:
		return model.DiscountProgram{}, eris.New("rank: discount record is neither object nor record string")
	}

	d := model.DiscountProgram{
		DiscountID:   firstString(m, "discountId", "discount_id", "id"),
		DiscountName: firstString(m, "discountName", "discount_name", "name"),
		ProviderType: model.ProviderType(strings.ToUpper(firstString(m, "providerType", "provider_type"))),
		ProviderName: firstString(m, "providerName", "provider_name"),
		IsDiscount:   true,
	}
	if v, ok := asBool(m["isDiscount"]); ok {
		d.IsDiscount = v
	} else if v, ok := asBool(m["is_discount"]); ok {
		d.IsDiscount = v
	}
	if v, ok := asBool(m["appliedByUserProfile"]); ok {
		d.AppliedByUserProfile = v
	} else if v, ok := asBool(m["applied_by_user_profile"]); ok {
		d.AppliedByUserProfile = v
	}

	shape, err := decodeShape(m)
	if err != nil {
		return model.DiscountProgram{}, err
	}
	d.Shape = shape
	d.RequiredConditions = decodeConditions(m["requiredConditions"], m["required_conditions"])

	if d.DiscountName == "" {
		return model.DiscountProgram{}, eris.New("rank: discount record has no name")
	}
	return d, nil
}

// decodeShape reads the shape either from a nested "shape" value or from
// flattened kind/amount keys on the record itself.
func decodeShape(m map[string]any) (model.Shape, error) {
	src := m
	switch t := m["shape"].(type) {
	case map[string]any:
		src = t
	case string:
		parsed, err := ParseRecord(t)
		if err != nil {
			return model.Shape{}, eris.Wrap(err, "rank: shape record")
		}
		src = parsed
	}

	kind := model.ShapeKind(strings.ToUpper(firstString(src, "kind", "type")))
	switch kind {
	case model.ShapePercent, model.ShapeAmount, model.ShapePerUnit:
	case "":
		return model.Shape{}, eris.New("rank: shape has no kind")
	default:
		return model.Shape{}, eris.Errorf("rank: unknown shape kind %q", kind)
	}

	shape := model.Shape{Kind: kind}
	shape.Amount, _ = asFloat(src["amount"])
	shape.MaxAmount = asInt64Ptr(src["maxAmount"], src["max_amount"])

	unit := src
	if rule, ok := src["unitRule"].(map[string]any); ok {
		unit = rule
	}
	if v, ok := asFloat(unit["unitAmount"]); ok {
		shape.UnitAmount = int64(v)
	} else if v, ok := asFloat(unit["unit_amount"]); ok {
		shape.UnitAmount = int64(v)
	}
	if v, ok := asFloat(unit["perUnitValue"]); ok {
		shape.PerUnitValue = int64(v)
	} else if v, ok := asFloat(unit["per_unit_value"]); ok {
		shape.PerUnitValue = int64(v)
	}
	shape.MaxDiscountAmount = asInt64Ptr(unit["maxDiscountAmount"], unit["max_discount_amount"])

	return shape, nil
}

func decodeConditions(candidates ...any) model.RequiredConditions {
	var rc model.RequiredConditions
	for _, c := range candidates {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		for _, e := range anyList(m["telcos"]) {
			rc.Telcos = append(rc.Telcos, model.TelcoCondition{
				TelcoName:     firstString(e, "telcoName", "telco_name", "name"),
				RequiredLevel: firstString(e, "requiredLevel", "required_level"),
			})
		}
		for _, e := range anyList(m["payments"]) {
			rc.Payments = append(rc.Payments, model.PaymentCondition{
				PaymentName: firstString(e, "paymentName", "payment_name", "name"),
			})
		}
		for _, e := range anyList(m["memberships"]) {
			rc.Memberships = append(rc.Memberships, model.MembershipCondition{
				MembershipName: firstString(e, "membershipName", "membership_name", "name"),
				RequiredLevel:  firstString(e, "requiredLevel", "required_level"),
			})
		}
		for _, e := range anyList(m["affiliations"]) {
			rc.Affiliations = append(rc.Affiliations, model.AffiliationCondition{
				OrganizationName: firstString(e, "organizationName", "organization_name", "name"),
			})
		}
		break
	}
	return rc
}

func anyList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt64Ptr(candidates ...any) *int64 {
	for _, v := range candidates {
		if f, ok := asFloat(v); ok {
			n := int64(f)
			return &n
		}
	}
	return nil
}
