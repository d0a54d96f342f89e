package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/model"
)

func sampleDiscountDict() map[string]any {
	return map[string]any{
		"discountId":   "d1",
		"discountName": "SKT T멤버십 할인",
		"providerType": "TELCO",
		"providerName": "SKT",
		"isDiscount":   true,
		"shape": map[string]any{
			"kind":   "PERCENT",
			"amount": 10.0,
		},
		"requiredConditions": map[string]any{
			"telcos": []any{map[string]any{"telcoName": "SKT"}},
		},
	}
}

func TestDetectPayload(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want PayloadKind
	}{
		{"by merchant", map[string]any{"카페A": map[string]any{"discounts": []any{}}}, PayloadByMerchant},
		{"wrapped", map[string]any{"discounts_by_store": map[string]any{}}, PayloadWrapped},
		{"nested", map[string]any{"discount": map[string]any{"discounts_by_store": map[string]any{}}}, PayloadNested},
		{"raw list", []any{sampleDiscountDict()}, PayloadRawList},
		{"unknown", 42, PayloadUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPayload(tt.v))
		})
	}
}

func TestNormalize_ByMerchant(t *testing.T) {
	payload := map[string]any{
		"카페A": map[string]any{"discounts": []any{sampleDiscountDict()}},
	}

	got, dropped := Normalize(payload)
	require.Empty(t, dropped)
	require.Len(t, got["카페A"], 1)

	d := got["카페A"][0]
	assert.Equal(t, "SKT T멤버십 할인", d.DiscountName)
	assert.Equal(t, model.ProviderTelco, d.ProviderType)
	assert.Equal(t, model.ShapePercent, d.Shape.Kind)
	assert.Equal(t, 10.0, d.Shape.Amount)
	require.Len(t, d.RequiredConditions.Telcos, 1)
	assert.Equal(t, "SKT", d.RequiredConditions.Telcos[0].TelcoName)
}

func TestNormalize_WrappedAndNestedAgree(t *testing.T) {
	inner := map[string]any{
		"카페A": map[string]any{"discounts": []any{sampleDiscountDict()}},
	}
	wrapped, _ := Normalize(map[string]any{"discounts_by_store": inner})
	nested, _ := Normalize(map[string]any{"discount": map[string]any{"discounts_by_store": inner}})

	assert.Equal(t, wrapped, nested)
	require.Len(t, wrapped["카페A"], 1)
}

func TestNormalize_RawListUsesStoreName(t *testing.T) {
	d := sampleDiscountDict()
	d["store_name"] = "카페B"

	got, dropped := Normalize([]any{d})
	require.Empty(t, dropped)
	require.Len(t, got["카페B"], 1)
}

func TestNormalize_DropsMalformedKeepsRest(t *testing.T) {
	good := sampleDiscountDict()
	bad := map[string]any{"providerType": "TELCO"} // no name, no shape

	got, dropped := Normalize(map[string]any{
		"카페A": map[string]any{"discounts": []any{good, bad}},
	})

	assert.Len(t, dropped, 1)
	require.Len(t, got["카페A"], 1)
	assert.Equal(t, "SKT T멤버십 할인", got["카페A"][0].DiscountName)
}

func TestDecodeProgram_StringifiedRecord(t *testing.T) {
	d, err := DecodeProgram("@{discountName=신한카드 20% 할인; providerType=PAYMENT; kind=PERCENT; amount=20.0; maxAmount=100000; isDiscount=True}")
	require.NoError(t, err)

	assert.Equal(t, "신한카드 20% 할인", d.DiscountName)
	assert.Equal(t, model.ProviderPayment, d.ProviderType)
	assert.Equal(t, model.ShapePercent, d.Shape.Kind)
	assert.Equal(t, 20.0, d.Shape.Amount)
	require.NotNil(t, d.Shape.MaxAmount)
	assert.Equal(t, int64(100000), *d.Shape.MaxAmount)
	assert.True(t, d.IsDiscount)
}

func TestDecodeProgram_PerUnitRule(t *testing.T) {
	d, err := DecodeProgram(map[string]any{
		"discountName": "SKT 통신사 할인",
		"providerType": "TELCO",
		"shape": map[string]any{
			"kind": "PER_UNIT",
			"unitRule": map[string]any{
				"unitAmount":        1000.0,
				"perUnitValue":      150.0,
				"maxDiscountAmount": 3000.0,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ShapePerUnit, d.Shape.Kind)
	assert.Equal(t, int64(1000), d.Shape.UnitAmount)
	assert.Equal(t, int64(150), d.Shape.PerUnitValue)
	require.NotNil(t, d.Shape.MaxDiscountAmount)
	assert.Equal(t, int64(3000), *d.Shape.MaxDiscountAmount)
}

func TestDecodeProgram_UnknownShapeKind(t *testing.T) {
	_, err := DecodeProgram(map[string]any{
		"discountName": "x",
		"shape":        map[string]any{"kind": "COUPON"},
	})
	assert.Error(t, err)
}
