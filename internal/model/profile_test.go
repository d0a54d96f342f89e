package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTelco(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SKT", TelcoSKT},
		{"sk텔레콤", TelcoSKT},
		{"T멤버십", TelcoSKT},
		{"케이티", TelcoKT},
		{"LGU+", TelcoLGU},
		{"lg 유플러스", TelcoLGU},
		{"Ｌｇｕ＋", TelcoLGU},
		{" kt ", TelcoKT},
		{"", ""},
		{"알뜰폰", "알뜰폰"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTelco(tt.in))
		})
	}
}

func TestProfileNormalize(t *testing.T) {
	p := &UserProfile{
		UserID: "u1",
		Telco:  "sk텔레콤",
		Cards:  []string{" 신한카드 ", "신한카드", "", "국민카드"},
	}
	p.Normalize()

	assert.Equal(t, TelcoSKT, p.Telco)
	assert.Equal(t, []string{"신한카드", "국민카드"}, p.Cards)
}

func TestProfileNormalize_Nil(t *testing.T) {
	var p *UserProfile
	p.Normalize()
	require.NoError(t, p.Validate())
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       *UserProfile
		wantErr string
	}{
		{"valid", &UserProfile{UserID: "u1", Telco: TelcoSKT}, ""},
		{"missing user", &UserProfile{Telco: TelcoSKT}, "userId"},
		{"missing telco", &UserProfile{UserID: "u1"}, "telco"},
		{"unknown telco", &UserProfile{UserID: "u1", Telco: "알뜰폰"}, "unknown telco"},
		{"empty card", &UserProfile{UserID: "u1", Telco: TelcoKT, Cards: []string{" "}}, "empty strings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
