package queryfilter

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T) *RuleExtractor {
	t.Helper()
	rules, err := NewRuleExtractor()
	require.NoError(t, err)
	return rules
}

func TestLLMExtract(t *testing.T) {
	chat := &fakeChat{content: `{"place_type": "카페", "attributes": ["조용한"], "location": "동국대"}`}
	e := NewLLMExtractor(chat, mustRules(t))

	kw, err := e.Extract(context.Background(), "동국대 근처 조용한 카페 추천해줘")
	require.NoError(t, err)
	assert.Equal(t, "카페", kw.PlaceType)
	assert.Equal(t, []string{"조용한"}, kw.Attributes)
	assert.Equal(t, "동국대", kw.Location)
}

func TestLLMExtract_StripsCodeFences(t *testing.T) {
	chat := &fakeChat{content: "```json\n{\"place_type\": \"카페\"}\n```"}
	e := NewLLMExtractor(chat, mustRules(t))

	kw, err := e.Extract(context.Background(), "카페 추천")
	require.NoError(t, err)
	assert.Equal(t, "카페", kw.PlaceType)
}

func TestLLMExtract_DropsInventedAttributes(t *testing.T) {
	chat := &fakeChat{content: `{"place_type": "카페", "attributes": ["조용한", "야외석"]}`}
	e := NewLLMExtractor(chat, mustRules(t))

	kw, err := e.Extract(context.Background(), "조용한 카페 있나요")
	require.NoError(t, err)
	assert.Equal(t, []string{"조용한"}, kw.Attributes)
}

func TestLLMExtract_FallsBackToRules(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
	}{
		{"backend error", &fakeChat{err: eris.New("overloaded")}},
		{"malformed json", &fakeChat{content: "카페를 추천드릴게요"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLLMExtractor(tt.chat, mustRules(t))

			kw, err := e.Extract(context.Background(), "근처 카페 추천해줘")
			require.NoError(t, err)
			assert.Equal(t, "카페", kw.PlaceType)
		})
	}
}

func TestPresentOnly(t *testing.T) {
	got := presentOnly([]string{"조용한", "분위기 좋은", ""}, "조용한 분위기 좋은 카페")
	assert.Equal(t, []string{"조용한", "분위기 좋은"}, got)
}
