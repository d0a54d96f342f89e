package queryfilter

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/pkg/perplexity"
)

func ruleExtractor(t *testing.T) *RuleExtractor {
	t.Helper()
	e, err := NewRuleExtractor()
	require.NoError(t, err)
	return e
}

func TestRuleExtractor_Extract(t *testing.T) {
	e := ruleExtractor(t)

	tests := []struct {
		name string
		text string
		want model.Keywords
	}{
		{
			"station query with attribute",
			"충무로역에서 분위기 좋은 카페 추천해줘",
			model.Keywords{PlaceType: "카페", Attributes: []string{"분위기 좋은"}, Location: "충무로역"},
		},
		{
			"generic restaurant falls back to 맛집",
			"성수 근처 식당 알려줘",
			model.Keywords{PlaceType: "맛집", Location: "성수"},
		},
		{
			"first place type wins",
			"커피도 팔고 맥주도 파는 곳",
			model.Keywords{PlaceType: "카페"},
		},
		{
			"multiple attributes",
			"조용하고 저렴한 분식집",
			model.Keywords{PlaceType: "분식", Attributes: []string{"저렴한", "조용한"}},
		},
		{
			"nothing extractable",
			"추천 부탁해",
			model.Keywords{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleExtractor_RegionWithoutStationSuffix(t *testing.T) {
	e := ruleExtractor(t)
	got, err := e.Extract(context.Background(), "홍대 쪽 치킨집")
	require.NoError(t, err)
	assert.Equal(t, "홍대", got.Location)
	assert.Equal(t, "치킨", got.PlaceType)
}

type fakeChat struct {
	content string
	err     error
}

func (f *fakeChat) ChatCompletion(_ context.Context, _ perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: f.content}}},
	}, nil
}

func TestLLMExtractor_UsesBackend(t *testing.T) {
	e := NewLLMExtractor(&fakeChat{
		content: "```json\n{\"place_type\":\"카페\",\"attributes\":[\"조용\"],\"location\":\"성수\"}\n```",
	}, ruleExtractor(t))

	got, err := e.Extract(context.Background(), "성수에서 조용한 카페")
	require.NoError(t, err)
	assert.Equal(t, "카페", got.PlaceType)
	assert.Equal(t, "성수", got.Location)
	assert.Equal(t, []string{"조용"}, got.Attributes)
}

func TestLLMExtractor_DropsInventedAttributes(t *testing.T) {
	e := NewLLMExtractor(&fakeChat{
		content: `{"place_type":"카페","attributes":["루프탑"],"location":""}`,
	}, ruleExtractor(t))

	got, err := e.Extract(context.Background(), "카페 추천")
	require.NoError(t, err)
	assert.Empty(t, got.Attributes)
}

func TestLLMExtractor_FallsBackOnError(t *testing.T) {
	e := NewLLMExtractor(&fakeChat{err: eris.New("backend down")}, ruleExtractor(t))

	got, err := e.Extract(context.Background(), "충무로 카페 추천")
	require.NoError(t, err)
	assert.Equal(t, "카페", got.PlaceType)
	assert.Equal(t, "충무로", got.Location)
}

func TestLLMExtractor_FallsBackOnMalformedJSON(t *testing.T) {
	e := NewLLMExtractor(&fakeChat{content: "카페가 좋겠네요!"}, ruleExtractor(t))

	got, err := e.Extract(context.Background(), "홍대 피자")
	require.NoError(t, err)
	assert.Equal(t, "피자", got.PlaceType)
}
