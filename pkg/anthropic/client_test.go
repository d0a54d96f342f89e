package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstText(t *testing.T) {
	var nilResp *MessageResponse
	assert.Empty(t, nilResp.FirstText())
	assert.Empty(t, (&MessageResponse{}).FirstText())

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "thinking", Text: "..."},
		{Type: "text", Text: ""},
		{Type: "text", Text: "추천 결과입니다"},
	}}
	assert.Equal(t, "추천 결과입니다", resp.FirstText())
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "충무로 카페 추천해줘"},
		{Role: "assistant", Content: "알겠습니다"},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, msgs[1].Role)
}

func TestToSDKMessages_UnknownRoleDefaultsToUser(t *testing.T) {
	msgs := toSDKMessages([]Message{{Role: "system", Content: "x"}})
	require.Len(t, msgs, 1)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
}

func TestFromSDKMessage(t *testing.T) {
	msg := &sdk.Message{
		ID:         "msg_1",
		Model:      "claude-haiku-4-5-20251001",
		StopReason: "end_turn",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "안녕하세요"},
		},
		Usage: sdk.Usage{InputTokens: 12, OutputTokens: 7},
	}

	got := fromSDKMessage(msg)
	assert.Equal(t, "msg_1", got.ID)
	assert.Equal(t, "end_turn", got.StopReason)
	assert.Equal(t, "안녕하세요", got.FirstText())
	assert.Equal(t, int64(12), got.Usage.InputTokens)
	assert.Equal(t, int64(7), got.Usage.OutputTokens)
}
