package a2ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentResponse(t *testing.T) {
	const messages = `[{"beginRendering": {"surfaceId": "s", "root": "r"}}]`

	tests := []struct {
		name     string
		input    string
		wantText string
		wantMsgs int
	}{
		{
			name:     "text only",
			input:    "  Hello there.  ",
			wantText: "Hello there.",
		},
		{
			name:     "plain json",
			input:    "Here are the ideas.\n" + Delimiter + "\n" + messages,
			wantText: "Here are the ideas.",
			wantMsgs: 1,
		},
		{
			name:     "json code fence",
			input:    "Done.\n" + Delimiter + "\n```json\n" + messages + "\n```\n",
			wantText: "Done.",
			wantMsgs: 1,
		},
		{
			name:     "bare code fence",
			input:    "Done." + Delimiter + "```\n" + messages + "```",
			wantText: "Done.",
			wantMsgs: 1,
		},
		{
			name:     "empty json part",
			input:    "Nothing to show." + Delimiter + "   ",
			wantText: "Nothing to show.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseAgentResponse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, resp.Text)
			assert.Len(t, resp.Messages, tt.wantMsgs)
			if tt.wantMsgs > 0 {
				assert.JSONEq(t, messages, string(resp.Raw))
			}
		})
	}
}

func TestParseAgentResponseMalformedJSON(t *testing.T) {
	_, err := ParseAgentResponse("text" + Delimiter + "[{not json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}
