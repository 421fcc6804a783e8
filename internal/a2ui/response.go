package a2ui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Delimiter separates the conversational text of an agent reply from its
// JSON message list.
const Delimiter = "---a2ui_JSON---"

// AgentResponse is an agent reply split into its two parts.
type AgentResponse struct {
	Text     string
	Messages []Message
	// Raw is the JSON message list exactly as the agent emitted it, without
	// any code fence.
	Raw json.RawMessage
}

// ParseAgentResponse splits text on Delimiter. A reply without the delimiter
// is text only.
func ParseAgentResponse(text string) (*AgentResponse, error) {
	before, after, found := strings.Cut(text, Delimiter)
	resp := &AgentResponse{Text: strings.TrimSpace(before)}
	if !found {
		return resp, nil
	}

	payload := stripCodeFence(after)
	if payload == "" {
		return resp, nil
	}

	msgs, err := DecodeMessages([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("parse agent response: %w", err)
	}
	resp.Messages = msgs
	resp.Raw = json.RawMessage(payload)
	return resp, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. "json"
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
