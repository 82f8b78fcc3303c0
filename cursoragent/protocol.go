package cursoragent

import (
	"encoding/json"
	"fmt"
)

// rawMessage is used for initial type discrimination of NDJSON lines.
type rawMessage struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
}

// SystemInitMessage is the first structured message of every invocation.
// Example: {"type":"system","subtype":"init","session_id":"...","model":"...","cwd":"...","permissionMode":"..."}
type SystemInitMessage struct {
	Type           string `json:"type"`
	Subtype        string `json:"subtype"`
	SessionID      string `json:"session_id"`
	Model          string `json:"model"`
	CWD            string `json:"cwd"`
	PermissionMode string `json:"permissionMode"`
	APIKeySource   string `json:"apiKeySource"`
}

// MessageContentBlock is a content block within a user or assistant message.
type MessageContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// messageInner is the inner message object shared by user and assistant lines.
type messageInner struct {
	Role    string                `json:"role"`
	Content []MessageContentBlock `json:"content"`
}

// AssistantMessage carries streamed assistant text fragments.
// Example: {"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"..."}]},"session_id":"..."}
type AssistantMessage struct {
	Type      string       `json:"type"`
	Message   messageInner `json:"message"`
	SessionID string       `json:"session_id"`
}

// TextFragments returns the ordered text fragments of the message.
func (m *AssistantMessage) TextFragments() []string {
	var out []string
	for _, block := range m.Message.Content {
		if block.Type == "text" && block.Text != "" {
			out = append(out, block.Text)
		}
	}
	return out
}

// UserEchoMessage is the agent echoing the prompt it was given.
type UserEchoMessage struct {
	Type      string       `json:"type"`
	Message   messageInner `json:"message"`
	SessionID string       `json:"session_id"`
}

// Content returns the concatenated text content of the echoed prompt.
func (m *UserEchoMessage) Content() string {
	var out string
	for _, block := range m.Message.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// ToolCallMessage is a tool call event, subtype "started" or "completed".
// The tool_call field is a single-key map: tool kind → {args, result?}.
type ToolCallMessage struct {
	Type      string                     `json:"type"`
	Subtype   string                     `json:"subtype"`
	CallID    string                     `json:"call_id"`
	ToolCall  map[string]json.RawMessage `json:"tool_call"`
	SessionID string                     `json:"session_id"`
}

// ResultMessage is the final structured message of an invocation.
type ResultMessage struct {
	Type          string `json:"type"`
	Subtype       string `json:"subtype"`
	DurationMs    int64  `json:"duration_ms"`
	DurationAPIMs int64  `json:"duration_api_ms"`
	IsError       bool   `json:"is_error"`
	Result        string `json:"result"`
	SessionID     string `json:"session_id"`
}

// Message is the union type returned by ParseMessage.
type Message interface {
	messageType() string
}

func (m *SystemInitMessage) messageType() string { return "system" }
func (m *AssistantMessage) messageType() string  { return "assistant" }
func (m *UserEchoMessage) messageType() string   { return "user" }
func (m *ToolCallMessage) messageType() string   { return "tool_call" }
func (m *ResultMessage) messageType() string     { return "result" }

// ParseMessage parses one NDJSON line into a typed message. Unknown message
// types return (nil, nil): the stream interleaves kinds this package does
// not care about and they must not break decoding.
func ParseMessage(line []byte) (Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("discriminate message: %w", err)
	}

	switch raw.Type {
	case "system":
		if raw.Subtype != "init" {
			return nil, nil
		}
		var msg SystemInitMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse system init: %w", err)
		}
		return &msg, nil

	case "assistant":
		var msg AssistantMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse assistant message: %w", err)
		}
		return &msg, nil

	case "user":
		var msg UserEchoMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse user echo: %w", err)
		}
		return &msg, nil

	case "tool_call":
		var msg ToolCallMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse tool_call message: %w", err)
		}
		return &msg, nil

	case "result":
		var msg ResultMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse result message: %w", err)
		}
		return &msg, nil

	default:
		return nil, nil
	}
}
