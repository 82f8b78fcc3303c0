package cursoragent

import (
	"encoding/json"
	"fmt"
)

// ToolKind identifies a known tool call shape on the wire.
type ToolKind string

const (
	ToolKindRead    ToolKind = "readToolCall"
	ToolKindWrite   ToolKind = "writeToolCall"
	ToolKindGeneric ToolKind = "generic"
)

// ToolCall is the closed variant set of tool call payloads. Known kinds get
// typed args and results; everything else flows through GenericToolCall so
// new upstream tools never break decoding.
type ToolCall interface {
	Kind() ToolKind
	Name() string
}

// ReadToolCall is a file read performed by the agent.
type ReadToolCall struct {
	Path   string
	Result *ReadToolResult
}

// ReadToolResult is the success payload of a completed read.
type ReadToolResult struct {
	Content       string `json:"content"`
	IsEmpty       bool   `json:"isEmpty"`
	ExceededLimit bool   `json:"exceededLimit"`
	TotalLines    int    `json:"totalLines"`
	TotalChars    int    `json:"totalChars"`
}

func (c *ReadToolCall) Kind() ToolKind { return ToolKindRead }
func (c *ReadToolCall) Name() string   { return string(ToolKindRead) }

// WriteToolCall is a file write performed by the agent.
type WriteToolCall struct {
	Path     string
	FileText string
	Result   *WriteToolResult
}

// WriteToolResult is the success payload of a completed write.
type WriteToolResult struct {
	Path         string `json:"path"`
	LinesCreated int    `json:"linesCreated"`
	FileSize     int    `json:"fileSize"`
}

func (c *WriteToolCall) Kind() ToolKind { return ToolKindWrite }
func (c *WriteToolCall) Name() string   { return string(ToolKindWrite) }

// GenericToolCall carries an unrecognized tool kind opaquely.
type GenericToolCall struct {
	ToolName string
	Args     map[string]interface{}
	Result   interface{}
}

func (c *GenericToolCall) Kind() ToolKind { return ToolKindGeneric }
func (c *GenericToolCall) Name() string   { return c.ToolName }

// toolCallEnvelope is the per-kind wire payload: args plus optional result.
type toolCallEnvelope struct {
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result"`
}

type readToolArgs struct {
	Path string `json:"path"`
}

type writeToolArgs struct {
	Path     string `json:"path"`
	FileText string `json:"fileText"`
}

// resultEnvelope unwraps results of the form {"success": {...}}. Results
// that are not wrapped decode with Success == nil.
type resultEnvelope struct {
	Success json.RawMessage `json:"success"`
}

// ParseToolCall extracts the typed tool call from a ToolCallMessage. The
// tool_call field has exactly one key, the tool kind.
func ParseToolCall(msg *ToolCallMessage) (ToolCall, error) {
	if msg == nil || len(msg.ToolCall) == 0 {
		return nil, fmt.Errorf("empty tool_call field")
	}

	for name, payload := range msg.ToolCall {
		var env toolCallEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("parse %s envelope: %w", name, err)
		}

		switch ToolKind(name) {
		case ToolKindRead:
			return parseReadCall(env)
		case ToolKindWrite:
			return parseWriteCall(env)
		default:
			return parseGenericCall(name, env)
		}
	}

	return nil, fmt.Errorf("no tool call entries found")
}

func parseReadCall(env toolCallEnvelope) (*ReadToolCall, error) {
	var args readToolArgs
	if len(env.Args) > 0 {
		if err := json.Unmarshal(env.Args, &args); err != nil {
			return nil, fmt.Errorf("parse read args: %w", err)
		}
	}
	call := &ReadToolCall{Path: args.Path}

	if payload := unwrapSuccess(env.Result); payload != nil {
		var res ReadToolResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("parse read result: %w", err)
		}
		call.Result = &res
	}
	return call, nil
}

func parseWriteCall(env toolCallEnvelope) (*WriteToolCall, error) {
	var args writeToolArgs
	if len(env.Args) > 0 {
		if err := json.Unmarshal(env.Args, &args); err != nil {
			return nil, fmt.Errorf("parse write args: %w", err)
		}
	}
	call := &WriteToolCall{Path: args.Path, FileText: args.FileText}

	if payload := unwrapSuccess(env.Result); payload != nil {
		var res WriteToolResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("parse write result: %w", err)
		}
		call.Result = &res
	}
	return call, nil
}

func parseGenericCall(name string, env toolCallEnvelope) (*GenericToolCall, error) {
	call := &GenericToolCall{ToolName: name}

	if len(env.Args) > 0 {
		// Best effort: non-object args stay nil rather than failing the call.
		_ = json.Unmarshal(env.Args, &call.Args)
	}
	if len(env.Result) > 0 {
		_ = json.Unmarshal(env.Result, &call.Result)
	}
	return call, nil
}

// unwrapSuccess returns the success payload of a result, handling both the
// wrapped {"success": {...}} form and a bare object. Nil when the result is
// absent or not a success.
func unwrapSuccess(result json.RawMessage) json.RawMessage {
	if len(result) == 0 {
		return nil
	}
	var env resultEnvelope
	if err := json.Unmarshal(result, &env); err != nil {
		return nil
	}
	if len(env.Success) > 0 {
		return env.Success
	}
	return result
}
