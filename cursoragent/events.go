package cursoragent

// EventName is the subscription key for bridge events.
type EventName string

const (
	// EventReady fires when Send has spawned the agent process.
	EventReady EventName = "ready"
	// EventInit fires when the agent reports its session on the stream.
	EventInit EventName = "init"
	// EventAssistant fires for each streamed assistant text fragment.
	EventAssistant EventName = "assistant"
	// EventToolCall fires when a tool call starts or completes.
	EventToolCall EventName = "toolCall"
	// EventResult fires when the agent reports the turn result.
	EventResult EventName = "result"
	// EventError fires for any failure: auth, spawn, or runtime.
	EventError EventName = "error"
	// EventClose fires when the agent process has exited.
	EventClose EventName = "close"
	// EventApprovalRequired fires when the MCP approval prompt is detected.
	EventApprovalRequired EventName = "approvalRequired"
)

// Event is the union of payloads delivered to subscribers.
type Event interface {
	Name() EventName
}

// ReadyEvent reports that the agent process is running. The remote session
// is not confirmed until InitEvent.
type ReadyEvent struct {
	Command string // the candidate that actually spawned
}

func (ReadyEvent) Name() EventName { return EventReady }

// InitEvent reports the remote session the agent assigned or resumed.
type InitEvent struct {
	SessionID        string
	Model            string
	PermissionMode   string
	WorkingDirectory string
}

func (InitEvent) Name() EventName { return EventInit }

// AssistantEvent carries one streamed text fragment plus the accumulated
// text of the turn so far.
type AssistantEvent struct {
	Text     string
	FullText string
}

func (AssistantEvent) Name() EventName { return EventAssistant }

// ToolCallPhase distinguishes start from completion.
type ToolCallPhase string

const (
	ToolCallStarted   ToolCallPhase = "started"
	ToolCallCompleted ToolCallPhase = "completed"
)

// ToolCallEvent reports a tool call transition.
type ToolCallEvent struct {
	Phase  ToolCallPhase
	CallID string
	Call   ToolCall
}

func (ToolCallEvent) Name() EventName { return EventToolCall }

// ResultEvent is the agent's final report for the turn.
type ResultEvent struct {
	DurationMs    int64
	APIDurationMs int64
	IsError       bool
	Text          string
}

func (ResultEvent) Name() EventName { return EventResult }

// ErrorEvent reports a failure. Err is always non-nil; Context names the
// stage that failed ("auth", "spawn", "process").
type ErrorEvent struct {
	Err     error
	Context string
}

func (ErrorEvent) Name() EventName { return EventError }

// CloseEvent reports process exit. ExitCode is -1 when the process was
// killed before exiting on its own.
type CloseEvent struct {
	ExitCode int
}

func (CloseEvent) Name() EventName { return EventClose }

// ApprovalEvent carries a detected MCP approval request.
type ApprovalEvent struct {
	Request ApprovalRequest
}

func (ApprovalEvent) Name() EventName { return EventApprovalRequired }
