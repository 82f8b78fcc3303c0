package cursoragent

import (
	"io"
	"regexp"
	"strings"
	"sync"
)

// ApprovalChoice is the single keystroke the approval prompt expects.
type ApprovalChoice string

const (
	// ApprovalApproveAll trusts every listed MCP server.
	ApprovalApproveAll ApprovalChoice = "a"
	// ApprovalContinueWithout proceeds with the servers unapproved.
	ApprovalContinueWithout ApprovalChoice = "c"
	// ApprovalQuit aborts the invocation.
	ApprovalQuit ApprovalChoice = "q"
)

// ApprovalServer is one MCP server named by the approval prompt.
type ApprovalServer struct {
	Name string
	URL  string // empty when the prompt shows no URL
}

// ApprovalRequest is the parsed approval prompt. It is created at most once
// per invocation and must be answered at most once.
type ApprovalRequest struct {
	Servers   []ApprovalServer
	RawPrompt string
}

// The prompt is human-readable terminal output, not protocol. These phrases
// and the bullet pattern are the only things that need updating if upstream
// rewords it; nothing outside this file touches raw stderr text.
const (
	approvalMarker     = "MCP servers"
	approvalListStart  = "need to be approved"
	approvalOptAll     = "approve all"
	approvalOptWithout = "continue without approval"

	// approvalBufferCap bounds the rolling stderr buffer so chatty
	// diagnostics cannot grow it without limit.
	approvalBufferCap = 50000
)

var (
	ansiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	serverBullet = regexp.MustCompile(`^\s*[-•*]\s*(\S+)(?:\s+\((\S+)\))?\s*$`)
)

// approvalDetector scans the diagnostic stream for the interactive MCP
// approval prompt and owns the one-shot reply channel back into the
// process's stdin.
type approvalDetector struct {
	mu       sync.Mutex
	stdin    io.Writer
	buf      string
	detected bool
	pending  bool
}

func newApprovalDetector(stdin io.Writer) *approvalDetector {
	return &approvalDetector{stdin: stdin}
}

// Feed appends a stderr chunk and returns the approval request the moment a
// well-formed prompt is first confirmed, nil otherwise. After a detection
// the detector latches and stops scanning: the same prompt text recurring in
// the buffer must not re-emit.
func (d *approvalDetector) Feed(chunk []byte) *ApprovalRequest {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detected {
		return nil
	}

	d.buf += string(chunk)
	if len(d.buf) > approvalBufferCap {
		d.buf = d.buf[len(d.buf)-approvalBufferCap:]
	}

	req := parseApprovalPrompt(d.buf)
	if req == nil {
		return nil
	}

	d.detected = true
	d.pending = true
	return req
}

// Reply writes the choice's single character into the process input stream.
// It reports false — never panics — when no prompt is pending or the write
// fails; a second reply for the same invocation always reports false.
func (d *approvalDetector) Reply(choice ApprovalChoice) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending || d.stdin == nil {
		return false
	}

	if _, err := d.stdin.Write([]byte(choice)); err != nil {
		return false
	}
	d.pending = false
	return true
}

// parseApprovalPrompt confirms a well-formed prompt in the cleaned text and
// extracts the server list. Returns nil when the prompt is absent or only
// partially printed so far.
func parseApprovalPrompt(raw string) *ApprovalRequest {
	text := ansiSequence.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "\r", "")
	lower := strings.ToLower(text)

	marker := strings.Index(lower, strings.ToLower(approvalMarker))
	if marker < 0 {
		return nil
	}

	tail := lower[marker:]
	optAll := strings.Index(tail, approvalOptAll)
	optWithout := strings.Index(tail, approvalOptWithout)
	if optAll < 0 || optWithout < 0 {
		// Prompt header seen but the menu has not fully printed yet.
		return nil
	}

	listStart := strings.Index(tail, approvalListStart)
	if listStart < 0 {
		listStart = 0
	} else {
		listStart += len(approvalListStart)
	}
	listEnd := optAll
	if optWithout < listEnd {
		listEnd = optWithout
	}
	if listEnd < listStart {
		listEnd = listStart
	}

	region := text[marker+listStart : marker+listEnd]
	return &ApprovalRequest{
		Servers:   parseServerList(region),
		RawPrompt: strings.TrimSpace(text[marker:]),
	}
}

// parseServerList extracts bulleted "name (url)" entries, de-duplicated by
// name+url in first-seen order.
func parseServerList(region string) []ApprovalServer {
	var servers []ApprovalServer
	seen := make(map[string]struct{})

	for _, line := range strings.Split(region, "\n") {
		m := serverBullet.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		srv := ApprovalServer{Name: m[1], URL: m[2]}
		key := srv.Name + "\x00" + srv.URL
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		servers = append(servers, srv)
	}
	return servers
}
