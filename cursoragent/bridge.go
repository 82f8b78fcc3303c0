package cursoragent

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-app/agentbridge/internal/cmdpath"
	"github.com/inkwell-app/agentbridge/internal/logging"
)

// loginTimeout bounds the interactive login flow; it is much longer than a
// probe because the user may be completing a browser round trip.
const loginTimeout = 120 * time.Second

type bridgeState int

const (
	stateIdle bridgeState = iota
	stateSpawning
	stateStreaming
)

// Bridge turns the Cursor Agent CLI into a cancelable, resumable, typed
// event stream for one logical conversation. It owns at most one live
// process at a time; a Send while one is live is a usage error, not a queue.
type Bridge struct {
	mu        sync.Mutex
	opts      Options
	state     bridgeState
	handle    *procHandle
	detector  *approvalDetector
	sessionID string

	emitter *emitter
	log     *logging.Logger
	goos    string

	// Test seams; production values set by NewBridge.
	spawnFn   func(candidates, args []string, cwd string, env []string) (*procHandle, error)
	resolveFn func(ctx context.Context, candidates []string, cwd string, env []string, opts Options) AuthResult
}

// NewBridge creates a bridge with the given options. No process is spawned
// until Send.
func NewBridge(opts Options) *Bridge {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	b := &Bridge{
		opts:    opts,
		emitter: newEmitter(),
		log:     log.With(zap.String("component", "cursoragent")),
		goos:    runtime.GOOS,
		spawnFn: spawn,
	}
	b.resolveFn = func(ctx context.Context, candidates []string, cwd string, env []string, o Options) AuthResult {
		return newAuthResolver(candidates, cwd, env, o.ProbeTimeout).Resolve(ctx, o.APIKey)
	}
	return b
}

// Subscribe registers a handler for the named event. Handlers run in
// registration order, synchronously with the stream.
func (b *Bridge) Subscribe(name EventName, fn Handler) Subscription {
	return b.emitter.subscribe(name, fn)
}

// Unsubscribe removes a previously registered handler.
func (b *Bridge) Unsubscribe(sub Subscription) {
	b.emitter.unsubscribe(sub)
}

// SessionID returns the remote session id remembered from the most recent
// init, or "" before any invocation reported one.
func (b *Bridge) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// IsRunning reports whether an invocation is live.
func (b *Bridge) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state != stateIdle
}

// UpdateOptions applies a partial options update. A turn already in flight
// keeps the snapshot it started with.
func (b *Bridge) UpdateOptions(patch OptionsPatch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if patch.BinaryPath != nil {
		b.opts.BinaryPath = *patch.BinaryPath
	}
	if patch.APIKey != nil {
		b.opts.APIKey = *patch.APIKey
	}
	if patch.Model != nil {
		b.opts.Model = *patch.Model
	}
	if patch.WorkingDirectory != nil {
		b.opts.WorkingDirectory = *patch.WorkingDirectory
	}
	if patch.Unattended != nil {
		b.opts.Unattended = *patch.Unattended
	}
}

// Send starts one conversational turn. It suspends only while resolving
// authentication; once the process is spawned it returns and all further
// progress arrives as events. Auth, spawn, and runtime failures surface as
// error events rather than returned errors — callers are long-lived event
// subscribers, not call/catch sites. The only returned error is the usage
// error of sending while a turn is live.
func (b *Bridge) Send(ctx context.Context, prompt string, sendOpts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range sendOpts {
		opt(&cfg)
	}

	b.mu.Lock()
	if b.state != stateIdle {
		b.mu.Unlock()
		return ErrTurnInFlight
	}
	b.state = stateSpawning
	opts := b.opts
	resume := cfg.resume
	if resume == "" {
		resume = b.sessionID
	}
	b.mu.Unlock()

	candidates := cmdpath.Candidates(opts.BinaryPath, b.goos)
	env := cmdpath.HostEnv(b.goos)

	auth := b.resolveFn(ctx, candidates, opts.WorkingDirectory, env, opts)
	if !auth.Authenticated {
		b.resetIdle()
		b.emitter.emit(ErrorEvent{Err: &AuthError{}, Context: "auth"})
		return nil
	}

	args := buildTurnArgs(prompt, opts, resume, auth)
	h, err := b.spawnFn(candidates, args, opts.WorkingDirectory, env)
	if err != nil {
		b.resetIdle()
		b.log.Error("spawn failed", zap.Error(err))
		b.emitter.emit(ErrorEvent{Err: err, Context: "spawn"})
		return nil
	}

	detector := newApprovalDetector(h.stdin)

	b.mu.Lock()
	b.handle = h
	b.detector = detector
	b.state = stateStreaming
	b.mu.Unlock()

	if opts.Unattended {
		// No approval handshake can happen; mirror the non-interactive
		// default and let the agent see EOF on stdin right away.
		_ = h.stdin.Close()
	}

	b.log.Info("agent process started",
		zap.String("command", h.command),
		zap.String("auth_source", string(auth.Source)),
		zap.Bool("resume", resume != ""))
	b.emitter.emit(ReadyEvent{Command: h.command})

	var wg sync.WaitGroup
	var stderrText strings.Builder
	wg.Add(2)
	go b.readLoop(h, &wg)
	go b.stderrLoop(h, detector, &stderrText, &wg)
	go b.waitLoop(h, &wg, &stderrText)

	return nil
}

// buildTurnArgs composes the process arguments for one turn. Resume and
// model selection are mutually exclusive: a resumed remote session already
// owns its model.
func buildTurnArgs(prompt string, opts Options, resume string, auth AuthResult) []string {
	args := []string{"chat", "-p", prompt, "--output-format", "stream-json"}
	if resume != "" {
		args = append(args, "--resume="+resume)
	} else if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	args = append(args, auth.ExtraArgs...)
	if opts.Unattended {
		args = append(args, "--force")
	}
	return args
}

// readLoop feeds stdout through the decoder and dispatches each message, in
// the exact order its source line completed.
func (b *Bridge) readLoop(h *procHandle, wg *sync.WaitGroup) {
	defer wg.Done()

	dec := NewDecoder()
	var fullText strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := h.stdout.Read(buf)
		if n > 0 {
			for _, msg := range dec.Feed(buf[:n]) {
				b.handleMessage(msg, &fullText)
			}
		}
		if err != nil {
			return
		}
	}
}

func (b *Bridge) handleMessage(msg Message, fullText *strings.Builder) {
	switch m := msg.(type) {
	case *SystemInitMessage:
		// Remember the remote session unconditionally on every init so a
		// multi-turn conversation keeps resuming through one bridge.
		b.mu.Lock()
		b.sessionID = m.SessionID
		b.mu.Unlock()
		b.emitter.emit(InitEvent{
			SessionID:        m.SessionID,
			Model:            m.Model,
			PermissionMode:   m.PermissionMode,
			WorkingDirectory: m.CWD,
		})

	case *AssistantMessage:
		for _, fragment := range m.TextFragments() {
			fullText.WriteString(fragment)
			b.emitter.emit(AssistantEvent{Text: fragment, FullText: fullText.String()})
		}

	case *UserEchoMessage:
		// The agent echoing the prompt back; the ledger already has it.

	case *ToolCallMessage:
		call, err := ParseToolCall(m)
		if err != nil {
			b.log.Debug("undecodable tool call", zap.Error(err))
			return
		}
		switch m.Subtype {
		case "started":
			b.emitter.emit(ToolCallEvent{Phase: ToolCallStarted, CallID: m.CallID, Call: call})
		case "completed":
			b.emitter.emit(ToolCallEvent{Phase: ToolCallCompleted, CallID: m.CallID, Call: call})
		}

	case *ResultMessage:
		b.emitter.emit(ResultEvent{
			DurationMs:    m.DurationMs,
			APIDurationMs: m.DurationAPIMs,
			IsError:       m.IsError,
			Text:          m.Result,
		})
	}
}

// stderrLoop feeds the diagnostic stream to the approval detector and
// accumulates it for the exit report.
func (b *Bridge) stderrLoop(h *procHandle, detector *approvalDetector, acc *strings.Builder, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, 4096)
	for {
		n, err := h.stderr.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			if req := detector.Feed(buf[:n]); req != nil {
				b.log.Info("approval prompt detected",
					zap.Int("servers", len(req.Servers)))
				b.emitter.emit(ApprovalEvent{Request: *req})
			}
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the process after both stream readers hit EOF, then emits
// the terminal events. The error event (when warranted) always precedes the
// close event.
func (b *Bridge) waitLoop(h *procHandle, wg *sync.WaitGroup, stderrText *strings.Builder) {
	wg.Wait()
	err := h.cmd.Wait()
	code := h.cmd.ProcessState.ExitCode()

	b.mu.Lock()
	if b.handle == h {
		b.handle = nil
		b.detector = nil
		b.state = stateIdle
	}
	b.mu.Unlock()

	diag := strings.TrimSpace(stderrText.String())
	if code != 0 && diag != "" {
		b.emitter.emit(ErrorEvent{
			Err:     &ProcessError{ExitCode: code, Stderr: diag, Cause: err},
			Context: "process",
		})
	}
	b.log.Info("agent process exited", zap.Int("exit_code", code))
	b.emitter.emit(CloseEvent{ExitCode: code})
}

// Cancel forcibly ends any live invocation. The handle is cleared before
// Cancel returns; the OS-level termination is best effort and asynchronous,
// and the close event still fires once the process is reaped.
func (b *Bridge) Cancel() {
	b.mu.Lock()
	h := b.handle
	b.handle = nil
	b.detector = nil
	b.state = stateIdle
	b.mu.Unlock()

	if h != nil {
		go h.terminate()
	}
}

// SubmitApproval answers a pending approval prompt. It reports false when no
// process is live, no prompt is pending, or a reply was already submitted.
func (b *Bridge) SubmitApproval(choice ApprovalChoice) bool {
	b.mu.Lock()
	detector := b.detector
	b.mu.Unlock()

	if detector == nil {
		return false
	}
	return detector.Reply(choice)
}

// resetIdle returns the bridge to idle after a send that never spawned.
func (b *Bridge) resetIdle() {
	b.mu.Lock()
	b.state = stateIdle
	b.mu.Unlock()
}

// Status runs the CLI's status probe and returns its combined output.
func (b *Bridge) Status(ctx context.Context) (string, error) {
	res, err := b.oneShot(ctx, []string{"status"}, defaultProbeTimeout)
	if err != nil {
		return "", err
	}
	return res.Output(), nil
}

// Login runs the interactive login flow to completion.
func (b *Bridge) Login(ctx context.Context) (string, error) {
	res, err := b.oneShot(ctx, []string{"login"}, loginTimeout)
	if err != nil {
		return "", err
	}
	return res.Output(), nil
}

// ListSessions lists the agent's stored sessions.
func (b *Bridge) ListSessions(ctx context.Context) (string, error) {
	res, err := b.oneShot(ctx, []string{"ls"}, defaultProbeTimeout)
	if err != nil {
		return "", err
	}
	return res.Output(), nil
}

func (b *Bridge) oneShot(ctx context.Context, args []string, timeout time.Duration) (*OneShotResult, error) {
	b.mu.Lock()
	opts := b.opts
	b.mu.Unlock()

	candidates := cmdpath.Candidates(opts.BinaryPath, b.goos)
	env := cmdpath.HostEnv(b.goos)
	return runOneShot(ctx, candidates, args, opts.WorkingDirectory, env, timeout)
}
