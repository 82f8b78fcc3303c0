package ledger

import "sync"

// conversation is the state of one remote session.
type conversation struct {
	remoteID string
	model    string
	messages []ChatMessage
}

// Ledger maps remote session ids to ordered message history and tracks the
// current conversation. It is safe for concurrent use: the bridge's event
// goroutine and the host's UI thread both touch it.
type Ledger struct {
	mu      sync.Mutex
	byID    map[string]*conversation
	current *conversation
	pending []ChatMessage
}

// NewLedger returns an empty ledger with no current session.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]*conversation)}
}

// SetCurrentSession makes the given remote session current, creating it on
// first sight, and promotes every pending message into its history in
// original order. The pending buffer is emptied so a later call can never
// promote the same message twice.
func (l *Ledger) SetCurrentSession(id, model string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	conv := l.byID[id]
	if conv == nil {
		conv = &conversation{remoteID: id}
		l.byID[id] = conv
	}
	if model != "" {
		conv.model = model
	}
	l.current = conv

	conv.messages = append(conv.messages, l.pending...)
	l.pending = nil
}

// AddMessage appends to the current conversation, or to the pending buffer
// when no remote session is confirmed yet.
func (l *Ledger) AddMessage(msg ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		l.current.messages = append(l.current.messages, msg)
		return
	}
	l.pending = append(l.pending, msg)
}

// Messages returns a copy of a session's history. An empty id means the
// current session; an unknown id returns nil.
func (l *Ledger) Messages(id string) []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	conv := l.current
	if id != "" {
		conv = l.byID[id]
	}
	if conv == nil {
		return nil
	}
	return append([]ChatMessage(nil), conv.messages...)
}

// Pending returns a copy of the messages not yet attached to a session.
func (l *Ledger) Pending() []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ChatMessage(nil), l.pending...)
}

// CurrentSessionID returns the current remote session id, or "".
func (l *Ledger) CurrentSessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return ""
	}
	return l.current.remoteID
}

// CurrentModel returns the current session's model, or "".
func (l *Ledger) CurrentModel() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return ""
	}
	return l.current.model
}

// ClearCurrentSession detaches the current conversation and drops any
// pending messages. The conversation's history stays retrievable by id.
func (l *Ledger) ClearCurrentSession() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = nil
	l.pending = nil
}
