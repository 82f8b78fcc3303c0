package ledger

import (
	"context"
	"sync"

	"github.com/inkwell-app/agentbridge/cursoragent"
)

// Recorder subscribes a Ledger to a Bridge so confirmed events become
// history. Prompts go through Recorder.Send, which appends the user message
// before the turn starts — into the pending buffer when the remote session
// is not confirmed yet.
type Recorder struct {
	bridge *cursoragent.Bridge
	ledger *Ledger
	subs   []cursoragent.Subscription

	mu       sync.Mutex
	turnText string
}

// NewRecorder attaches a ledger to a bridge. Call Close to detach.
func NewRecorder(bridge *cursoragent.Bridge, l *Ledger) *Recorder {
	r := &Recorder{bridge: bridge, ledger: l}
	r.subs = []cursoragent.Subscription{
		bridge.Subscribe(cursoragent.EventInit, r.onInit),
		bridge.Subscribe(cursoragent.EventAssistant, r.onAssistant),
		bridge.Subscribe(cursoragent.EventResult, r.onResult),
	}
	return r
}

// Send records the user message and starts the turn.
func (r *Recorder) Send(ctx context.Context, prompt string, opts ...cursoragent.SendOption) error {
	if err := r.bridge.Send(ctx, prompt, opts...); err != nil {
		return err
	}
	r.ledger.AddMessage(NewMessage(RoleUser, prompt))
	return nil
}

// Close detaches the recorder from the bridge.
func (r *Recorder) Close() {
	for _, sub := range r.subs {
		r.bridge.Unsubscribe(sub)
	}
	r.subs = nil
}

func (r *Recorder) onInit(ev cursoragent.Event) {
	init := ev.(cursoragent.InitEvent)
	r.ledger.SetCurrentSession(init.SessionID, init.Model)
}

func (r *Recorder) onAssistant(ev cursoragent.Event) {
	r.mu.Lock()
	r.turnText = ev.(cursoragent.AssistantEvent).FullText
	r.mu.Unlock()
}

func (r *Recorder) onResult(ev cursoragent.Event) {
	res := ev.(cursoragent.ResultEvent)

	r.mu.Lock()
	content := r.turnText
	r.turnText = ""
	r.mu.Unlock()

	if content == "" {
		content = res.Text
	}
	if res.IsError || content == "" {
		return
	}
	r.ledger.AddMessage(NewMessage(RoleAssistant, content))
}
