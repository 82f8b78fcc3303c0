package cursoragent

import "sync"

// Handler receives bridge events. Handlers run synchronously on the
// dispatching goroutine, so event order is exactly stream order; a handler
// that needs to block should hand off to its own goroutine.
type Handler func(Event)

// Subscription identifies one registered handler for later removal.
type Subscription struct {
	name EventName
	id   int
}

// emitter holds one ordered listener list per event name. It is a plain
// struct owned by the bridge, not process-global state, so two bridges never
// see each other's subscribers.
type emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventName][]registration
}

type registration struct {
	id int
	fn Handler
}

func newEmitter() *emitter {
	return &emitter{listeners: make(map[EventName][]registration)}
}

func (e *emitter) subscribe(name EventName, fn Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.listeners[name] = append(e.listeners[name], registration{id: e.nextID, fn: fn})
	return Subscription{name: name, id: e.nextID}
}

func (e *emitter) unsubscribe(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	regs := e.listeners[sub.name]
	for i, reg := range regs {
		if reg.id == sub.id {
			e.listeners[sub.name] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// emit dispatches the event to its listeners in registration order. The
// listener list is copied under the lock so a handler may subscribe or
// unsubscribe without deadlocking.
func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	regs := append([]registration(nil), e.listeners[ev.Name()]...)
	e.mu.Unlock()

	for _, reg := range regs {
		reg.fn(ev)
	}
}
