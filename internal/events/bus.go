// Package events is the in-process publish/subscribe channel that keeps
// independent views consistent after assignment changes.
package events

import (
	"sync"
	"time"

	"github.com/estatedesk/portal/pkg/logger"
)

// Type names the relation (or the whole model) that changed.
type Type string

const (
	ProjectConsultant Type = "project-consultant"
	ProjectClient     Type = "project-client"
	ClientConsultant  Type = "client-consultant"
	RefreshAll        Type = "refresh-all"
)

// Event is delivered to every listener on Notify.
type Event struct {
	Type      Type        `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Change is the payload the relation store attaches to its events.
type Change struct {
	Action string `json:"action"` // add, remove, save, cleanup, setup
	IDA    string `json:"idA,omitempty"`
	IDB    string `json:"idB,omitempty"`
	Count  int    `json:"count"`
}

// Listener receives events synchronously on the notifying goroutine.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus delivers events to listeners in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	now    func() time.Time
}

func NewBus() *Bus {
	return &Bus{now: time.Now}
}

// Subscribe registers l and returns a function that removes it.
// The returned function is idempotent and safe to call from inside a listener.
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// copy so an in-flight Notify keeps iterating its own snapshot
			next := make([]subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			next = append(next, b.subs[i+1:]...)
			b.subs = next
			return
		}
	}
}

// Notify invokes every current listener with the event. A listener that
// panics is logged and skipped; the rest still run.
func (b *Bus) Notify(t Type, data interface{}) {
	b.mu.RLock()
	snapshot := b.subs
	b.mu.RUnlock()

	ev := Event{Type: t, Data: data, Timestamp: b.now()}
	for _, s := range snapshot {
		b.deliver(s, ev)
	}
}

func (b *Bus) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("event", string(ev.Type)).
				Uint64("listener", s.id).
				Msg("event listener failed")
		}
	}()
	s.listener(ev)
}

// Count returns the number of active listeners.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
