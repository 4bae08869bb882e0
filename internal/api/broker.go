package api

import (
	"sync"
)

// SessionEvent is a session lifecycle notification pushed to stream clients.
type SessionEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Broker fans session events out to in-process subscribers. Slow consumers
// drop events rather than block the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SessionEvent]struct{} // sessionID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SessionEvent]struct{}{}}
}

func (b *Broker) Subscribe(sessionID string) chan SessionEvent {
	ch := make(chan SessionEvent, 8)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = map[chan SessionEvent]struct{}{}
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(sessionID string, ch chan SessionEvent) {
	b.mu.Lock()
	if m := b.subs[sessionID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, sessionID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(sessionID string, evt SessionEvent) {
	b.mu.Lock()
	m := b.subs[sessionID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
