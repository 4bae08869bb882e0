package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	other := b.Subscribe("s2")

	b.Publish("s1", SessionEvent{Type: "session.stop_confirmed", Data: map[string]any{"ident": "LFAT"}})

	select {
	case evt := <-ch:
		if evt.Type != "session.stop_confirmed" {
			t.Fatalf("got %q", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	select {
	case evt := <-other:
		t.Fatalf("event leaked across sessions: %+v", evt)
	default:
	}

	b.Unsubscribe("s1", ch)
	b.Unsubscribe("s2", other)
	// publishing after unsubscribe must not panic
	b.Publish("s1", SessionEvent{Type: "session.stop_confirmed"})
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	for i := 0; i < 100; i++ {
		b.Publish("s1", SessionEvent{Type: "session.stop_confirmed"})
	}
	// buffered events are available, overflow was dropped without blocking
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			if n == 0 || n > 8 {
				t.Fatalf("buffered %d events", n)
			}
			b.Unsubscribe("s1", ch)
			return
		}
	}
}
