package api

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newTestRedisBroker(t *testing.T) *RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBroker(client)
}

func TestRedisBrokerDelivers(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("s1")
	defer b.Unsubscribe("s1", ch)

	b.Publish("s1", SessionEvent{Type: "session.stop_confirmed", Data: map[string]any{"ident": "LFAT"}})

	select {
	case evt := <-ch:
		if evt.Type != "session.stop_confirmed" {
			t.Fatalf("got %q", evt.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestRedisBrokerPublishAfterUnsubscribe(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("s1")

	b.Unsubscribe("s1", ch)
	// a publish racing the teardown must land on a live reader or nowhere,
	// never on a closed channel
	b.Publish("s1", SessionEvent{Type: "session.stop_confirmed"})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // reader exited and closed the channel
			}
		case <-deadline:
			t.Fatal("event channel never closed after unsubscribe")
		}
	}
}

func TestRedisBrokerUnsubscribeTwice(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("s1")
	b.Unsubscribe("s1", ch)
	b.Unsubscribe("s1", ch)
}
