package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// EventBroker distributes session events. The in-memory Broker serves a
// single process; RedisBroker spans replicas.
type EventBroker interface {
	Subscribe(sessionID string) chan SessionEvent
	Unsubscribe(sessionID string, ch chan SessionEvent)
	Publish(sessionID string, evt SessionEvent)
}

// RedisBroker implements EventBroker over Redis Pub/Sub. Each subscriber
// owns a PubSub connection; Unsubscribe closes the PubSub, which ends the
// reader goroutine, and only that goroutine ever closes the event channel.
type RedisBroker struct {
	rdb  *redis.Client
	mu   sync.Mutex
	subs map[chan SessionEvent]*redis.PubSub
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb, subs: map[chan SessionEvent]*redis.PubSub{}}
}

func (b *RedisBroker) Subscribe(sessionID string) chan SessionEvent {
	ch := make(chan SessionEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(sessionID))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(_ string, ch chan SessionEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		// drains and closes ps.Channel(), letting the reader exit and
		// close ch; a concurrent Publish only ever reaches a live reader
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(sessionID string, evt SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(sessionID), data).Err()
}

func (b *RedisBroker) chanName(sessionID string) string { return "session:" + sessionID }
