package session

import (
	"context"
	"log"
	"time"
)

// Janitor periodically sweeps expired sessions from a Store. It is a safety
// net for the in-memory backend; lazy expiry already guarantees correctness.
type Janitor struct {
	store    Store
	interval time.Duration
	onSweep  func(dropped int)
	stop     chan struct{}
	done     chan struct{}
}

// NewJanitor builds a stopped janitor. interval <= 0 defaults to one minute.
func NewJanitor(store Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnSweep registers a callback invoked after every successful sweep with the
// number of sessions dropped. Set it before Start.
func (j *Janitor) OnSweep(fn func(dropped int)) { j.onSweep = fn }

// Start launches the sweep loop in its own goroutine.
func (j *Janitor) Start() {
	go j.run()
}

func (j *Janitor) run() {
	defer close(j.done)
	t := time.NewTicker(j.interval)
	defer t.Stop()
	for {
		select {
		case <-j.stop:
			return
		case <-t.C:
			n, err := j.store.CleanupExpired(context.Background())
			if err != nil {
				log.Printf("session janitor: cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("session janitor: dropped %d expired sessions", n)
			}
			if j.onSweep != nil {
				j.onSweep(n)
			}
		}
	}
}

// Stop halts the loop and waits for the current sweep to finish.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
