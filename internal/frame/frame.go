// Package frame schedules per-frame callbacks for the continuous pointer
// processes (table auto-scroll, column resize sampling). A callback runs
// once; processes that need to keep going re-arm themselves from inside the
// callback until their stop condition holds.
package frame

import (
	"sync"
	"time"

	"github.com/kobzarvs/qblocks/internal/logger"
)

type Scheduler interface {
	// RequestFrame queues fn for the next frame. The returned function
	// cancels the request if it has not run yet.
	RequestFrame(fn func()) (cancel func())
}

type request struct {
	fn        func()
	cancelled bool
}

// Ticker delivers frames at a fixed interval. Callbacks are not run on the
// ticker goroutine; each frame is handed to post, which must run it on the
// host's event loop. A frame post rejects is retried on the next tick.
type Ticker struct {
	mu       sync.Mutex
	pending  []*request
	post     func(func()) error
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTicker(interval time.Duration, post func(func()) error) *Ticker {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	t := &Ticker{
		post:     post,
		interval: interval,
		stopChan: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Ticker) RequestFrame(fn func()) func() {
	r := &request{fn: fn}
	t.mu.Lock()
	t.pending = append(t.pending, r)
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		r.cancelled = true
		t.mu.Unlock()
	}
}

func (t *Ticker) loop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			batch := t.pending
			t.pending = nil
			t.mu.Unlock()
			if len(batch) == 0 {
				continue
			}
			if err := t.post(func() { t.run(batch) }); err != nil {
				logger.Debug("frame post rejected", "callbacks", len(batch), "error", err)
				t.mu.Lock()
				t.pending = append(batch, t.pending...)
				t.mu.Unlock()
			}
		case <-t.stopChan:
			return
		}
	}
}

func (t *Ticker) run(batch []*request) {
	for _, r := range batch {
		t.mu.Lock()
		skip := r.cancelled
		t.mu.Unlock()
		if !skip {
			r.fn()
		}
	}
}

// Stop ends frame delivery. Pending requests are dropped.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// Manual is a Scheduler driven by explicit Step calls, for tests and
// headless hosts.
type Manual struct {
	pending []*request
}

func (m *Manual) RequestFrame(fn func()) func() {
	r := &request{fn: fn}
	m.pending = append(m.pending, r)
	return func() { r.cancelled = true }
}

// Step runs every callback queued before the call. Callbacks requested
// while stepping wait for the next Step. It returns how many ran.
func (m *Manual) Step() int {
	batch := m.pending
	m.pending = nil
	n := 0
	for _, r := range batch {
		if r.cancelled {
			continue
		}
		r.fn()
		n++
	}
	return n
}

// Pending counts queued, uncancelled callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, r := range m.pending {
		if !r.cancelled {
			n++
		}
	}
	return n
}
