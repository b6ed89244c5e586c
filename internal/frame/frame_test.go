package frame

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualStepRunsQueuedOnce(t *testing.T) {
	var m Manual
	runs := 0
	var tick func()
	tick = func() {
		runs++
		if runs < 3 {
			m.RequestFrame(tick)
		}
	}
	m.RequestFrame(tick)

	for i := 1; i <= 3; i++ {
		if n := m.Step(); n != 1 {
			t.Fatalf("step %d ran %d callbacks, want 1", i, n)
		}
		if runs != i {
			t.Fatalf("runs = %d, want %d", runs, i)
		}
	}
	if m.Pending() != 0 {
		t.Fatalf("Pending = %d, want 0", m.Pending())
	}
}

func TestManualCancel(t *testing.T) {
	var m Manual
	ran := false
	cancel := m.RequestFrame(func() { ran = true })
	cancel()
	if m.Pending() != 0 {
		t.Fatalf("Pending = %d after cancel", m.Pending())
	}
	if n := m.Step(); n != 0 || ran {
		t.Fatalf("cancelled callback ran")
	}
}

func TestTickerPostsFrames(t *testing.T) {
	posted := make(chan func(), 4)
	tk := NewTicker(time.Millisecond, func(fn func()) error {
		posted <- fn
		return nil
	})
	defer tk.Stop()

	done := make(chan struct{})
	tk.RequestFrame(func() { close(done) })
	cancelled := tk.RequestFrame(func() { t.Errorf("cancelled frame ran") })
	cancelled()

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame posted")
	}
	select {
	case <-done:
	default:
		t.Fatalf("frame callback did not run")
	}
}

func TestTickerRetriesRejectedFrame(t *testing.T) {
	var attempts atomic.Int32
	posted := make(chan func(), 4)
	tk := NewTicker(time.Millisecond, func(fn func()) error {
		if attempts.Add(1) == 1 {
			return errors.New("event queue full")
		}
		posted <- fn
		return nil
	})
	defer tk.Stop()

	runs := 0
	tk.RequestFrame(func() { runs++ })

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatalf("rejected frame never retried, %d posts attempted", attempts.Load())
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if attempts.Load() < 2 {
		t.Fatalf("attempts = %d, want at least 2", attempts.Load())
	}
}
