// Package sched drives background validation passes off editor keystrokes.
// Edits arrive far faster than a full validation pass is worth running, so
// the scheduler debounces: every Touch restarts a single countdown, and only
// after the buffer has been quiet for the delay does a pass start. At most
// one pass runs at a time; a Touch landing mid-pass is remembered and
// serviced once the running pass finishes.
package sched

import (
	"context"
	"sync"
	"time"

	"scenelint/internal/source"
)

// DefaultDelay is the quiet period after the last edit before a validation
// pass starts. Short enough to feel live, long enough to skip intermediate
// keystroke states.
const DefaultDelay = 2500 * time.Millisecond

// PassFunc runs one validation pass over a settled snapshot. The context is
// cancelled when the scheduler closes.
type PassFunc func(ctx context.Context, snap source.Snapshot)

// Scheduler owns a single delayed validation slot.
type Scheduler struct {
	delay time.Duration
	run   PassFunc

	mu      sync.Mutex
	timer   *time.Timer
	latest  source.Snapshot
	hasSnap bool
	running bool
	pending bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a scheduler around run. A non-positive delay falls back to
// DefaultDelay.
func New(delay time.Duration, run PassFunc) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		delay:  delay,
		run:    run,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Touch records a fresh snapshot and restarts the countdown. Any snapshot
// previously waiting in the slot is discarded: только последнее состояние
// буфера имеет смысл проверять.
func (s *Scheduler) Touch(snap source.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = snap
	s.hasSnap = true
	// Новая правка обнуляет тихий период: снапшот, поставленный в очередь
	// сработавшим таймером, больше не актуален.
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// fire is the timer callback: start a pass unless one is already running,
// in which case leave the snapshot pending for the completion hook.
func (s *Scheduler) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.hasSnap {
		return
	}
	if s.running {
		s.pending = true
		return
	}
	s.startLocked()
}

// startLocked launches a pass for the latest snapshot. Caller holds mu.
func (s *Scheduler) startLocked() {
	snap := s.latest
	s.hasSnap = false
	s.running = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, snap)
		s.finished()
	}()
}

// finished re-arms the slot when a Touch landed during the pass.
func (s *Scheduler) finished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.closed {
		return
	}
	if s.pending && s.hasSnap {
		s.pending = false
		s.startLocked()
		return
	}
	s.pending = false
}

// Flush runs a pass for the pending snapshot immediately, bypassing the
// delay. No-op when nothing is waiting or a pass is already in flight.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.hasSnap || s.running {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.startLocked()
}

// Close stops the timer, cancels the pass context and waits for any
// in-flight pass to return. Touch after Close is a no-op.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
