package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"scenelint/internal/source"
)

type recorder struct {
	mu       sync.Mutex
	versions []uint64
	block    chan struct{}
}

func (r *recorder) pass(ctx context.Context, snap source.Snapshot) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return
		}
	}
	r.mu.Lock()
	r.versions = append(r.versions, snap.Version())
	r.mu.Unlock()
}

func (r *recorder) seen() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.versions...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestDebounceCoalescesRapidTouches(t *testing.T) {
	rec := &recorder{}
	s := New(30*time.Millisecond, rec.pass)
	defer s.Close()

	for v := uint64(1); v <= 5; v++ {
		s.Touch(source.FromLines([]string{"x = 1"}, v))
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, func() bool { return len(rec.seen()) == 1 })

	got := rec.seen()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("passes = %v, want exactly [5]", got)
	}
}

func TestTouchDuringPassQueuesFollowUp(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	s := New(10*time.Millisecond, rec.pass)
	defer s.Close()

	s.Touch(source.FromLines([]string{"a"}, 1))
	// Дождаться запуска первого прохода (он заблокирован на канале).
	waitFor(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	})

	s.Touch(source.FromLines([]string{"b"}, 2))
	time.Sleep(30 * time.Millisecond) // debounce expires while pass 1 runs
	close(rec.block)

	waitFor(t, func() bool { return len(rec.seen()) == 2 })
	got := rec.seen()
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("passes = %v, want [1 2]", got)
	}
}

func TestTouchAfterQueuedFireRestartsQuietPeriod(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	s := New(100*time.Millisecond, rec.pass)
	defer s.Close()

	s.Touch(source.FromLines([]string{"a"}, 1))
	waitFor(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	})

	s.Touch(source.FromLines([]string{"b"}, 2))
	time.Sleep(150 * time.Millisecond) // таймер срабатывает, пока идёт первый проход
	s.Touch(source.FromLines([]string{"c"}, 3))
	close(rec.block)

	waitFor(t, func() bool { return len(rec.seen()) == 1 })
	time.Sleep(30 * time.Millisecond)
	if got := rec.seen(); len(got) != 1 {
		t.Fatalf("passes = %v: the last edit must wait out its quiet period", got)
	}

	waitFor(t, func() bool { return len(rec.seen()) == 2 })
	got := rec.seen()
	if got[0] != 1 || got[1] != 3 {
		t.Fatalf("passes = %v, want [1 3]", got)
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	rec := &recorder{}
	s := New(time.Hour, rec.pass)
	defer s.Close()

	s.Touch(source.FromLines([]string{"x"}, 7))
	s.Flush()

	waitFor(t, func() bool { return len(rec.seen()) == 1 })
	if got := rec.seen(); got[0] != 7 {
		t.Fatalf("passes = %v, want [7]", got)
	}
}

func TestCloseCancelsInFlightPass(t *testing.T) {
	started := make(chan struct{})
	done := make(chan struct{})
	s := New(5*time.Millisecond, func(ctx context.Context, _ source.Snapshot) {
		close(started)
		<-ctx.Done()
		close(done)
	})

	s.Touch(source.FromLines([]string{"x"}, 1))
	<-started
	s.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pass was not cancelled by Close")
	}
}

func TestTouchAfterCloseIsNoOp(t *testing.T) {
	rec := &recorder{}
	s := New(5*time.Millisecond, rec.pass)
	s.Close()

	s.Touch(source.FromLines([]string{"x"}, 1))
	time.Sleep(30 * time.Millisecond)
	if got := rec.seen(); len(got) != 0 {
		t.Fatalf("passes = %v, want none after Close", got)
	}
}
