package pomodoro

import (
	"sync"
	"time"
)

// TimerManager fans the state of one Timer out to render surfaces.
type TimerManager struct {
	mu        sync.Mutex
	subs      []chan Snapshot
	Timer     *Timer
	lastValue Snapshot
	doneCh    chan struct{}
	closed    bool
}

func NewTimerManager(total time.Duration, opts ...Option) *TimerManager {
	tm := &TimerManager{
		doneCh: make(chan struct{}),
	}
	tm.Timer = NewTimer(total, append(opts, WithOnChange(tm.broadcast))...)
	tm.lastValue = tm.Timer.Snapshot()
	if tm.lastValue.Status == Finished {
		close(tm.doneCh)
	}
	return tm
}

// --- Subscriptions ---

// Subscribe returns a channel receiving every state change. Updates are
// dropped for subscribers that fall more than a few behind.
func (t *TimerManager) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 10)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		close(ch)
		return ch
	}
	t.subs = append(t.subs, ch)
	return ch
}

// broadcast runs under the timer's lock, so it never blocks.
func (t *TimerManager) broadcast(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.lastValue = s
	for _, ch := range t.subs {
		select {
		case ch <- s:
		default: // drop if slow
		}
	}

	select {
	case <-t.doneCh:
		if s.Status != Finished {
			// replace with a fresh done channel
			t.doneCh = make(chan struct{})
		}
	default:
		if s.Status == Finished {
			close(t.doneCh) // fire done
		}
	}
}

// --- Control methods ---

func (t *TimerManager) Toggle() {
	t.Timer.Toggle()
}

func (t *TimerManager) Reset() {
	t.Timer.Reset()
}

// Close disposes the timer and closes every subscription.
func (t *TimerManager) Close() {
	t.Timer.Dispose()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for _, ch := range t.subs {
		close(ch)
	}
	t.subs = nil
}

func (t *TimerManager) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastValue
}

// Done is closed when the current pomodoro finishes. A reset arms a new one.
func (t *TimerManager) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doneCh
}
