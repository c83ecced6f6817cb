package pomodoro

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDuration   = 25 * time.Minute
	CompletionMessage = "🎉 Pomodoro Concluído!"

	tickInterval = time.Second
)

// ------------------- Status -------------------

type Status int

const (
	Idle Status = iota
	Running
	Paused
	Finished
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the timer state handed to render surfaces.
type Snapshot struct {
	Remaining int
	Total     int
	Status    Status
}

func (s Snapshot) Format() string { return Format(s.Remaining) }

func (s Snapshot) Progress() float64 { return ProgressFraction(s.Remaining, s.Total) }

// CanToggle reports whether the start/pause control should be enabled.
func (s Snapshot) CanToggle() bool { return s.Remaining > 0 && s.Status != Finished }

// ------------------- Timer -------------------

type Option func(*Timer)

func WithClock(c clockwork.Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithNotifier sets the completion gateway. A nil notifier disables notifications.
func WithNotifier(n Notifier) Option {
	return func(t *Timer) {
		if n == nil {
			n = nopNotifier{}
		}
		t.notifier = n
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(t *Timer) { t.logger = l }
}

// WithMessage overrides CompletionMessage.
func WithMessage(msg string) Option {
	return func(t *Timer) { t.message = msg }
}

// WithOnChange registers fn to receive every state change. fn runs with the
// timer's lock held and must not call back into the Timer.
func WithOnChange(fn func(Snapshot)) Option {
	return func(t *Timer) { t.onChange = fn }
}

// schedule is one repeating tick source. It is owned by the Timer while the
// status is Running and never reused once cancelled.
type schedule struct {
	ticker clockwork.Ticker
	stop   chan struct{}
}

func (s *schedule) cancel() {
	s.ticker.Stop()
	close(s.stop)
}

// Timer counts a fixed number of seconds down, one tick per second while
// running, and notifies once when it reaches zero.
type Timer struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	notifier  Notifier
	logger    zerolog.Logger
	message   string
	onChange  func(Snapshot)
	total     int
	remaining int
	status    Status
	sched     *schedule
	disposed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTimer(total time.Duration, opts ...Option) *Timer {
	secs := int(total / time.Second)
	if secs < 0 {
		secs = 0
	}

	t := &Timer{
		clock:     clockwork.NewRealClock(),
		notifier:  nopNotifier{},
		logger:    log.With().Str("component", "timer").Logger(),
		message:   CompletionMessage,
		total:     secs,
		remaining: secs,
		status:    Idle,
	}
	for _, opt := range opts {
		opt(t)
	}
	if secs == 0 {
		t.status = Finished
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	return t
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Active reports whether a tick schedule is outstanding.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched != nil
}

// Toggle pauses a running timer and starts an idle or paused one. It is a
// no-op once the timer has finished or been disposed.
func (t *Timer) Toggle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return
	}

	switch t.status {
	case Running:
		t.cancelLocked()
		t.setStatusLocked(Paused)
	case Idle, Paused:
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			p := t.notifier.RequestPermission(t.ctx)
			t.logger.Debug().Stringer("permission", p).Msg("notification permission")
		}()
		t.startLocked()
		t.setStatusLocked(Running)
	default:
		t.logger.Debug().Stringer("status", t.status).Msg("toggle ignored")
	}
}

// Reset cancels any schedule and restores the full duration.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return
	}

	t.cancelLocked()
	t.remaining = t.total
	if t.total == 0 {
		t.setStatusLocked(Finished)
		return
	}
	t.setStatusLocked(Idle)
}

// Dispose cancels any outstanding schedule and waits for the timer's
// goroutines to exit. The Timer is inert afterwards.
func (t *Timer) Dispose() {
	t.mu.Lock()
	t.cancelLocked()
	t.disposed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

// tick advances a running timer by one second. It does nothing in any other
// status, so ticks after completion are harmless.
func (t *Timer) tick() {
	t.tickFrom(nil)
}

// tickFrom is tick on behalf of schedule s. It reports whether s is spent,
// either because it was cancelled while the tick was in flight or because
// the countdown finished. A nil s skips the ownership check.
func (t *Timer) tickFrom(s *schedule) bool {
	t.mu.Lock()
	if s != nil && t.sched != s {
		t.mu.Unlock()
		return true
	}
	finished := t.advanceLocked()
	t.mu.Unlock()

	if finished {
		t.complete()
	}
	return finished
}

func (t *Timer) advanceLocked() bool {
	if t.status != Running {
		return false
	}

	t.remaining--
	if t.remaining > 0 {
		t.changedLocked()
		return false
	}

	t.remaining = 0
	t.cancelLocked()
	t.setStatusLocked(Finished)
	return true
}

func (t *Timer) complete() {
	t.logger.Info().Int("total_sec", t.total).Msg("pomodoro finished")
	if err := t.notifier.Notify(t.ctx, t.message); err != nil {
		t.logger.Debug().Err(err).Msg("completion notification skipped")
	}
}

func (t *Timer) startLocked() {
	// at most one schedule per timer
	t.cancelLocked()

	s := &schedule{
		ticker: t.clock.NewTicker(tickInterval),
		stop:   make(chan struct{}),
	}
	t.sched = s

	t.wg.Add(1)
	go t.run(s)
}

func (t *Timer) cancelLocked() {
	if t.sched == nil {
		return
	}
	t.sched.cancel()
	t.sched = nil
}

func (t *Timer) run(s *schedule) {
	defer t.wg.Done()

	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.Chan():
			if t.tickFrom(s) {
				return
			}
		}
	}
}

func (t *Timer) setStatusLocked(s Status) {
	if s != t.status {
		t.logger.Debug().
			Stringer("from", t.status).
			Stringer("to", s).
			Int("remaining_sec", t.remaining).
			Msg("status change")
	}
	t.status = s
	t.changedLocked()
}

func (t *Timer) changedLocked() {
	if t.onChange != nil {
		t.onChange(t.snapshotLocked())
	}
}

func (t *Timer) snapshotLocked() Snapshot {
	return Snapshot{Remaining: t.remaining, Total: t.total, Status: t.status}
}
