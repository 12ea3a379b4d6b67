package app

import (
	"context"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/engine"
)

// EventType tags updates pushed to session subscribers.
type EventType string

const (
	EventState   EventType = "state"
	EventEnded   EventType = "ended"
	EventWarning EventType = "warning"
)

// Event is one update for a subscriber.
type Event struct {
	Type     EventType        `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Tally    *domain.Tally    `json:"tally,omitempty"`
	Warning  string           `json:"warning,omitempty"`
}

// Timing controls the clock and the deferred continuations of a runner.
type Timing struct {
	TickInterval  time.Duration
	FeedbackDelay time.Duration // immediate mode, after an answer
	AckDelay      time.Duration // review mode, after a selection
	ReportTimeout time.Duration
	// Ticks replaces the internal ticker when set (tests).
	Ticks <-chan time.Time
	Now   func() time.Time
}

// DefaultTiming is a one-second clock with short UI delays.
func DefaultTiming() Timing {
	return Timing{
		TickInterval:  time.Second,
		FeedbackDelay: 1500 * time.Millisecond,
		AckDelay:      300 * time.Millisecond,
		ReportTimeout: 10 * time.Second,
		Now:           time.Now,
	}
}

type command struct {
	fn    func(e *engine.Engine) error
	reply chan error
}

// Runner owns one engine and serializes ticks, commands and deferred advances
// through a single loop. Once the engine is done nothing else is applied.
type Runner struct {
	id     string
	player string
	engine *engine.Engine
	timing Timing
	onEnd  func(domain.Tally) error

	commands chan command
	advances chan int
	done     chan struct{}

	timersMu sync.Mutex
	timers   []*time.Timer

	mu          sync.RWMutex
	snapshot    engine.Snapshot
	final       *domain.Tally
	closed      bool
	subscribers map[chan Event]struct{}
}

// NewRunner wraps a started engine. onEnd runs once, off the loop, with the final tally;
// its error is pushed to subscribers as a warning.
func NewRunner(id, player string, eng *engine.Engine, timing Timing, onEnd func(domain.Tally) error) *Runner {
	if timing.Now == nil {
		timing.Now = time.Now
	}
	if timing.TickInterval <= 0 {
		timing.TickInterval = time.Second
	}
	return &Runner{
		id:          id,
		player:      player,
		engine:      eng,
		timing:      timing,
		onEnd:       onEnd,
		commands:    make(chan command),
		advances:    make(chan int, 4),
		done:        make(chan struct{}),
		snapshot:    eng.Snapshot(),
		subscribers: make(map[chan Event]struct{}),
	}
}

func (r *Runner) ID() string     { return r.id }
func (r *Runner) Player() string { return r.player }

// Start launches the event loop.
func (r *Runner) Start() { go r.run() }

// Done is closed when the loop has stopped accepting events.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Snapshot returns the latest state published by the loop.
func (r *Runner) Snapshot() engine.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Tally returns the final tally once the session ended.
func (r *Runner) Tally() (domain.Tally, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.final == nil {
		return domain.Tally{}, false
	}
	return *r.final, true
}

func (r *Runner) Answer(ctx context.Context, option int) (engine.Feedback, error) {
	var fb engine.Feedback
	err := r.do(ctx, func(e *engine.Engine) error {
		var err error
		fb, err = e.Answer(option)
		if err != nil {
			return err
		}
		delay := r.timing.FeedbackDelay
		if e.Mode() == engine.ModeReview {
			delay = r.timing.AckDelay
		}
		r.schedule(delay, fb.Index)
		return nil
	})
	return fb, err
}

func (r *Runner) Jump(ctx context.Context, index int) error {
	return r.do(ctx, func(e *engine.Engine) error { return e.Jump(index) })
}

func (r *Runner) OpenReview(ctx context.Context) error {
	return r.do(ctx, func(e *engine.Engine) error { return e.OpenReview() })
}

func (r *Runner) Submit(ctx context.Context) error {
	return r.do(ctx, func(e *engine.Engine) error { return e.Submit() })
}

func (r *Runner) Abandon(ctx context.Context) error {
	return r.do(ctx, func(e *engine.Engine) error {
		e.Abandon()
		return nil
	})
}

func (r *Runner) do(ctx context.Context, fn func(e *engine.Engine) error) error {
	reply := make(chan error, 1)
	select {
	case r.commands <- command{fn: fn, reply: reply}:
	case <-r.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// schedule posts a deferred advance back into the loop; it never blocks the clock.
func (r *Runner) schedule(delay time.Duration, from int) {
	t := time.AfterFunc(delay, func() {
		select {
		case r.advances <- from:
		case <-r.done:
		}
	})
	r.timersMu.Lock()
	r.timers = append(r.timers, t)
	r.timersMu.Unlock()
}

func (r *Runner) run() {
	ticks := r.timing.Ticks
	if ticks == nil {
		ticker := time.NewTicker(r.timing.TickInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ticks:
			r.engine.Tick()
		case from := <-r.advances:
			r.engine.Advance(from)
		case cmd := <-r.commands:
			cmd.reply <- cmd.fn(r.engine)
		}

		snap := r.engine.Snapshot()
		if r.engine.Done() {
			r.finish(snap)
			return
		}
		r.broadcast(Event{Type: EventState, Snapshot: &snap})
	}
}

func (r *Runner) finish(snap engine.Snapshot) {
	tally, _ := r.engine.Tally()
	tally.SessionID = r.id
	tally.PlayerName = r.player
	tally.FinishedAt = r.timing.Now().UTC()

	r.mu.Lock()
	r.final = &tally
	r.mu.Unlock()

	r.stopTimers()
	close(r.done)
	r.broadcast(Event{Type: EventEnded, Snapshot: &snap, Tally: &tally})

	go func() {
		if r.onEnd != nil {
			if err := r.onEnd(tally); err != nil {
				r.broadcast(Event{Type: EventWarning, Warning: "score could not be saved: " + err.Error()})
			}
		}
		r.closeSubscribers()
	}()
}

func (r *Runner) stopTimers() {
	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}

// Subscribe returns a channel of updates starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (r *Runner) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	r.mu.Lock()
	snap := r.snapshot
	initial := Event{Type: EventState, Snapshot: &snap}
	if r.final != nil {
		tally := *r.final
		initial = Event{Type: EventEnded, Snapshot: &snap, Tally: &tally}
	}
	ch <- initial
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Runner) broadcast(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Snapshot != nil {
		r.snapshot = *ev.Snapshot
	}
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow reader: drop its oldest update rather than stall the loop.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
}
