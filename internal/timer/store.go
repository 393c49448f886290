package timer

import (
	"math"
	"sync"
	"time"
)

// Seconds per unit used to fold hours/minutes/seconds into a duration.
const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// state is the single timer record. It is only read or written with
// Store.mu held.
type state struct {
	duration        int64
	startTime       time.Time // zero unless running
	pausedRemaining *float64  // nil unless paused
	running         bool
}

// Store owns the process-wide timer record.
//
// Thread Safety: all methods are safe for concurrent use. Each operation
// performs its whole read-modify-write under one lock acquisition.
// Mutations hold notifyMu until their observers return, so observers see
// events in Seq order. Observers may read the store but must not mutate it.
type Store struct {
	clock Clock

	notifyMu sync.Mutex

	mu    sync.Mutex
	state state
	seq   uint64

	observers   []Observer
	observersMu sync.RWMutex
}

// NewStore creates a Store in the idle state.
// A nil clock falls back to SystemClock.
func NewStore(clock Clock) *Store {
	if clock == nil {
		clock = SystemClock
	}
	return &Store{clock: clock}
}

// AddObserver registers an observer for subsequent events.
func (s *Store) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.observersMu.Lock()
	s.observers = append(s.observers, o)
	s.observersMu.Unlock()
}

// Start begins a fresh countdown of hours*3600 + minutes*60 + seconds.
//
// No range validation is applied: minutes=90 is simply 5400 seconds.
// Starting from the paused state discards the paused remainder.
//
// Returns:
//   - int64: the configured duration in seconds
//   - error: ErrAlreadyRunning if the timer is running (state unchanged),
//     ErrDurationOutOfRange if the total overflows int64
func (s *Store) Start(source Source, hours, minutes, seconds int) (int64, error) {
	total, ok := totalSeconds(int64(hours), int64(minutes), int64(seconds))
	if !ok {
		return 0, ErrDurationOutOfRange
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.state.running {
		s.mu.Unlock()
		return 0, ErrAlreadyRunning
	}
	now := s.clock.Now()
	s.state = state{
		duration:  total,
		startTime: now,
		running:   true,
	}
	ev := s.eventLocked(EventStarted, source, now, float64(total))
	s.mu.Unlock()

	s.notify(ev)
	return total, nil
}

// Pause freezes the countdown and returns the remaining seconds.
//
// The remaining value is not clamped; pausing an overdue timer yields a
// negative number.
//
// Returns:
//   - float64: remaining seconds at the moment of the pause
//   - error: ErrNotRunning if the timer is not running
func (s *Store) Pause(source Source) (float64, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.state.running {
		s.mu.Unlock()
		return 0, ErrNotRunning
	}
	now := s.clock.Now()
	remaining := s.remainingLocked(now)
	s.state.pausedRemaining = &remaining
	s.state.running = false
	s.state.startTime = time.Time{}
	ev := s.eventLocked(EventPaused, source, now, remaining)
	s.mu.Unlock()

	s.notify(ev)
	return remaining, nil
}

// Reset returns the timer to the idle zero state. It always succeeds.
func (s *Store) Reset(source Source) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	now := s.clock.Now()
	s.state = state{}
	ev := s.eventLocked(EventReset, source, now, 0)
	s.mu.Unlock()

	s.notify(ev)
}

// Status reports the remaining time and running flag without mutating state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	switch {
	case st.running:
		return Status{RemainingTime: s.remainingLocked(s.clock.Now()), IsRunning: true}
	case st.pausedRemaining != nil:
		return Status{RemainingTime: *st.pausedRemaining, IsRunning: false}
	default:
		return Status{RemainingTime: float64(st.duration), IsRunning: false}
	}
}

// Snapshot returns a consistent copy of the whole record.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	snap := Snapshot{
		DurationSeconds: st.duration,
		Seq:             s.seq,
	}
	switch {
	case st.running:
		started := st.startTime
		snap.Phase = PhaseRunning
		snap.StartedAt = &started
		snap.RemainingTime = s.remainingLocked(s.clock.Now())
		snap.IsRunning = true
	case st.pausedRemaining != nil:
		paused := *st.pausedRemaining
		snap.Phase = PhasePaused
		snap.PausedRemaining = &paused
		snap.RemainingTime = paused
	default:
		snap.Phase = PhaseIdle
		snap.RemainingTime = float64(st.duration)
	}
	return snap
}

// totalSeconds folds hours, minutes and seconds into seconds, reporting
// false if any step overflows int64.
func totalSeconds(hours, minutes, seconds int64) (int64, bool) {
	h, ok := mulInt64(hours, secondsPerHour)
	if !ok {
		return 0, false
	}
	m, ok := mulInt64(minutes, secondsPerMinute)
	if !ok {
		return 0, false
	}
	total, ok := addInt64(h, m)
	if !ok {
		return 0, false
	}
	return addInt64(total, seconds)
}

func mulInt64(a, b int64) (int64, bool) {
	if a > math.MaxInt64/b || a < math.MinInt64/b {
		return 0, false
	}
	return a * b, true
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// remainingLocked computes duration minus elapsed wall-clock time.
// Caller must hold s.mu and the timer must be running.
func (s *Store) remainingLocked(now time.Time) float64 {
	elapsed := now.Sub(s.state.startTime).Seconds()
	return float64(s.state.duration) - elapsed
}

// eventLocked builds the event for the state just written. Caller must hold s.mu.
func (s *Store) eventLocked(typ EventType, source Source, at time.Time, remaining float64) Event {
	s.seq++
	return Event{
		Seq:             s.seq,
		Type:            typ,
		Source:          source,
		DurationSeconds: s.state.duration,
		RemainingTime:   remaining,
		IsRunning:       s.state.running,
		At:              at,
	}
}

// notify delivers ev to every observer. Caller must hold s.notifyMu and
// must not hold s.mu.
func (s *Store) notify(ev Event) {
	s.observersMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.observersMu.RUnlock()

	for _, o := range observers {
		o.ObserveTimerEvent(ev)
	}
}
