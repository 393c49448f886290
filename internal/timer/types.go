package timer

import "time"

// Phase is the derived lifecycle phase of the timer.
type Phase string

// Timer phases. Exactly one holds at any time.
const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// EventType identifies the operation that produced an Event.
type EventType string

// Event types.
const (
	EventStarted EventType = "started"
	EventPaused  EventType = "paused"
	EventReset   EventType = "reset"
)

// Source identifies where an operation was requested from.
type Source string

// Operation sources.
const (
	SourceAPI  Source = "api"
	SourceMQTT Source = "mqtt"
)

// Status is the externally visible state of the timer.
type Status struct {
	RemainingTime float64 `json:"remaining_time"`
	IsRunning     bool    `json:"is_running"`
}

// Snapshot is a consistent copy of the full timer record taken under the
// store lock, plus the values derived from it at the moment of the read.
type Snapshot struct {
	Phase           Phase      `json:"phase"`
	DurationSeconds int64      `json:"duration_seconds"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	PausedRemaining *float64   `json:"paused_remaining,omitempty"`
	RemainingTime   float64    `json:"remaining_time"`
	IsRunning       bool       `json:"is_running"`
	Seq             uint64     `json:"seq"`
}

// Event describes a completed state change.
type Event struct {
	Seq             uint64    `json:"seq"`
	Type            EventType `json:"type"`
	Source          Source    `json:"source"`
	DurationSeconds int64     `json:"duration_seconds"`
	RemainingTime   float64   `json:"remaining_time"`
	IsRunning       bool      `json:"is_running"`
	At              time.Time `json:"at"`
}

// Status returns the timer status as it was immediately after the event.
func (e Event) Status() Status {
	return Status{RemainingTime: e.RemainingTime, IsRunning: e.IsRunning}
}

// Observer receives events after each successful state change.
//
// Observers are called on the goroutine that performed the operation, after
// the store lock has been released, one event at a time in Seq order. The
// next mutation waits until every observer has returned, so observers must
// not block for long and must not call Start, Pause or Reset.
type Observer interface {
	ObserveTimerEvent(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// ObserveTimerEvent calls f(ev).
func (f ObserverFunc) ObserveTimerEvent(ev Event) {
	f(ev)
}
