package timer

import "time"

// Clock provides wall-clock time to the store.
// Tests substitute a controllable implementation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by time.Now.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
