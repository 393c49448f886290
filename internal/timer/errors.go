package timer

import "errors"

// Domain errors for the timer package.
//
// The messages are returned verbatim to HTTP clients, so they read as
// sentences rather than the usual "package: reason" form.
var (
	// ErrAlreadyRunning is returned by Start while the timer is running.
	ErrAlreadyRunning = errors.New("Timer is already running.") //nolint:stylecheck,revive // user-facing message

	// ErrNotRunning is returned by Pause while the timer is not running.
	ErrNotRunning = errors.New("Timer is not running.") //nolint:stylecheck,revive // user-facing message

	// ErrDurationOutOfRange is returned by Start when the total does not fit
	// in int64 seconds.
	ErrDurationOutOfRange = errors.New("Timer duration is out of range.") //nolint:stylecheck,revive // user-facing message

	// ErrUnknownAction is returned when a remote command names no known operation.
	ErrUnknownAction = errors.New("timer: unknown action")
)
