package audit

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-timer/internal/timer"
)

// recorderChanSize is the buffer size for pending audit entries.
// Entries beyond this are dropped to avoid back-pressure on timer operations.
const recorderChanSize = 256

// Logger is the logging interface used by the recorder.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder turns timer events into audit log entries.
//
// ObserveTimerEvent only enqueues; a single goroutine started by Run writes
// entries serially, which suits SQLite's single-writer model.
type Recorder struct {
	repo   Repository
	logger Logger
	ch     chan *AuditLog
	done   chan struct{}
	once   sync.Once
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
		ch:     make(chan *AuditLog, recorderChanSize),
		done:   make(chan struct{}),
	}
}

// ObserveTimerEvent implements timer.Observer.
func (r *Recorder) ObserveTimerEvent(ev timer.Event) {
	entry := &AuditLog{
		Action:     string(ev.Type),
		EntityType: EntityTimer,
		Source:     string(ev.Source),
		Details: map[string]any{
			"seq":              ev.Seq,
			"duration_seconds": ev.DurationSeconds,
			"remaining_time":   ev.RemainingTime,
			"is_running":       ev.IsRunning,
		},
		CreatedAt: ev.At.UTC(),
	}

	select {
	case r.ch <- entry:
	default:
		r.logger.Warn("audit channel full, dropping entry", "action", entry.Action, "seq", ev.Seq)
	}
}

// Run writes queued entries until ctx is cancelled, then drains what is
// left and returns. Done is closed on return.
func (r *Recorder) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.done) })

	for {
		select {
		case entry := <-r.ch:
			r.write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-r.ch:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has drained and returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) write(entry *AuditLog) {
	if err := r.repo.Create(context.Background(), entry); err != nil {
		r.logger.Error("audit log write failed",
			"action", entry.Action,
			"error", err,
		)
	}
}
