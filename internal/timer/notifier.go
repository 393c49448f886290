package timer

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/gray-timer/internal/infrastructure/mqtt"
)

// WSChannelStateChanged is the WebSocket channel that carries timer events.
const WSChannelStateChanged = "timer.state_changed"

// measurementTimerEvents is the InfluxDB measurement for timer events.
const measurementTimerEvents = "timer_events"

// MQTTClient is the interface for publishing timer events to the broker.
type MQTTClient interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// WSHub is the interface for broadcasting WebSocket events.
type WSHub interface {
	// Broadcast sends an event to all clients subscribed to the given channel.
	Broadcast(channel string, payload any)
}

// MetricsWriter is the interface for recording events as time-series points.
type MetricsWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
}

// Logger is the logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NotifierOptions configures a Notifier. Every sink is optional.
type NotifierOptions struct {
	MQTT    MQTTClient
	QoS     byte
	Hub     WSHub
	Metrics MetricsWriter
	Logger  Logger
}

// Notifier forwards timer events to MQTT, WebSocket clients and InfluxDB.
//
// Sink failures are logged and otherwise ignored: a broker outage must never
// turn a successful timer operation into an HTTP error.
type Notifier struct {
	mqtt    MQTTClient
	qos     byte
	hub     WSHub
	metrics MetricsWriter
	logger  Logger
}

// NewNotifier creates a Notifier from the given options.
func NewNotifier(opts NotifierOptions) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Notifier{
		mqtt:    opts.MQTT,
		qos:     opts.QoS,
		hub:     opts.Hub,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// ObserveTimerEvent implements Observer.
func (n *Notifier) ObserveTimerEvent(ev Event) {
	n.logger.Debug("timer event",
		"seq", ev.Seq,
		"type", ev.Type,
		"source", ev.Source,
		"duration_seconds", ev.DurationSeconds,
		"remaining_time", ev.RemainingTime,
	)

	if n.hub != nil {
		n.hub.Broadcast(WSChannelStateChanged, ev)
	}
	if n.mqtt != nil {
		n.publishMQTT(ev)
	}
	if n.metrics != nil {
		n.writeMetrics(ev)
	}
}

// publishMQTT publishes the event and the retained status.
func (n *Notifier) publishMQTT(ev Event) {
	topics := mqtt.Topics{}

	payload, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to marshal timer event", "error", err)
		return
	}
	if err := n.mqtt.Publish(topics.TimerEvent(string(ev.Type)), payload, n.qos, false); err != nil {
		n.logger.Warn("failed to publish timer event", "type", ev.Type, "error", err)
	}

	state, err := json.Marshal(ev.Status())
	if err != nil {
		n.logger.Error("failed to marshal timer status", "error", err)
		return
	}
	if err := n.mqtt.Publish(topics.TimerState(), state, n.qos, true); err != nil {
		n.logger.Warn("failed to publish timer state", "error", err)
	}
}

// writeMetrics records the event as an InfluxDB point.
func (n *Notifier) writeMetrics(ev Event) {
	n.metrics.WritePointWithTime(measurementTimerEvents,
		map[string]string{
			"event":  string(ev.Type),
			"source": string(ev.Source),
		},
		map[string]interface{}{
			"duration_seconds":  ev.DurationSeconds,
			"remaining_seconds": ev.RemainingTime,
			"running":           ev.IsRunning,
			"seq":               int64(ev.Seq), //nolint:gosec // sequence never approaches MaxInt64
		},
		ev.At,
	)
}
