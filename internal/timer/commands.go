package timer

import (
	"encoding/json"
	"fmt"
)

// Command actions accepted on the remote command topic.
const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionReset = "reset"
)

// Command is a remote timer command received over MQTT.
//
// Example payload:
//
//	{"action":"start","hours":0,"minutes":25,"seconds":0}
type Command struct {
	Action  string `json:"action"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
}

// CommandHandler returns an MQTT message handler that applies remote
// commands to the store.
//
// The returned function matches mqtt.MessageHandler. Errors are returned to
// the MQTT client, which logs them; they never tear down the subscription.
func CommandHandler(store *Store, logger Logger) func(topic string, payload []byte) error {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(topic string, payload []byte) error {
		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("decoding timer command on %s: %w", topic, err)
		}

		switch cmd.Action {
		case ActionStart:
			duration, err := store.Start(SourceMQTT, cmd.Hours, cmd.Minutes, cmd.Seconds)
			if err != nil {
				return fmt.Errorf("remote start: %w", err)
			}
			logger.Info("timer started via MQTT", "duration_seconds", duration)
		case ActionPause:
			remaining, err := store.Pause(SourceMQTT)
			if err != nil {
				return fmt.Errorf("remote pause: %w", err)
			}
			logger.Info("timer paused via MQTT", "remaining_time", remaining)
		case ActionReset:
			store.Reset(SourceMQTT)
			logger.Info("timer reset via MQTT")
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
		}
		return nil
	}
}
