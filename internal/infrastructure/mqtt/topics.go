package mqtt

import "fmt"

// Topic prefixes for Gray Timer.
const (
	// TopicPrefix is the root of every topic this service uses.
	TopicPrefix = "graytimer"

	// TopicPrefixTimer is the base for timer topics.
	TopicPrefixTimer = TopicPrefix + "/timer"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Gray Timer MQTT topics.
//
//	topic := mqtt.Topics{}.TimerEvent("started")
//	// Returns: "graytimer/timer/event/started"
type Topics struct{}

// TimerEvent returns the topic for a single timer event type.
//
// Example: graytimer/timer/event/paused
func (Topics) TimerEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixTimer, eventType)
}

// AllTimerEvents returns a wildcard matching every timer event.
func (Topics) AllTimerEvents() string {
	return TopicPrefixTimer + "/event/+"
}

// TimerState returns the retained timer status topic.
func (Topics) TimerState() string {
	return TopicPrefixTimer + "/state"
}

// TimerCommand returns the topic remote clients publish commands to.
func (Topics) TimerCommand() string {
	return TopicPrefixTimer + "/command"
}

// SystemStatus returns the service online/offline topic. Used for LWT.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
