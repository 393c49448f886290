// Package timer holds the countdown timer that Gray Timer serves.
//
// There is exactly one timer per process. It is owned by a Store, which
// guards the record with a mutex so that Start, Pause, Reset and Status are
// each atomic with respect to concurrent HTTP or MQTT callers.
//
// Remaining time is never counted down in the background. It is computed
// from the wall clock whenever it is read:
//
//	running: remaining = duration - (now - startTime)
//	paused:  remaining = value frozen at Pause
//	idle:    remaining = duration (0 after Reset)
//
// Remaining time is not clamped. Once a running timer passes its deadline
// Status reports a negative value and the timer stays running; callers
// interpret negative values as overdue.
//
// # Events
//
// Every successful state change produces an Event that is handed to the
// registered Observers after the store lock is released. Deliveries never
// interleave: each mutation finishes notifying before the next one starts,
// so observers see events in Event.Seq order and the last event always
// matches the current state. Notifier is the production observer and fans
// events out to MQTT, WebSocket clients and InfluxDB.
//
// # Usage
//
//	store := timer.NewStore(timer.SystemClock)
//	store.AddObserver(timer.NewNotifier(timer.NotifierOptions{MQTT: mqttClient, Logger: log}))
//
//	duration, err := store.Start(timer.SourceAPI, 1, 30, 0)
//	status := store.Status()
package timer
