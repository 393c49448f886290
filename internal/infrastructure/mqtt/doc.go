// Package mqtt provides MQTT client connectivity for Gray Timer.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing timer events and the retained timer state
//   - Subscribing to remote timer commands
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	graytimer/timer/event/{type}   started, paused, reset (not retained)
//	graytimer/timer/state          current status (retained)
//	graytimer/timer/command        remote start/pause/reset
//	graytimer/system/status        online/offline (retained, LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.TimerCommand(), 1, handler)
package mqtt
