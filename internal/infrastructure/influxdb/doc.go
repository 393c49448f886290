// Package influxdb records timer events as InfluxDB v2 time series.
//
// Every start, pause and reset becomes one point in the timer_events
// measurement, tagged by event type and source. Writes are non-blocking
// and batched according to batch_size and flush_interval; asynchronous
// write failures are delivered to the SetOnError callback.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("timer_events", tags, fields)
package influxdb
