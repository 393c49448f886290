// Package api implements the HTTP API and WebSocket server for Gray Timer.
//
// This package provides:
//   - The timer endpoints: POST /start-timer, /pause-timer, /reset-timer and GET /status
//   - Operational endpoints under /api/v1 (health, JSON metrics, audit log, WebSocket)
//   - Prometheus exposition on /metrics
//   - Middleware stack (request ID, logging, recovery, CORS, body size limit)
//
// # Errors
//
// Every error response is a JSON object with a single "detail" field, for
// example {"detail":"Timer is already running."}.
//
// # Graceful Degradation
//
// The server runs without MQTT, InfluxDB or the audit database. The timer
// endpoints never depend on them.
package api
