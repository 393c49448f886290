package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nerrad567/gray-timer/internal/timer"
)

// StartRequest is the body of POST /start-timer. Missing fields are zero.
type StartRequest struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// StartResponse is returned by POST /start-timer.
type StartResponse struct {
	Message  string `json:"message"`
	Duration int64  `json:"duration"`
}

// PauseResponse is returned by POST /pause-timer.
type PauseResponse struct {
	Message       string  `json:"message"`
	RemainingTime float64 `json:"remaining_time"`
}

// MessageResponse is returned by POST /reset-timer.
type MessageResponse struct {
	Message string `json:"message"`
}

// handleStartTimer starts a fresh countdown.
func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStartRequest(r.Body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	duration, err := s.timer.Start(timer.SourceAPI, req.Hours, req.Minutes, req.Seconds)
	if err != nil {
		s.writeTimerError(w, "start", err)
		return
	}

	writeJSON(w, http.StatusOK, StartResponse{Message: "Timer started", Duration: duration})
}

// handlePauseTimer freezes the countdown.
func (s *Server) handlePauseTimer(w http.ResponseWriter, _ *http.Request) {
	remaining, err := s.timer.Pause(timer.SourceAPI)
	if err != nil {
		s.writeTimerError(w, "pause", err)
		return
	}

	writeJSON(w, http.StatusOK, PauseResponse{Message: "Timer paused", RemainingTime: remaining})
}

// handleResetTimer returns the timer to idle. It never fails.
func (s *Server) handleResetTimer(w http.ResponseWriter, _ *http.Request) {
	s.timer.Reset(timer.SourceAPI)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Timer reset"})
}

// handleStatus reports the remaining time and running flag.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.timer.Status())
}

// writeTimerError maps store errors onto HTTP responses.
func (s *Server) writeTimerError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, timer.ErrAlreadyRunning),
		errors.Is(err, timer.ErrNotRunning),
		errors.Is(err, timer.ErrDurationOutOfRange):
		s.prom.rejected.WithLabelValues(op).Inc()
		writeBadRequest(w, err.Error())
	default:
		s.logger.Error("timer operation failed", "op", op, "error", err)
		writeInternalError(w, "internal server error")
	}
}

// decodeStartRequest parses a start body.
//
// An empty body means all zero. Each present field must be a JSON integer;
// null, strings, fractional numbers and out-of-range numbers are rejected.
// Unknown fields are ignored.
func decodeStartRequest(body io.Reader) (StartRequest, error) {
	var req StartRequest
	if body == nil {
		return req, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return req, fmt.Errorf("reading request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	if fields == nil {
		return req, errors.New("request body must be a JSON object")
	}
	if dec.More() {
		return req, errors.New("invalid JSON body: unexpected data after object")
	}

	targets := []struct {
		name string
		dst  *int
	}{
		{"hours", &req.Hours},
		{"minutes", &req.Minutes},
		{"seconds", &req.Seconds},
	}
	for _, t := range targets {
		raw, ok := fields[t.name]
		if !ok {
			continue
		}
		if err := decodeInt(raw, t.dst); err != nil {
			return req, fmt.Errorf("%s: %w", t.name, err)
		}
	}

	return req, nil
}

var errNotInteger = errors.New("value is not a valid integer")

func decodeInt(raw json.RawMessage, dst *int) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errNotInteger
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errNotInteger
	}
	return nil
}
