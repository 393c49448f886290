package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-timer/internal/infrastructure/config"
	"github.com/nerrad567/gray-timer/internal/infrastructure/logging"
	"github.com/nerrad567/gray-timer/internal/timer"
)

// fakeClock is a manually advanced timer.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard)
}

func testDeps(store *timer.Store) Deps {
	return Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  testLogger(),
		Timer:   store,
		Version: "test",
	}
}

// testServer creates a Server around a store driven by a fake clock.
func testServer(t *testing.T) (*Server, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	srv, err := New(testDeps(timer.NewStore(clock)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, clock
}

// do sends a request through the full router and returns the recorder.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// ─── Constructor Tests ─────────────────────────────────────────────

func TestNew_RequiresDependencies(t *testing.T) {
	deps := testDeps(timer.NewStore(nil))
	deps.Logger = nil
	if _, err := New(deps); err == nil {
		t.Error("New() without logger should fail")
	}

	deps = testDeps(nil)
	if _, err := New(deps); err == nil {
		t.Error("New() without timer store should fail")
	}
}

// ─── Timer Endpoint Tests ──────────────────────────────────────────

func TestStartTimer_Duration(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"hours and minutes", `{"hours":1,"minutes":30,"seconds":0}`, 5400},
		{"seconds only", `{"seconds":5}`, 5},
		{"minutes beyond 59", `{"minutes":90}`, 5400},
		{"empty object", `{}`, 0},
		{"empty body", ``, 0},
		{"unknown fields ignored", `{"seconds":7,"label":"tea"}`, 7},
		{"negative accepted", `{"minutes":1,"seconds":-30}`, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			router := srv.buildRouter()

			w := do(t, router, http.MethodPost, "/start-timer", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}
			resp := decodeBody[StartResponse](t, w)
			if resp.Message != "Timer started" {
				t.Errorf("message = %q", resp.Message)
			}
			if resp.Duration != tt.want {
				t.Errorf("duration = %d, want %d", resp.Duration, tt.want)
			}
		})
	}
}

func TestStartTimer_ThenStatus(t *testing.T) {
	srv, clock := testServer(t)
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"hours":1,"minutes":30,"seconds":0}`)

	status := decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
	if !status.IsRunning || !approx(status.RemainingTime, 5400) {
		t.Errorf("status = %+v, want running with 5400", status)
	}

	clock.Advance(2500 * time.Millisecond)
	status = decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
	if !approx(status.RemainingTime, 5397.5) {
		t.Errorf("remaining after 2.5s = %v, want 5397.5", status.RemainingTime)
	}
}

func TestStartTimer_AlreadyRunning(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"seconds":60}`)
	w := do(t, router, http.MethodPost, "/start-timer", `{"seconds":10}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeBody[Error](t, w).Detail; got != "Timer is already running." {
		t.Errorf("detail = %q", got)
	}

	// Original countdown untouched.
	if got := srv.timer.Snapshot().DurationSeconds; got != 60 {
		t.Errorf("duration = %d, want 60", got)
	}
}

func TestStartTimer_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"fractional", `{"seconds":1.5}`},
		{"string", `{"hours":"1"}`},
		{"null", `{"minutes":null}`},
		{"bool", `{"seconds":true}`},
		{"array body", `[1,2,3]`},
		{"null body", `null`},
		{"malformed", `{"seconds":`},
		{"trailing data", `{"seconds":1} {"seconds":2}`},
		{"overflow", `{"seconds":99999999999999999999999}`},
		{"total overflow", `{"hours":3000000000000000}`},
		{"negative total overflow", `{"hours":-3000000000000000}`},
		{"sum overflow", `{"seconds":9223372036854775807,"minutes":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			router := srv.buildRouter()

			w := do(t, router, http.MethodPost, "/start-timer", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if decodeBody[Error](t, w).Detail == "" {
				t.Error("detail is empty")
			}
			if srv.timer.Status().IsRunning {
				t.Error("timer started despite invalid body")
			}
		})
	}
}

func TestStartTimer_DurationOutOfRange(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodPost, "/start-timer", `{"hours":3000000000000000}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeBody[Error](t, w).Detail; got != "Timer duration is out of range." {
		t.Errorf("detail = %q", got)
	}
	if snap := srv.timer.Snapshot(); snap.Phase != timer.PhaseIdle || snap.Seq != 0 {
		t.Errorf("snapshot = %+v, want untouched idle", snap)
	}
}

func TestPauseTimer_FreezesRemaining(t *testing.T) {
	srv, clock := testServer(t)
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"seconds":5}`)
	clock.Advance(1 * time.Second)

	w := do(t, router, http.MethodPost, "/pause-timer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeBody[PauseResponse](t, w)
	if resp.Message != "Timer paused" || !approx(resp.RemainingTime, 4) {
		t.Errorf("pause response = %+v, want remaining 4", resp)
	}

	clock.Advance(10 * time.Second)
	status := decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
	if status.IsRunning || !approx(status.RemainingTime, 4) {
		t.Errorf("status = %+v, want frozen at 4", status)
	}
}

func TestPauseTimer_NotRunning(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	for _, setup := range [][]string{
		nil,
		{"/start-timer", "/pause-timer"},
		{"/start-timer", "/reset-timer"},
	} {
		for _, p := range setup {
			do(t, router, http.MethodPost, p, "")
		}

		w := do(t, router, http.MethodPost, "/pause-timer", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("after %v: status = %d, want 400", setup, w.Code)
		}
		if got := decodeBody[Error](t, w).Detail; got != "Timer is not running." {
			t.Errorf("detail = %q", got)
		}
		do(t, router, http.MethodPost, "/reset-timer", "")
	}
}

func TestResetTimer_AlwaysSucceeds(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	for _, before := range []string{"", "/start-timer", "/pause-timer"} {
		if before != "" {
			do(t, router, http.MethodPost, before, "")
		}
		w := do(t, router, http.MethodPost, "/reset-timer", "")
		if w.Code != http.StatusOK {
			t.Fatalf("reset status = %d", w.Code)
		}
		if got := decodeBody[MessageResponse](t, w).Message; got != "Timer reset" {
			t.Errorf("message = %q", got)
		}

		status := decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
		if status.IsRunning || status.RemainingTime != 0 {
			t.Errorf("status after reset = %+v, want (0,false)", status)
		}
	}
}

func TestStatus_IdleAndOverdue(t *testing.T) {
	srv, clock := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/status", "")
	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["remaining_time"] != float64(0) || raw["is_running"] != false {
		t.Errorf("idle status = %v", raw)
	}

	do(t, router, http.MethodPost, "/start-timer", `{"seconds":2}`)
	clock.Advance(5 * time.Second)

	status := decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
	if !status.IsRunning || !approx(status.RemainingTime, -3) {
		t.Errorf("overdue status = %+v, want running with -3", status)
	}
}

func TestStartAfterPause_FreshCountdown(t *testing.T) {
	srv, clock := testServer(t)
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"seconds":100}`)
	clock.Advance(30 * time.Second)
	do(t, router, http.MethodPost, "/pause-timer", "")

	w := do(t, router, http.MethodPost, "/start-timer", `{"seconds":10}`)
	if got := decodeBody[StartResponse](t, w).Duration; got != 10 {
		t.Errorf("duration = %d, want 10", got)
	}
	status := decodeBody[timer.Status](t, do(t, router, http.MethodGet, "/status", ""))
	if !status.IsRunning || !approx(status.RemainingTime, 10) {
		t.Errorf("status = %+v, want running with 10", status)
	}
}

func TestTimerEndpoints_MethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/start-timer", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /start-timer status = %d, want 405", w.Code)
	}
	w = do(t, router, http.MethodPost, "/status", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /status status = %d, want 405", w.Code)
	}
}

// ─── Health and Middleware Tests ───────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decodeBody[map[string]any](t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/status", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/start-timer", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Custom")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Custom" {
		t.Errorf("Allow-Headers = %q, want echo of request headers", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want unset for any-origin CORS", got)
	}
	if srv.timer.Status().IsRunning {
		t.Error("preflight reached the handler")
	}
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	deps := testDeps(timer.NewStore(nil))
	deps.Config.CORS = config.CORSConfig{
		AllowedOrigins: []string{"https://panel.example"},
		AllowedHeaders: []string{"Content-Type"},
	}
	srv, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}
	router := srv.buildRouter()

	tests := []struct {
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"https://panel.example", "https://panel.example", "true"},
		{"https://evil.example", "", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.wantOrigin)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
			t.Errorf("origin %s: Allow-Credentials = %q, want %q", tt.origin, got, tt.wantCredentials)
		}
		if w.Code != http.StatusOK {
			t.Errorf("origin %s: status = %d", tt.origin, w.Code)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if decodeBody[Error](t, w).Detail != "Not Found" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestPanel(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/panel", "")
	if w.Code != http.StatusMovedPermanently {
		t.Errorf("GET /panel status = %d, want 301", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/panel/" {
		t.Errorf("Location = %q, want /panel/", loc)
	}

	w = do(t, router, http.MethodGet, "/panel/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /panel/ status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Gray Timer") {
		t.Error("GET /panel/ did not serve the panel page")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := decodeBody[Error](t, w).Detail; got != "internal server error" {
		t.Errorf("detail = %q", got)
	}
}

func TestBodySizeLimit(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"seconds":1,"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	w := do(t, router, http.MethodPost, "/start-timer", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ─── Metrics Tests ─────────────────────────────────────────────────

type stubConn bool

func (c stubConn) IsConnected() bool { return bool(c) }

func TestMetrics_JSON(t *testing.T) {
	deps := testDeps(timer.NewStore(newFakeClock()))
	deps.MQTT = stubConn(true)
	srv, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"minutes":2}`)

	w := do(t, router, http.MethodGet, "/api/v1/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	m := decodeBody[SystemMetrics](t, w)
	if m.Version != "test" {
		t.Errorf("version = %q", m.Version)
	}
	if m.Runtime.Goroutines == 0 {
		t.Error("goroutines = 0")
	}
	if !m.MQTT.Enabled || !m.MQTT.Connected {
		t.Errorf("mqtt = %+v", m.MQTT)
	}
	if m.Timer.Phase != timer.PhaseRunning || m.Timer.DurationSeconds != 120 || m.Timer.Seq != 1 {
		t.Errorf("timer snapshot = %+v", m.Timer)
	}
}

func TestMetrics_Prometheus(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	do(t, router, http.MethodPost, "/start-timer", `{"seconds":30}`)
	do(t, router, http.MethodPost, "/start-timer", `{"seconds":30}`)
	do(t, router, http.MethodPost, "/pause-timer", "")

	w := do(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{
		`graytimer_timer_operations_total{event="started",source="api"} 1`,
		`graytimer_timer_operations_total{event="paused",source="api"} 1`,
		`graytimer_timer_operations_rejected_total{operation="start"} 1`,
		`graytimer_timer_running 0`,
		`graytimer_timer_remaining_seconds 30`,
		`graytimer_websocket_clients 0`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("prometheus output missing %q", want)
		}
	}
}

// ─── Lifecycle Tests ───────────────────────────────────────────────

func TestServer_StartAndClose(t *testing.T) {
	srv, _ := testServer(t)

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	addr := srv.Addr()

	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}

	resp, err := http.Post("http://"+addr+"/start-timer", "application/json", strings.NewReader(`{"seconds":3}`))
	if err != nil {
		t.Fatalf("start-timer failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("start-timer status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	if _, err := http.Get("http://" + addr + "/status"); err == nil {
		t.Error("server still responding after Close()")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first, _ := testServer(t)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { first.Close() })

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}

	deps := testDeps(timer.NewStore(nil))
	deps.Config.Port = port
	second, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Close()
		t.Error("Start() on a busy port should fail")
	}
}

func TestCloseBeforeStart(t *testing.T) {
	srv, _ := testServer(t)
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
}
