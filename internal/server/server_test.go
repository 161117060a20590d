package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"npsbridge/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		HttpLogging:    true,
		MaxBodyBytes:   config.DefaultMaxBodyBytes,
		AllowedOrigins: []string{"https://example.com"},
	}
}

func TestSurveyRouteAcceptsAllMethods(t *testing.T) {
	var methods []string
	survey := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewWithSurvey(testConfig(), survey).Handler()

	for _, method := range []string{http.MethodOptions, http.MethodPost, http.MethodGet} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, SurveyPath, nil))
		if w.Code != http.StatusTeapot {
			t.Errorf("%s %s: status = %d", method, SurveyPath, w.Code)
		}
	}
	if len(methods) != 3 {
		t.Errorf("survey handler saw %v", methods)
	}
}

func TestSurveyRouteWithoutCredentials(t *testing.T) {
	h := New(testConfig()).Handler()

	r := httptest.NewRequest(http.MethodPost, SurveyPath, strings.NewReader(`{"ticketId":"1","score":1}`))
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"server_misconfigured"}` {
		t.Errorf("body = %s", got)
	}
}

func TestHealth(t *testing.T) {
	h := New(testConfig()).Handler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}
}

func TestPprofToggle(t *testing.T) {
	cfg := testConfig()
	w := httptest.NewRecorder()
	New(cfg).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("pprof disabled: status = %d, want 404", w.Code)
	}

	cfg.EnablePprof = true
	w = httptest.NewRecorder()
	New(cfg).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("pprof enabled: status = %d, want 200", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var sawLogger bool
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = zerolog.Ctx(r.Context()).GetLevel() != zerolog.Disabled
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
	if !sawLogger {
		t.Error("expected a request-scoped logger in the context")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("minted request id = %q, want a UUID", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, SurveyPath, nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"internal_error"}` {
		t.Errorf("body = %s", got)
	}
}
