package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lindqvist/warmsched/internal/backend"
	"github.com/lindqvist/warmsched/internal/clock"
	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/logsink"
	"github.com/lindqvist/warmsched/internal/scheduler"
)

func newTestServer(t *testing.T, limit int) *Server {
	t.Helper()
	rt := backend.NewStub()
	clk := clock.NewStepped(0)
	logger := slog.New(slog.DiscardHandler)
	cfg := scheduler.Config{WarmTime: 10, DefaultLimit: limit}
	sched := scheduler.New(rt, clk, cfg, domain.StrategyLCS, logsink.Noop{}, logger)
	return New(sched, logger)
}

func TestHandleInvokeExecuted(t *testing.T) {
	s := newTestServer(t, 5)
	req := httptest.NewRequest(http.MethodPost, "/invoke/fn", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["function"] != "fn" {
		t.Errorf("function = %v, want fn", body["function"])
	}
	if body["cold_start"] != true {
		t.Errorf("cold_start = %v, want true for the first invocation", body["cold_start"])
	}
}

func TestHandleInvokeQueued(t *testing.T) {
	s := newTestServer(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/invoke/fn", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t, 5)
	invokeReq := httptest.NewRequest(http.MethodPost, "/invoke/fn", bytes.NewReader(nil))
	s.ServeHTTP(httptest.NewRecorder(), invokeReq)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("requests_received")) && !bytes.Contains(rec.Body.Bytes(), []byte("RequestsReceived")) {
		t.Errorf("stats body missing request counters: %s", rec.Body.String())
	}
}

func TestHandleStatsReset(t *testing.T) {
	s := newTestServer(t, 5)
	req := httptest.NewRequest(http.MethodPost, "/stats/reset", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleSetStrategy(t *testing.T) {
	s := newTestServer(t, 5)
	body, _ := json.Marshal(map[string]string{"strategy": "MRU"})
	req := httptest.NewRequest(http.MethodPost, "/set_strategy", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSetStrategyUnknown(t *testing.T) {
	s := newTestServer(t, 5)
	body, _ := json.Marshal(map[string]string{"strategy": "bogus"})
	req := httptest.NewRequest(http.MethodPost, "/set_strategy", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
