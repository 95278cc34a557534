package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/config"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/eventlog"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/snapshots"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/timestats"
)

func newTestServer(t *testing.T) (*Server, *eventlog.Store) {
	t.Helper()
	dir := t.TempDir()
	store := eventlog.NewStore(filepath.Join(dir, "eventlog"), 30, time.UTC)
	snaps := snapshots.NewStore(filepath.Join(dir, "snapshots.json"))
	tracker, err := presence.NewTracker(store, filepath.Join(dir, "status.json"), time.UTC)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	calc := timestats.NewCalculator(store, snaps, time.UTC)

	cfg := config.NewDefaultServerConfig()
	cfg.DataDir = dir
	return New(cfg, tracker, calc), store
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatusAcceptsTransition(t *testing.T) {
	s, store := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/updateStatus", `{"status":"online"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	last, ok, err := store.Latest()
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if last.Status != presence.StatusOnline {
		t.Fatalf("logged status = %q", last.Status)
	}
}

func TestUpdateStatusRejectsBadPayload(t *testing.T) {
	s, store := newTestServer(t)

	for _, body := range []string{`{"status":"away"}`, `{"status":""}`, `not json`} {
		rec := doRequest(t, s, http.MethodPost, "/updateStatus", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body %q: decode: %v", body, err)
		}
		if resp["error"] != "Invalid status" {
			t.Fatalf("body %q: error = %q", body, resp["error"])
		}
	}

	if _, ok, _ := store.Latest(); ok {
		t.Fatal("rejected report reached the event log")
	}
}

func TestStatusEndpointReflectsReports(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st presence.State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != presence.StatusOffline {
		t.Fatalf("initial status = %q", st.Status)
	}

	doRequest(t, s, http.MethodPost, "/updateStatus", `{"status":"online"}`)
	mark := int64(1700000000000)
	doRequest(t, s, http.MethodPost, "/updateStatus", `{"status":"offline","last_online":1700000000000}`)

	rec = doRequest(t, s, http.MethodGet, "/status", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != presence.StatusOffline {
		t.Fatalf("status = %q", st.Status)
	}
	if st.LastOnline == nil || *st.LastOnline != mark {
		t.Fatalf("last_online = %v, want %d", st.LastOnline, mark)
	}
}

func TestTimeStatsEndpointShape(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/updateStatus", `{"status":"online"}`)

	rec := doRequest(t, s, http.MethodGet, "/time-stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report struct {
		Today       json.RawMessage            `json:"today"`
		PreviousDay int64                      `json:"previousDay"`
		WeekAverage float64                    `json:"weekAverage"`
		WeekBest    int64                      `json:"weekBest"`
		DailyStats  map[string]json.RawMessage `json:"dailyStats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.DailyStats) == 0 {
		t.Fatal("dailyStats is empty after an online report")
	}
}

func TestHistoryEndpointEmptyIsArray(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/get-my-online-stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var hist []snapshots.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("history = %v, want empty", hist)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
