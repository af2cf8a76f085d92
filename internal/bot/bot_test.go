package bot

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{34, "34"},
		{999, "999"},
		{1000, "1 000"},
		{12345, "12 345"},
		{1234567, "1 234 567"},
	}
	for _, tc := range cases {
		if got := formatNumber(tc.in); got != tc.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := ratio(5, 0); got != 0 {
		t.Errorf("ratio with zero denominator = %v, want 0", got)
	}
	if got := ratio(1, 4); got != 0.25 {
		t.Errorf("ratio(1, 4) = %v, want 0.25", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(0.256); got != "25.6%" {
		t.Errorf("formatPercent(0.256) = %q", got)
	}
	if got := formatPercent(0); got != "0.0%" {
		t.Errorf("formatPercent(0) = %q", got)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"aggregated":{"totalSessions":3,"uniqueVisitors":3},"sessions":[],"lastUpdated":1700000000000}`))
	}))
	defer srv.Close()

	b := &Bot{
		client:       &http.Client{Timeout: time.Second},
		analyticsURL: srv.URL,
		analyticsKey: "s3cret",
		logger:       discardLogger(),
	}

	payload, err := b.fetch()
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if payload.Aggregated.TotalSessions != 3 {
		t.Errorf("expected 3 sessions, got %d", payload.Aggregated.TotalSessions)
	}
	if payload.LastUpdated != 1700000000000 {
		t.Errorf("unexpected lastUpdated: %d", payload.LastUpdated)
	}
}

func TestFetch_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	b := &Bot{
		client:       &http.Client{Timeout: time.Second},
		analyticsURL: srv.URL,
		analyticsKey: "wrong",
		logger:       discardLogger(),
	}

	if _, err := b.fetch(); err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}
