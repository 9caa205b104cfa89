package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"docassist/internal/metrics"
)

func TestWrap_RecordsHandlerStatus(t *testing.T) {
	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/wrap-status", nil)
	rec := httptest.NewRecorder()
	wrapped(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	counter := metrics.HttpRequestsTotal.WithLabelValues("/wrap-status", strconv.Itoa(http.StatusNotFound))
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected 1 request counted with status 404, got %v", got)
	}
}

func TestWrap_DefaultsToOKWhenHandlerNeverWritesHeader(t *testing.T) {
	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/wrap-ok", nil)
	wrapped(httptest.NewRecorder(), req)

	counter := metrics.HttpRequestsTotal.WithLabelValues("/wrap-ok", "200")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected 1 request counted with status 200, got %v", got)
	}
}
