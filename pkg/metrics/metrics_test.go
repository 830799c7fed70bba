package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLatencyHandlerRecordsStatus(t *testing.T) {
	h := LatencyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.CollectAndCount(requestLatency)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot-test", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status %d was not passed through", rec.Code)
	}
	if after := testutil.CollectAndCount(requestLatency); after != before+1 {
		t.Errorf("got %d latency series, want %d", after, before+1)
	}
}

func TestObserveUpstream(t *testing.T) {
	ObserveUpstream("tides", OutcomeError)
	ObserveUpstream("tides", OutcomeError)
	got := testutil.ToFloat64(upstreamFetches.WithLabelValues("tides", OutcomeError))
	if got != 2 {
		t.Errorf("counter = %f, want 2", got)
	}
}
