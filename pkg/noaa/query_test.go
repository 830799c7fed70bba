package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/sunset"
)

func TestQueryURL(t *testing.T) {
	in := Query{
		Product:  "predictions",
		Interval: "hilo",
		Start:    time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC),
		Station:  SantaCruz,
	}
	want := fmt.Sprintf("https://api.tidesandcurrents.noaa.gov/api/prod/datagetter?application=winddash&begin_date=20200105&datum=MSL&end_date=20200106&format=json&interval=hilo&product=predictions&station=%d&time_zone=gmt&units=metric", SantaCruz)
	got, err := in.url(NOAA_URL)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if want != got.String() {
		t.Errorf("got  %q", got)
		t.Errorf("want %q", want)
	}
}

func fakeNOAA(t *testing.T, bodies map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("product")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	place := sunset.Place{Lat: 36.6, Long: -121.9, Location: time.UTC}
	c := NewClient(Monterey, place, srv.Client(), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.BaseURL = srv.URL
	return c
}

func TestTidesSpline(t *testing.T) {
	c := fakeNOAA(t, map[string]string{
		"predictions": `{"predictions":[
			{"t":"2024-05-31 18:00","v":"1.000","type":"H"},
			{"t":"2024-06-01 00:00","v":"-1.000","type":"L"},
			{"t":"2024-06-01 06:00","v":"1.000","type":"H"},
			{"t":"2024-06-01 12:00","v":"-1.000","type":"L"},
			{"t":"2024-06-01 18:00","v":"1.000","type":"H"},
			{"t":"2024-06-02 00:00","v":"-1.000","type":"L"},
			{"t":"2024-06-02 06:00","v":"1.000","type":"H"}
		]}`,
	})

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := c.Tides(context.Background(), day, day)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := resp.Validate(payload.SeaLevel); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if got := len(resp.Hourly.Time); got != 24 {
		t.Fatalf("got %d hours, want 24", got)
	}
	col := resp.Hourly.Columns[payload.SeaLevel]
	// Extremes land exactly on the hour and midway is the mean.
	checks := map[int]float64{0: -1, 3: 0, 6: 1, 12: -1}
	for hour, want := range checks {
		if got := *col[hour]; cmp.Diff(want, got, approx()) != "" {
			t.Errorf("hour %d: got %f, want %f", hour, got, want)
		}
	}
	if resp.Hourly.Time[0] != "2024-06-01T00:00" {
		t.Errorf("first time %q", resp.Hourly.Time[0])
	}
}

func TestTidesAPIError(t *testing.T) {
	c := fakeNOAA(t, map[string]string{
		"predictions": `{"error":{"message":"No Predictions data was found."}}`,
	})
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.Tides(context.Background(), day, day)
	if err == nil || err.Error() != "noaa predictions: No Predictions data was found." {
		t.Errorf("got %v", err)
	}
}

func TestObservations(t *testing.T) {
	c := fakeNOAA(t, map[string]string{
		"wind": `{"data":[
			{"t":"2024-05-31 23:54","s":"1.00","d":"10.00","g":"2.0"},
			{"t":"2024-06-01 00:00","s":"5.00","d":"270.00","g":"7.1"},
			{"t":"2024-06-01 00:06","s":"","d":"","g":""}
		]}`,
	})
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := c.Observations(context.Background(), day, day)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	want := []payload.Observation{{
		Time:                 "2024-06-01T00:00",
		WindSpeedKmh:         ptr(18),
		WindDirectionDegrees: ptr(270),
	}, {
		Time: "2024-06-01T00:06",
	}}
	if diff := cmp.Diff(want, resp.Observations, approx()); diff != "" {
		t.Errorf("observations (-want,+got):\n%s", diff)
	}
}

func TestObservationsNoDataYet(t *testing.T) {
	c := fakeNOAA(t, map[string]string{
		"wind": `{"error":{"message":"No data was found. This product may not be offered at this station at the requested time."}}`,
	})
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := c.Observations(context.Background(), day, day)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if diff := cmp.Diff([]payload.Observation{}, resp.Observations); diff != "" {
		t.Errorf("observations (-want,+got):\n%s", diff)
	}
}

func TestObservationsStationError(t *testing.T) {
	c := fakeNOAA(t, map[string]string{
		"wind": `{"error":{"message":"Wrong Station ID"}}`,
	})
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := c.Observations(context.Background(), day, day); err == nil || err.Error() != "noaa wind: Wrong Station ID" {
		t.Errorf("got %v", err)
	}
}

func ptr(f float64) *float64 { return &f }

func approx() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
