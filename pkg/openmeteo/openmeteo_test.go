package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/sunset"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	place := sunset.Place{Lat: 46.244, Long: -1.561, Location: time.UTC}
	c := NewClient(place, srv.Client(), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.ForecastURL = srv.URL + "/v1/forecast"
	c.MarineURL = srv.URL + "/v1/marine"
	return c
}

func TestForecastQuery(t *testing.T) {
	var got *http.Request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"hourly":{"time":["2024-06-01T00:00"],"windspeed_10m_gfs_seamless":[10]}}`))
	})

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := c.Forecast(context.Background(), day, day.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, resp.Hourly.Time, 1)

	q := got.URL.Query()
	assert.Equal(t, "/v1/forecast", got.URL.Path)
	assert.Equal(t, "46.244", q.Get("latitude"))
	assert.Equal(t, "-1.561", q.Get("longitude"))
	assert.Equal(t, "2024-06-01", q.Get("start_date"))
	assert.Equal(t, "2024-06-08", q.Get("end_date"))
	assert.Equal(t, "gfs_seamless,arome_france", q.Get("models"))
	assert.Equal(t, "windspeed_10m,winddirection_10m", q.Get("hourly"))
}

func TestTidesValidates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"sea_level_height_msl":[0.4]}}`))
	})
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.Tides(context.Background(), day, day)
	assert.ErrorIs(t, err, payload.ErrMalformed)
}

func TestReasonSurfaces(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":true,"reason":"Parameter 'start_date' is out of allowed range"}`))
	})
	day := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.Forecast(context.Background(), day, day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of allowed range")
}
