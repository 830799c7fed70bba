package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/winddash/pkg/payload"
)

type fakeSources struct {
	forecastCalls int
	lastStart     time.Time
	lastEnd       time.Time
	forecastErr   error
	observations  []payload.Observation
}

func (f *fakeSources) Forecast(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	f.forecastCalls++
	f.lastStart, f.lastEnd = start, end
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	v := 12.0
	return &payload.HourlyResponse{Hourly: &payload.Hourly{
		Time:    []string{"2024-06-01T00:00"},
		Columns: map[string][]*float64{payload.WindSpeedPrefix + payload.ModelGFS: {&v}},
	}}, nil
}

func (f *fakeSources) Tides(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	v := 0.5
	return &payload.HourlyResponse{Hourly: &payload.Hourly{
		Time:    []string{"2024-06-01T00:00"},
		Columns: map[string][]*float64{payload.SeaLevel: {&v}},
	}}, nil
}

func (f *fakeSources) Observations(ctx context.Context, start, end time.Time) (*payload.ObservationsResponse, error) {
	return &payload.ObservationsResponse{Observations: f.observations}, nil
}

func newTestServer(t *testing.T, f *fakeSources) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	Register(r, NewService(f, f, f, time.UTC))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp.StatusCode
}

func TestForecastEndpoint(t *testing.T) {
	f := &fakeSources{}
	srv := newTestServer(t, f)

	var resp payload.HourlyResponse
	code := getJSON(t, srv.URL+"/api/forecast?date=2024-06-01", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"2024-06-01T00:00"}, resp.Hourly.Time)
	assert.True(t, f.lastStart.Equal(f.lastEnd), "single day forecast should ask for one day")
}

func TestMissingDateIsBadRequest(t *testing.T) {
	f := &fakeSources{}
	srv := newTestServer(t, f)

	testCases := []struct {
		path   string
		detail string
	}{
		{"/api/forecast", "Missing date parameter in YYYY-MM-DD format"},
		{"/api/tides?date=tomorrow", `Invalid date: date "tomorrow" not in 2006-01-02 format`},
		{"/api/groundtruth_hourly", "Missing date_str parameter in YYYY-MM-DD format"},
		{"/api/weather?start_date=2024-06-01", "Missing end_date parameter in YYYY-MM-DD format"},
		{"/api/weather?start_date=2024-06-10&end_date=2024-06-01", "2024-06-10 to 2024-06-01: end date before start date"},
		{"/api/weather?start_date=2024-06-01&end_date=2024-07-01", "range of 31 days exceeds the 16 day limit"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			var resp payload.ErrorResponse
			code := getJSON(t, srv.URL+tc.path, &resp)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tc.detail, resp.Detail)
		})
	}
	assert.Zero(t, f.forecastCalls, "bad requests must not reach upstream")
}

func TestWeatherPeriod(t *testing.T) {
	f := &fakeSources{}
	srv := newTestServer(t, f)

	var resp payload.HourlyResponse
	code := getJSON(t, srv.URL+"/api/weather?start_date=2024-06-01&period=P7D", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-06-08", f.lastEnd.Format("2006-01-02"))
}

func TestUpstreamFailureDetail(t *testing.T) {
	f := &fakeSources{forecastErr: errors.New("open-meteo forecast: connection refused")}
	srv := newTestServer(t, f)

	var resp payload.ErrorResponse
	code := getJSON(t, srv.URL+"/api/forecast?date=2024-06-01", &resp)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Error fetching forecast: open-meteo forecast: connection refused", resp.Detail)
}

func obs(t string, speed, dir float64) payload.Observation {
	return payload.Observation{Time: t, WindSpeedKmh: &speed, WindDirectionDegrees: &dir}
}

func TestGroundTruthHourly(t *testing.T) {
	f := &fakeSources{observations: []payload.Observation{
		obs("2024-06-01T10:00", 10, 350),
		obs("2024-06-01T10:30", 20, 10),
		obs("2024-06-01T11:06", 30, 90),
	}}
	srv := newTestServer(t, f)

	var resp payload.HourlyResponse
	code := getJSON(t, srv.URL+"/api/groundtruth_hourly?date_str=2024-06-01", &resp)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, resp.Validate(WindSpeedColumn(), WindDirectionColumn()))
	require.Len(t, resp.Hourly.Time, 24)

	speed := resp.Hourly.Columns[WindSpeedColumn()]
	dir := resp.Hourly.Columns[WindDirectionColumn()]
	assert.Nil(t, speed[9])
	assert.InDelta(t, 15, *speed[10], 1e-9)
	assert.InDelta(t, 30, *speed[11], 1e-9)
	// 350° and 10° average to north, not south.
	north := *dir[10]
	if north > 180 {
		north -= 360
	}
	assert.InDelta(t, 0, north, 1e-6)
	assert.InDelta(t, 90, *dir[11], 1e-6)
}

func TestGroundTruthWithoutStation(t *testing.T) {
	f := &fakeSources{}
	r := mux.NewRouter()
	Register(r, NewService(f, f, NoObservations{}, time.UTC))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	var obs payload.ObservationsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/observations?date=2024-06-01", &obs))
	assert.Empty(t, obs.Observations)

	var resp payload.HourlyResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/groundtruth_hourly?date_str=2024-06-01", &resp))
	require.Len(t, resp.Hourly.Time, 24)
	for _, v := range resp.Hourly.Columns[WindSpeedColumn()] {
		assert.Nil(t, v)
	}
}
