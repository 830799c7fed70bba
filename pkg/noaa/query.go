package noaa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/noaa/splines"
	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
	"github.com/spencer-p/winddash/pkg/upstream"
)

const (
	NOAA_URL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	TIME_FMT = "20060102"

	msToKmh = 3.6
	// Extremes are fetched with this much padding so the spline covers the
	// edges of the requested days.
	padding = 24 * time.Hour
)

var ErrNoData = errors.New("no data")

// noDataMessage starts the error the datagetter sends instead of an empty
// list, e.g. for readings in the future.
const noDataMessage = "No data was found"

// Query selects one product at a station over a window of days.
type Query struct {
	Product  string
	Interval string
	Start    time.Time
	End      time.Time
	Station  Station
}

func (q *Query) url(base string) (*url.URL, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *Query) build() url.Values {
	vals := make(url.Values)
	vals.Add("begin_date", q.Start.UTC().Format(TIME_FMT))
	vals.Add("end_date", q.End.UTC().Format(TIME_FMT))
	vals.Add("station", fmt.Sprintf("%d", q.Station))
	vals.Add("product", q.Product)
	vals.Add("datum", "MSL")
	vals.Add("time_zone", "gmt")
	if q.Interval != "" {
		vals.Add("interval", q.Interval)
	}
	vals.Add("units", "metric")
	vals.Add("application", "winddash")
	vals.Add("format", "json")
	return vals
}

// Client serves tides and observations for a station, reporting times in the
// place's time zone.
type Client struct {
	BaseURL string
	Station Station
	Place   sunset.Place

	provider *upstream.HTTPProvider
}

func NewClient(station Station, place sunset.Place, client *http.Client, ttl time.Duration, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:  NOAA_URL,
		Station:  station,
		Place:    place,
		provider: upstream.NewHTTPProvider("noaa", client, ttl, logger),
	}
}

// GetPredictions returns the high and low water extremes in the window.
func (c *Client) GetPredictions(ctx context.Context, start, end time.Time) (Predictions, error) {
	var result PredictionResult
	q := Query{Product: "predictions", Interval: "hilo", Start: start, End: end, Station: c.Station}
	if err := c.do(ctx, &q, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("noaa predictions: %s", result.Error.Message)
	}
	return result.Predictions, nil
}

// GetWind returns wind readings in the window.
func (c *Client) GetWind(ctx context.Context, start, end time.Time) ([]WindReading, error) {
	var result WindResult
	q := Query{Product: "wind", Start: start, End: end, Station: c.Station}
	if err := c.do(ctx, &q, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		if strings.HasPrefix(strings.TrimSpace(result.Error.Message), noDataMessage) {
			return nil, fmt.Errorf("noaa wind at station %d: %w", c.Station, ErrNoData)
		}
		return nil, fmt.Errorf("noaa wind: %s", result.Error.Message)
	}
	return result.Data, nil
}

func (c *Client) do(ctx context.Context, q *Query, into any) error {
	addr, err := q.url(c.BaseURL)
	if err != nil {
		return err
	}
	body, err := c.provider.Get(ctx, addr.String())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("noaa %s: decoding: %w", q.Product, err)
	}
	return nil
}

// Tides joins the extremes around the inclusive day range with a spline and
// samples it hourly.
func (c *Client) Tides(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	from := start.In(c.Place.Location)
	to := end.In(c.Place.Location).AddDate(0, 0, 1)

	preds, err := c.GetPredictions(ctx, from.Add(-padding), to.Add(padding))
	if err != nil {
		return nil, err
	}
	if len(preds) < 2 {
		return nil, fmt.Errorf("noaa predictions for station %d: %w", c.Station, ErrNoData)
	}

	extremes := make([]series.Sample, len(preds))
	for i, p := range preds {
		extremes[i] = series.Sample{Time: p.Time.T(), Value: float64(p.Height)}
	}
	sort.Slice(extremes, func(i, j int) bool { return extremes[i].Time.Before(extremes[j].Time) })

	samples := splines.CurvesBetween(extremes).Resample(from, to, time.Hour)
	hourly := payload.Hourly{
		Time:    make([]string, len(samples)),
		Columns: map[string][]*float64{payload.SeaLevel: make([]*float64, len(samples))},
	}
	for i, s := range samples {
		hourly.Time[i] = s.Time.In(c.Place.Location).Format(series.HourFormat)
		if !s.Null() {
			v := s.Value
			hourly.Columns[payload.SeaLevel][i] = &v
		}
	}
	return &payload.HourlyResponse{
		Latitude:    c.Place.Lat,
		Longitude:   c.Place.Long,
		Timezone:    c.Place.Location.String(),
		HourlyUnits: map[string]string{payload.SeaLevel: "m"},
		Hourly:      &hourly,
	}, nil
}

// Observations returns the station's wind readings within the inclusive day
// range, speeds converted to km/h.
func (c *Client) Observations(ctx context.Context, start, end time.Time) (*payload.ObservationsResponse, error) {
	from := start.In(c.Place.Location)
	to := end.In(c.Place.Location).AddDate(0, 0, 1)

	resp := &payload.ObservationsResponse{Observations: []payload.Observation{}}
	readings, err := c.GetWind(ctx, from, to)
	if errors.Is(err, ErrNoData) {
		return resp, nil
	} else if err != nil {
		return nil, err
	}
	for _, r := range readings {
		t := r.Time.T()
		if t.Before(from) || !t.Before(to) {
			continue
		}
		resp.Observations = append(resp.Observations, payload.Observation{
			Time:                 t.In(c.Place.Location).Format(series.HourFormat),
			WindSpeedKmh:         r.Speed.Ptr(msToKmh),
			WindDirectionDegrees: r.Direction.Ptr(1),
		})
	}
	return resp, nil
}
