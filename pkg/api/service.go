// Package api serves the JSON backend the charts are drawn from.
package api

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

// MaxRangeDays bounds range queries to what the forecast upstream offers.
const MaxRangeDays = 16

// ForecastSource provides hourly wind per model for an inclusive day range.
type ForecastSource interface {
	Forecast(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error)
}

// TideSource provides hourly sea level for an inclusive day range.
type TideSource interface {
	Tides(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error)
}

// ObservationSource provides station wind readings for an inclusive day range.
type ObservationSource interface {
	Observations(ctx context.Context, start, end time.Time) (*payload.ObservationsResponse, error)
}

// NoObservations stands in when no station near the place is configured.
// Every day has an empty observation list.
type NoObservations struct{}

func (NoObservations) Observations(ctx context.Context, start, end time.Time) (*payload.ObservationsResponse, error) {
	return &payload.ObservationsResponse{Observations: []payload.Observation{}}, nil
}

// Service answers every backend query. Its single day methods make it usable
// in process wherever a remote backend client would be.
type Service struct {
	forecasts    ForecastSource
	tides        TideSource
	observations ObservationSource
	loc          *time.Location
}

func NewService(f ForecastSource, t TideSource, o ObservationSource, loc *time.Location) *Service {
	return &Service{forecasts: f, tides: t, observations: o, loc: loc}
}

// Location is the time zone days are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Forecast(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	return s.Weather(ctx, day, day)
}

// Weather is the range variant of Forecast.
func (s *Service) Weather(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	resp, err := s.forecasts.Forecast(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return resp, nil
}

func (s *Service) Tides(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	return s.tides.Tides(ctx, day, day)
}

func (s *Service) Observations(ctx context.Context, day time.Time) (*payload.ObservationsResponse, error) {
	return s.observations.Observations(ctx, day, day)
}

// GroundTruthHourly averages the day's observations per hour into the
// forecast payload shape. Directions use a circular mean so that 350° and
// 10° average to north.
func (s *Service) GroundTruthHourly(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	obs, err := s.Observations(ctx, day)
	if err != nil {
		return nil, err
	}
	speed, dir, err := obs.Columns(s.loc)
	if err != nil {
		return nil, err
	}

	start, end := timetricks.DayBounds(day.In(s.loc))
	var hours []time.Time
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		hours = append(hours, t)
	}

	speedCol := WindSpeedColumn()
	dirCol := WindDirectionColumn()
	hourly := payload.Hourly{
		Time: make([]string, len(hours)),
		Columns: map[string][]*float64{
			speedCol: make([]*float64, len(hours)),
			dirCol:   make([]*float64, len(hours)),
		},
	}
	for i, h := range hours {
		hourly.Time[i] = h.Format(series.HourFormat)
		hourly.Columns[speedCol][i] = mean(speed.Samples, h, h.Add(time.Hour))
		hourly.Columns[dirCol][i] = circularMean(dir.Samples, h, h.Add(time.Hour))
	}
	return &payload.HourlyResponse{
		Timezone:    s.loc.String(),
		HourlyUnits: map[string]string{speedCol: "km/h", dirCol: "°"},
		Hourly:      &hourly,
	}, nil
}

func WindSpeedColumn() string     { return payload.WindSpeedPrefix + payload.ModelObserved }
func WindDirectionColumn() string { return payload.WindDirectionPrefix + payload.ModelObserved }

func checkRange(start, end time.Time) error {
	if err := timetricks.CheckRange(start, end); err != nil {
		return &RequestError{err.Error()}
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
		return &RequestError{fmt.Sprintf("range of %d days exceeds the %d day limit", days, MaxRangeDays)}
	}
	return nil
}

// RequestError is a problem with the caller's query rather than upstream.
type RequestError struct {
	Detail string
}

func (e *RequestError) Error() string {
	return e.Detail
}

func window(samples []series.Sample, from, to time.Time) []float64 {
	var vs []float64
	for _, s := range samples {
		if s.Null() || s.Time.Before(from) || !s.Time.Before(to) {
			continue
		}
		vs = append(vs, s.Value)
	}
	return vs
}

func mean(samples []series.Sample, from, to time.Time) *float64 {
	vs := window(samples, from, to)
	if len(vs) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	m := sum / float64(len(vs))
	return &m
}

func circularMean(samples []series.Sample, from, to time.Time) *float64 {
	vs := window(samples, from, to)
	if len(vs) == 0 {
		return nil
	}
	var x, y float64
	for _, deg := range vs {
		rad := deg * math.Pi / 180
		x += math.Cos(rad)
		y += math.Sin(rad)
	}
	if math.Hypot(x, y) < 1e-9 {
		// Opposing winds cancel out, there is no mean direction.
		return nil
	}
	m := math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
	return &m
}
