// Package payload defines the JSON bodies exchanged between the backend API
// and its clients.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spencer-p/winddash/pkg/series"
)

// Column names in the hourly payloads.
const (
	ColumnTime          = "time"
	WindSpeedPrefix     = "windspeed_10m_"
	WindDirectionPrefix = "winddirection_10m_"
	SeaLevel            = "sea_level_height_msl"
)

// Data sources within a forecast payload.
const (
	ModelGFS      = "gfs_seamless"
	ModelAROME    = "arome_france"
	ModelObserved = "observed"
)

// Models lists the forecast models requested upstream, in display order.
var Models = []string{ModelGFS, ModelAROME}

var (
	ErrMalformed     = errors.New("malformed response")
	ErrMissingTime   = fmt.Errorf("no time column: %w", ErrMalformed)
	ErrMissingColumn = fmt.Errorf("missing column: %w", ErrMalformed)
)

// Hourly is a set of equally long columns keyed by name, one of which is the
// time column. Values may be null.
type Hourly struct {
	Time    []string
	Columns map[string][]*float64
}

var _ json.Marshaler = Hourly{}
var _ json.Unmarshaler = &Hourly{}

func (h Hourly) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Columns)+1)
	for name, col := range h.Columns {
		flat[name] = col
	}
	if h.Time != nil {
		flat[ColumnTime] = h.Time
	}
	return json.Marshal(flat)
}

func (h *Hourly) UnmarshalJSON(buf []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		return fmt.Errorf("hourly block not an object: %w", err)
	}
	h.Time = nil
	h.Columns = make(map[string][]*float64, len(raw))
	for name, msg := range raw {
		if name == ColumnTime {
			if err := json.Unmarshal(msg, &h.Time); err != nil {
				return fmt.Errorf("time column: %w", err)
			}
			continue
		}
		var col []*float64
		if err := json.Unmarshal(msg, &col); err != nil {
			return fmt.Errorf("column %q not numeric: %w", name, err)
		}
		h.Columns[name] = col
	}
	return nil
}

// Names returns the value column names in sorted order.
func (h Hourly) Names() []string {
	names := make([]string, 0, len(h.Columns))
	for name := range h.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series builds the series for one column.
func (h Hourly) Series(column, unit string, loc *time.Location) (series.Series, error) {
	if len(h.Time) == 0 {
		return series.Series{}, ErrMissingTime
	}
	col, ok := h.Columns[column]
	if !ok {
		return series.Series{}, fmt.Errorf("%s: %w", column, ErrMissingColumn)
	}
	s, err := series.FromColumns(column, unit, h.Time, col, loc)
	if err != nil {
		return series.Series{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

// HourlyResponse is the forecast and tide payload.
type HourlyResponse struct {
	Latitude    float64           `json:"latitude,omitempty"`
	Longitude   float64           `json:"longitude,omitempty"`
	Timezone    string            `json:"timezone,omitempty"`
	HourlyUnits map[string]string `json:"hourly_units,omitempty"`
	Hourly      *Hourly           `json:"hourly"`
}

// Validate checks that the time column exists and that every column, plus
// the required ones, matches it in length.
func (r *HourlyResponse) Validate(required ...string) error {
	if r == nil || r.Hourly == nil {
		return fmt.Errorf("no hourly block: %w", ErrMalformed)
	}
	if len(r.Hourly.Time) == 0 {
		return ErrMissingTime
	}
	for _, name := range required {
		if _, ok := r.Hourly.Columns[name]; !ok {
			return fmt.Errorf("%s: %w", name, ErrMissingColumn)
		}
	}
	for name, col := range r.Hourly.Columns {
		if len(col) != len(r.Hourly.Time) {
			return fmt.Errorf("column %s has %d values for %d times: %w",
				name, len(col), len(r.Hourly.Time), ErrMalformed)
		}
	}
	return nil
}

// Observation is one station reading. Speed is in km/h.
type Observation struct {
	Time                 string   `json:"time"`
	WindSpeedKmh         *float64 `json:"wind_speed_kmh"`
	WindDirectionDegrees *float64 `json:"wind_direction_degrees"`
}

// ObservationsResponse is the observations payload.
type ObservationsResponse struct {
	Observations []Observation `json:"observations"`
}

// Validate checks that the observation list is present and timestamped.
func (r *ObservationsResponse) Validate() error {
	if r == nil || r.Observations == nil {
		return fmt.Errorf("no observations list: %w", ErrMalformed)
	}
	for i, o := range r.Observations {
		if o.Time == "" {
			return fmt.Errorf("observation %d has no time: %w", i, ErrMalformed)
		}
	}
	return nil
}

// Columns turns observations into speed and direction series.
func (r *ObservationsResponse) Columns(loc *time.Location) (speed, direction series.Series, err error) {
	times := make([]string, len(r.Observations))
	speeds := make([]*float64, len(r.Observations))
	dirs := make([]*float64, len(r.Observations))
	for i, o := range r.Observations {
		times[i], speeds[i], dirs[i] = o.Time, o.WindSpeedKmh, o.WindDirectionDegrees
	}
	speed, err = series.FromColumns(WindSpeedPrefix+ModelObserved, "km/h", times, speeds, loc)
	if err != nil {
		return speed, direction, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	direction, err = series.FromColumns(WindDirectionPrefix+ModelObserved, "°", times, dirs, loc)
	if err != nil {
		return speed, direction, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return speed, direction, nil
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
