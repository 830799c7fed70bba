package noaa

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const predTimeFormat = "2006-01-02 15:04"

// Prediction holds a single tide event prediction.
type Prediction struct {
	// GMT time of tide prediction
	Time Time `json:"t"`
	// Height in meters above mean sea level
	Height Reading `json:"v"`
	// High or Low tide, "H" or "L" when encoded
	Type Tide `json:"type"`
}

// WindReading is one wind observation. Speeds are in m/s.
type WindReading struct {
	Time      Time    `json:"t"`
	Speed     Reading `json:"s"`
	Direction Reading `json:"d"`
	Gust      Reading `json:"g"`
}

// Verify the custom types can be unmarshaled
var _ json.Unmarshaler = &Time{}
var _ json.Unmarshaler = new(Reading)
var _ json.Unmarshaler = new(Tide)

// Predictions is a time series of Prediction.
type Predictions []Prediction

// apiError is how the API reports a failed query, often with a 200 status.
type apiError struct {
	Message string `json:"message"`
}

// PredictionResult is the data type returned for product=predictions.
type PredictionResult struct {
	Predictions Predictions `json:"predictions"`
	Error       *apiError   `json:"error"`
}

// WindResult is the data type returned for product=wind.
type WindResult struct {
	Data  []WindReading `json:"data"`
	Error *apiError     `json:"error"`
}

type Station int

const (
	SantaCruz Station = 9413745
	Monterey  Station = 9413450
)

// Decode lets envconfig read a station id.
func (s *Station) Decode(value string) error {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("station %q is not a number: %w", value, err)
	}
	*s = Station(id)
	return nil
}

type Time time.Time

func (t *Time) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("time %q not string: %w", buf, err)
	}
	parsed, err := time.ParseInLocation(predTimeFormat, s, time.UTC)
	if err != nil {
		return fmt.Errorf("time %q not in fmt %q: %w", s, predTimeFormat, err)
	}
	*t = Time(parsed)
	return nil
}

func (t Time) T() time.Time {
	return time.Time(t)
}

// Reading is a number the API encodes as a string. An empty string is a
// missing reading and decodes as NaN.
type Reading float64

func (r *Reading) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("reading %q not string: %w", buf, err)
	}
	if strings.TrimSpace(s) == "" {
		*r = Reading(math.NaN())
		return nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("reading %q not a float: %w", s, err)
	}
	*r = Reading(parsed)
	return nil
}

// Ptr returns nil for a missing reading, scaled by factor otherwise.
func (r Reading) Ptr(factor float64) *float64 {
	if math.IsNaN(float64(r)) {
		return nil
	}
	v := float64(r) * factor
	return &v
}

type Tide uint

const (
	HighTide Tide = iota
	LowTide
)

func (t Tide) Valid() bool {
	return t == HighTide || t == LowTide
}

func (t *Tide) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("tide %q not a string: %w", buf, err)
	}
	switch s {
	case "H", "HH":
		*t = HighTide
	case "L", "LL":
		*t = LowTide
	default:
		return fmt.Errorf("invalid tide type %q", s)
	}
	return nil
}

func (t Tide) String() string {
	switch t {
	case HighTide:
		return "H"
	case LowTide:
		return "L"
	default:
		return "invalid"
	}
}

func (p Prediction) String() string {
	return fmt.Sprintf("{t: %s, v: %f, type: %s}",
		time.Time(p.Time).Format(time.RFC822),
		p.Height,
		p.Type.String())
}
