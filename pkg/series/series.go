// Package series holds time ordered samples from one data source, such as
// the tide height or one forecast model's wind speed. A Series is built once
// per fetch and replaced wholesale when new data arrives.
package series

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// HourFormat is the local timestamp layout used by the hourly payloads.
const HourFormat = "2006-01-02T15:04"

var (
	ErrUnordered = errors.New("samples are not in time order")
	ErrLength    = errors.New("time and value columns differ in length")
)

// Sample is a single reading. A missing reading has a NaN value.
type Sample struct {
	Time  time.Time
	Value float64
}

// Null reports whether the upstream had no value for this sample.
func (s Sample) Null() bool {
	return math.IsNaN(s.Value)
}

// Series is an ordered list of samples with some presentation metadata.
type Series struct {
	Name    string
	Unit    string
	Samples []Sample
}

// New validates that samples are strictly increasing in time.
func New(name, unit string, samples []Sample) (Series, error) {
	for i := 1; i < len(samples); i++ {
		if !samples[i-1].Time.Before(samples[i].Time) {
			return Series{}, fmt.Errorf("%s at %s: %w",
				name, samples[i].Time.Format(HourFormat), ErrUnordered)
		}
	}
	return Series{Name: name, Unit: unit, Samples: samples}, nil
}

// FromColumns zips a column of local timestamps with a column of nullable
// values, the shape every hourly payload uses.
func FromColumns(name, unit string, times []string, values []*float64, loc *time.Location) (Series, error) {
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("%s: %d times, %d values: %w", name, len(times), len(values), ErrLength)
	}
	samples := make([]Sample, len(times))
	for i := range times {
		t, err := ParseTime(times[i], loc)
		if err != nil {
			return Series{}, fmt.Errorf("%s: %w", name, err)
		}
		samples[i] = Sample{Time: t, Value: math.NaN()}
		if values[i] != nil {
			samples[i].Value = *values[i]
		}
	}
	return New(name, unit, samples)
}

// ParseTime reads a timestamp in HourFormat, falling back to RFC 3339.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(HourFormat, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q not in %q or RFC 3339", s, HourFormat)
	}
	return t.In(loc), nil
}

// Len is the number of samples, null or not.
func (s Series) Len() int {
	return len(s.Samples)
}

// Times returns the sample timestamps.
func (s Series) Times() []time.Time {
	ts := make([]time.Time, len(s.Samples))
	for i := range s.Samples {
		ts[i] = s.Samples[i].Time
	}
	return ts
}

// Values returns the sample values, NaN for nulls.
func (s Series) Values() []float64 {
	vs := make([]float64, len(s.Samples))
	for i := range s.Samples {
		vs[i] = s.Samples[i].Value
	}
	return vs
}

// Span returns the first and last sample times. ok is false for an empty
// series.
func (s Series) Span() (start, end time.Time, ok bool) {
	if len(s.Samples) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Samples[0].Time, s.Samples[len(s.Samples)-1].Time, true
}

// Bounds returns the smallest and largest non-null values.
func (s Series) Bounds() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, sm := range s.Samples {
		if sm.Null() {
			continue
		}
		lo = math.Min(lo, sm.Value)
		hi = math.Max(hi, sm.Value)
		ok = true
	}
	return lo, hi, ok
}

// Runs splits the series at null samples into contiguous non-null runs.
func (s Series) Runs() [][]Sample {
	var runs [][]Sample
	start := -1
	for i, sm := range s.Samples {
		switch {
		case sm.Null() && start >= 0:
			runs = append(runs, s.Samples[start:i])
			start = -1
		case !sm.Null() && start < 0:
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, s.Samples[start:])
	}
	return runs
}

// At linearly interpolates the value at t. ok is false outside the series or
// next to a null sample.
func (s Series) At(t time.Time) (float64, bool) {
	for i := 1; i < len(s.Samples); i++ {
		p1, p2 := s.Samples[i-1], s.Samples[i]
		if t.Before(p1.Time) || t.After(p2.Time) {
			continue
		}
		if p1.Null() || p2.Null() {
			return 0, false
		}
		frac := float64(t.Sub(p1.Time)) / float64(p2.Time.Sub(p1.Time))
		return p1.Value + (p2.Value-p1.Value)*frac, true
	}
	return 0, false
}
