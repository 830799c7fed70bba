package sunset

import (
	"fmt"
	"time"
)

// Place is a lat/long coordinate on the Earth matched with its time zone.
type Place struct {
	Lat, Long float64
	Location  *time.Location
}

// NewPlace loads the named time zone for a coordinate.
func NewPlace(lat, long float64, zone string) (Place, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Place{}, fmt.Errorf("time zone %q: %w", zone, err)
	}
	return Place{Lat: lat, Long: long, Location: loc}, nil
}

// SunEvents is a time series of SunEvent.
type SunEvents []SunEvent

// SunEvent is a sunrise or sunset event.
type SunEvent struct {
	Time  time.Time
	Event Event
}

func (s *SunEvent) String() string {
	return fmt.Sprintf("%s %s", s.Time.Format("02 Jan 06 15:04 MST"), s.Event)
}

// Event encodes a sunrise or sunset event.
type Event bool

const (
	Sunrise Event = true
	Sunset  Event = false
)

func (e Event) String() string {
	if e == Sunrise {
		return "Sunrise"
	}
	return "Sunset"
}

// Daylight is one sunrise to sunset interval.
type Daylight struct {
	Rise, Set time.Time
}

// Contains reports whether t falls between sunrise and sunset.
func (d Daylight) Contains(t time.Time) bool {
	return !t.Before(d.Rise) && !t.After(d.Set)
}

// Overlap returns the part of [start, end] that is in daylight.
func (d Daylight) Overlap(start, end time.Time) (time.Time, time.Time, bool) {
	if start.Before(d.Rise) {
		start = d.Rise
	}
	if end.After(d.Set) {
		end = d.Set
	}
	return start, end, start.Before(end)
}
