// Package sunset computes sunrise and sunset for shading charts and for
// deciding which tide windows fall in daylight.
package sunset

import (
	"time"

	"github.com/spencer-p/winddash/pkg/timetricks"

	"github.com/keep94/sunrise"
)

// GetSunEvents returns ordered sun events for numDays calendar days starting
// at start's day in the given place. Events alternate, starting with a
// sunrise. Days without a sunrise or sunset (polar day or night) are skipped.
func GetSunEvents(start time.Time, numDays int, place Place) SunEvents {
	day := timetricks.TrimClock(start.In(place.Location))

	var s sunrise.Sunrise
	s.Around(place.Lat, place.Long, day)

	// The sunrise package is not very clean with its dates.
	for i := 0; i < 3 && s.Sunrise().Before(day); i++ {
		s.AddDays(1)
	}
	for i := 0; i < 3 && !s.Sunrise().Before(day.AddDate(0, 0, 1)); i++ {
		s.AddDays(-1)
	}

	ret := make(SunEvents, 0, numDays*2)
	for i := 0; i < numDays; i++ {
		rise, set := s.Sunrise(), s.Sunset()
		if !rise.IsZero() && !set.IsZero() {
			ret = append(ret,
				SunEvent{rise.In(place.Location), Sunrise},
				SunEvent{set.In(place.Location), Sunset})
		}
		s.AddDays(1)
	}
	return ret
}

// Daylights pairs sunrises with the following sunset.
func (events SunEvents) Daylights() []Daylight {
	var result []Daylight
	for i := 0; i+1 < len(events); i++ {
		if events[i].Event == Sunrise && events[i+1].Event == Sunset {
			result = append(result, Daylight{Rise: events[i].Time, Set: events[i+1].Time})
			i++
		}
	}
	return result
}

// DaylightOn returns the daylight interval of t's calendar day.
func (events SunEvents) DaylightOn(t time.Time) (Daylight, bool) {
	for _, d := range events.Daylights() {
		if timetricks.SameDay(d.Rise, t) {
			return d, true
		}
	}
	return Daylight{}, false
}
