// Package meta summarizes a tide series into human-readable windows above and
// below the threshold.
package meta

import (
	"fmt"
	"time"

	"github.com/spencer-p/winddash/pkg/crossing"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
)

// Windows splits samples at the crossings into windows that stay on one side
// of threshold. Null samples also end a window, since no crossing is found
// across them.
func Windows(samples []series.Sample, crossings []crossing.Crossing, sun sunset.SunEvents, threshold float64) []Window {
	result := []Window{}
	daylights := sun.Daylights()

	for _, run := range (series.Series{Samples: samples}).Runs() {
		start, end := run[0].Time, run[len(run)-1].Time
		if !start.Before(end) {
			continue
		}

		cuts := []time.Time{start}
		for _, c := range crossings {
			if c.Time.After(start) && c.Time.Before(end) {
				cuts = append(cuts, c.Time)
			}
		}
		cuts = append(cuts, end)

		for i := 0; i+1 < len(cuts); i++ {
			below, ok := side(run, cuts[i], cuts[i+1], threshold)
			if !ok {
				continue
			}
			w := Window{
				Start:     cuts[i],
				End:       cuts[i+1],
				Below:     below,
				Threshold: threshold,
				Daylight:  daylightIn(daylights, cuts[i], cuts[i+1]),
			}
			w.Reasons = reasons(w)
			result = append(result, w)
		}
	}
	return result
}

// InDaylight keeps the windows below the threshold that see some daylight.
func InDaylight(windows []Window) []Window {
	result := []Window{}
	for _, w := range windows {
		if w.Below && w.Daylight > 0 {
			result = append(result, w)
		}
	}
	return result
}

// side reports whether the first sample in [start, end] off the threshold is
// below it. ok is false when every sample sits on the threshold.
func side(run []series.Sample, start, end time.Time, threshold float64) (below bool, ok bool) {
	for _, s := range run {
		if s.Time.Before(start) || s.Time.After(end) || s.Value == threshold {
			continue
		}
		return s.Value < threshold, true
	}
	return false, false
}

func daylightIn(daylights []sunset.Daylight, start, end time.Time) time.Duration {
	var total time.Duration
	for _, d := range daylights {
		if from, to, ok := d.Overlap(start, end); ok {
			total += to.Sub(from)
		}
	}
	return total
}

func reasons(w Window) []string {
	where := "above"
	if w.Below {
		where = "below"
	}
	result := []string{fmt.Sprintf("tide is %s %.2f m", where, w.Threshold)}

	switch d := w.Daylight; {
	case d == 0:
		result = append(result, "it is dark")
	case d < w.Duration():
		result = append(result, fmt.Sprintf("%s of it in daylight", d.Round(time.Minute)))
	}
	return result
}
