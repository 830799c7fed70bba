// Package crossing finds the times a sampled series passes through a
// threshold height and keeps chart annotations for those times in sync.
package crossing

import (
	"fmt"
	"math"
	"time"

	"github.com/spencer-p/winddash/pkg/series"
)

// Crossing is the instant the series reaches the threshold. Height is always
// the threshold itself.
type Crossing struct {
	Time   time.Time `json:"time"`
	Height float64   `json:"height"`
}

func (c Crossing) String() string {
	return fmt.Sprintf("%s @ %.2f", c.Time.Format("2006-01-02 15:04"), c.Height)
}

// Find returns every crossing of threshold in chronological order, at most one
// per pair of neighbouring samples. A sample exactly at the threshold does not
// count, and flat or null segments never produce a crossing.
func Find(samples []series.Sample, threshold float64) []Crossing {
	result := []Crossing{}
	for i := 0; i+1 < len(samples); i++ {
		p1, p2 := samples[i], samples[i+1]
		if p1.Null() || p2.Null() || p1.Value == p2.Value {
			continue
		}
		lo, hi := p1.Value, p2.Value
		if lo > hi {
			lo, hi = hi, lo
		}
		if !(lo < threshold && threshold < hi) {
			continue
		}
		frac := (threshold - p1.Value) / (p2.Value - p1.Value)
		span := p2.Time.Sub(p1.Time)
		result = append(result, Crossing{
			Time:   p1.Time.Add(time.Duration(math.Round(float64(span) * frac))),
			Height: threshold,
		})
	}
	return result
}
