// Package splines finds a continuous tide curve from the high and low water
// extremes alone.
package splines

import (
	"math"
	"time"

	"github.com/spencer-p/winddash/pkg/series"
)

// Curve represents a curve that links a tide event to another smoothly. Its
// derivitative at Start and End are zero and it is undefined outside Start and
// End.
type Curve struct {
	Start, End time.Time
	A, B, C, D float64
}

// A Spline is a slice of curves linked together to form a full picture.
type Spline []Curve

// CurvesBetween links consecutive extremes. Null extremes break the spline;
// the curves on either side of them are omitted.
func CurvesBetween(extremes []series.Sample) Spline {
	if len(extremes) < 2 {
		return nil
	}

	curves := make(Spline, 0, len(extremes)-1)
	for i := 0; i+1 < len(extremes); i++ {
		if extremes[i].Null() || extremes[i+1].Null() {
			continue
		}
		curves = append(curves, curveBetween(
			extremes[i].Time, extremes[i].Value,
			extremes[i+1].Time, extremes[i+1].Value))
	}
	return curves
}

// Resample evaluates the spline every step from start (inclusive) to end
// (exclusive). Times the spline does not cover get a null sample.
func (s Spline) Resample(start, end time.Time, step time.Duration) []series.Sample {
	if step <= 0 || !start.Before(end) {
		return nil
	}
	n := int(end.Sub(start) / step)
	if end.Sub(start)%step != 0 {
		n++
	}
	result := make([]series.Sample, n)
	for i := range result {
		t := start.Add(time.Duration(i) * step)
		result[i] = series.Sample{Time: t, Value: s.Eval(t)}
	}
	return result
}

func curveBetween(time1 time.Time, h1 float64, time2 time.Time, h2 float64) Curve {
	t1 := 0.0
	t2 := xrel(time1, time2)
	denominator := math.Pow(t1-t2, 3.0)
	return Curve{
		Start: time1,
		End:   time2,
		A:     (-2 * (h1 - h2)) / denominator,
		B:     (3 * (h1 - h2) * (t1 + t2)) / denominator,
		C:     (-6 * (h1 - h2) * t1 * t2) / denominator,
		D: -1 * (-1*h2*math.Pow(t1, 3) + 3*h2*math.Pow(t1, 2)*t2 -
			3*h1*t1*math.Pow(t2, 2) + h1*math.Pow(t2, 3)) / denominator,
	}
}

// Eval finds the curve covering t by binary search. NaN if none does.
func (s Spline) Eval(t time.Time) float64 {
	left, right := 0, len(s)
	for right > left {
		mid := left + (right-left)/2
		if t.Before(s[mid].Start) {
			right = mid
		} else if t.After(s[mid].End) {
			left = mid + 1
		} else {
			return s[mid].Eval(t)
		}
	}
	// Function not defined.
	return math.NaN()
}

func (c Curve) Eval(t time.Time) float64 {
	if t.Before(c.Start) || t.After(c.End) {
		return math.NaN()
	}
	x := xrel(c.Start, t)
	return c.A*x*x*x + c.B*x*x + c.C*x + c.D
}

// xrel computes an x coordinate for t that is relative to origin.
// This reduces large floating point errors by moving x coordinates closer to
// the "origin" (just the start of a particular curve).
func xrel(origin time.Time, t time.Time) float64 {
	return float64(t.Unix() - origin.Unix())
}
