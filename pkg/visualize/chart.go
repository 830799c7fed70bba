// Package visualize renders the dashboard charts as SVG.
package visualize

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spencer-p/winddash/pkg/series"
)

var (
	ErrDestroyed = errors.New("chart was destroyed")
	ErrNoData    = errors.New("no data to chart")
)

// Chart is a rendered chart owned by a dashboard session. A chart must be
// destroyed before it is replaced.
type Chart interface {
	Encode(w io.Writer) error
	Destroy()
}

// Size is a chart's pixel dimensions.
type Size struct {
	Width, Height int
}

var DefaultSize = Size{Width: 1200, Height: 300}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Window is the visible time axis.
type Window struct {
	Start, End time.Time
}

func (w Window) valid() bool {
	return w.Start.Before(w.End)
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowOf spans every sample of every series.
func WindowOf(ss ...series.Series) Window {
	var w Window
	for _, s := range ss {
		start, end, ok := s.Span()
		if !ok {
			continue
		}
		if w.Start.IsZero() || start.Before(w.Start) {
			w.Start = start
		}
		if end.After(w.End) {
			w.End = end
		}
	}
	return w
}

// Style of one source, keyed by series name.
type sourceStyle struct {
	label string
	color drawing.Color
	dash  []float64
	dots  bool
}

var sourceStyles = map[string]sourceStyle{
	"gfs_seamless": {label: "GFS", color: drawing.Color{R: 54, G: 162, B: 235, A: 255}},
	"arome_france": {label: "AROME", color: drawing.Color{R: 255, G: 99, B: 132, A: 255}, dash: []float64{5, 5}},
	"observed":     {label: "Observed", color: drawing.Color{R: 40, G: 40, B: 40, A: 255}, dots: true},
}

func styleFor(source string) sourceStyle {
	if st, ok := sourceStyles[source]; ok {
		return st
	}
	return sourceStyle{label: source, color: chart.ColorAlternateGray}
}

// runSeries splits s at nulls so lines break where data is missing. Only the
// first run carries the name, the rest are left out of the legend.
func runSeries(s series.Series, name string, style chart.Style) []chart.TimeSeries {
	var out []chart.TimeSeries
	for _, run := range s.Runs() {
		ts := chart.TimeSeries{Style: style}
		if len(out) == 0 {
			ts.Name = name
		}
		for _, sm := range run {
			ts.XValues = append(ts.XValues, sm.Time)
			ts.YValues = append(ts.YValues, sm.Value)
		}
		out = append(out, ts)
	}
	return out
}

// timeFormatter picks axis labels by how long the window is.
func timeFormatter(w Window) chart.ValueFormatter {
	if w.End.Sub(w.Start) > 36*time.Hour {
		return chart.TimeValueFormatterWithFormat("01/02 15h")
	}
	return chart.TimeValueFormatterWithFormat("15:04")
}

// niceMax rounds v up to a multiple of step, with some headroom.
func niceMax(v, step float64) float64 {
	if v <= 0 {
		return step
	}
	return math.Ceil(v*1.1/step) * step
}

func withLegend(ch *chart.Chart) {
	named := chart.Chart{}
	for _, s := range ch.Series {
		if s.GetName() != "" {
			named.Series = append(named.Series, s)
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&named)}
}
