package visualize

import (
	"bytes"
	"io"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spencer-p/winddash/pkg/crossing"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
)

var (
	tideColor      = drawing.Color{R: 135, G: 206, B: 235, A: 255}
	thresholdColor = drawing.Color{R: 231, G: 111, B: 81, A: 255}
	daylightColor  = drawing.Color{R: 255, G: 250, B: 205, A: 160}
	nowColor       = drawing.Color{R: 200, G: 0, B: 0, A: 255}
)

// Tide charts sea level with a threshold line and the annotations kept by
// crossing.Sync. It re-renders only on Redraw.
type Tide struct {
	size        Size
	window      Window
	tide        series.Series
	daylight    []sunset.Daylight
	threshold   float64
	annotations crossing.Annotations

	svg       []byte
	redraws   int
	animated  bool
	destroyed bool
}

var _ crossing.Target = &Tide{}

// NewTide prepares a tide chart. It renders on the first Redraw.
func NewTide(size Size, tide series.Series, sun sunset.SunEvents, threshold float64) (*Tide, error) {
	window := WindowOf(tide)
	if !window.valid() {
		return nil, ErrNoData
	}
	if _, _, ok := tide.Bounds(); !ok {
		return nil, ErrNoData
	}
	return &Tide{
		size:        size.orDefault(),
		window:      window,
		tide:        tide,
		daylight:    sun.Daylights(),
		threshold:   threshold,
		annotations: crossing.Annotations{},
	}, nil
}

// Annotations is the live annotation collection.
func (img *Tide) Annotations() crossing.Annotations {
	return img.annotations
}

// SetThreshold moves the dashed line. It is drawn on the next Redraw.
func (img *Tide) SetThreshold(height float64) {
	img.threshold = height
}

// Redraw renders the chart again. Transitions are never drawn in a static
// SVG, animate is only recorded.
func (img *Tide) Redraw(animate bool) {
	if img.destroyed {
		return
	}
	img.redraws++
	img.animated = animate
	var buf bytes.Buffer
	if err := img.chart().Render(chart.SVG, &buf); err != nil {
		img.svg = nil
		return
	}
	img.svg = buf.Bytes()
}

// Redraws reports how many times the chart was drawn and whether the last
// draw asked for animation.
func (img *Tide) Redraws() (int, bool) {
	return img.redraws, img.animated
}

// Resize re-renders at a new size.
func (img *Tide) Resize(size Size) error {
	if img.destroyed {
		return ErrDestroyed
	}
	img.size = size.orDefault()
	img.Redraw(false)
	return nil
}

func (img *Tide) Encode(w io.Writer) error {
	if img.destroyed {
		return ErrDestroyed
	}
	if img.svg == nil {
		img.Redraw(false)
	}
	if img.svg == nil {
		return ErrNoData
	}
	_, err := w.Write(img.svg)
	return err
}

func (img *Tide) Destroy() {
	img.destroyed = true
	img.svg = nil
	img.annotations = nil
}

// yRange pads the tide and threshold extremes by half a meter.
func (img *Tide) yRange() (float64, float64) {
	lo, hi, _ := img.tide.Bounds()
	lo = math.Min(lo, img.threshold)
	hi = math.Max(hi, img.threshold)
	return math.Floor(lo*2-1) / 2, math.Ceil(hi*2+1) / 2
}

func (img *Tide) chart() chart.Chart {
	ymin, ymax := img.yRange()
	var all []chart.Series

	// Daylight bands go first so everything else is drawn over them.
	for _, d := range img.daylight {
		rise, set, ok := d.Overlap(img.window.Start, img.window.End)
		if !ok {
			continue
		}
		all = append(all, chart.TimeSeries{
			Style:   chart.Style{StrokeWidth: 1, StrokeColor: daylightColor, FillColor: daylightColor},
			XValues: []time.Time{rise, rise, set, set},
			YValues: []float64{ymin, ymax, ymax, ymin},
		})
	}

	for _, ts := range runSeries(img.tide, "Sea level (m)", chart.Style{
		StrokeColor: tideColor,
		StrokeWidth: 2,
		FillColor:   tideColor.WithAlpha(90),
	}) {
		all = append(all, ts)
	}

	all = append(all, chart.TimeSeries{
		Name: "Threshold",
		Style: chart.Style{
			StrokeColor:     thresholdColor,
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 4},
		},
		XValues: []time.Time{img.window.Start, img.window.End},
		YValues: []float64{img.threshold, img.threshold},
	})

	all = append(all, img.annotationSeries(ymin, ymax)...)

	ch := chart.Chart{
		Width:      img.size.Width,
		Height:     img.size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			ValueFormatter: timeFormatter(img.window),
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(img.window.Start), Max: chart.TimeToFloat64(img.window.End)},
		},
		YAxis: chart.YAxis{
			Name:  "Tide Height (m)",
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series: all,
	}
	withLegend(&ch)
	return ch
}

// annotationSeries turns the live annotations into dot and label series.
func (img *Tide) annotationSeries(ymin, ymax float64) []chart.Series {
	// Convert the pixel label offset into axis units.
	perPixel := (ymax - ymin) / float64(img.size.Height)

	points := chart.TimeSeries{
		Style: chart.Style{
			StrokeWidth: 1,
			StrokeColor: thresholdColor,
			DotWidth:    4,
			DotColor:    thresholdColor,
		},
	}
	labels := chart.AnnotationSeries{
		Style: chart.Style{FontSize: 9, StrokeColor: thresholdColor},
	}
	var out []chart.Series
	var dots []crossing.Annotation

	for key, an := range img.annotations {
		switch an.Kind {
		case crossing.Point:
			dots = append(dots, an)
		case crossing.Label:
			labels.Annotations = append(labels.Annotations, chart.Value2{
				XValue: chart.TimeToFloat64(an.Time),
				YValue: an.Height + float64(an.OffsetY)*perPixel,
				Label:  an.Text,
			})
		case crossing.Marker:
			if key != crossing.NowKey || !img.window.contains(an.Time) {
				continue
			}
			out = append(out, chart.TimeSeries{
				Style: chart.Style{
					StrokeColor:     nowColor,
					StrokeWidth:     1,
					StrokeDashArray: []float64{2, 2},
				},
				XValues: []time.Time{an.Time, an.Time},
				YValues: []float64{ymin, ymax},
			})
			labels.Annotations = append(labels.Annotations, chart.Value2{
				XValue: chart.TimeToFloat64(an.Time),
				YValue: an.Height,
				Label:  an.Text,
			})
		}
	}
	if len(dots) > 0 {
		// The collection is a map, order the dots by time.
		sort.Slice(dots, func(i, j int) bool { return dots[i].Time.Before(dots[j].Time) })
		for _, an := range dots {
			points.XValues = append(points.XValues, an.Time)
			points.YValues = append(points.YValues, an.Height)
		}
		out = append(out, points)
	}
	if len(labels.Annotations) > 0 {
		sort.Slice(labels.Annotations, func(i, j int) bool {
			return labels.Annotations[i].XValue < labels.Annotations[j].XValue
		})
		out = append(out, labels)
	}
	return out
}
