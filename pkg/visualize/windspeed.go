package visualize

import (
	"bytes"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
)

// WindSpeed is a line chart with one line per forecast model plus the
// observed wind.
type WindSpeed struct {
	size      Size
	window    Window
	sources   []series.Series
	svg       []byte
	destroyed bool
}

// NewWindSpeed renders speeds in km/h. Series are named after their payload
// column, e.g. windspeed_10m_gfs_seamless.
func NewWindSpeed(size Size, sources ...series.Series) (*WindSpeed, error) {
	ws := &WindSpeed{size: size.orDefault(), sources: sources, window: WindowOf(sources...)}
	if !ws.window.valid() {
		return nil, ErrNoData
	}
	if err := ws.render(); err != nil {
		return nil, err
	}
	return ws, nil
}

func (ws *WindSpeed) render() error {
	var all []chart.Series
	maxSpeed := 0.0
	for _, s := range ws.sources {
		source := strings.TrimPrefix(s.Name, payload.WindSpeedPrefix)
		st := styleFor(source)
		style := chart.Style{
			StrokeColor:     st.color,
			StrokeWidth:     2,
			StrokeDashArray: st.dash,
		}
		if st.dots {
			style.StrokeWidth = 1
			style.DotWidth = 2
			style.DotColor = st.color
		}
		for _, ts := range runSeries(s, st.label+" Wind Speed (km/h)", style) {
			all = append(all, ts)
		}
		if _, hi, ok := s.Bounds(); ok && hi > maxSpeed {
			maxSpeed = hi
		}
	}
	if len(all) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Width:      ws.size.Width,
		Height:     ws.size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			ValueFormatter: timeFormatter(ws.window),
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(ws.window.Start), Max: chart.TimeToFloat64(ws.window.End)},
		},
		YAxis: chart.YAxis{
			Name:  "Wind Speed (km/h)",
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(maxSpeed, 5)},
		},
		Series: all,
	}
	withLegend(&ch)

	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return err
	}
	ws.svg = buf.Bytes()
	return nil
}

// Resize re-renders at a new size.
func (ws *WindSpeed) Resize(size Size) error {
	if ws.destroyed {
		return ErrDestroyed
	}
	ws.size = size.orDefault()
	return ws.render()
}

func (ws *WindSpeed) Encode(w io.Writer) error {
	if ws.destroyed {
		return ErrDestroyed
	}
	_, err := w.Write(ws.svg)
	return err
}

func (ws *WindSpeed) Destroy() {
	ws.destroyed = true
	ws.svg = nil
	ws.sources = nil
}
