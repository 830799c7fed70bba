package visualize

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
)

const (
	laneHeight  = 36
	labelWidth  = 90
	arrowLength = 12
)

// WindDirection draws one lane of arrows per source. Each arrow points up
// when the direction is 0° and is rotated clockwise by the direction.
type WindDirection struct {
	width     int
	window    Window
	sources   []series.Series
	destroyed bool
}

// NewWindDirection lays out lanes across window. Series are named after their
// payload column, e.g. winddirection_10m_gfs_seamless.
func NewWindDirection(width int, window Window, sources ...series.Series) (*WindDirection, error) {
	if width <= 0 {
		width = DefaultSize.Width
	}
	if !window.valid() {
		return nil, ErrNoData
	}
	return &WindDirection{width: width, window: window, sources: sources}, nil
}

// Resize changes the width of the lanes.
func (wd *WindDirection) Resize(size Size) error {
	if wd.destroyed {
		return ErrDestroyed
	}
	wd.width = size.orDefault().Width
	return nil
}

func (wd *WindDirection) Encode(w io.Writer) error {
	if wd.destroyed {
		return ErrDestroyed
	}

	var err error
	write := func(_ int, nexterr error) {
		if nexterr != nil && err == nil {
			err = nexterr
		}
	}

	height := laneHeight * len(wd.sources)
	write(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" class="wind-direction" xmlns="http://www.w3.org/2000/svg">`, wd.width, height))

	for lane, s := range wd.sources {
		source := strings.TrimPrefix(s.Name, payload.WindDirectionPrefix)
		st := styleFor(source)
		y := lane*laneHeight + laneHeight/2

		write(fmt.Fprintf(w, `<text class="lane" x="4" y="%d" font-size="12" dominant-baseline="middle">%s</text>`,
			y, html.EscapeString(st.label)))

		for _, sm := range s.Samples {
			if sm.Null() {
				continue
			}
			x, ok := wd.timeToX(sm.Time)
			if !ok {
				continue
			}
			write(fmt.Fprintf(w, `<g class="wind-arrow" transform="translate(%d,%d) rotate(%.0f)">`, x, y, sm.Value))
			write(fmt.Fprintf(w, `<title>%.0f°</title>`, sm.Value))
			write(fmt.Fprintf(w, `<path d="M 0,%d L %d,%d L 0,%d L %d,%d z" fill="%s"/>`,
				-arrowLength/2,
				arrowLength/3, arrowLength/2,
				arrowLength/4,
				-arrowLength/3, arrowLength/2,
				st.color.String()))
			write(fmt.Fprintf(w, `</g>`))
		}
	}

	write(fmt.Fprintf(w, `</svg>`))
	return err
}

// timeToX maps t into the drawable area right of the lane labels. ok is false
// when t is outside the visible window.
func (wd *WindDirection) timeToX(t time.Time) (int, bool) {
	if !wd.window.contains(t) {
		return 0, false
	}
	span := wd.window.End.Sub(wd.window.Start)
	plot := wd.width - labelWidth - arrowLength
	x := labelWidth + int(float64(t.Sub(wd.window.Start))/float64(span)*float64(plot))
	return x, true
}

func (wd *WindDirection) Destroy() {
	wd.destroyed = true
	wd.sources = nil
}
