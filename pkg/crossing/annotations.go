package crossing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/series"
)

const (
	// KeyPrefix marks annotations owned by Sync. Nothing else may use it.
	KeyPrefix = "crossing-"
	// NowKey is the single marker for the current time.
	NowKey = "now"

	// LabelOffset lifts crossing labels above their marker, in pixels.
	LabelOffset = 14
	labelFormat = "15:04"
)

// Kind tells a renderer how to draw an annotation.
type Kind int

const (
	Point Kind = iota
	Label
	Marker
)

// Annotation is a renderer independent overlay anchored at a time and height.
type Annotation struct {
	Kind    Kind      `json:"kind"`
	Time    time.Time `json:"time"`
	Height  float64   `json:"height"`
	Text    string    `json:"text,omitempty"`
	OffsetY int       `json:"offset_y,omitempty"`
}

// Annotations is the live collection a chart draws from, keyed by id.
type Annotations map[string]Annotation

// Target is a chart whose annotations can be replaced.
type Target interface {
	// Annotations returns the live collection. Changes are visible on the
	// next Redraw.
	Annotations() Annotations
	// Redraw re-renders the chart, with or without a transition.
	Redraw(animate bool)
}

// Sync replaces every crossing annotation on t with markers and time labels
// for crossings, then redraws without animation so a dragged line and its
// markers never drift apart. Labels are formatted in loc.
func Sync(t Target, crossings []Crossing, loc *time.Location) {
	live := t.Annotations()
	for key := range live {
		if strings.HasPrefix(key, KeyPrefix) {
			delete(live, key)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	for i, c := range crossings {
		live[fmt.Sprintf("%spoint-%d", KeyPrefix, i)] = Annotation{
			Kind:   Point,
			Time:   c.Time,
			Height: c.Height,
		}
		live[fmt.Sprintf("%slabel-%d", KeyPrefix, i)] = Annotation{
			Kind:    Label,
			Time:    c.Time,
			Height:  c.Height,
			Text:    c.Time.In(loc).Format(labelFormat),
			OffsetY: LabelOffset,
		}
	}
	t.Redraw(false)
}

// Now places the current time marker on the series, or removes it when now
// is outside the series. It does not redraw.
func Now(t Target, s series.Series, now time.Time) {
	live := t.Annotations()
	h, ok := s.At(now)
	if !ok {
		delete(live, NowKey)
		return
	}
	live[NowKey] = Annotation{
		Kind:   Marker,
		Time:   now,
		Height: h,
		Text:   "now",
	}
}

// Sorted returns the crossing annotations of a in chronological order, points
// before labels at equal times.
func (a Annotations) Sorted() []Annotation {
	var out []Annotation
	for key, an := range a {
		if strings.HasPrefix(key, KeyPrefix) {
			out = append(out, an)
		}
	}
	sortAnnotations(out)
	return out
}

func sortAnnotations(as []Annotation) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].Time.Equal(as[j].Time) {
			return as[i].Time.Before(as[j].Time)
		}
		return as[i].Kind < as[j].Kind
	})
}
