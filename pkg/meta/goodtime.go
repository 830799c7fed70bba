package meta

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/timetricks"
)

const (
	dayFmt  = "01/02"
	timeFmt = "3:04 PM"
)

// Window is a stretch of time the tide stays on one side of the threshold.
type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Below     bool      `json:"below"`
	Threshold float64   `json:"threshold"`

	// Daylight is how much of the window falls between sunrise and sunset.
	Daylight time.Duration `json:"daylight"`
	Reasons  []string      `json:"reasons"`

	// PrettyTime is a human-readable version of the time, relative to the
	// current date. Optional.
	PrettyTime string `json:"pretty_time,omitempty"`
}

func (w *Window) String() string {
	return fmt.Sprintf("%s, %s",
		w.prettyTime(),
		strings.Join(w.Reasons, " and "))
}

func (w *Window) prettyTime() string {
	return fmt.Sprintf("%s at %s", day(w.Start), w.TimeRange())
}

// UpdatePrettyTime makes sure that the window's pretty time is set.
func (w *Window) UpdatePrettyTime() {
	if w.PrettyTime == "" {
		w.PrettyTime = w.prettyTime()
	}
}

// TimeRange is PrettyTime without the date.
func (w *Window) TimeRange() string {
	until := ""
	if w.End.After(w.Start) {
		until = fmt.Sprintf(" until %s", w.End.Format(timeFmt))
	}
	return fmt.Sprintf("%s%s", w.Start.Format(timeFmt), until)
}

// Duration of the window.
func (w *Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w *Window) MarshalJSON() ([]byte, error) {
	w.UpdatePrettyTime()
	// Dereference so json does not call back into this method.
	return json.Marshal(*w)
}

// day names t relative to the current date: Today, Tomorrow, a weekday
// within the week, or a month/day.
func day(t time.Time) string {
	switch {
	case timetricks.Today(t):
		return "Today"
	case timetricks.Tomorrow(t):
		return "Tomorrow"
	}
	now := time.Now().In(t.Location())
	if t.After(now) && t.Before(timetricks.TrimClock(now).AddDate(0, 0, 7)) {
		return t.Weekday().String()
	}
	return t.Format(dayFmt)
}
