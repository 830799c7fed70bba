package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/timetricks"
)

// MaxDays bounds how many days one refresh may span.
const MaxDays = 16

// Query selects the days a dashboard shows: a single Date, or an inclusive
// Start to End range. Dates are YYYY-MM-DD.
type Query struct {
	Date  string `json:"date,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Ranged reports whether the query is a start to end range.
func (q Query) Ranged() bool {
	return q.Start != "" || q.End != ""
}

// Days resolves the query to the midnights of every day it covers.
func (q Query) Days(loc *time.Location) ([]time.Time, error) {
	if !q.Ranged() {
		day, err := timetricks.ParseDay(q.Date, loc)
		if err != nil {
			return nil, err
		}
		return []time.Time{day}, nil
	}

	start, err := timetricks.ParseDay(q.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := timetricks.ParseDay(q.End, loc)
	if err != nil {
		return nil, err
	}
	if err := timetricks.CheckRange(start, end); err != nil {
		return nil, err
	}

	var days []time.Time
	for d := start; !d.After(end); d = timetricks.StepDays(d, 1) {
		if len(days) == MaxDays {
			return nil, fmt.Errorf("range longer than %d days", MaxDays)
		}
		days = append(days, d)
	}
	return days, nil
}

// Step moves every date of the query by n days. Unset dates stay unset.
func (q Query) Step(n int, loc *time.Location) Query {
	step := func(s string) string {
		day, err := timetricks.ParseDay(s, loc)
		if err != nil {
			return s
		}
		return timetricks.FormatDay(timetricks.StepDays(day, n))
	}
	return Query{Date: step(q.Date), Start: step(q.Start), End: step(q.End)}
}

// prompt is the status shown for a query that cannot be fetched.
func (q Query) prompt(err error) string {
	if errors.Is(err, timetricks.ErrMissingDate) {
		if q.Ranged() {
			return "Please select a start and end date."
		}
		return "Please select a date."
	}
	return errorStatus(err.Error())
}

// errorStatus joins parts into one "Error: ...." sentence. Details that
// already end in a period do not get a second one.
func errorStatus(parts ...string) string {
	return "Error: " + strings.TrimRight(strings.Join(parts, ": "), ". ") + "."
}

func (q Query) String() string {
	if q.Ranged() {
		return strings.Join([]string{q.Start, q.End}, "..")
	}
	return q.Date
}
