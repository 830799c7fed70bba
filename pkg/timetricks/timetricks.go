// Package timetricks handles calendar days for date navigation and range
// queries.
package timetricks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

const (
	// DayFormat is the YYYY-MM-DD layout used by every query parameter.
	DayFormat = "2006-01-02"
	uniqueFmt = "20060102"
)

var (
	ErrMissingDate = errors.New("missing date")
	ErrEmptyRange  = errors.New("end date before start date")
)

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(uniqueFmt) == t2.Format(uniqueFmt)
}

func Today(t time.Time) bool {
	return SameDay(t, time.Now().In(t.Location()))
}

func Tomorrow(t time.Time) bool {
	return Today(t.AddDate(0, 0, -1))
}

// TrimClock returns midnight of t's calendar day in t's location.
func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SetClock(t time.Time, hour, minute time.Duration) time.Time {
	return TrimClock(t).Add(hour*time.Hour + minute*time.Minute)
}

// ParseDay reads a YYYY-MM-DD date as midnight in loc. An empty string is
// ErrMissingDate.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	t, err := time.ParseInLocation(DayFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q not in %s format", s, DayFormat)
	}
	return t, nil
}

// FormatDay is the inverse of ParseDay.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// StepDays moves a day forward or backward by n calendar days, staying on
// midnight across DST changes.
func StepDays(day time.Time, n int) time.Time {
	return TrimClock(day).AddDate(0, 0, n)
}

// DayBounds returns the start of day and the start of the following day.
func DayBounds(day time.Time) (start, end time.Time) {
	start = TrimClock(day)
	return start, start.AddDate(0, 0, 1)
}

// PeriodEnd resolves an ISO 8601 period such as P7D relative to start and
// returns the calendar day it lands on.
func PeriodEnd(start time.Time, period string) (time.Time, error) {
	d, err := duration.Parse(period)
	if err != nil {
		return time.Time{}, fmt.Errorf("period %q: %w", period, err)
	}
	end := start.AddDate(int(d.Years), int(d.Months), int(d.Weeks*7+d.Days))
	end = end.Add(time.Duration(d.Hours*float64(time.Hour)) +
		time.Duration(d.Minutes*float64(time.Minute)) +
		time.Duration(d.Seconds*float64(time.Second)))
	return TrimClock(end), nil
}

// CheckRange validates an inclusive day range.
func CheckRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%s to %s: %w", FormatDay(start), FormatDay(end), ErrEmptyRange)
	}
	return nil
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(uniqueFmt)
}
