package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func ptr(f float64) *float64 { return &f }

func TestFromColumns(t *testing.T) {
	loc := time.UTC
	table := []struct {
		name    string
		times   []string
		values  []*float64
		want    []Sample
		wantErr error
	}{{
		name:   "hourly with a gap",
		times:  []string{"2024-05-01T00:00", "2024-05-01T01:00", "2024-05-01T02:00"},
		values: []*float64{ptr(1.5), nil, ptr(2)},
		want: []Sample{
			{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, loc), Value: 1.5},
			{Time: time.Date(2024, 5, 1, 1, 0, 0, 0, loc), Value: math.NaN()},
			{Time: time.Date(2024, 5, 1, 2, 0, 0, 0, loc), Value: 2},
		},
	}, {
		name:    "length mismatch",
		times:   []string{"2024-05-01T00:00"},
		values:  []*float64{ptr(1), ptr(2)},
		wantErr: ErrLength,
	}, {
		name:    "duplicate timestamp",
		times:   []string{"2024-05-01T00:00", "2024-05-01T00:00"},
		values:  []*float64{ptr(1), ptr(2)},
		wantErr: ErrUnordered,
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromColumns("tide", "m", tc.times, tc.values, loc)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got err %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Samples, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("samples (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestNullPolicy(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := Series{Name: "x", Samples: []Sample{
		{Time: t0, Value: 1},
		{Time: t0.Add(time.Hour), Value: math.NaN()},
		{Time: t0.Add(2 * time.Hour), Value: 3},
	}}

	if got := KeepNulls.Apply(s).Len(); got != 3 {
		t.Errorf("keep: got %d samples, want 3", got)
	}
	dropped := DropNulls.Apply(s)
	if got := dropped.Len(); got != 2 {
		t.Errorf("drop: got %d samples, want 2", got)
	}
	if s.Len() != 3 {
		t.Errorf("Apply modified its input")
	}

	if got := len(s.Runs()); got != 2 {
		t.Errorf("got %d runs, want 2", got)
	}

	p, err := ParseNullPolicy("DROP")
	if err != nil || p != DropNulls {
		t.Errorf("ParseNullPolicy(DROP) = %v, %v", p, err)
	}
	if _, err := ParseNullPolicy("interpolate"); err == nil {
		t.Errorf("expected error for unknown policy")
	}
}

func TestAt(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := Series{Samples: []Sample{
		{Time: t0, Value: 0},
		{Time: t0.Add(time.Hour), Value: 2},
		{Time: t0.Add(2 * time.Hour), Value: math.NaN()},
	}}

	if v, ok := s.At(t0.Add(30 * time.Minute)); !ok || v != 1 {
		t.Errorf("At(0:30) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := s.At(t0.Add(90 * time.Minute)); ok {
		t.Errorf("At next to a null sample should not be ok")
	}
	if _, ok := s.At(t0.Add(-time.Minute)); ok {
		t.Errorf("At before the series should not be ok")
	}
}
