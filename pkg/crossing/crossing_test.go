package crossing

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/winddash/pkg/series"
)

var t0 = time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

func hourly(values ...float64) []series.Sample {
	samples := make([]series.Sample, len(values))
	for i, v := range values {
		samples[i] = series.Sample{Time: t0.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return samples
}

func TestFind(t *testing.T) {
	table := []struct {
		name      string
		samples   []series.Sample
		threshold float64
		want      []Crossing
	}{{
		name:      "empty",
		samples:   nil,
		threshold: 1,
		want:      []Crossing{},
	}, {
		name:      "single sample",
		samples:   hourly(3),
		threshold: 1,
		want:      []Crossing{},
	}, {
		name:      "monotonic rise",
		samples:   hourly(0, 1, 2, 4),
		threshold: 3,
		want:      []Crossing{{Time: t0.Add(2*time.Hour + 30*time.Minute), Height: 3}},
	}, {
		name:      "alternating",
		samples:   hourly(0, 2, 0, 2, 0),
		threshold: 1,
		want: []Crossing{
			{Time: t0.Add(30 * time.Minute), Height: 1},
			{Time: t0.Add(90 * time.Minute), Height: 1},
			{Time: t0.Add(150 * time.Minute), Height: 1},
			{Time: t0.Add(210 * time.Minute), Height: 1},
		},
	}, {
		name:      "threshold equals a sample",
		samples:   hourly(0, 2, 4),
		threshold: 2,
		want:      []Crossing{},
	}, {
		name:      "flat segment",
		samples:   hourly(1, 1, 1),
		threshold: 1,
		want:      []Crossing{},
	}, {
		name:      "null sample",
		samples:   hourly(0, math.NaN(), 4, 0),
		threshold: 2,
		want:      []Crossing{{Time: t0.Add(2*time.Hour + 30*time.Minute), Height: 2}},
	}, {
		name:      "threshold outside range",
		samples:   hourly(0, 1, 0),
		threshold: 5,
		want:      []Crossing{},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := Find(tc.samples, tc.threshold)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("crossings (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestFindInterpolation(t *testing.T) {
	// (t0,1) (t1,4) (t2,2) with threshold 3.
	samples := hourly(1, 4, 2)
	got := Find(samples, 3)
	if len(got) != 2 {
		t.Fatalf("got %d crossings, want 2", len(got))
	}

	want0 := t0.Add(time.Duration(float64(time.Hour) * (3 - 1) / (4 - 1)))
	want1 := t0.Add(time.Hour).Add(time.Duration(float64(time.Hour) * (3 - 4) / (2 - 4)))
	if !got[0].Time.Equal(want0) {
		t.Errorf("first crossing at %s, want %s", got[0].Time, want0)
	}
	if !got[1].Time.Equal(want1) {
		t.Errorf("second crossing at %s, want %s", got[1].Time, want1)
	}
	for _, c := range got {
		if c.Height != 3 {
			t.Errorf("crossing height %f, want exactly the threshold", c.Height)
		}
	}
}

func TestFindIdempotent(t *testing.T) {
	samples := hourly(0.2, 1.8, 3.1, 2.2, 0.4, 1.1)
	first := Find(samples, 1.5)
	second := Find(samples, 1.5)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeat call differs (-first,+second):\n%s", diff)
	}
}

func ExampleFind() {
	samples := hourly(0.5, 2.5, 4.5, 2.5, 0.5)
	for _, c := range Find(samples, 3.5) {
		fmt.Println(c)
	}
	// Output:
	// 2024-06-03 01:30 @ 3.50
	// 2024-06-03 02:30 @ 3.50
}
