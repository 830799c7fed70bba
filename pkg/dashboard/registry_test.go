package dashboard

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/winddash/pkg/sunset"
	"github.com/spencer-p/winddash/pkg/visualize"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(time.Hour, Options{Threshold: 2})

	s := r.Create()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2.0, s.Snapshot().Threshold)

	got, ok := r.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)

	assert.Same(t, s, r.Lookup(s.ID))
	other := r.Lookup("not-a-session")
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, r.Len())

	_, ok = r.Get("")
	assert.False(t, ok)
}

func TestSweepClosesSessions(t *testing.T) {
	r := NewRegistry(20*time.Millisecond, Options{
		Fetcher:   &fakeFetcher{},
		Place:     sunset.Place{Lat: 46.244, Long: -1.561, Location: time.UTC},
		Threshold: 1.0,
		Size:      visualize.Size{Width: 800, Height: 240},
	})
	s := r.Create()
	require.NoError(t, s.Refresh(context.Background(), Query{Date: "2024-06-03"}))
	require.NotEmpty(t, s.Snapshot().TideSVG)
	s.mu.Lock()
	charts := []visualize.Chart{s.speed, s.direction, s.tide}
	s.mu.Unlock()
	s.Resize(640, 200)

	assert.Eventually(t, func() bool { return r.Sweep() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, r.Len())

	for _, c := range charts {
		assert.ErrorIs(t, c.Encode(io.Discard), visualize.ErrDestroyed)
	}
	assert.Empty(t, s.Snapshot().TideSVG)
	s.debounce.mu.Lock()
	assert.Nil(t, s.debounce.timer, "pending resize dropped")
	s.debounce.mu.Unlock()
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs, last atomic.Int32
	for i := int32(1); i <= 5; i++ {
		i := i
		d.Trigger(func() {
			runs.Add(1)
			last.Store(i)
		})
	}
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, runs.Load())
	assert.EqualValues(t, 5, last.Load())

	d.Trigger(func() { runs.Add(1) })
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, runs.Load())
}
