package dashboard

import (
	"sync"
	"time"
)

// ResizeQuiet is how long resizes must stop before charts are redrawn.
const ResizeQuiet = 250 * time.Millisecond

// Debouncer runs only the last of a burst of calls, once the calls have been
// quiet for a while.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules f, replacing anything scheduled before.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, f)
}

// Stop drops whatever is scheduled.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
