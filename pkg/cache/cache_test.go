package cache

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTimed(t *testing.T) {
	c := NewTimed[[]byte](5 * time.Minute)

	tstart := time.Now()

	c.set("key", []byte("value"), tstart)

	_, ok := c.get("key", tstart.Add(time.Minute))
	if !ok {
		t.Errorf("failed to get key that should not be expired")
	}

	_, ok = c.get("key", tstart.Add(10*time.Minute))
	if ok {
		t.Errorf("succeeded in getting expired key")
	}

	_, ok = c.get("key", tstart.Add(time.Minute))
	if ok {
		t.Errorf("succeeded in getting key that was previously evicted")
	}
}

func TestTimedTouch(t *testing.T) {
	c := NewTimed[int](5 * time.Minute)
	tstart := time.Now()
	c.set("session", 42, tstart)

	if !c.touch("session", tstart.Add(4*time.Minute)) {
		t.Fatalf("touch missed a live key")
	}
	if v, ok := c.get("session", tstart.Add(8*time.Minute)); !ok || v != 42 {
		t.Errorf("touched key expired early: %v, %v", v, ok)
	}
	if c.touch("session", tstart.Add(20*time.Minute)) {
		t.Errorf("touch revived an expired key")
	}
}

func TestTimedSweep(t *testing.T) {
	c := NewTimed[string](time.Minute)
	tstart := time.Now()
	c.set("old", "a", tstart)
	c.set("new", "b", tstart.Add(2*time.Minute))

	if n := c.sweep(tstart.Add(150 * time.Second)); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("got %d elements left, want 1", c.Len())
	}
}

func TestTimedOnEvict(t *testing.T) {
	c := NewTimed[string](time.Minute)
	var evicted []string
	c.OnEvict(func(key, value string) {
		evicted = append(evicted, key+"="+value)
	})
	tstart := time.Now()
	c.set("swept", "a", tstart)
	c.set("read", "b", tstart)
	c.set("touched", "c", tstart)
	c.set("fresh", "d", tstart.Add(2*time.Minute))

	if _, ok := c.get("read", tstart.Add(90*time.Second)); ok {
		t.Errorf("got expired key")
	}
	if c.touch("touched", tstart.Add(90*time.Second)) {
		t.Errorf("touched expired key")
	}
	c.sweep(tstart.Add(90 * time.Second))
	if _, ok := c.get("fresh", tstart.Add(150*time.Second)); !ok {
		t.Errorf("lost a live key")
	}

	want := []string{"read=b", "touched=c", "swept=a"}
	if diff := cmp.Diff(want, evicted); diff != "" {
		t.Errorf("evicted (-want,+got):\n%s", diff)
	}
}
