// Package clock wraps the runtime's monotonic clock as opaque raw ticks.
//
// Reading it costs a few tens of nanoseconds at most, cheap enough to sit
// inside the protocols' timed loops. Ticks are only meaningful relative to
// one another: callers take a Delta, or a Since against a shared reference,
// and never interpret the raw value.
package clock

import (
	"errors"
	"time"
	_ "unsafe" // for go:linkname
)

// ErrUnsupported is returned when the platform clock does not advance
// monotonically.
var ErrUnsupported = errors.New("monotonic high-resolution clock unavailable")

//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Nanotime returns nanoseconds since an arbitrary start point.
type Nanotime func() int64

// Tick is an opaque raw clock reading.
type Tick uint64

// Since returns the ticks elapsed from ref to t, or zero when t precedes ref.
func (t Tick) Since(ref Tick) Tick {
	if t < ref {
		return 0
	}
	return t - ref
}

// Clock reads raw ticks and converts tick deltas into durations.
type Clock struct {
	nanotime Nanotime
}

// probeReads bounds how long New waits to see the clock advance.
const probeReads = 1 << 20

// New returns a Clock backed by the runtime monotonic clock. It fails with
// ErrUnsupported when the clock does not advance or goes backwards.
func New() (*Clock, error) {
	return NewWithSource(nanotime)
}

// NewWithSource returns a Clock backed by fn after checking that fn
// advances monotonically.
func NewWithSource(fn Nanotime) (*Clock, error) {
	c := &Clock{nanotime: fn}
	if err := c.probe(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clock) probe() error {
	first := c.nanotime()
	prev := first
	for i := 0; i < probeReads; i++ {
		now := c.nanotime()
		if now < prev {
			return ErrUnsupported
		}
		if now != first {
			return nil
		}
		prev = now
	}
	return ErrUnsupported
}

// Now returns the current raw tick.
func (c *Clock) Now() Tick {
	return Tick(c.nanotime())
}

// Delta converts the span from start to end into a duration. Readings taken
// on different cores may be slightly out of step, so an end that precedes
// start yields zero rather than a negative duration.
func (c *Clock) Delta(start, end Tick) time.Duration {
	return time.Duration(end.Since(start))
}
