package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/wesleyorama2/corelat/internal/atomicx"
)

// ErrImplausibleOverhead is wrapped by CalibrationError.
var ErrImplausibleOverhead = errors.New("clock read overhead outside plausible range")

// Bounds is the plausible per-read cost band, in nanoseconds.
type Bounds struct {
	MinPerRead float64 `json:"minPerRead" yaml:"minPerRead"`
	MaxPerRead float64 `json:"maxPerRead" yaml:"maxPerRead"`
}

// DefaultBounds returns the band used when none is configured.
func DefaultBounds() Bounds {
	return Bounds{
		MinPerRead: 0.1,
		MaxPerRead: 1000,
	}
}

// Calibration is the result of measuring the clock's own read cost.
type Calibration struct {
	Reads    uint32
	Overhead time.Duration
	PerRead  float64 // nanoseconds
}

// CalibrationError reports a per-read cost outside the plausible band.
type CalibrationError struct {
	PerRead float64
	Bounds  Bounds
}

func (e *CalibrationError) Error() string {
	switch {
	case e.PerRead < e.Bounds.MinPerRead:
		return fmt.Sprintf("clock read costs %.3fns, faster than the %.3fns floor: the clock is not advancing at a usable resolution",
			e.PerRead, e.Bounds.MinPerRead)
	default:
		return fmt.Sprintf("clock read costs %.3fns, slower than the %.3fns ceiling: latency figures would be dominated by the clock",
			e.PerRead, e.Bounds.MaxPerRead)
	}
}

func (e *CalibrationError) Unwrap() error {
	return ErrImplausibleOverhead
}

// ReadOverhead returns the time taken by n back-to-back clock reads. Every
// reading passes through an opacity barrier so none of them is elided.
func ReadOverhead(c *Clock, n uint32) time.Duration {
	if n == 0 {
		return 0
	}
	start := c.Now()
	for i := uint32(1); i < n; i++ {
		atomicx.Opaque(uint64(c.Now()))
	}
	end := c.Now()
	return c.Delta(start, end)
}

// Calibrate measures ReadOverhead for n reads over the given number of
// rounds, keeps the fastest round, and checks the per-read cost against b.
func Calibrate(c *Clock, n uint32, rounds int, b Bounds) (Calibration, error) {
	if n == 0 {
		return Calibration{}, fmt.Errorf("calibration needs at least one read")
	}
	if rounds < 1 {
		rounds = 1
	}

	best := time.Duration(-1)
	for r := 0; r < rounds; r++ {
		d := ReadOverhead(c, n)
		if best < 0 || d < best {
			best = d
		}
	}

	cal := Calibration{
		Reads:    n,
		Overhead: best,
		PerRead:  float64(best.Nanoseconds()) / float64(n),
	}
	if cal.PerRead < b.MinPerRead || cal.PerRead > b.MaxPerRead {
		return cal, &CalibrationError{PerRead: cal.PerRead, Bounds: b}
	}
	return cal, nil
}
