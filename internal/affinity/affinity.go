// Package affinity binds goroutines to hardware threads and enumerates the
// hardware threads the process is allowed to run on.
package affinity

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUnsupported is returned by PinCurrentThread on platforms without a
// thread affinity interface.
var ErrUnsupported = errors.New("thread affinity is not supported on this platform")

// Pinner binds the calling goroutine to a hardware thread. Implementations
// are best-effort: a failed pin is reported out of band, never returned.
type Pinner interface {
	Pin(cpu int)
}

// PinnerFunc adapts a function to the Pinner interface.
type PinnerFunc func(cpu int)

// Pin calls f(cpu).
func (f PinnerFunc) Pin(cpu int) { f(cpu) }

// BestEffort pins with PinCurrentThread and logs each failing cpu once.
type BestEffort struct {
	mu     sync.Mutex
	warned map[int]bool
}

// Default is the process-wide best-effort pinner.
var Default Pinner = &BestEffort{}

// Pin implements Pinner.
func (p *BestEffort) Pin(cpu int) {
	err := PinCurrentThread(cpu)
	if err == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.warned == nil {
		p.warned = make(map[int]bool)
	}
	if p.warned[cpu] {
		return
	}
	p.warned[cpu] = true
	logrus.WithField("cpu", cpu).Warnf("could not pin thread, continuing unpinned (results may be noisy): %v", err)
}

// PinCurrentThread wires the calling goroutine to its OS thread and binds
// that thread to cpu. The goroutine stays locked for the rest of its life,
// so the thread exits with it instead of returning to the scheduler with a
// narrowed affinity mask.
func PinCurrentThread(cpu int) error {
	runtime.LockOSThread()
	if cpu < 0 || cpu >= MaxCPUs {
		return fmt.Errorf("cpu %d out of range [0, %d)", cpu, MaxCPUs)
	}
	return setAffinity(cpu)
}

// MaxCPUs is the largest cpu id range understood by the affinity calls.
const MaxCPUs = 1024

// Available returns the ascending ids of the hardware threads this process
// may be scheduled on.
func Available() ([]int, error) {
	return available()
}

// Supported reports whether PinCurrentThread can take effect here.
func Supported() bool {
	return supported
}
