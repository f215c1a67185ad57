package affinity

import (
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	cpus, err := Available()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)
	assert.True(t, sort.IntsAreSorted(cpus))
	for _, cpu := range cpus {
		assert.GreaterOrEqual(t, cpu, 0)
		assert.Less(t, cpu, MaxCPUs)
	}
}

// inThread runs fn on a fresh goroutine so a locked OS thread is discarded
// afterwards instead of leaking into the test runner.
func inThread(fn func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
	wg.Wait()
}

func TestPinCurrentThread(t *testing.T) {
	cpus, err := Available()
	require.NoError(t, err)

	var pinErr error
	inThread(func() { pinErr = PinCurrentThread(cpus[len(cpus)-1]) })
	if Supported() {
		assert.NoError(t, pinErr)
	} else {
		assert.ErrorIs(t, pinErr, ErrUnsupported)
	}
}

func TestPinCurrentThread_OutOfRange(t *testing.T) {
	var errs []error
	inThread(func() {
		errs = append(errs, PinCurrentThread(-1), PinCurrentThread(MaxCPUs))
	})
	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestBestEffort_WarnsOncePerCPU(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	p := &BestEffort{}
	inThread(func() {
		p.Pin(-1)
		p.Pin(-1)
		p.Pin(MaxCPUs + 5)
	})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		assert.Contains(t, e.Message, "continuing unpinned")
	}
	assert.Equal(t, -1, entries[0].Data["cpu"])
}

func TestPinnerFunc(t *testing.T) {
	var got []int
	var p Pinner = PinnerFunc(func(cpu int) { got = append(got, cpu) })
	p.Pin(3)
	p.Pin(1)
	assert.Equal(t, []int{3, 1}, got)
}
