// Package harness drives a protocol over every pair of hardware threads and
// reduces the samples into per-pair and global statistics.
package harness

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/corelat/internal/clock"
	"github.com/wesleyorama2/corelat/internal/protocol"
)

// ErrTooFewCores is returned when fewer than two hardware threads are given.
var ErrTooFewCores = errors.New("at least two hardware threads are required")

// Sample runs p on pair and returns samples values. The protocol is asked
// for one extra sample first; it pays for cold caches, branch predictors
// and page faults and is dropped.
func Sample(p protocol.Protocol, pair protocol.Pair, clk *clock.Clock, iterations, samples uint32) ([]float64, error) {
	got := p.Run(pair, clk, iterations, samples+1)
	if len(got) != int(samples)+1 {
		return nil, fmt.Errorf("%s returned %d samples for pair %s, want %d",
			p.Name(), len(got), pair, samples+1)
	}
	return got[1:], nil
}

// Observer is notified as the matrix is filled, row by row. Cell is called
// for every (i, j) in order; stat is nil for pairs that are not measured.
type Observer interface {
	RowStart(i int)
	Cell(i, j int, stat *PairStat)
	RowEnd(i int)
}

// Config describes one harness run.
type Config struct {
	// Cores are the hardware thread ids; index order defines the matrix.
	Cores      []int
	Iterations uint32
	Samples    uint32
	// Observer is optional.
	Observer Observer
}

// Extreme identifies the pair holding the global minimum or maximum mean.
type Extreme struct {
	I    int           `json:"i" yaml:"i"`
	J    int           `json:"j" yaml:"j"`
	Pair protocol.Pair `json:"pair" yaml:"pair"`
	Stat PairStat      `json:"stat" yaml:"stat"`
}

// Result is a fully populated measurement matrix.
type Result struct {
	Protocol   string
	Title      string
	Unit       protocol.Unit
	Symmetric  bool
	Cores      []int
	Iterations uint32
	Samples    uint32
	Tensor     *Tensor
	// Stats[i][j] is nil for pairs that were not measured.
	Stats [][]*PairStat
	Min   *Extreme
	Max   *Extreme
	// Mean is the grand mean over every measured sample, NaN if none.
	Mean float64
}

// ShouldMeasure reports whether pair (i, j) is part of the matrix for a
// protocol with the given symmetry. The diagonal never is; symmetric
// protocols only fill the lower triangle.
func ShouldMeasure(i, j int, symmetric bool) bool {
	if i == j {
		return false
	}
	if symmetric {
		return i > j
	}
	return true
}

// Run benchmarks p across cfg.Cores.
func Run(p protocol.Protocol, clk *clock.Clock, cfg Config) (*Result, error) {
	if len(cfg.Cores) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewCores, len(cfg.Cores))
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations per sample must be at least 1")
	}
	if cfg.Samples < 1 {
		return nil, fmt.Errorf("number of samples must be at least 1")
	}

	n := len(cfg.Cores)
	res := &Result{
		Protocol:   p.Name(),
		Title:      p.Title(),
		Unit:       p.Unit(),
		Symmetric:  p.Symmetric(),
		Cores:      append([]int(nil), cfg.Cores...),
		Iterations: cfg.Iterations,
		Samples:    cfg.Samples,
		Tensor:     NewTensor(n, int(cfg.Samples)),
		Stats:      make([][]*PairStat, n),
	}

	log := logrus.WithField("protocol", p.Name())
	for i := 0; i < n; i++ {
		res.Stats[i] = make([]*PairStat, n)
		if cfg.Observer != nil {
			cfg.Observer.RowStart(i)
		}
		for j := 0; j < n; j++ {
			if !ShouldMeasure(i, j, res.Symmetric) {
				if cfg.Observer != nil {
					cfg.Observer.Cell(i, j, nil)
				}
				continue
			}

			pair := protocol.Pair{First: cfg.Cores[i], Second: cfg.Cores[j]}
			values, err := Sample(p, pair, clk, cfg.Iterations, cfg.Samples)
			if err != nil {
				return nil, err
			}
			res.Tensor.set(i, j, values)

			st := Summarize(res.Tensor.Pair(i, j))
			res.Stats[i][j] = &st
			log.WithFields(logrus.Fields{
				"pair":   pair.String(),
				"mean":   st.Mean,
				"stderr": st.StdErr,
			}).Debug("pair measured")

			if cfg.Observer != nil {
				cfg.Observer.Cell(i, j, &st)
			}
		}
		if cfg.Observer != nil {
			cfg.Observer.RowEnd(i)
		}
	}

	res.Min, res.Max = extremes(res)
	res.Mean = GrandMean(res.Tensor)
	return res, nil
}

// extremes scans the matrix in row-major order; on ties the first pair
// encountered is kept.
func extremes(res *Result) (lo, hi *Extreme) {
	for i, row := range res.Stats {
		for j, st := range row {
			if st == nil || math.IsNaN(st.Mean) {
				continue
			}
			e := &Extreme{
				I:    i,
				J:    j,
				Pair: protocol.Pair{First: res.Cores[i], Second: res.Cores[j]},
				Stat: *st,
			}
			if lo == nil || st.Mean < lo.Stat.Mean {
				lo = e
			}
			if hi == nil || st.Mean > hi.Stat.Mean {
				hi = e
			}
		}
	}
	return lo, hi
}

// Means returns the per-pair mean matrix, NaN where unmeasured.
func (r *Result) Means() [][]float64 {
	out := make([][]float64, len(r.Stats))
	for i, row := range r.Stats {
		out[i] = make([]float64, len(row))
		for j, st := range row {
			if st == nil {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = st.Mean
		}
	}
	return out
}
