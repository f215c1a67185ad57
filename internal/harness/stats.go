package harness

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
	"gonum.org/v1/gonum/stat"
)

// DisplayStdDevCap bounds the standard deviation used for the matrix cells,
// so one noisy pair cannot blow up the column width.
const DisplayStdDevCap = 99.0

// Histogram range for percentile estimates. Samples are scaled by
// histogramScale (three decimal places of ns or GB/s) before recording.
const (
	histogramScale   = 1000
	histogramMin     = 1
	histogramMax     = 1_000_000_000_000
	histogramSigFigs = 3
)

// PairStat summarizes the samples of one pair.
type PairStat struct {
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	// StdErr is the sample standard deviation over √N, the spread of the
	// mean under the central limit theorem.
	StdErr float64 `json:"stderr" yaml:"stderr"`
	P50    float64 `json:"p50" yaml:"p50"`
	P99    float64 `json:"p99" yaml:"p99"`
}

// DisplayStdErr is StdErr computed from a standard deviation capped at
// DisplayStdDevCap.
func (s PairStat) DisplayStdErr() float64 {
	if s.N < 1 {
		return 0
	}
	return math.Min(s.StdDev, DisplayStdDevCap) / math.Sqrt(float64(s.N))
}

// Summarize computes PairStat over the non-NaN entries of values.
func Summarize(values []float64) PairStat {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}

	s := PairStat{N: len(clean)}
	switch len(clean) {
	case 0:
		s.Mean = math.NaN()
		return s
	case 1:
		s.Mean = clean[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(clean, nil)
		s.StdErr = s.StdDev / math.Sqrt(float64(len(clean)))
	}
	s.P50, s.P99 = percentiles(clean)
	return s
}

// percentiles records the samples into an HDR histogram and reads back the
// median and 99th percentile.
func percentiles(values []float64) (p50, p99 float64) {
	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	for _, v := range values {
		scaled := int64(math.Round(v * histogramScale))
		// Clamp to valid range
		if scaled < histogramMin {
			scaled = histogramMin
		}
		if scaled > histogramMax {
			scaled = histogramMax
		}
		_ = hist.RecordValue(scaled)
	}
	p50 = float64(hist.ValueAtQuantile(50)) / histogramScale
	p99 = float64(hist.ValueAtQuantile(99)) / histogramScale
	return p50, p99
}

// GrandMean is the mean of every measured sample in t, NaN when there are none.
func GrandMean(t *Tensor) float64 {
	values := t.Values()
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
