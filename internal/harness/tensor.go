package harness

import "math"

// Tensor is a dense cores × cores × samples array of measurements. Every
// cell starts as NaN, the marker for a pair that was never measured.
type Tensor struct {
	cores   int
	samples int
	data    []float64
}

// NewTensor returns a NaN-filled tensor.
func NewTensor(cores, samples int) *Tensor {
	data := make([]float64, cores*cores*samples)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Tensor{cores: cores, samples: samples, data: data}
}

// Cores is the size of the first two dimensions.
func (t *Tensor) Cores() int { return t.cores }

// Samples is the size of the last dimension.
func (t *Tensor) Samples() int { return t.samples }

// At returns one sample.
func (t *Tensor) At(i, j, s int) float64 {
	return t.data[t.offset(i, j)+s]
}

// Pair returns the samples of pair (i, j). The slice aliases the tensor.
func (t *Tensor) Pair(i, j int) []float64 {
	off := t.offset(i, j)
	return t.data[off : off+t.samples : off+t.samples]
}

// Measured reports whether pair (i, j) holds any sample.
func (t *Tensor) Measured(i, j int) bool {
	for _, v := range t.Pair(i, j) {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Values returns every measured sample, in index order.
func (t *Tensor) Values() []float64 {
	out := make([]float64, 0, len(t.data))
	for _, v := range t.data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *Tensor) set(i, j int, values []float64) {
	copy(t.Pair(i, j), values)
}

func (t *Tensor) offset(i, j int) int {
	return (i*t.cores + j) * t.samples
}
