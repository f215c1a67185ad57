package protocol

import (
	"unsafe"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/atomicx"
	"github.com/wesleyorama2/corelat/internal/clock"
)

const memStreamTitle = "Memory bandwidth. One writer and one reader streaming page-aligned chunks"

const (
	// PageSize is the alignment of every streamed chunk.
	PageSize = 4096
	// GiB is the gigabyte used for throughput figures.
	GiB = 1 << 30
)

const (
	dataProduced = false
	dataConsumed = true
)

// MemStream measures bulk transfer throughput. The producer fills a chunk
// once the consumer has released it; the consumer reads every word of the
// chunk before handing it back.
type MemStream struct {
	pin    affinity.Pinner
	size   int
	chunks int
}

// NewMemStream returns the memory streaming protocol.
func NewMemStream(opts Options) *MemStream {
	opts = opts.withDefaults()
	return &MemStream{pin: opts.Pinner, size: opts.MemSize, chunks: opts.MemChunks}
}

func (*MemStream) Name() string    { return "mem" }
func (*MemStream) Title() string   { return memStreamTitle }
func (*MemStream) Unit() Unit      { return GigabytesPerSecond }
func (*MemStream) Symmetric() bool { return false }

type memStreamState struct {
	barrier *atomicx.Barrier
	flags   []atomicx.Flag
	data    [][]byte
	words   [][]uint64
	// Total bytes across all chunks.
	size int
}

func newMemStreamState(size, chunks int) *memStreamState {
	data := alignedChunks(size, chunks)
	words := make([][]uint64, len(data))
	total := 0
	for i, c := range data {
		words[i] = unsafe.Slice((*uint64)(unsafe.Pointer(unsafe.SliceData(c))), len(c)/8)
		total += len(c)
	}

	flags := make([]atomicx.Flag, len(data)+1)[1:]
	for i := range flags {
		flags[i].Store(dataConsumed, atomicx.SeqCst)
	}

	return &memStreamState{
		barrier: atomicx.NewBarrier(2),
		flags:   flags,
		data:    data,
		words:   words,
		size:    total,
	}
}

// alignedChunks carves size bytes into n page-aligned chunks of equal,
// word-multiple length.
func alignedChunks(size, n int) [][]byte {
	if n < 1 {
		n = 1
	}
	per := size / n
	per -= per % 8
	if per < 8 {
		per = 8
	}
	stride := (per + PageSize - 1) / PageSize * PageSize

	buf := make([]byte, stride*n+PageSize)
	off := int((PageSize - uintptr(unsafe.Pointer(unsafe.SliceData(buf)))%PageSize) % PageSize)

	chunks := make([][]byte, n)
	for i := range chunks {
		start := off + i*stride
		chunks[i] = buf[start : start+per : start+per]
	}
	return chunks
}

// fill sets every byte of b to v.
func fill(b []byte, v byte) {
	if len(b) == 0 {
		return
	}
	b[0] = v
	for n := 1; n < len(b); n *= 2 {
		copy(b[n:], b[:n])
	}
}

// drain reads every word of w.
func drain(w []uint64) {
	var acc uint64
	for _, x := range w {
		acc ^= x
	}
	atomicx.Opaque(acc)
}

// Run implements Protocol. Pair.First consumes, Pair.Second produces.
func (m *MemStream) Run(pair Pair, clk *clock.Clock, iterations, samples uint32) []float64 {
	st := newMemStreamState(m.size, m.chunks)
	roundTrips := uint64(iterations) * uint64(samples)

	producer := func() {
		st.barrier.Wait()
		for r := uint64(0); r < roundTrips; r++ {
			for i := range st.data {
				for st.flags[i].Load(atomicx.Relaxed) != dataConsumed {
				}
				fill(st.data[i], byte(r))
				st.flags[i].Store(dataProduced, atomicx.Release)
			}
		}
	}

	consumer := func() []float64 {
		results := make([]float64, 0, samples)
		st.barrier.Wait()
		for s := uint32(0); s < samples; s++ {
			start := clk.Now()
			for r := uint32(0); r < iterations; r++ {
				for i := range st.words {
					for st.flags[i].Load(atomicx.Acquire) != dataProduced {
					}
					drain(st.words[i])
					st.flags[i].Store(dataConsumed, atomicx.Relaxed)
				}
			}
			end := clk.Now()
			results = append(results, throughput(st.size, iterations, clk.Delta(start, end).Nanoseconds()))
		}
		return results
	}

	return runPair(m.Name(), m.pin, pair, consumer, producer)
}

// throughput converts bytes moved per round trip, over n round trips taking
// ns nanoseconds, into GiB/s.
func throughput(bytes int, n uint32, ns int64) float64 {
	if ns < 1 {
		ns = 1
	}
	return float64(bytes) * float64(n) / (float64(ns) * GiB * 1e-9)
}
