// Package report renders benchmark results: the live matrix and summary on
// the terminal, per-pair means as CSV, and the structured JSON/YAML report.
package report

import (
	"fmt"
	"io"

	"github.com/wesleyorama2/corelat/internal/harness"
	"github.com/wesleyorama2/corelat/internal/protocol"
)

// cellWidth is the printed width of one matrix cell, " mmmm±ss".
const cellWidth = 8

// Matrix prints the measurement matrix row by row while the harness fills
// it. It implements harness.Observer.
type Matrix struct {
	w         io.Writer
	scheme    *ColorScheme
	cores     []int
	symmetric bool
	meanFmt   string
}

// NewMatrix returns a renderer for a run over cores.
func NewMatrix(w io.Writer, scheme *ColorScheme, cores []int, symmetric bool, unit protocol.Unit) *Matrix {
	meanFmt := "%4.0f"
	if unit == protocol.GigabytesPerSecond {
		meanFmt = "%4.1f"
	}
	return &Matrix{w: w, scheme: scheme, cores: cores, symmetric: symmetric, meanFmt: meanFmt}
}

// Header prints the column header of core ids.
func (m *Matrix) Header() {
	fmt.Fprintf(m.w, "    %3s", "")
	for _, id := range m.cores {
		fmt.Fprintf(m.w, " %4d%3s", id, "")
	}
	fmt.Fprintln(m.w)
}

// RowStart implements harness.Observer.
func (m *Matrix) RowStart(i int) {
	fmt.Fprintf(m.w, "    %3d", m.cores[i])
}

// Cell implements harness.Observer. Symmetric runs leave the upper
// triangle unprinted; the diagonal of a directional run is blank.
func (m *Matrix) Cell(i, j int, stat *harness.PairStat) {
	if stat == nil {
		if !m.symmetric {
			fmt.Fprintf(m.w, "%*s", cellWidth, "")
		}
		return
	}
	mean := fmt.Sprintf(m.meanFmt, stat.Mean)
	stderr := fmt.Sprintf("±%-2.0f", stat.DisplayStdErr())
	fmt.Fprintf(m.w, " %s%s", m.scheme.Mean.Sprint(mean), m.scheme.StdErr.Sprint(stderr))
}

// RowEnd implements harness.Observer.
func (m *Matrix) RowEnd(int) {
	fmt.Fprintln(m.w)
}
