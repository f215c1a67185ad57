package report

import (
	"fmt"
	"io"
	"math"

	"github.com/wesleyorama2/corelat/internal/harness"
)

// Heading prints the numbered title of a benchmark, surrounded by blank lines.
func Heading(w io.Writer, scheme *ColorScheme, id int, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, scheme.Heading.Sprintf("%d) %s", id, title))
	fmt.Fprintln(w)
}

// Counts prints the run dimensions.
func Counts(w io.Writer, scheme *ColorScheme, cores int, iterations, samples uint32) {
	fmt.Fprintf(w, "%s %d\n", scheme.Label.Sprint("Num cores:"), cores)
	fmt.Fprintf(w, "%s %d\n", scheme.Label.Sprint("Num iterations per samples:"), iterations)
	fmt.Fprintf(w, "%s %d\n", scheme.Label.Sprint("Num samples:"), samples)
}

// PlatformWarning tells the user that pinning has no effect here.
func PlatformWarning(w io.Writer, scheme *ColorScheme) {
	fmt.Fprintln(w, scheme.Warning.Sprint(
		"WARN this platform may ignore thread-CPU affinity (we can't select a CPU to run on). Results may be inaccurate"))
}

// Summary prints the minimum, maximum and grand mean below the matrix.
// The standard errors here are not capped.
func Summary(w io.Writer, scheme *ColorScheme, res *harness.Result) {
	fmt.Fprintln(w)

	quantity := res.Unit.Quantity()
	// Pad so "Min", "Max" and "Mean" line up.
	extreme := func(label string, e *harness.Extreme) {
		if e == nil {
			return
		}
		fmt.Fprintf(w, "    %-4s %s: %s%s %s cores: %s\n",
			label, quantity,
			scheme.Mean.Sprintf("%.1f", e.Stat.Mean), res.Unit,
			scheme.StdErr.Sprintf("±%.1f", e.Stat.StdErr),
			e.Pair)
	}
	extreme("Min", res.Min)
	extreme("Max", res.Max)

	if !math.IsNaN(res.Mean) {
		fmt.Fprintf(w, "    %-4s %s: %s%s\n", "Mean", quantity, scheme.Mean.Sprintf("%.1f", res.Mean), res.Unit)
	}
}
