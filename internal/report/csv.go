package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/wesleyorama2/corelat/internal/harness"
)

// WriteCSV writes the per-pair means, one row per source core. Pairs that
// were not measured are empty cells.
func WriteCSV(w io.Writer, res *harness.Result) error {
	cw := csv.NewWriter(w)
	for _, row := range res.Means() {
		record := make([]string, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				record[j] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
