package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/corelat/internal/clock"
	"github.com/wesleyorama2/corelat/internal/cpuinfo"
	"github.com/wesleyorama2/corelat/internal/harness"
	"github.com/wesleyorama2/corelat/pkg/jsonpath"
)

// Report is the structured form of a complete run.
type Report struct {
	Version     string           `json:"version" yaml:"version"`
	CPU         *cpuinfo.Info    `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Cores       []int            `json:"cores" yaml:"cores"`
	Iterations  uint32           `json:"iterations" yaml:"iterations"`
	Samples     uint32           `json:"samples" yaml:"samples"`
	Calibration *CalibrationData `json:"calibration,omitempty" yaml:"calibration,omitempty"`
	Benchmarks  []Benchmark      `json:"benchmarks" yaml:"benchmarks"`
}

// CalibrationData is the measured clock read cost.
type CalibrationData struct {
	Reads      uint32  `json:"reads" yaml:"reads"`
	OverheadNs int64   `json:"overheadNs" yaml:"overheadNs"`
	PerReadNs  float64 `json:"perReadNs" yaml:"perReadNs"`
}

// Benchmark is one protocol's matrix.
type Benchmark struct {
	Name      string      `json:"name" yaml:"name"`
	Title     string      `json:"title" yaml:"title"`
	Unit      string      `json:"unit" yaml:"unit"`
	Symmetric bool        `json:"symmetric" yaml:"symmetric"`
	Summary   SummaryData `json:"summary" yaml:"summary"`
	// Means is indexed like Cores; null where the pair was not measured.
	Means [][]*float64 `json:"means" yaml:"means"`
	Pairs []PairData   `json:"pairs" yaml:"pairs"`
}

// SummaryData holds the global statistics of a benchmark.
type SummaryData struct {
	Min  *ExtremeData `json:"min" yaml:"min"`
	Max  *ExtremeData `json:"max" yaml:"max"`
	Mean *float64     `json:"mean" yaml:"mean"`
}

// PairRef names the two hardware threads of a pair.
type PairRef struct {
	First  int `json:"first" yaml:"first"`
	Second int `json:"second" yaml:"second"`
}

// ExtremeData is the pair holding a minimum or maximum mean.
type ExtremeData struct {
	Pair   PairRef `json:"pair" yaml:"pair"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdErr float64 `json:"stderr" yaml:"stderr"`
}

// PairData is the statistics of one measured pair.
type PairData struct {
	PairRef          `yaml:",inline"`
	harness.PairStat `yaml:",inline"`
}

// NewReport starts a report; add results with Add.
func NewReport(version string, cpu *cpuinfo.Info, cores []int, iterations, samples uint32, cal *clock.Calibration) *Report {
	r := &Report{
		Version:    version,
		CPU:        cpu,
		Cores:      cores,
		Iterations: iterations,
		Samples:    samples,
		Benchmarks: []Benchmark{},
	}
	if cal != nil {
		r.Calibration = &CalibrationData{
			Reads:      cal.Reads,
			OverheadNs: cal.Overhead.Nanoseconds(),
			PerReadNs:  cal.PerRead,
		}
	}
	return r
}

// Add appends a finished benchmark.
func (r *Report) Add(res *harness.Result) {
	b := Benchmark{
		Name:      res.Protocol,
		Title:     res.Title,
		Unit:      string(res.Unit),
		Symmetric: res.Symmetric,
		Summary: SummaryData{
			Min:  extremeData(res.Min),
			Max:  extremeData(res.Max),
			Mean: finite(res.Mean),
		},
		Means: make([][]*float64, len(res.Stats)),
		Pairs: []PairData{},
	}
	for i, row := range res.Stats {
		b.Means[i] = make([]*float64, len(row))
		for j, st := range row {
			if st == nil {
				continue
			}
			b.Means[i][j] = finite(st.Mean)
			b.Pairs = append(b.Pairs, PairData{
				PairRef:  PairRef{First: res.Cores[i], Second: res.Cores[j]},
				PairStat: *st,
			})
		}
	}
	r.Benchmarks = append(r.Benchmarks, b)
}

func extremeData(e *harness.Extreme) *ExtremeData {
	if e == nil {
		return nil
	}
	return &ExtremeData{
		Pair:   PairRef{First: e.Pair.First, Second: e.Pair.Second},
		Mean:   e.Stat.Mean,
		StdErr: e.Stat.StdErr,
	}
}

// finite maps NaN to nil, which JSON and YAML print as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Write encodes the report as format ("json" or "yaml"). When selectPath is
// set only the value at that JSONPath is written.
func (r *Report) Write(w io.Writer, format, selectPath string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if selectPath != "" {
		value, err := jsonpath.Extract(data, selectPath)
		if err != nil {
			return fmt.Errorf("select %s: %w", selectPath, err)
		}
		if format == "yaml" && isComposite(value) {
			return writeYAMLFromJSON(w, []byte(value))
		}
		_, err = fmt.Fprintln(w, value)
		return err
	}

	switch format {
	case "json":
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func isComposite(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[")
}

// writeYAMLFromJSON re-encodes a JSON fragment as YAML. JSON is valid YAML,
// so yaml.v3 reads it directly.
func writeYAMLFromJSON(w io.Writer, data []byte) error {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
