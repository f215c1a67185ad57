// Package config holds the run configuration for corelat: defaults, loading
// from YAML or JSON files, and validation.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/corelat/internal/clock"
	"github.com/wesleyorama2/corelat/internal/protocol"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Defaults.
const (
	DefaultIterations = 1000
	DefaultSamples    = 300
	DefaultLogLevel   = "info"
)

// Config is the complete run configuration.
//
// Example YAML:
//
//	iterations: 5000
//	samples: 100
//	benches: [cas, 3]
//	cores: [0, 2, 4, 6]
//	format: json
//	select: $.benchmarks[0].summary.min.mean
type Config struct {
	// Iterations per sample.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Samples per pair, not counting the discarded warmup sample.
	Samples int `json:"samples" yaml:"samples"`

	// Benches selects protocols by id or name, run in the given order.
	Benches []Selector `json:"benches" yaml:"benches"`

	// Cores restricts the run to these hardware threads. Empty means all.
	Cores []int `json:"cores,omitempty" yaml:"cores,omitempty"`

	// CSV prints the per-pair means as CSV after each benchmark.
	CSV bool `json:"csv,omitempty" yaml:"csv,omitempty"`

	// Format of the final report: text, json or yaml.
	Format string `json:"format" yaml:"format"`

	// Output is the report destination. Empty means stdout.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Select is a JSONPath applied to json/yaml reports.
	Select string `json:"select,omitempty" yaml:"select,omitempty"`

	NoColor  bool   `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	LogLevel string `json:"logLevel" yaml:"logLevel"`

	// MsgDelaySpins is the sender's busy-wait before each message.
	MsgDelaySpins int `json:"msgDelaySpins" yaml:"msgDelaySpins"`

	// MemSize is the streaming buffer in bytes, split into MemChunks chunks.
	MemSize   int `json:"memSize" yaml:"memSize"`
	MemChunks int `json:"memChunks" yaml:"memChunks"`

	// Overhead is the plausible band for one clock read, in nanoseconds.
	Overhead clock.Bounds `json:"overhead" yaml:"overhead"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	opts := protocol.DefaultOptions()
	return &Config{
		Iterations:    DefaultIterations,
		Samples:       DefaultSamples,
		Benches:       []Selector{"cas"},
		Format:        FormatText,
		LogLevel:      DefaultLogLevel,
		MsgDelaySpins: opts.MsgDelaySpins,
		MemSize:       opts.MemSize,
		MemChunks:     opts.MemChunks,
		Overhead:      clock.DefaultBounds(),
	}
}

// ProtocolOptions returns the protocol tuning knobs. Pinner is left nil so
// the protocols use affinity.Default.
func (c *Config) ProtocolOptions() protocol.Options {
	return protocol.Options{
		MsgDelaySpins: c.MsgDelaySpins,
		MemSize:       c.MemSize,
		MemChunks:     c.MemChunks,
	}
}

// Bounds returns the calibration sanity band.
func (c *Config) Bounds() clock.Bounds {
	return c.Overhead
}

// Selector names a protocol by id ("3") or name ("msg-passing"). Files may
// spell ids as bare integers.
type Selector string

// UnmarshalJSON accepts a string or an integer.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Selector(str)
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("bench must be a name or an id, got %s", data)
	}
	*s = Selector(strconv.Itoa(id))
	return nil
}

// UnmarshalYAML accepts any scalar.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bench must be a name or an id", node.Line)
	}
	*s = Selector(node.Value)
	return nil
}

// ParseSelectors splits a comma-delimited list, dropping empty entries.
func ParseSelectors(list string) []Selector {
	var out []Selector
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Selector(part))
		}
	}
	return out
}

// ParseCores parses a comma-delimited list of hardware thread ids.
func ParseCores(list string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid core id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}
