package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/corelat/internal/protocol"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Fields lists the offending field names, in order.
func (e *ValidationErrors) Fields() []string {
	out := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err.Field
	}
	return out
}

// Validate checks the configuration.
//
// Returns nil if valid, or a *ValidationErrors containing every problem.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Iterations < 1 || int64(c.Iterations) > math.MaxUint32 {
		errs.Add("iterations", "must be between 1 and 4294967295")
	}
	// One extra warmup sample is always taken.
	if c.Samples < 1 || int64(c.Samples) > math.MaxUint32-1 {
		errs.Add("samples", "must be between 1 and 4294967294")
	}

	validateBenches(c.Benches, errs)
	validateCores(c.Cores, errs)

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		errs.Add("format", fmt.Sprintf("unknown format %q (want text, json or yaml)", c.Format))
	}
	if c.Select != "" && c.Format == FormatText {
		errs.Add("select", "requires format json or yaml")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs.Add("logLevel", err.Error())
	}

	if c.MsgDelaySpins < 0 {
		errs.Add("msgDelaySpins", "must not be negative")
	}
	validateMemory(c.MemSize, c.MemChunks, errs)

	if c.Overhead.MinPerRead < 0 {
		errs.Add("overhead.minPerRead", "must not be negative")
	}
	if c.Overhead.MaxPerRead <= c.Overhead.MinPerRead {
		errs.Add("overhead.maxPerRead", "must be greater than overhead.minPerRead")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateBenches(benches []Selector, errs *ValidationErrors) {
	if len(benches) == 0 {
		errs.Add("benches", "at least one benchmark is required")
		return
	}
	for _, b := range benches {
		if _, err := protocol.Lookup(string(b)); err != nil {
			errs.Add("benches", err.Error())
		}
	}
}

func validateCores(cores []int, errs *ValidationErrors) {
	if len(cores) == 0 {
		return
	}
	if len(cores) < 2 {
		errs.Add("cores", "at least two cores are required")
	}
	seen := make(map[int]bool, len(cores))
	for _, id := range cores {
		if id < 0 {
			errs.Add("cores", fmt.Sprintf("invalid core id %d", id))
			continue
		}
		if seen[id] {
			errs.Add("cores", fmt.Sprintf("core %d listed more than once", id))
		}
		seen[id] = true
	}
}

func validateMemory(size, chunks int, errs *ValidationErrors) {
	if chunks < 1 {
		errs.Add("memChunks", "must be at least 1")
		return
	}
	unit := chunks * protocol.PageSize
	if size < unit || size%unit != 0 {
		errs.Add("memSize", fmt.Sprintf("must be a positive multiple of memChunks × %d (%d)", protocol.PageSize, unit))
	}
}
