// Package cpuinfo describes the processor a benchmark runs on. It is
// informational only; nothing in the measurement depends on it.
package cpuinfo

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Info is the subset of CPUID data printed before a run.
type Info struct {
	Brand          string `json:"brand" yaml:"brand"`
	Vendor         string `json:"vendor" yaml:"vendor"`
	Arch           string `json:"arch" yaml:"arch"`
	Family         int    `json:"family" yaml:"family"`
	Model          int    `json:"model" yaml:"model"`
	PhysicalCores  int    `json:"physicalCores" yaml:"physicalCores"`
	ThreadsPerCore int    `json:"threadsPerCore" yaml:"threadsPerCore"`
	LogicalCores   int    `json:"logicalCores" yaml:"logicalCores"`
	CacheLine      int    `json:"cacheLine" yaml:"cacheLine"`
	L1D            int    `json:"l1d" yaml:"l1d"`
	L2             int    `json:"l2" yaml:"l2"`
	L3             int    `json:"l3" yaml:"l3"`
	Hz             int64  `json:"hz,omitempty" yaml:"hz,omitempty"`
	Hypervisor     bool   `json:"hypervisor" yaml:"hypervisor"`
}

// Detect reads the running processor.
func Detect() Info {
	return FromCPUID(cpuid.CPU)
}

// FromCPUID converts a cpuid record.
func FromCPUID(c cpuid.CPUInfo) Info {
	return Info{
		Brand:          c.BrandName,
		Vendor:         c.VendorString,
		Arch:           runtime.GOARCH,
		Family:         c.Family,
		Model:          c.Model,
		PhysicalCores:  c.PhysicalCores,
		ThreadsPerCore: c.ThreadsPerCore,
		LogicalCores:   c.LogicalCores,
		CacheLine:      c.CacheLine,
		L1D:            c.Cache.L1D,
		L2:             c.Cache.L2,
		L3:             c.Cache.L3,
		Hz:             c.Hz,
		Hypervisor:     c.Has(cpuid.HYPERVISOR),
	}
}

// Lines renders the description, one fact per line. Unknown values
// (zero or negative, as cpuid reports them) are left out.
func (i Info) Lines() []string {
	brand := i.Brand
	if brand == "" {
		brand = "unknown " + i.Arch + " processor"
	}
	lines := []string{"CPU: " + brand}

	if i.Vendor != "" {
		lines = append(lines, fmt.Sprintf("Vendor: %s (family %d, model %d)", i.Vendor, i.Family, i.Model))
	}
	if i.PhysicalCores > 0 && i.LogicalCores > 0 {
		lines = append(lines, fmt.Sprintf("Topology: %d physical cores, %d logical (%d per core)",
			i.PhysicalCores, i.LogicalCores, max(i.ThreadsPerCore, 1)))
	}
	if i.CacheLine > 0 {
		lines = append(lines, fmt.Sprintf("Cache line: %d bytes", i.CacheLine))
	}
	if caches := i.caches(); caches != "" {
		lines = append(lines, "Caches: "+caches)
	}
	if i.Hz > 0 {
		lines = append(lines, fmt.Sprintf("Base frequency: %.2f GHz", float64(i.Hz)/1e9))
	}
	if i.Hypervisor {
		lines = append(lines, "Running under a hypervisor: vCPU placement may not match the physical topology")
	}
	return lines
}

func (i Info) caches() string {
	var s string
	add := func(name string, size int) {
		if size <= 0 {
			return
		}
		if s != "" {
			s += ", "
		}
		s += name + " " + humanBytes(size)
	}
	add("L1d", i.L1D)
	add("L2", i.L2)
	add("L3", i.L3)
	return s
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
