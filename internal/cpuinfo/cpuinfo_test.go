package cpuinfo

import (
	"runtime"
	"testing"

	"github.com/klauspost/cpuid/v2"
	"github.com/stretchr/testify/assert"
)

func TestFromCPUID(t *testing.T) {
	var c cpuid.CPUInfo
	c.BrandName = "Example CPU @ 3.00GHz"
	c.VendorString = "GenuineExample"
	c.Family = 6
	c.Model = 85
	c.PhysicalCores = 8
	c.ThreadsPerCore = 2
	c.LogicalCores = 16
	c.CacheLine = 64
	c.Cache.L1D = 32 * 1024
	c.Cache.L2 = 1024 * 1024
	c.Cache.L3 = 11 * 1024 * 1024
	c.Hz = 3_000_000_000

	info := FromCPUID(c)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.False(t, info.Hypervisor)

	assert.Equal(t, []string{
		"CPU: Example CPU @ 3.00GHz",
		"Vendor: GenuineExample (family 6, model 85)",
		"Topology: 8 physical cores, 16 logical (2 per core)",
		"Cache line: 64 bytes",
		"Caches: L1d 32 KiB, L2 1 MiB, L3 11 MiB",
		"Base frequency: 3.00 GHz",
	}, info.Lines())
}

func TestLines_Unknowns(t *testing.T) {
	info := Info{Arch: "riscv64", CacheLine: -1, L2: -1}
	assert.Equal(t, []string{"CPU: unknown riscv64 processor"}, info.Lines())
}

func TestLines_Hypervisor(t *testing.T) {
	lines := Info{Brand: "vCPU", Hypervisor: true}.Lines()
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "hypervisor")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "48 KiB", humanBytes(48*1024))
	assert.Equal(t, "2 MiB", humanBytes(2<<20))
	assert.Equal(t, "1536 KiB", humanBytes(1536*1024))
	assert.Equal(t, "100 B", humanBytes(100))
}

func TestDetect(t *testing.T) {
	info := Detect()
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.NotEmpty(t, info.Lines())
}
