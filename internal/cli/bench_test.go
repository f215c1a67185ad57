package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/clock"
	"github.com/wesleyorama2/corelat/internal/config"
	"github.com/wesleyorama2/corelat/internal/cpuinfo"
	"github.com/wesleyorama2/corelat/internal/harness"
)

func parseFlags(t *testing.T, args ...string) (*pflag.FlagSet, []string) {
	t.Helper()
	flags := pflag.NewFlagSet("corelat", pflag.ContinueOnError)
	registerFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags, flags.Args()
}

func TestLoadConfig_Defaults(t *testing.T) {
	flags, args := parseFlags(t)
	cfg, err := loadConfig(flags, args)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_PositionalAndFlags(t *testing.T) {
	flags, args := parseFlags(t, "5000", "100", "-b", "1,msg-passing", "-c", "0,2", "--csv",
		"--format", "json", "--select", "$.cores", "--msg-delay-spins", "3000")
	cfg, err := loadConfig(flags, args)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Iterations)
	assert.Equal(t, 100, cfg.Samples)
	assert.Equal(t, []config.Selector{"1", "msg-passing"}, cfg.Benches)
	assert.Equal(t, []int{0, 2}, cfg.Cores)
	assert.True(t, cfg.CSV)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, "$.cores", cfg.Select)
	assert.Equal(t, 3000, cfg.MsgDelaySpins)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 42\nbenches: [mem]\nmemChunks: 8\nmemSize: 524288\n"), 0o644))

	flags, args := parseFlags(t, "--config", path, "--bench", "cas")
	cfg, err := loadConfig(flags, args)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Samples, "file value kept")
	assert.Equal(t, 8, cfg.MemChunks, "file value kept")
	assert.Equal(t, []config.Selector{"cas"}, cfg.Benches, "changed flag wins")
	assert.Equal(t, config.DefaultIterations, cfg.Iterations, "default kept")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad iterations", []string{"many"}, "invalid number of iterations"},
		{"bad samples", []string{"10", "x"}, "invalid number of samples"},
		{"zero samples", []string{"10", "0"}, "samples"},
		{"bad core", []string{"-c", "0,one"}, "invalid core id"},
		{"unknown bench", []string{"-b", "7"}, "unknown benchmark"},
		{"one core", []string{"-c", "3"}, "at least two cores"},
		{"missing config", []string{"--config", "/nonexistent/corelat.yaml"}, "error loading config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, args := parseFlags(t, tt.args...)
			_, err := loadConfig(flags, args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveCores(t *testing.T) {
	avail := []int{0, 1, 2, 3}

	got, err := resolveCores(nil, avail)
	require.NoError(t, err)
	assert.Equal(t, avail, got)

	got, err = resolveCores([]int{3, 1}, avail)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, got, "requested order is kept")

	_, err = resolveCores([]int{0, 9}, avail)
	assert.EqualError(t, err, "core 9 not found. Available: [0 1 2 3]")
}

func newTestRunner(t *testing.T, cfg *config.Config) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return &Runner{
		Config:    cfg,
		Stdout:    &stdout,
		Stderr:    &stderr,
		Pinner:    affinity.PinnerFunc(func(int) {}),
		Available: func() ([]int, error) { return []int{0, 1}, nil },
		CPU:       &cpuinfo.Info{Brand: "Test CPU", Arch: runtime.GOARCH},
	}, &stdout, &stderr
}

func requireParallel(t *testing.T) {
	t.Helper()
	if runtime.GOMAXPROCS(0) < 2 || runtime.NumCPU() < 2 {
		t.Skip("needs at least two CPUs")
	}
}

func TestRunner_TextAndCSV(t *testing.T) {
	requireParallel(t)

	cfg := config.Default()
	cfg.Iterations = 20
	cfg.Samples = 3
	cfg.Benches = []config.Selector{"cas", "3"}
	cfg.MsgDelaySpins = 100
	cfg.CSV = true
	cfg.NoColor = true

	r, stdout, stderr := newTestRunner(t, cfg)
	require.NoError(t, r.Run())

	text := stderr.String()
	assert.Contains(t, text, "CPU: Test CPU")
	assert.Contains(t, text, "Num cores: 2\n")
	assert.Contains(t, text, "Num iterations per samples: 20\n")
	assert.Contains(t, text, "Num samples: 3\n")
	assert.Contains(t, text, "1) CAS latency on a single shared cache line")
	assert.Contains(t, text, "3) Message passing")
	assert.Contains(t, text, "Min  latency:")
	assert.Contains(t, text, "Mean latency:")

	// cas is symmetric: only (1,0); msg-passing fills both off-diagonal cells.
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ",", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ","))
	assert.False(t, strings.HasPrefix(lines[1], ","))
	assert.True(t, strings.HasPrefix(lines[2], ","))
	assert.False(t, strings.HasSuffix(lines[2], ","))
	assert.True(t, strings.HasSuffix(lines[3], ","))
	assert.False(t, strings.HasPrefix(lines[3], ","))
}

func TestRunner_JSONSelect(t *testing.T) {
	requireParallel(t)

	cfg := config.Default()
	cfg.Iterations = 10
	cfg.Samples = 2
	cfg.Format = config.FormatJSON
	cfg.Select = "$.benchmarks[0].name"

	r, stdout, _ := newTestRunner(t, cfg)
	require.NoError(t, r.Run())
	assert.Equal(t, "cas\n", stdout.String())
}

func TestRunner_ReportFile(t *testing.T) {
	requireParallel(t)

	cfg := config.Default()
	cfg.Iterations = 10
	cfg.Samples = 2
	cfg.Benches = []config.Selector{"mem"}
	cfg.MemSize = 4 * 4096
	cfg.Format = config.FormatYAML
	cfg.Output = filepath.Join(t.TempDir(), "report.yaml")

	r, stdout, stderr := newTestRunner(t, cfg)
	require.NoError(t, r.Run())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Min  throughput:")

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unit: GB/s")
	assert.Contains(t, string(data), "name: mem")
}

func TestRunner_StartupErrors(t *testing.T) {
	cfg := config.Default()

	r, _, _ := newTestRunner(t, cfg)
	r.Available = func() ([]int, error) { return []int{0}, nil }
	assert.ErrorIs(t, r.Run(), harness.ErrTooFewCores)

	r, _, _ = newTestRunner(t, cfg)
	r.Available = func() ([]int, error) { return nil, errors.New("no sysfs") }
	assert.ErrorContains(t, r.Run(), "no sysfs")

	cfg = config.Default()
	cfg.Cores = []int{0, 5}
	r, _, _ = newTestRunner(t, cfg)
	assert.ErrorContains(t, r.Run(), "core 5 not found")
}

func TestCalibrationReads(t *testing.T) {
	tests := []struct {
		iterations uint32
		want       uint32
	}{
		{1, minCalibrationReads},
		{2, minCalibrationReads},
		{minCalibrationReads, minCalibrationReads},
		{50000, 50000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calibrationReads(tt.iterations), "iterations=%d", tt.iterations)
	}
}

func TestRunner_CoarseClockFewIterations(t *testing.T) {
	requireParallel(t)

	// 15ns per read, reported in 41ns ticks.
	var reads atomic.Int64
	clk, err := clock.NewWithSource(func() int64 {
		return reads.Add(1) * 15 / 41 * 41
	})
	require.NoError(t, err)

	for _, iterations := range []int{1, 2} {
		cfg := config.Default()
		cfg.Iterations = iterations
		cfg.Samples = 2
		cfg.Format = config.FormatJSON
		cfg.Select = "$.calibration.reads"

		r, stdout, _ := newTestRunner(t, cfg)
		r.Clock = clk
		require.NoError(t, r.Run(), "iterations=%d", iterations)
		assert.Equal(t, "10000\n", stdout.String())
	}
}

func TestEnsureParallelism(t *testing.T) {
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	ensureParallelism()
	assert.GreaterOrEqual(t, runtime.GOMAXPROCS(0), 2)
}

func TestRunner_CalibrationFailure(t *testing.T) {
	cfg := config.Default()
	// No real clock read takes under a femtosecond.
	cfg.Overhead = clock.Bounds{MinPerRead: 0, MaxPerRead: 1e-6}

	r, _, stderr := newTestRunner(t, cfg)
	err := r.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, clock.ErrImplausibleOverhead)
	assert.Empty(t, stderr.String(), "nothing is measured after a failed calibration")
}
