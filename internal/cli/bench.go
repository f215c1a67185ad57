package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/clock"
	"github.com/wesleyorama2/corelat/internal/config"
	"github.com/wesleyorama2/corelat/internal/cpuinfo"
	"github.com/wesleyorama2/corelat/internal/harness"
	"github.com/wesleyorama2/corelat/internal/protocol"
	"github.com/wesleyorama2/corelat/internal/report"
)

// calibrationRounds is how many times the clock read cost is measured; the
// fastest round is kept.
const calibrationRounds = 5

// minCalibrationReads keeps calibration meaningful on clocks whose tick is
// coarser than a single read.
const minCalibrationReads = 10000

// calibrationReads is the number of clock reads timed per calibration round.
func calibrationReads(iterations uint32) uint32 {
	return max(iterations, minCalibrationReads)
}

// ensureParallelism raises GOMAXPROCS to two so both sides of a pair can
// run at the same time.
func ensureParallelism() {
	if prev := runtime.GOMAXPROCS(0); prev < 2 {
		runtime.GOMAXPROCS(2)
		logrus.WithField("previous", prev).Info("raised GOMAXPROCS to 2 so paired threads run in parallel")
	}
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	r := &Runner{
		Config: cfg,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	return r.Run()
}

// loadConfig builds the run configuration: defaults, then the config file,
// then every flag the user set explicitly, then the positional arguments.
func loadConfig(flags *pflag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if err := applyFlags(flags, cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid number of iterations %q", args[0])
		}
		cfg.Iterations = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid number of samples %q", args[1])
		}
		cfg.Samples = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("bench") {
		list, _ := flags.GetString("bench")
		cfg.Benches = config.ParseSelectors(list)
	}
	if flags.Changed("cores") {
		list, _ := flags.GetString("cores")
		cores, err := config.ParseCores(list)
		if err != nil {
			return err
		}
		cfg.Cores = cores
	}
	if flags.Changed("csv") {
		cfg.CSV, _ = flags.GetBool("csv")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("select") {
		cfg.Select, _ = flags.GetString("select")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("msg-delay-spins") {
		cfg.MsgDelaySpins, _ = flags.GetInt("msg-delay-spins")
	}
	if flags.Changed("mem-size") {
		cfg.MemSize, _ = flags.GetInt("mem-size")
	}
	if flags.Changed("mem-chunks") {
		cfg.MemChunks, _ = flags.GetInt("mem-chunks")
	}
	return nil
}

// Runner executes a validated configuration. The human-readable report
// (matrix and summaries) goes to Stderr; CSV and the structured report go
// to Stdout, or to Config.Output for the latter.
type Runner struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer

	// Pinner overrides affinity.Default.
	Pinner affinity.Pinner
	// Available overrides affinity.Available.
	Available func() ([]int, error)
	// CPU overrides cpuinfo.Detect.
	CPU *cpuinfo.Info
	// Clock overrides clock.New.
	Clock *clock.Clock
}

type selected struct {
	id int
	p  protocol.Protocol
}

// Run benchmarks every selected protocol over every pair of cores.
func (r *Runner) Run() error {
	cfg := r.Config

	available := r.Available
	if available == nil {
		available = affinity.Available
	}
	avail, err := available()
	if err != nil {
		return fmt.Errorf("listing hardware threads: %w", err)
	}
	cores, err := resolveCores(cfg.Cores, avail)
	if err != nil {
		return err
	}
	if len(cores) < 2 {
		return fmt.Errorf("%w: only %v available", harness.ErrTooFewCores, cores)
	}

	ensureParallelism()

	opts := cfg.ProtocolOptions()
	opts.Pinner = r.Pinner
	benches := make([]selected, 0, len(cfg.Benches))
	for _, sel := range cfg.Benches {
		info, err := protocol.Lookup(string(sel))
		if err != nil {
			return err
		}
		p, err := protocol.New(string(sel), opts)
		if err != nil {
			return err
		}
		benches = append(benches, selected{id: info.ID, p: p})
	}

	clk := r.Clock
	if clk == nil {
		if clk, err = clock.New(); err != nil {
			return fmt.Errorf("clock unusable: %w", err)
		}
	}
	iterations, samples := uint32(cfg.Iterations), uint32(cfg.Samples)
	cal, err := clock.Calibrate(clk, calibrationReads(iterations), calibrationRounds, cfg.Bounds())
	if err != nil {
		return fmt.Errorf("clock calibration failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"reads":    cal.Reads,
		"overhead": cal.Overhead,
		"perRead":  cal.PerRead,
	}).Debug("clock calibrated")

	cpu := r.CPU
	if cpu == nil {
		detected := cpuinfo.Detect()
		cpu = &detected
	}

	scheme := report.SchemeFor(r.Stderr, cfg.NoColor)
	for _, line := range cpu.Lines() {
		fmt.Fprintln(r.Stderr, line)
	}
	report.Counts(r.Stderr, scheme, len(cores), iterations, samples)
	if !affinity.Supported() {
		report.PlatformWarning(r.Stderr, scheme)
	}

	rep := report.NewReport(version, cpu, cores, iterations, samples, &cal)
	for _, b := range benches {
		report.Heading(r.Stderr, scheme, b.id, b.p.Title())

		matrix := report.NewMatrix(r.Stderr, scheme, cores, b.p.Symmetric(), b.p.Unit())
		matrix.Header()
		res, err := harness.Run(b.p, clk, harness.Config{
			Cores:      cores,
			Iterations: iterations,
			Samples:    samples,
			Observer:   matrix,
		})
		if err != nil {
			return err
		}
		report.Summary(r.Stderr, scheme, res)

		if cfg.CSV {
			if err := report.WriteCSV(r.Stdout, res); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
		rep.Add(res)
	}

	if cfg.Format == config.FormatText {
		return nil
	}
	return r.writeReport(rep)
}

func (r *Runner) writeReport(rep *report.Report) error {
	cfg := r.Config
	if cfg.Output == "" {
		return rep.Write(r.Stdout, cfg.Format, cfg.Select)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := rep.Write(f, cfg.Format, cfg.Select); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithField("path", cfg.Output).Info("report written")
	return nil
}

// resolveCores maps the requested ids onto the available hardware threads.
// An empty request means all of them.
func resolveCores(requested, available []int) ([]int, error) {
	if len(requested) == 0 {
		return append([]int(nil), available...), nil
	}
	ok := make(map[int]bool, len(available))
	for _, id := range available {
		ok[id] = true
	}
	for _, id := range requested {
		if !ok[id] {
			return nil, fmt.Errorf("core %d not found. Available: %v", id, available)
		}
	}
	return append([]int(nil), requested...), nil
}
