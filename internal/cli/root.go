package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/corelat/internal/config"
	"github.com/wesleyorama2/corelat/internal/protocol"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "corelat [iterations] [samples]",
	Short:   "Measure core-to-core latency and bandwidth",
	Version: version,
	Long: `corelat measures how long it takes for two hardware threads to exchange
a cache line, for every pair of threads on the machine, and prints the
result as a matrix.

Benchmarks (select with --bench, comma delimited, by id or name):
  1, cas          CAS latency on a single shared cache line
  2, read-write   Single-writer single-reader latency on two shared cache lines
  3, msg-passing  Message passing. One writer and one reader on many cache line
  4, mem          Memory bandwidth between a writer and a reader

Examples:
  corelat
  corelat 5000 100 --bench 1,3 --cores 0,2,4,6
  corelat --bench mem --format json --select '$.benchmarks[0].summary.max'`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBenchmarks,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// setupLogging configures the package-level logrus logger.
func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return nil
}

func init() {
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(versionCmd)

	registerFlags(RootCmd.Flags())
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Configuration file (.yaml, .yml or .json)")
	flags.StringP("bench", "b", "1", "Benchmarks to run, comma delimited ids or names, e.g. '1,3'")
	flags.StringP("cores", "c", "", "Hardware thread ids to use, comma delimited (default: all)")
	flags.Bool("csv", false, "Output the mean latencies in CSV format on stdout")
	flags.String("format", config.FormatText, "Report format (text, json, yaml)")
	flags.StringP("output", "o", "", "Output file for the json/yaml report (default: stdout)")
	flags.String("select", "", "JSONPath to extract from the json/yaml report")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
	flags.Int("msg-delay-spins", protocol.DefaultMsgDelaySpins, "Sender busy-wait before each message")
	flags.Int("mem-size", protocol.DefaultMemSize, "Bytes streamed per round by the mem benchmark")
	flags.Int("mem-chunks", protocol.DefaultMemChunks, "Page-aligned chunks the mem buffer is split into")
}
