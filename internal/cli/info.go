package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/cpuinfo"
	"github.com/wesleyorama2/corelat/internal/protocol"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the processor, the usable hardware threads and the benchmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cores, err := affinity.Available()
		if err != nil {
			return fmt.Errorf("listing hardware threads: %w", err)
		}
		printInfo(cmd.OutOrStdout(), cpuinfo.Detect(), cores, affinity.Supported())
		return nil
	},
}

func printInfo(w io.Writer, info cpuinfo.Info, cores []int, pinning bool) {
	for _, line := range info.Lines() {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Hardware threads: %d %v\n", len(cores), cores)
	if pinning {
		fmt.Fprintln(w, "Thread pinning: supported")
	} else {
		fmt.Fprintln(w, "Thread pinning: not supported, results may be inaccurate")
	}

	fmt.Fprintln(w, "Benchmarks:")
	for _, p := range protocol.All() {
		fmt.Fprintf(w, "  %d, %-12s %s\n", p.ID, p.Name, p.Title)
	}
}
