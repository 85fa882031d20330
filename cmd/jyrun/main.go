// Command jyrun is a small cobra-based front-end over the job
// scheduler: `run` dispatches a sample fan-out job group and prints
// the scheduler's BudgetStats, `bench` drives the same dispatch in a
// loop and reports throughput.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/septag/junkyard-core/jlog"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "jyrun",
		Short:   "Drive the junkyard-core job scheduler from the command line",
		Version: version,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newBenchCommand())

	if err := rootCmd.Execute(); err != nil {
		jlog.For("jyrun").Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
