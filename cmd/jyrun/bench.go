package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/septag/junkyard-core/job"
)

func newBenchCommand() *cobra.Command {
	var groupSize int
	var iterations int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeatedly dispatch a fan-out job group and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(groupSize, iterations)
		},
	}

	cmd.Flags().IntVar(&groupSize, "group", 64, "number of fibers per dispatch")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "number of dispatch rounds")

	return cmd
}

func runBench(groupSize, iterations int) error {
	s := job.NewScheduler(job.DefaultOptions())
	defer s.Release()

	start := time.Now()
	var total int64
	for i := 0; i < iterations; i++ {
		inst := s.Dispatch(context.Background(), job.ShortTask, job.PriorityNormal, int32(groupSize),
			func(ctx context.Context, index int32, userData any) {}, nil)
		s.WaitForCompletion(context.Background(), inst)
		total += int64(groupSize)
	}
	elapsed := time.Since(start)

	fmt.Printf("run id:     %s\n", s.RunID())
	fmt.Printf("dispatched: %d fibers across %d rounds in %s\n", total, iterations, elapsed)
	fmt.Printf("throughput: %.0f fibers/sec\n", float64(total)/elapsed.Seconds())

	return nil
}
