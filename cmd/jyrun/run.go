package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/septag/junkyard-core/job"
)

func newRunCommand() *cobra.Command {
	var groupSize int
	var priorityName string
	var longTask bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch a sample fan-out job group and print BudgetStats",
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := parsePriority(priorityName)
			if err != nil {
				return err
			}
			return runSample(groupSize, priority, longTask)
		},
	}

	cmd.Flags().IntVar(&groupSize, "group", 8, "number of fibers in the dispatched group")
	cmd.Flags().StringVar(&priorityName, "priority", "normal", "dispatch priority: high, normal, or low")
	cmd.Flags().BoolVar(&longTask, "long", false, "dispatch on the LongTask pool instead of ShortTask")

	return cmd
}

func parsePriority(name string) (job.Priority, error) {
	switch name {
	case "high":
		return job.PriorityHigh, nil
	case "normal":
		return job.PriorityNormal, nil
	case "low":
		return job.PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q (want high, normal, or low)", name)
	}
}

func runSample(groupSize int, priority job.Priority, longTask bool) error {
	opts := job.DefaultOptions()
	s := job.NewScheduler(opts)
	defer s.Release()

	jobType := job.ShortTask
	if longTask {
		jobType = job.LongTask
	}

	out := make([]int32, groupSize)
	var mu sync.Mutex

	start := time.Now()
	inst := s.Dispatch(context.Background(), jobType, priority, int32(groupSize),
		func(ctx context.Context, index int32, userData any) {
			mu.Lock()
			out[index] = index * index
			mu.Unlock()
		}, nil)
	s.WaitForCompletion(context.Background(), inst)
	elapsed := time.Since(start)

	fmt.Printf("run id:    %s\n", s.RunID())
	fmt.Printf("dispatched %d fibers (%s, %s) in %s\n", groupSize, jobType, priority, elapsed)
	fmt.Printf("results:   %v\n", out)

	stats := s.Stats()
	fmt.Printf("budget:    instances %d/%d, fiber-props %d/%d, pending short %d, pending long %d\n",
		stats.InstancesInUse, stats.InstancesTotal,
		stats.FiberPropsInUse, stats.FiberPropsTotal,
		stats.PendingShort, stats.PendingLong)

	return nil
}
