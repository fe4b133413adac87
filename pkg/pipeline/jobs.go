package pipeline

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
)

const maxDefaultJobs = 8

// DefaultJobs picks a make parallelism based on the logical CPU count,
// capped to keep memory-hungry compile jobs from starving small machines.
func DefaultJobs(ctx context.Context) int {
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil || count < 1 {
		return 2
	}

	if count > maxDefaultJobs {
		return maxDefaultJobs
	}
	return count
}
