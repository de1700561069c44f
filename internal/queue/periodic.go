package queue

import (
	"time"

	"github.com/riverqueue/river"
)

// Every builds a periodic job inserting args on queueName each interval.
// Periodic jobs are single-attempt: the next period is the retry.
func Every(interval time.Duration, queueName string, args river.JobArgs, runOnStart bool) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return args, &river.InsertOpts{
				Queue:       queueName,
				MaxAttempts: 1,
			}
		},
		&river.PeriodicJobOpts{RunOnStart: runOnStart},
	)
}
