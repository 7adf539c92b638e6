// Package watermark keeps the run log that incremental extraction reads its
// lower bound from. One entry is written per run attempt; only the newest
// successful entry for a pipeline moves the watermark.
package watermark

import (
	"context"
	"fmt"
	"time"
)

// StatusSuccessful is the status of a run that loaded its rows.
const StatusSuccessful = "Successful"

// Epoch is the watermark of a pipeline that never succeeded.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Run is one run log entry.
type Run struct {
	RunID         string     `bson:"runId,omitempty"`
	Description   string     `bson:"description"`
	Start         time.Time  `bson:"start"`
	Finish        *time.Time `bson:"finish,omitempty"`
	ExecutionTime string     `bson:"executionTime,omitempty"`
	Status        string     `bson:"status,omitempty"`
}

// Store reads and writes run log entries.
type Store interface {
	// LastSuccessfulRun returns the start of the newest successful run of
	// the named pipeline, or Epoch.
	LastSuccessfulRun(ctx context.Context, description string) (time.Time, error)
	// RecordRunStart inserts an open entry for run.
	RecordRunStart(ctx context.Context, run Run) error
	// RecordRunOutcome completes the entry with the same description and start.
	RecordRunOutcome(ctx context.Context, run Run) error
}

// ExecutionTime renders elapsed time as whole minutes, e.g. "3 minutes".
func ExecutionTime(d time.Duration) string {
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}

// Finished returns run completed at finish with the given status.
func (r Run) Finished(finish time.Time, status string) Run {
	r.Finish = &finish
	r.ExecutionTime = ExecutionTime(finish.Sub(r.Start))
	r.Status = status
	return r
}
