package model

import (
	"time"

	"github.com/google/uuid"
)

// IngestRun summarizes one processed day of a run.
type IngestRun struct {
	RunID       uuid.UUID
	Day         string
	Collected   int
	Stored      int
	Failed      int
	StartedAt   time.Time
	CompletedAt time.Time
}
