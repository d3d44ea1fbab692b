// internal/domain/entity/report.go
package entity

import (
	"time"
)

// FailureEntry is one failed record from a batch run, persisted for
// operator review.
type FailureEntry struct {
	ID           string    `bson:"_id,omitempty"`
	RunID        string    `bson:"runId"`
	FlightID     int64     `bson:"flightId"`
	FlightNumber string    `bson:"flightNumber"`
	Date         string    `bson:"date"`
	Message      string    `bson:"message"`
	OccurredAt   time.Time `bson:"occurredAt"`
}

// BatchReport summarizes one batch reconciliation run. The failure
// list is append-only and never aborts the batch.
type BatchReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Succeeded  int
	Skipped    int
	Failures   []FailureEntry
}
