package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var ProgressAggregateContract = Contract{
	Name:   "Progress.ResultAggregate",
	Tables: []string{"result_record", "progress_record"},
	Notes:  "Appends a result record and folds it into the (user, exercise) progress row.",
}

// ProgressAggregate records results for every exercise type.
//
// Failures carry *aggregates.Error with codes:
// CodeValidation, CodeConflict, CodeRetryable, CodeInternal.
type ProgressAggregate interface {
	Aggregate

	RecordResult(ctx context.Context, in RecordResultInput) (RecordResultResult, error)
}

type RecordResultInput struct {
	UserID         uuid.UUID
	ExerciseID     string
	Score          float64
	ElapsedSeconds float64
	Difficulty     string
	LowerIsBetter  bool
	PayloadKind    string
	Payload        []byte
	At             time.Time
}

type RecordResultResult struct {
	ResultID uuid.UUID
	Progress ProgressSnapshot
}

type ProgressSnapshot struct {
	UserID        uuid.UUID
	ExerciseID    string
	Level         int
	TotalAttempts int
	BestScore     float64
	AverageScore  float64
	LastPlayedAt  time.Time
}
