package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var SpotDiffSessionAggregateContract = Contract{
	Name:   "SpotDifference.SessionAggregate",
	Tables: []string{"game_session", "solved_record", "result_record", "progress_record"},
	Notes: "Owns the click transition of one game session and, on completion, the result, " +
		"solved-record and progress writes.",
}

// SpotDiffSessionAggregate serializes click resolution per session.
//
// Failures carry *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed (completed or superseded session),
// CodeConflict (lost a concurrent click race), CodeRetryable, CodeInternal.
type SpotDiffSessionAggregate interface {
	Aggregate

	ResolveClick(ctx context.Context, in ResolveClickInput) (ResolveClickResult, error)
}

type ResolveClickInput struct {
	SessionID     uuid.UUID
	UserID        uuid.UUID
	XPercent      float64
	YPercent      float64
	ExerciseID    string
	LowerIsBetter bool
	At            time.Time
}

type ResolveClickResult struct {
	SessionID        uuid.UUID
	Difficulty       string
	Hit              bool
	Zone             string
	FoundCount       int
	TotalDifferences int
	Completed        bool
	ElapsedSeconds   float64
	ResultID         uuid.UUID
	Progress         *ProgressSnapshot
}
