package progress

import (
	"time"

	domain "github.com/yungbote/brainforge-backend/internal/domain/progress"
)

const attemptsPerLevel = 10

// LevelFor derives the level from the attempt count.
func LevelFor(totalAttempts int) int {
	if totalAttempts < 0 {
		totalAttempts = 0
	}
	return 1 + totalAttempts/attemptsPerLevel
}

// Apply folds one score into prev and returns the new record. prev may be
// nil for a first attempt; the first score seeds both best and average.
// Identity fields are copied from prev, so callers set them on first insert.
func Apply(prev *domain.ProgressRecord, score float64, lowerIsBetter bool, at time.Time) domain.ProgressRecord {
	var next domain.ProgressRecord
	if prev != nil {
		next = *prev
	}
	total := next.TotalAttempts
	switch {
	case total <= 0:
		total = 0
		next.BestScore = score
		next.AverageScore = score
	default:
		if lowerIsBetter {
			if score < next.BestScore {
				next.BestScore = score
			}
		} else if score > next.BestScore {
			next.BestScore = score
		}
		next.AverageScore = (next.AverageScore*float64(total) + score) / float64(total+1)
	}
	next.TotalAttempts = total + 1
	next.Level = LevelFor(next.TotalAttempts)
	next.LastPlayedAt = at
	return next
}
