package spotdiff

import (
	"fmt"
	"math"

	"github.com/yungbote/brainforge-backend/internal/domain/game"
)

// Outcome is the result of testing one click against a difference list.
type Outcome struct {
	Hit        bool
	Index      int
	Zone       string
	FoundCount int
	Completed  bool
	// Differences is a fresh copy with the hit zone marked; nil on a miss.
	Differences []game.Difference
}

func ValidateCoordinates(x, y float64) error {
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return fmt.Errorf("%w: coordinates must be within [0,100], got (%v, %v)", game.ErrInvalidArgument, x, y)
		}
	}
	return nil
}

// Match returns the index of the first unfound difference containing (x, y),
// scanning in generation order. Overlaps resolve to the earliest index.
func Match(diffs []game.Difference, x, y float64) (int, bool) {
	for i, d := range diffs {
		if !d.Found && d.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}

// Resolve applies a click without mutating diffs.
func Resolve(diffs []game.Difference, x, y float64) (Outcome, error) {
	if err := ValidateCoordinates(x, y); err != nil {
		return Outcome{}, err
	}
	found := game.CountFound(diffs)
	i, ok := Match(diffs, x, y)
	if !ok {
		return Outcome{
			Index:      -1,
			FoundCount: found,
			Completed:  len(diffs) > 0 && found == len(diffs),
		}, nil
	}
	next := make([]game.Difference, len(diffs))
	copy(next, diffs)
	next[i].Found = true
	found++
	return Outcome{
		Hit:         true,
		Index:       i,
		Zone:        next[i].Zone,
		FoundCount:  found,
		Completed:   found == len(next),
		Differences: next,
	}, nil
}
