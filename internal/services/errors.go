package services

import (
	"errors"
	"fmt"

	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
)

// maxAggregateAttempts bounds retries of an aggregate write that lost a
// compare-and-set race.
const maxAggregateAttempts = 3

// ErrUnauthorized is returned when a bearer token is missing or fails verification.
var ErrUnauthorized = errors.New("unauthorized")

// gameError folds aggregate failure codes into the game error taxonomy the
// http layer understands. Errors already carrying a game sentinel pass through.
func gameError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		game.ErrInvalidArgument,
		game.ErrNotFound,
		game.ErrInvalidState,
		game.ErrGenerationFailure,
		game.ErrConflict,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return fmt.Errorf("%w: %v", game.ErrInvalidArgument, err)
	case domainagg.CodeNotFound:
		return fmt.Errorf("%w: %v", game.ErrNotFound, err)
	case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return fmt.Errorf("%w: %v", game.ErrInvalidState, err)
	case domainagg.CodeConflict, domainagg.CodeRetryable:
		return fmt.Errorf("%w: %v", game.ErrConflict, err)
	}
	return err
}
