package domain

import (
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/domain/progress"
	"github.com/yungbote/brainforge-backend/internal/domain/user"
)

type User = user.User

type Difficulty = game.Difficulty
type Difference = game.Difference
type PuzzleTemplate = game.PuzzleTemplate
type GameSession = game.GameSession
type SolvedRecord = game.SolvedRecord

type ResultRecord = progress.ResultRecord
type ProgressRecord = progress.ProgressRecord

const (
	DifficultyEasy   = game.DifficultyEasy
	DifficultyMedium = game.DifficultyMedium
	DifficultyHard   = game.DifficultyHard
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&PuzzleTemplate{},
		&GameSession{},
		&SolvedRecord{},
		&ResultRecord{},
		&ProgressRecord{},
	}
}
