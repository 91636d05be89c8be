package repos

import (
	"github.com/yungbote/brainforge-backend/internal/data/repos/game"
	"github.com/yungbote/brainforge-backend/internal/data/repos/progress"
	"github.com/yungbote/brainforge-backend/internal/data/repos/user"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type PuzzleTemplateRepo = game.PuzzleTemplateRepo
type GameSessionRepo = game.GameSessionRepo
type SolvedRecordRepo = game.SolvedRecordRepo

type ResultRecordRepo = progress.ResultRecordRepo
type ProgressRecordRepo = progress.ProgressRecordRepo
type LeaderboardRow = progress.LeaderboardRow

// Repos bundles every table repo behind one constructor.
type Repos struct {
	Users     UserRepo
	Templates PuzzleTemplateRepo
	Sessions  GameSessionRepo
	Solved    SolvedRecordRepo
	Results   ResultRecordRepo
	Progress  ProgressRecordRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Users:     user.NewUserRepo(db, log),
		Templates: game.NewPuzzleTemplateRepo(db, log),
		Sessions:  game.NewGameSessionRepo(db, log),
		Solved:    game.NewSolvedRecordRepo(db, log),
		Results:   progress.NewResultRecordRepo(db, log),
		Progress:  progress.NewProgressRecordRepo(db, log),
	}
}
