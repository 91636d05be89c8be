package game

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type PuzzleTemplateRepo interface {
	Create(dbc dbctx.Context, t *types.PuzzleTemplate) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PuzzleTemplate, error)
	// ListCandidateIDs returns template ids for a difficulty, skipping exclude.
	ListCandidateIDs(dbc dbctx.Context, difficulty types.Difficulty, exclude []uuid.UUID) ([]uuid.UUID, error)
	IncrementTimesPlayed(dbc dbctx.Context, id uuid.UUID) error
}

type puzzleTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPuzzleTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PuzzleTemplateRepo {
	return &puzzleTemplateRepo{db: db, log: baseLog.With("repo", "PuzzleTemplateRepo")}
}

func (r *puzzleTemplateRepo) Create(dbc dbctx.Context, t *types.PuzzleTemplate) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(t).Error
}

func (r *puzzleTemplateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PuzzleTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.PuzzleTemplate
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *puzzleTemplateRepo) ListCandidateIDs(dbc dbctx.Context, difficulty types.Difficulty, exclude []uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.PuzzleTemplate{}).
		Where("difficulty = ?", difficulty)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var ids []uuid.UUID
	if err := q.Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *puzzleTemplateRepo) IncrementTimesPlayed(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PuzzleTemplate{}).
		Where("id = ?", id).
		UpdateColumn("times_played", gorm.Expr("times_played + 1")).Error
}
