package game

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type SolvedRecordRepo interface {
	// Upsert inserts rec unless (user, template) is already solved.
	Upsert(dbc dbctx.Context, rec *types.SolvedRecord) (bool, error)
	ListTemplateIDs(dbc dbctx.Context, userID uuid.UUID, difficulty types.Difficulty) ([]uuid.UUID, error)
}

type solvedRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSolvedRecordRepo(db *gorm.DB, baseLog *logger.Logger) SolvedRecordRepo {
	return &solvedRecordRepo{db: db, log: baseLog.With("repo", "SolvedRecordRepo")}
}

func (r *solvedRecordRepo) Upsert(dbc dbctx.Context, rec *types.SolvedRecord) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "template_id"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *solvedRecordRepo) ListTemplateIDs(dbc dbctx.Context, userID uuid.UUID, difficulty types.Difficulty) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if userID == uuid.Nil {
		return ids, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.SolvedRecord{}).
		Where("user_id = ? AND difficulty = ?", userID, difficulty).
		Pluck("template_id", &ids).Error
	return ids, err
}
