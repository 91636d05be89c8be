package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type ProgressRecordRepo interface {
	GetByUserExercise(dbc dbctx.Context, userID uuid.UUID, exerciseID string) (*types.ProgressRecord, error)
	// CreateIfAbsent reports false when a row for (user, exercise) already exists.
	CreateIfAbsent(dbc dbctx.Context, rec *types.ProgressRecord) (bool, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ProgressRecord, error)
	GetLevels(dbc dbctx.Context, exerciseID string, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type progressRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRecordRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRecordRepo {
	return &progressRecordRepo{db: db, log: baseLog.With("repo", "ProgressRecordRepo")}
}

func (r *progressRecordRepo) GetByUserExercise(dbc dbctx.Context, userID uuid.UUID, exerciseID string) (*types.ProgressRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ProgressRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *progressRecordRepo) CreateIfAbsent(dbc dbctx.Context, rec *types.ProgressRecord) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "exercise_id"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *progressRecordRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ProgressRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProgressRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("exercise_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRecordRepo) GetLevels(dbc dbctx.Context, exerciseID string, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []*types.ProgressRecord
	if err := transaction.WithContext(dbc.Ctx).
		Select("user_id", "level").
		Where("exercise_id = ? AND user_id IN ?", exerciseID, userIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Level
	}
	return out, nil
}
