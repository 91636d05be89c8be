package progress

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

// LeaderboardRow is one user's aggregate over the result log.
type LeaderboardRow struct {
	UserID     uuid.UUID `gorm:"column:user_id"`
	BestTime   float64   `gorm:"column:best_time"`
	TotalGames int64     `gorm:"column:total_games"`
}

type ResultRecordRepo interface {
	Create(dbc dbctx.Context, rec *types.ResultRecord) error
	ListForUser(dbc dbctx.Context, userID uuid.UUID, exerciseID string, limit int) ([]*types.ResultRecord, error)
	CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	// TopByExercise groups by user, orders by fastest time then user id.
	TopByExercise(dbc dbctx.Context, exerciseID string, limit int) ([]LeaderboardRow, error)
}

type resultRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRecordRepo(db *gorm.DB, baseLog *logger.Logger) ResultRecordRepo {
	return &resultRecordRepo{db: db, log: baseLog.With("repo", "ResultRecordRepo")}
}

func (r *resultRecordRepo) Create(dbc dbctx.Context, rec *types.ResultRecord) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(rec).Error
}

func (r *resultRecordRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, exerciseID string, limit int) ([]*types.ResultRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ResultRecord
	if userID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if ex := strings.TrimSpace(exerciseID); ex != "" {
		q = q.Where("exercise_id = ?", ex)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resultRecordRepo) CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.ResultRecord{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *resultRecordRepo) TopByExercise(dbc dbctx.Context, exerciseID string, limit int) ([]LeaderboardRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []LeaderboardRow
	if limit <= 0 {
		return rows, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.ResultRecord{}).
		Select("user_id, MIN(elapsed_seconds) AS best_time, COUNT(*) AS total_games").
		Where("exercise_id = ?", exerciseID).
		Group("user_id").
		Order("best_time ASC, user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
