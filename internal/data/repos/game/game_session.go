package game

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type GameSessionRepo interface {
	Create(dbc dbctx.Context, s *types.GameSession) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GameSession, error)
	// GetLatestActiveForUser returns the most recently started incomplete
	// session, or nil. Ties on started_at break by id.
	GetLatestActiveForUser(dbc dbctx.Context, userID uuid.UUID) (*types.GameSession, error)
}

type gameSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameSessionRepo(db *gorm.DB, baseLog *logger.Logger) GameSessionRepo {
	return &gameSessionRepo{db: db, log: baseLog.With("repo", "GameSessionRepo")}
}

func (r *gameSessionRepo) Create(dbc dbctx.Context, s *types.GameSession) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(s).Error
}

func (r *gameSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GameSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.GameSession
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

func (r *gameSessionRepo) GetLatestActiveForUser(dbc dbctx.Context, userID uuid.UUID) (*types.GameSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out types.GameSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND completed = ?", userID, false).
		Order("started_at DESC, id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}
