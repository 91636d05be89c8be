package game

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolvedRecord marks a template as exhausted for one user.
type SolvedRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_solved_user_template,priority:1;index:idx_solved_user_difficulty,priority:1" json:"user_id"`
	TemplateID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_solved_user_template,priority:2" json:"template_id"`
	Difficulty Difficulty `gorm:"column:difficulty;not null;index:idx_solved_user_difficulty,priority:2" json:"difficulty"`
	SessionID  uuid.UUID  `gorm:"type:uuid;column:session_id" json:"session_id"`
	SolvedAt   time.Time  `gorm:"column:solved_at;not null" json:"solved_at"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (SolvedRecord) TableName() string { return "solved_record" }

func (r *SolvedRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
