package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressRecord is the running summary for one (user, exercise) pair.
// Level is always 1 + TotalAttempts/10.
type ProgressRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_exercise,priority:1" json:"user_id"`
	ExerciseID    string    `gorm:"column:exercise_id;not null;uniqueIndex:idx_progress_user_exercise,priority:2;index" json:"exercise_id"`
	Level         int       `gorm:"column:level;not null;default:1" json:"level"`
	TotalAttempts int       `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
	BestScore     float64   `gorm:"column:best_score;not null;default:0" json:"best_score"`
	AverageScore  float64   `gorm:"column:average_score;not null;default:0" json:"average_score"`
	LastPlayedAt  time.Time `gorm:"column:last_played_at;not null" json:"last_played"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (ProgressRecord) TableName() string { return "progress_record" }

func (p *ProgressRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
