package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResultRecord is the common envelope of one finished attempt. The log is
// append-only; exercise-specific data rides in Payload tagged by PayloadKind.
type ResultRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_result_user_exercise,priority:1" json:"user_id"`
	ExerciseID     string         `gorm:"column:exercise_id;not null;index:idx_result_user_exercise,priority:2;index:idx_result_exercise_time,priority:1" json:"exercise_id"`
	Score          float64        `gorm:"column:score;not null" json:"score"`
	ElapsedSeconds float64        `gorm:"column:elapsed_seconds;not null;index:idx_result_exercise_time,priority:2" json:"time"`
	Difficulty     string         `gorm:"column:difficulty" json:"difficulty,omitempty"`
	PayloadKind    string         `gorm:"column:payload_kind;not null;default:'generic'" json:"payload_kind"`
	Payload        datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ResultRecord) TableName() string { return "result_record" }

func (r *ResultRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
