package game

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PuzzleTemplate is a generated image pair with its difference sites.
// Rows are immutable after insert except for TimesPlayed.
type PuzzleTemplate struct {
	ID               uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	Difficulty       Difficulty                      `gorm:"column:difficulty;not null;index" json:"difficulty"`
	Scene            string                          `gorm:"column:scene;not null" json:"scene"`
	ImageA           string                          `gorm:"column:image_a;type:text;not null" json:"image_a"`
	ImageB           string                          `gorm:"column:image_b;type:text;not null" json:"image_b"`
	ImageAKey        string                          `gorm:"column:image_a_key" json:"image_a_key,omitempty"`
	ImageBKey        string                          `gorm:"column:image_b_key" json:"image_b_key,omitempty"`
	Width            int                             `gorm:"column:width;not null;default:0" json:"width"`
	Height           int                             `gorm:"column:height;not null;default:0" json:"height"`
	Differences      datatypes.JSONSlice[Difference] `gorm:"column:differences;not null" json:"differences"`
	TotalDifferences int                             `gorm:"column:total_differences;not null" json:"total_differences"`
	TimesPlayed      int                             `gorm:"column:times_played;not null;default:0" json:"times_played"`
	CreatedAt        time.Time                       `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time                       `gorm:"not null" json:"updated_at"`
}

func (PuzzleTemplate) TableName() string { return "puzzle_template" }

func (t *PuzzleTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
