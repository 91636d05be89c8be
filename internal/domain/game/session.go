package game

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameSession is one user's attempt at a template. It owns a private copy of
// the template's differences; found flags never leak back to the template.
//
// Version increments on every write and guards click resolution.
type GameSession struct {
	ID               uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                       `gorm:"type:uuid;not null;index:idx_game_session_user_started,priority:1" json:"user_id"`
	TemplateID       uuid.UUID                       `gorm:"type:uuid;not null;index" json:"template_id"`
	Difficulty       Difficulty                      `gorm:"column:difficulty;not null" json:"difficulty"`
	Differences      datatypes.JSONSlice[Difference] `gorm:"column:differences;not null" json:"differences"`
	FoundCount       int                             `gorm:"column:found_count;not null;default:0" json:"found_count"`
	TotalDifferences int                             `gorm:"column:total_differences;not null" json:"total_differences"`
	Completed        bool                            `gorm:"column:completed;not null;default:false;index" json:"completed"`
	Version          int                             `gorm:"column:version;not null;default:0" json:"version"`
	StartedAt        time.Time                       `gorm:"column:started_at;not null;index:idx_game_session_user_started,priority:2" json:"started_at"`
	EndedAt          *time.Time                      `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt        time.Time                       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                       `gorm:"not null" json:"updated_at"`
}

func (GameSession) TableName() string { return "game_session" }

func (s *GameSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ElapsedSeconds is end minus start for completed sessions, now minus start otherwise.
func (s *GameSession) ElapsedSeconds(now time.Time) float64 {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	d := end.Sub(s.StartedAt).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// FoundAreas lists the zone names found so far, in generation order.
func (s *GameSession) FoundAreas() []string {
	out := make([]string, 0, s.FoundCount)
	for _, d := range s.Differences {
		if d.Found {
			out = append(out, d.Zone)
		}
	}
	return out
}
