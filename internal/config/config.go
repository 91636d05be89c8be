package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/brainforge-backend/internal/domain/game"
)

// GameConfig holds difficulty settings and per-exercise scoring policy.
type GameConfig struct {
	SpotDifference SpotDifferenceConfig      `yaml:"spot_difference"`
	Exercises      map[string]ExercisePolicy `yaml:"exercises"`
}

type SpotDifferenceConfig struct {
	ExerciseID   string                        `yaml:"exercise_id"`
	Difficulties map[string]DifficultySettings `yaml:"difficulties"`
	Scenes       []string                      `yaml:"scenes"`
	Colors       []string                      `yaml:"colors"`
	Objects      []string                      `yaml:"objects"`
}

type DifficultySettings struct {
	Differences int `yaml:"differences"`
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
}

// Size renders the settings in the WxH form image APIs expect.
func (d DifficultySettings) Size() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

const (
	ScoreSourceTime  = "time"
	ScoreSourceScore = "score"
)

type ExercisePolicy struct {
	LowerIsBetter bool   `yaml:"lower_is_better"`
	ScoreSource   string `yaml:"score_source"`
}

// Policy returns the scoring policy for an exercise. Unknown exercises are
// scored by elapsed time, lower is better.
func (c GameConfig) Policy(exerciseID string) ExercisePolicy {
	if p, ok := c.Exercises[strings.TrimSpace(exerciseID)]; ok {
		if p.ScoreSource == "" {
			p.ScoreSource = ScoreSourceTime
		}
		return p
	}
	return ExercisePolicy{LowerIsBetter: true, ScoreSource: ScoreSourceTime}
}

func (c GameConfig) Difficulty(d game.Difficulty) (DifficultySettings, error) {
	s, ok := c.SpotDifference.Difficulties[string(d)]
	if !ok {
		return DifficultySettings{}, fmt.Errorf("%w: no settings for difficulty %q", game.ErrInvalidArgument, d)
	}
	return s, nil
}

// Validate checks the invariants the engine relies on.
func (c GameConfig) Validate() error {
	sd := c.SpotDifference
	if strings.TrimSpace(sd.ExerciseID) == "" {
		return fmt.Errorf("spot_difference.exercise_id is required")
	}
	for _, d := range game.Difficulties {
		s, ok := sd.Difficulties[string(d)]
		if !ok {
			return fmt.Errorf("spot_difference.difficulties.%s is missing", d)
		}
		if s.Differences < 1 || s.Differences > 9 {
			return fmt.Errorf("spot_difference.difficulties.%s.differences must be in [1,9], got %d", d, s.Differences)
		}
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("spot_difference.difficulties.%s needs a positive width and height", d)
		}
	}
	if len(sd.Scenes) == 0 || len(sd.Colors) == 0 || len(sd.Objects) == 0 {
		return fmt.Errorf("spot_difference needs scenes, colors and objects")
	}
	for id, p := range c.Exercises {
		switch p.ScoreSource {
		case "", ScoreSourceTime, ScoreSourceScore:
		default:
			return fmt.Errorf("exercises.%s.score_source %q is not time or score", id, p.ScoreSource)
		}
	}
	return nil
}

// ExerciseIDs lists the configured exercises in name order.
func (c GameConfig) ExerciseIDs() []string {
	out := make([]string, 0, len(c.Exercises))
	for id := range c.Exercises {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
