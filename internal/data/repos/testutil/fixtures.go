package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, first string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     first + "@example.com",
		FirstName: first,
		LastName:  "Tester",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// TwoZoneDifferences is a small fixed layout: top-left then middle-center.
func TwoZoneDifferences() []types.Difference {
	return []types.Difference{
		{Zone: "top-left", XMin: 0, XMax: 33, YMin: 0, YMax: 33, Description: "a new element is added: cup in the top left corner"},
		{Zone: "middle-center", XMin: 33, XMax: 67, YMin: 33, YMax: 67, Description: "one element is removed in the center"},
	}
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, difficulty types.Difficulty, diffs []types.Difference) *types.PuzzleTemplate {
	tb.Helper()
	if diffs == nil {
		diffs = TwoZoneDifferences()
	}
	t := &types.PuzzleTemplate{
		ID:               uuid.New(),
		Difficulty:       difficulty,
		Scene:            "a kitchen with appliances and utensils",
		ImageA:           "data:image/png;base64,AAAA",
		ImageB:           "data:image/png;base64,BBBB",
		Width:            512,
		Height:           512,
		Differences:      datatypes.JSONSlice[types.Difference](diffs),
		TotalDifferences: len(diffs),
		TimesPlayed:      1,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tpl *types.PuzzleTemplate, startedAt time.Time) *types.GameSession {
	tb.Helper()
	s := &types.GameSession{
		ID:               uuid.New(),
		UserID:           userID,
		TemplateID:       tpl.ID,
		Difficulty:       tpl.Difficulty,
		Differences:      datatypes.JSONSlice[types.Difference](game.CloneDifferences(tpl.Differences)),
		TotalDifferences: tpl.TotalDifferences,
		StartedAt:        startedAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedResult(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, exerciseID string, seconds float64) *types.ResultRecord {
	tb.Helper()
	r := &types.ResultRecord{
		ID:             uuid.New(),
		UserID:         userID,
		ExerciseID:     exerciseID,
		Score:          seconds,
		ElapsedSeconds: seconds,
		PayloadKind:    "generic",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed result: %v", err)
	}
	return r
}
