package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/platform/gcp"
	"github.com/yungbote/brainforge-backend/internal/platform/openai"
)

type fakeImageClient struct {
	original []byte
	edited   []byte
	genErr   error
	editErr  error

	mu          sync.Mutex
	prompts     []string
	editedInput []byte
}

func (f *fakeImageClient) GenerateImage(_ context.Context, prompt, _ string) (openai.ImageGeneration, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.genErr != nil {
		return openai.ImageGeneration{}, f.genErr
	}
	return openai.ImageGeneration{Bytes: f.original, MimeType: "image/png"}, nil
}

func (f *fakeImageClient) EditImage(_ context.Context, img []byte, prompt, _ string) (openai.ImageGeneration, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.editedInput = img
	f.mu.Unlock()
	if f.editErr != nil {
		return openai.ImageGeneration{}, f.editErr
	}
	return openai.ImageGeneration{Bytes: f.edited, MimeType: "image/png"}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Put(_ context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && strings.HasSuffix(key, s.failOn) {
		return "", errors.New("bucket unavailable")
	}
	s.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func newTestGenerator(t *testing.T, env *testEnv, images openai.ImageClient, store gcp.ImageStore) PuzzleGenerator {
	t.Helper()
	planner := spotdiff.NewPlanner(env.cfg.SpotDifference, spotdiff.NewRand(7))
	return NewPuzzleGenerator(env.log, planner, images, store, nil)
}

func TestPuzzleGeneratorProducesSizedPair(t *testing.T) {
	env := newTestEnv(t)
	images := &fakeImageClient{
		original: solidPNG(t, 64, 64, color.RGBA{R: 200, A: 255}),
		edited:   solidPNG(t, 80, 40, color.RGBA{B: 200, A: 255}),
	}
	store := newFakeStore()
	gen := newTestGenerator(t, env, images, store)

	tpl, err := gen.Generate(context.Background(), game.DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tpl.TotalDifferences != 5 || len(tpl.Differences) != 5 {
		t.Fatalf("differences: total=%d len=%d", tpl.TotalDifferences, len(tpl.Differences))
	}
	if tpl.Width != 768 || tpl.Height != 768 || tpl.TimesPlayed != 1 {
		t.Fatalf("template shape: %+v", tpl)
	}
	for _, d := range tpl.Differences {
		if d.Found {
			t.Fatalf("fresh template has a found difference: %+v", d)
		}
	}
	if len(store.objects) != 2 {
		t.Fatalf("uploaded objects: want=2 got=%d", len(store.objects))
	}
	for _, key := range []string{tpl.ImageAKey, tpl.ImageBKey} {
		raw, ok := store.objects[key]
		if !ok {
			t.Fatalf("missing upload for %q", key)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("decode %q: %v", key, err)
		}
		if cfg.Width != 768 || cfg.Height != 768 {
			t.Fatalf("%q size: %dx%d", key, cfg.Width, cfg.Height)
		}
	}
	if !strings.HasPrefix(tpl.ImageA, "https://cdn.example.com/spot-difference/medium/") {
		t.Fatalf("ImageA url: %q", tpl.ImageA)
	}
	if len(images.prompts) != 2 || !strings.Contains(images.prompts[1], "5. ") {
		t.Fatalf("prompts: %v", images.prompts)
	}
	if !bytes.Equal(images.editedInput, store.objects[tpl.ImageAKey]) {
		t.Fatalf("edit should start from the normalized original")
	}
}

func TestPuzzleGeneratorFailures(t *testing.T) {
	env := newTestEnv(t)
	okPNG := solidPNG(t, 16, 16, color.White)

	t.Run("not configured", func(t *testing.T) {
		gen := newTestGenerator(t, env, nil, newFakeStore())
		_, err := gen.Generate(context.Background(), game.DifficultyEasy)
		if !errors.Is(err, game.ErrGenerationFailure) {
			t.Fatalf("want ErrGenerationFailure, got %v", err)
		}
	})

	t.Run("model error", func(t *testing.T) {
		gen := newTestGenerator(t, env, &fakeImageClient{genErr: errors.New("quota exceeded")}, newFakeStore())
		_, err := gen.Generate(context.Background(), game.DifficultyEasy)
		if !errors.Is(err, game.ErrGenerationFailure) {
			t.Fatalf("want ErrGenerationFailure, got %v", err)
		}
	})

	t.Run("undecodable image", func(t *testing.T) {
		gen := newTestGenerator(t, env, &fakeImageClient{original: []byte("nope"), edited: okPNG}, newFakeStore())
		_, err := gen.Generate(context.Background(), game.DifficultyEasy)
		if !errors.Is(err, game.ErrGenerationFailure) {
			t.Fatalf("want ErrGenerationFailure, got %v", err)
		}
	})

	t.Run("second upload fails", func(t *testing.T) {
		store := newFakeStore()
		store.failOn = "/b.png"
		gen := newTestGenerator(t, env, &fakeImageClient{original: okPNG, edited: okPNG}, store)
		_, err := gen.Generate(context.Background(), game.DifficultyEasy)
		if !errors.Is(err, game.ErrGenerationFailure) {
			t.Fatalf("want ErrGenerationFailure, got %v", err)
		}
		if len(store.objects) != 0 || len(store.deleted) != 1 {
			t.Fatalf("orphan cleanup: objects=%d deleted=%v", len(store.objects), store.deleted)
		}
	})
}

func TestPuzzleGeneratorDiscard(t *testing.T) {
	env := newTestEnv(t)
	okPNG := solidPNG(t, 16, 16, color.White)
	store := newFakeStore()
	gen := newTestGenerator(t, env, &fakeImageClient{original: okPNG, edited: okPNG}, store)
	tpl, err := gen.Generate(context.Background(), game.DifficultyEasy)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gen.Discard(context.Background(), tpl)
	if len(store.objects) != 0 || len(store.deleted) != 2 {
		t.Fatalf("Discard: objects=%d deleted=%v", len(store.objects), store.deleted)
	}
}
