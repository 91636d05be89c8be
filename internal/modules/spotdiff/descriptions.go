package spotdiff

import (
	"fmt"
	"strings"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
)

type changeKind int

const (
	changeColor changeKind = iota
	changeAdded
	changeRemoved
	changeRotated
	changeResized
	changeKinds
)

// Plan is everything needed to ask for an image pair.
type Plan struct {
	Difficulty  game.Difficulty
	Scene       string
	Width       int
	Height      int
	Differences []game.Difference
}

// Planner turns a difficulty into a scene and a described set of differences.
type Planner struct {
	cfg    config.SpotDifferenceConfig
	layout *Layout
	rng    *Rand
}

func NewPlanner(cfg config.SpotDifferenceConfig, rng *Rand) *Planner {
	if rng == nil {
		rng = NewTimeRand()
	}
	counts := make(map[game.Difficulty]int, len(cfg.Difficulties))
	for name, s := range cfg.Difficulties {
		counts[game.Difficulty(name)] = s.Differences
	}
	return &Planner{cfg: cfg, layout: NewLayout(counts, rng), rng: rng}
}

func (p *Planner) Plan(d game.Difficulty) (Plan, error) {
	settings, ok := p.cfg.Difficulties[string(d)]
	if !ok {
		return Plan{}, fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidArgument, d)
	}
	zones, err := p.layout.Select(d)
	if err != nil {
		return Plan{}, err
	}
	diffs := make([]game.Difference, 0, len(zones))
	for _, z := range zones {
		diffs = append(diffs, game.Difference{
			Zone:        z.Name,
			XMin:        z.XMin,
			XMax:        z.XMax,
			YMin:        z.YMin,
			YMax:        z.YMax,
			Description: p.describe(z),
		})
	}
	return Plan{
		Difficulty:  d,
		Scene:       p.pick(p.cfg.Scenes),
		Width:       settings.Width,
		Height:      settings.Height,
		Differences: diffs,
	}, nil
}

func (p *Planner) describe(z Zone) string {
	var change string
	switch changeKind(p.rng.Intn(int(changeKinds))) {
	case changeColor:
		change = "the color of an object is changed to " + p.pick(p.cfg.Colors)
	case changeAdded:
		change = "a new element is added: " + p.pick(p.cfg.Objects)
	case changeRemoved:
		change = "one element is removed"
	case changeRotated:
		change = "an object is turned the other way"
	default:
		change = "the size of an object is changed"
	}
	return change + " " + z.Locative
}

func (p *Planner) pick(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[p.rng.Intn(len(xs))]
}

func (pl Plan) Size() string {
	return fmt.Sprintf("%dx%d", pl.Width, pl.Height)
}

// ScenePrompt describes the unmodified image.
func (pl Plan) ScenePrompt() string {
	return fmt.Sprintf("Create a detailed, colorful illustration of %s.\n"+
		"The image should be clear and have distinct objects that can be easily modified.\n"+
		"Style: cartoon illustration, bright colors, clear details.\n"+
		"Size: %s", pl.Scene, pl.Size())
}

// EditPrompt asks for the same picture with the numbered differences applied.
func (pl Plan) EditPrompt() string {
	var b strings.Builder
	b.WriteString("Create a VERY SIMILAR illustration to this image, but with these SPECIFIC differences:\n\n")
	for i, d := range pl.Differences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Description)
	}
	b.WriteString("\nIMPORTANT:\n")
	b.WriteString("- Keep everything else EXACTLY the same as the original image\n")
	b.WriteString("- Only change the elements mentioned above\n")
	b.WriteString("- Make the differences clear but not too obvious\n")
	b.WriteString("- Maintain the same style, colors, and composition\n")
	fmt.Fprintf(&b, "- Size: %s", pl.Size())
	return b.String()
}
