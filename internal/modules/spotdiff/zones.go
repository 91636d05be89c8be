package spotdiff

import (
	"fmt"

	"github.com/yungbote/brainforge-backend/internal/domain/game"
)

// Zone is one cell of the fixed 3x3 partition, bounds in percent.
type Zone struct {
	Name     string
	XMin     float64
	XMax     float64
	YMin     float64
	YMax     float64
	Locative string
}

// Grid is the partition of the canvas. Adjacent cells share their edge line.
var Grid = [9]Zone{
	{Name: "top-left", XMin: 0, XMax: 33, YMin: 0, YMax: 33, Locative: "in the top left corner"},
	{Name: "top-center", XMin: 33, XMax: 67, YMin: 0, YMax: 33, Locative: "in the top center"},
	{Name: "top-right", XMin: 67, XMax: 100, YMin: 0, YMax: 33, Locative: "in the top right corner"},
	{Name: "middle-left", XMin: 0, XMax: 33, YMin: 33, YMax: 67, Locative: "on the left side, middle"},
	{Name: "middle-center", XMin: 33, XMax: 67, YMin: 33, YMax: 67, Locative: "in the center"},
	{Name: "middle-right", XMin: 67, XMax: 100, YMin: 33, YMax: 67, Locative: "on the right side, middle"},
	{Name: "bottom-left", XMin: 0, XMax: 33, YMin: 67, YMax: 100, Locative: "in the bottom left corner"},
	{Name: "bottom-center", XMin: 33, XMax: 67, YMin: 67, YMax: 100, Locative: "in the bottom center"},
	{Name: "bottom-right", XMin: 67, XMax: 100, YMin: 67, YMax: 100, Locative: "in the bottom right corner"},
}

// Layout samples difference sites from Grid.
type Layout struct {
	counts map[game.Difficulty]int
	rng    *Rand
}

func NewLayout(counts map[game.Difficulty]int, rng *Rand) *Layout {
	if rng == nil {
		rng = NewTimeRand()
	}
	return &Layout{counts: counts, rng: rng}
}

// Select returns the configured number of distinct zones for d, drawn
// uniformly without replacement and reshuffled on every call.
func (l *Layout) Select(d game.Difficulty) ([]Zone, error) {
	k, ok := l.counts[d]
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidArgument, d)
	}
	if k < 1 || k > len(Grid) {
		return nil, fmt.Errorf("%w: difference count %d out of range", game.ErrInvalidArgument, k)
	}
	perm := l.rng.Perm(len(Grid))
	out := make([]Zone, 0, k)
	for _, i := range perm[:k] {
		out = append(out, Grid[i])
	}
	return out, nil
}
