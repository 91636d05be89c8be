package spotdiff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	overlayFontOnce sync.Once
	overlayFont     *truetype.Font
	overlayFontErr  error
)

func loadOverlayFace(size float64) (font.Face, error) {
	overlayFontOnce.Do(func() {
		overlayFont, overlayFontErr = truetype.Parse(gobold.TTF)
	})
	if overlayFontErr != nil {
		return nil, overlayFontErr
	}
	return truetype.NewFace(overlayFont, &truetype.Options{Size: size}), nil
}

// RenderOverlay draws every difference rectangle, numbered in generation
// order, over the base image. Used to eyeball generated templates.
func RenderOverlay(base []byte, diffs []game.Difference) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, 0, 0)

	face, err := loadOverlayFace(h / 24)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	dc.SetFontFace(face)

	for i, d := range diffs {
		x0, y0 := d.XMin/100*w, d.YMin/100*h
		rw, rh := (d.XMax-d.XMin)/100*w, (d.YMax-d.YMin)/100*h

		dc.SetColor(color.NRGBA{R: 255, G: 40, B: 40, A: 60})
		dc.DrawRectangle(x0, y0, rw, rh)
		dc.Fill()

		dc.SetColor(color.NRGBA{R: 255, G: 40, B: 40, A: 255})
		dc.SetLineWidth(3)
		dc.DrawRectangle(x0, y0, rw, rh)
		dc.Stroke()

		label := fmt.Sprintf("%d", i+1)
		if d.Found {
			label += "*"
		}
		dc.SetColor(color.White)
		dc.DrawStringAnchored(label, x0+rw/2, y0+rh/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
