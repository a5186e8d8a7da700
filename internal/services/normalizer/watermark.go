package normalizer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	WatermarkPadding        = 10
	DefaultPosition         = "bottom-right"
	DefaultWatermarkOpacity = 0.5
	watermarkBaseline       = 13
)

// Watermark draws a photographer credit onto a copy of img. Empty text
// returns img untouched; a missing opacity draws at DefaultWatermarkOpacity.
func Watermark(img image.Image, req *models.WatermarkRequest) image.Image {
	if req == nil || req.Text == "" {
		return img
	}

	bounds := img.Bounds()
	watermarked := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(watermarked, watermarked.Bounds(), img, bounds.Min, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, req.Text).Ceil()
	x, y := watermarkOrigin(watermarked.Bounds(), req.Position, textWidth)

	alpha := uint8(math.Round(255 * WatermarkOpacity(req)))
	textColor := image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha})

	d := &font.Drawer{
		Dst:  watermarked,
		Src:  textColor,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(req.Text)

	return watermarked
}

func watermarkOrigin(bounds image.Rectangle, position string, textWidth int) (int, int) {
	positions := map[string]struct{ x, y int }{
		"top-left":     {WatermarkPadding, WatermarkPadding + watermarkBaseline},
		"top-right":    {bounds.Dx() - textWidth - WatermarkPadding, WatermarkPadding + watermarkBaseline},
		"bottom-left":  {WatermarkPadding, bounds.Dy() - WatermarkPadding},
		"bottom-right": {bounds.Dx() - textWidth - WatermarkPadding, bounds.Dy() - WatermarkPadding},
		"center":       {(bounds.Dx() - textWidth) / 2, bounds.Dy() / 2},
	}

	pos, exists := positions[position]
	if !exists {
		pos = positions[DefaultPosition]
	}
	return max(0, pos.x), max(0, pos.y)
}

// WatermarkOpacity resolves the effective opacity of req, clamped to [0, 1].
func WatermarkOpacity(req *models.WatermarkRequest) float64 {
	if req == nil || req.Opacity == nil {
		return DefaultWatermarkOpacity
	}
	return min(1.0, max(0.0, *req.Opacity))
}
