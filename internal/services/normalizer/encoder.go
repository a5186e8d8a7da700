package normalizer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/photo-normalizer/internal/models"
)

// Encode writes img as JPEG at quality (0, 1]. Transparent pixels are
// flattened onto white since JPEG has no alpha channel.
func Encode(img image.Image, quality float64) (*models.NormalizedImage, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, &EncodeError{Err: fmt.Errorf("zero-area canvas %dx%d", bounds.Dx(), bounds.Dy())}
	}

	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	canvas = imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)

	buffer := &bytes.Buffer{}
	if err := imaging.Encode(buffer, canvas, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return nil, &EncodeError{Err: err}
	}

	return &models.NormalizedImage{
		Data:        buffer.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: models.ContentTypeJPEG,
	}, nil
}

// jpegQuality maps a (0, 1] fraction onto the encoder's 1-100 scale.
func jpegQuality(quality float64) int {
	q := int(math.Round(quality * 100))
	return min(100, max(1, q))
}
