// Package normalizer turns user-supplied photos into bounded, re-encoded JPEGs.
//
// A Normalizer keeps only its configured defaults, so a single value can be
// shared by concurrent requests. Every call decodes into and encodes from
// buffers it allocates itself.
package normalizer

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/photo-normalizer/internal/models"

	// imaging registers jpeg, png, gif, tiff and bmp.
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth         = 1920
	DefaultMaxHeight        = 1920
	DefaultQuality          = 0.85
	DefaultThumbnailSize    = 400
	DefaultThumbnailQuality = 0.8
	DefaultMaxPixels        = 100_000_000
)

type Options struct {
	MaxWidth         int
	MaxHeight        int
	Quality          float64
	ThumbnailQuality float64
	// MaxPixels caps width*height of sources before any pixel is decoded.
	MaxPixels        int64
}

var DefaultOptions = Options{
	MaxWidth:         DefaultMaxWidth,
	MaxHeight:        DefaultMaxHeight,
	Quality:          DefaultQuality,
	ThumbnailQuality: DefaultThumbnailQuality,
	MaxPixels:        DefaultMaxPixels,
}

type Normalizer struct {
	opts Options
}

func New(opts ...Options) *Normalizer {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxWidth <= 0 {
		options.MaxWidth = DefaultMaxWidth
	}
	if options.MaxHeight <= 0 {
		options.MaxHeight = DefaultMaxHeight
	}
	if options.Quality <= 0 || options.Quality > 1 {
		options.Quality = DefaultQuality
	}
	if options.ThumbnailQuality <= 0 || options.ThumbnailQuality > 1 {
		options.ThumbnailQuality = DefaultThumbnailQuality
	}
	if options.MaxPixels <= 0 {
		options.MaxPixels = DefaultMaxPixels
	}
	return &Normalizer{opts: options}
}

func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize renders the display variant of a decoded photo: fitted into the
// configured box, credited with watermark when one is given, and encoded at
// the configured quality.
func (n *Normalizer) Normalize(img image.Image, watermark *models.WatermarkRequest) (*models.NormalizedImage, error) {
	resized, err := n.ResizeImage(img, n.opts.MaxWidth, n.opts.MaxHeight)
	if err != nil {
		return nil, err
	}
	return Encode(Watermark(resized, watermark), n.opts.Quality)
}

// Resize fits source inside maxWidth x maxHeight, preserving its aspect ratio,
// and re-encodes it as JPEG at quality (0, 1]. Images already inside the box
// keep their natural dimensions; nothing is ever upscaled.
func (n *Normalizer) Resize(source models.SourceImage, maxWidth, maxHeight int, quality float64) (*models.NormalizedImage, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("%w: bounds %dx%d must be positive", ErrInvalidRequest, maxWidth, maxHeight)
	}
	if quality <= 0 || quality > 1 {
		return nil, fmt.Errorf("%w: quality %.2f must be in (0, 1]", ErrInvalidRequest, quality)
	}

	img, err := n.Decode(source.Data)
	if err != nil {
		return nil, err
	}

	return n.render(img, maxWidth, maxHeight, quality)
}

// CreateThumbnail fits source inside a size x size box at the thumbnail quality.
func (n *Normalizer) CreateThumbnail(source models.SourceImage, size int) (*models.NormalizedImage, error) {
	return n.Resize(source, size, size, n.opts.ThumbnailQuality)
}

// NeedsResizing reads only the image header and reports whether either axis,
// after EXIF orientation, exceeds its bound. Undecodable input reports false
// so callers fall back to the original file.
func (n *Normalizer) NeedsResizing(source models.SourceImage, maxWidth, maxHeight int) bool {
	cfg, _, err := orientedConfig(source.Data)
	if err != nil {
		return false
	}
	return cfg.Width > maxWidth || cfg.Height > maxHeight
}

// ResizeImage scales an already decoded image into the box without encoding
// it, for callers that draw on the result before calling Encode.
func (n *Normalizer) ResizeImage(img image.Image, maxWidth, maxHeight int) (image.Image, error) {
	bounds := img.Bounds()
	width, height := FitDimensions(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width <= 0 || height <= 0 {
		return nil, &EncodeError{Err: fmt.Errorf("zero-area canvas %dx%d", width, height)}
	}

	if width == bounds.Dx() && height == bounds.Dy() {
		return img, nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// ThumbnailImage is CreateThumbnail for an already decoded image.
func (n *Normalizer) ThumbnailImage(img image.Image, size int) (*models.NormalizedImage, error) {
	return n.render(img, size, size, n.opts.ThumbnailQuality)
}

func (n *Normalizer) render(img image.Image, maxWidth, maxHeight int, quality float64) (*models.NormalizedImage, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("%w: bounds %dx%d must be positive", ErrInvalidRequest, maxWidth, maxHeight)
	}

	resized, err := n.ResizeImage(img, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	return Encode(resized, quality)
}

// Decode decodes data, applying any EXIF orientation. Sources whose header
// declares more than MaxPixels are rejected before pixels are allocated.
func (n *Normalizer) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("empty payload")}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > n.opts.MaxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrTooManyPixels, cfg.Width, cfg.Height, n.opts.MaxPixels)}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}
