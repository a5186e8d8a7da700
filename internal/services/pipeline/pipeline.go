// Package pipeline normalizes an uploaded photo into its display and
// thumbnail variants and stores both.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"go.uber.org/zap"
)

var ErrMissingOwner = errors.New("owner id is required")

// Uploader stores a batch of files for one owner, returning one URL per file.
type Uploader interface {
	UploadMultiple(ctx context.Context, ownerID string, files []models.UploadFile) ([]string, error)
}

type UploadRequest struct {
	OwnerID   string
	FileName  string
	Source    models.SourceImage
	Watermark *models.WatermarkRequest
}

type Pipeline struct {
	normalizer    *normalizer.Normalizer
	uploader      Uploader
	thumbnailSize int
	logger        *zap.Logger
}

func New(n *normalizer.Normalizer, uploader Uploader, thumbnailSize int, logger *zap.Logger) *Pipeline {
	if thumbnailSize <= 0 {
		thumbnailSize = normalizer.DefaultThumbnailSize
	}
	return &Pipeline{
		normalizer:    n,
		uploader:      uploader,
		thumbnailSize: thumbnailSize,
		logger:        logger,
	}
}

// Variants renders the display and thumbnail JPEGs for a source photo.
func (p *Pipeline) Variants(source models.SourceImage, watermark *models.WatermarkRequest) (*models.NormalizedImage, *models.NormalizedImage, error) {
	img, err := p.normalizer.Decode(source.Data)
	if err != nil {
		return nil, nil, err
	}

	display, err := p.normalizer.Normalize(img, watermark)
	if err != nil {
		return nil, nil, err
	}

	thumbnail, err := p.normalizer.ThumbnailImage(img, p.thumbnailSize)
	if err != nil {
		return nil, nil, err
	}

	return display, thumbnail, nil
}

// Process normalizes req.Source and uploads both variants. Decode and encode
// failures come back as *normalizer.DecodeError / *normalizer.EncodeError;
// upload failures wrap storage.ErrUpload and leave neither variant stored.
func (p *Pipeline) Process(ctx context.Context, req UploadRequest) (*models.UploadResult, error) {
	if req.OwnerID == "" {
		return nil, ErrMissingOwner
	}

	start := time.Now()

	meta, err := p.normalizer.Inspect(req.Source)
	if err != nil {
		return nil, err
	}

	opts := p.normalizer.Options()
	needsResize := p.normalizer.NeedsResizing(req.Source, opts.MaxWidth, opts.MaxHeight)

	display, thumbnail, err := p.Variants(req.Source, req.Watermark)
	if err != nil {
		return nil, err
	}

	base := baseName(req.FileName)
	files := []models.UploadFile{
		{Filename: base + ".jpg", ContentType: display.ContentType, Data: display.Data},
		{Filename: base + "_thumb.jpg", ContentType: thumbnail.ContentType, Data: thumbnail.Data},
	}

	urls, err := p.uploader.UploadMultiple(ctx, req.OwnerID, files)
	if err != nil {
		return nil, fmt.Errorf("failed to store variants: %w", err)
	}

	p.logger.Info("Photo normalized",
		zap.String("owner_id", req.OwnerID),
		zap.String("file_name", req.FileName),
		zap.Int("original_width", meta.Width),
		zap.Int("original_height", meta.Height),
		zap.Bool("resized", needsResize),
		zap.Int("display_bytes", len(display.Data)),
		zap.Int("thumbnail_bytes", len(thumbnail.Data)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &models.UploadResult{
		ID:          uuid.New().String(),
		OwnerID:     req.OwnerID,
		FileName:    req.FileName,
		Original:    models.ImageSize{Width: meta.Width, Height: meta.Height},
		Display:     variant(urls[0], display),
		Thumbnail:   variant(urls[1], thumbnail),
		Metadata:    meta,
		ProcessedAt: time.Now(),
	}, nil
}

func variant(url string, img *models.NormalizedImage) models.ImageVariant {
	return models.ImageVariant{
		URL:         url,
		Width:       img.Width,
		Height:      img.Height,
		FileSize:    int64(len(img.Data)),
		ContentType: img.ContentType,
	}
}

func baseName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "photo"
	}
	return base
}
