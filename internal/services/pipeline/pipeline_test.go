package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errQuota = errors.New("quota exceeded")

type fakeUploader struct {
	files []models.UploadFile
	owner string
	err   error
}

func (u *fakeUploader) UploadMultiple(ctx context.Context, ownerID string, files []models.UploadFile) ([]string, error) {
	if u.err != nil {
		return make([]string, len(files)), u.err
	}
	u.owner = ownerID
	u.files = files
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = "https://cdn.example.test/" + ownerID + "/" + f.Filename
	}
	return urls, nil
}

func jpegSource(t *testing.T, width, height int) models.SourceImage {
	t.Helper()

	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 10, G: 90, B: 160, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return models.SourceImage{Data: buf.Bytes(), MIMEType: "image/jpeg"}
}

func TestProcessUploadsBothVariants(t *testing.T) {
	uploader := &fakeUploader{}
	p := New(normalizer.New(), uploader, 400, zap.NewNop())

	result, err := p.Process(context.Background(), UploadRequest{
		OwnerID:  "user-7",
		FileName: "IMG_0001.HEIC.jpg",
		Source:   jpegSource(t, 4000, 3000),
	})
	require.NoError(t, err)

	assert.Equal(t, "user-7", uploader.owner)
	require.Len(t, uploader.files, 2)
	assert.Equal(t, "IMG_0001.HEIC.jpg", uploader.files[0].Filename)
	assert.Equal(t, "IMG_0001.HEIC_thumb.jpg", uploader.files[1].Filename)

	assert.Equal(t, models.ImageSize{Width: 4000, Height: 3000}, result.Original)
	assert.Equal(t, 1920, result.Display.Width)
	assert.Equal(t, 1440, result.Display.Height)
	assert.Equal(t, 400, result.Thumbnail.Width)
	assert.Equal(t, 300, result.Thumbnail.Height)
	assert.Equal(t, "https://cdn.example.test/user-7/IMG_0001.HEIC_thumb.jpg", result.Thumbnail.URL)
	assert.Equal(t, int64(len(uploader.files[0].Data)), result.Display.FileSize)
	assert.Equal(t, models.ContentTypeJPEG, result.Display.ContentType)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, "jpeg", result.Metadata.Format)
	assert.NotEmpty(t, result.ID)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(uploader.files[1].Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, cfg.Width)
}

func TestProcessSmallPhotoIsNotUpscaled(t *testing.T) {
	p := New(normalizer.New(), &fakeUploader{}, 400, zap.NewNop())

	result, err := p.Process(context.Background(), UploadRequest{
		OwnerID:  "user-7",
		FileName: "small.jpg",
		Source:   jpegSource(t, 300, 200),
	})
	require.NoError(t, err)

	assert.Equal(t, 300, result.Display.Width)
	assert.Equal(t, 200, result.Display.Height)
	assert.Equal(t, 300, result.Thumbnail.Width)
	assert.Equal(t, 200, result.Thumbnail.Height)
}

func TestProcessWatermarkOnlyTouchesDisplay(t *testing.T) {
	p := New(normalizer.New(), &fakeUploader{}, 400, zap.NewNop())
	source := jpegSource(t, 640, 480)

	plainDisplay, plainThumb, err := p.Variants(source, nil)
	require.NoError(t, err)
	opacity := 1.0
	markedDisplay, markedThumb, err := p.Variants(source, &models.WatermarkRequest{Text: "jane doe", Opacity: &opacity})
	require.NoError(t, err)

	assert.NotEqual(t, plainDisplay.Data, markedDisplay.Data)
	assert.Equal(t, plainThumb.Data, markedThumb.Data)
	assert.Equal(t, plainDisplay.Size(), markedDisplay.Size())
}

func TestProcessErrors(t *testing.T) {
	p := New(normalizer.New(), &fakeUploader{}, 400, zap.NewNop())

	_, err := p.Process(context.Background(), UploadRequest{FileName: "a.jpg", Source: jpegSource(t, 10, 10)})
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = p.Process(context.Background(), UploadRequest{
		OwnerID:  "user",
		FileName: "a.jpg",
		Source:   models.SourceImage{Data: []byte("<html>"), MIMEType: "text/html"},
	})
	assert.True(t, normalizer.IsDecodeError(err))

	failing := New(normalizer.New(), &fakeUploader{err: errQuota}, 400, zap.NewNop())
	_, err = failing.Process(context.Background(), UploadRequest{
		OwnerID:  "user",
		FileName: "a.jpg",
		Source:   jpegSource(t, 10, 10),
	})
	assert.ErrorIs(t, err, errQuota)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "holiday", baseName("/tmp/holiday.png"))
	assert.Equal(t, "photo", baseName(""))
	assert.Equal(t, "photo", baseName(".jpg"))
}
