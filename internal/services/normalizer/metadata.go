package normalizer

import (
	"bytes"
	"image"
	"strings"

	"github.com/evanoberholster/imagemeta"
	"github.com/phambaophuc/photo-normalizer/internal/models"
)

// Inspect reads the header and EXIF block of source without decoding pixels.
// Width and Height are reported after EXIF orientation, matching what Resize
// renders. Photos without EXIF return dimensions and format only.
func (n *Normalizer) Inspect(source models.SourceImage) (*models.PhotoMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(source.Data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	meta := &models.PhotoMetadata{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	exifData, err := imagemeta.Decode(bytes.NewReader(source.Data))
	if err != nil {
		return meta, nil
	}

	if format == "jpeg" && transposed(int(exifData.Orientation)) {
		meta.Width, meta.Height = meta.Height, meta.Width
	}

	meta.CameraMake = strings.TrimSpace(exifData.Make)
	meta.CameraModel = strings.TrimSpace(exifData.Model)

	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		t := exifData.DateTimeOriginal()
		meta.DateTaken = &t
	case !exifData.CreateDate().IsZero():
		t := exifData.CreateDate()
		meta.DateTaken = &t
	case !exifData.ModifyDate().IsZero():
		t := exifData.ModifyDate()
		meta.DateTaken = &t
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		meta.Latitude = gps.Latitude()
		meta.Longitude = gps.Longitude()
		meta.HasGPS = true
	}

	return meta, nil
}

// orientedConfig reads the header of data and reports the size the image has
// once its EXIF orientation is applied. imaging only auto-orients JPEG, so
// other formats keep their stored size.
func orientedConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, format, err
	}

	if format == "jpeg" && transposed(exifOrientation(data)) {
		cfg.Width, cfg.Height = cfg.Height, cfg.Width
	}
	return cfg, format, nil
}

// exifOrientation returns the EXIF orientation tag, or 1 when there is none.
func exifOrientation(data []byte) int {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil || exifData.Orientation == 0 {
		return 1
	}
	return int(exifData.Orientation)
}

// Orientations 5-8 rotate by 90 or 270 degrees, swapping the axes.
func transposed(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}
