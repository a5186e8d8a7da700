package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"github.com/phambaophuc/photo-normalizer/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func (h *ImageHandler) parseResizeParams(c *gin.Context) (*models.ResizeRequest, error) {
	width, err := h.parsePositiveInt(c.PostForm("max_width"), "max_width", h.config.Normalizer.MaxWidth)
	if err != nil {
		return nil, err
	}

	height, err := h.parsePositiveInt(c.PostForm("max_height"), "max_height", h.config.Normalizer.MaxHeight)
	if err != nil {
		return nil, err
	}

	quality, err := h.parseQuality(c.PostForm("quality"), h.config.Normalizer.Quality)
	if err != nil {
		return nil, err
	}

	return &models.ResizeRequest{
		MaxWidth:  width,
		MaxHeight: height,
		Quality:   quality,
	}, nil
}

func (h *ImageHandler) parseWatermark(c *gin.Context) (*models.WatermarkRequest, error) {
	text := c.PostForm("watermark_text")
	if text == "" {
		return nil, nil
	}

	req := &models.WatermarkRequest{
		Text:     text,
		Position: c.PostForm("watermark_position"),
	}

	if value := c.PostForm("watermark_opacity"); value != "" {
		opacity, err := strconv.ParseFloat(value, 64)
		if err != nil || opacity < 0 || opacity > 1 {
			return nil, fmt.Errorf("watermark_opacity must be between 0 and 1")
		}
		req.Opacity = &opacity
	}

	return req, nil
}

func (h *ImageHandler) parsePositiveInt(value, fieldName string, defaultVal int) (int, error) {
	if value == "" {
		return defaultVal, nil
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}

	if num <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", fieldName)
	}

	return num, nil
}

// parseQuality accepts a fraction in (0, 1].
func (h *ImageHandler) parseQuality(value string, defaultVal float64) (float64, error) {
	if value == "" {
		return defaultVal, nil
	}

	quality, err := strconv.ParseFloat(value, 64)
	if err != nil || quality <= 0 || quality > 1 {
		return 0, fmt.Errorf("quality must be a number in (0, 1]")
	}

	return quality, nil
}

// === FILE OPERATIONS ===

// readUpload reads the multipart file at paramKey and sniffs its type. The
// returned status is the HTTP code to answer with when err is non-nil.
func (h *ImageHandler) readUpload(c *gin.Context, paramKey string) (models.SourceImage, *multipart.FileHeader, int, error) {
	file, header, err := c.Request.FormFile(paramKey)
	if err != nil {
		return models.SourceImage{}, nil, http.StatusBadRequest, errors.New("no image file provided")
	}
	defer file.Close()

	maxSize := h.config.Storage.MaxFileSize
	if header.Size > maxSize {
		return models.SourceImage{}, nil, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file size %d exceeds maximum allowed size %d", header.Size, maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return models.SourceImage{}, nil, http.StatusBadRequest, fmt.Errorf("failed to read upload: %v", err)
	}
	if int64(len(data)) > maxSize {
		return models.SourceImage{}, nil, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file exceeds maximum allowed size %d", maxSize)
	}

	contentType := utils.DetectContentType(data)
	if !h.config.Storage.IsAllowedType(contentType) {
		return models.SourceImage{}, nil, http.StatusUnsupportedMediaType,
			fmt.Errorf("unsupported image type: %s", contentType)
	}

	return models.SourceImage{Data: data, MIMEType: contentType}, header, http.StatusOK, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *ImageHandler) respondProcessingError(c *gin.Context, err error) {
	c.Error(err)

	switch {
	case errors.Is(err, normalizer.ErrInvalidRequest), errors.Is(err, pipeline.ErrMissingOwner),
		errors.Is(err, storage.ErrInvalidOwner):
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, normalizer.ErrTooManyPixels):
		h.respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case normalizer.IsDecodeError(err):
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
	case errors.Is(err, storage.ErrUpload):
		h.logger.Error("Upload failed", zap.Error(err))
		h.respondError(c, http.StatusBadGateway, "Failed to store image")
	default:
		h.logger.Error("Processing failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to process image")
	}
}
