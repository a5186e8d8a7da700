package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-normalizer/internal/config"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/internal/services/settings"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"go.uber.org/zap"
)

const (
	maxCacheAge   = 3600
	imageParamKey = "image"
)

// PhotoProcessor normalizes an upload and stores its variants.
type PhotoProcessor interface {
	Process(ctx context.Context, req pipeline.UploadRequest) (*models.UploadResult, error)
}

// StorageStatus reports on the bucket and cache backends.
type StorageStatus interface {
	HealthCheck(ctx context.Context) map[string]string
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
}

// JobQueue accepts asynchronous normalization jobs.
type JobQueue interface {
	Submit(ctx context.Context, req models.JobRequest) (*models.ProcessingJob, error)
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	GetQueueStats() (map[string]interface{}, error)
	HealthCheck() string
}

type ImageHandler struct {
	normalizer *normalizer.Normalizer
	processor  PhotoProcessor
	storage    StorageStatus
	queue      JobQueue
	settings   *settings.Store
	logger     *zap.Logger
	config     *config.Config
}

// NewImageHandler wires the handlers. queue may be nil when RabbitMQ is
// unavailable; job endpoints then answer 503.
func NewImageHandler(
	n *normalizer.Normalizer,
	processor PhotoProcessor,
	storage StorageStatus,
	queue JobQueue,
	settings *settings.Store,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		normalizer: n,
		processor:  processor,
		storage:    storage,
		queue:      queue,
		settings:   settings,
		logger:     logger,
		config:     config,
	}
}

// === MAIN API ENDPOINTS ===

// UploadImage normalizes a photo into display and thumbnail variants and
// stores both under the owner's prefix.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if !h.settings.Snapshot().Bool(settings.UploadsEnabled, true) {
		h.respondError(c, http.StatusServiceUnavailable, "Uploads are temporarily disabled")
		return
	}

	ownerID := c.PostForm("owner_id")
	if err := storage.ValidateOwnerID(ownerID); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	source, header, status, err := h.readUpload(c, imageParamKey)
	if err != nil {
		h.respondError(c, status, err.Error())
		return
	}

	watermark, err := h.parseWatermark(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.processor.Process(c.Request.Context(), pipeline.UploadRequest{
		OwnerID:   ownerID,
		FileName:  header.Filename,
		Source:    source,
		Watermark: watermark,
	})
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    result,
	})
}

// ResizeImage returns the photo fitted inside max_width x max_height as JPEG.
func (h *ImageHandler) ResizeImage(c *gin.Context) {
	source, _, status, err := h.readUpload(c, imageParamKey)
	if err != nil {
		h.respondError(c, status, err.Error())
		return
	}

	req, err := h.parseResizeParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.normalizer.Resize(source, req.MaxWidth, req.MaxHeight, req.Quality)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	h.respondWithImage(c, out)
}

// CreateThumbnail returns a size x size bounded JPEG preview.
func (h *ImageHandler) CreateThumbnail(c *gin.Context) {
	source, _, status, err := h.readUpload(c, imageParamKey)
	if err != nil {
		h.respondError(c, status, err.Error())
		return
	}

	size, err := h.parsePositiveInt(c.PostForm("size"), "size", h.config.Normalizer.ThumbnailSize)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.normalizer.CreateThumbnail(source, size)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	h.respondWithImage(c, out)
}

// InspectImage reports dimensions, EXIF data and whether the photo exceeds
// the display box.
func (h *ImageHandler) InspectImage(c *gin.Context) {
	source, _, status, err := h.readUpload(c, imageParamKey)
	if err != nil {
		h.respondError(c, status, err.Error())
		return
	}

	meta, err := h.normalizer.Inspect(source)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	opts := h.normalizer.Options()
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: gin.H{
			"metadata":       meta,
			"needs_resizing": h.normalizer.NeedsResizing(source, opts.MaxWidth, opts.MaxHeight),
			"max_width":      opts.MaxWidth,
			"max_height":     opts.MaxHeight,
		},
	})
}

func (h *ImageHandler) respondWithImage(c *gin.Context, img *models.NormalizedImage) {
	c.Header("X-Image-Width", strconv.Itoa(img.Width))
	c.Header("X-Image-Height", strconv.Itoa(img.Height))
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(maxCacheAge))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
