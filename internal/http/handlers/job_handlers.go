package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"go.uber.org/zap"
)

// SubmitJob queues normalization of a remote photo.
func (h *ImageHandler) SubmitJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	var req models.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid job request: "+err.Error())
		return
	}
	if err := storage.ValidateOwnerID(req.OwnerID); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.queue.Submit(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to submit job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) GetJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	job, err := h.queue.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.respondError(c, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to load job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}
