package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"go.uber.org/zap"
)

func (q *QueueService) processJob(ctx context.Context, job *models.ProcessingJob) (*models.UploadResult, error) {
	cacheKey := storage.GenerateCacheKey(job.OwnerID+"|"+job.ImageURL, q.cacheParams, q.thumbnailSize, job.Request.Watermark)

	cachedData, err := q.store.GetFromCache(ctx, cacheKey)
	if err != nil {
		q.logger.Warn("Cache lookup failed", zap.String("job_id", job.ID), zap.Error(err))
	} else if cachedData != nil {
		var cachedResult models.UploadResult
		if err := json.Unmarshal(cachedData, &cachedResult); err == nil {
			q.logger.Info("Cache hit", zap.String("job_id", job.ID))
			return &cachedResult, nil
		}
		q.logger.Warn("Failed to unmarshal cached data", zap.String("job_id", job.ID))
	}

	imageData, contentType, err := q.download(ctx, job.ImageURL, MaxDownloadSize)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	result, err := q.processor.Process(ctx, pipeline.UploadRequest{
		OwnerID:   job.OwnerID,
		FileName:  path.Base(job.ImageURL),
		Source:    models.SourceImage{Data: imageData, MIMEType: contentType},
		Watermark: job.Request.Watermark,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	resultBytes, err := json.Marshal(result)
	if err == nil {
		err = q.store.SetCache(ctx, cacheKey, resultBytes)
	}
	if err != nil {
		q.logger.Warn("Failed to cache result", zap.Error(err))
	}

	return result, nil
}
