package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/redis/go-redis/v9"
)

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey derives a key from the image source (a URL or a content
// digest) and every parameter that changes the output.
func GenerateCacheKey(source string, req models.ResizeRequest, thumbnailSize int, watermark *models.WatermarkRequest) string {
	keyParts := []string{
		source,
		fmt.Sprintf("box_%d_%d_%.2f", req.MaxWidth, req.MaxHeight, req.Quality),
		fmt.Sprintf("thumb_%d", thumbnailSize),
	}

	if watermark != nil && watermark.Text != "" {
		keyParts = append(keyParts, fmt.Sprintf("watermark_%s_%s_%.2f",
			watermark.Text, watermark.Position, normalizer.WatermarkOpacity(watermark)))
	}

	hash := sha256.Sum256([]byte(strings.Join(keyParts, "_")))
	return fmt.Sprintf("%s%x", CacheKeyPrefix, hash)
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := s.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	stats := map[string]interface{}{
		"db_keys": dbSizeCmd.Val(),
		"info":    infoCmd.Val(),
	}

	return stats, nil
}

// SaveJob records the latest state of a queued job.
func (s *StorageService) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.redisClient.Set(ctx, JobKeyPrefix+job.ID, data, s.jobTTL).Err()
}

func (s *StorageService) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	data, err := s.redisClient.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
