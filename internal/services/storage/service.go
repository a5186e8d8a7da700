package storage

import (
	"errors"
	"time"

	"github.com/phambaophuc/photo-normalizer/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

var (
	// ErrUpload wraps every failure to store an object in the bucket.
	ErrUpload = errors.New("upload failed")
	// ErrNotFound is returned when a cached job does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOwner is returned for owner ids that cannot be a key prefix.
	ErrInvalidOwner = errors.New("invalid owner id")
)

type StorageService struct {
	bucket        Bucket
	redisClient   redis.Cmdable
	cacheDuration time.Duration
	jobTTL        time.Duration
	uploadWorkers int
}

type ServiceOptions struct {
	CacheDuration time.Duration
	JobTTL        time.Duration
	UploadWorkers int
}

var DefaultOptions = ServiceOptions{
	CacheDuration: 24 * time.Hour,
	JobTTL:        72 * time.Hour,
	UploadWorkers: 5,
}

const (
	CacheKeyPrefix = "img_cache:"
	JobKeyPrefix   = "job:"
)

// NewRedisClient builds the shared Redis client used for the result cache,
// job status and site settings.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewStorageService(cfg *config.Config, redisClient redis.Cmdable) *StorageService {
	sbClient := storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)

	options := DefaultOptions
	options.CacheDuration = cfg.Storage.CacheDuration
	options.UploadWorkers = cfg.Storage.UploadWorkers

	return NewWithBucket(NewSupabaseBucket(sbClient, cfg.Supabase.BUCKET), redisClient, options)
}

func NewWithBucket(bucket Bucket, redisClient redis.Cmdable, opts ...ServiceOptions) *StorageService {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.UploadWorkers <= 0 {
		options.UploadWorkers = DefaultOptions.UploadWorkers
	}
	if options.CacheDuration <= 0 {
		options.CacheDuration = DefaultOptions.CacheDuration
	}
	if options.JobTTL <= 0 {
		options.JobTTL = DefaultOptions.JobTTL
	}

	return &StorageService{
		bucket:        bucket,
		redisClient:   redisClient,
		cacheDuration: options.CacheDuration,
		jobTTL:        options.JobTTL,
		uploadWorkers: options.UploadWorkers,
	}
}
