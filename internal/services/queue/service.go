package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/pkg/utils"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// MaxDownloadSize caps remote images fetched by workers.
const MaxDownloadSize = 20 * 1024 * 1024

// Processor normalizes and stores one photo.
type Processor interface {
	Process(ctx context.Context, req pipeline.UploadRequest) (*models.UploadResult, error)
}

// ResultStore caches finished results and tracks job state.
type ResultStore interface {
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
}

type downloadFunc func(ctx context.Context, url string, maxSize int64) ([]byte, string, error)

type QueueService struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	queueName string
	processor Processor
	store     ResultStore
	download  downloadFunc

	// cacheParams identifies the normalization settings in result cache keys.
	cacheParams   models.ResizeRequest
	thumbnailSize int

	workers       sync.WaitGroup
	activeWorkers atomic.Int32
	counters      jobCounters
}

// jobCounters tallies job outcomes seen by this process's workers.
type jobCounters struct {
	completed atomic.Int64
	failed    atomic.Int64
	requeued  atomic.Int64
}

type Options struct {
	URL           string
	QueueName     string
	CacheParams   models.ResizeRequest
	ThumbnailSize int
}

func NewQueueService(
	opts Options,
	processor Processor,
	store ResultStore,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// One unacked job per consumer; normalization is CPU bound.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	_, err = channel.QueueDeclare(
		opts.QueueName, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &QueueService{
		conn:          conn,
		channel:       channel,
		logger:        logger,
		queueName:     opts.QueueName,
		processor:     processor,
		store:         store,
		download:      utils.DownloadImage,
		cacheParams:   opts.CacheParams,
		thumbnailSize: opts.ThumbnailSize,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
