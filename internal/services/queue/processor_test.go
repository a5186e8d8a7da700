package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu      sync.Mutex
	cache   map[string][]byte
	jobs    map[string]models.ProcessingJob
	history []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{cache: map[string][]byte{}, jobs: map[string]models.ProcessingJob{}}
}

func (m *memoryStore) GetFromCache(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[key], nil
}

func (m *memoryStore) SetCache(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = data
	return nil
}

func (m *memoryStore) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	m.history = append(m.history, job.Status)
	return nil
}

func (m *memoryStore) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &job, nil
}

type fakeProcessor struct {
	calls int
	last  pipeline.UploadRequest
	err   error
}

func (p *fakeProcessor) Process(ctx context.Context, req pipeline.UploadRequest) (*models.UploadResult, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &models.UploadResult{
		ID:      "result-1",
		OwnerID: req.OwnerID,
		Display: models.ImageVariant{URL: "https://cdn.example.test/display.jpg", Width: 1920, Height: 1280},
	}, nil
}

func newTestQueue(processor Processor, store ResultStore, download downloadFunc) *QueueService {
	return &QueueService{
		logger:        zap.NewNop(),
		queueName:     "test",
		processor:     processor,
		store:         store,
		download:      download,
		cacheParams:   models.ResizeRequest{MaxWidth: 1920, MaxHeight: 1920, Quality: 0.85},
		thumbnailSize: 400,
	}
}

func okDownload(ctx context.Context, url string, maxSize int64) ([]byte, string, error) {
	return []byte("jpeg-bytes"), "image/jpeg", nil
}

func testJob() *models.ProcessingJob {
	return &models.ProcessingJob{
		ID:       "job-1",
		ImageURL: "https://images.example.test/uploads/lake.jpg",
		OwnerID:  "user-9",
		Request:  models.JobRequest{ImageURL: "https://images.example.test/uploads/lake.jpg", OwnerID: "user-9"},
		Status:   models.StatusPending,
	}
}

func TestRunJobCompletes(t *testing.T) {
	store := newMemoryStore()
	processor := &fakeProcessor{}
	q := newTestQueue(processor, store, okDownload)

	job := testJob()
	q.runJob(context.Background(), job)

	assert.Equal(t, []string{models.StatusProcessing, models.StatusCompleted}, store.history)
	saved, err := q.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, saved.Status)
	require.NotNil(t, saved.Result)
	assert.Equal(t, 1920, saved.Result.Display.Width)

	assert.Equal(t, "user-9", processor.last.OwnerID)
	assert.Equal(t, "lake.jpg", processor.last.FileName)
	assert.Equal(t, "image/jpeg", processor.last.Source.MIMEType)
	assert.Len(t, store.cache, 1)
}

func TestRunJobUsesCachedResult(t *testing.T) {
	store := newMemoryStore()
	processor := &fakeProcessor{}
	q := newTestQueue(processor, store, okDownload)

	job := testJob()
	key := storage.GenerateCacheKey(job.OwnerID+"|"+job.ImageURL, q.cacheParams, q.thumbnailSize, nil)
	cached, err := json.Marshal(models.UploadResult{ID: "cached"})
	require.NoError(t, err)
	store.cache[key] = cached

	downloads := 0
	q.download = func(ctx context.Context, url string, maxSize int64) ([]byte, string, error) {
		downloads++
		return okDownload(ctx, url, maxSize)
	}

	q.runJob(context.Background(), job)

	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.Equal(t, "cached", job.Result.ID)
	assert.Zero(t, processor.calls)
	assert.Zero(t, downloads)
}

func TestRunJobFailures(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		store := newMemoryStore()
		q := newTestQueue(&fakeProcessor{}, store, func(ctx context.Context, url string, maxSize int64) ([]byte, string, error) {
			return nil, "", errors.New("status 404")
		})

		job := testJob()
		q.runJob(context.Background(), job)

		assert.Equal(t, models.StatusFailed, job.Status)
		assert.Contains(t, job.Error, "failed to download image")
		assert.Nil(t, job.Result)
		assert.Empty(t, store.cache)
	})

	t.Run("processing", func(t *testing.T) {
		store := newMemoryStore()
		processor := &fakeProcessor{err: errors.New("failed to decode image: unknown format")}
		q := newTestQueue(processor, store, okDownload)

		job := testJob()
		q.runJob(context.Background(), job)

		assert.Equal(t, models.StatusFailed, job.Status)
		assert.Contains(t, job.Error, "unknown format")
		assert.Equal(t, []string{models.StatusProcessing, models.StatusFailed}, store.history)
		assert.Empty(t, store.cache)
	})
}

func TestGetJobNotFound(t *testing.T) {
	q := newTestQueue(&fakeProcessor{}, newMemoryStore(), okDownload)

	_, err := q.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func delivery(t *testing.T, job *models.ProcessingJob) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	acker := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: body}, acker
}

func TestProcessMessageAcksFinishedJobs(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		q := newTestQueue(&fakeProcessor{}, newMemoryStore(), okDownload)
		msg, acker := delivery(t, testJob())

		q.processMessage(context.Background(), msg, 1)

		assert.True(t, acker.acked)
		assert.False(t, acker.nacked)
	})

	t.Run("failed jobs are not retried", func(t *testing.T) {
		q := newTestQueue(&fakeProcessor{err: errors.New("unknown format")}, newMemoryStore(), okDownload)
		msg, acker := delivery(t, testJob())

		q.processMessage(context.Background(), msg, 1)

		assert.True(t, acker.acked)
		assert.False(t, acker.nacked)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		q := newTestQueue(&fakeProcessor{}, newMemoryStore(), okDownload)
		acker := &fakeAcknowledger{}

		q.processMessage(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte("{")}, 1)

		assert.True(t, acker.nacked)
		assert.False(t, acker.requeue)
		assert.False(t, acker.acked)
	})
}

func TestShutdownRequeuesInterruptedJob(t *testing.T) {
	store := newMemoryStore()
	processor := &fakeProcessor{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := newTestQueue(processor, store, func(ctx context.Context, url string, maxSize int64) ([]byte, string, error) {
		cancel()
		return nil, "", ctx.Err()
	})
	msg, acker := delivery(t, testJob())

	q.processMessage(ctx, msg, 1)

	assert.True(t, acker.nacked)
	assert.True(t, acker.requeue)
	assert.False(t, acker.acked)
	assert.Zero(t, processor.calls)

	saved, err := q.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, saved.Status)
	assert.Empty(t, saved.Error)
	assert.Equal(t, []string{models.StatusProcessing, models.StatusPending}, store.history)
}

func TestFinalStateSavedAfterCancel(t *testing.T) {
	store := newMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := &cancellingProcessor{cancel: cancel}
	q := newTestQueue(processor, store, okDownload)
	job := testJob()

	// The result was produced before shutdown, so it is kept.
	requeue := q.runJob(ctx, job)

	assert.False(t, requeue)
	saved, err := q.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, saved.Status)
}

type cancellingProcessor struct {
	cancel context.CancelFunc
}

func (p *cancellingProcessor) Process(ctx context.Context, req pipeline.UploadRequest) (*models.UploadResult, error) {
	p.cancel()
	return &models.UploadResult{ID: "late", OwnerID: req.OwnerID}, nil
}

func TestWorkerStats(t *testing.T) {
	q := newTestQueue(&fakeProcessor{}, newMemoryStore(), okDownload)
	jobFor := func(name string) *models.ProcessingJob {
		job := testJob()
		job.ID = name
		job.ImageURL = "https://images.example.test/uploads/" + name + ".jpg"
		return job
	}

	q.runJob(context.Background(), jobFor("a"))
	q.runJob(context.Background(), jobFor("b"))

	q.processor = &fakeProcessor{err: errors.New("unknown format")}
	q.runJob(context.Background(), jobFor("c"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.runJob(ctx, jobFor("d"))

	stats := q.workerStats()
	assert.Equal(t, "test", stats["queue"])
	assert.Equal(t, int32(0), stats["workers"])
	assert.Equal(t, map[string]int64{"completed": 2, "failed": 1, "requeued": 1}, stats["jobs"])
}

func TestHealthCheckWithoutConnection(t *testing.T) {
	q := newTestQueue(&fakeProcessor{}, newMemoryStore(), okDownload)
	assert.Equal(t, "unhealthy: rabbitmq connection closed", q.HealthCheck())
}
