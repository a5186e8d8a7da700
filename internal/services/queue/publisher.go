package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Submit records a pending job for req and publishes it.
func (q *QueueService) Submit(ctx context.Context, req models.JobRequest) (*models.ProcessingJob, error) {
	now := time.Now()
	job := &models.ProcessingJob{
		ID:        uuid.New().String(),
		ImageURL:  req.ImageURL,
		OwnerID:   req.OwnerID,
		Request:   req,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := q.store.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	if err := q.PublishJob(ctx, job); err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.saveJob(ctx, job)
		return nil, err
	}

	return job, nil
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.ProcessingJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}

func (q *QueueService) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	return q.store.GetJob(ctx, id)
}
