package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	q.workers.Add(1)
	q.activeWorkers.Add(1)
	go func() {
		defer q.workers.Done()
		defer q.activeWorkers.Add(-1)

		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

// Wait blocks until every started worker has returned. Cancel the context
// passed to StartWorker first.
func (q *QueueService) Wait() {
	q.workers.Wait()
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.ProcessingJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	if requeue := q.runJob(ctx, &job); requeue {
		if err := msg.Nack(false, true); err != nil {
			q.logger.Error("Failed to requeue message",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

// runJob moves job through processing to completed or failed and records
// each state. Failed jobs are not retried. A job cut short by ctx goes back to
// pending and runJob reports that the message should be requeued.
func (q *QueueService) runJob(ctx context.Context, job *models.ProcessingJob) bool {
	job.Status = models.StatusProcessing
	job.UpdatedAt = time.Now()
	q.saveJob(ctx, job)

	result, err := q.processJob(ctx, job)
	requeue := false
	switch {
	case err != nil && ctx.Err() != nil:
		job.Status = models.StatusPending
		job.Error = ""
		requeue = true
		q.counters.requeued.Add(1)
		q.logger.Warn("Job interrupted, returning it to the queue",
			zap.String("job_id", job.ID),
			zap.Error(err))
	case err != nil:
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.counters.failed.Add(1)
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	default:
		job.Status = models.StatusCompleted
		job.Result = result
		job.Error = ""
		q.counters.completed.Add(1)
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}

	// The final state must land even when shutdown cancelled ctx.
	job.UpdatedAt = time.Now()
	q.saveJob(context.WithoutCancel(ctx), job)
	return requeue
}

func (q *QueueService) saveJob(ctx context.Context, job *models.ProcessingJob) {
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.logger.Warn("Failed to save job state",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
