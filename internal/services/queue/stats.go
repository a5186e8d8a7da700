package queue

import "fmt"

// GetQueueStats combines the broker's view of the normalization queue with
// the workers and job outcomes of this process.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	queueInfo, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	stats := q.workerStats()
	stats["pending_messages"] = queueInfo.Messages
	stats["consumers"] = queueInfo.Consumers
	return stats, nil
}

func (q *QueueService) workerStats() map[string]interface{} {
	return map[string]interface{}{
		"queue":   q.queueName,
		"workers": q.activeWorkers.Load(),
		"jobs": map[string]int64{
			"completed": q.counters.completed.Load(),
			"failed":    q.counters.failed.Load(),
			"requeued":  q.counters.requeued.Load(),
		},
	}
}

// HealthCheck reports whether jobs can still be published and consumed.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: rabbitmq connection closed"
	case q.channel == nil:
		return "unhealthy: no channel for queue " + q.queueName
	}
	return "healthy"
}
