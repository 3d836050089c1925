package honeypot

import (
	"context"
	"fmt"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// Publisher enqueues intelligence jobs for asynchronous processing.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("honeypot: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueIntel publishes an intelligence job.
func (p *Publisher) EnqueueIntel(ctx context.Context, job IntelJob) error {
	if ctx == nil {
		ctx = context.Background()
	}

	job, body, err := encodeIntelJob(job)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("honeypot: failed to enqueue intel job: %w", err)
	}

	p.logger.Debug("intel job enqueued", "job_id", job.ID, "session_id", job.SessionID)
	return nil
}
