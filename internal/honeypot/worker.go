package honeypot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	deleteTimeoutSeconds = 5
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of consumer goroutines.
func WithWorkerCount(n int) WorkerOption {
	return func(cfg *workerConfig) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithReceiveWait sets the long-poll wait in seconds.
func WithReceiveWait(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds >= 0 {
			cfg.receiveWaitSecs = seconds
		}
	}
}

// IntelWorker consumes intelligence jobs from the queue, re-derives the
// bundle from the job's conversation, and dispatches the final report.
type IntelWorker struct {
	extractor *Extractor
	reporter  *Reporter
	queue     Queue
	logger    *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewIntelWorker constructs a queue consumer around the extractor and reporter.
func NewIntelWorker(extractor *Extractor, reporter *Reporter, queue Queue, logger *logging.Logger, opts ...WorkerOption) *IntelWorker {
	if extractor == nil {
		panic("honeypot: extractor cannot be nil")
	}
	if reporter == nil {
		panic("honeypot: reporter cannot be nil")
	}
	if queue == nil {
		panic("honeypot: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &IntelWorker{
		extractor: extractor,
		reporter:  reporter,
		queue:     queue,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *IntelWorker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *IntelWorker) Wait() {
	w.wg.Wait()
}

func (w *IntelWorker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("intel worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("intel worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive intel jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *IntelWorker) handleMessage(ctx context.Context, msg queueMessage) {
	var job IntelJob
	if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
		w.logger.Error("failed to decode intel job", "error", err)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	w.logger.Info("processing intel job",
		"job_id", job.ID,
		"session_id", job.SessionID,
		"messages", len(job.History),
	)

	// Extraction is total: backend failures resolve to the pattern fallback
	// inside Extract, so the job always yields a bundle.
	bundle := w.extractor.Extract(ctx, job.History)
	w.reporter.SendFinalReport(ctx, job.SessionID, job.ScamDetected, len(job.History), bundle)

	w.deleteMessage(msg.ReceiptHandle)
}

func (w *IntelWorker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Warn("failed to delete intel job from queue", "error", err)
	}
}
