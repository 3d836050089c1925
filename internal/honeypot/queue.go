package honeypot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Queue transports encoded intel jobs between the publisher and the worker
// pool. Implementations: MemoryQueue (in-process) and SQSQueue.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// IntelJob carries everything the background pipeline needs to re-derive and
// report intelligence: the full history as of the triggering turn, including
// the just-generated agent reply.
type IntelJob struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	ScamDetected bool      `json:"scamDetected"`
	History      []Message `json:"history"`
}

func encodeIntelJob(job IntelJob) (IntelJob, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	body, err := json.Marshal(job)
	if err != nil {
		return IntelJob{}, "", fmt.Errorf("honeypot: failed to encode intel job: %w", err)
	}
	return job, string(body), nil
}
