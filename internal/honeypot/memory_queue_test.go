package honeypot

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueue_SendReceive(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	if err := q.Send(ctx, "job-1"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := q.Send(ctx, "job-2"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	messages, err := q.Receive(ctx, 10, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Body != "job-1" || messages[1].Body != "job-2" {
		t.Fatalf("messages out of order: %#v", messages)
	}
	if messages[0].ID == "" || messages[0].ReceiptHandle == "" {
		t.Fatal("expected generated id and receipt handle")
	}

	if err := q.Delete(ctx, messages[0].ReceiptHandle); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestMemoryQueue_ReceiveRespectsBatchSize(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Send(ctx, "job"); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	messages, err := q.Receive(ctx, 3, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(messages))
	}
}

func TestMemoryQueue_ReceiveTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(1)

	start := time.Now()
	messages, err := q.Receive(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if messages != nil {
		t.Fatalf("expected nil batch on timeout, got %#v", messages)
	}
	if time.Since(start) < 900*time.Millisecond {
		t.Fatal("receive returned before the wait elapsed")
	}
}

func TestMemoryQueue_ReceiveHonorsContextCancel(t *testing.T) {
	q := NewMemoryQueue(1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := q.Receive(ctx, 1, 30)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
