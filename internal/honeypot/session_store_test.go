package honeypot

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemorySessionStore_LazyCreate(t *testing.T) {
	store := NewMemorySessionStore()

	sess, err := store.GetOrCreate(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if sess.ID != "sess-1" {
		t.Fatalf("expected id sess-1, got %q", sess.ID)
	}
	if sess.ScamDetected {
		t.Fatal("new session must start clean")
	}
	if sess.History == nil || len(sess.History) != 0 {
		t.Fatalf("new session must have empty history, got %#v", sess.History)
	}
	if sess.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestMemorySessionStore_AppendPreservesOrder(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := Message{Sender: SenderScammer, Text: fmt.Sprintf("msg-%d", i), Timestamp: int64(i)}
		if err := store.AppendMessage(ctx, "sess-1", msg); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	history, err := store.GetHistory(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(history))
	}
	for i, msg := range history {
		if msg.Text != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("message %d out of order: %q", i, msg.Text)
		}
	}
}

func TestMemorySessionStore_ScamFlagIsOneWay(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.MarkScamDetected(ctx, "sess-1"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// Idempotent.
	if err := store.MarkScamDetected(ctx, "sess-1"); err != nil {
		t.Fatalf("second mark failed: %v", err)
	}

	sess, err := store.GetOrCreate(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !sess.ScamDetected {
		t.Fatal("scam flag must stay set")
	}
}

func TestMemorySessionStore_SessionsAreIndependent(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.MarkScamDetected(ctx, "scammy"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := store.AppendMessage(ctx, "scammy", Message{Sender: SenderScammer, Text: "pay up"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	other, err := store.GetOrCreate(ctx, "innocent")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if other.ScamDetected || len(other.History) != 0 {
		t.Fatalf("unrelated session leaked state: %+v", other)
	}
}

func TestMemorySessionStore_SnapshotIsolation(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.AppendMessage(ctx, "sess-1", Message{Sender: SenderScammer, Text: "original"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	snap, err := store.GetOrCreate(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	snap.History[0].Text = "mutated"

	history, err := store.GetHistory(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if history[0].Text != "original" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestMemorySessionStore_ConcurrentAppends(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", g%4)
			for i := 0; i < perGoroutine; i++ {
				_ = store.AppendMessage(ctx, id, Message{Sender: SenderScammer, Text: "x"})
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for g := 0; g < 4; g++ {
		history, err := store.GetHistory(ctx, fmt.Sprintf("sess-%d", g))
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		total += len(history)
	}
	if total != goroutines*perGoroutine {
		t.Fatalf("expected %d messages across sessions, got %d", goroutines*perGoroutine, total)
	}
}
