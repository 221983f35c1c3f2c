package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/courtlytics/pbp/internal/domain/model"
)

func job(id string) model.GameJob {
	return model.GameJob{GameID: id, HomeTeam: "H", AwayTeam: "V"}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if !q.Enqueue(ctx, job("g1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	jobChan := q.Dequeue(ctx)
	got := <-jobChan
	if got.GameID != "g1" {
		t.Errorf("expected g1, got %v", got.GameID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("g1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, job("g2")) {
		t.Error("expected enqueue to succeed")
	}

	// Try to enqueue when full
	if q.Enqueue(ctx, job("g3")) {
		t.Error("expected enqueue to fail when queue is full")
	}
}

func TestInMemoryQueue_CloseAndDrain(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !q.Enqueue(ctx, job(fmt.Sprintf("g%d", i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	// Enqueue after close must be rejected.
	if q.Enqueue(ctx, job("late")) {
		t.Error("expected enqueue after close to fail")
	}

	// The dequeue channel drains remaining jobs, then closes.
	count := 0
	for range q.Dequeue(ctx) {
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 drained jobs, got %d", count)
	}

	// Close is idempotent.
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestInMemoryQueue_DequeueRespectsContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())

	ch := q.Dequeue(ctx)
	cancel()

	if !q.Enqueue(context.Background(), job("g1")) {
		t.Fatal("enqueue failed")
	}

	select {
	case _, ok := <-ch:
		if ok {
			// A job already in flight before cancellation may still deliver.
			return
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("dequeue channel neither delivered nor closed after cancel")
	}
}
