package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBarrierCountsDistinctScenes(t *testing.T) {
	b := NewBarrier(2)
	if b.Report("hero") {
		t.Fatal("one of two reports completed the barrier")
	}
	if b.Report("hero") {
		t.Fatal("duplicate report completed the barrier")
	}
	if !b.Report("showcase") {
		t.Fatal("second distinct report should complete the barrier")
	}
	if b.Report("footer") {
		t.Fatal("only the completing report returns true")
	}
	select {
	case <-b.Done():
	default:
		t.Fatal("Done not closed")
	}
	if seen, expected := b.Count(); seen != 3 || expected != 2 {
		t.Fatalf("unexpected count %d/%d", seen, expected)
	}
}

func TestBarrierWithoutScenesIsComplete(t *testing.T) {
	b := NewBarrier(0)
	if !b.Reached() {
		t.Fatal("empty barrier should be reached")
	}
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestBarrierWaitHonorsContext(t *testing.T) {
	b := NewBarrier(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}

	go b.Report("hero")
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait after report: %v", err)
	}
}
