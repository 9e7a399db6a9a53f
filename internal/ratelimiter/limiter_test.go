package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/sender-queue/internal/ratelimiter"
)

func TestInsertLimiter_UnlimitedNeverBlocks(t *testing.T) {
	l := ratelimiter.New(0)
	if !l.Unlimited() {
		t.Fatal("expected zero rate to be unlimited")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("unlimited limiter took %s", elapsed)
	}
}

func TestInsertLimiter_Paces(t *testing.T) {
	l := ratelimiter.New(50)
	if l.Unlimited() {
		t.Fatal("expected a finite limiter")
	}
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 6; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// first token is free, the remaining five are 20ms apart
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected pacing, finished in %s", elapsed)
	}
}

func TestInsertLimiter_CancelledContext(t *testing.T) {
	l := ratelimiter.New(0.001)
	ctx, cancel := context.WithCancel(context.Background())

	// drain the single burst token
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected an error after cancellation")
	}
}
