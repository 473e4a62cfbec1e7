package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Release before a successful Acquire must be a no-op: it never reaches
// Redis, so it cannot delete a lease held by another run.
func TestRunLock_ReleaseWithoutAcquire(t *testing.T) {
	lock := NewRunLock(nil, time.Minute)

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without acquire: %v", err)
	}
}

func TestRunLock_ReleaseClearsHolder(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	lock := NewRunLock(client, time.Minute)
	lock.runID = "run-1"

	// The compare-and-delete fails against the unreachable server; the
	// holder is still cleared, so a later call cannot touch a lease a
	// newer run has since acquired.
	if err := lock.Release(context.Background()); err == nil {
		t.Fatalf("expected transport error")
	}
	if lock.runID != "" {
		t.Fatalf("holder not cleared after release")
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("repeat release: %v", err)
	}
}
