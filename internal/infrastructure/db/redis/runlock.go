package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

const runLockKey = "fuelfacts:pipeline:run-lock"

// releaseScript deletes the lease only while the caller's run still holds
// it. A run that outlived its TTL must not drop a lease a newer run has
// since acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RunLock serializes pipeline runs across processes with a SET NX lease.
// The TTL bounds how long a crashed run can block the next one.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
	runID  string
}

var _ ports.RunLock = (*RunLock)(nil)

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, ttl: ttl}
}

// Acquire returns false when another run currently holds the lease.
func (l *RunLock) Acquire(ctx context.Context, runID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, runLockKey, runID, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	if ok {
		l.runID = runID
	}
	return ok, nil
}

// Release drops the lease if this lock still holds it. Safe to call when
// the lease already expired or was never acquired.
func (l *RunLock) Release(ctx context.Context) error {
	if l.runID == "" {
		return nil
	}
	runID := l.runID
	l.runID = ""

	if err := releaseScript.Run(ctx, l.client, []string{runLockKey}, runID).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
