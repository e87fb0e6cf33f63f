package redisservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	summaryLockKey = Prefix + "summaryLock-%s"
)

// unlockScript is a Lua script for atomic check-and-delete.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// LockSummary attempts to acquire the summary generation lock of a meeting.
// The returned lockValue must be passed to UnlockSummary; it is empty when
// the lock is held by someone else.
func (s *RedisService) LockSummary(ctx context.Context, meetingId string, ttl time.Duration) (acquired bool, lockValue string, err error) {
	key := fmt.Sprintf(summaryLockKey, meetingId)
	val := uuid.New().String()

	ok, err := s.rc.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis SetNX error for key %s: %w", key, err)
	}
	if !ok {
		return false, "", nil
	}

	return true, val, nil
}

// UnlockSummary releases the lock only if it is still ours.
func (s *RedisService) UnlockSummary(ctx context.Context, meetingId string, lockValue string) error {
	key := fmt.Sprintf(summaryLockKey, meetingId)
	if lockValue == "" {
		return nil
	}

	deleted, err := s.unlockScriptExec.Run(ctx, s.rc, []string{key}, lockValue).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis unlock script error on key %s: %w", key, err)
	}

	if deleted == 0 {
		return fmt.Errorf("could not release lock on key %s (it may have expired or been taken by another process)", key)
	}
	return nil
}

func (s *RedisService) IsSummaryLocked(ctx context.Context, meetingId string) (bool, error) {
	key := fmt.Sprintf(summaryLockKey, meetingId)
	val, err := s.rc.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis Exists error for key %s: %w", key, err)
	}
	return val == 1, nil
}
