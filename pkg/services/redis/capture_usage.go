package redisservice

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	captureUsageKey       = Prefix + "capture:%s:usage"
	captureConnectionsKey = Prefix + "capture:connections"
	totalUsageField       = "total_usage"
)

// CaptureSessionStarted records when a capture session of the meeting began
// listening.
func (s *RedisService) CaptureSessionStarted(meetingId, sessionId string, now time.Time) error {
	key := fmt.Sprintf(captureUsageKey, meetingId)

	pipe := s.rc.TxPipeline()
	pipe.HSet(s.ctx, key, sessionId, now.Unix())
	pipe.Expire(s.ctx, key, 7*24*time.Hour)
	pipe.Incr(s.ctx, captureConnectionsKey)
	_, err := pipe.Exec(s.ctx)
	return err
}

// CaptureSessionEnded adds the listening time of the session to the meeting
// total and returns it in seconds. Ending a session that never started is a
// no-op.
func (s *RedisService) CaptureSessionEnded(meetingId, sessionId string, now time.Time) (int64, error) {
	key := fmt.Sprintf(captureUsageKey, meetingId)

	var usage int64
	err := s.rc.Watch(s.ctx, func(tx *redis.Tx) error {
		var start int64
		ss, err := tx.HGet(s.ctx, key, sessionId).Result()
		switch {
		case errors.Is(err, redis.Nil):
			return nil
		case err != nil:
			return err
		}
		start, _ = strconv.ParseInt(ss, 10, 64)

		_, err = tx.TxPipelined(s.ctx, func(pipe redis.Pipeliner) error {
			if start > 0 {
				usage = now.Unix() - start
				if usage < 0 {
					usage = 0
				}
				pipe.HIncrBy(s.ctx, key, totalUsageField, usage)
			}
			pipe.HDel(s.ctx, key, sessionId)
			pipe.Decr(s.ctx, captureConnectionsKey)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return 0, err
	}

	return usage, nil
}

// GetCaptureUsage returns the total listening seconds recorded for a meeting.
func (s *RedisService) GetCaptureUsage(meetingId string) (int64, error) {
	key := fmt.Sprintf(captureUsageKey, meetingId)
	ss, err := s.rc.HGet(s.ctx, key, totalUsageField).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, err
	}

	return strconv.ParseInt(ss, 10, 64)
}

func (s *RedisService) ActiveCaptureSessions() (int64, error) {
	n, err := s.rc.Get(s.ctx, captureConnectionsKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
